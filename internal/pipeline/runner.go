// Package pipeline orchestrates one batch run: discover staged files,
// invert each supported image into the output directory, and package
// the results into dist when configured.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pixbatch/image-inverter/internal/archive"
	"github.com/pixbatch/image-inverter/internal/config"
	"github.com/pixbatch/image-inverter/internal/img"
	"github.com/pixbatch/image-inverter/internal/process"
	"github.com/pixbatch/image-inverter/pkg/schema"
)

// Run is the top-level batch entry point: single pass over the input
// directory, no file watching, no resumption. Per-item failures follow
// cfg.FailPolicy; everything else that goes wrong fails the run.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) (*RunStats, error) {
	runID := uuid.New().String()
	log := logger.With("run_id", runID)
	start := time.Now()

	files, err := Discover(cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("discover input: %w", err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure output directory: %w", err)
	}
	if cfg.DistDir != "" {
		if err := os.MkdirAll(cfg.DistDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure dist directory: %w", err)
		}
	}

	stats := &RunStats{RunID: runID, Total: len(files)}
	log.Info("discovered work items", "count", len(files), "input_dir", cfg.InputDir, "fail_policy", cfg.FailPolicy, "workers", cfg.Workers)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for i, path := range files {
		path := path
		seq := i + 1
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			res := processItem(cfg, log, path, seq, stats.Total)

			mu.Lock()
			stats.Results = append(stats.Results, res)
			switch res.Status {
			case schema.StatusProcessed:
				stats.Processed++
				stats.TotalInputBytes += res.InputBytes
				stats.TotalOutputBytes += res.OutputBytes
			case schema.StatusSkipped:
				stats.Skipped++
			case schema.StatusFailed:
				stats.Failed++
			}
			mu.Unlock()

			if res.Status == schema.StatusFailed && cfg.FailPolicy == config.FailAbort {
				return fmt.Errorf("invert %s: %s", filepath.Base(path), res.Error)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		stats.Elapsed = time.Since(start)
		return stats, err
	}

	if cfg.DistDir != "" {
		manifestPath, zipPath, err := archive.Package(cfg.DistDir, runID, stats.Results)
		if err != nil {
			stats.Elapsed = time.Since(start)
			return stats, fmt.Errorf("package dist: %w", err)
		}
		log.Info("packaged run", "manifest", manifestPath, "archive", zipPath)
	}

	stats.Elapsed = time.Since(start)
	log.Info("run complete",
		"total", stats.Total,
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"elapsed_ms", stats.Elapsed.Milliseconds(),
	)
	return stats, nil
}

// processItem handles one staged file: filter -> invert -> record. Items
// that enter processing carry their job's audit record in the result;
// skipped items never start a job.
func processItem(cfg config.Config, log *slog.Logger, path string, seq, total int) schema.InvertResult {
	base := filepath.Base(path)
	itemStart := time.Now()

	res := schema.InvertResult{ID: uuid.New().String(), InputPath: path}

	if !img.IsSupported(path) {
		res.Status = schema.StatusSkipped
		res.DurationMs = time.Since(itemStart).Milliseconds()
		log.Info("skipping unsupported file", "item", base)
		return res
	}

	job := process.NewJob("invert", res.ID, path)
	process.MarkRunning(job)
	log.Info("inverting", "item", base, "n", seq, "total", total)

	if fi, err := os.Stat(path); err == nil {
		res.InputBytes = fi.Size()
	}

	outPath := OutputPath(path, cfg.OutputDir)
	info, err := img.Invert(path, outPath, img.Options{JPEGQuality: cfg.JPEGQuality})
	if err != nil {
		process.MarkFailed(job, err)
		os.Remove(outPath)
		rec := job.Record()
		res.Status = schema.StatusFailed
		res.Error = rec.Error
		res.Job = &rec
		res.DurationMs = time.Since(itemStart).Milliseconds()
		log.Error("invert failed", "item", base, "err", err)
		return res
	}

	process.MarkSucceeded(job)
	rec := job.Record()
	res.Job = &rec
	res.OutputPath = outPath
	res.Width = info.Width
	res.Height = info.Height
	if fi, err := os.Stat(outPath); err == nil {
		res.OutputBytes = fi.Size()
	}
	res.Status = schema.StatusProcessed
	res.DurationMs = time.Since(itemStart).Milliseconds()
	log.Info("inverted", "item", base, "size", fmt.Sprintf("%dx%d", info.Width, info.Height), "duration_ms", res.DurationMs)
	return res
}
