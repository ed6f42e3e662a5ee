// cmd/inverter/main.go
//
// Command inverter is the container entry point: a single-pass batch
// job that inverts every image staged under the input directory into
// the output directory, then exits. Exit code 0 on success, 1 on fatal
// failure (missing input directory, abort-policy failure, packaging
// failure).
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pixbatch/image-inverter/internal/config"
	"github.com/pixbatch/image-inverter/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		fatal(logger, "load config", err)
	}
	logger.Info("inverter starting",
		"input_dir", cfg.InputDir,
		"output_dir", cfg.OutputDir,
		"dist_dir", cfg.DistDir,
		"fail_policy", cfg.FailPolicy,
		"workers", cfg.Workers,
		"jpeg_quality", cfg.JPEGQuality,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := pipeline.Run(ctx, cfg, logger)
	if err != nil {
		if stats != nil {
			logger.Error("run aborted",
				"total", stats.Total,
				"processed", stats.Processed,
				"skipped", stats.Skipped,
				"failed", stats.Failed,
			)
		}
		fatal(logger, "run failed", err)
	}

	// The run record is the machine-readable summary of this execution,
	// mirroring what the worker publishes per item.
	record, err := json.Marshal(stats.Done())
	if err != nil {
		fatal(logger, "encode run record", err)
	}
	logger.Info("run record", "record", string(record))
}

func fatal(logger *slog.Logger, msg string, err error, attrs ...any) {
	attrs = append(attrs, "err", err)
	logger.Error(msg, attrs...)
	os.Exit(1)
}
