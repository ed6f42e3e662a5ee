//go:build nats

// cmd/worker/main.go
//
// Command worker is the long-running variant of the inverter: it
// subscribes to a NATS job subject and inverts one staged file per
// job, publishing the result to the result subject.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/pixbatch/image-inverter/internal/bus"
	"github.com/pixbatch/image-inverter/internal/img"
	"github.com/pixbatch/image-inverter/internal/pipeline"
	"github.com/pixbatch/image-inverter/internal/process"
	"github.com/pixbatch/image-inverter/pkg/schema"
)

type config struct {
	NATSURL       string
	JobSubject    string
	WorkerQueue   string
	ResultSubject string
	OutputDir     string
	JPEGQuality   int
}

func loadConfig() (config, error) {
	cfg := config{
		NATSURL:       getenv("NATS_URL", "nats://127.0.0.1:4222"),
		JobSubject:    getenv("JOB_SUBJECT", "images.invert.jobs"),
		WorkerQueue:   getenv("WORKER_QUEUE", "invert-workers"),
		ResultSubject: getenv("RESULT_SUBJECT", "images.invert.done"),
		OutputDir:     getenv("OUTPUT_DIR", "./output"),
	}

	quality, err := strconv.Atoi(getenv("JPEG_QUALITY", "95"))
	if err != nil {
		return config{}, fmt.Errorf("invalid JPEG_QUALITY: %w", err)
	}
	if quality <= 0 || quality > 100 {
		return config{}, fmt.Errorf("JPEG_QUALITY must be between 1 and 100 (got %d)", quality)
	}
	cfg.JPEGQuality = quality

	return cfg, nil
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		fatal(logger, "load config", err)
	}
	logger.Info("worker starting", "nats_url", cfg.NATSURL, "job_subject", cfg.JobSubject, "queue", cfg.WorkerQueue, "result_subject", cfg.ResultSubject, "output_dir", cfg.OutputDir)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		fatal(logger, "ensure output directory", err, "output_dir", cfg.OutputDir)
	}

	nc, err := bus.Connect(cfg.NATSURL)
	if err != nil {
		fatal(logger, "connect to NATS", err, "nats_url", cfg.NATSURL)
	}
	logger.Info("connected to NATS", "nats_url", cfg.NATSURL)
	defer nc.Close()

	_, err = nc.QueueSubscribeJSON(cfg.JobSubject, cfg.WorkerQueue, func(ctx context.Context, data []byte) {
		handleJob(ctx, data, cfg, nc, logger)
	})
	if err != nil {
		fatal(logger, "subscribe worker", err, "job_subject", cfg.JobSubject, "queue", cfg.WorkerQueue)
	}
	logger.Info("listening for jobs", "subject", cfg.JobSubject, "queue", cfg.WorkerQueue)

	select {}
}

func handleJob(ctx context.Context, data []byte, cfg config, nc *bus.Client, logger *slog.Logger) {
	var invertJob schema.InvertJob
	if err := json.Unmarshal(data, &invertJob); err != nil {
		logger.Error("decode job failed", "err", err)
		return
	}
	if invertJob.ID == "" {
		invertJob.ID = uuid.New().String()
	}

	jobLogger := logger.With("job_id", invertJob.ID)
	jobLogger.Info("received job", "input", invertJob.InputPath)

	job := process.NewJob("invert", invertJob.ID, invertJob.InputPath)
	process.MarkRunning(job)
	start := time.Now()

	res := schema.InvertResult{ID: invertJob.ID, InputPath: invertJob.InputPath}

	outPath := invertJob.OutputPath
	if outPath == "" {
		outPath = pipeline.OutputPath(invertJob.InputPath, cfg.OutputDir)
	}

	info, err := img.Invert(invertJob.InputPath, outPath, img.Options{JPEGQuality: cfg.JPEGQuality})
	if err != nil {
		process.MarkFailed(job, err)
		jobLogger.Error("invert failed", "input", invertJob.InputPath, "err", err)
		res.Status = schema.StatusFailed
	} else {
		process.MarkSucceeded(job)
		res.Status = schema.StatusProcessed
		res.OutputPath = outPath
		res.Width = info.Width
		res.Height = info.Height
		if fi, statErr := os.Stat(outPath); statErr == nil {
			res.OutputBytes = fi.Size()
		}
		jobLogger.Info("inverted", "output", filepath.Base(outPath), "size", fmt.Sprintf("%dx%d", info.Width, info.Height))
	}
	rec := job.Record()
	res.Error = rec.Error
	res.Job = &rec
	res.DurationMs = time.Since(start).Milliseconds()

	if err := nc.PublishJSON(cfg.ResultSubject, res); err != nil {
		jobLogger.Error("publish result failed", "subject", cfg.ResultSubject, "err", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error, attrs ...any) {
	attrs = append(attrs, "err", err)
	logger.Error(msg, attrs...)
	os.Exit(1)
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
