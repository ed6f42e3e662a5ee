package pipeline

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixbatch/image-inverter/internal/config"
	"github.com/pixbatch/image-inverter/pkg/schema"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	tmp := t.TempDir()
	cfg := config.Config{
		InputDir:    filepath.Join(tmp, "input"),
		OutputDir:   filepath.Join(tmp, "output"),
		FailPolicy:  config.FailSkip,
		Workers:     1,
		JPEGQuality: 95,
	}
	require.NoError(t, os.MkdirAll(cfg.InputDir, 0o755))
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRunInvertsAllInputs(t *testing.T) {
	cfg := testConfig(t)
	writePNG(t, filepath.Join(cfg.InputDir, "a.png"), color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	writePNG(t, filepath.Join(cfg.InputDir, "b.png"), color.NRGBA{R: 0, G: 0, B: 0, A: 255})

	stats, err := Run(context.Background(), cfg, testLogger())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Processed)
	assert.Zero(t, stats.Skipped)
	assert.Zero(t, stats.Failed)

	for _, name := range []string{"a.png", "b.png"} {
		assert.FileExists(t, filepath.Join(cfg.OutputDir, name))
	}

	for _, r := range stats.Results {
		require.NotNil(t, r.Job, "processed item %s missing job record", r.InputPath)
		assert.Equal(t, "succeeded", r.Job.Status)
		assert.Equal(t, r.InputPath, r.Job.Input)
		assert.Equal(t, r.ID, r.Job.ID)
	}

	got := readPixel(t, filepath.Join(cfg.OutputDir, "a.png"))
	assert.Equal(t, color.NRGBA{R: 55, G: 155, B: 205, A: 255}, got)
}

func TestRunEmptyInputSucceeds(t *testing.T) {
	cfg := testConfig(t)

	stats, err := Run(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunMissingInputFails(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.RemoveAll(cfg.InputDir))

	_, err := Run(context.Background(), cfg, testLogger())
	require.ErrorIs(t, err, ErrMissingInput)

	// Nothing may be written when startup fails.
	_, statErr := os.Stat(cfg.OutputDir)
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
}

func TestRunSkipPolicyContinuesPastBadItem(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, "bad.png"), []byte("not an image"), 0o644))
	writePNG(t, filepath.Join(cfg.InputDir, "good.png"), color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	stats, err := Run(context.Background(), cfg, testLogger())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Failed)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "good.png"))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "bad.png"))

	for _, r := range stats.Results {
		if r.Status != schema.StatusFailed {
			continue
		}
		require.NotNil(t, r.Job)
		assert.Equal(t, "failed", r.Job.Status)
		assert.NotEmpty(t, r.Job.Error)
		assert.Equal(t, r.Job.Error, r.Error)
	}
}

func TestRunAbortPolicyStopsAtBadItem(t *testing.T) {
	cfg := testConfig(t)
	cfg.FailPolicy = config.FailAbort
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, "a_bad.png"), []byte("not an image"), 0o644))
	writePNG(t, filepath.Join(cfg.InputDir, "z_good.png"), color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	stats, err := Run(context.Background(), cfg, testLogger())
	require.Error(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "z_good.png"))
}

func TestRunSkipsNonImageFiles(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, "notes.txt"), []byte("hello"), 0o644))
	writePNG(t, filepath.Join(cfg.InputDir, "photo.png"), color.NRGBA{R: 9, G: 9, B: 9, A: 255})

	stats, err := Run(context.Background(), cfg, testLogger())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Zero(t, stats.Failed)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "notes.txt"))

	for _, r := range stats.Results {
		if r.Status == schema.StatusSkipped {
			assert.Nil(t, r.Job, "skipped item should not start a job")
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	writePNG(t, filepath.Join(cfg.InputDir, "a.png"), color.NRGBA{R: 120, G: 33, B: 7, A: 255})

	_, err := Run(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(cfg.OutputDir, "a.png"))
	require.NoError(t, err)

	_, err = Run(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(cfg.OutputDir, "a.png"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunPackagesDist(t *testing.T) {
	cfg := testConfig(t)
	cfg.DistDir = filepath.Join(filepath.Dir(cfg.OutputDir), "dist")
	writePNG(t, filepath.Join(cfg.InputDir, "a.png"), color.NRGBA{R: 4, G: 5, B: 6, A: 255})

	stats, err := Run(context.Background(), cfg, testLogger())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(cfg.DistDir, "manifest.json"))
	assert.FileExists(t, filepath.Join(cfg.DistDir, stats.RunID+".zip"))

	var manifest schema.RunManifest
	b, err := os.ReadFile(filepath.Join(cfg.DistDir, "manifest.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &manifest))
	require.Len(t, manifest.Jobs, 1)
	assert.Equal(t, "succeeded", manifest.Jobs[0].Status)
	assert.Equal(t, filepath.Join(cfg.InputDir, "a.png"), manifest.Jobs[0].Input)
}

func TestRunCreatesDistDirBeforeProcessing(t *testing.T) {
	cfg := testConfig(t)
	cfg.DistDir = filepath.Join(filepath.Dir(cfg.OutputDir), "dist")
	cfg.FailPolicy = config.FailAbort
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, "bad.png"), []byte("not an image"), 0o644))

	_, err := Run(context.Background(), cfg, testLogger())
	require.Error(t, err)

	// The dist directory is provisioned up front, even though the
	// aborted run never reaches packaging.
	assert.DirExists(t, cfg.DistDir)
	assert.NoFileExists(t, filepath.Join(cfg.DistDir, "manifest.json"))
}

func TestRunCancelledContextStopsRun(t *testing.T) {
	cfg := testConfig(t)
	writePNG(t, filepath.Join(cfg.InputDir, "a.png"), color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	writePNG(t, filepath.Join(cfg.InputDir, "b.png"), color.NRGBA{R: 4, G: 5, B: 6, A: 255})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := Run(ctx, cfg, testLogger())
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Processed)

	entries, readErr := os.ReadDir(cfg.OutputDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRunWithWorkerPool(t *testing.T) {
	cfg := testConfig(t)
	cfg.Workers = 4
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png", "e.png"} {
		writePNG(t, filepath.Join(cfg.InputDir, name), color.NRGBA{R: 50, G: 60, B: 70, A: 255})
	}

	stats, err := Run(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Processed)
	assert.Len(t, stats.Results, 5)

	for _, r := range stats.Results {
		assert.Equal(t, schema.StatusProcessed, r.Status)
	}
}

func writePNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()

	im := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			im.SetNRGBA(x, y, c)
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, im))
	require.NoError(t, f.Close())
}

func readPixel(t *testing.T, path string) color.NRGBA {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	im, err := png.Decode(f)
	require.NoError(t, err)
	return color.NRGBAModel.Convert(im.At(0, 0)).(color.NRGBA)
}
