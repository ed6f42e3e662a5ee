// Package config loads runner configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// FailPolicy controls what happens when a single item fails to process.
type FailPolicy string

const (
	// FailSkip logs the failure and continues with the remaining items.
	FailSkip FailPolicy = "skip"
	// FailAbort stops the run at the first failed item.
	FailAbort FailPolicy = "abort"
)

// ParseFailPolicy validates a policy string from the environment.
func ParseFailPolicy(s string) (FailPolicy, error) {
	switch FailPolicy(s) {
	case FailSkip, FailAbort:
		return FailPolicy(s), nil
	default:
		return "", fmt.Errorf("invalid FAIL_POLICY %q (expected %q or %q)", s, FailSkip, FailAbort)
	}
}

// Config holds everything the batch runner needs. Directories are plain
// values so tests can point a run at temporary paths.
type Config struct {
	InputDir    string
	OutputDir   string
	DistDir     string // empty disables dist packaging
	FailPolicy  FailPolicy
	Workers     int
	JPEGQuality int
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (Config, error) {
	cfg := Config{
		InputDir:  getenv("INPUT_DIR", "./input"),
		OutputDir: getenv("OUTPUT_DIR", "./output"),
		DistDir:   getenv("DIST_DIR", ""),
	}

	policy, err := ParseFailPolicy(getenv("FAIL_POLICY", string(FailSkip)))
	if err != nil {
		return Config{}, err
	}
	cfg.FailPolicy = policy

	workers, err := parsePositiveInt(getenv("WORKERS", "1"), "WORKERS")
	if err != nil {
		return Config{}, err
	}
	cfg.Workers = workers

	quality, err := parsePositiveInt(getenv("JPEG_QUALITY", "95"), "JPEG_QUALITY")
	if err != nil {
		return Config{}, err
	}
	if quality > 100 {
		return Config{}, fmt.Errorf("JPEG_QUALITY must be between 1 and 100 (got %d)", quality)
	}
	cfg.JPEGQuality = quality

	return cfg, nil
}

func parsePositiveInt(value string, name string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero (got %d)", name, v)
	}
	return v, nil
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
