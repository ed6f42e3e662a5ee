// Package archive stages a completed run's outputs into the dist
// directory: a JSON manifest with per-file checksums, plus a zip of the
// output files when the run produced any.
package archive

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pixbatch/image-inverter/pkg/schema"
)

// Package writes <runID>.zip and manifest.json under distDir for the
// processed results of a run. The manifest carries per-file checksums
// plus the run's job audit records. An empty result set still produces
// a manifest (with zero entries) but no zip. Returns the manifest path
// and the zip path ("" when no zip was written).
func Package(distDir, runID string, results []schema.InvertResult) (string, string, error) {
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return "", "", fmt.Errorf("mkdir dist: %w", err)
	}

	outputs := make([]string, 0, len(results))
	var jobs []schema.JobRecord
	for _, r := range results {
		if r.Status == schema.StatusProcessed {
			outputs = append(outputs, r.OutputPath)
		}
		if r.Job != nil {
			jobs = append(jobs, *r.Job)
		}
	}
	sort.Strings(outputs)
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Input < jobs[j].Input })

	manifest := schema.RunManifest{
		RunID:     runID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:   make([]schema.ManifestEntry, 0, len(outputs)),
		Jobs:      jobs,
	}
	for _, path := range outputs {
		sum, size, err := SHA256File(path)
		if err != nil {
			return "", "", fmt.Errorf("hash %s: %w", filepath.Base(path), err)
		}
		manifest.Entries = append(manifest.Entries, schema.ManifestEntry{
			Name:   filepath.Base(path),
			Size:   size,
			SHA256: sum,
		})
	}

	manifestPath := filepath.Join(distDir, "manifest.json")
	b, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshal manifest: %w", err)
	}
	if err := writeFileAtomic(manifestPath, b, 0o644); err != nil {
		return "", "", fmt.Errorf("write manifest: %w", err)
	}

	if len(outputs) == 0 {
		return manifestPath, "", nil
	}

	zipPath := filepath.Join(distDir, runID+".zip")
	if err := writeZip(zipPath, outputs, manifestPath); err != nil {
		return "", "", fmt.Errorf("write archive: %w", err)
	}
	return manifestPath, zipPath, nil
}

// SHA256File returns the hex digest and byte size of the file at path.
func SHA256File(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// writeZip creates a zip at zipPath containing the given files plus the
// manifest, all stored under their base names.
func writeZip(zipPath string, files []string, manifestPath string) error {
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(f)
	for _, path := range append(append([]string{}, files...), manifestPath) {
		if err := addZipEntry(zw, path); err != nil {
			zw.Close()
			f.Close()
			return fmt.Errorf("add %s: %w", filepath.Base(path), err)
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func addZipEntry(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := zw.Create(filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// writeFileAtomic writes via a temp file and rename so a partial
// manifest is never visible under dist.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
