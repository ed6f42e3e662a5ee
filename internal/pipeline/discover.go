package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrMissingInput is returned when the input directory does not exist.
var ErrMissingInput = errors.New("input directory does not exist")

// Discover enumerates the regular files staged directly under inputDir.
// Subdirectories and dotfiles are ignored, and the paths come back
// sorted lexicographically for deterministic processing order.
func Discover(inputDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, inputDir)
		}
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(inputDir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// OutputPath derives the result path for an input file: identical base
// name under outputDir. Discovery is non-recursive, so base names are
// unique within a run and outputs cannot collide.
func OutputPath(inputPath, outputDir string) string {
	return filepath.Join(outputDir, filepath.Base(inputPath))
}
