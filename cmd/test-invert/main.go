// cmd/test-invert provides a standalone CLI tool for testing single-file
// inversions without staging an input directory or running the batch job.
//
// Usage:
//   ./test-invert -input photo.jpg -output photo_inverted.jpg
//   ./test-invert -input scan.png -quality 80
//   ./test-invert -input photo.jpg -probe  # Show metadata only
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/pixbatch/image-inverter/internal/img"
)

func main() {
	input := flag.String("input", "", "Input image path (required)")
	output := flag.String("output", "", "Output path (default: <input>_inverted.<ext>)")
	quality := flag.Int("quality", 95, "JPEG quality (1-100)")
	probe := flag.Bool("probe", false, "Show image metadata only (don't invert)")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Parse()

	if *input == "" {
		fmt.Println("Error: -input flag is required")
		flag.Usage()
		os.Exit(1)
	}

	if _, err := os.Stat(*input); os.IsNotExist(err) {
		log.Fatalf("Input file not found: %s", *input)
	}

	if !img.IsSupported(*input) {
		log.Fatalf("Unsupported file type: %s (supported: jpg, jpeg, png, gif, tif, tiff, bmp)", filepath.Ext(*input))
	}

	if *probe {
		src, err := imaging.Open(*input, imaging.AutoOrientation(true))
		if err != nil {
			log.Fatalf("Failed to read image: %v", err)
		}
		fi, _ := os.Stat(*input)

		fmt.Println("\nImage Metadata:")
		fmt.Println(strings.Repeat("-", 40))
		fmt.Printf("Dimensions: %dx%d pixels\n", src.Bounds().Dx(), src.Bounds().Dy())
		if fi != nil {
			fmt.Printf("File Size: %s\n", formatBytes(fi.Size()))
		}
		return
	}

	if *output == "" {
		ext := filepath.Ext(*input)
		base := (*input)[:len(*input)-len(ext)]
		*output = base + "_inverted" + ext
	}

	fmt.Printf("Inverting %s...\n", filepath.Base(*input))
	start := time.Now()

	info, err := img.Invert(*input, *output, img.Options{JPEGQuality: *quality})
	if err != nil {
		log.Fatalf("Inversion failed: %v", err)
	}

	duration := time.Since(start)
	outputInfo, err := os.Stat(*output)
	if err != nil {
		log.Fatalf("Failed to read output file: %v", err)
	}

	fmt.Println("\nDone.")
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Output: %s\n", *output)
	fmt.Printf("Dimensions: %dx%d pixels\n", info.Width, info.Height)
	fmt.Printf("Size: %s\n", formatBytes(outputInfo.Size()))
	fmt.Printf("Time: %v\n", duration.Round(time.Millisecond))

	if *verbose {
		inputInfo, _ := os.Stat(*input)
		if inputInfo != nil && inputInfo.Size() > 0 {
			fmt.Printf("Input file: %s (%s)\n", *input, formatBytes(inputInfo.Size()))
			fmt.Printf("Size ratio: %.1f%%\n", float64(outputInfo.Size())/float64(inputInfo.Size())*100)
		}
	}
}

// formatBytes formats bytes into human-readable form.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
