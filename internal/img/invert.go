// internal/img/invert.go
package img

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Options controls output encoding.
type Options struct {
	// JPEGQuality applies only when the destination is a JPEG. Zero
	// means the imaging default.
	JPEGQuality int
}

// Info describes the source image of a completed inversion.
type Info struct {
	Width  int
	Height int
}

// Supported raster extensions (lowercase, with leading dot). These are
// the formats imaging can both decode and encode.
var rasterExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// IsSupported reports whether path has a raster image extension the
// inverter can handle.
func IsSupported(path string) bool {
	return rasterExtensions[strings.ToLower(filepath.Ext(path))]
}

// Invert loads the image at srcPath, inverts its color channels, and
// writes the result to dstPath. The alpha channel is carried through
// untouched, so transparent regions stay transparent. The destination's
// parent directory is created if missing.
func Invert(srcPath, dstPath string, opts Options) (Info, error) {
	src, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return Info{}, fmt.Errorf("open: %w", err)
	}

	b := src.Bounds()
	inverted := imaging.Invert(src)

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return Info{}, fmt.Errorf("mkdir: %w", err)
	}

	var encodeOpts []imaging.EncodeOption
	if opts.JPEGQuality > 0 {
		encodeOpts = append(encodeOpts, imaging.JPEGQuality(opts.JPEGQuality))
	}
	if err := imaging.Save(inverted, dstPath, encodeOpts...); err != nil {
		return Info{}, fmt.Errorf("save: %w", err)
	}

	return Info{Width: b.Dx(), Height: b.Dy()}, nil
}
