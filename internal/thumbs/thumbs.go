// Package thumbs writes bounded thumbnails for the gallery images,
// mirroring the source tree below a target directory.
package thumbs

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/folio-site/folio/internal/progress"
	"github.com/folio-site/folio/internal/walker"
)

// Default bounds of a thumbnail.
const (
	DefaultMaxWidth  = 300
	DefaultMaxHeight = 300
)

// ErrUnsupportedFormat is returned for images with no encoder.
var ErrUnsupportedFormat = errors.New("thumbs: unsupported format")

// Options configures a Generate run.
type Options struct {
	Source    string
	Target    string
	MaxWidth  int
	MaxHeight int
	Exclude   []string
	// Force regenerates thumbnails that already exist.
	Force    bool
	Reporter progress.Reporter
	Logger   *zap.Logger
}

// Result lists what a run did, by path relative to the source directory.
type Result struct {
	Created []string          `json:"created"`
	Skipped []string          `json:"skipped"`
	Failed  map[string]string `json:"failed"`
}

// Generate walks opts.Source and writes a thumbnail for every image that
// has none yet. A failing image is logged and recorded, and the run goes
// on. Only a walk failure or cancellation aborts.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = DefaultMaxWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = DefaultMaxHeight
	}
	if opts.Reporter == nil {
		opts.Reporter = progress.Nop{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	files, err := walker.Walk(walker.WalkerConfig{
		RootDir: opts.Source,
		Include: walker.ImagePatterns,
		Exclude: opts.Exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}

	res := &Result{Created: []string{}, Skipped: []string{}, Failed: map[string]string{}}
	opts.Reporter.Start(len(files))
	defer opts.Reporter.Finish()

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		opts.Reporter.Update(i+1, f.RelPath)

		dst := filepath.Join(opts.Target, filepath.FromSlash(f.RelPath))
		if !opts.Force {
			if _, err := os.Stat(dst); err == nil {
				logger.Debug("thumbs: exists", zap.String("path", dst))
				res.Skipped = append(res.Skipped, f.RelPath)
				continue
			}
		}

		if err := WriteFile(f.Path, dst, opts.MaxWidth, opts.MaxHeight); err != nil {
			logger.Warn("thumbs: failed", zap.String("source", f.Path), zap.Error(err))
			res.Failed[f.RelPath] = err.Error()
			continue
		}
		logger.Info("thumbs: created", zap.String("path", dst))
		res.Created = append(res.Created, f.RelPath)
	}
	return res, nil
}

// WriteFile decodes src, scales it into the bounds and writes it to dst
// in the source's format, creating parent directories.
func WriteFile(src, dst string, maxW, maxH int) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	img, format, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", filepath.Base(src), err)
	}
	thumb := Scale(img, maxW, maxH)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating thumbnail directory: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if err := Encode(out, thumb, format); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// Encode writes img in the named format as reported by image.Decode.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpeg.DefaultQuality})
	case "png":
		return png.Encode(w, img)
	case "gif":
		return gif.Encode(w, img, nil)
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// Fit returns the largest size within maxW x maxH that keeps the aspect
// ratio of w x h. Images are never enlarged.
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	// Compare w/h against maxW/maxH without floats.
	if w*maxH >= h*maxW {
		nh := h * maxW / w
		return maxW, max(nh, 1)
	}
	nw := w * maxH / h
	return max(nw, 1), maxH
}

// Scale returns img resized to fit the bounds with Catmull-Rom
// resampling, or img itself when it already fits.
func Scale(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), maxW, maxH)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
