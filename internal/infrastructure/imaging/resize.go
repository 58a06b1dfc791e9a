// Package imaging inspects and downsizes uploaded pictures.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels bounds the decoded size when Options.MaxPixels is unset
const DefaultMaxPixels = 40_000_000

// ErrTooManyPixels is returned when the header announces a picture larger
// than the pixel budget.
var ErrTooManyPixels = errors.New("image exceeds the pixel limit")

// Result is the outcome of Process
type Result struct {
	Data          []byte
	Width, Height int
	// Resized is false when Data is the untouched input
	Resized bool
}

// Options controls Process
type Options struct {
	// MaxWidth is the widest picture kept as is; 0 disables resizing
	MaxWidth int
	// Quality is the JPEG quality, 1..100
	Quality int
	// MaxPixels rejects pictures whose width*height exceeds it
	MaxPixels int64
}

// Dimensions reads the size of an encoded picture without decoding it fully
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Process shrinks JPEG and PNG pictures wider than opts.MaxWidth, keeping the
// aspect ratio. Pictures above the pixel budget are refused from their header
// alone. WebP and GIF are only measured: they cannot be re-encoded
// without losing animation or format.
func Process(data []byte, contentType string, opts Options) (*Result, error) {
	width, height, err := Dimensions(data)
	if err != nil {
		return nil, err
	}
	maxPixels := opts.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if int64(width)*int64(height) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, width, height)
	}
	out := &Result{Data: data, Width: width, Height: height}

	if opts.MaxWidth <= 0 || width <= opts.MaxWidth {
		return out, nil
	}
	if contentType != "image/jpeg" && contentType != "image/png" {
		return out, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	newHeight := height * opts.MaxWidth / width
	if newHeight < 1 {
		newHeight = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, opts.MaxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	switch contentType {
	case "image/jpeg":
		quality := opts.Quality
		if quality <= 0 || quality > 100 {
			quality = jpeg.DefaultQuality
		}
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality})
	default:
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &Result{Data: buf.Bytes(), Width: opts.MaxWidth, Height: newHeight, Resized: true}, nil
}
