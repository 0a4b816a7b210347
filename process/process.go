// Package process prepares matched card images for PDF emission: it
// validates and decodes the scan, caps oversized inputs, flattens
// transparency onto a solid background and applies a conservative quality
// touch-up. The output is a temporary PNG ready for page import.
package process

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/hazemadel/cardpdf/observability"
)

// maxPixels caps decoded images at 50 megapixels; larger scans are
// downscaled to fit before further processing.
const maxPixels = 50 * 1024 * 1024

// Processor flattens and touches up card images for presentation.
type Processor struct {
	bg  color.NRGBA
	log observability.Logger
}

// New constructs a Processor. background is a "#RRGGBB" hex color; an
// invalid value falls back to white with a warning.
func New(background string, log observability.Logger) *Processor {
	if log == nil {
		log = observability.NopLogger{}
	}
	bg, err := ParseHexColor(background)
	if err != nil {
		log.Warn("invalid background color, using white",
			observability.String("color", background),
			observability.Error("err", err))
		bg = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return &Processor{bg: bg, log: log}
}

// ProcessImage prepares one image file and returns the path of a
// temporary PNG holding the result. The caller owns the temp file.
func (p *Processor) ProcessImage(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty image path")
	}
	img, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image %s: %w", path, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return "", fmt.Errorf("image %s has zero dimensions", path)
	}

	img = capSize(img)
	flattened := p.flatten(img)
	touched := touchUp(flattened)

	tmp, err := os.CreateTemp("", "processed_*.png")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	if err := imaging.Save(touched, tmpPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("save processed image: %w", err)
	}
	if fi, err := os.Stat(tmpPath); err != nil || fi.Size() == 0 {
		os.Remove(tmpPath)
		return "", fmt.Errorf("processed image %s was not written", tmpPath)
	}
	return tmpPath, nil
}

// ResizeForPDF downsizes an image for page display while keeping aspect
// ratio, writing the result to a temporary PNG. Failures return the
// original path: resizing is an optimization, not a requirement.
func (p *Processor) ResizeForPDF(path string, maxWidth, maxHeight int) string {
	img, err := imaging.Open(path)
	if err != nil {
		p.log.Warn("resize skipped", observability.String("file", path), observability.Error("err", err))
		return path
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxWidth && h <= maxHeight {
		return path
	}
	resized := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	tmp, err := os.CreateTemp("", "resized_*.png")
	if err != nil {
		p.log.Warn("resize skipped", observability.Error("err", err))
		return path
	}
	tmpPath := tmp.Name()
	tmp.Close()
	if err := imaging.Save(resized, tmpPath); err != nil {
		os.Remove(tmpPath)
		p.log.Warn("resize skipped", observability.Error("err", err))
		return path
	}
	return tmpPath
}

// flatten composites the image over the configured background color,
// removing any transparency.
func (p *Processor) flatten(img image.Image) image.Image {
	b := img.Bounds()
	background := imaging.New(b.Dx(), b.Dy(), p.bg)
	return imaging.Overlay(background, img, image.Pt(0, 0), 1.0)
}

// touchUp applies the conservative presentation enhancement: slight
// contrast, sharpness and brightness lifts that improve print quality
// without distorting the scan.
func touchUp(img image.Image) image.Image {
	out := imaging.AdjustContrast(img, 5)
	out = imaging.Sharpen(out, 0.5)
	return imaging.AdjustBrightness(out, 2)
}

// capSize downscales images above the megapixel cap, preserving aspect.
func capSize(img image.Image) image.Image {
	b := img.Bounds()
	pixels := b.Dx() * b.Dy()
	if pixels <= maxPixels {
		return img
	}
	ratio := math.Sqrt(float64(maxPixels) / float64(pixels))
	return imaging.Resize(img, int(float64(b.Dx())*ratio), int(float64(b.Dy())*ratio), imaging.Lanczos)
}

// ParseHexColor parses a "#RRGGBB" color string.
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("color %q is not #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q is not #RRGGBB: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}
