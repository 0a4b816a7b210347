// Package enhance prepares card scans for text recognition. The primary
// pipeline mirrors a classic OCR preprocessing chain: grayscale, local
// contrast normalization, edge-preserving denoise, unsharp masking,
// adaptive binarization and upscaling. A simpler fallback chain covers
// inputs the primary pipeline cannot handle. Enhancement is best effort:
// the worst case returns the input image unchanged, never an error.
package enhance

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/hazemadel/cardpdf/observability"
)

// Outcome reports which path produced the enhanced image.
type Outcome string

const (
	// OutcomePrimary means the full enhancement pipeline ran.
	OutcomePrimary Outcome = "primary"
	// OutcomeFallback means the simplified chain ran instead.
	OutcomeFallback Outcome = "fallback"
	// OutcomeOriginal means enhancement was skipped and the input was
	// returned unchanged.
	OutcomeOriginal Outcome = "original"
)

// Result carries the enhanced image together with the path taken, so
// callers can branch on "tried and fell back" without catching anything.
type Result struct {
	Image   image.Image
	Outcome Outcome
	Reason  string
}

// Config holds the tunable knobs of the enhancement pipeline.
type Config struct {
	// MinWidth and MinHeight define the minimum working size; smaller
	// results are upscaled with Lanczos resampling preserving aspect.
	MinWidth  int
	MinHeight int
	// ClipLimit and TileSize parameterize adaptive histogram equalization.
	ClipLimit float64
	TileSize  int
	// SimpleOnly forces the fallback chain, bypassing the primary pipeline.
	SimpleOnly bool
}

// DefaultConfig returns the settings tuned for identity-card scans.
func DefaultConfig() Config {
	return Config{
		MinWidth:  1000,
		MinHeight: 700,
		ClipLimit: 3.0,
		TileSize:  8,
	}
}

// Enhancer runs the enhancement pipeline. The zero value is not usable;
// construct with New.
type Enhancer struct {
	cfg Config
	log observability.Logger
}

// New constructs an Enhancer. A nil logger disables logging.
func New(cfg Config, log observability.Logger) *Enhancer {
	if cfg.MinWidth <= 0 || cfg.MinHeight <= 0 {
		def := DefaultConfig()
		if cfg.MinWidth <= 0 {
			cfg.MinWidth = def.MinWidth
		}
		if cfg.MinHeight <= 0 {
			cfg.MinHeight = def.MinHeight
		}
	}
	if cfg.ClipLimit <= 0 {
		cfg.ClipLimit = 3.0
	}
	if cfg.TileSize <= 0 {
		cfg.TileSize = 8
	}
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Enhancer{cfg: cfg, log: log}
}

// EnhanceForOCR produces an image tuned for maximum recognition accuracy.
// Deterministic for identical inputs. On any internal failure the input
// is returned unchanged with OutcomeOriginal.
func (e *Enhancer) EnhanceForOCR(img image.Image) Result {
	if img == nil {
		return Result{Image: nil, Outcome: OutcomeOriginal, Reason: "nil image"}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Result{Image: img, Outcome: OutcomeOriginal, Reason: "zero area"}
	}
	if e.cfg.SimpleOnly {
		return Result{Image: e.enhanceSimple(img), Outcome: OutcomeFallback, Reason: "simple mode"}
	}
	out, ok := e.enhancePrimary(img)
	if !ok {
		e.log.Debug("primary enhancement unavailable, using fallback chain")
		return Result{Image: e.enhanceSimple(img), Outcome: OutcomeFallback, Reason: "primary pipeline failed"}
	}
	return Result{Image: out, Outcome: OutcomePrimary}
}

// enhancePrimary is the full chain: grayscale, CLAHE, bilateral denoise,
// unsharp mask, adaptive binarization, upscale.
func (e *Enhancer) enhancePrimary(img image.Image) (image.Image, bool) {
	gray := toGray(img)
	if gray == nil {
		return nil, false
	}
	eq := claheGray(gray, e.cfg.ClipLimit, e.cfg.TileSize)
	den := bilateralGray(eq, 9, 75, 75)
	sharp := unsharpGray(den, 1.0, 1.5, -0.5)
	bin := adaptiveThresholdGray(sharp, 11, 2)
	return e.upscale(bin), true
}

// enhanceSimple is the reduced chain used when the primary pipeline is
// unavailable: grayscale, contrast boost, sharpening, median denoise and
// a final sharpen pass.
func (e *Enhancer) enhanceSimple(img image.Image) image.Image {
	gray := imaging.Grayscale(img)
	boosted := imaging.AdjustContrast(gray, 40)
	sharpened := imaging.Sharpen(boosted, 1.0)
	denoised := medianGray(toGray(sharpened), 3)
	final := imaging.Sharpen(denoised, 0.5)
	return e.upscale(final)
}

// upscale brings the image up to the minimum working size preserving
// aspect ratio. Images already large enough pass through untouched.
func (e *Enhancer) upscale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w >= e.cfg.MinWidth && h >= e.cfg.MinHeight {
		return img
	}
	sw := float64(e.cfg.MinWidth) / float64(w)
	sh := float64(e.cfg.MinHeight) / float64(h)
	scale := sw
	if sh > scale {
		scale = sh
	}
	return imaging.Resize(img, int(float64(w)*scale), int(float64(h)*scale), imaging.Lanczos)
}

// toGray renders any image into a single-channel *image.Gray.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil
	}
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}
