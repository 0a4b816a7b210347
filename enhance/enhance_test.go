package enhance

import (
	"image"
	"image/color"
	"reflect"
	"testing"
)

func checkerboard(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestEnhanceNilImage(t *testing.T) {
	e := New(DefaultConfig(), nil)
	res := e.EnhanceForOCR(nil)
	if res.Outcome != OutcomeOriginal {
		t.Fatalf("nil image must report the original outcome, got %q", res.Outcome)
	}
	if res.Image != nil {
		t.Fatalf("nil image must stay nil")
	}
}

func TestEnhanceZeroArea(t *testing.T) {
	e := New(DefaultConfig(), nil)
	res := e.EnhanceForOCR(image.NewGray(image.Rect(0, 0, 0, 0)))
	if res.Outcome != OutcomeOriginal {
		t.Fatalf("zero-area image must pass through, got %q", res.Outcome)
	}
}

func TestEnhancePrimaryUpscalesToMinimum(t *testing.T) {
	e := New(Config{MinWidth: 50, MinHeight: 40}, nil)
	res := e.EnhanceForOCR(checkerboard(10, 10))
	if res.Outcome != OutcomePrimary {
		t.Fatalf("outcome = %q, want primary", res.Outcome)
	}
	b := res.Image.Bounds()
	if b.Dx() < 50 || b.Dy() < 40 {
		t.Fatalf("enhanced image %dx%d below working minimum", b.Dx(), b.Dy())
	}
}

func TestEnhanceSimpleOnly(t *testing.T) {
	e := New(Config{MinWidth: 8, MinHeight: 8, SimpleOnly: true}, nil)
	res := e.EnhanceForOCR(checkerboard(16, 16))
	if res.Outcome != OutcomeFallback {
		t.Fatalf("outcome = %q, want fallback", res.Outcome)
	}
	if res.Image == nil {
		t.Fatalf("fallback chain must produce an image")
	}
}

func TestEnhanceDeterministic(t *testing.T) {
	e := New(Config{MinWidth: 20, MinHeight: 20}, nil)
	src := checkerboard(32, 32)
	first := e.EnhanceForOCR(src)
	second := e.EnhanceForOCR(src)
	if first.Outcome != second.Outcome {
		t.Fatalf("outcomes differ: %q vs %q", first.Outcome, second.Outcome)
	}
	if !reflect.DeepEqual(first.Image, second.Image) {
		t.Fatalf("identical inputs produced different images")
	}
}

func TestEnhanceLargeImageKeepsSize(t *testing.T) {
	e := New(Config{MinWidth: 10, MinHeight: 10}, nil)
	res := e.EnhanceForOCR(checkerboard(64, 48))
	b := res.Image.Bounds()
	if b.Dx() != 64 || b.Dy() != 48 {
		t.Fatalf("image above the minimum must keep its size, got %dx%d", b.Dx(), b.Dy())
	}
}
