package enhance

import (
	"image"
	"image/color"
	"testing"
)

func TestAdaptiveThresholdIsBinary(t *testing.T) {
	src := checkerboard(24, 24)
	out := adaptiveThresholdGray(src, 11, 2)
	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds changed: %v vs %v", out.Bounds(), src.Bounds())
	}
	for _, p := range out.Pix {
		if p != 0 && p != 255 {
			t.Fatalf("non-binary pixel %d in thresholded output", p)
		}
	}
}

func TestMedianRemovesSpeck(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 7, 7))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	src.SetGray(3, 3, color.Gray{Y: 0})

	out := medianGray(src, 3)
	if out.GrayAt(3, 3).Y != 255 {
		t.Fatalf("isolated speck should be filtered out, got %d", out.GrayAt(3, 3).Y)
	}
}

func TestClahePreservesBounds(t *testing.T) {
	src := checkerboard(33, 17)
	out := claheGray(src, 3.0, 8)
	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds changed: %v vs %v", out.Bounds(), src.Bounds())
	}
}

func TestBilateralPreservesBounds(t *testing.T) {
	src := checkerboard(16, 16)
	out := bilateralGray(src, 9, 75, 75)
	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds changed: %v vs %v", out.Bounds(), src.Bounds())
	}
}

func TestUnsharpPreservesFlatRegions(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range src.Pix {
		src.Pix[i] = 128
	}
	out := unsharpGray(src, 1.0, 1.5, -0.5)
	if got := out.GrayAt(8, 8).Y; got < 126 || got > 130 {
		t.Fatalf("flat region should stay near its value, got %d", got)
	}
}
