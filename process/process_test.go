package process

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestParseHexColor(t *testing.T) {
	got, err := ParseHexColor("#FF8000")
	if err != nil {
		t.Fatalf("ParseHexColor: %v", err)
	}
	want := color.NRGBA{R: 255, G: 128, B: 0, A: 255}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	for _, bad := range []string{"", "FF8000", "#F80", "#GGGGGG", "#FF80001"} {
		if _, err := ParseHexColor(bad); err == nil {
			t.Fatalf("ParseHexColor(%q) should fail", bad)
		}
	}
}

func TestProcessImageFlattensTransparency(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "card.png")
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	// Fully transparent input: flattening exposes the background.
	writePNG(t, src, img)

	p := New("#FFFFFF", nil)
	out, err := p.ProcessImage(src)
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	defer os.Remove(out)

	processed, err := imaging.Open(out)
	if err != nil {
		t.Fatalf("open processed: %v", err)
	}
	r, g, b, a := processed.At(5, 5).RGBA()
	if a != 0xffff {
		t.Fatalf("processed image still transparent, alpha=%d", a)
	}
	if r < 0xf000 || g < 0xf000 || b < 0xf000 {
		t.Fatalf("transparent area should flatten to background, got %d/%d/%d", r, g, b)
	}
}

func TestProcessImageErrors(t *testing.T) {
	p := New("#FFFFFF", nil)
	if _, err := p.ProcessImage(""); err == nil {
		t.Fatalf("empty path should fail")
	}
	if _, err := p.ProcessImage(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatalf("missing file should fail")
	}
}

func TestNewFallsBackToWhite(t *testing.T) {
	p := New("not-a-color", nil)
	if p.bg != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("invalid background should fall back to white, got %+v", p.bg)
	}
}

func TestResizeForPDF(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.png")
	writePNG(t, small, image.NewNRGBA(image.Rect(0, 0, 20, 20)))

	p := New("#FFFFFF", nil)
	if got := p.ResizeForPDF(small, 100, 100); got != small {
		t.Fatalf("image within bounds should keep its path, got %q", got)
	}

	large := filepath.Join(dir, "large.png")
	writePNG(t, large, image.NewNRGBA(image.Rect(0, 0, 400, 200)))
	got := p.ResizeForPDF(large, 100, 100)
	if got == large {
		t.Fatalf("oversized image should be rewritten")
	}
	defer os.Remove(got)
	resized, err := imaging.Open(got)
	if err != nil {
		t.Fatalf("open resized: %v", err)
	}
	b := resized.Bounds()
	if b.Dx() > 100 || b.Dy() > 100 {
		t.Fatalf("resized image %dx%d exceeds bounds", b.Dx(), b.Dy())
	}
}
