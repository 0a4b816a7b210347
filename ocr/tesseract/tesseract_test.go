package tesseract

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/hazemadel/cardpdf/ocr"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestGroupLines(t *testing.T) {
	words := []ocr.TextWord{
		{Text: "hello", Bounds: ocr.Region{X: 0, Y: 0, Width: 40, Height: 10}, Confidence: 90},
		{Text: "world", Bounds: ocr.Region{X: 50, Y: 0, Width: 40, Height: 10}, Confidence: 80},
		{Text: "foo", Bounds: ocr.Region{X: 0, Y: 20, Width: 30, Height: 10}, Confidence: 70},
	}
	lines := groupLines("hello world\n\nfoo", words)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if len(lines[0].Words) != 2 || lines[0].Confidence != 85 {
		t.Fatalf("first line words=%d conf=%v", len(lines[0].Words), lines[0].Confidence)
	}
	if lines[1].Text != "foo" || len(lines[1].Words) != 1 {
		t.Fatalf("second line = %+v", lines[1])
	}
}

func TestMergeBounds(t *testing.T) {
	got := mergeBounds([]ocr.TextWord{
		{Bounds: ocr.Region{X: 10, Y: 10, Width: 20, Height: 10}},
		{Bounds: ocr.Region{X: 40, Y: 5, Width: 20, Height: 10}},
	})
	want := ocr.Region{X: 10, Y: 5, Width: 50, Height: 15}
	if got != want {
		t.Fatalf("mergeBounds = %+v, want %+v", got, want)
	}
	if (mergeBounds(nil) != ocr.Region{}) {
		t.Fatalf("empty input should merge to the zero region")
	}
}

func TestCropImage(t *testing.T) {
	data := encodePNG(t, image.NewNRGBA(image.Rect(0, 0, 10, 10)))

	// Nil region passes the payload through untouched.
	out, err := cropImage(data, nil)
	if err != nil {
		t.Fatalf("cropImage nil region: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("nil region should not re-encode")
	}

	out, err = cropImage(data, &ocr.Region{X: 2, Y: 2, Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("cropImage: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("cropped payload is not PNG: %v", err)
	}
	if cfg.Width != 4 || cfg.Height != 4 {
		t.Fatalf("cropped size %dx%d, want 4x4", cfg.Width, cfg.Height)
	}

	if _, err := cropImage(data, &ocr.Region{X: 100, Y: 100, Width: 5, Height: 5}); err == nil {
		t.Fatalf("region outside the image should fail")
	}

	if _, err := cropImage([]byte("junk"), &ocr.Region{X: 0, Y: 0, Width: 2, Height: 2}); err == nil {
		t.Fatalf("undecodable payload should fail")
	}
}

func TestFirstLanguage(t *testing.T) {
	if got := firstLanguage([]string{"ara", "eng"}); got != "ara" {
		t.Fatalf("firstLanguage = %q", got)
	}
	if got := firstLanguage(nil); got != "" {
		t.Fatalf("firstLanguage(nil) = %q", got)
	}
}
