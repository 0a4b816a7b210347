package pdfgen

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeCardImage(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 25))
	for y := 0; y < 25; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 220, B: 240, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func readHeader(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if len(data) < 5 {
		t.Fatalf("output %s too short", path)
	}
	return data[:5]
}

func TestCreatePDFFrontAndBack(t *testing.T) {
	dir := t.TempDir()
	front := filepath.Join(dir, "front.png")
	back := filepath.Join(dir, "back.png")
	writeCardImage(t, front)
	writeCardImage(t, back)
	out := filepath.Join(dir, "card.pdf")

	g := New("A4", nil)
	if err := g.CreatePDF(front, back, out); err != nil {
		t.Fatalf("CreatePDF: %v", err)
	}
	if !bytes.Equal(readHeader(t, out), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestCreatePDFFrontOnly(t *testing.T) {
	dir := t.TempDir()
	front := filepath.Join(dir, "front.png")
	writeCardImage(t, front)
	out := filepath.Join(dir, "card.pdf")

	g := New("", nil)
	if err := g.CreatePDF(front, "", out); err != nil {
		t.Fatalf("CreatePDF: %v", err)
	}
	if !bytes.Equal(readHeader(t, out), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestCreatePDFRequiresFront(t *testing.T) {
	g := New("A4", nil)
	if err := g.CreatePDF("", "", filepath.Join(t.TempDir(), "card.pdf")); err == nil {
		t.Fatalf("missing front image should fail")
	}
}

func TestCreatePDFMarkerForBrokenImage(t *testing.T) {
	dir := t.TempDir()
	front := filepath.Join(dir, "front.png")
	writeCardImage(t, front)
	broken := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(broken, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "card.pdf")

	g := New("A4", nil)
	if err := g.CreatePDF(front, broken, out); err != nil {
		t.Fatalf("broken back image should become a marker page: %v", err)
	}
	if !bytes.Equal(readHeader(t, out), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestWriteMarkerImage(t *testing.T) {
	path, err := writeMarkerImage("/scans/missing.png", os.ErrNotExist)
	if err != nil {
		t.Fatalf("writeMarkerImage: %v", err)
	}
	defer os.Remove(path)

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("marker is not a PNG: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 600 {
		t.Fatalf("marker size %dx%d", cfg.Width, cfg.Height)
	}
}

func TestValidateRenderable(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writeCardImage(t, good)
	if err := validateRenderable(good); err != nil {
		t.Fatalf("valid image rejected: %v", err)
	}
	if err := validateRenderable(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatalf("missing file should fail")
	}
}
