package pdfgen

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// writeMarkerImage renders a placeholder page image describing why the
// original could not be used, and returns the temp file path. The caller
// owns the file.
func writeMarkerImage(srcPath string, cause error) (string, error) {
	const w, h = 800, 600
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	lines := []string{
		"Error loading image",
		filepath.Base(srcPath),
		fmt.Sprint(cause),
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	y := h/2 - len(lines)*10
	for _, line := range lines {
		d.Dot = fixed.P((w-d.MeasureString(line).Ceil())/2, y)
		d.DrawString(line)
		y += 20
	}

	tmp, err := os.CreateTemp("", "marker_*.png")
	if err != nil {
		return "", err
	}
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
