package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// InputOption mutates an OCR input before submission.
type InputOption func(*Input)

// WithLanguages sets language hints on the OCR input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithRegion sets the recognition region on the OCR input.
func WithRegion(region Region) InputOption {
	return func(in *Input) {
		if region.IsEmpty() {
			in.Region = nil
			return
		}
		in.Region = &region
	}
}

// WithDPI overrides the DPI value on the OCR input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithMetadata sets provider-specific metadata for the input.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			in.Metadata = nil
			return
		}
		in.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}

// InputFromImage converts a decoded image into an OCR input using PNG
// encoding. The ID defaults to the empty string; callers that need
// correlation should set one via the returned value.
func InputFromImage(img image.Image, opts ...InputOption) (Input, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Input{}, fmt.Errorf("encode image: %w", err)
	}
	in := Input{
		Image:  buf.Bytes(),
		Format: ImageFormatPNG,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in, nil
}

// InputFromFile reads an image file from disk into an OCR input. The format
// is inferred from the file extension; unknown extensions are submitted as
// PNG and left to the provider to sniff.
func InputFromFile(path string, opts ...InputOption) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("read image file: %w", err)
	}
	in := Input{
		ID:     filepath.Base(path),
		Image:  data,
		Format: formatForExt(filepath.Ext(path)),
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in, nil
}

func formatForExt(ext string) ImageFormat {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return ImageFormatJPEG
	case ".tif", ".tiff":
		return ImageFormatTIFF
	default:
		return ImageFormatPNG
	}
}
