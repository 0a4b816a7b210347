// Package pdfgen renders matched card images into PDF documents: one
// image per page, scaled to fit the page margins preserving aspect ratio
// and centered. An image that cannot be rendered becomes an in-page error
// marker instead of failing the document.
package pdfgen

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for render validation
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	_ "golang.org/x/image/tiff"

	"github.com/hazemadel/cardpdf/observability"
)

// Generator assembles card PDFs. The zero value is not usable; construct
// with New.
type Generator struct {
	formSize string
	log      observability.Logger
}

// New constructs a Generator. formSize names a paper size understood by
// the PDF layer ("A4", "Letter", ...); empty means A4.
func New(formSize string, log observability.Logger) *Generator {
	if formSize == "" {
		formSize = "A4"
	}
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Generator{formSize: formSize, log: log}
}

// CreatePDF writes a PDF containing the front image and, when present,
// the back image, each on its own page. Unrenderable images are replaced
// by an error-marker page; only a completely unwritable output fails.
func (g *Generator) CreatePDF(frontPath, backPath, outPath string) error {
	if frontPath == "" {
		return fmt.Errorf("front image is required")
	}
	inputs := []string{frontPath}
	if backPath != "" {
		inputs = append(inputs, backPath)
	}

	pages := make([]string, 0, len(inputs))
	var markers []string
	defer func() {
		for _, m := range markers {
			os.Remove(m)
		}
	}()
	for _, p := range inputs {
		if err := validateRenderable(p); err != nil {
			g.log.Warn("replacing unrenderable image with marker page",
				observability.String("file", filepath.Base(p)),
				observability.Error("err", err))
			marker, merr := writeMarkerImage(p, err)
			if merr != nil {
				return fmt.Errorf("create error marker for %s: %w", p, merr)
			}
			markers = append(markers, marker)
			pages = append(pages, marker)
			continue
		}
		pages = append(pages, p)
	}

	imp, err := api.Import(fmt.Sprintf("form:%s, pos:c, sc:0.9 rel", g.formSize), types.POINTS)
	if err != nil {
		return fmt.Errorf("build import config: %w", err)
	}
	if err := api.ImportImagesFile(pages, outPath, imp, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("write pdf %s: %w", outPath, err)
	}
	return nil
}

// validateRenderable checks that the file exists and decodes as an image.
func validateRenderable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("zero dimensions")
	}
	return nil
}
