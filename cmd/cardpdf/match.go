package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hazemadel/cardpdf/match"
	"github.com/hazemadel/cardpdf/observability"
	"github.com/hazemadel/cardpdf/ocr/tesseract"
	"github.com/hazemadel/cardpdf/pdfgen"
	"github.com/hazemadel/cardpdf/process"
)

type matchOptions struct {
	outDir         string
	profilePath    string
	background     string
	formSize       string
	tessdataPrefix string
	useOCR         bool
	useNames       bool
	zipOutput      bool
	verbose        bool
}

func newMatchCommand() *cobra.Command {
	opts := &matchOptions{}
	cmd := &cobra.Command{
		Use:   "match <directory>",
		Short: "Match card scans in a directory and write one PDF per pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "output", "directory for generated PDFs")
	cmd.Flags().StringVarP(&opts.profilePath, "config", "c", "", "TOML profile overriding the default card layout")
	cmd.Flags().StringVar(&opts.background, "background", "#FFFFFF", "background color for transparent scans (#RRGGBB)")
	cmd.Flags().StringVar(&opts.formSize, "form", "A4", "PDF page size (A4, Letter, ...)")
	cmd.Flags().StringVar(&opts.tessdataPrefix, "tessdata-prefix", "", "directory holding Tesseract trained data")
	cmd.Flags().BoolVar(&opts.useOCR, "ocr", false, "enable content-based extraction (names, identifier fallback)")
	cmd.Flags().BoolVar(&opts.useNames, "use-names", false, "name output PDFs after the extracted holder name")
	cmd.Flags().BoolVar(&opts.zipOutput, "zip", false, "bundle the generated PDFs into a zip archive")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func runMatch(cmd *cobra.Command, dir string, opts *matchOptions) error {
	log := newLogger(opts.verbose)

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	profile := match.DefaultProfile()
	if opts.profilePath != "" {
		profile, err = match.LoadProfile(opts.profilePath)
		if err != nil {
			return err
		}
	}

	cfg := match.Config{
		Profile: &profile,
		Logger:  log,
		UseOCR:  opts.useOCR,
	}
	if opts.useOCR {
		cfg.Engine = tesseract.NewEngine(tesseract.Config{
			TessdataPrefix: opts.tessdataPrefix,
			Languages:      profile.Languages,
		})
	}
	matcher := match.New(cfg)

	records, err := matcher.Match(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("match %s: %w", dir, err)
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No card pairs found.")
		return nil
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := process.New(opts.background, log)
	generator := pdfgen.New(opts.formSize, log)

	rows := make([][]string, 0, len(records))
	var pdfs []string
	failures := 0
	for _, rec := range records {
		outPath := filepath.Join(opts.outDir, pdfFileName(rec, opts.useNames))
		status := "ok"
		if err := writeCardPDF(processor, generator, rec, outPath); err != nil {
			log.Error("pdf generation failed",
				observability.String("id", rec.Identifier),
				observability.Error("err", err))
			status = "failed"
			failures++
		} else {
			pdfs = append(pdfs, outPath)
		}
		rows = append(rows, []string{
			rec.Identifier,
			rec.Name,
			fmt.Sprintf("%.0f", rec.Confidence),
			sideSummary(rec),
			status,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Identifier", "Name", "Conf", "Sides", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	))
	fmt.Fprintf(cmd.OutOrStdout(), "%d pair(s) matched, %d PDF(s) written to %s\n",
		len(records), len(pdfs), opts.outDir)

	if opts.zipOutput && len(pdfs) > 0 {
		archive := filepath.Join(opts.outDir, "cards.zip")
		if err := zipFiles(archive, pdfs); err != nil {
			return fmt.Errorf("create archive: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Archive written to %s\n", archive)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d PDFs failed", failures, len(records))
	}
	return nil
}

// writeCardPDF runs one record through image preparation and PDF
// assembly. Temporary processed images are cleaned up before returning.
func writeCardPDF(processor *process.Processor, generator *pdfgen.Generator, rec match.CardRecord, outPath string) error {
	front, err := processor.ProcessImage(rec.Front)
	if err != nil {
		return fmt.Errorf("process front: %w", err)
	}
	defer os.Remove(front)

	var back string
	if rec.HasBack() {
		back, err = processor.ProcessImage(rec.Back)
		if err != nil {
			return fmt.Errorf("process back: %w", err)
		}
		defer os.Remove(back)
	}

	return generator.CreatePDF(front, back, outPath)
}

// pdfFileName derives the output filename for a record: the extracted
// holder name when requested and available, else the identifier.
func pdfFileName(rec match.CardRecord, useNames bool) string {
	base := rec.Identifier
	if useNames && rec.HasName() {
		base = rec.Name
	}
	return sanitizeFileName(base) + ".pdf"
}

func sideSummary(rec match.CardRecord) string {
	if rec.HasBack() {
		return "front+back"
	}
	return "front only"
}

func newLogger(verbose bool) observability.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return observability.NewSlog(slog.New(handler))
}
