package main

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// sanitizeFileName turns arbitrary extracted text into a safe filename:
// filesystem-reserved characters and whitespace runs become underscores,
// trailing dots and spaces are trimmed and the result is capped at 100
// runes. An empty result becomes "unknown".
func sanitizeFileName(name string) string {
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = whitespaceRuns.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.TrimRight(name, ". ")
	if name == "" {
		return "unknown"
	}
	runes := []rune(name)
	if len(runes) > 100 {
		name = string(runes[:100])
	}
	return name
}

// zipFiles writes the given files into a zip archive at archivePath,
// storing each under its base name.
func zipFiles(archivePath string, files []string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)

	for _, path := range files {
		if err := addToZip(zw, path); err != nil {
			zw.Close()
			out.Close()
			os.Remove(archivePath)
			return fmt.Errorf("add %s: %w", path, err)
		}
	}
	if err := zw.Close(); err != nil {
		out.Close()
		os.Remove(archivePath)
		return err
	}
	return out.Close()
}

func addToZip(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := zw.Create(filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
