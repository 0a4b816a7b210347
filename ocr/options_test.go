package ocr

import "testing"

func TestTesseractOptions(t *testing.T) {
	in := Input{}
	WithTesseractPSM(6)(&in)
	if got := in.Metadata["tessedit_pageseg_mode"]; got != "6" {
		t.Fatalf("expected PSM to be set, got %q", got)
	}
	WithTesseractOEM(1)(&in)
	if got := in.Metadata["tessedit_ocr_engine_mode"]; got != "1" {
		t.Fatalf("expected OEM to be set, got %q", got)
	}
	WithTesseractWhitelist("0123456789")(&in)
	if got := in.Metadata["tessedit_char_whitelist"]; got != "0123456789" {
		t.Fatalf("expected whitelist to be set, got %q", got)
	}
}
