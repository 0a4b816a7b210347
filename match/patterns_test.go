package match

import (
	"strings"
	"testing"
)

func TestExtractNamesExplicitLabel(t *testing.T) {
	ps := newPatternSet(DefaultProfile())
	got := ps.extractNames("الاسم: محمد احمد علي")
	if len(got) == 0 {
		t.Fatalf("no candidates extracted")
	}
	found := false
	for _, c := range got {
		if c == "محمد احمد علي" {
			found = true
		}
	}
	if !found {
		t.Fatalf("labeled name not extracted, got %v", got)
	}
}

func TestExtractNamesStructural(t *testing.T) {
	ps := newPatternSet(DefaultProfile())
	got := ps.extractNames("مقدمة\nمحمد احمد علي\nخاتمة")
	found := false
	for _, c := range got {
		if c == "محمد احمد علي" {
			found = true
		}
	}
	if !found {
		t.Fatalf("structural name not extracted, got %v", got)
	}
}

func TestExtractNamesAfterAnchor(t *testing.T) {
	ps := newPatternSet(DefaultProfile())
	got := ps.extractNames("جمهورية مصر العربية\nمحمد احمد علي")
	if len(got) == 0 {
		t.Fatalf("no candidate after anchor line")
	}
}

func TestCleanName(t *testing.T) {
	ps := newPatternSet(DefaultProfile())
	cases := []struct {
		raw  string
		want string
	}{
		{"محمد* احمد 123 علي", "محمد احمد علي"},
		// Field vocabulary is stripped from candidates.
		{"رقم محمد علي", "محمد علي"},
		// Too little survives.
		{"اب", ""},
		{"123 456", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ps.cleanName(tc.raw); got != tc.want {
			t.Fatalf("cleanName(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestValidateName(t *testing.T) {
	ps := newPatternSet(DefaultProfile())
	cases := []struct {
		name string
		want bool
	}{
		{"محمد علي", true},
		{"محمد احمد علي حسن", true},
		{"Mohamed Ali", true},
		{"محمد", false},
		{"a b c d e f", false},
		{"محمد 12345 علي", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ps.validateName(tc.name); got != tc.want {
			t.Fatalf("validateName(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestLooksLikeName(t *testing.T) {
	ps := newPatternSet(DefaultProfile())
	cases := []struct {
		text string
		want bool
	}{
		{"محمد احمد", true},
		{"SHOUTING HEADER", false},
		{"ref 2991234", false},
		{"بطاقة محمد", false},
		{"National id card", false},
		{"محمد", false},
	}
	for _, tc := range cases {
		if got := ps.looksLikeName(tc.text); got != tc.want {
			t.Fatalf("looksLikeName(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestNormalizeForComparison(t *testing.T) {
	ps := newPatternSet(DefaultProfile())
	if ps.normalizeForComparison("Mohamed  Ali") != ps.normalizeForComparison("mohamed ali") {
		t.Fatalf("case and spacing should fold to the same key")
	}
	// Diacritics fold away.
	if ps.normalizeForComparison("مُحَمَّد علي") != ps.normalizeForComparison("محمد علي") {
		t.Fatalf("diacritics should fold to the same key")
	}
}

func TestLetterRatios(t *testing.T) {
	if r := letterRatio("محمد علي"); r != 1.0 {
		t.Fatalf("letterRatio = %v, want 1.0", r)
	}
	if r := arabicRatio("Mohamed"); r != 0 {
		t.Fatalf("arabicRatio of Latin text = %v, want 0", r)
	}
	if r := arabicRatio("محمد"); r != 1.0 {
		t.Fatalf("arabicRatio = %v, want 1.0", r)
	}
	if r := letterRatio(""); r != 0 {
		t.Fatalf("letterRatio of empty = %v, want 0", r)
	}
}

func TestNonEmptyLines(t *testing.T) {
	got := nonEmptyLines("a\n\n  \nb \n")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("nonEmptyLines = %q", strings.Join(got, "|"))
	}
}
