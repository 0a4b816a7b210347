package match

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// identExtractor derives the matching key for an image. The filename is
// always tried first; content-based recognition and a filename slug cover
// the rest, so extraction is total.
type identExtractor struct {
	strip     *regexp.Regexp
	sep       *regexp.Regexp
	ladder    []*regexp.Regexp
	canonical *regexp.Regexp
	longRun   *regexp.Regexp
}

func newIdentExtractor(p Profile) *identExtractor {
	tokens := append(append([]string{"card", "id"}, p.FrontKeywords...), p.BackKeywords...)
	// Longer tokens first so "front" is removed before "f" can split it.
	sort.Slice(tokens, func(i, j int) bool { return len(tokens[i]) > len(tokens[j]) })
	quoted := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != "" {
			quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(t)))
		}
	}
	stripAlt := strings.Join(quoted, "|")

	sideAlt := make([]string, 0, len(p.FrontKeywords)+len(p.BackKeywords))
	for _, t := range append(append([]string{}, p.FrontKeywords...), p.BackKeywords...) {
		if t != "" {
			sideAlt = append(sideAlt, regexp.QuoteMeta(strings.ToLower(t)))
		}
	}
	side := strings.Join(sideAlt, "|")

	n := p.IDLength
	ladder := []*regexp.Regexp{
		regexp.MustCompile(fmt.Sprintf(`(\d{%d})`, n)),
		regexp.MustCompile(fmt.Sprintf(`id_?(\d{%d})`, n)),
		regexp.MustCompile(fmt.Sprintf(`card_?(\d{%d})`, n)),
		regexp.MustCompile(fmt.Sprintf(`(\d{%d})_?(?:%s)`, n, side)),
		regexp.MustCompile(fmt.Sprintf(`(?:%s)_?(\d{%d})`, side, n)),
		regexp.MustCompile(`(\d{10,})`),
		regexp.MustCompile(`(\d{8,})`),
		regexp.MustCompile(`(\d{5,})`),
		regexp.MustCompile(`(\d+)`),
	}

	return &identExtractor{
		strip:     regexp.MustCompile(`(` + stripAlt + `)`),
		sep:       regexp.MustCompile(`[_\-\s]+`),
		ladder:    ladder,
		canonical: regexp.MustCompile(fmt.Sprintf(`\d{%d}`, n)),
		longRun:   regexp.MustCompile(`\d{10,}`),
	}
}

// fromFilename extracts an identifier from the filename stem, or returns
// the empty string if no digit run exists.
func (ie *identExtractor) fromFilename(stem string) string {
	cleaned := ie.strip.ReplaceAllString(strings.ToLower(stem), "")
	cleaned = strings.Trim(ie.sep.ReplaceAllString(cleaned, "_"), "_")

	for _, re := range ie.ladder {
		matches := re.FindAllStringSubmatch(cleaned, -1)
		if len(matches) == 0 {
			continue
		}
		best := ""
		for _, m := range matches {
			for _, part := range m[1:] {
				if part != "" && isDigits(part) && len(part) > len(best) {
					best = part
				}
			}
		}
		if best != "" {
			return best
		}
	}
	return ""
}

// fromLines scans recognized text lines for a canonical-length digit run,
// then any long run.
func (ie *identExtractor) fromLines(lines []string) string {
	for _, line := range lines {
		if id := ie.canonical.FindString(line); id != "" {
			return id
		}
	}
	for _, line := range lines {
		if id := ie.longRun.FindString(line); id != "" {
			return id
		}
	}
	return ""
}

// slugFallback derives a usable identifier from the filename when no digit
// run exists anywhere. Never returns the empty string.
func (ie *identExtractor) slugFallback(stem string) string {
	cleaned := strings.Trim(ie.sep.ReplaceAllString(strings.ToLower(stem), "_"), "_")
	if cleaned == "" {
		return "unknown"
	}
	if i := strings.IndexByte(cleaned, '_'); i > 0 {
		return cleaned[:i]
	}
	return cleaned
}

// ExtractIdentifierFromFilename runs the filename portion of identifier
// extraction for one path: the digit-run ladder first, then the slug
// fallback. Total for any non-empty filename.
func ExtractIdentifierFromFilename(path string, profile Profile) string {
	ie := newIdentExtractor(profile)
	stem := stemOf(path)
	if id := ie.fromFilename(stem); id != "" {
		return id
	}
	return ie.slugFallback(stem)
}

func stemOf(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		return base
	}
	return stem
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
