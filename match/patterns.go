package match

import (
	"regexp"
	"strings"
)

// patternSet holds the compiled name-extraction patterns for one profile.
// Three categories apply in precedence order: explicit label-anchored
// matches, structural multi-word shapes, and positional matches one line
// after anchor boilerplate.
type patternSet struct {
	explicit    []*regexp.Regexp
	structural  []*regexp.Regexp
	labelPrefix *regexp.Regexp
	nonLetter   *regexp.Regexp
	spaces      *regexp.Regexp
	digitRun    *regexp.Regexp
	allCaps     *regexp.Regexp
	diacritics  *regexp.Regexp
	exclude     map[string]struct{}
	excludeSub  []string
	anchors     []string
}

const arabicClass = `\x{0627}-\x{064a}`

func newPatternSet(p Profile) *patternSet {
	quoted := make([]string, 0, len(p.NameLabels))
	for _, l := range p.NameLabels {
		if l != "" {
			quoted = append(quoted, regexp.QuoteMeta(l))
		}
	}
	labelAlt := strings.Join(quoted, "|")

	explicit := []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:` + labelAlt + `)\s*:?\s*([` + arabicClass + `\s]{4,60})`),
		regexp.MustCompile(`(?i)(?:` + labelAlt + `)\s*:?\s*([A-Za-z\s]{4,60})`),
	}
	structural := []*regexp.Regexp{
		// Four-word names in the target script, the fullest form.
		regexp.MustCompile(`([` + arabicClass + `]{2,}\s+[` + arabicClass + `]{2,}\s+[` + arabicClass + `]{2,}\s+[` + arabicClass + `]{2,})`),
		// Three-word names, the common form.
		regexp.MustCompile(`([` + arabicClass + `]{2,}\s+[` + arabicClass + `]{2,}\s+[` + arabicClass + `]{2,})`),
		// Two substantial words.
		regexp.MustCompile(`([` + arabicClass + `]{3,}\s+[` + arabicClass + `]{3,})`),
		// Title-case Latin names.
		regexp.MustCompile(`([A-Z][a-z]{2,}\s+[A-Z][a-z]{2,}(?:\s+[A-Z][a-z]{2,})*)`),
		// Mixed-script word sequences.
		regexp.MustCompile(`([A-Za-z` + arabicClass + `]{2,}\s+[A-Za-z` + arabicClass + `]{2,}(?:\s+[A-Za-z` + arabicClass + `]{2,})*)`),
	}

	exclude := make(map[string]struct{}, len(p.ExcludeWords))
	for _, w := range p.ExcludeWords {
		exclude[w] = struct{}{}
	}

	return &patternSet{
		explicit:    explicit,
		structural:  structural,
		labelPrefix: regexp.MustCompile(`(?i)^(?:` + labelAlt + `)\s*:?\s*`),
		nonLetter:   regexp.MustCompile(`[^` + arabicClass + `A-Za-z\s]`),
		spaces:      regexp.MustCompile(`\s+`),
		digitRun:    regexp.MustCompile(`\d{3,}`),
		allCaps:     regexp.MustCompile(`^[A-Z\s]+$`),
		diacritics:  regexp.MustCompile(`[\x{064B}-\x{0652}]`),
		exclude:     exclude,
		excludeSub:  []string{"id", "card", "date", "birth"},
		anchors:     append([]string(nil), p.Anchors...),
	}
}

// extractNames pulls raw name candidates out of a text blob. Explicit and
// structural patterns run per line; the positional category takes the line
// immediately after an anchor phrase.
func (ps *patternSet) extractNames(text string) []string {
	var candidates []string
	lines := nonEmptyLines(text)
	for _, re := range ps.explicit {
		for _, line := range lines {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				if cleaned := ps.cleanName(m[1]); cleaned != "" {
					candidates = append(candidates, cleaned)
				}
			}
		}
	}
	for _, re := range ps.structural {
		for _, line := range lines {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				if cleaned := ps.cleanName(m[1]); cleaned != "" {
					candidates = append(candidates, cleaned)
				}
			}
		}
	}
	for i, line := range lines {
		if i+1 >= len(lines) {
			break
		}
		for _, anchor := range ps.anchors {
			if strings.Contains(line, anchor) {
				if cleaned := ps.cleanName(lines[i+1]); cleaned != "" {
					candidates = append(candidates, cleaned)
				}
				break
			}
		}
	}
	return candidates
}

// cleanName strips recognition artifacts and label vocabulary from a raw
// match. Returns the empty string if nothing name-like survives.
func (ps *patternSet) cleanName(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = ps.nonLetter.ReplaceAllString(s, "")
	s = strings.TrimSpace(ps.spaces.ReplaceAllString(s, " "))
	s = ps.labelPrefix.ReplaceAllString(s, "")

	words := strings.Fields(s)
	valid := words[:0]
	for _, w := range words {
		if _, bad := ps.exclude[w]; bad {
			continue
		}
		if len([]rune(w)) < 2 {
			continue
		}
		valid = append(valid, w)
	}
	final := strings.Join(valid, " ")
	if len(valid) < 2 || len([]rune(final)) < 4 {
		return ""
	}
	return final
}

// validateName enforces the shape every accepted candidate must have:
// 2-5 words of 2-15 letters each, with letters making up at least 85% of
// the non-space characters.
func (ps *patternSet) validateName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if len([]rune(trimmed)) < 4 {
		return false
	}
	words := strings.Fields(trimmed)
	if len(words) < 2 || len(words) > 5 {
		return false
	}
	if letterRatio(trimmed) < 0.85 {
		return false
	}
	for _, w := range words {
		n := len([]rune(w))
		if n < 2 || n > 15 {
			return false
		}
	}
	return true
}

// looksLikeName is the weaker shape heuristic used on lines following an
// anchor phrase: 2-5 words, mostly letters, not shouting, no long digit
// runs, free of field-label vocabulary.
func (ps *patternSet) looksLikeName(text string) bool {
	words := strings.Fields(text)
	if len(words) < 2 || len(words) > 5 {
		return false
	}
	if letterRatio(text) < 0.8 {
		return false
	}
	if ps.digitRun.MatchString(text) {
		return false
	}
	if ps.allCaps.MatchString(text) {
		return false
	}
	for w := range ps.exclude {
		if strings.Contains(text, w) {
			return false
		}
	}
	lower := strings.ToLower(text)
	for _, sub := range ps.excludeSub {
		if strings.Contains(lower, sub) {
			return false
		}
	}
	return true
}

// normalizeForComparison folds a name into a deduplication key: lowered,
// diacritics stripped, whitespace collapsed.
func (ps *patternSet) normalizeForComparison(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = ps.diacritics.ReplaceAllString(s, "")
	return ps.spaces.ReplaceAllString(s, " ")
}

func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

func isArabicLetter(r rune) bool { return r >= 0x0627 && r <= 0x064a }

func isLatinLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// letterRatio reports the share of non-space characters that are letters
// of either target script.
func letterRatio(s string) float64 {
	var letters, total int
	for _, r := range s {
		if r == ' ' || r == '\t' {
			continue
		}
		total++
		if isArabicLetter(r) || isLatinLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}

// arabicRatio reports the share of non-space characters in the target
// script.
func arabicRatio(s string) float64 {
	var arabic, total int
	for _, r := range s {
		if r == ' ' || r == '\t' {
			continue
		}
		total++
		if isArabicLetter(r) {
			arabic++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(arabic) / float64(total)
}
