package match

import (
	"sort"
	"strings"
)

// selectBestCandidate deduplicates a candidate pool on its folded form and
// ranks survivors by confidence, word count, closeness to three words and
// length, in that order. Deterministic for a given pool: insertion order
// breaks exact ties via the stable sort.
func selectBestCandidate(ps *patternSet, candidates []NameCandidate) (NameCandidate, bool) {
	if len(candidates) == 0 {
		return NameCandidate{}, false
	}

	unique := make(map[string]NameCandidate, len(candidates))
	order := make([]string, 0, len(candidates))
	for _, c := range candidates {
		key := ps.normalizeForComparison(c.Text)
		cur, seen := unique[key]
		if !seen {
			order = append(order, key)
			unique[key] = c
			continue
		}
		if c.Confidence > cur.Confidence {
			unique[key] = c
		}
	}

	ranked := make([]NameCandidate, 0, len(order))
	for _, key := range order {
		ranked = append(ranked, unique[key])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return candidateRanksHigher(ranked[i], ranked[j])
	})
	return ranked[0], true
}

func candidateRanksHigher(a, b NameCandidate) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	aw, bw := wordCount(a.Text), wordCount(b.Text)
	if aw != bw {
		return aw > bw
	}
	ad, bd := distanceFromThree(aw), distanceFromThree(bw)
	if ad != bd {
		return ad < bd
	}
	return len([]rune(a.Text)) > len([]rune(b.Text))
}

func wordCount(s string) int { return len(strings.Fields(s)) }

func distanceFromThree(words int) int {
	d := words - 3
	if d < 0 {
		return -d
	}
	return d
}
