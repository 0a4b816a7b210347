package match

import "strings"

// ClassifySide labels an image front or back from filename cues alone.
// Back keywords are checked first because they are the more specific
// signal: a filename carrying both tokens resolves to back. Ambiguous
// names default to front.
func ClassifySide(filename string, profile Profile) Side {
	lower := strings.ToLower(filename)
	for _, kw := range profile.BackKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return SideBack
		}
	}
	for _, kw := range profile.FrontKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return SideFront
		}
	}
	return SideFront
}
