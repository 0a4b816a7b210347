package match

import "testing"

func TestClassifySide(t *testing.T) {
	profile := DefaultProfile()
	cases := []struct {
		filename string
		want     Side
	}{
		{"29912345678901_front.jpg", SideFront},
		{"29912345678901_back.jpg", SideBack},
		{"29912345678901_وش.png", SideFront},
		{"29912345678901_ضهر.png", SideBack},
		{"id_face_001.png", SideFront},
		{"rear_29912345678901.tif", SideBack},
		// Both cues present: the back keyword is the more specific signal.
		{"29912345678901_front_back.jpg", SideBack},
		// No cue at all defaults to front.
		{"29912345678901.png", SideFront},
	}
	for _, tc := range cases {
		if got := ClassifySide(tc.filename, profile); got != tc.want {
			t.Fatalf("ClassifySide(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}
