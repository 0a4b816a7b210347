package match

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// OCRConfig is one recognition pass of the multi-configuration method: a
// page segmentation mode, an engine mode and the empirical trust weight
// applied to confidences produced under it.
type OCRConfig struct {
	Description string  `toml:"description"`
	PSM         int     `toml:"psm"`
	OEM         int     `toml:"oem"`
	Weight      float64 `toml:"weight"`
}

// Zone is a fractional hot region of the card layout known to contain the
// holder name. Coordinates are fractions of the image dimensions.
type Zone struct {
	Name   string  `toml:"name"`
	X0     float64 `toml:"x0"`
	Y0     float64 `toml:"y0"`
	X1     float64 `toml:"x1"`
	Y1     float64 `toml:"y1"`
	Weight float64 `toml:"weight"`
}

// Profile bundles every empirically tuned constant of one card layout
// family: keyword sets, recognition passes, layout hot zones, anchor
// phrases and vocabularies. A different document family supplies its own
// profile instead of code changes.
type Profile struct {
	// Languages are the trained-data hints passed to the OCR engine.
	Languages []string `toml:"languages"`

	// IDLength is the canonical identifier length of the domain (14 for
	// Egyptian national IDs).
	IDLength int `toml:"id_length"`

	// FrontKeywords and BackKeywords classify an image's side from its
	// filename. Back keywords are checked first.
	FrontKeywords []string `toml:"front_keywords"`
	BackKeywords  []string `toml:"back_keywords"`

	// NameLabels are explicit field labels that may precede the holder
	// name ("name:", Arabic equivalents).
	NameLabels []string `toml:"name_labels"`

	// Anchors are issuing-authority boilerplate phrases; the lines that
	// follow an anchor are inspected for name-shaped text.
	Anchors []string `toml:"anchors"`

	// ExcludeWords is the noise vocabulary stripped from candidate names
	// (field labels like "رقم" or "بطاقة").
	ExcludeWords []string `toml:"exclude_words"`

	// OCRConfigs are the passes of the multi-configuration method.
	OCRConfigs []OCRConfig `toml:"ocr_configs"`

	// Zones are the region-based method's layout hot zones.
	Zones []Zone `toml:"zones"`

	// MinTokenConfidence is the per-token floor (engine-native 0-100
	// scale) below which recognized words are discarded.
	MinTokenConfidence float64 `toml:"min_token_confidence"`

	// FullTimeoutSeconds and RegionTimeoutSeconds bound individual
	// recognition calls so one malformed image cannot stall a batch.
	FullTimeoutSeconds   int `toml:"full_timeout_seconds"`
	RegionTimeoutSeconds int `toml:"region_timeout_seconds"`
}

// DefaultProfile returns the profile tuned for the Egyptian national ID
// card layout.
func DefaultProfile() Profile {
	return Profile{
		Languages:     []string{"ara", "eng"},
		IDLength:      14,
		FrontKeywords: []string{"front", "f", "وش", "امام", "face"},
		BackKeywords:  []string{"back", "b", "ضهر", "خلف", "rear"},
		NameLabels: []string{
			"الاسم", "اسم", "الإسم", "إسم",
			"اسم الحامل", "حامل البطاقة", "صاحب البطاقة",
			"name", "holder", "cardholder",
		},
		Anchors: []string{
			"جمهورية مصر العربية", "وزارة الداخلية", "بطاقة الرقم القومي",
			"ARAB REPUBLIC OF EGYPT", "MINISTRY OF INTERIOR", "NATIONAL ID",
		},
		ExcludeWords: []string{"رقم", "بطاقة", "قومي", "تاريخ", "ميلاد", "محافظة", "العنوان"},
		OCRConfigs: []OCRConfig{
			{Description: "general layout", PSM: 6, OEM: 3, Weight: 1.0},
			{Description: "single text line", PSM: 7, OEM: 3, Weight: 0.9},
			{Description: "lstm neural net", PSM: 6, OEM: 1, Weight: 1.1},
			{Description: "single column", PSM: 4, OEM: 3, Weight: 0.8},
			{Description: "sparse text", PSM: 11, OEM: 3, Weight: 0.7},
		},
		Zones: []Zone{
			{Name: "header", X0: 0, Y0: 0, X1: 1, Y1: 0.35, Weight: 1.3},
			{Name: "name_band", X0: 0, Y0: 0.2, X1: 1, Y1: 0.55, Weight: 1.5},
			{Name: "central", X0: 0.1, Y0: 0.1, X1: 0.9, Y1: 0.45, Weight: 1.2},
			{Name: "secondary", X0: 0, Y0: 0.35, X1: 1, Y1: 0.65, Weight: 0.9},
		},
		MinTokenConfidence:   60,
		FullTimeoutSeconds:   30,
		RegionTimeoutSeconds: 20,
	}
}

// LoadProfile reads a TOML profile file. Fields left unset fall back to
// the default profile's values, so a partial override file is valid.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	p := DefaultProfile()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

func (p Profile) validate() error {
	if p.IDLength < 4 {
		return fmt.Errorf("id_length %d too short", p.IDLength)
	}
	for _, z := range p.Zones {
		if z.X1 <= z.X0 || z.Y1 <= z.Y0 {
			return fmt.Errorf("zone %q has non-positive extent", z.Name)
		}
		if z.X0 < 0 || z.Y0 < 0 || z.X1 > 1 || z.Y1 > 1 {
			return fmt.Errorf("zone %q exceeds unit bounds", z.Name)
		}
	}
	for _, c := range p.OCRConfigs {
		if c.Weight <= 0 {
			return fmt.Errorf("ocr config %q has non-positive weight", c.Description)
		}
	}
	return nil
}
