package match

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	"github.com/hazemadel/cardpdf/observability"
	"github.com/hazemadel/cardpdf/ocr"
)

// extractNameCandidates runs the three independent extraction methods and
// pools their candidates. An empty slice means nothing name-shaped was
// recognized; engine failures degrade to that, never to an error.
func (m *Matcher) extractNameCandidates(ctx context.Context, path string, enhanced image.Image) []NameCandidate {
	img := enhanced
	if img == nil {
		if decoded, err := openImage(path); err == nil {
			img = decoded
		}
	}

	var pool []NameCandidate
	pool = append(pool, m.multiConfigCandidates(ctx, path, img)...)
	if img != nil {
		pool = append(pool, m.regionCandidates(ctx, img)...)
		pool = append(pool, m.contextCandidates(ctx, img)...)
	}
	return pool
}

// multiConfigCandidates recognizes the full image under every configured
// PSM/OEM profile, keeps only tokens above the confidence floor, and
// pattern-extracts names from the resulting blob. Each profile's trust
// weight scales the candidate confidences.
func (m *Matcher) multiConfigCandidates(ctx context.Context, path string, img image.Image) []NameCandidate {
	var out []NameCandidate
	for _, cfg := range m.profile.OCRConfigs {
		res, err := m.recognize(ctx, path, img, nil, cfg.PSM, cfg.OEM, m.fullTimeout())
		if err != nil {
			m.log.Debug("ocr config failed",
				observability.String("config", cfg.Description),
				observability.Error("err", err))
			continue
		}
		blob := m.highConfidenceText(res.Words)
		if blob == "" {
			continue
		}
		for _, cand := range m.ps.extractNames(blob) {
			if !m.ps.validateName(cand) {
				continue
			}
			conf := clampConf(m.advancedConfidence(cand, res.Words) * cfg.Weight)
			out = append(out, NameCandidate{
				Text:       cand,
				Method:     "multiconfig:" + cfg.Description,
				Confidence: conf,
			})
		}
	}
	return out
}

// regionCandidates crops each layout hot zone and recognizes it in
// isolation. Zones overlap on purpose: the name sits in different bands
// depending on print shift and crop.
func (m *Matcher) regionCandidates(ctx context.Context, img image.Image) []NameCandidate {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	var out []NameCandidate
	for _, zone := range m.profile.Zones {
		region := ocr.Region{
			X:      zone.X0 * w,
			Y:      zone.Y0 * h,
			Width:  (zone.X1 - zone.X0) * w,
			Height: (zone.Y1 - zone.Y0) * h,
		}
		res, err := m.recognize(ctx, "", img, &region, 6, 3, m.regionTimeout())
		if err != nil {
			m.log.Debug("region recognition failed",
				observability.String("zone", zone.Name),
				observability.Error("err", err))
			continue
		}
		if strings.TrimSpace(res.PlainText) == "" {
			continue
		}
		for _, cand := range m.ps.extractNames(res.PlainText) {
			if !m.ps.validateName(cand) {
				continue
			}
			out = append(out, NameCandidate{
				Text:       cand,
				Method:     "region:" + zone.Name,
				Confidence: m.regionConfidence(cand),
			})
		}
	}
	return out
}

// contextCandidates recognizes the full image once and inspects the 1-3
// lines following each anchor phrase for name-shaped text.
func (m *Matcher) contextCandidates(ctx context.Context, img image.Image) []NameCandidate {
	res, err := m.recognize(ctx, "", img, nil, 6, 3, m.fullTimeout())
	if err != nil {
		m.log.Debug("context recognition failed", observability.Error("err", err))
		return nil
	}
	lines := nonEmptyLines(res.PlainText)
	var out []NameCandidate
	for i, line := range lines {
		for _, anchor := range m.ps.anchors {
			if !strings.Contains(line, anchor) {
				continue
			}
			for j := i + 1; j < len(lines) && j <= i+3; j++ {
				if !m.ps.looksLikeName(lines[j]) {
					continue
				}
				cleaned := m.ps.cleanName(lines[j])
				if cleaned == "" || !m.ps.validateName(cleaned) {
					continue
				}
				out = append(out, NameCandidate{
					Text:       cleaned,
					Method:     "context",
					Confidence: m.contextConfidence(cleaned),
				})
			}
			break
		}
	}
	return out
}

// recognize builds an OCR input for the image (or the raw file when no
// decoded image is available) and invokes the engine under a deadline.
func (m *Matcher) recognize(ctx context.Context, path string, img image.Image, region *ocr.Region, psm, oem int, timeout time.Duration) (ocr.Result, error) {
	opts := []ocr.InputOption{
		ocr.WithLanguages(m.profile.Languages...),
		ocr.WithTesseractPSM(psm),
		ocr.WithTesseractOEM(oem),
	}
	if region != nil {
		opts = append(opts, ocr.WithRegion(*region))
	}
	var (
		in  ocr.Input
		err error
	)
	if img != nil {
		in, err = ocr.InputFromImage(img, opts...)
	} else if path != "" {
		in, err = ocr.InputFromFile(path, opts...)
	} else {
		return ocr.Result{}, fmt.Errorf("no image available")
	}
	if err != nil {
		return ocr.Result{}, err
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return m.engine.Recognize(rctx, in)
}

// highConfidenceText concatenates tokens whose recognition confidence
// clears the profile floor.
func (m *Matcher) highConfidenceText(words []ocr.TextWord) string {
	var kept []string
	for _, w := range words {
		if w.Confidence > m.profile.MinTokenConfidence && strings.TrimSpace(w.Text) != "" {
			kept = append(kept, w.Text)
		}
	}
	return strings.Join(kept, " ")
}

// advancedConfidence scores a multi-configuration candidate: word-count
// shape, target-script ratio, per-token recognition confidence and length
// shape, before the configuration weight is applied.
func (m *Matcher) advancedConfidence(name string, words []ocr.TextWord) float64 {
	conf := 0.0
	tokens := strings.Fields(name)
	if len(tokens) >= 2 && len(tokens) <= 4 {
		conf += 40
	} else {
		conf += 20
	}
	conf += arabicRatio(name) * 30
	for _, tok := range tokens {
		for _, w := range words {
			if w.Text != "" && strings.Contains(w.Text, tok) {
				conf += math.Max(0, w.Confidence-50) * 0.15
			}
		}
	}
	if n := len([]rune(name)); n >= 8 && n <= 35 {
		conf += 15
	}
	return clampConf(conf)
}

func (m *Matcher) regionConfidence(name string) float64 {
	conf := 60.0
	tokens := strings.Fields(name)
	if len(tokens) >= 3 && len(tokens) <= 4 {
		conf += 20
	}
	if n := len([]rune(name)); n >= 10 && n <= 30 {
		conf += 15
	}
	return clampConf(conf)
}

func (m *Matcher) contextConfidence(name string) float64 {
	conf := 70.0
	if arabicRatio(name) > 0.8 {
		conf += 15
	}
	return clampConf(conf)
}

func (m *Matcher) fullTimeout() time.Duration {
	return time.Duration(m.profile.FullTimeoutSeconds) * time.Second
}

func (m *Matcher) regionTimeout() time.Duration {
	return time.Duration(m.profile.RegionTimeoutSeconds) * time.Second
}

func clampConf(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
