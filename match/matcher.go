package match

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/hazemadel/cardpdf/enhance"
	"github.com/hazemadel/cardpdf/observability"
	"github.com/hazemadel/cardpdf/ocr"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".tiff": {},
	".tif":  {},
}

// Config assembles a Matcher's collaborators. Zero values get sensible
// defaults: the package default OCR engine, a default enhancer, the
// Egyptian ID profile and no logging.
type Config struct {
	Profile  *Profile
	Engine   ocr.Engine
	Enhancer *enhance.Enhancer
	Logger   observability.Logger
	// UseOCR enables content-based extraction (names, identifier
	// fallback). Disabled, the matcher works from filenames alone.
	UseOCR bool
}

// Matcher pairs front/back card scans from a directory and extracts holder
// names. One Match call is one self-contained run: the enhancement cache
// and record table live exactly that long.
type Matcher struct {
	profile  Profile
	ps       *patternSet
	ident    *identExtractor
	engine   ocr.Engine
	enhancer *enhance.Enhancer
	log      observability.Logger
	useOCR   bool
}

// New constructs a Matcher from the given config.
func New(cfg Config) *Matcher {
	profile := DefaultProfile()
	if cfg.Profile != nil {
		profile = *cfg.Profile
	}
	engine := cfg.Engine
	if engine == nil {
		engine = ocr.DefaultEngine()
	}
	log := cfg.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	enhancer := cfg.Enhancer
	if enhancer == nil {
		enhancer = enhance.New(enhance.DefaultConfig(), log)
	}
	return &Matcher{
		profile:  profile,
		ps:       newPatternSet(profile),
		ident:    newIdentExtractor(profile),
		engine:   engine,
		enhancer: enhancer,
		log:      log,
		useOCR:   cfg.UseOCR,
	}
}

// Match processes every image in dir and returns the matched card records
// sorted by identifier. No single image's failure aborts the batch; an
// empty result means no pairs were found. The only error condition is a
// directory that cannot be read.
func (m *Matcher) Match(ctx context.Context, dir string) ([]CardRecord, error) {
	start := time.Now()
	files, err := m.imageFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		m.log.Warn("no image files found in directory", observability.String("dir", dir))
		return nil, nil
	}
	m.log.Info("matching card images",
		observability.String("dir", dir),
		observability.Int(observability.MetricImageCount, len(files)))

	// Stage 1: enhance everything up front. The cache is owned here and
	// handed into the extraction stages; a nil entry means the file never
	// decoded and is excluded from grouping.
	cache := make(map[string]image.Image, len(files))
	for _, path := range files {
		img, err := openImage(path)
		if err != nil {
			m.log.Warn("failed to decode image",
				observability.String("file", filepath.Base(path)),
				observability.Error("err", err))
			cache[path] = nil
			continue
		}
		cache[path] = m.enhancer.EnhanceForOCR(img).Image
	}

	// Stage 2: extract identifier, side and name per image and fold into
	// per-identifier records.
	records := make(map[string]*CardRecord)
	for _, path := range files {
		enhanced := cache[path]
		if enhanced == nil {
			// Undecodable image: excluded from grouping.
			continue
		}
		id := m.extractIdentifier(ctx, path, enhanced)
		side := ClassifySide(filepath.Base(path), m.profile)

		var name string
		var conf float64
		if m.useOCR {
			if n, c, ok := m.ExtractName(ctx, path, enhanced); ok {
				name, conf = n, c
			}
		}
		m.log.Debug("processed image",
			observability.String("file", filepath.Base(path)),
			observability.String("id", id),
			observability.String("side", string(side)),
			observability.String("name", name))

		rec, ok := records[id]
		if !ok {
			rec = &CardRecord{Identifier: id}
			records[id] = rec
		}
		m.assign(rec, side, path, name, conf)
	}

	// Stage 3: cross-validate weak names against the other side.
	if m.useOCR {
		m.crossValidate(ctx, records, cache)
	}

	out := make([]CardRecord, 0, len(records))
	for _, rec := range records {
		if rec.Front != "" {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })

	m.log.Info("matching complete",
		observability.Int(observability.MetricPairCount, len(out)),
		observability.Float64(observability.MetricMatchTime, time.Since(start).Seconds()))
	return out, nil
}

// assign occupies a record slot with slot-tolerant placement: the
// classified side first, then whichever slot is still free, tolerating a
// misclassified side. With both slots taken the image is dropped. A
// successful placement upgrades the record's name only on strictly higher
// confidence.
func (m *Matcher) assign(rec *CardRecord, side Side, path, name string, conf float64) {
	var placed Side
	switch {
	case side == SideFront && rec.Front == "":
		rec.Front = path
		placed = SideFront
	case side == SideBack && rec.Back == "":
		rec.Back = path
		placed = SideBack
	case rec.Front == "":
		rec.Front = path
		placed = SideFront
	case rec.Back == "":
		rec.Back = path
		placed = SideBack
	default:
		return
	}
	if name != "" && conf > rec.Confidence {
		rec.Name = name
		rec.Confidence = conf
		rec.nameFrom = placed
	}
}

// crossValidate retries name extraction from the opposite side for every
// record whose chosen name has fewer than three words. The alternative
// wins only with at least three words and strictly higher confidence.
func (m *Matcher) crossValidate(ctx context.Context, records map[string]*CardRecord, cache map[string]image.Image) {
	for _, rec := range records {
		if rec.Name == "" || wordCount(rec.Name) >= 3 {
			continue
		}
		other := rec.Back
		otherSide := SideBack
		if rec.nameFrom == SideBack {
			other = rec.Front
			otherSide = SideFront
		}
		if other == "" {
			continue
		}
		enhanced := cache[other]
		if enhanced == nil {
			continue
		}
		alt, altConf, ok := m.ExtractName(ctx, other, enhanced)
		if !ok || wordCount(alt) < 3 || altConf <= rec.Confidence {
			continue
		}
		m.log.Debug("cross-validation replaced name",
			observability.String("id", rec.Identifier),
			observability.String("name", alt))
		rec.Name = alt
		rec.Confidence = altConf
		rec.nameFrom = otherSide
	}
}

// ExtractName runs the full name-extraction pipeline for one image and
// returns the best candidate with its confidence. Usable standalone for
// diagnostics. ok is false when no candidate survived.
func (m *Matcher) ExtractName(ctx context.Context, path string, enhanced image.Image) (string, float64, bool) {
	pool := m.extractNameCandidates(ctx, path, enhanced)
	best, ok := selectBestCandidate(m.ps, pool)
	if !ok {
		return "", 0, false
	}
	m.log.Debug("selected name",
		observability.String("name", best.Text),
		observability.String("method", best.Method),
		observability.Float64("confidence", best.Confidence))
	return best.Text, best.Confidence, true
}

// extractIdentifier derives the matching key: filename digit runs first,
// then content-based recognition when enabled, then the filename slug.
// Total: never returns an empty string.
func (m *Matcher) extractIdentifier(ctx context.Context, path string, enhanced image.Image) string {
	stem := stemOf(path)
	if id := m.ident.fromFilename(stem); id != "" {
		return id
	}
	if m.useOCR && enhanced != nil {
		res, err := m.recognize(ctx, "", enhanced, nil, 6, 3, m.fullTimeout())
		if err == nil {
			if id := m.ident.fromLines(nonEmptyLines(res.PlainText)); id != "" {
				return id
			}
		} else {
			m.log.Debug("content identifier extraction failed",
				observability.String("file", filepath.Base(path)),
				observability.Error("err", err))
		}
	}
	return m.ident.slugFallback(stem)
}

// imageFiles lists the supported image files in dir sorted by name, so
// processing order is independent of directory enumeration order.
func (m *Matcher) imageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := imageExtensions[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

var errZeroArea = errors.New("image has zero area")

func openImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errZeroArea
	}
	return img, nil
}
