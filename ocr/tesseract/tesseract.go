package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for region cropping
	"image/png"
	"math"
	"strings"

	"github.com/otiai10/gosseract/v2"
	_ "golang.org/x/image/tiff"

	"github.com/hazemadel/cardpdf/ocr"
)

func init() {
	ocr.SetDefaultEngine(NewEngine(Config{}))
}

// Config carries engine-level settings resolved once at construction time.
// There is no ambient global tool path: callers that need a non-standard
// tessdata location pass it here.
type Config struct {
	// TessdataPrefix points at the directory holding trained language data.
	// Empty means the library default.
	TessdataPrefix string
	// Languages are the default language hints applied when an input carries
	// none of its own.
	Languages []string
}

// Engine implements ocr.Engine and ocr.BatchEngine using the gosseract
// client as the local Tesseract provider.
type Engine struct {
	cfg           Config
	clientFactory func() *gosseract.Client
}

// NewEngine constructs a Tesseract-backed OCR engine with the given config.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg, clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single image input. The context deadline, if
// any, bounds the call: recognition still running at the deadline is
// abandoned and reported as a context error. Tesseract itself cannot be
// interrupted mid-page, so the goroutine drains in the background.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	type outcome struct {
		res ocr.Result
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		c := e.clientFactory()
		defer c.Close()
		res, err := e.recognizeWithClient(c, in)
		ch <- outcome{res, err}
	}()
	select {
	case <-ctx.Done():
		return ocr.Result{}, ctx.Err()
	case out := <-ch:
		return out.res, out.err
	}
}

// RecognizeBatch processes multiple inputs sequentially. A failed input
// fails the batch; callers that want per-input tolerance should loop over
// Recognize themselves.
func (e *Engine) RecognizeBatch(ctx context.Context, inputs []ocr.Input) ([]ocr.Result, error) {
	results := make([]ocr.Result, 0, len(inputs))
	for _, in := range inputs {
		res, err := e.Recognize(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("recognize %s: %w", in.ID, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *Engine) recognizeWithClient(c *gosseract.Client, in ocr.Input) (ocr.Result, error) {
	imgData, err := cropImage(in.Image, in.Region)
	if err != nil {
		return ocr.Result{}, err
	}
	if e.cfg.TessdataPrefix != "" {
		if err := c.SetTessdataPrefix(e.cfg.TessdataPrefix); err != nil {
			return ocr.Result{}, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := c.SetImageFromBytes(imgData); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	langs := in.Languages
	if len(langs) == 0 {
		langs = e.cfg.Languages
	}
	if len(langs) > 0 {
		if err := c.SetLanguage(langs...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return ocr.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}
	plain := strings.TrimSpace(text)

	words := extractWords(c)
	lines := groupLines(plain, words)

	return ocr.Result{
		InputID:   in.ID,
		PlainText: plain,
		Lines:     lines,
		Words:     words,
		Language:  firstLanguage(langs),
	}, nil
}

func extractWords(c *gosseract.Client) []ocr.TextWord {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil
	}
	words := make([]ocr.TextWord, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, ocr.TextWord{
			Text:       b.Word,
			Bounds:     ocr.Region{X: float64(b.Box.Min.X), Y: float64(b.Box.Min.Y), Width: float64(b.Box.Dx()), Height: float64(b.Box.Dy())},
			Confidence: b.Confidence,
		})
	}
	return words
}

// groupLines splits the plain text on newlines and attaches the words whose
// tokens appear in each line. Tesseract's word boxes carry no line index via
// gosseract, so the association is textual.
func groupLines(plain string, words []ocr.TextWord) []ocr.TextLine {
	raw := strings.Split(plain, "\n")
	lines := make([]ocr.TextLine, 0, len(raw))
	for _, lt := range raw {
		lt = strings.TrimSpace(lt)
		if lt == "" {
			continue
		}
		var lineWords []ocr.TextWord
		var sum float64
		for _, w := range words {
			if w.Text != "" && strings.Contains(lt, w.Text) {
				lineWords = append(lineWords, w)
				sum += w.Confidence
			}
		}
		var avg float64
		if len(lineWords) > 0 {
			avg = sum / float64(len(lineWords))
		}
		lines = append(lines, ocr.TextLine{
			Text:       lt,
			Bounds:     mergeBounds(lineWords),
			Words:      lineWords,
			Confidence: avg,
		})
	}
	return lines
}

func mergeBounds(words []ocr.TextWord) ocr.Region {
	if len(words) == 0 {
		return ocr.Region{}
	}
	minX, minY := math.MaxFloat64, math.MaxFloat64
	var maxX, maxY float64
	for _, w := range words {
		minX = math.Min(minX, w.Bounds.X)
		minY = math.Min(minY, w.Bounds.Y)
		maxX = math.Max(maxX, w.Bounds.X+w.Bounds.Width)
		maxY = math.Max(maxY, w.Bounds.Y+w.Bounds.Height)
	}
	return ocr.Region{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func firstLanguage(langs []string) string {
	if len(langs) == 0 {
		return ""
	}
	return langs[0]
}

func cropImage(data []byte, region *ocr.Region) ([]byte, error) {
	if region == nil || region.IsEmpty() {
		return data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode for region: %w", err)
	}
	rect := image.Rect(
		int(math.Round(region.X)),
		int(math.Round(region.Y)),
		int(math.Round(region.X+region.Width)),
		int(math.Round(region.Y+region.Height)),
	).Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("region outside image bounds")
	}
	subImg, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return nil, fmt.Errorf("image does not support sub-image")
	}
	cropped := subImg.SubImage(rect)
	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("encode cropped image: %w", err)
	}
	return buf.Bytes(), nil
}
