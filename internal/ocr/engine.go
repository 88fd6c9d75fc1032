package ocr

import (
	"image"
	"sort"

	"github.com/ironsheep/patch-features-mcp/internal/feature"
	"github.com/pkg/errors"
)

// ErrUnavailable is returned by Locate when the binary was built without
// Tesseract support.
var ErrUnavailable = errors.New("ocr: tesseract support not compiled in (build with cgo)")

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// Engine locates words with Tesseract. It implements feature.TextLocator.
//
// Every Locate call runs its own Tesseract client, so an Engine is safe for
// concurrent use.
type Engine struct {
	// Language is the Tesseract language code, e.g. "eng" or "deu".
	Language string

	// MinConfidence drops words Tesseract is less sure about (0 to 1).
	MinConfidence float64
}

// New returns an engine for language, DefaultLanguage when empty.
func New(language string) *Engine {
	if language == "" {
		language = DefaultLanguage
	}
	return &Engine{Language: language}
}

// Locate returns the words of img with their boxes in img's coordinates.
// Empty images yield no words.
func (e *Engine) Locate(img image.Image) ([]feature.TextBox, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, nil
	}
	words, err := e.recognize(img)
	if err != nil {
		return nil, err
	}
	return toTextBoxes(words, img.Bounds().Min, e.MinConfidence), nil
}

// word is one recognized word as Tesseract reports it: confidence in percent,
// box relative to the encoded image.
type word struct {
	Box        image.Rectangle
	Text       string
	Confidence float64
}

// toTextBoxes drops blank and weak words, rescales confidence to [0, 1],
// shifts boxes by offset and orders them top to bottom, left to right.
func toTextBoxes(words []word, offset image.Point, minConfidence float64) []feature.TextBox {
	out := make([]feature.TextBox, 0, len(words))
	for _, w := range words {
		if w.Text == "" {
			continue
		}
		conf := w.Confidence / 100
		if conf < minConfidence {
			continue
		}
		out = append(out, feature.TextBox{
			Box:        w.Box.Add(offset),
			Text:       w.Text,
			Confidence: conf,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Box.Min, out[j].Box.Min
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return out
}

var _ feature.TextLocator = (*Engine)(nil)
