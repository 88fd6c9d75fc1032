package feature

import (
	"image"

	"github.com/ironsheep/patch-features-mcp/internal/imaging"
)

// TextBox is one word-level region found by a TextLocator.
type TextBox struct {
	Box        image.Rectangle
	Text       string
	Confidence float64 // 0 to 1
}

// TextLocator finds words in an image.
type TextLocator interface {
	Locate(img image.Image) ([]TextBox, error)
}

// TextLayoutExtractor summarises the text inside a window as
// [word count, covered fraction, mean confidence].
//
// A word counts when its box center lies in the window; the covered fraction
// is the area of the window overlapped by word boxes (overlaps counted once
// per box, capped at 1). Locating runs once per generation. When it fails the
// whole generation is unextractable.
type TextLayoutExtractor struct {
	source
	locator TextLocator
	boxes   lazy[textLayout]
}

type textLayout struct {
	bounds image.Rectangle
	boxes  []TextBox
	ok     bool
}

// NewTextLayoutExtractor wraps locator.
func NewTextLayoutExtractor(locator TextLocator) *TextLayoutExtractor {
	return &TextLayoutExtractor{locator: locator}
}

// Dim is the length of every vector this extractor produces.
func (e *TextLayoutExtractor) Dim() int { return 3 }

// Extract implements Extractor.
func (e *TextLayoutExtractor) Extract(x, y, width, height int) (Patch, bool) {
	if width <= 0 || height <= 0 {
		return Patch{}, false
	}
	img, gen := e.current()
	layout := e.boxes.get(gen, func() textLayout {
		if img == nil || img.Bounds().Empty() || e.locator == nil {
			return textLayout{}
		}
		boxes, err := e.locator.Locate(img)
		if err != nil {
			return textLayout{}
		}
		return textLayout{bounds: img.Bounds(), boxes: boxes, ok: true}
	})
	if !layout.ok {
		return Patch{}, false
	}

	r := imaging.CenteredRect(x, y, width, height).Add(layout.bounds.Min)
	if !imaging.Contains(layout.bounds, r) {
		return Patch{}, false
	}

	var words, covered int
	var confidence float64
	for _, b := range layout.boxes {
		c := image.Pt((b.Box.Min.X+b.Box.Max.X)/2, (b.Box.Min.Y+b.Box.Max.Y)/2)
		if c.In(r) {
			words++
			confidence += b.Confidence
		}
		covered += area(b.Box.Intersect(r))
	}

	vec := make([]float64, 3)
	vec[0] = float64(words)
	vec[1] = imaging.Clamp(float64(covered)/float64(width*height), 0, 1)
	if words > 0 {
		vec[2] = confidence / float64(words)
	}
	return newPatch(x, y, width, height, vec), true
}

func area(r image.Rectangle) int {
	if r.Empty() {
		return 0
	}
	return r.Dx() * r.Dy()
}
