package feature

import (
	"image"

	"github.com/ironsheep/patch-features-mcp/internal/imaging"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// DirectExtractor samples the raw gray values of a window, rescaled to a
// fixed feature size.
//
// The only per-image state is the gray plane of the working image, built on
// the first extraction after an update. Every query then costs one crop and
// one resample of the requested window.
type DirectExtractor struct {
	grayCache

	width  int
	height int
	interp Interpolation
}

// NewDirectExtractor returns an extractor producing width*height values in
// [0, 1], row-major.
func NewDirectExtractor(width, height int, interp Interpolation) (*DirectExtractor, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("feature size must be positive, got %dx%d", width, height)
	}
	return &DirectExtractor{width: width, height: height, interp: interp}, nil
}

// Dim is the length of every vector this extractor produces.
func (e *DirectExtractor) Dim() int { return e.width * e.height }

// Extract implements Extractor.
func (e *DirectExtractor) Extract(x, y, width, height int) (Patch, bool) {
	if width <= 0 || height <= 0 {
		return Patch{}, false
	}
	gray, _ := e.plane()
	r := imaging.CenteredRect(x, y, width, height)
	if !imaging.Contains(gray.Bounds(), r) {
		return Patch{}, false
	}
	return newPatch(x, y, width, height, sampleWindow(gray, r, e.width, e.height, e.interp)), true
}

// sampleWindow resamples r of g to w×h and returns the values scaled to [0, 1].
func sampleWindow(g *image.Gray, r image.Rectangle, w, h int, interp Interpolation) []float64 {
	var win *image.Gray
	if r.Dx() == w && r.Dy() == h {
		win = g.SubImage(r).(*image.Gray)
	} else {
		win = image.NewGray(image.Rect(0, 0, w, h))
		interpolator(interp).Scale(win, win.Bounds(), g, r, draw.Src, nil)
	}
	return grayVector(win)
}

func interpolator(interp Interpolation) draw.Interpolator {
	if interp == Nearest {
		return draw.NearestNeighbor
	}
	return draw.BiLinear
}

func grayVector(g *image.Gray) []float64 {
	b := g.Bounds()
	out := make([]float64, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := g.PixOffset(b.Min.X, y)
		for _, v := range g.Pix[i : i+b.Dx()] {
			out = append(out, float64(v)/255)
		}
	}
	return out
}
