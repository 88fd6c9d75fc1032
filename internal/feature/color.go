package feature

import (
	"image"

	"github.com/ironsheep/patch-features-mcp/internal/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// ColorHistogramExtractor describes a window by its hue distribution.
//
// Each pixel votes for its hue bin with weight saturation*value, so gray,
// black and white pixels do not count. The histogram is normalised to sum 1;
// an achromatic window yields all zeros.
type ColorHistogramExtractor struct {
	source
	bins  int
	plane lazy[*hsvPlane]
}

type hsvPlane struct {
	width  int
	height int
	hue    []float64
	weight []float64
}

// NewColorHistogramExtractor returns an extractor with hueBins bins over 0-360°.
func NewColorHistogramExtractor(hueBins int) (*ColorHistogramExtractor, error) {
	if hueBins <= 0 {
		return nil, errors.Errorf("hue bins must be positive, got %d", hueBins)
	}
	return &ColorHistogramExtractor{bins: hueBins}, nil
}

// Dim is the length of every vector this extractor produces.
func (e *ColorHistogramExtractor) Dim() int { return e.bins }

// Extract implements Extractor.
func (e *ColorHistogramExtractor) Extract(x, y, width, height int) (Patch, bool) {
	if width <= 0 || height <= 0 {
		return Patch{}, false
	}
	img, gen := e.current()
	p := e.plane.get(gen, func() *hsvPlane { return toHSV(img) })

	r := imaging.CenteredRect(x, y, width, height)
	if !imaging.Contains(image.Rect(0, 0, p.width, p.height), r) {
		return Patch{}, false
	}

	hist := make([]float64, e.bins)
	var total float64
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			i := py*p.width + px
			w := p.weight[i]
			if w == 0 {
				continue
			}
			bin := imaging.Clamp(int(p.hue[i]/360*float64(e.bins)), 0, e.bins-1)
			hist[bin] += w
			total += w
		}
	}
	if total > 0 {
		for i := range hist {
			hist[i] /= total
		}
	}
	return newPatch(x, y, width, height, hist), true
}

func toHSV(img image.Image) *hsvPlane {
	if img == nil {
		return &hsvPlane{}
	}
	b := img.Bounds()
	p := &hsvPlane{
		width:  b.Dx(),
		height: b.Dy(),
		hue:    make([]float64, b.Dx()*b.Dy()),
		weight: make([]float64, b.Dx()*b.Dy()),
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if ok {
				h, s, v := c.Hsv()
				p.hue[i] = h
				p.weight[i] = s * v
			}
			i++
		}
	}
	return p
}
