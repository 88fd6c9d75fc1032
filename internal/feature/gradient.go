package feature

import (
	"image"
	"math"

	"github.com/ironsheep/patch-features-mcp/internal/imaging"
	"github.com/pkg/errors"
)

// GradientConfig configures a GradientHistogramExtractor.
type GradientConfig struct {
	CellsX int
	CellsY int
	Bins   int

	// Signed spreads the bins over 0-360° instead of 0-180°.
	Signed bool
}

// GradientHistogramExtractor describes a window by orientation histograms of
// its Sobel gradient, one per cell of a CellsX×CellsY grid, each pixel voting
// with its magnitude. The concatenated histograms are L2-normalised.
//
// The gradient field of the whole image is computed once per generation.
type GradientHistogramExtractor struct {
	source
	cfg   GradientConfig
	field lazy[*imaging.GradientField]
}

// NewGradientHistogramExtractor validates cfg.
func NewGradientHistogramExtractor(cfg GradientConfig) (*GradientHistogramExtractor, error) {
	if cfg.CellsX <= 0 || cfg.CellsY <= 0 {
		return nil, errors.Errorf("cell grid must be positive, got %dx%d", cfg.CellsX, cfg.CellsY)
	}
	if cfg.Bins <= 0 {
		return nil, errors.Errorf("bins must be positive, got %d", cfg.Bins)
	}
	return &GradientHistogramExtractor{cfg: cfg}, nil
}

// Dim is the length of every vector this extractor produces.
func (e *GradientHistogramExtractor) Dim() int {
	return e.cfg.CellsX * e.cfg.CellsY * e.cfg.Bins
}

// Extract implements Extractor.
func (e *GradientHistogramExtractor) Extract(x, y, width, height int) (Patch, bool) {
	if width <= 0 || height <= 0 {
		return Patch{}, false
	}
	img, gen := e.current()
	f := e.field.get(gen, func() *imaging.GradientField {
		return imaging.Gradients(imaging.ToGray(img))
	})

	r := imaging.CenteredRect(x, y, width, height)
	if !imaging.Contains(image.Rect(0, 0, f.Width, f.Height), r) {
		return Patch{}, false
	}

	span := math.Pi
	if e.cfg.Signed {
		span = 2 * math.Pi
	}
	bins := e.cfg.Bins
	hist := make([]float64, e.Dim())
	for py := r.Min.Y; py < r.Max.Y; py++ {
		cy := (py - r.Min.Y) * e.cfg.CellsY / height
		for px := r.Min.X; px < r.Max.X; px++ {
			mag, theta := f.At(px, py)
			if mag == 0 {
				continue
			}
			cx := (px - r.Min.X) * e.cfg.CellsX / width
			if theta < 0 {
				theta += 2 * math.Pi
			}
			if theta >= span {
				theta -= span
			}
			bin := imaging.Clamp(int(theta/span*float64(bins)), 0, bins-1)
			hist[(cy*e.cfg.CellsX+cx)*bins+bin] += mag
		}
	}
	return newPatch(x, y, width, height, l2(hist)), true
}

// l2 scales v in place to unit length; a zero vector is left as is.
func l2(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	n := math.Sqrt(sum)
	for i := range v {
		v[i] /= n
	}
	return v
}
