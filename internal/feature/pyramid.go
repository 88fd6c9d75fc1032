package feature

import (
	"image"
	"math"
	"sort"
	"sync"

	"github.com/disintegration/imaging"
	imgutil "github.com/ironsheep/patch-features-mcp/internal/imaging"
	"github.com/pkg/errors"
)

// PyramidConfig configures a PyramidExtractor.
//
// Nominal sizes are the patch widths the pyramid answers for. They come from
// Sizes when set, otherwise from the geometric series MinWidth,
// MinWidth*ScaleStep, ... up to MaxWidth.
type PyramidConfig struct {
	// PatchWidth and PatchHeight are the feature window sampled on a level.
	PatchWidth  int
	PatchHeight int

	// Sizes lists nominal patch widths explicitly.
	Sizes []int

	// MinWidth, MaxWidth and ScaleStep (> 1) generate nominal widths when
	// Sizes is empty.
	MinWidth  int
	MaxWidth  int
	ScaleStep float64

	// Tolerance is the largest accepted relative deviation between the
	// requested size and the nominal size of the chosen level. 0 requires an
	// exact match.
	Tolerance float64

	// Interpolation selects the filter used to resample levels.
	Interpolation Interpolation
}

// MaxPyramidUpscale is the largest Scale a level may have. Every level
// resamples the whole image, so a level serving windows much smaller than the
// feature size would cost Scale² times the source plane.
const MaxPyramidUpscale = 2.0

// Level describes one scale of the pyramid.
type Level struct {
	Index int `json:"index"`

	// Scale maps source coordinates onto the level: PatchWidth / NominalWidth.
	Scale float64 `json:"scale"`

	// NominalWidth and NominalHeight are the source-image patch size served by
	// this level.
	NominalWidth  int `json:"nominal_width"`
	NominalHeight int `json:"nominal_height"`
}

// PyramidExtractor answers queries at many patch sizes by resampling the
// image once per scale level instead of once per query.
//
// Nothing is computed on update. The first extraction after an update
// converts the image to gray; each level is resampled the first time a query
// maps onto it. Both are keyed by the adoption generation, so a new image
// replaces the whole pyramid.
//
// # Matching policy
//
// A request of w×h goes to the level minimising |NominalWidth - w|, then
// |NominalHeight - h|; ties go to the smaller level. The level is used only
// if max(|NominalWidth-w|/w, |NominalHeight-h|/h) <= Tolerance. The center is
// mapped with math.Round (half away from zero), so identical requests always
// hit identical pixels.
type PyramidExtractor struct {
	source

	patchWidth  int
	patchHeight int
	tolerance   float64
	filter      imaging.ResampleFilter
	levels      []Level

	state lazy[*pyramidState]
}

type pyramidState struct {
	gray   *image.Gray
	filter imaging.ResampleFilter
	slots  []levelSlot
}

type levelSlot struct {
	once sync.Once
	img  *image.Gray
}

// NewPyramidExtractor validates cfg and lays out the levels.
func NewPyramidExtractor(cfg PyramidConfig) (*PyramidExtractor, error) {
	if cfg.PatchWidth <= 0 || cfg.PatchHeight <= 0 {
		return nil, errors.Errorf("patch size must be positive, got %dx%d", cfg.PatchWidth, cfg.PatchHeight)
	}
	if cfg.Tolerance < 0 {
		return nil, errors.Errorf("tolerance must not be negative, got %g", cfg.Tolerance)
	}

	widths, err := nominalWidths(cfg)
	if err != nil {
		return nil, err
	}

	levels := make([]Level, len(widths))
	for i, w := range widths {
		if scale := float64(cfg.PatchWidth) / float64(w); scale > MaxPyramidUpscale {
			return nil, errors.Errorf("nominal size %d is below %g of patch width %d (scale %g exceeds %g)",
				w, 1/MaxPyramidUpscale, cfg.PatchWidth, scale, MaxPyramidUpscale)
		}
		levels[i] = Level{
			Index:         i,
			Scale:         float64(cfg.PatchWidth) / float64(w),
			NominalWidth:  w,
			NominalHeight: int(math.Round(float64(w) * float64(cfg.PatchHeight) / float64(cfg.PatchWidth))),
		}
	}

	return &PyramidExtractor{
		patchWidth:  cfg.PatchWidth,
		patchHeight: cfg.PatchHeight,
		tolerance:   cfg.Tolerance,
		filter:      resampleFilter(cfg.Interpolation),
		levels:      levels,
	}, nil
}

func nominalWidths(cfg PyramidConfig) ([]int, error) {
	var widths []int
	if len(cfg.Sizes) > 0 {
		for _, w := range cfg.Sizes {
			if w <= 0 {
				return nil, errors.Errorf("nominal size must be positive, got %d", w)
			}
			widths = append(widths, w)
		}
	} else {
		if cfg.MinWidth <= 0 || cfg.MaxWidth < cfg.MinWidth {
			return nil, errors.Errorf("invalid width range [%d, %d]", cfg.MinWidth, cfg.MaxWidth)
		}
		if cfg.ScaleStep <= 1 {
			return nil, errors.Errorf("scale step must be greater than 1, got %g", cfg.ScaleStep)
		}
		for w := float64(cfg.MinWidth); w <= float64(cfg.MaxWidth)+1e-9; w *= cfg.ScaleStep {
			widths = append(widths, int(math.Round(w)))
		}
	}

	sort.Ints(widths)
	out := widths[:0]
	for i, w := range widths {
		if i == 0 || w != widths[i-1] {
			out = append(out, w)
		}
	}
	return out, nil
}

// Dim is the length of every vector this extractor produces.
func (p *PyramidExtractor) Dim() int { return p.patchWidth * p.patchHeight }

// Levels returns the level layout.
func (p *PyramidExtractor) Levels() []Level {
	out := make([]Level, len(p.levels))
	copy(out, p.levels)
	return out
}

// LevelFor returns the index of the level serving a width×height request.
func (p *PyramidExtractor) LevelFor(width, height int) (int, bool) {
	if width <= 0 || height <= 0 || len(p.levels) == 0 {
		return 0, false
	}
	best, bestDW, bestDH := -1, 0, 0
	for i, l := range p.levels {
		dw := imgutil.Abs(l.NominalWidth - width)
		dh := imgutil.Abs(l.NominalHeight - height)
		if best < 0 || dw < bestDW || (dw == bestDW && dh < bestDH) {
			best, bestDW, bestDH = i, dw, dh
		}
	}
	dev := math.Max(float64(bestDW)/float64(width), float64(bestDH)/float64(height))
	if dev > p.tolerance {
		return 0, false
	}
	return best, true
}

// Extract implements Extractor.
func (p *PyramidExtractor) Extract(x, y, width, height int) (Patch, bool) {
	idx, ok := p.LevelFor(width, height)
	if !ok {
		return Patch{}, false
	}
	img, gen := p.current()
	if img == nil {
		return Patch{}, false
	}

	st := p.state.get(gen, func() *pyramidState {
		return &pyramidState{
			gray:   imgutil.ToGray(img),
			filter: p.filter,
			slots:  make([]levelSlot, len(p.levels)),
		}
	})
	lvl := st.level(p.levels[idx])
	if lvl == nil {
		return Patch{}, false
	}

	scale := p.levels[idx].Scale
	cx := int(math.Round(float64(x) * scale))
	cy := int(math.Round(float64(y) * scale))
	r := imgutil.CenteredRect(cx, cy, p.patchWidth, p.patchHeight)
	if !imgutil.Contains(lvl.Bounds(), r) {
		return Patch{}, false
	}
	return newPatch(x, y, width, height, grayVector(lvl.SubImage(r).(*image.Gray))), true
}

// level returns the resampled plane of l, building it on first use. It is nil
// when the level would be smaller than one pixel.
func (s *pyramidState) level(l Level) *image.Gray {
	slot := &s.slots[l.Index]
	slot.once.Do(func() {
		b := s.gray.Bounds()
		w := int(math.Round(float64(b.Dx()) * l.Scale))
		h := int(math.Round(float64(b.Dy()) * l.Scale))
		switch {
		case w < 1 || h < 1:
			slot.img = nil
		case w == b.Dx() && h == b.Dy():
			slot.img = s.gray
		default:
			slot.img = imgutil.ToGray(imaging.Resize(s.gray, w, h, s.filter))
		}
	})
	return slot.img
}

func resampleFilter(interp Interpolation) imaging.ResampleFilter {
	if interp == Nearest {
		return imaging.NearestNeighbor
	}
	return imaging.Linear
}
