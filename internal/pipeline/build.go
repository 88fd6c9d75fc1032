package pipeline

import (
	"strconv"
	"strings"

	"github.com/ironsheep/patch-features-mcp/internal/feature"
	"github.com/pkg/errors"
)

// Options supplies what a config cannot carry.
type Options struct {
	// TextLocator serves "text" nodes. Without one they fail to build.
	TextLocator feature.TextLocator

	// MemoBytes is the budget of "memo" nodes that do not set max_bytes.
	MemoBytes int64
}

// Build validates cfg and constructs the tree it describes.
func Build(cfg ExtractorConfig, opts Options) (feature.Extractor, error) {
	path := cfg.Kind
	if path == "" {
		path = "extractor"
	}
	return build(cfg, opts, path)
}

func build(cfg ExtractorConfig, opts Options, path string) (feature.Extractor, error) {
	interp, err := parseInterpolation(cfg.Interpolation)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	var e feature.Extractor
	switch strings.ToLower(cfg.Kind) {
	case KindDirect:
		e, err = feature.NewDirectExtractor(cfg.Width, cfg.Height, interp)

	case KindPyramid:
		e, err = feature.NewPyramidExtractor(feature.PyramidConfig{
			PatchWidth:    cfg.Width,
			PatchHeight:   cfg.Height,
			Sizes:         cfg.Sizes,
			MinWidth:      cfg.MinWidth,
			MaxWidth:      cfg.MaxWidth,
			ScaleStep:     cfg.ScaleStep,
			Tolerance:     cfg.Tolerance,
			Interpolation: interp,
		})

	case KindGradient:
		e, err = feature.NewGradientHistogramExtractor(feature.GradientConfig{
			CellsX: cfg.CellsX,
			CellsY: cfg.CellsY,
			Bins:   cfg.Bins,
			Signed: cfg.Signed,
		})

	case KindColor:
		e, err = feature.NewColorHistogramExtractor(cfg.HueBins)

	case KindHash:
		e, err = feature.NewHashExtractor(cfg.HashSize)

	case KindText:
		if opts.TextLocator == nil {
			return nil, errors.Errorf("%s: no text locator configured", path)
		}
		e = feature.NewTextLayoutExtractor(opts.TextLocator)

	case KindChain:
		base, berr := buildBase(cfg, opts, path)
		if berr != nil {
			return nil, berr
		}
		filters, ferr := imageFilters(cfg.ImageFilters)
		if ferr != nil {
			return nil, errors.Wrap(ferr, path)
		}
		e, err = feature.NewChainedExtractor(base, filters...)

	case KindFilter:
		base, berr := buildBase(cfg, opts, path)
		if berr != nil {
			return nil, berr
		}
		filters, ferr := vectorFilters(cfg.VectorFilters)
		if ferr != nil {
			return nil, errors.Wrap(ferr, path)
		}
		e, err = feature.NewFilteringExtractor(base, filters...)

	case KindCombined:
		if len(cfg.Children) == 0 {
			return nil, errors.Errorf("%s: needs at least one child", path)
		}
		children := make([]feature.Extractor, len(cfg.Children))
		for i, c := range cfg.Children {
			child, cerr := build(c, opts, childPath(path, "children", i, c.Kind))
			if cerr != nil {
				return nil, cerr
			}
			children[i] = child
		}
		e, err = feature.NewCombinedExtractor(children...)

	case KindMemo:
		base, berr := buildBase(cfg, opts, path)
		if berr != nil {
			return nil, berr
		}
		size := cfg.MaxBytes
		if size == 0 {
			size = opts.MemoBytes
		}
		e, err = feature.NewMemoExtractor(base, size)

	case "":
		return nil, errors.New("extractor kind is required")

	default:
		return nil, errors.Errorf("unknown extractor kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return e, nil
}

func buildBase(cfg ExtractorConfig, opts Options, path string) (feature.Extractor, error) {
	if cfg.Base == nil {
		return nil, errors.Errorf("%s: base is required", path)
	}
	return build(*cfg.Base, opts, childPath(path, "base", -1, cfg.Base.Kind))
}

func childPath(parent, field string, index int, kind string) string {
	p := parent + "." + field
	if index >= 0 {
		p += "[" + strconv.Itoa(index) + "]"
	}
	if kind != "" {
		p += "(" + kind + ")"
	}
	return p
}

func parseInterpolation(s string) (feature.Interpolation, error) {
	switch strings.ToLower(s) {
	case "", "bilinear", "linear":
		return feature.Bilinear, nil
	case "nearest":
		return feature.Nearest, nil
	default:
		return 0, errors.Errorf("unknown interpolation %q", s)
	}
}

func imageFilters(cfgs []ImageFilterConfig) ([]feature.ImageFilter, error) {
	out := make([]feature.ImageFilter, 0, len(cfgs))
	for i, c := range cfgs {
		var f feature.ImageFilter
		var err error
		switch strings.ToLower(c.Kind) {
		case FilterGrayscale:
			f = feature.Grayscale()
		case FilterBlur:
			if c.Radius < 0 {
				err = errors.Errorf("radius must not be negative, got %g", c.Radius)
			}
			f = feature.GaussianBlur(c.Radius)
		case FilterSobel:
			f = feature.Sobel()
		case FilterContrast:
			if c.Change < -1 || c.Change > 1 {
				err = errors.Errorf("contrast change must be in [-1, 1], got %g", c.Change)
			}
			f = feature.Contrast(c.Change)
		case FilterConvolution:
			f, err = feature.Convolution(c.Width, c.Height, c.Weights, c.Normalize)
		case FilterChannel:
			f, err = feature.ColorChannel(feature.Channel(strings.ToLower(c.Channel)))
		default:
			err = errors.Errorf("unknown image filter %q", c.Kind)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "image_filters[%d]", i)
		}
		out = append(out, f)
	}
	return out, nil
}

func vectorFilters(cfgs []VectorFilterConfig) ([]feature.VectorFilter, error) {
	out := make([]feature.VectorFilter, 0, len(cfgs))
	for i, c := range cfgs {
		var f feature.VectorFilter
		switch strings.ToLower(c.Kind) {
		case VectorL2:
			f = feature.L2Normalize()
		case VectorStandard:
			f = feature.ZeroMeanUnitVariance()
		case VectorClip:
			if c.Min > c.Max {
				return nil, errors.Errorf("vector_filters[%d]: clip range [%g, %g] is empty", i, c.Min, c.Max)
			}
			f = feature.Clip(c.Min, c.Max)
		case VectorPower:
			if c.Exponent <= 0 {
				return nil, errors.Errorf("vector_filters[%d]: exponent must be positive, got %g", i, c.Exponent)
			}
			f = feature.Power(c.Exponent)
		default:
			return nil, errors.Errorf("vector_filters[%d]: unknown vector filter %q", i, c.Kind)
		}
		out = append(out, f)
	}
	return out, nil
}
