package pipeline

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/patch-features-mcp/internal/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLocator []feature.TextBox

func (l staticLocator) Locate(image.Image) ([]feature.TextBox, error) { return l, nil }

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	return img
}

func minimal(kind string) ExtractorConfig {
	direct := &ExtractorConfig{Kind: KindDirect, Width: 4, Height: 4}
	switch kind {
	case KindDirect:
		return *direct
	case KindPyramid:
		return ExtractorConfig{Kind: kind, Width: 8, Height: 8, Sizes: []int{16, 32}}
	case KindGradient:
		return ExtractorConfig{Kind: kind, CellsX: 2, CellsY: 2, Bins: 9}
	case KindColor:
		return ExtractorConfig{Kind: kind, HueBins: 12}
	case KindHash:
		return ExtractorConfig{Kind: kind, HashSize: 8}
	case KindText:
		return ExtractorConfig{Kind: kind}
	case KindChain:
		return ExtractorConfig{Kind: kind, ImageFilters: []ImageFilterConfig{{Kind: FilterGrayscale}}, Base: direct}
	case KindFilter:
		return ExtractorConfig{Kind: kind, VectorFilters: []VectorFilterConfig{{Kind: VectorL2}}, Base: direct}
	case KindCombined:
		return ExtractorConfig{Kind: kind, Children: []ExtractorConfig{*direct, {Kind: KindColor, HueBins: 4}}}
	case KindMemo:
		return ExtractorConfig{Kind: kind, Base: direct}
	}
	return ExtractorConfig{Kind: kind}
}

func TestBuild_EveryKind(t *testing.T) {
	opts := Options{
		TextLocator: staticLocator{{Box: image.Rect(10, 10, 20, 16), Text: "hi", Confidence: 0.9}},
		MemoBytes:   1 << 16,
	}
	wantDim := map[string]int{
		KindDirect:   16,
		KindPyramid:  64,
		KindGradient: 36,
		KindColor:    12,
		KindHash:     64,
		KindText:     3,
		KindChain:    16,
		KindFilter:   16,
		KindCombined: 20,
		KindMemo:     16,
	}

	for _, k := range Kinds() {
		t.Run(k.Kind, func(t *testing.T) {
			e, err := Build(minimal(k.Kind), opts)
			require.NoError(t, err)

			e.Update(testImage())
			p, ok := e.Extract(32, 32, 16, 16)
			require.True(t, ok)
			assert.Equal(t, wantDim[k.Kind], p.Len())
		})
	}
}

func TestBuild_KindIsCaseInsensitive(t *testing.T) {
	e, err := Build(ExtractorConfig{Kind: "Direct", Width: 2, Height: 2}, Options{})
	require.NoError(t, err)
	assert.IsType(t, &feature.DirectExtractor{}, e)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ExtractorConfig
		opts    Options
		wantMsg string
	}{
		{"missing kind", ExtractorConfig{}, Options{}, "kind is required"},
		{"unknown kind", ExtractorConfig{Kind: "sift"}, Options{}, "unknown extractor kind"},
		{"bad size", ExtractorConfig{Kind: KindDirect}, Options{}, "direct"},
		{"bad interpolation", ExtractorConfig{Kind: KindDirect, Width: 2, Height: 2, Interpolation: "cubic"}, Options{}, "unknown interpolation"},
		{"pyramid without sizes", ExtractorConfig{Kind: KindPyramid, Width: 8, Height: 8}, Options{}, "pyramid"},
		{"pyramid upscale", ExtractorConfig{Kind: KindPyramid, Width: 64, Height: 64, Sizes: []int{2}}, Options{}, "scale 32 exceeds 2"},
		{"text without locator", ExtractorConfig{Kind: KindText}, Options{}, "no text locator"},
		{"chain without base", ExtractorConfig{Kind: KindChain}, Options{}, "base is required"},
		{"memo without budget", ExtractorConfig{Kind: KindMemo, Base: &ExtractorConfig{Kind: KindDirect, Width: 2, Height: 2}}, Options{}, "memo size"},
		{"empty combined", ExtractorConfig{Kind: KindCombined}, Options{}, "at least one child"},
		{
			"bad child",
			ExtractorConfig{Kind: KindCombined, Children: []ExtractorConfig{{Kind: KindDirect, Width: 2, Height: 2}, {Kind: KindHash, HashSize: 3}}},
			Options{},
			"combined.children[1](hash)",
		},
		{
			"bad nested base",
			ExtractorConfig{Kind: KindFilter, Base: &ExtractorConfig{Kind: KindGradient}},
			Options{},
			"filter.base(gradient)",
		},
		{
			"unknown image filter",
			ExtractorConfig{Kind: KindChain, ImageFilters: []ImageFilterConfig{{Kind: "sharpen"}}, Base: &ExtractorConfig{Kind: KindDirect, Width: 2, Height: 2}},
			Options{},
			"image_filters[0]",
		},
		{
			"even kernel",
			ExtractorConfig{Kind: KindChain, ImageFilters: []ImageFilterConfig{{Kind: FilterConvolution, Width: 2, Height: 2, Weights: []float64{1, 1, 1, 1}}}, Base: &ExtractorConfig{Kind: KindDirect, Width: 2, Height: 2}},
			Options{},
			"odd",
		},
		{
			"contrast out of range",
			ExtractorConfig{Kind: KindChain, ImageFilters: []ImageFilterConfig{{Kind: FilterContrast, Change: 2}}, Base: &ExtractorConfig{Kind: KindDirect, Width: 2, Height: 2}},
			Options{},
			"contrast change",
		},
		{
			"unknown channel",
			ExtractorConfig{Kind: KindChain, ImageFilters: []ImageFilterConfig{{Kind: FilterChannel, Channel: "alpha"}}, Base: &ExtractorConfig{Kind: KindDirect, Width: 2, Height: 2}},
			Options{},
			"unknown channel",
		},
		{
			"empty clip",
			ExtractorConfig{Kind: KindFilter, VectorFilters: []VectorFilterConfig{{Kind: VectorClip, Min: 1, Max: 0}}, Base: &ExtractorConfig{Kind: KindDirect, Width: 2, Height: 2}},
			Options{},
			"clip range",
		},
		{
			"zero exponent",
			ExtractorConfig{Kind: KindFilter, VectorFilters: []VectorFilterConfig{{Kind: VectorPower}}, Base: &ExtractorConfig{Kind: KindDirect, Width: 2, Height: 2}},
			Options{},
			"exponent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Build(tt.cfg, tt.opts)
			require.Error(t, err)
			assert.Nil(t, e)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestBuild_MemoMaxBytesOverridesDefault(t *testing.T) {
	cfg := ExtractorConfig{Kind: KindMemo, MaxBytes: 4096, Base: &ExtractorConfig{Kind: KindDirect, Width: 2, Height: 2}}
	e, err := Build(cfg, Options{})
	require.NoError(t, err)
	assert.IsType(t, &feature.MemoExtractor{}, e)
}

func TestBuild_FullTree(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"kind": "filter",
		"vector_filters": [{"kind": "power", "exponent": 0.5}, {"kind": "l2"}],
		"base": {
			"kind": "chain",
			"image_filters": [{"kind": "blur", "radius": 1.5}, {"kind": "channel", "channel": "value"}],
			"base": {
				"kind": "combined",
				"children": [
					{"kind": "gradient", "cells_x": 2, "cells_y": 2, "bins": 8, "signed": true},
					{"kind": "pyramid", "width": 4, "height": 4, "min_width": 8, "max_width": 32, "scale_step": 2, "tolerance": 0.1, "interpolation": "nearest"}
				]
			}
		}
	}`))
	require.NoError(t, err)

	e, err := Build(cfg, Options{})
	require.NoError(t, err)

	e.Update(testImage())
	p, ok := e.Extract(32, 32, 16, 16)
	require.True(t, ok)
	assert.Equal(t, 32+16, p.Len())

	_, ok = e.Extract(32, 32, 12, 12)
	assert.False(t, ok, "no pyramid level within tolerance of 12")
}

func TestKey(t *testing.T) {
	a, err := Parse([]byte(`{"kind":"direct","width":4,"height":4}`))
	require.NoError(t, err)
	b, err := Parse([]byte(`{ "height": 4, "interpolation": "", "width": 4, "kind": "direct" }`))
	require.NoError(t, err)
	c, err := Parse([]byte(`{"kind":"direct","width":4,"height":5}`))
	require.NoError(t, err)

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.NotEmpty(t, a.Key())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{"kind": 3}`))
	assert.Error(t, err)
}

func TestKinds_Unique(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range Kinds() {
		assert.False(t, seen[k.Kind], "duplicate kind %s", k.Kind)
		seen[k.Kind] = true
		assert.NotEmpty(t, k.Description)
	}
	assert.Len(t, seen, 10)
}
