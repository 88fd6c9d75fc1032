// Package pipeline builds extractor trees from their JSON description.
//
// A tree is described by nested ExtractorConfig values, for example a
// gradient histogram behind a blur, with the vector square-rooted:
//
//	{
//	  "kind": "filter",
//	  "vector_filters": [{"kind": "power", "exponent": 0.5}],
//	  "base": {
//	    "kind": "chain",
//	    "image_filters": [{"kind": "blur", "radius": 1.5}],
//	    "base": {"kind": "gradient", "cells_x": 4, "cells_y": 4, "bins": 9}
//	  }
//	}
package pipeline

import (
	"encoding/json"
)

// Extractor kinds.
const (
	KindDirect   = "direct"
	KindPyramid  = "pyramid"
	KindGradient = "gradient"
	KindColor    = "color"
	KindHash     = "hash"
	KindText     = "text"
	KindChain    = "chain"
	KindFilter   = "filter"
	KindCombined = "combined"
	KindMemo     = "memo"
)

// ExtractorConfig describes one node of an extractor tree. Which fields apply
// depends on Kind; the others are ignored.
type ExtractorConfig struct {
	Kind string `json:"kind"`

	// direct: feature size. pyramid: patch size sampled on a level.
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	Interpolation string `json:"interpolation,omitempty"`

	// pyramid
	Sizes     []int   `json:"sizes,omitempty"`
	MinWidth  int     `json:"min_width,omitempty"`
	MaxWidth  int     `json:"max_width,omitempty"`
	ScaleStep float64 `json:"scale_step,omitempty"`
	Tolerance float64 `json:"tolerance,omitempty"`

	// gradient
	CellsX int  `json:"cells_x,omitempty"`
	CellsY int  `json:"cells_y,omitempty"`
	Bins   int  `json:"bins,omitempty"`
	Signed bool `json:"signed,omitempty"`

	// color
	HueBins int `json:"hue_bins,omitempty"`

	// hash
	HashSize int `json:"hash_size,omitempty"`

	// memo; 0 uses Options.MemoBytes
	MaxBytes int64 `json:"max_bytes,omitempty"`

	ImageFilters  []ImageFilterConfig  `json:"image_filters,omitempty"`
	VectorFilters []VectorFilterConfig `json:"vector_filters,omitempty"`

	// chain, filter, memo
	Base *ExtractorConfig `json:"base,omitempty"`
	// combined
	Children []ExtractorConfig `json:"children,omitempty"`
}

// Image filter kinds.
const (
	FilterGrayscale   = "grayscale"
	FilterBlur        = "blur"
	FilterSobel       = "sobel"
	FilterContrast    = "contrast"
	FilterConvolution = "convolution"
	FilterChannel     = "channel"
)

// ImageFilterConfig describes one stage of a chain.
type ImageFilterConfig struct {
	Kind string `json:"kind"`

	Radius float64 `json:"radius,omitempty"` // blur
	Change float64 `json:"change,omitempty"` // contrast

	// convolution
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Weights   []float64 `json:"weights,omitempty"`
	Normalize bool      `json:"normalize,omitempty"`

	Channel string `json:"channel,omitempty"` // channel
}

// Vector filter kinds.
const (
	VectorL2       = "l2"
	VectorStandard = "standardize"
	VectorClip     = "clip"
	VectorPower    = "power"
)

// VectorFilterConfig describes one vector post-processing step.
type VectorFilterConfig struct {
	Kind string `json:"kind"`

	Min float64 `json:"min,omitempty"` // clip
	Max float64 `json:"max,omitempty"` // clip

	Exponent float64 `json:"exponent,omitempty"` // power
}

// Parse decodes a JSON description.
func Parse(data []byte) (ExtractorConfig, error) {
	var cfg ExtractorConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ExtractorConfig{}, err
	}
	return cfg, nil
}

// Key is a canonical string for cfg. JSON descriptions that differ only in
// field order, whitespace or explicit zero values share a key.
func (cfg ExtractorConfig) Key() string {
	b, err := json.Marshal(cfg)
	if err != nil {
		// NaN and Inf cannot come from JSON input.
		return ""
	}
	return string(b)
}
