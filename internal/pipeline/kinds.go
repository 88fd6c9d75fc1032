package pipeline

// KindInfo documents one buildable node kind.
type KindInfo struct {
	Kind        string   `json:"kind"`
	Description string   `json:"description"`
	Fields      []string `json:"fields"`
	Composite   bool     `json:"composite"`
}

// Kinds lists every extractor kind Build understands.
func Kinds() []KindInfo {
	return []KindInfo{
		{
			Kind:        KindDirect,
			Description: "Gray values of the window resampled to width x height, in [0, 1]",
			Fields:      []string{"width", "height", "interpolation"},
		},
		{
			Kind:        KindPyramid,
			Description: "Gray values read from a precomputed scale level; only sizes matching a level within tolerance are extractable",
			Fields:      []string{"width", "height", "sizes", "min_width", "max_width", "scale_step", "tolerance", "interpolation"},
		},
		{
			Kind:        KindGradient,
			Description: "Per-cell Sobel orientation histograms, L2-normalized",
			Fields:      []string{"cells_x", "cells_y", "bins", "signed"},
		},
		{
			Kind:        KindColor,
			Description: "Hue histogram weighted by saturation and value, summing to 1",
			Fields:      []string{"hue_bins"},
		},
		{
			Kind:        KindHash,
			Description: "Bits of the perceptual hash of the window",
			Fields:      []string{"hash_size"},
		},
		{
			Kind:        KindText,
			Description: "Word count, covered fraction and mean confidence of text found in the window",
		},
		{
			Kind:        KindChain,
			Description: "Image filters applied to the whole image before the base extractor sees it",
			Fields:      []string{"image_filters", "base"},
			Composite:   true,
		},
		{
			Kind:        KindFilter,
			Description: "Vector filters applied to the base extractor's features",
			Fields:      []string{"vector_filters", "base"},
			Composite:   true,
		},
		{
			Kind:        KindCombined,
			Description: "Concatenated features of all children; empty if any child is empty",
			Fields:      []string{"children"},
			Composite:   true,
		},
		{
			Kind:        KindMemo,
			Description: "LRU memo of the base extractor's results for the current image",
			Fields:      []string{"max_bytes", "base"},
			Composite:   true,
		},
	}
}
