package feature

import "image"

// Extractor computes a fixed-length feature vector for a patch of the image it
// currently works on.
//
// Implementations come in two flavours that callers cannot tell apart:
// primitives (DirectExtractor, PyramidExtractor, ...) sample the image
// themselves, composites (ChainedExtractor, FilteringExtractor, ...) own other
// extractors and forward updates to them.
type Extractor interface {
	// Update makes img the working image and drops every cache built for the
	// previous one. It never fails; a nil or empty image only means that later
	// extractions come back empty.
	Update(img image.Image)

	// UpdateVersioned adopts the frame of img only if it is not the frame this
	// extractor already adopted (same slot, same version). Otherwise it is a
	// no-op and caches stay valid.
	UpdateVersioned(img *VersionedImage)

	// Extract returns the patch centered at (x, y) with the given size.
	//
	// The second result is false when no patch can be produced: non-positive
	// size, no image yet, a window reaching outside the image, or (for
	// multi-scale extractors) no scale level matching the size.
	Extract(x, y, width, height int) (Patch, bool)
}

// Interpolation selects how a window is resampled to the feature size.
type Interpolation int

const (
	// Bilinear averages the four nearest source pixels.
	Bilinear Interpolation = iota
	// Nearest picks the closest source pixel.
	Nearest
)

// String implements fmt.Stringer.
func (i Interpolation) String() string {
	switch i {
	case Nearest:
		return "nearest"
	default:
		return "bilinear"
	}
}

var (
	_ Extractor = (*DirectExtractor)(nil)
	_ Extractor = (*PyramidExtractor)(nil)
	_ Extractor = (*GradientHistogramExtractor)(nil)
	_ Extractor = (*ColorHistogramExtractor)(nil)
	_ Extractor = (*HashExtractor)(nil)
	_ Extractor = (*TextLayoutExtractor)(nil)
	_ Extractor = (*ChainedExtractor)(nil)
	_ Extractor = (*FilteringExtractor)(nil)
	_ Extractor = (*CombinedExtractor)(nil)
	_ Extractor = (*MemoExtractor)(nil)
)
