package feature

import (
	"image"

	"github.com/pkg/errors"
)

// FilteringExtractor post-processes the vectors of a base extractor.
//
// It owns no image state: updates go straight to the base, and an empty
// result of the base is passed through unchanged.
type FilteringExtractor struct {
	base    Extractor
	filters []VectorFilter
}

// NewFilteringExtractor applies filters, in order, to every vector of base.
func NewFilteringExtractor(base Extractor, filters ...VectorFilter) (*FilteringExtractor, error) {
	if base == nil {
		return nil, errors.New("filtering extractor needs a base")
	}
	return &FilteringExtractor{base: base, filters: filters}, nil
}

// Update implements Extractor.
func (f *FilteringExtractor) Update(img image.Image) { f.base.Update(img) }

// UpdateVersioned implements Extractor.
func (f *FilteringExtractor) UpdateVersioned(img *VersionedImage) { f.base.UpdateVersioned(img) }

// Extract implements Extractor.
func (f *FilteringExtractor) Extract(x, y, width, height int) (Patch, bool) {
	p, ok := f.base.Extract(x, y, width, height)
	if !ok {
		return Patch{}, false
	}
	v := p.vector
	for _, filter := range f.filters {
		v = filter.Apply(v)
	}
	return p.withVector(v), true
}
