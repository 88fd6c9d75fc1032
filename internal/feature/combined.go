package feature

import (
	"image"

	"github.com/pkg/errors"
)

// CombinedExtractor concatenates the vectors of its children, in order.
//
// A window is extractable only if every child can extract it. Updates reach
// the children in slice order.
type CombinedExtractor struct {
	children []Extractor
}

// NewCombinedExtractor takes ownership of children.
func NewCombinedExtractor(children ...Extractor) (*CombinedExtractor, error) {
	if len(children) == 0 {
		return nil, errors.New("combined extractor needs at least one child")
	}
	for i, c := range children {
		if c == nil {
			return nil, errors.Errorf("child %d is nil", i)
		}
	}
	return &CombinedExtractor{children: children}, nil
}

// Update implements Extractor.
func (c *CombinedExtractor) Update(img image.Image) {
	for _, child := range c.children {
		child.Update(img)
	}
}

// UpdateVersioned implements Extractor.
func (c *CombinedExtractor) UpdateVersioned(img *VersionedImage) {
	for _, child := range c.children {
		child.UpdateVersioned(img)
	}
}

// Extract implements Extractor.
func (c *CombinedExtractor) Extract(x, y, width, height int) (Patch, bool) {
	var v []float64
	for _, child := range c.children {
		p, ok := child.Extract(x, y, width, height)
		if !ok {
			return Patch{}, false
		}
		v = append(v, p.vector...)
	}
	return newPatch(x, y, width, height, v), true
}
