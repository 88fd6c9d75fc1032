package feature

import (
	"image"
	"sync"

	"github.com/pkg/errors"
)

// ChainedExtractor runs the adopted image through a sequence of image filters
// and lets a final extractor answer queries on the result.
//
// Filtering is lazy: updates only record the new image, and the first
// extraction of a generation applies the filters and hands the output to
// final with an unconditional Update. The chain tracks versions itself, so
// final is never asked about the VersionedImage directly.
//
// Update and UpdateVersioned therefore reach final late, at the first Extract
// after them, and not during the call. final is reachable only through the
// chain, so no caller can observe it holding the previous image.
type ChainedExtractor struct {
	source

	filters []ImageFilter
	final   Extractor

	mu     sync.RWMutex
	fed    bool
	fedGen uint64
}

// NewChainedExtractor chains filters in front of final, which the chain owns
// from now on.
func NewChainedExtractor(final Extractor, filters ...ImageFilter) (*ChainedExtractor, error) {
	if final == nil {
		return nil, errors.New("chain needs a final extractor")
	}
	return &ChainedExtractor{filters: filters, final: final}, nil
}

// Extract implements Extractor.
func (c *ChainedExtractor) Extract(x, y, width, height int) (Patch, bool) {
	if width <= 0 || height <= 0 {
		return Patch{}, false
	}

	c.mu.RLock()
	if _, gen := c.current(); c.fed && c.fedGen == gen {
		defer c.mu.RUnlock()
		return c.final.Extract(x, y, width, height)
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	img, gen := c.current()
	if !c.fed || c.fedGen != gen {
		c.final.Update(c.filter(img))
		c.fed, c.fedGen = true, gen
	}
	return c.final.Extract(x, y, width, height)
}

func (c *ChainedExtractor) filter(img image.Image) image.Image {
	if img == nil || img.Bounds().Empty() {
		return img
	}
	for _, f := range c.filters {
		img = f.Apply(img)
	}
	return img
}
