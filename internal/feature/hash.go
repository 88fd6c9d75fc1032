package feature

import (
	"github.com/corona10/goimagehash"
	"github.com/ironsheep/patch-features-mcp/internal/imaging"
	"github.com/pkg/errors"
)

// HashExtractor describes a window by its extended perceptual hash: the bits
// of a size×size DCT hash, as 0 or 1 values, most significant bit first.
type HashExtractor struct {
	grayCache
	size int
}

// NewHashExtractor returns a hash extractor with size*size bits. size*size
// must be a multiple of 64.
func NewHashExtractor(size int) (*HashExtractor, error) {
	if size <= 0 || (size*size)%64 != 0 {
		return nil, errors.Errorf("hash size %d: size*size must be a positive multiple of 64", size)
	}
	return &HashExtractor{size: size}, nil
}

// Dim is the length of every vector this extractor produces.
func (e *HashExtractor) Dim() int { return e.size * e.size }

// Extract implements Extractor.
func (e *HashExtractor) Extract(x, y, width, height int) (Patch, bool) {
	if width <= 0 || height <= 0 {
		return Patch{}, false
	}
	gray, _ := e.plane()
	r := imaging.CenteredRect(x, y, width, height)
	if !imaging.Contains(gray.Bounds(), r) {
		return Patch{}, false
	}
	hash, err := goimagehash.ExtPerceptionHash(gray.SubImage(r), e.size, e.size)
	if err != nil {
		return Patch{}, false
	}
	return newPatch(x, y, width, height, hashBits(hash.GetHash(), e.Dim())), true
}

func hashBits(words []uint64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		w := i / 64
		if w >= len(words) {
			break
		}
		out[i] = float64((words[w] >> (63 - uint(i%64))) & 1)
	}
	return out
}
