package feature

import (
	"encoding/binary"
	"image"
	"math"
	"strconv"

	"github.com/die-net/lrucache"
	"github.com/pkg/errors"
)

// MemoExtractor remembers the results of its base, including empty ones, in
// a size-bounded LRU cache. Sliding-window search revisits the same windows
// for every classifier stage; the memo answers the repeats without touching
// the base.
//
// The cache belongs to one generation. Adopting an image replaces it.
type MemoExtractor struct {
	source

	base     Extractor
	maxBytes int64
	cache    lazy[*lrucache.LruCache]
}

// NewMemoExtractor caches at most maxBytes of encoded vectors.
func NewMemoExtractor(base Extractor, maxBytes int64) (*MemoExtractor, error) {
	if base == nil {
		return nil, errors.New("memo extractor needs a base")
	}
	if maxBytes <= 0 {
		return nil, errors.Errorf("memo size must be positive, got %d", maxBytes)
	}
	return &MemoExtractor{base: base, maxBytes: maxBytes}, nil
}

// Update implements Extractor.
func (m *MemoExtractor) Update(img image.Image) {
	m.adopt(img)
	m.base.Update(img)
}

// UpdateVersioned implements Extractor.
func (m *MemoExtractor) UpdateVersioned(img *VersionedImage) {
	m.sync(img)
	m.base.UpdateVersioned(img)
}

// Extract implements Extractor.
func (m *MemoExtractor) Extract(x, y, width, height int) (Patch, bool) {
	if width <= 0 || height <= 0 {
		return Patch{}, false
	}
	_, gen := m.current()
	cache := m.cache.get(gen, func() *lrucache.LruCache {
		return lrucache.New(m.maxBytes, 0)
	})

	key := memoKey(x, y, width, height)
	if b, ok := cache.Get(key); ok {
		v, ok := decodeVector(b)
		if !ok {
			return Patch{}, false
		}
		return newPatch(x, y, width, height, v), true
	}

	p, ok := m.base.Extract(x, y, width, height)
	if !ok {
		cache.Set(key, []byte{0})
		return Patch{}, false
	}
	cache.Set(key, encodeVector(p.vector))
	return p, true
}

func memoKey(x, y, width, height int) string {
	b := make([]byte, 0, 32)
	b = strconv.AppendInt(b, int64(x), 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, int64(y), 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, int64(width), 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, int64(height), 10)
	return string(b)
}

// encodeVector writes a present marker followed by little-endian float64s.
func encodeVector(v []float64) []byte {
	b := make([]byte, 1+8*len(v))
	b[0] = 1
	for i, x := range v {
		binary.LittleEndian.PutUint64(b[1+8*i:], math.Float64bits(x))
	}
	return b
}

func decodeVector(b []byte) ([]float64, bool) {
	if len(b) == 0 || b[0] == 0 {
		return nil, false
	}
	v := make([]float64, (len(b)-1)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[1+8*i:]))
	}
	return v, true
}
