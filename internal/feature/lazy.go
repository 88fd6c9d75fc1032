package feature

import (
	"image"
	"sync"

	"github.com/ironsheep/patch-features-mcp/internal/imaging"
)

// lazy memoizes one value per generation.
//
// The value is built on the first get for a generation and replaced as a
// whole when a newer generation asks; there is no partial invalidation.
// Building happens under the lock, so goroutines racing on the same
// generation wait for one build and all see the same value. A caller still
// holding an older generation gets a value built for that generation, without
// evicting the newer one.
type lazy[T any] struct {
	mu    sync.Mutex
	gen   uint64
	built bool
	val   T
}

func (l *lazy[T]) get(gen uint64, build func() T) T {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.built && l.gen == gen {
		return l.val
	}
	v := build()
	if !l.built || gen > l.gen {
		l.gen, l.val, l.built = gen, v, true
	}
	return v
}

// grayCache is the gray plane of the working image, shared by the pixel
// based extractors.
type grayCache struct {
	source
	gray lazy[*image.Gray]
}

// plane returns the gray plane of the working image and its generation.
func (c *grayCache) plane() (*image.Gray, uint64) {
	img, gen := c.current()
	return c.gray.get(gen, func() *image.Gray {
		return imaging.ToGray(img)
	}), gen
}
