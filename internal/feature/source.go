package feature

import (
	"image"
	"sync"
)

// source tracks the working image of an extractor.
//
// gen is local to the extractor and grows on every adoption, whichever update
// path caused it; caches are keyed by it. origin and version remember the
// VersionedImage frame last adopted so UpdateVersioned can skip work.
type source struct {
	mu      sync.RWMutex
	img     image.Image
	gen     uint64
	origin  *VersionedImage
	version uint64
}

// Update implements Extractor.Update for embedding extractors.
func (s *source) Update(img image.Image) {
	s.adopt(img)
}

// UpdateVersioned implements Extractor.UpdateVersioned for embedding extractors.
func (s *source) UpdateVersioned(img *VersionedImage) {
	s.sync(img)
}

func (s *source) adopt(img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = img
	s.gen++
	s.origin = nil
	s.version = 0
}

// sync adopts the current frame of vi unless it is already adopted and
// reports whether it did.
func (s *source) sync(vi *VersionedImage) bool {
	if vi == nil {
		return false
	}
	img, version := vi.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.origin == vi && s.version == version {
		return false
	}
	s.img = img
	s.gen++
	s.origin = vi
	s.version = version
	return true
}

// current returns the working image and the generation it belongs to.
func (s *source) current() (image.Image, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img, s.gen
}

// Generation reports how many images the extractor has adopted so far.
// It changes exactly when caches are invalidated.
func (s *source) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}
