package feature

import (
	"image"
	"sync"
)

// VersionedImage is the shared slot holding the current frame of a stream.
//
// Every SetImage bumps the version by exactly one. Observers do not get
// callbacks; they compare the version they last adopted with the current one
// when the pipeline asks them to (Extractor.UpdateVersioned). The slot never
// owns its observers and observers never own the slot.
//
// VersionedImage is safe for concurrent use.
type VersionedImage struct {
	mu      sync.RWMutex
	img     image.Image
	version uint64
}

// NewVersionedImage returns an empty slot at version 0.
func NewVersionedImage() *VersionedImage {
	return &VersionedImage{}
}

// SetImage publishes a new frame and returns its version.
//
// The frame must not be modified afterwards; extractors read it without
// copying.
func (v *VersionedImage) SetImage(img image.Image) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.img = img
	v.version++
	return v.version
}

// Image returns the current frame, nil before the first SetImage.
func (v *VersionedImage) Image() image.Image {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.img
}

// Version returns the current version.
func (v *VersionedImage) Version() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}

// Snapshot returns the frame and its version as one consistent pair.
func (v *VersionedImage) Snapshot() (image.Image, uint64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.img, v.version
}
