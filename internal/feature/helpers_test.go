package feature

import (
	"image"
	"image/color"
	"sync/atomic"
)

// createGradientImage returns a gray image whose value at (x, y) is x+y.
func createGradientImage(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}
	return img
}

// createUniformImage returns a gray image filled with v.
func createUniformImage(width, height int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// createStepImage returns a gray image that is lo left of column split and
// hi from it on.
func createStepImage(width, height, split int, lo, hi uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := lo
			if x >= split {
				v = hi
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

// createSplitColorImage returns an image with left on the left half and right
// on the right half.
func createSplitColorImage(width, height int, left, right color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				img.SetRGBA(x, y, left)
			} else {
				img.SetRGBA(x, y, right)
			}
		}
	}
	return img
}

// countingExtractor counts the Extract calls reaching the wrapped extractor.
type countingExtractor struct {
	Extractor
	calls atomic.Int64
}

func (c *countingExtractor) Extract(x, y, width, height int) (Patch, bool) {
	c.calls.Add(1)
	return c.Extractor.Extract(x, y, width, height)
}

// emptyExtractor never produces a patch.
type emptyExtractor struct{}

func (emptyExtractor) Update(image.Image)                       {}
func (emptyExtractor) UpdateVersioned(*VersionedImage)          {}
func (emptyExtractor) Extract(int, int, int, int) (Patch, bool) { return Patch{}, false }

func mustDirect(w, h int, interp Interpolation) *DirectExtractor {
	e, err := NewDirectExtractor(w, h, interp)
	if err != nil {
		panic(err)
	}
	return e
}
