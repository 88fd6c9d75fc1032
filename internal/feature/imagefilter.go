package feature

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	imgutil "github.com/ironsheep/patch-features-mcp/internal/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// ImageFilter is one stage of a ChainedExtractor. It returns a new image and
// never modifies its input.
type ImageFilter interface {
	Apply(img image.Image) image.Image
}

// ImageFilterFunc adapts a function to ImageFilter.
type ImageFilterFunc func(image.Image) image.Image

// Apply implements ImageFilter.
func (f ImageFilterFunc) Apply(img image.Image) image.Image { return f(img) }

// Grayscale converts to luminance.
func Grayscale() ImageFilter {
	return ImageFilterFunc(func(img image.Image) image.Image {
		return imaging.Grayscale(img)
	})
}

// GaussianBlur blurs with the given radius; a radius <= 0 copies the image.
func GaussianBlur(radius float64) ImageFilter {
	return ImageFilterFunc(func(img image.Image) image.Image {
		if radius <= 0 {
			return imaging.Clone(img)
		}
		return blur.Gaussian(img, radius)
	})
}

// Sobel replaces every pixel by its edge magnitude.
func Sobel() ImageFilter {
	return ImageFilterFunc(func(img image.Image) image.Image {
		return effect.Sobel(img)
	})
}

// Contrast changes contrast by change in [-1, 1].
func Contrast(change float64) ImageFilter {
	return ImageFilterFunc(func(img image.Image) image.Image {
		return adjust.Contrast(img, change)
	})
}

// Convolution convolves with a width×height kernel given row-major. With
// normalize set the kernel is scaled to sum 1 first.
func Convolution(width, height int, weights []float64, normalize bool) (ImageFilter, error) {
	if width <= 0 || height <= 0 || width%2 == 0 || height%2 == 0 {
		return nil, errors.Errorf("kernel size must be odd and positive, got %dx%d", width, height)
	}
	if len(weights) != width*height {
		return nil, errors.Errorf("kernel %dx%d needs %d weights, got %d", width, height, width*height, len(weights))
	}
	k := convolution.NewKernel(width, height)
	copy(k.Matrix, weights)
	var m convolution.Matrix = k
	if normalize {
		m = k.Normalized()
	}
	return ImageFilterFunc(func(img image.Image) image.Image {
		return convolution.Convolve(img, m, &convolution.Options{Wrap: false, KeepAlpha: true})
	}), nil
}

// Channel names a scalar color channel.
type Channel string

// Channels understood by ColorChannel.
const (
	ChannelHue        Channel = "hue"
	ChannelSaturation Channel = "saturation"
	ChannelValue      Channel = "value"
	ChannelLightness  Channel = "lightness"
)

// ColorChannel projects every pixel onto one channel, as a gray image.
func ColorChannel(ch Channel) (ImageFilter, error) {
	var pick func(colorful.Color) float64
	switch ch {
	case ChannelHue:
		pick = func(c colorful.Color) float64 { h, _, _ := c.Hsv(); return h / 360 }
	case ChannelSaturation:
		pick = func(c colorful.Color) float64 { _, s, _ := c.Hsv(); return s }
	case ChannelValue:
		pick = func(c colorful.Color) float64 { _, _, v := c.Hsv(); return v }
	case ChannelLightness:
		pick = func(c colorful.Color) float64 { l, _, _ := c.Lab(); return l }
	default:
		return nil, errors.Errorf("unknown channel %q", ch)
	}
	return ImageFilterFunc(func(img image.Image) image.Image {
		b := img.Bounds()
		out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c, ok := colorful.MakeColor(img.At(x, y))
				if !ok {
					continue
				}
				v := imgutil.Clamp(pick(c), 0, 1)
				out.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: uint8(v*255 + 0.5)})
			}
		}
		return out
	}), nil
}
