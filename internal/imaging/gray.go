package imaging

import (
	"image"
	"image/color"
)

// ToGray converts any image to an 8-bit gray plane whose bounds start at (0, 0).
//
// A nil image yields an empty plane. An *image.Gray that already starts at the
// origin is returned as is; callers must treat the result as read-only.
//
// Luminance follows color.GrayModel (ITU-R BT.601 weights) for every RGB source
// so that fast paths and the generic path agree bit for bit. For *image.YCbCr
// the Y plane is used directly.
func ToGray(img image.Image) *image.Gray {
	if img == nil {
		return image.NewGray(image.Rectangle{})
	}

	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}

	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], src.Pix[si:si+w])
		}
	case *image.YCbCr:
		for y := 0; y < h; y++ {
			di := y * dst.Stride
			for x := 0; x < w; x++ {
				dst.Pix[di+x] = src.Y[src.YOffset(b.Min.X+x, b.Min.Y+y)]
			}
		}
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			di := y * dst.Stride
			for x := 0; x < w; x++ {
				p := src.Pix[si : si+4 : si+4]
				c := color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
				dst.Pix[di+x] = color.GrayModel.Convert(c).(color.Gray).Y
				si += 4
			}
		}
	case *image.RGBA:
		for y := 0; y < h; y++ {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			di := y * dst.Stride
			for x := 0; x < w; x++ {
				p := src.Pix[si : si+4 : si+4]
				dst.Pix[di+x] = luma(uint32(p[0])*0x101, uint32(p[1])*0x101, uint32(p[2])*0x101)
				si += 4
			}
		}
	default:
		for y := 0; y < h; y++ {
			di := y * dst.Stride
			for x := 0; x < w; x++ {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				dst.Pix[di+x] = luma(r, g, bl)
			}
		}
	}

	return dst
}

// luma mirrors color.GrayModel on 16-bit premultiplied components.
func luma(r, g, b uint32) uint8 {
	y := (19595*r + 38470*g + 7471*b + 1<<15) >> 24
	return uint8(y)
}

// CenteredRect returns the width×height rectangle centered at (x, y).
//
// The top-left corner is (x - width/2, y - height/2) using integer division,
// so even sizes place the center on the lower-right of the middle pair.
// Non-positive sizes yield the empty rectangle.
func CenteredRect(x, y, width, height int) image.Rectangle {
	if width <= 0 || height <= 0 {
		return image.Rectangle{}
	}
	x0 := x - width/2
	y0 := y - height/2
	return image.Rectangle{
		Min: image.Point{X: x0, Y: y0},
		Max: image.Point{X: x0 + width, Y: y0 + height},
	}
}

// Contains reports whether r is non-empty and lies fully inside bounds.
func Contains(bounds, r image.Rectangle) bool {
	return !r.Empty() && r.In(bounds)
}
