package imaging

import (
	"image"
	"math"
)

var (
	sobelX = [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// GradientField holds per-pixel Sobel responses of a gray plane.
//
// Slices are row-major with Width*Height entries. Magnitude is in gray levels
// (0 to about 1442 for 8-bit input); Orientation is atan2(gy, gx) in radians,
// in (-π, π].
type GradientField struct {
	Width       int
	Height      int
	Magnitude   []float64
	Orientation []float64
}

// Gradients computes the Sobel gradient of g.
//
// Border pixels reuse clamped (replicated) neighbours, so every pixel gets a
// response and a uniform image yields zero magnitude everywhere.
func Gradients(g *image.Gray) *GradientField {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	f := &GradientField{
		Width:       w,
		Height:      h,
		Magnitude:   make([]float64, w*h),
		Orientation: make([]float64, w*h),
	}

	at := func(x, y int) float64 {
		x = Clamp(x, 0, w-1)
		y = Clamp(y, 0, h-1)
		return float64(g.Pix[(b.Min.Y+y-g.Rect.Min.Y)*g.Stride+(b.Min.X+x-g.Rect.Min.X)])
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := at(x+kx, y+ky)
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			i := y*w + x
			f.Magnitude[i] = math.Sqrt(gx*gx + gy*gy)
			f.Orientation[i] = math.Atan2(gy, gx)
		}
	}
	return f
}

// At returns magnitude and orientation at (x, y) in field coordinates.
func (f *GradientField) At(x, y int) (magnitude, orientation float64) {
	i := y*f.Width + x
	return f.Magnitude[i], f.Orientation[i]
}

// Edges thresholds the magnitude into a row-major edge mask.
func (f *GradientField) Edges(threshold float64) []bool {
	mask := make([]bool, len(f.Magnitude))
	for i, m := range f.Magnitude {
		mask[i] = m >= threshold
	}
	return mask
}
