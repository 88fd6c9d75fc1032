package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestToGray_Nil(t *testing.T) {
	g := ToGray(nil)
	if g == nil || !g.Bounds().Empty() {
		t.Fatalf("ToGray(nil) should be an empty plane, got %v", g)
	}
}

func TestToGray_GrayAtOriginIsShared(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	if ToGray(src) != src {
		t.Error("origin-based gray images should be returned as is")
	}
}

func TestToGray_SubImageMovesToOrigin(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range src.Pix {
		src.Pix[i] = uint8(i)
	}
	sub := src.SubImage(image.Rect(3, 4, 8, 9))

	g := ToGray(sub)
	if g.Bounds() != image.Rect(0, 0, 5, 5) {
		t.Fatalf("bounds: got %v, want (0,0)-(5,5)", g.Bounds())
	}
	if got, want := g.GrayAt(0, 0).Y, src.GrayAt(3, 4).Y; got != want {
		t.Errorf("(0,0): got %d, want %d", got, want)
	}
	if got, want := g.GrayAt(4, 4).Y, src.GrayAt(7, 8).Y; got != want {
		t.Errorf("(4,4): got %d, want %d", got, want)
	}
}

func TestToGray_FastPathsMatchGrayModel(t *testing.T) {
	colors := []color.NRGBA{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{12, 200, 99, 255},
		{255, 255, 255, 255},
	}
	rgba := image.NewRGBA(image.Rect(0, 0, len(colors), 1))
	nrgba := image.NewNRGBA(image.Rect(0, 0, len(colors), 1))
	paletted := image.NewPaletted(image.Rect(0, 0, len(colors), 1), nil)
	for i, c := range colors {
		rgba.Set(i, 0, c)
		nrgba.SetNRGBA(i, 0, c)
		paletted.Palette = append(paletted.Palette, c)
		paletted.SetColorIndex(i, 0, uint8(i))
	}

	for name, img := range map[string]image.Image{"rgba": rgba, "nrgba": nrgba, "generic": paletted} {
		t.Run(name, func(t *testing.T) {
			g := ToGray(img)
			for i, c := range colors {
				want := color.GrayModel.Convert(c).(color.Gray).Y
				if got := g.GrayAt(i, 0).Y; got != want {
					t.Errorf("pixel %d: got %d, want %d", i, got, want)
				}
			}
		})
	}
}

func TestToGray_YCbCrUsesLuma(t *testing.T) {
	img := image.NewYCbCr(image.Rect(0, 0, 2, 2), image.YCbCrSubsampleRatio444)
	for i := range img.Y {
		img.Y[i] = 77
	}
	g := ToGray(img)
	if g.GrayAt(1, 1).Y != 77 {
		t.Errorf("got %d, want 77", g.GrayAt(1, 1).Y)
	}
}

func TestCenteredRect(t *testing.T) {
	tests := []struct {
		name       string
		x, y, w, h int
		want       image.Rectangle
	}{
		{"even", 50, 50, 20, 20, image.Rect(40, 40, 60, 60)},
		{"odd", 10, 10, 5, 3, image.Rect(8, 9, 13, 12)},
		{"single pixel", 0, 0, 1, 1, image.Rect(0, 0, 1, 1)},
		{"negative center", -4, -4, 4, 4, image.Rect(-6, -6, -2, -2)},
		{"zero width", 5, 5, 0, 3, image.Rectangle{}},
		{"negative height", 5, 5, 3, -1, image.Rectangle{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CenteredRect(tt.x, tt.y, tt.w, tt.h); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	bounds := image.Rect(0, 0, 10, 10)
	tests := []struct {
		r    image.Rectangle
		want bool
	}{
		{image.Rect(0, 0, 10, 10), true},
		{image.Rect(2, 2, 4, 4), true},
		{image.Rect(-1, 0, 5, 5), false},
		{image.Rect(5, 5, 11, 6), false},
		{image.Rectangle{}, false},
	}
	for _, tt := range tests {
		if got := Contains(bounds, tt.r); got != tt.want {
			t.Errorf("Contains(%v): got %v, want %v", tt.r, got, tt.want)
		}
	}
}
