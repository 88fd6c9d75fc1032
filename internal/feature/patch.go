package feature

import (
	"encoding/json"
	"image"

	"github.com/ironsheep/patch-features-mcp/internal/imaging"
)

// Patch is an extracted image region together with its feature vector.
//
// X and Y are the requested center and Width/Height the requested size; they
// are reported as asked, not as mapped onto a pyramid level. The vector is
// owned by the patch and never changes after extraction.
type Patch struct {
	X      int
	Y      int
	Width  int
	Height int

	vector []float64
}

func newPatch(x, y, width, height int, vector []float64) Patch {
	return Patch{X: x, Y: y, Width: width, Height: height, vector: vector}
}

// Vector returns a copy of the feature vector.
func (p Patch) Vector() []float64 {
	out := make([]float64, len(p.vector))
	copy(out, p.vector)
	return out
}

// Len is the dimensionality of the feature vector.
func (p Patch) Len() int { return len(p.vector) }

// At returns the i-th feature value.
func (p Patch) At(i int) float64 { return p.vector[i] }

// Bounds is the source-image window the patch was requested for.
func (p Patch) Bounds() image.Rectangle {
	return imaging.CenteredRect(p.X, p.Y, p.Width, p.Height)
}

type patchJSON struct {
	X        int       `json:"x"`
	Y        int       `json:"y"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Features []float64 `json:"features"`
}

// MarshalJSON implements json.Marshaler.
func (p Patch) MarshalJSON() ([]byte, error) {
	features := p.vector
	if features == nil {
		features = []float64{}
	}
	return json.Marshal(patchJSON{
		X:        p.X,
		Y:        p.Y,
		Width:    p.Width,
		Height:   p.Height,
		Features: features,
	})
}

// withVector derives a patch with the same geometry and another vector.
func (p Patch) withVector(vector []float64) Patch {
	return newPatch(p.X, p.Y, p.Width, p.Height, vector)
}
