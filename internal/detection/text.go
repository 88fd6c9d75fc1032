package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/patch-features-mcp/internal/feature"
	"github.com/ironsheep/patch-features-mcp/internal/imaging"
)

// Window is one sliding-window size probed by the locator.
type Window struct {
	Width  int
	Height int
}

// DefaultWindows are the probe sizes for small to large print.
var DefaultWindows = []Window{
	{100, 30},
	{150, 40},
	{200, 50},
	{80, 25},
}

// EdgeDensityLocator finds regions likely to contain text without OCR.
//
// Text shows up as a medium density of edge pixels (not sparse like flat
// areas, not saturated like noise) with mostly horizontal structure. The
// locator slides each window over the edge mask with half-window steps,
// scores windows whose density lies in [MinDensity, MaxDensity], and merges
// overlapping hits.
//
// The zero value is not usable; start from NewEdgeDensityLocator.
type EdgeDensityLocator struct {
	// Windows are the probe sizes.
	Windows []Window

	// EdgeThreshold is the Sobel magnitude above which a pixel is an edge.
	EdgeThreshold float64

	// MinDensity and MaxDensity bound the accepted edge density.
	MinDensity float64
	MaxDensity float64

	// MinConfidence drops weaker regions.
	MinConfidence float64
}

// NewEdgeDensityLocator returns a locator with the default windows and
// density band.
func NewEdgeDensityLocator(minConfidence float64) *EdgeDensityLocator {
	return &EdgeDensityLocator{
		Windows:       DefaultWindows,
		EdgeThreshold: 120,
		MinDensity:    0.05,
		MaxDensity:    0.4,
		MinConfidence: minConfidence,
	}
}

// Locate implements feature.TextLocator. Boxes carry no text and are sorted
// by confidence, highest first.
func (l *EdgeDensityLocator) Locate(img image.Image) ([]feature.TextBox, error) {
	if img == nil {
		return nil, nil
	}
	bounds := img.Bounds()
	f := imaging.Gradients(imaging.ToGray(img))
	edges := newEdgeMask(f.Width, f.Height, f.Edges(l.EdgeThreshold))

	mid := (l.MinDensity + l.MaxDensity) / 2
	half := (l.MaxDensity - l.MinDensity) / 2

	var candidates []feature.TextBox
	for _, ws := range l.Windows {
		if ws.Width <= 0 || ws.Height <= 0 {
			continue
		}
		stepX := imaging.Clamp(ws.Width/2, 1, ws.Width)
		stepY := imaging.Clamp(ws.Height/2, 1, ws.Height)

		for y := 0; y <= edges.height-ws.Height; y += stepY {
			for x := 0; x <= edges.width-ws.Width; x += stepX {
				r := image.Rect(x, y, x+ws.Width, y+ws.Height)
				density := float64(edges.count(r)) / float64(ws.Width*ws.Height)
				if density < l.MinDensity || density > l.MaxDensity {
					continue
				}

				confidence := edges.horizontalScore(r)
				if half > 0 {
					confidence *= 1 - math.Abs(density-mid)/half
				}
				if confidence < l.MinConfidence {
					continue
				}
				candidates = append(candidates, feature.TextBox{
					Box:        r.Add(bounds.Min),
					Confidence: math.Round(confidence*1000) / 1000,
				})
			}
		}
	}

	merged := mergeOverlapping(candidates)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})
	return merged, nil
}

// edgeMask is a row-major edge map with a summed-area table for O(1) window
// counts.
type edgeMask struct {
	width  int
	height int
	edges  []bool
	sum    []int // (width+1)*(height+1)
}

func newEdgeMask(width, height int, edges []bool) *edgeMask {
	m := &edgeMask{width: width, height: height, edges: edges, sum: make([]int, (width+1)*(height+1))}
	stride := width + 1
	for y := 0; y < height; y++ {
		row := 0
		for x := 0; x < width; x++ {
			if edges[y*width+x] {
				row++
			}
			m.sum[(y+1)*stride+x+1] = m.sum[y*stride+x+1] + row
		}
	}
	return m
}

func (m *edgeMask) at(x, y int) bool { return m.edges[y*m.width+x] }

// count returns the number of edge pixels in r, which must lie in the mask.
func (m *edgeMask) count(r image.Rectangle) int {
	s := m.width + 1
	return m.sum[r.Max.Y*s+r.Max.X] - m.sum[r.Min.Y*s+r.Max.X] - m.sum[r.Max.Y*s+r.Min.X] + m.sum[r.Min.Y*s+r.Min.X]
}

// horizontalScore is the share of horizontal edge runs among all runs in r.
func (m *edgeMask) horizontalScore(r image.Rectangle) float64 {
	horizontal, vertical := 0, 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		inRun := false
		for x := r.Min.X; x < r.Max.X; x++ {
			if m.at(x, y) {
				if !inRun {
					horizontal++
				}
				inRun = true
			} else {
				inRun = false
			}
		}
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		inRun := false
		for y := r.Min.Y; y < r.Max.Y; y++ {
			if m.at(x, y) {
				if !inRun {
					vertical++
				}
				inRun = true
			} else {
				inRun = false
			}
		}
	}
	if horizontal+vertical == 0 {
		return 0
	}
	return float64(horizontal) / float64(horizontal+vertical)
}

// mergeOverlapping folds every box into the first earlier box it overlaps.
func mergeOverlapping(boxes []feature.TextBox) []feature.TextBox {
	var merged []feature.TextBox
	for _, b := range boxes {
		found := false
		for i := range merged {
			if b.Box.Overlaps(merged[i].Box) {
				merged[i].Box = merged[i].Box.Union(b.Box)
				merged[i].Confidence = math.Max(merged[i].Confidence, b.Confidence)
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, b)
		}
	}
	return merged
}
