// Package imaging holds the image plumbing shared by the feature extractors
// and the MCP server.
//
// It covers three concerns:
//   - acquisition: a thread-safe Cache of decoded frames keyed by file path,
//     plus metadata (Describe, Dimensions, Depth);
//   - conversion: ToGray turns any image.Image into an origin-based 8-bit
//     plane, the representation every extractor samples;
//   - geometry and gradients: CenteredRect/Contains implement the patch
//     window convention and Gradients computes a Sobel field.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X growing
// to the right and Y growing downward. Rectangles are half-open: Min is
// inclusive, Max is exclusive.
//
// A patch is addressed by its center. For a center (x, y) and size w×h the
// window is [x - w/2, x - w/2 + w) × [y - h/2, y - h/2 + h) with integer
// division.
//
// # Thread Safety
//
// Cache is safe for concurrent use. The conversion and gradient functions are
// pure and never modify their input.
package imaging
