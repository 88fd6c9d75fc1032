// Package feature extracts fixed-length feature vectors from rectangular
// patches of an image.
//
// A detection pipeline asks for thousands of patches per image while it slides
// windows over positions and scales. Every strategy implements the same
// Extractor contract so the pipeline can swap strategies, or stack them,
// without knowing what is inside.
//
// # Extractors
//
// Primitive extractors sample the image themselves:
//
//   - DirectExtractor: gray values of the window rescaled to a fixed size
//   - PyramidExtractor: gray values read from a prebuilt scale level
//   - GradientHistogramExtractor: per-cell Sobel orientation histograms
//   - ColorHistogramExtractor: saturation-weighted hue histogram
//   - HashExtractor: extended perceptual hash bits
//   - TextLayoutExtractor: word statistics from a TextLocator
//
// Composite extractors own other extractors:
//
//   - ChainedExtractor: image filters in front of a final extractor
//   - FilteringExtractor: vector filters behind a base extractor
//   - CombinedExtractor: concatenation of several extractors
//   - MemoExtractor: LRU memo of a base extractor's results
//
// # Updates and Versions
//
// Extractors adopt an image either unconditionally (Update) or through a
// shared VersionedImage (UpdateVersioned). The versioned path is a no-op when
// the extractor already adopted the current version of that slot, so many
// extractor trees can poll one slot and only the first poll after a new frame
// costs anything.
//
// Adoption never computes anything. Per-image state (gray plane, gradient
// field, pyramid levels, filtered image, memo) is built by the first Extract
// that needs it and belongs to one adoption generation. A newer generation
// replaces it as a whole.
//
// # Coordinates
//
// (x, y) is the patch center in pixels relative to the image origin. The
// window is [x - w/2, x - w/2 + w) × [y - h/2, y - h/2 + h) with integer
// division. A window that does not lie entirely inside the image yields no
// patch.
//
// # Concurrency
//
// VersionedImage is safe to share. One extractor tolerates concurrent Extract
// calls; Update concurrent with Extract on the same extractor is not
// supported. The intended model is one extractor tree per worker, all trees
// polling the same VersionedImage.
package feature
