// Package detection locates text-like regions with image heuristics.
//
// EdgeDensityLocator is a pure-Go feature.TextLocator: it needs no OCR engine
// and no cgo, so it backs the text layout extractor wherever Tesseract is not
// available.
//
// # Algorithm Overview
//
//  1. Edge Detection: Sobel magnitude of the gray plane above EdgeThreshold
//  2. Window Scan: each probe window slides with half-window steps; a
//     summed-area table gives the edge count of a window in constant time
//  3. Scoring: windows inside the density band are scored by the share of
//     horizontal edge runs, damped by the distance from the band center
//  4. Merging: overlapping hits are merged into their union, keeping the best
//     confidence
//
// # Coordinate System
//
// Boxes are in the coordinates of the input image, so a sub-image yields
// boxes offset by its bounds. Min is inclusive, Max exclusive.
//
// # Limitations
//
// The heuristic works best on clean, high-contrast renders such as
// screenshots and diagrams. Photographs with dense texture produce false
// positives, and text smaller than the smallest probe window is missed.
package detection
