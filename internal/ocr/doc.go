// Package ocr locates words with the Tesseract OCR engine (via gosseract/v2).
//
// Engine implements feature.TextLocator, so a text layout extractor can be
// backed by real OCR instead of the edge-density heuristic.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Builds without cgo compile a stub whose Locate returns ErrUnavailable;
// Available reports which variant is linked.
//
// # Supported Languages
//
// The default language is English ("eng"). Any installed Tesseract language
// code works: "deu", "fra", "spa", "chi_sim", ...
//
// # Coordinate System
//
// Boxes are returned in the coordinates of the input image, so a sub-image
// yields boxes offset by its bounds. Confidence is Tesseract's word
// confidence rescaled to 0..1.
package ocr
