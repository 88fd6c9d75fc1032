//go:build !cgo

package ocr

import "image"

// Available reports whether Tesseract support is compiled in.
func Available() bool { return false }

// Version returns the linked Tesseract version.
func Version() string { return "" }

func (e *Engine) recognize(image.Image) ([]word, error) {
	return nil, ErrUnavailable
}
