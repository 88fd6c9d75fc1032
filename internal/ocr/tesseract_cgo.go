//go:build cgo

package ocr

import (
	"bytes"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
	"github.com/pkg/errors"
)

// Available reports whether Tesseract support is compiled in.
func Available() bool { return true }

// Version returns the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

func (e *Engine) recognize(img image.Image) ([]word, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "encode image for tesseract")
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.Language); err != nil {
		return nil, errors.Wrapf(err, "set language %q", e.Language)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, errors.Wrap(err, "set image")
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, errors.Wrap(err, "get word boxes")
	}

	words := make([]word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, word{Box: b.Box, Text: b.Word, Confidence: b.Confidence})
	}
	return words, nil
}
