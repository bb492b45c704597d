package vision

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

var ErrUndecodable = errors.New("image could not be decoded")

const defaultPreviewWidth = 720

// Decode decodes jpeg or png bytes. The returned format is the name the image
// package registered the decoder under ("jpeg", "png").
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return img, format, nil
}

// Preview scales img down to at most maxWidth pixels wide, keeping the aspect
// ratio, and encodes it as PNG. Images already narrow enough are re-encoded
// unscaled.
func Preview(img image.Image, maxWidth int) ([]byte, error) {
	if maxWidth <= 0 {
		maxWidth = defaultPreviewWidth
	}
	bounds := img.Bounds()
	dst := img
	if bounds.Dx() > maxWidth {
		height := bounds.Dy() * maxWidth / bounds.Dx()
		if height < 1 {
			height = 1
		}
		scaled := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
		dst = scaled
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode preview failed: %w", err)
	}
	return buf.Bytes(), nil
}

// PreviewDataURL renders a preview ready to drop into an <img src>.
func PreviewDataURL(img image.Image, maxWidth int) (string, error) {
	raw, err := Preview(img, maxWidth)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw), nil
}
