package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodePNG(t *testing.T) {
	img, format, err := Decode(encodePNG(t, solid(40, 20)))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
}

func TestDecodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(16, 16), nil))

	_, format, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestDecodeTruncatedPNG(t *testing.T) {
	raw := encodePNG(t, solid(40, 20))

	_, _, err := Decode(raw[:len(raw)/2])
	assert.ErrorIs(t, err, ErrUndecodable)
}

func TestDecodeGarbage(t *testing.T) {
	_, _, err := Decode([]byte("definitely not pixels"))
	assert.ErrorIs(t, err, ErrUndecodable)
}

func TestPreviewScalesWideImages(t *testing.T) {
	raw, err := Preview(solid(200, 100), 50)
	require.NoError(t, err)

	out, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 50, out.Bounds().Dx())
	assert.Equal(t, 25, out.Bounds().Dy())
}

func TestPreviewKeepsNarrowImages(t *testing.T) {
	raw, err := Preview(solid(30, 10), 50)
	require.NoError(t, err)

	out, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 30, out.Bounds().Dx())
}

func TestPreviewDataURL(t *testing.T) {
	url, err := PreviewDataURL(solid(4, 4), 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
}
