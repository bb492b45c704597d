package extract

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-diagnosis/internal/model"
)

func TestExtractImagePassesDecodedImageThrough(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 12, 8))))

	content, err := NewExtractor(t.TempDir()).Extract(context.Background(), model.UploadedFile{
		Name: "xray.png",
		Kind: model.KindImage,
		Data: buf.Bytes(),
	})
	require.NoError(t, err)

	assert.Equal(t, model.KindImage, content.Kind)
	assert.Equal(t, "png", content.ImageFormat)
	assert.Equal(t, buf.Bytes(), content.ImageData)
	require.NotNil(t, content.Image)
	assert.Equal(t, 12, content.Image.Bounds().Dx())
}

func TestExtractMalformedImage(t *testing.T) {
	_, err := NewExtractor(t.TempDir()).Extract(context.Background(), model.UploadedFile{
		Kind: model.KindImage,
		Data: []byte("GIF89a nope"),
	})
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestExtractPDFJoinsPagesInOrder(t *testing.T) {
	dir := t.TempDir()
	data := buildTextPDF([]string{"PageOne", "", "PageThree"})

	content, err := NewExtractor(dir).Extract(context.Background(), model.UploadedFile{
		Name: "labs.pdf",
		Kind: model.KindPDF,
		Data: data,
	})
	require.NoError(t, err)

	assert.Equal(t, model.KindPDF, content.Kind)
	// the pdf reader separates text runs with line breaks
	assert.Equal(t, []string{"PageOne", "PageThree"}, strings.Fields(content.Text))
	assert.Less(t, strings.Index(content.Text, "PageOne"), strings.Index(content.Text, "PageThree"))

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestExtractMalformedPDFLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()

	_, err := NewExtractor(dir).Extract(context.Background(), model.UploadedFile{
		Kind: model.KindPDF,
		Data: []byte("plain text pretending to be a pdf"),
	})
	assert.ErrorIs(t, err, ErrMalformedInput)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestExtractUnknownKind(t *testing.T) {
	_, err := NewExtractor("").Extract(context.Background(), model.UploadedFile{Kind: "docx"})
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestExtractHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor("").Extract(ctx, model.UploadedFile{Kind: model.KindPDF})
	assert.ErrorIs(t, err, context.Canceled)
}
