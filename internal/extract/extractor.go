package extract

import (
	"context"
	"errors"
	"fmt"

	"health-diagnosis/internal/model"
	"health-diagnosis/internal/pkg/pdfextract"
	"health-diagnosis/internal/pkg/scratch"
	"health-diagnosis/internal/vision"
)

var (
	ErrMalformedInput  = errors.New("malformed report file")
	ErrUnsupportedKind = errors.New("unsupported file kind")
)

// Extractor turns an uploaded report into content the analyzer can send to
// the model.
type Extractor struct {
	tempDir string
}

func NewExtractor(tempDir string) *Extractor {
	return &Extractor{tempDir: tempDir}
}

func (e *Extractor) Extract(ctx context.Context, file model.UploadedFile) (model.ExtractedContent, error) {
	if err := ctx.Err(); err != nil {
		return model.ExtractedContent{}, err
	}
	switch file.Kind {
	case model.KindPDF:
		return e.extractPDF(file)
	case model.KindImage:
		return e.extractImage(file)
	default:
		return model.ExtractedContent{}, fmt.Errorf("%w: %q", ErrUnsupportedKind, file.Kind)
	}
}

func (e *Extractor) extractPDF(file model.UploadedFile) (model.ExtractedContent, error) {
	var text string
	err := scratch.With(e.tempDir, "report-*.pdf", file.Data, func(path string) error {
		extracted, err := pdfextract.ExtractTextFile(path)
		if err != nil {
			return err
		}
		text = extracted
		return nil
	})
	if err != nil {
		if errors.Is(err, pdfextract.ErrUnreadable) {
			return model.ExtractedContent{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		return model.ExtractedContent{}, fmt.Errorf("extract pdf text failed: %w", err)
	}
	return model.ExtractedContent{Kind: model.KindPDF, Text: text}, nil
}

func (e *Extractor) extractImage(file model.UploadedFile) (model.ExtractedContent, error) {
	img, format, err := vision.Decode(file.Data)
	if err != nil {
		return model.ExtractedContent{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return model.ExtractedContent{
		Kind:        model.KindImage,
		Image:       img,
		ImageData:   file.Data,
		ImageFormat: format,
	}, nil
}
