package ai

import (
	"context"
	"errors"
)

var ErrEmptyResponse = errors.New("model returned no text")

// ImagePart is an image shipped next to the prompt. Format is the short image
// format name, e.g. "png" or "jpeg".
type ImagePart struct {
	Format string
	Data   []byte
}

func (p *ImagePart) MIMEType() string {
	if p.Format == "" {
		return "image/png"
	}
	return "image/" + p.Format
}

// Model is a generative model that answers a prompt, optionally with one image.
type Model interface {
	Generate(ctx context.Context, prompt string, image *ImagePart) (string, error)
	Close() error
}
