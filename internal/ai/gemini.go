package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type GeminiModel struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

func NewGeminiModel(ctx context.Context, cfg GeminiConfig, opts ...option.ClientOption) (*GeminiModel, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client failed: %w", err)
	}
	return &GeminiModel{
		client:  client,
		model:   client.GenerativeModel(cfg.Model),
		timeout: cfg.Timeout,
	}, nil
}

func (m *GeminiModel) Generate(ctx context.Context, prompt string, image *ImagePart) (string, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	parts := []genai.Part{genai.Text(prompt)}
	if image != nil {
		parts = append(parts, genai.ImageData(image.Format, image.Data))
	}

	rsp, err := m.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}
	return responseText(rsp)
}

func (m *GeminiModel) Close() error {
	return m.client.Close()
}

func responseText(rsp *genai.GenerateContentResponse) (string, error) {
	if rsp == nil || len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
