package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type ChatConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAICompatibleModel talks to any endpoint speaking the OpenAI chat
// completions protocol.
type OpenAICompatibleModel struct {
	client *openai.Client
	model  string
}

func NewOpenAICompatibleModel(cfg ChatConfig) *OpenAICompatibleModel {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAICompatibleModel{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

func (m *OpenAICompatibleModel) Generate(ctx context.Context, prompt string, image *ImagePart) (string, error) {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if image == nil {
		msg.Content = prompt
	} else {
		msg.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: prompt},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    "data:" + image.MIMEType() + ";base64," + base64.StdEncoding.EncodeToString(image.Data),
					Detail: openai.ImageURLDetailAuto,
				},
			},
		}
	}

	rsp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    m.model,
		Messages: []openai.ChatCompletionMessage{msg},
	})
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	if len(rsp.Choices) == 0 || strings.TrimSpace(rsp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return rsp.Choices[0].Message.Content, nil
}

func (m *OpenAICompatibleModel) Close() error {
	return nil
}
