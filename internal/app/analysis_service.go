package app

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"strings"
	"time"

	"health-diagnosis/internal/ai"
	"health-diagnosis/internal/model"
	"health-diagnosis/internal/retry"
)

const analysisPrompt = `Analyze the provided medical report and provide:
1. Current health issues detected.
2. Possible future problems if untreated.
3. Recommended doctors and specializations required.
4. Necessary dietary restrictions based on the conditions found.
5. Additional medical tests or investigations suggested.
6. Lifestyle changes to improve overall health.
Provide your response in a structured manner.`

const (
	ImageFallbackText = "Unable to analyze the image due to API issues. Please try again later."
	fallbackNotice    = "Using fallback analysis method due to API issues."
)

// AnalysisService sends extracted report content to the generative model.
// Model failures never reach the caller: after the retry policy gives up the
// result is a canned fallback, with notices describing what happened.
type AnalysisService struct {
	model  ai.Model
	policy retry.Policy
	logger *slog.Logger
}

func NewAnalysisService(m ai.Model, policy retry.Policy, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{model: m, policy: policy, logger: logger}
}

func (s *AnalysisService) Analyze(ctx context.Context, content model.ExtractedContent) model.AnalysisResult {
	prompt, image, err := buildRequest(content)
	if err != nil {
		s.logger.Error("build analysis request failed", "err", err)
		return s.fallback(content, 0, err, nil)
	}

	var notices []model.Notice
	var text string
	maxAttempts := s.policy.MaxAttempts()
	attempts, err := s.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		out, genErr := s.model.Generate(ctx, prompt, image)
		if genErr != nil {
			s.logger.Warn("model call failed", "attempt", attempt, "max_attempts", maxAttempts, "kind", content.Kind, "err", genErr)
			return genErr
		}
		text = out
		return nil
	}, func(attempt int, delay time.Duration, err error) {
		notices = append(notices, model.Notice{
			Level:   model.NoticeWarning,
			Message: fmt.Sprintf("An error occurred. Retrying in %g seconds... (Attempt %d/%d)", delay.Seconds(), attempt, maxAttempts),
		})
	})
	if err != nil {
		return s.fallback(content, attempts, err, notices)
	}

	s.logger.Info("report analyzed", "kind", content.Kind, "attempts", attempts)
	return model.AnalysisResult{
		Text:     text,
		Source:   model.SourceModel,
		Attempts: attempts,
		Notices:  notices,
	}
}

func (s *AnalysisService) fallback(content model.ExtractedContent, attempts int, cause error, notices []model.Notice) model.AnalysisResult {
	s.logger.Error("analysis failed, using fallback", "kind", content.Kind, "attempts", attempts, "err", cause)
	notices = append(notices,
		model.Notice{
			Level:   model.NoticeError,
			Message: fmt.Sprintf("Failed to analyze the report after %d attempts. Error: %v", attempts, cause),
		},
		model.Notice{Level: model.NoticeWarning, Message: fallbackNotice},
	)
	return model.AnalysisResult{
		Text:     FallbackText(content),
		Source:   model.SourceFallback,
		Attempts: attempts,
		Notices:  notices,
	}
}

// FallbackText is shown when the model could not be reached. Text reports only
// get a word count.
func FallbackText(content model.ExtractedContent) string {
	if content.Kind == model.KindImage {
		return ImageFallbackText
	}
	words := len(strings.Fields(content.Text))
	return fmt.Sprintf(`Fallback Analysis:
- Document Type: Text-based medical report
- Word Count: %d words
- Unable to analyze content in detail due to AI issues. Please consult a doctor manually.`, words)
}

func buildRequest(content model.ExtractedContent) (string, *ai.ImagePart, error) {
	if content.Kind != model.KindImage {
		return analysisPrompt + "\n\n" + content.Text, nil, nil
	}
	if len(content.ImageData) > 0 {
		return analysisPrompt, &ai.ImagePart{Format: content.ImageFormat, Data: content.ImageData}, nil
	}
	if content.Image == nil {
		return "", nil, fmt.Errorf("image content is empty")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, content.Image); err != nil {
		return "", nil, fmt.Errorf("encode image failed: %w", err)
	}
	return analysisPrompt, &ai.ImagePart{Format: "png", Data: buf.Bytes()}, nil
}
