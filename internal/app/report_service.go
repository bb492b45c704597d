package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"health-diagnosis/internal/model"
)

var ErrEmptyUpload = errors.New("uploaded file is empty")

type ContentExtractor interface {
	Extract(ctx context.Context, file model.UploadedFile) (model.ExtractedContent, error)
}

type ReportAnalyzer interface {
	Analyze(ctx context.Context, content model.ExtractedContent) model.AnalysisResult
}

type DoctorFinder interface {
	FindDoctors(ctx context.Context, location, specialization string) ([]string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.AnalysisEvent) error
}

type ReportInput struct {
	RequestID      string
	File           model.UploadedFile
	Location       string
	Specialization string
}

type ReportOutput struct {
	Content          model.ExtractedContent `json:"-"`
	Analysis         model.AnalysisResult   `json:"analysis"`
	DoctorsRequested bool                   `json:"doctors_requested"`
	Doctors          []string               `json:"doctors,omitempty"`
	Notices          []model.Notice         `json:"notices,omitempty"`
}

// ReportService runs one analyze action: extract, analyze, then look up
// doctors when a location was given. Steps run one after another.
type ReportService struct {
	extractor ContentExtractor
	analyzer  ReportAnalyzer
	doctors   DoctorFinder
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewReportService(
	extractor ContentExtractor,
	analyzer ReportAnalyzer,
	doctors DoctorFinder,
	publisher EventPublisher,
	logger *slog.Logger,
) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		extractor: extractor,
		analyzer:  analyzer,
		doctors:   doctors,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *ReportService) Run(ctx context.Context, input ReportInput) (*ReportOutput, error) {
	if len(input.File.Data) == 0 {
		return nil, ErrEmptyUpload
	}
	started := s.now()
	logger := s.logger.With("request_id", input.RequestID, "kind", input.File.Kind)

	content, err := s.extractor.Extract(ctx, input.File)
	if err != nil {
		logger.Warn("extract report failed", "err", err)
		return nil, err
	}

	out := &ReportOutput{Content: content}
	out.Analysis = s.analyzer.Analyze(ctx, content)
	out.Notices = append(out.Notices, out.Analysis.Notices...)

	if location := strings.TrimSpace(input.Location); location != "" {
		out.DoctorsRequested = true
		doctors, err := s.doctors.FindDoctors(ctx, location, input.Specialization)
		if err != nil {
			logger.Error("doctor lookup failed", "err", err)
			out.Notices = append(out.Notices, model.Notice{
				Level:   model.NoticeError,
				Message: "Doctor recommendations are unavailable right now. Please try again later.",
			})
		} else {
			out.Doctors = doctors
		}
	}

	s.publish(ctx, logger, model.AnalysisEvent{
		RequestID:   input.RequestID,
		Kind:        content.Kind,
		Source:      out.Analysis.Source,
		Attempts:    out.Analysis.Attempts,
		DoctorCount: len(out.Doctors),
		Duration:    s.now().Sub(started),
		FinishedAt:  s.now(),
	})
	return out, nil
}

func (s *ReportService) publish(ctx context.Context, logger *slog.Logger, event model.AnalysisEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("publish analysis event failed", "err", err)
	}
}
