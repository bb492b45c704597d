package model

import "time"

type ResultSource string

const (
	SourceModel    ResultSource = "model"
	SourceFallback ResultSource = "fallback"
)

type NoticeLevel string

const (
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-facing message produced while serving a request. Services
// return notices and the presentation layer decides how to show them.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// AnalysisResult is the analyzer's answer. Notices are surfaced by the
// enclosing report output, so they stay out of its JSON.
type AnalysisResult struct {
	Text     string       `json:"text"`
	Source   ResultSource `json:"source"`
	Attempts int          `json:"attempts"`
	Notices  []Notice     `json:"-"`
}

// AnalysisEvent describes a finished analyze action. It never carries report
// content.
type AnalysisEvent struct {
	RequestID   string        `json:"request_id"`
	Kind        FileKind      `json:"kind"`
	Source      ResultSource  `json:"source"`
	Attempts    int           `json:"attempts"`
	DoctorCount int           `json:"doctor_count"`
	Duration    time.Duration `json:"duration_ns"`
	FinishedAt  time.Time     `json:"finished_at"`
}
