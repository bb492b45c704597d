package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"health-diagnosis/internal/ai"
	"health-diagnosis/internal/retry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeModel struct {
	errs   []error
	reply  string
	calls  int
	prompt []string
	images []*ai.ImagePart
}

func (m *fakeModel) Generate(ctx context.Context, prompt string, image *ai.ImagePart) (string, error) {
	m.calls++
	m.prompt = append(m.prompt, prompt)
	m.images = append(m.images, image)
	if m.calls <= len(m.errs) && m.errs[m.calls-1] != nil {
		return "", m.errs[m.calls-1]
	}
	return m.reply, nil
}

func (m *fakeModel) Close() error { return nil }

// sleepRecorder stands in for the retry timer: it fires at once and records
// each wait it was asked for.
type sleepRecorder struct {
	waits []time.Duration
	c     chan time.Time
}

func (r *sleepRecorder) Start(d time.Duration) {
	if r.c == nil {
		r.c = make(chan time.Time, 1)
	}
	r.waits = append(r.waits, d)
	r.c <- time.Now()
}

func (r *sleepRecorder) Stop() {}

func (r *sleepRecorder) C() <-chan time.Time {
	if r.c == nil {
		r.c = make(chan time.Time, 1)
	}
	return r.c
}

func fixedPolicy(rec *sleepRecorder) *retry.Fixed {
	p := retry.NewFixed(3, 2*time.Second)
	p.Timer = rec
	return p
}
