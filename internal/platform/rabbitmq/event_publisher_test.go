package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-diagnosis/internal/model"
)

func TestMarshalEventHasNoReportContent(t *testing.T) {
	finished := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	payload, err := marshalEvent(model.AnalysisEvent{
		RequestID:   "3f1c",
		Kind:        model.KindPDF,
		Source:      model.SourceFallback,
		Attempts:    3,
		DoctorCount: 5,
		Duration:    2 * time.Second,
		FinishedAt:  finished,
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.ElementsMatch(t,
		[]string{"request_id", "kind", "source", "attempts", "doctor_count", "duration_ns", "finished_at"},
		keys(decoded),
	)
	assert.Equal(t, "pdf", decoded["kind"])
	assert.Equal(t, "fallback", decoded["source"])
	assert.EqualValues(t, 3, decoded["attempts"])
	assert.EqualValues(t, 2*time.Second, decoded["duration_ns"])
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
