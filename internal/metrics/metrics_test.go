package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
)

func TestMetrics_ObserveGrading(t *testing.T) {
	m := New(prometheus.NewRegistry())
	passed := true

	m.ObserveGrading(&models.AggregateResult{
		IsPassed: &passed,
		CheckedAnswers: []models.CheckedAnswer{
			{QuestionType: models.SingleChoice, IsCorrect: true},
			{QuestionType: models.SingleChoice, TimeExceeded: true},
		},
	}, 2*time.Millisecond)
	m.ObserveGrading(&models.AggregateResult{
		ManualCheckRequired: true,
		CheckedAnswers: []models.CheckedAnswer{
			{QuestionType: models.Essay, CheckDetails: models.CheckDetails{ManualCheckRequired: true}},
		},
	}, time.Millisecond)
	m.ObserveRejected()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues(OutcomePassed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues(OutcomePending)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeFailed)))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.answersChecked.WithLabelValues("SINGLE_CHOICE", "correct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.answersChecked.WithLabelValues("SINGLE_CHOICE", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.answersChecked.WithLabelValues("ESSAY", "manual")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveGrading(&models.AggregateResult{}, time.Second)
		m.ObserveRejected()
	})
}
