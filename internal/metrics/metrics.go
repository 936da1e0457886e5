package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
)

const namespace = "grading"

// Submission outcomes
const (
	OutcomePassed   = "passed"
	OutcomeFailed   = "failed"
	OutcomePending  = "pending_review"
	OutcomeRejected = "rejected"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry prometheus.Gatherer

	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	submissions     *prometheus.CounterVec
	answersChecked  *prometheus.CounterVec
	gradingDuration prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Graded submissions by outcome",
			},
			[]string{"outcome"},
		),
		answersChecked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "answers_checked_total",
				Help:      "Checked answers by question type and verdict",
			},
			[]string{"question_type", "verdict"},
		),
		gradingDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "duration_seconds",
				Help:      "Time spent grading one submission",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
	}

	reg.MustRegister(m.requestCounter, m.requestDuration, m.submissions, m.answersChecked, m.gradingDuration)
	return m
}

// ObserveGrading records one grading pass and its per-answer verdicts.
func (m *Metrics) ObserveGrading(result *models.AggregateResult, took time.Duration) {
	if m == nil {
		return
	}
	m.gradingDuration.Observe(took.Seconds())
	m.submissions.WithLabelValues(outcome(result)).Inc()

	for _, a := range result.CheckedAnswers {
		m.answersChecked.WithLabelValues(string(a.QuestionType), verdict(a)).Inc()
	}
}

// ObserveRejected counts a submission the engine refused to grade.
func (m *Metrics) ObserveRejected() {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(OutcomeRejected).Inc()
}

func outcome(result *models.AggregateResult) string {
	switch {
	case result.IsPending():
		return OutcomePending
	case result.IsPassed != nil && *result.IsPassed:
		return OutcomePassed
	default:
		return OutcomeFailed
	}
}

func verdict(a models.CheckedAnswer) string {
	switch {
	case a.TimeExceeded:
		return "timeout"
	case a.CheckDetails.ManualCheckRequired:
		return "manual"
	case a.IsCorrect:
		return "correct"
	default:
		return "incorrect"
	}
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		m.requestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		m.requestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Status(http.StatusNotFound) }
	}
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
