package provider

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"s2t/internal/app/audio"
	apperrors "s2t/internal/app/errors"
)

// Recognition outcomes used as metric label values
const (
	OutcomeSuccess      = "success"
	OutcomeUnrecognized = "unrecognized"
	OutcomeError        = "error"
)

// Metrics contains the Prometheus collectors for recognition calls
type Metrics struct {
	Requests      *prometheus.CounterVec
	Duration      *prometheus.HistogramVec
	AudioDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers recognition metrics on reg.
// A nil registerer uses the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "s2t_recognition_requests_total",
			Help: "Total number of recognition calls by provider and outcome",
		}, []string{"provider", "outcome"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "s2t_recognition_duration_seconds",
			Help:    "Duration of recognition calls",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~1.5 minutes
		}, []string{"provider"}),
		AudioDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "s2t_recognition_audio_seconds",
			Help:    "Length of audio submitted for recognition",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4 minutes
		}, []string{"provider"}),
	}
}

// Instrumented wraps a Recognizer and records metrics for every call
type Instrumented struct {
	Recognizer
	name    string
	metrics *Metrics
}

// Instrument returns r wrapped with metrics collection.
// A nil metrics value returns r unchanged.
func Instrument(r Recognizer, m *Metrics) Recognizer {
	if m == nil {
		return r
	}
	return &Instrumented{
		Recognizer: r,
		name:       r.GetProviderInfo().Name,
		metrics:    m,
	}
}

// Recognize delegates to the wrapped recognizer
func (i *Instrumented) Recognize(ctx context.Context, clip *audio.Clip) (string, error) {
	start := time.Now()
	text, err := i.Recognizer.Recognize(ctx, clip)

	i.metrics.Duration.WithLabelValues(i.name).Observe(time.Since(start).Seconds())
	if clip != nil {
		i.metrics.AudioDuration.WithLabelValues(i.name).Observe(clip.Duration().Seconds())
	}
	i.metrics.Requests.WithLabelValues(i.name, outcome(err)).Inc()

	return text, err
}

func outcome(err error) string {
	switch apperrors.Classify(err) {
	case apperrors.KindNone:
		return OutcomeSuccess
	case apperrors.KindUnrecognized:
		return OutcomeUnrecognized
	default:
		return OutcomeError
	}
}
