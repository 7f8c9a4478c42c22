package converter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	apperrors "s2t/internal/app/errors"
)

// Metrics contains Prometheus collectors for both transcription flows
type Metrics struct {
	FileTranscriptions *prometheus.CounterVec
	FileDuration       prometheus.Histogram
	LiveSessions       prometheus.Gauge
	LiveUtterances     *prometheus.CounterVec
}

// NewMetrics creates and registers flow metrics on reg.
// A nil registerer uses the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		FileTranscriptions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "s2t_file_transcriptions_total",
			Help: "Total number of file transcriptions by result kind",
		}, []string{"kind"}),
		FileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "s2t_file_transcription_duration_seconds",
			Help:    "End-to-end duration of file transcriptions",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.5 minutes
		}),
		LiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "s2t_live_sessions_active",
			Help: "Number of live listening sessions in progress",
		}),
		LiveUtterances: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "s2t_live_utterances_total",
			Help: "Total number of utterances processed in live sessions by result kind",
		}, []string{"kind"}),
	}
}

func kindLabel(kind apperrors.Kind) string {
	if kind == apperrors.KindNone {
		return "success"
	}
	return string(kind)
}

func (m *Metrics) observeFile(kind apperrors.Kind, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.FileTranscriptions.WithLabelValues(kindLabel(kind)).Inc()
	m.FileDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) observeUtterance(kind apperrors.Kind) {
	if m == nil {
		return
	}
	m.LiveUtterances.WithLabelValues(kindLabel(kind)).Inc()
}

func (m *Metrics) sessionStarted() {
	if m != nil {
		m.LiveSessions.Inc()
	}
}

func (m *Metrics) sessionEnded() {
	if m != nil {
		m.LiveSessions.Dec()
	}
}
