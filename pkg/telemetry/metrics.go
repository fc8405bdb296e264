package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for journey orchestration. A
// disabled collector is a no-op so call sites never branch.
type Metrics struct {
	enabled bool

	journeysStarted   *prometheus.CounterVec
	journeysCompleted *prometheus.CounterVec
	journeyDuration   *prometheus.HistogramVec

	frameworkExecutions *prometheus.CounterVec
	frameworkDuration   *prometheus.HistogramVec
	frameworkRetries    *prometheus.CounterVec

	qualityScore *prometheus.HistogramVec

	errorsByCode *prometheus.CounterVec

	activeJourneys prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return &Metrics{}
	}

	namespace := cfg.Namespace
	registry := prometheus.NewRegistry()

	m := &Metrics{
		enabled:  true,
		registry: registry,

		journeysStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "journeys_started_total",
				Help:      "Total number of journey runs started",
			},
			[]string{"journey_type"},
		),
		journeysCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "journeys_completed_total",
				Help:      "Total number of journey runs finished, by terminal status",
			},
			[]string{"journey_type", "status"},
		),
		journeyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "journey_duration_seconds",
				Help:      "Wall-clock duration of journey runs",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"journey_type"},
		),

		frameworkExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "framework_executions_total",
				Help:      "Total framework executions, by outcome",
			},
			[]string{"framework", "status"},
		),
		frameworkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "framework_duration_seconds",
				Help:      "Duration of single framework executions",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"framework"},
		),
		frameworkRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "framework_retries_total",
				Help:      "Total framework retry attempts, by error code",
			},
			[]string{"framework", "code"},
		),

		qualityScore: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "quality_score",
				Help:      "Overall quality scores of framework outputs",
				Buckets:   []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			},
			[]string{"framework"},
		),

		errorsByCode: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total orchestration errors, by code",
			},
			[]string{"code"},
		),

		activeJourneys: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_journeys",
				Help:      "Journey runs currently in progress",
			},
		),
	}

	registry.MustRegister(
		m.journeysStarted,
		m.journeysCompleted,
		m.journeyDuration,
		m.frameworkExecutions,
		m.frameworkDuration,
		m.frameworkRetries,
		m.qualityScore,
		m.errorsByCode,
		m.activeJourneys,
	)

	return m
}

// JourneyStarted records a new run.
func (m *Metrics) JourneyStarted(journeyType string) {
	if !m.enabled {
		return
	}
	m.journeysStarted.WithLabelValues(journeyType).Inc()
	m.activeJourneys.Inc()
}

// JourneyFinished records a run reaching a terminal status.
func (m *Metrics) JourneyFinished(journeyType, status string, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.journeysCompleted.WithLabelValues(journeyType, status).Inc()
	m.journeyDuration.WithLabelValues(journeyType).Observe(duration.Seconds())
	m.activeJourneys.Dec()
}

// FrameworkExecuted records one framework execution outcome.
func (m *Metrics) FrameworkExecuted(framework, status string, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.frameworkExecutions.WithLabelValues(framework, status).Inc()
	m.frameworkDuration.WithLabelValues(framework).Observe(duration.Seconds())
}

// FrameworkRetried records a retry attempt.
func (m *Metrics) FrameworkRetried(framework, code string) {
	if !m.enabled {
		return
	}
	m.frameworkRetries.WithLabelValues(framework, code).Inc()
}

// QualityScored records an overall quality score.
func (m *Metrics) QualityScored(framework string, score float64) {
	if !m.enabled {
		return
	}
	m.qualityScore.WithLabelValues(framework).Observe(score)
}

// ErrorRecorded counts a classified error.
func (m *Metrics) ErrorRecorded(code string) {
	if !m.enabled {
		return
	}
	m.errorsByCode.WithLabelValues(code).Inc()
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if !m.enabled {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
