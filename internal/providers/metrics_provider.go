package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"postpilot/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncGenerationAttempt(op string, success bool)
	ObserveStepDuration(kind, step string, duration time.Duration)
	IncPipelineOutcome(kind, outcome string)
	IncPipelineResumed(kind string)
	SetLiveCheckpoints(count int)
}

type MetricsProvider struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	generationAttempts *prometheus.CounterVec
	stepDuration       *prometheus.HistogramVec
	pipelineOutcomes   *prometheus.CounterVec
	pipelineResumes    *prometheus.CounterVec
	liveCheckpoints    prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncGenerationAttempt(op string, success bool) {
	outcome := "error"
	if success {
		outcome = "ok"
	}
	m.generationAttempts.WithLabelValues(op, outcome).Inc()
}

func (m *MetricsProvider) ObserveStepDuration(kind, step string, duration time.Duration) {
	m.stepDuration.WithLabelValues(kind, step).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncPipelineOutcome(kind, outcome string) {
	m.pipelineOutcomes.WithLabelValues(kind, outcome).Inc()
}

func (m *MetricsProvider) IncPipelineResumed(kind string) {
	m.pipelineResumes.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) SetLiveCheckpoints(count int) {
	m.liveCheckpoints.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "postpilot_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "postpilot_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "postpilot_cache_hits_total",
			Help: "Total number of news cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "postpilot_cache_misses_total",
			Help: "Total number of news cache misses",
		}),

		generationAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "postpilot_generation_attempts_total",
			Help: "Generation service attempts by operation and outcome",
		}, []string{"op", "outcome"}),

		stepDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "postpilot_step_duration_seconds",
			Help:    "Pipeline step duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 90, 120, 180},
		}, []string{"kind", "step"}),

		pipelineOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "postpilot_pipeline_outcomes_total",
			Help: "Completed and failed pipeline runs by kind",
		}, []string{"kind", "outcome"}),

		pipelineResumes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "postpilot_pipeline_resumes_total",
			Help: "Pipeline runs resumed from a checkpoint",
		}, []string{"kind"}),

		liveCheckpoints: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "postpilot_live_checkpoints",
			Help: "Number of live (non-expired) checkpoints",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncGenerationAttempt(_ string, _ bool)            {}
func (n *noopMetrics) ObserveStepDuration(_, _ string, _ time.Duration) {}
func (n *noopMetrics) IncPipelineOutcome(_, _ string)                   {}
func (n *noopMetrics) IncPipelineResumed(_ string)                      {}
func (n *noopMetrics) SetLiveCheckpoints(_ int)                         {}
