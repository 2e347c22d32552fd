package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Evaluation modes of the smart tag engine
const (
	ModePredicate = "predicate"
	ModeQuery     = "query"
	ModePreview   = "preview"
	ModeCount     = "count"
)

// Metrics holds the application's Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	SmartTagEvaluations     *prometheus.CounterVec
	SmartTagDuration        *prometheus.HistogramVec
	SmartTagInvalidCriteria prometheus.Counter
	CacheLookups            *prometheus.CounterVec
}

// New creates and registers every collector
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		SmartTagEvaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smart_tag_evaluations_total",
				Help: "Smart tag evaluations by mode",
			},
			[]string{"mode"},
		),
		SmartTagDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smart_tag_evaluation_duration_seconds",
				Help:    "Smart tag evaluation latency by mode",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"mode"},
		),
		SmartTagInvalidCriteria: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smart_tag_invalid_criteria_total",
			Help: "Stored smart tag definitions that failed to compile",
		}),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smart_tag_count_cache_lookups_total",
				Help: "Smart tag count cache lookups by result",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.SmartTagEvaluations,
		m.SmartTagDuration,
		m.SmartTagInvalidCriteria,
		m.CacheLookups,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
