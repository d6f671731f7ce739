package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"hotseatd/internal/structures"
)

// ViewStats is the slice of the live seat view the gauges read from.
// Implemented by the reconciliation service.
type ViewStats interface {
	ActiveSeatCount() int
	TotalSessionCount() int
	SyntheticActive() bool
}

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncEventsIngested(source string)
	IncEventsDropped(source string)
	IncStoreFailures(op string)
	SetConnectionUp(source string, up bool)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	eventsIngested  *prometheus.CounterVec
	eventsDropped   *prometheus.CounterVec
	storeFailures   *prometheus.CounterVec
	connectionUp    *prometheus.GaugeVec
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

func (m *MetricsProvider) IncEventsIngested(source string) {
	m.eventsIngested.WithLabelValues(source).Inc()
}

func (m *MetricsProvider) IncEventsDropped(source string) {
	m.eventsDropped.WithLabelValues(source).Inc()
}

func (m *MetricsProvider) IncStoreFailures(op string) {
	m.storeFailures.WithLabelValues(op).Inc()
}

func (m *MetricsProvider) SetConnectionUp(source string, up bool) {
	v := 0.0
	if up {
		v = 1.0
	}
	m.connectionUp.WithLabelValues(source).Set(v)
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

func NewMetricsProvider(conf *structures.Config, stats ViewStats) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hotseat_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hotseat_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hotseat_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hotseat_cache_misses_total",
			Help: "Total number of response cache misses",
		}),

		eventsIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hotseat_events_ingested_total",
			Help: "Total number of seat events applied, per source",
		}, []string{"source"}),

		eventsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hotseat_events_dropped_total",
			Help: "Total number of malformed or unpersistable events dropped, per source",
		}, []string{"source"}),

		storeFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hotseat_store_failures_total",
			Help: "Total number of document store operation failures",
		}, []string{"op"}),

		connectionUp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hotseat_connection_up",
			Help: "Whether a data source connection is currently live",
		}, []string{"source"}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "hotseat_active_seats",
		Help: "Seats with an active session in the live view",
	}, func() float64 {
		return float64(stats.ActiveSeatCount())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "hotseat_sessions_total",
		Help: "Retained sessions across all seats in the live view",
	}, func() float64 {
		return float64(stats.TotalSessionCount())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "hotseat_synthetic_active",
		Help: "Whether the synthetic generator is currently producing data",
	}, func() float64 {
		if stats.SyntheticActive() {
			return 1
		}
		return 0
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncEventsIngested(_ string)                       {}
func (n *noopMetrics) IncEventsDropped(_ string)                        {}
func (n *noopMetrics) IncStoreFailures(_ string)                        {}
func (n *noopMetrics) SetConnectionUp(_ string, _ bool)                 {}
