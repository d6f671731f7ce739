package providers

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"hotseatd/internal/structures"
)

// --- minimal mock for ViewStats ---

type metricsTestStats struct{}

func (m *metricsTestStats) ActiveSeatCount() int   { return 2 }
func (m *metricsTestStats) TotalSessionCount() int { return 7 }
func (m *metricsTestStats) SyntheticActive() bool  { return false }

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf, &metricsTestStats{})
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	// Ensure no-op methods don't panic
	m.IncRequestsTotal("/seats", 200)
	m.ObserveRequestDuration("/seats", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncEventsIngested("broker")
	m.IncEventsDropped("broker")
	m.IncStoreFailures("count_merge")
	m.SetConnectionUp("broker", true)
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	defer func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	}()

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf, &metricsTestStats{})
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_IncrementCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	defer func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	}()

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf, &metricsTestStats{})

	// These should not panic
	m.IncRequestsTotal("/seats", 200)
	m.IncRequestsTotal("/seats", 404)
	m.ObserveRequestDuration("/seats", 5*time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncEventsIngested("broker")
	m.IncEventsDropped("feed")
	m.IncStoreFailures("session_merge")
	m.SetConnectionUp("feed", false)
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
