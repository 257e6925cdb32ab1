package service

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks render and history activity.
type Metrics struct {
	RenderRequests prometheus.Counter
	RenderFailures prometheus.Counter
	RenderStale    prometheus.Counter
	RenderDuration prometheus.Histogram
	HistoryPushes  prometheus.Counter
}

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// NewMetrics returns the process-wide metrics, registering them on first use.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			RenderRequests: promauto.NewCounter(prometheus.CounterOpts{
				Name: "studio_render_requests_total",
				Help: "Total number of render requests issued",
			}),
			RenderFailures: promauto.NewCounter(prometheus.CounterOpts{
				Name: "studio_render_failures_total",
				Help: "Total number of renders rejected by the engine",
			}),
			RenderStale: promauto.NewCounter(prometheus.CounterOpts{
				Name: "studio_render_stale_total",
				Help: "Total number of render completions discarded as superseded",
			}),
			RenderDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "studio_render_duration_seconds",
				Help:    "Time spent waiting on the rendering engine",
				Buckets: prometheus.DefBuckets,
			}),
			HistoryPushes: promauto.NewCounter(prometheus.CounterOpts{
				Name: "studio_history_pushes_total",
				Help: "Total number of history snapshots recorded",
			}),
		}
	})
	return metricsInstance
}

func (m *Metrics) recordRequest() {
	if m == nil || m.RenderRequests == nil {
		return
	}
	m.RenderRequests.Inc()
}

func (m *Metrics) recordRender(d time.Duration, err error) {
	if m == nil {
		return
	}
	if m.RenderDuration != nil {
		m.RenderDuration.Observe(d.Seconds())
	}
	if err != nil && m.RenderFailures != nil {
		m.RenderFailures.Inc()
	}
}

func (m *Metrics) recordStale() {
	if m == nil || m.RenderStale == nil {
		return
	}
	m.RenderStale.Inc()
}

func (m *Metrics) recordHistoryPush() {
	if m == nil || m.HistoryPushes == nil {
		return
	}
	m.HistoryPushes.Inc()
}
