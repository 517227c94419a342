package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clickmapper/clickmapper/pkg/overlay"
)

const namespace = "clickmapper"

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Snapshot is a point-in-time copy of the launch counters
type Snapshot struct {
	Renders        int64 `json:"renders"`
	Clicks         int64 `json:"clicks"`
	FailedLaunches int64 `json:"failed_launches"`
}

// LaunchMetrics counts external process launches. It is an overlay.Observer.
type LaunchMetrics struct {
	LaunchesTotal *prometheus.CounterVec
	ClicksTotal   prometheus.Counter

	renders  atomic.Int64
	clicks   atomic.Int64
	failures atomic.Int64
}

// NewLaunchMetrics creates and registers launch metrics on the given registry.
func NewLaunchMetrics(reg prometheus.Registerer) *LaunchMetrics {
	m := &LaunchMetrics{
		LaunchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launcher",
			Name:      "launches_total",
			Help:      "External process launch attempts by kind and result.",
		}, []string{"kind", "result"}),
		ClicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "overlay",
			Name:      "clicks_total",
			Help:      "Button presses handled by the overlay.",
		}),
	}

	reg.MustRegister(m.LaunchesTotal, m.ClicksTotal)
	return m
}

// Launched records one launch attempt. Every sound launch is one click,
// whether or not the process started.
func (m *LaunchMetrics) Launched(kind overlay.LaunchKind, name string, args []string, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
		m.failures.Add(1)
	}
	m.LaunchesTotal.WithLabelValues(string(kind), result).Inc()

	switch kind {
	case overlay.LaunchRender:
		m.renders.Add(1)
	case overlay.LaunchSound:
		m.clicks.Add(1)
		m.ClicksTotal.Inc()
	}
}

// Snapshot returns the current counters. Safe for concurrent use.
func (m *LaunchMetrics) Snapshot() Snapshot {
	return Snapshot{
		Renders:        m.renders.Load(),
		Clicks:         m.clicks.Load(),
		FailedLaunches: m.failures.Load(),
	}
}
