package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sorabot"

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

// Metrics holds the bot's counters. A nil *Metrics is valid and records nothing,
// so components can be constructed without a registry in tests.
type Metrics struct {
	StarboardEvents *prometheus.CounterVec
	StarboardPosts  *prometheus.CounterVec
	CacheRequests   *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StarboardEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "starboard_events_total",
				Help:      "Starboard gateway events by event type and outcome",
			},
			[]string{"event", "outcome"},
		),
		StarboardPosts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "starboard_posts_total",
				Help:      "Starboard channel mutations by action",
			},
			[]string{"action"},
		),
		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_requests_total",
				Help:      "Cache lookups by key namespace and result",
			},
			[]string{"namespace", "result"},
		),
	}

	reg.MustRegister(m.StarboardEvents, m.StarboardPosts, m.CacheRequests)
	return m
}

const (
	PostActionPosted  = "posted"
	PostActionUpdated = "updated"
	PostActionRemoved = "removed"
	PostActionPurged  = "purged"
)

func (m *Metrics) StarboardEvent(event, outcome string) {
	if m == nil {
		return
	}
	m.StarboardEvents.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) StarboardPost(action string) {
	if m == nil {
		return
	}
	m.StarboardPosts.WithLabelValues(action).Inc()
}

func (m *Metrics) CacheRequest(namespace string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequests.WithLabelValues(namespace, result).Inc()
}
