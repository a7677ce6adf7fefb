package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMirror exposes the same measurements as Snapshot, in
// Prometheus exposition format, for scrape-based dashboards and
// alerting alongside the JSON /stats family.
type PrometheusMirror struct {
	requestsTotal      prometheus.Counter
	cacheHitsTotal     prometheus.Counter
	cacheWritesTotal   prometheus.Counter
	upstreamCallsTotal prometheus.Counter
	errorsTotal        prometheus.Counter
	inFlight           prometheus.Gauge
	responseTime       prometheus.Histogram
}

// NewPrometheusMirror registers the gateway's metrics against reg.
func NewPrometheusMirror(reg prometheus.Registerer) *PrometheusMirror {
	factory := promauto.With(reg)
	return &PrometheusMirror{
		requestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "weatherproxy_requests_total",
			Help: "Total GetWeather invocations.",
		}),
		cacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "weatherproxy_cache_hits_total",
			Help: "Total Result Cache hits.",
		}),
		cacheWritesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "weatherproxy_cache_writes_total",
			Help: "Total Result Cache writes.",
		}),
		upstreamCallsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "weatherproxy_upstream_calls_total",
			Help: "Total upstream HTTP attempts across all credentials.",
		}),
		errorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "weatherproxy_errors_total",
			Help: "Total logical requests that ended in an error.",
		}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "weatherproxy_inflight_fingerprints",
			Help: "Number of fingerprints currently coalescing an upstream fetch.",
		}),
		responseTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "weatherproxy_response_time_ms",
			Help:    "GetWeather response time in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
	}
}

// Observe mirrors one completed request's outcome into the Prometheus
// collectors. Call alongside the corresponding Telemetry updates.
func (m *PrometheusMirror) Observe(cacheHit, cacheWrite bool, upstreamCalls int, errored bool, responseTimeMs int64) {
	m.requestsTotal.Inc()
	if cacheHit {
		m.cacheHitsTotal.Inc()
	}
	if cacheWrite {
		m.cacheWritesTotal.Inc()
	}
	m.upstreamCallsTotal.Add(float64(upstreamCalls))
	if errored {
		m.errorsTotal.Inc()
	}
	m.responseTime.Observe(float64(responseTimeMs))
}

// SetInFlight mirrors the Coalescer's current in-flight fingerprint
// count into the Prometheus gauge.
func (m *PrometheusMirror) SetInFlight(n int64) { m.inFlight.Set(float64(n)) }

// Handler serves /metrics in Prometheus text exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
