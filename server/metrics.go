package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for auth operation metrics.
const (
	OutcomeSuccess      = "success"
	OutcomeChallenge    = "challenge"
	OutcomeClientError  = "client_error"
	OutcomeUnauthorized = "unauthorized"
	OutcomeServerError  = "server_error"
)

// Metrics holds the service's Prometheus collectors and the registry they
// are exposed from.
type Metrics struct {
	registry      *prometheus.Registry
	RequestsTotal *prometheus.CounterVec
	AuthOutcomes  *prometheus.CounterVec
	RateLimited   *prometheus.CounterVec
}

// NewMetrics creates a registry with the Go and process collectors and the
// service counters registered on it.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		AuthOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_operations_total",
				Help: "Total number of auth operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		RateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.AuthOutcomes)
	reg.MustRegister(m.RateLimited)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordRequest(route string, status int) {
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) RecordOutcome(operation, outcome string) {
	m.AuthOutcomes.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) RecordRateLimited(route string) {
	m.RateLimited.WithLabelValues(route).Inc()
}

// outcomeForStatus buckets an error response status.
func outcomeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return OutcomeUnauthorized
	case status >= http.StatusInternalServerError:
		return OutcomeServerError
	default:
		return OutcomeClientError
	}
}
