package acp

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// clientMetrics records one observation per client call.
type clientMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) *clientMetrics {
	m := &clientMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "acp",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of ACP API calls by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "acp",
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "ACP API call duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
	}
	m.requestsTotal = registerOrReuse(reg, m.requestsTotal)
	m.requestDuration = registerOrReuse(reg, m.requestDuration)
	return m
}

// registerOrReuse lets several clients share one registry.
func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// observe records a call. status is the HTTP status code, or "error" when no
// response was received.
func (m *clientMetrics) observe(operation string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requestsTotal.WithLabelValues(operation, label).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
