package prom

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the request and generation counters updated by the HTTP
// layer and the categorization engine.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Generations     *prometheus.CounterVec
	RowOutcomes     *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Count of HTTP requests",
			},
			[]string{"handler", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"handler"},
		),
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "llm",
				Name:      "generations_total",
				Help:      "Count of generation calls",
			},
			[]string{"provider", "outcome"},
		),
		RowOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rows",
				Name:      "outcomes_total",
				Help:      "Row categorization outcomes",
			},
			[]string{"status"},
		),
	}
}

// Register attaches every collector to the registry.
func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(m.Requests, m.RequestDuration, m.Generations, m.RowOutcomes)
}
