package bifnode

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

// Metrics records node request counts and latency
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	failover *prometheus.CounterVec
}

// NewMetrics creates the node client collectors on reg.
// A nil reg creates collectors that are never registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bifbridge",
				Subsystem: "node",
				Name:      "requests_total",
				Help:      "Node HTTP requests by path and outcome",
			},
			[]string{"path", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bifbridge",
				Subsystem: "node",
				Name:      "request_duration_seconds",
				Help:      "Node HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		failover: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bifbridge",
				Subsystem: "node",
				Name:      "failovers_total",
				Help:      "Requests retried against the next endpoint",
			},
			[]string{"path"},
		),
	}
}

func (m *Metrics) observe(path string, seconds float64, err error) {
	if m == nil {
		return
	}
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	m.requests.WithLabelValues(path, outcome).Inc()
	m.duration.WithLabelValues(path).Observe(seconds)
}

func (m *Metrics) failedOver(path string) {
	if m == nil {
		return
	}
	m.failover.WithLabelValues(path).Inc()
}
