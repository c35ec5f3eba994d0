package azure

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess        = "success"
	outcomeHTTPError      = "http_error"
	outcomeTransportError = "transport_error"
	outcomeDecodeError    = "decode_error"
)

// Metrics records upstream request outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "azure_pricing",
			Subsystem: "sql_backup",
			Name:      "upstream_requests_total",
			Help:      "Requests sent to the Azure Retail Prices API, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "azure_pricing",
			Subsystem: "sql_backup",
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of requests to the Azure Retail Prices API.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Describe outputs metric descriptions.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.requests.Describe(ch)
	m.duration.Describe(ch)
}

// Collect outputs the current metric values.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.requests.Collect(ch)
	m.duration.Collect(ch)
}

func (m *Metrics) observeRequest(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
}
