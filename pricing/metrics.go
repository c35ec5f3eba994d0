package pricing

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements prometheus.Collector for resolver activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	fallbacks    *prometheus.CounterVec
	bestLTRPrice *prometheus.GaugeVec
	resolutions  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "azure_pricing",
			Subsystem: "sql_backup",
			Name:      "fallbacks_total",
			Help:      "Lookups answered by a fallback source, by operation and stage.",
		}, []string{"operation", "stage"}),
		bestLTRPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "azure_pricing",
			Subsystem: "sql_backup",
			Name:      "best_ltr_price",
			Help:      "Last resolved LTR backup storage price per GB/month.",
		}, []string{"region"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "azure_pricing",
			Subsystem: "sql_backup",
			Name:      "resolutions_total",
			Help:      "Pricing lookups served, by operation.",
		}, []string{"operation"}),
	}
}

// Describe outputs metric descriptions.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.fallbacks.Describe(ch)
	m.bestLTRPrice.Describe(ch)
	m.resolutions.Describe(ch)
}

// Collect outputs the current metric values.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.fallbacks.Collect(ch)
	m.bestLTRPrice.Collect(ch)
	m.resolutions.Collect(ch)
}

func (m *Metrics) fallbackUsed(operation, stage string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(operation, stage).Inc()
}

func (m *Metrics) resolved(operation string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(operation).Inc()
}

func (m *Metrics) setBestLTRPrice(region string, price float64) {
	if m == nil {
		return
	}
	m.bestLTRPrice.WithLabelValues(region).Set(price)
}
