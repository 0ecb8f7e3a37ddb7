// Package monitoring exposes Prometheus counters for the batch operations
// an operator would otherwise only see in logs.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the dashboard backend.
type Metrics struct {
	ProbesTotal   *prometheus.CounterVec
	RewritesTotal prometheus.Counter
	ExportsTotal  *prometheus.CounterVec
	ErrorsTotal   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		ProbesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "becamap_url_probes_total",
			Help: "URL verification probes by outcome",
		}, []string{"outcome"}), // 'working', 'broken'
		RewritesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "becamap_bulk_rewrites_total",
			Help: "Records mutated by bulk URL rewrites",
		}),
		ExportsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "becamap_exports_total",
			Help: "Export downloads by format",
		}, []string{"format"}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "becamap_errors_total",
			Help: "Errors encountered by type",
		}, []string{"type"}), // e.g. 'verify_failed', 'audit_insert_failed'
	}
}

func (m *Metrics) IncProbes(outcome string, n int) {
	m.ProbesTotal.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) AddRewrites(n int64) {
	m.RewritesTotal.Add(float64(n))
}

func (m *Metrics) IncExports(format string) {
	m.ExportsTotal.WithLabelValues(format).Inc()
}

func (m *Metrics) IncErrors(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
