package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for a replay run.
type Metrics struct {
	TransactionsApplied  *prometheus.CounterVec
	TransactionsRejected *prometheus.CounterVec
	RecordsRead          prometheus.Counter
	ClientsTracked       prometheus.Gauge
	ReplayDuration       prometheus.Histogram
}

// NewMetrics creates and registers all metrics on the default registry.
// Call at most once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		TransactionsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "txreplay_transactions_applied_total",
			Help: "Transactions successfully applied",
		}, []string{"kind"}),

		TransactionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "txreplay_transactions_rejected_total",
			Help: "Transactions rejected by a guard check",
		}, []string{"kind", "reason"}),

		RecordsRead: promauto.NewCounter(prometheus.CounterOpts{
			Name: "txreplay_records_read_total",
			Help: "Input records decoded from the transaction log",
		}),

		ClientsTracked: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "txreplay_clients_tracked",
			Help: "Distinct clients seen during the replay",
		}),

		ReplayDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "txreplay_replay_duration_seconds",
			Help:    "End-to-end replay time",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
		}),
	}
}
