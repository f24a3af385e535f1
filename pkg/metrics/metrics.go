package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Ledger metrics
	TransactionsAppended prometheus.Counter
	BlocksMined          prometheus.Counter
	PendingPoolSize      prometheus.Gauge
	MiningLatency        prometheus.Histogram

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
}

// NewMetrics registers all metrics against reg. Tests pass a fresh
// registry so repeated construction never double-registers.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransactionsAppended: factory.NewCounter(prometheus.CounterOpts{
			Name: "medchain_ledger_transactions_appended_total",
			Help: "Total transactions appended to the pending pool",
		}),
		BlocksMined: factory.NewCounter(prometheus.CounterOpts{
			Name: "medchain_ledger_blocks_mined_total",
			Help: "Total blocks sealed",
		}),
		PendingPoolSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "medchain_ledger_pending_pool_size",
			Help: "Transactions currently waiting to be sealed",
		}),
		MiningLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "medchain_ledger_mining_duration_seconds",
			Help:    "Time spent sealing a block",
			Buckets: prometheus.DefBuckets,
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medchain_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		RequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medchain_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}
