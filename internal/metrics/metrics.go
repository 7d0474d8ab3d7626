package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// ledger
	TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transactions_total",
			Help: "Total committed transactions",
		},
		[]string{"kind"}, // Withdraw|Deposit|Transfer|LoanRepayment
	)
	TransactionsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transactions_failed_total",
			Help: "Total rejected or failed transactions",
		},
		[]string{"reason"},
	)

	// audit worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal)
		prometheus.MustRegister(TransactionsTotal)
		prometheus.MustRegister(TransactionsFailed)
		prometheus.MustRegister(WorkerQueueDepth)
	})
}
