package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the import pipeline's Prometheus metrics, incremented at
// the HTTP handler layer. Transport-level metrics (request counts, rate
// limit hits) live as package vars next to the middleware that records
// them; the audit counter lives with the audit repository.
type Metrics struct {
	BatchesStarted      prometheus.Counter
	BatchesCompleted    *prometheus.CounterVec
	BatchesUndone       prometheus.Counter
	ImportDuration      prometheus.Histogram
	TransactionsByType  *prometheus.CounterVec
	RowsSkipped         *prometheus.CounterVec
	RowErrors           prometheus.Counter
	InvoicesMarkedPaid  prometheus.Counter
	InvoicesAutoCreated prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		BatchesStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankrec_import_batches_started_total",
			Help: "Total number of import batches started",
		}),
		BatchesCompleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrec_import_batches_finished_total",
				Help: "Total number of import batches finished by status",
			},
			[]string{"status"},
		),
		BatchesUndone: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankrec_import_batches_undone_total",
			Help: "Total number of import batches undone",
		}),
		ImportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankrec_import_duration_seconds",
			Help:    "Duration of statement imports",
			Buckets: prometheus.DefBuckets,
		}),
		TransactionsByType: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrec_transactions_total",
				Help: "Total imported transactions by classified type",
			},
			[]string{"type"},
		),
		RowsSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankrec_rows_skipped_total",
				Help: "Total skipped statement rows by reason",
			},
			[]string{"reason"},
		),
		RowErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankrec_row_errors_total",
			Help: "Total row-level errors during imports",
		}),
		InvoicesMarkedPaid: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankrec_invoices_marked_paid_total",
			Help: "Total invoices settled by matched income",
		}),
		InvoicesAutoCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankrec_invoices_auto_created_total",
			Help: "Total invoices auto-created for unmatched income",
		}),
	}
}
