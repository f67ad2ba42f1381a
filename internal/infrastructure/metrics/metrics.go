package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Billing metrics
	CAMChargesCreated       prometheus.Counter
	ElectricityBillsCreated prometheus.Counter
	InvoicesIssued          prometheus.Counter
	InvoicesCancelled       prometheus.Counter
	BulkRunItems            *prometheus.CounterVec
	BulkRunDuration         prometheus.Histogram
	BillingErrors           *prometheus.CounterVec

	// Payment metrics
	ReceiptsPosted  prometheus.Counter
	ReceiptsVoided  prometheus.Counter
	PaymentAmount   prometheus.Histogram
	PaymentDuration prometheus.Histogram

	// Ledger metrics
	DepositsRecorded   prometheus.Counter
	TransfersCompleted prometheus.Counter
	LedgerOperations   *prometheus.CounterVec

	// Reconciliation metrics
	ReconciliationFaults *prometheus.CounterVec
	ReconciliationRuns   prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisDuration   *prometheus.HistogramVec
	RedisErrors     *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Billing metrics
		CAMChargesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tajbilling_cam_charges_created_total",
			Help: "Total number of CAM charges created",
		}),
		ElectricityBillsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tajbilling_electricity_bills_created_total",
			Help: "Total number of electricity bills created",
		}),
		InvoicesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tajbilling_invoices_issued_total",
			Help: "Total number of invoices issued",
		}),
		InvoicesCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tajbilling_invoices_cancelled_total",
			Help: "Total number of invoices cancelled",
		}),
		BulkRunItems: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tajbilling_bulk_run_items_total",
				Help: "Total bulk billing items by outcome",
			},
			[]string{"stream", "outcome"},
		),
		BulkRunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tajbilling_bulk_run_duration_seconds",
			Help:    "Duration of bulk billing runs",
			Buckets: prometheus.DefBuckets,
		}),
		BillingErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tajbilling_billing_errors_total",
				Help: "Total number of billing errors by type",
			},
			[]string{"error_type"},
		),

		// Payment metrics
		ReceiptsPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tajbilling_receipts_posted_total",
			Help: "Total number of receipts posted",
		}),
		ReceiptsVoided: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tajbilling_receipts_voided_total",
			Help: "Total number of receipts voided",
		}),
		PaymentAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tajbilling_payment_amount",
			Help:    "Payment amounts",
			Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 1000000},
		}),
		PaymentDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tajbilling_payment_duration_seconds",
			Help:    "Duration of payment operations",
			Buckets: prometheus.DefBuckets,
		}),

		// Ledger metrics
		DepositsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tajbilling_deposits_recorded_total",
			Help: "Total number of deposits recorded",
		}),
		TransfersCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tajbilling_transfers_completed_total",
			Help: "Total number of balance transfers completed",
		}),
		LedgerOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tajbilling_ledger_operations_total",
				Help: "Total ledger operations by type",
			},
			[]string{"operation"},
		),

		// Reconciliation metrics
		ReconciliationFaults: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tajbilling_reconciliation_faults_total",
				Help: "Total reconciliation faults by discrepancy type",
			},
			[]string{"discrepancy"},
		),
		ReconciliationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tajbilling_reconciliation_runs_total",
			Help: "Total number of reconciliation runs",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tajbilling_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tajbilling_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tajbilling_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tajbilling_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tajbilling_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tajbilling_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tajbilling_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tajbilling_redis_duration_seconds",
				Help:    "Redis operation duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tajbilling_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tajbilling_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		// Audit metrics
		AuditLogsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tajbilling_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
