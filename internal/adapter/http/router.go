package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sgcerp/tajbilling/internal/adapter/http/handler"
	"github.com/sgcerp/tajbilling/internal/adapter/http/middleware"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PropertyHandler       *handler.PropertyHandler
	ResidentHandler       *handler.ResidentHandler
	TariffHandler         *handler.TariffHandler
	CAMChargeHandler      *handler.CAMChargeHandler
	ElectricityHandler    *handler.ElectricityHandler
	InvoiceHandler        *handler.InvoiceHandler
	ReceiptHandler        *handler.ReceiptHandler
	LedgerHandler         *handler.LedgerHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler
	IdempotencyStore      usecase.IdempotencyStore
	Logger                zerolog.Logger
	RateLimit             float64
	RateBurst             int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)
	r.Use(middleware.Actor)
	if cfg.RateLimit > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst).Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Properties
		r.Route("/properties", func(r chi.Router) {
			r.Post("/", cfg.PropertyHandler.Create)
			r.Get("/", cfg.PropertyHandler.List)
			r.Get("/{id}", cfg.PropertyHandler.Get)
			r.Put("/{id}", cfg.PropertyHandler.Update)
			r.Delete("/{id}", cfg.PropertyHandler.Deactivate)
			r.Get("/{id}/invoices", cfg.InvoiceHandler.ListByProperty)
		})

		// Residents and their ledgers
		r.Route("/residents", func(r chi.Router) {
			r.Post("/", cfg.ResidentHandler.Create)
			r.Get("/", cfg.ResidentHandler.List)
			r.Get("/{id}", cfg.ResidentHandler.Get)
			r.Put("/{id}", cfg.ResidentHandler.Update)
			r.Delete("/{id}", cfg.ResidentHandler.Deactivate)
			r.Get("/{id}/transactions", cfg.LedgerHandler.ListTransactions)
			r.Post("/{id}/deposits", cfg.LedgerHandler.Deposit)
			r.Get("/{id}/deposits", cfg.LedgerHandler.ListDeposits)
			r.Put("/{id}/deposits/{txnID}", cfg.LedgerHandler.UpdateDeposit)
			r.Delete("/{id}/deposits/{txnID}", cfg.LedgerHandler.DeleteDeposit)
			r.Post("/{id}/payments", cfg.LedgerHandler.Pay)
			r.Post("/{id}/transfers", cfg.LedgerHandler.Transfer)
		})

		// Suspense deposits
		r.Post("/deposits/{id}/transfer", cfg.LedgerHandler.TransferSuspense)

		// Tariffs
		r.Route("/tariffs", func(r chi.Router) {
			r.Post("/", cfg.TariffHandler.Activate)
			r.Get("/", cfg.TariffHandler.List)
			r.Get("/active", cfg.TariffHandler.Active)
		})

		// CAM charges
		r.Route("/cam-charges", func(r chi.Router) {
			r.Post("/", cfg.CAMChargeHandler.Create)
			r.Get("/", cfg.CAMChargeHandler.List)
			r.Post("/bulk", cfg.CAMChargeHandler.BulkGenerate)
			r.Get("/{id}", cfg.CAMChargeHandler.Get)
			r.Put("/{id}", cfg.CAMChargeHandler.UpdateAmount)
			r.Delete("/{id}", cfg.CAMChargeHandler.Delete)
		})

		// Electricity bills
		r.Route("/electricity-bills", func(r chi.Router) {
			r.Post("/", cfg.ElectricityHandler.Create)
			r.Get("/", cfg.ElectricityHandler.List)
			r.Post("/preview", cfg.ElectricityHandler.Preview)
			r.Post("/bulk", cfg.ElectricityHandler.BulkGenerate)
			r.Get("/{id}", cfg.ElectricityHandler.Get)
			r.Put("/{id}", cfg.ElectricityHandler.Correct)
			r.Delete("/{id}", cfg.ElectricityHandler.Delete)
		})

		// Invoices
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", cfg.InvoiceHandler.List)
			r.Post("/charges", cfg.InvoiceHandler.UpsertCharge)
			r.Delete("/charges", cfg.InvoiceHandler.RemoveCharge)
			r.Post("/sweep", cfg.InvoiceHandler.Sweep)
			r.Get("/{id}", cfg.InvoiceHandler.Get)
			r.Post("/{id}/payments", cfg.InvoiceHandler.RecordPayment)
			r.Post("/{id}/cancel", cfg.InvoiceHandler.Cancel)
			r.Delete("/{id}", cfg.LedgerHandler.DeleteInvoice)
		})

		// Receipts
		r.Route("/receipts", func(r chi.Router) {
			r.Post("/", cfg.ReceiptHandler.Post)
			r.Get("/", cfg.ReceiptHandler.List)
			r.Get("/{id}", cfg.ReceiptHandler.Get)
			r.Post("/{id}/void", cfg.ReceiptHandler.Void)
		})

		// Reconciliation
		r.Route("/reconciliation", func(r chi.Router) {
			r.Get("/report", cfg.ReconciliationHandler.Report)
			r.Get("/owner-matches", cfg.ReconciliationHandler.OwnerMatches)
			r.Get("/residents/{id}", cfg.ReconciliationHandler.Resident)
		})
	})

	return r
}
