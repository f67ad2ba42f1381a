package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/sgcerp/tajbilling/internal/adapter/http/handler"
	apimiddleware "github.com/sgcerp/tajbilling/internal/adapter/http/middleware"
	"github.com/sgcerp/tajbilling/internal/usecase"
	"github.com/sgcerp/tajbilling/internal/usecase/mocks"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimit = 1
		cfg.RateBurst = 1
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"name":"House 12","area_value":"4","area_unit":"Marla"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	req.Header.Set(apimiddleware.ActorHeader, "admin")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/properties/",
		"DELETE /api/v1/properties/{id}",
		"GET /api/v1/properties/{id}/invoices",
		"POST /api/v1/residents/",
		"POST /api/v1/residents/{id}/deposits",
		"POST /api/v1/residents/{id}/payments",
		"POST /api/v1/residents/{id}/transfers",
		"POST /api/v1/tariffs/",
		"POST /api/v1/cam-charges/bulk",
		"POST /api/v1/electricity-bills/preview",
		"POST /api/v1/invoices/sweep",
		"POST /api/v1/receipts/{id}/void",
		"GET /api/v1/reconciliation/report",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	propertyRepo := mocks.NewMockPropertyRepository()
	residentRepo := mocks.NewMockResidentRepository()
	txnRepo := mocks.NewMockTransactionRepository()
	tariffRepo := mocks.NewMockTariffRepository()
	camRepo := mocks.NewMockCAMChargeRepository()
	billRepo := mocks.NewMockElectricityBillRepository()
	invoiceRepo := mocks.NewMockInvoiceRepository()
	receiptRepo := mocks.NewMockReceiptRepository()
	outboxRepo := mocks.NewMockOutboxRepository()
	auditRepo := mocks.NewMockAuditRepository()
	seqGen := mocks.NewMockSequenceGenerator()
	txManager := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()

	tariffUC := usecase.NewTariffUseCase(tariffRepo, auditRepo, idGen)
	invoiceUC := usecase.NewInvoiceUseCase(txManager, invoiceRepo, propertyRepo, seqGen, outboxRepo, auditRepo, idGen, 0, 15)
	arrears := usecase.NewArrearsResolver(invoiceRepo)
	camUC := usecase.NewCAMChargeUseCase(camRepo, propertyRepo, tariffUC, arrears, invoiceUC, seqGen, auditRepo, idGen, 50, 4, zerolog.Nop())
	electricityUC := usecase.NewElectricityUseCase(billRepo, propertyRepo, tariffUC, arrears, invoiceUC, seqGen, auditRepo, idGen, 50, 4, zerolog.Nop())
	receiptUC := usecase.NewReceiptUseCase(txManager, receiptRepo, invoiceRepo, seqGen, outboxRepo, auditRepo, idGen, 0)
	ledgerUC := usecase.NewLedgerUseCase(txManager, residentRepo, txnRepo, invoiceRepo, outboxRepo, auditRepo, idGen, 0)
	propertyUC := usecase.NewPropertyUseCase(propertyRepo, seqGen, auditRepo, idGen)
	residentUC := usecase.NewResidentUseCase(txManager, residentRepo, propertyRepo, seqGen, auditRepo, idGen)
	reconUC := usecase.NewReconciliationUseCase(residentRepo, txnRepo, invoiceRepo, propertyRepo, 0)

	cfg := RouterConfig{
		PropertyHandler:       handler.NewPropertyHandler(propertyUC),
		ResidentHandler:       handler.NewResidentHandler(residentUC),
		TariffHandler:         handler.NewTariffHandler(tariffUC),
		CAMChargeHandler:      handler.NewCAMChargeHandler(camUC),
		ElectricityHandler:    handler.NewElectricityHandler(electricityUC),
		InvoiceHandler:        handler.NewInvoiceHandler(invoiceUC),
		ReceiptHandler:        handler.NewReceiptHandler(receiptUC),
		LedgerHandler:         handler.NewLedgerHandler(ledgerUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconUC),
		HealthHandler:         &handler.HealthHandler{},
		Logger:                zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
