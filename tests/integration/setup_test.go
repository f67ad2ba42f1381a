package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rs/zerolog"

	adaptershttp "github.com/sgcerp/tajbilling/internal/adapter/http"
	"github.com/sgcerp/tajbilling/internal/adapter/http/handler"
	"github.com/sgcerp/tajbilling/internal/adapter/repository/postgres"
	redisrepo "github.com/sgcerp/tajbilling/internal/adapter/repository/redis"
	infraredis "github.com/sgcerp/tajbilling/internal/infrastructure/redis"
	"github.com/sgcerp/tajbilling/internal/usecase"
	"github.com/sgcerp/tajbilling/tests/testutil"
)

const testActor = "integration"

// newTestRouter wires the full HTTP stack against the test database and a
// real Redis instance, the same graph the server binary builds.
func newTestRouter(t *testing.T, testDB *testutil.TestDB) http.Handler {
	t.Helper()

	ctx := context.Background()
	pool := testDB.Pool

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	txManager := postgres.NewTxManager(pool)
	propertyRepo := postgres.NewPropertyRepository(pool)
	residentRepo := postgres.NewResidentRepository(pool)
	txnRepo := postgres.NewTransactionRepository(pool)
	camRepo := postgres.NewCAMChargeRepository(pool)
	billRepo := postgres.NewElectricityBillRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	receiptRepo := postgres.NewReceiptRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	seqGen := postgres.NewSequenceRepository(pool, zerolog.Nop())
	idGen := postgres.NewULIDGenerator()
	tariffRepo := postgres.NewTariffRepository(pool)
	retrier := postgres.NewRetrier(zerolog.Nop())

	tariffUC := usecase.NewTariffUseCase(tariffRepo, auditRepo, idGen)
	invoiceUC := usecase.NewInvoiceUseCase(txManager, invoiceRepo, propertyRepo, seqGen, outboxRepo, auditRepo, idGen, 0, 15).WithRetrier(retrier)
	arrears := usecase.NewArrearsResolver(invoiceRepo)
	camUC := usecase.NewCAMChargeUseCase(camRepo, propertyRepo, tariffUC, arrears, invoiceUC, seqGen, auditRepo, idGen, 50, 4, zerolog.Nop())
	electricityUC := usecase.NewElectricityUseCase(billRepo, propertyRepo, tariffUC, arrears, invoiceUC, seqGen, auditRepo, idGen, 50, 4, zerolog.Nop())
	receiptUC := usecase.NewReceiptUseCase(txManager, receiptRepo, invoiceRepo, seqGen, outboxRepo, auditRepo, idGen, 0).WithRetrier(retrier)
	ledgerUC := usecase.NewLedgerUseCase(txManager, residentRepo, txnRepo, invoiceRepo, outboxRepo, auditRepo, idGen, 0).WithRetrier(retrier)
	propertyUC := usecase.NewPropertyUseCase(propertyRepo, seqGen, auditRepo, idGen)
	residentUC := usecase.NewResidentUseCase(txManager, residentRepo, propertyRepo, seqGen, auditRepo, idGen)
	reconUC := usecase.NewReconciliationUseCase(residentRepo, txnRepo, invoiceRepo, propertyRepo, 0)

	return adaptershttp.NewRouter(adaptershttp.RouterConfig{
		PropertyHandler:       handler.NewPropertyHandler(propertyUC),
		ResidentHandler:       handler.NewResidentHandler(residentUC),
		TariffHandler:         handler.NewTariffHandler(tariffUC),
		CAMChargeHandler:      handler.NewCAMChargeHandler(camUC),
		ElectricityHandler:    handler.NewElectricityHandler(electricityUC),
		InvoiceHandler:        handler.NewInvoiceHandler(invoiceUC),
		ReceiptHandler:        handler.NewReceiptHandler(receiptUC),
		LedgerHandler:         handler.NewLedgerHandler(ledgerUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:      redisrepo.NewIdempotencyStore(redisClient),
		Logger:                zerolog.Nop(),
	})
}

// doJSON sends a request through the router with the test actor header and
// an optional JSON body.
func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-Actor-ID", testActor)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

// decode parses a JSON response body into out.
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
	}
}
