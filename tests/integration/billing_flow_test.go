package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/adapter/http/dto"
	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/tests/testutil"
)

func TestCAMBillingFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	router := newTestRouter(t, testDB)

	testDB.ActivateTestTariff(ctx, decimal.NewFromInt(1500), decimal.RequireFromString("22.5"))
	resident := testDB.CreateTestResident(ctx, "Asad Khan", decimal.Zero)
	property := testDB.CreateTestProperty(ctx, "House 12", "Asad Khan", 4, &resident.ID, "MTR-100")

	// Bill future periods so due dates have not passed and no late
	// surcharge creeps into the expected totals.
	year := time.Now().Year() + 1

	var charge dto.CAMChargeResponse

	t.Run("create CAM charge resolves slab amount", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/cam-charges/", dto.CreateCAMChargeRequest{
			PropertyID: property.ID,
			Year:       year,
			Month:      1,
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}
		decode(t, w, &charge)

		if !charge.Amount.Equal(decimal.NewFromInt(1500)) {
			t.Errorf("expected slab amount 1500, got %v", charge.Amount)
		}
		if charge.BillNumber == "" {
			t.Error("expected a bill number to be assigned")
		}
		if !charge.Arrears.IsZero() {
			t.Errorf("expected no arrears for a first bill, got %v", charge.Arrears)
		}
	})

	t.Run("duplicate charge for same month is rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/cam-charges/", dto.CreateCAMChargeRequest{
			PropertyID: property.ID,
			Year:       year,
			Month:      1,
		})

		if w.Code != http.StatusConflict {
			t.Errorf("expected status %d, got %d: %s", http.StatusConflict, w.Code, w.Body.String())
		}
	})

	var invoice dto.InvoiceResponse

	t.Run("charge lands on the property invoice", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/properties/"+property.ID+"/invoices", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.ListInvoicesResponse
		decode(t, w, &resp)
		if len(resp.Invoices) != 1 {
			t.Fatalf("expected 1 invoice, got %d", len(resp.Invoices))
		}
		invoice = *resp.Invoices[0]

		if len(invoice.Charges) != 1 || invoice.Charges[0].Type != domain.ChargeTypeCAM {
			t.Fatalf("expected one cam charge line, got %+v", invoice.Charges)
		}
		if invoice.Charges[0].SourceID != charge.ID {
			t.Errorf("expected charge line to reference the cam charge, got %q", invoice.Charges[0].SourceID)
		}
		if !invoice.GrandTotal.Equal(decimal.NewFromInt(1500)) {
			t.Errorf("expected grand total 1500, got %v", invoice.GrandTotal)
		}
		if invoice.PaymentStatus != domain.BillStatusUnpaid {
			t.Errorf("expected unpaid invoice, got %q", invoice.PaymentStatus)
		}
	})

	t.Run("partial payment moves invoice to partial_paid", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/invoices/"+invoice.ID+"/payments", dto.RecordPaymentRequest{
			Amount: decimal.NewFromInt(500),
			Method: domain.PaymentMethodCash,
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}

		var resp dto.InvoiceResponse
		decode(t, w, &resp)
		if resp.PaymentStatus != domain.BillStatusPartialPaid {
			t.Errorf("expected partial_paid, got %q", resp.PaymentStatus)
		}
		if !resp.Balance.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("expected balance 1000, got %v", resp.Balance)
		}
	})

	t.Run("settling the balance marks the invoice paid", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/invoices/"+invoice.ID+"/payments", dto.RecordPaymentRequest{
			Amount: decimal.NewFromInt(1000),
			Method: domain.PaymentMethodCash,
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}

		var resp dto.InvoiceResponse
		decode(t, w, &resp)
		if resp.PaymentStatus != domain.BillStatusPaid {
			t.Errorf("expected paid, got %q", resp.PaymentStatus)
		}
		if !resp.Balance.IsZero() {
			t.Errorf("expected zero balance, got %v", resp.Balance)
		}
		if len(resp.Payments) != 2 {
			t.Errorf("expected 2 payment entries, got %d", len(resp.Payments))
		}
	})

	t.Run("paying past the balance is rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/invoices/"+invoice.ID+"/payments", dto.RecordPaymentRequest{
			Amount: decimal.NewFromInt(100),
		})

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status %d, got %d: %s", http.StatusUnprocessableEntity, w.Code, w.Body.String())
		}
	})

	t.Run("next month carries unpaid arrears", func(t *testing.T) {
		// Issue February unpaid, then March: March's CAM charge should carry
		// February's 1500 as arrears (January is settled).
		w := doJSON(t, router, http.MethodPost, "/api/v1/cam-charges/", dto.CreateCAMChargeRequest{
			PropertyID: property.ID,
			Year:       year,
			Month:      2,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}

		w = doJSON(t, router, http.MethodPost, "/api/v1/cam-charges/", dto.CreateCAMChargeRequest{
			PropertyID: property.ID,
			Year:       year,
			Month:      3,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}

		var march dto.CAMChargeResponse
		decode(t, w, &march)
		if !march.Arrears.Equal(decimal.NewFromInt(1500)) {
			t.Errorf("expected arrears 1500 from February, got %v", march.Arrears)
		}
		if !march.Total.Equal(decimal.NewFromInt(3000)) {
			t.Errorf("expected total 3000, got %v", march.Total)
		}
	})
}
