package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
	"github.com/sgcerp/tajbilling/internal/usecase/mocks"
)

// pastInvoice builds a May-2025 invoice with the given charge lines, still
// within its payment window so no surcharge applies.
func pastInvoice(id, meterNumber string, lines ...domain.ChargeLine) *domain.Invoice {
	from, to := domain.BillPeriod(2025, time.May)
	inv := &domain.Invoice{
		ID:          id,
		PropertyID:  "prop-1",
		MeterNumber: meterNumber,
		Month:       "May-25",
		PeriodFrom:  from,
		PeriodTo:    to,
		DueDate:     time.Now().UTC().AddDate(0, 0, 15),
		Charges:     lines,
		Status:      domain.InvoiceStatusIssued,
		CreatedBy:   "user-1",
	}
	inv.RecomputeDerived(time.Now().UTC(), 0)
	return inv
}

func TestArrearsResolver_Resolve(t *testing.T) {
	june := date(2025, 6, 1)

	t.Run("sums unpaid balances of the stream", func(t *testing.T) {
		repo := mocks.NewMockInvoiceRepository()
		repo.Create(context.Background(), nil, pastInvoice("inv-1", "",
			domain.ChargeLine{Type: domain.ChargeTypeCAM, Amount: decimal.NewFromInt(1500)}))

		got, err := usecase.NewArrearsResolver(repo).Resolve(context.Background(), "prop-1", domain.ChargeTypeCAM, "", june)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(decimal.NewFromInt(1500)) {
			t.Errorf("expected 1500, got %s", got)
		}
	})

	t.Run("apportions a mixed invoice proportionally", func(t *testing.T) {
		repo := mocks.NewMockInvoiceRepository()
		inv := pastInvoice("inv-1", "",
			domain.ChargeLine{Type: domain.ChargeTypeCAM, Amount: decimal.NewFromInt(600)},
			domain.ChargeLine{Type: domain.ChargeTypeElectricity, Amount: decimal.NewFromInt(400)})
		if err := inv.AddPayment(domain.InvoicePayment{
			ID: "pay-1", Amount: decimal.NewFromInt(500), Date: time.Now().UTC(), RecordedBy: "user-1",
		}); err != nil {
			t.Fatal(err)
		}
		inv.RecomputeDerived(time.Now().UTC(), 0)
		repo.Create(context.Background(), nil, inv)

		resolver := usecase.NewArrearsResolver(repo)

		// Outstanding 500 splits 60/40 across the streams.
		cam, err := resolver.Resolve(context.Background(), "prop-1", domain.ChargeTypeCAM, "", june)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cam.Equal(decimal.NewFromInt(300)) {
			t.Errorf("expected CAM share 300, got %s", cam)
		}
		elec, err := resolver.Resolve(context.Background(), "prop-1", domain.ChargeTypeElectricity, "", june)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !elec.Equal(decimal.NewFromInt(200)) {
			t.Errorf("expected electricity share 200, got %s", elec)
		}
	})

	t.Run("ignores paid, cancelled and future invoices", func(t *testing.T) {
		repo := mocks.NewMockInvoiceRepository()

		paid := pastInvoice("inv-paid", "",
			domain.ChargeLine{Type: domain.ChargeTypeCAM, Amount: decimal.NewFromInt(1000)})
		if err := paid.AddPayment(domain.InvoicePayment{
			ID: "pay-1", Amount: decimal.NewFromInt(1000), Date: time.Now().UTC(), RecordedBy: "user-1",
		}); err != nil {
			t.Fatal(err)
		}
		paid.RecomputeDerived(time.Now().UTC(), 0)
		repo.Create(context.Background(), nil, paid)

		cancelled := pastInvoice("inv-cancelled", "",
			domain.ChargeLine{Type: domain.ChargeTypeCAM, Amount: decimal.NewFromInt(2000)})
		cancelled.Status = domain.InvoiceStatusCancelled
		repo.Create(context.Background(), nil, cancelled)

		// Same month as the resolution cutoff: current period, not arrears.
		current := pastInvoice("inv-current", "",
			domain.ChargeLine{Type: domain.ChargeTypeCAM, Amount: decimal.NewFromInt(3000)})
		current.PeriodFrom, current.PeriodTo = domain.BillPeriod(2025, time.June)
		repo.Create(context.Background(), nil, current)

		got, err := usecase.NewArrearsResolver(repo).Resolve(context.Background(), "prop-1", domain.ChargeTypeCAM, "", june)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.IsZero() {
			t.Errorf("expected zero arrears, got %s", got)
		}
	})

	t.Run("narrows electricity arrears to one meter", func(t *testing.T) {
		repo := mocks.NewMockInvoiceRepository()
		repo.Create(context.Background(), nil, pastInvoice("inv-m1", "MTR-1",
			domain.ChargeLine{Type: domain.ChargeTypeElectricity, Amount: decimal.NewFromInt(1824)}))
		repo.Create(context.Background(), nil, pastInvoice("inv-m2", "MTR-2",
			domain.ChargeLine{Type: domain.ChargeTypeElectricity, Amount: decimal.NewFromInt(900)}))

		got, err := usecase.NewArrearsResolver(repo).Resolve(context.Background(), "prop-1", domain.ChargeTypeElectricity, "MTR-1", june)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(decimal.NewFromInt(1824)) {
			t.Errorf("expected only meter 1's 1824, got %s", got)
		}
	})
}
