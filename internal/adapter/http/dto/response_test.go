package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
)

func TestPropertyFromDomainDerivesSizeLabel(t *testing.T) {
	p := &domain.Property{
		ID:        "prop-1",
		Name:      "House 12",
		AreaValue: decimal.NewFromInt(4),
		AreaUnit:  domain.AreaUnitMarla,
		Meters:    []domain.Meter{{MeterNumber: "MTR-100"}},
	}

	resp := PropertyFromDomain(p)

	if resp.SizeLabel != "4M" {
		t.Fatalf("expected size label 4M, got %q", resp.SizeLabel)
	}
	if len(resp.Meters) != 1 || resp.Meters[0].MeterNumber != "MTR-100" {
		t.Fatalf("meters did not convert: %+v", resp.Meters)
	}
}

func TestResidentFromDomainMarksSuspense(t *testing.T) {
	r := &domain.Resident{ID: "res-1", Balance: decimal.Zero}

	resp := ResidentFromDomain(r)

	if !resp.Suspense {
		t.Fatalf("expected nameless resident to be marked suspense")
	}
}

func TestInvoiceFromDomainCarriesDerivedTotals(t *testing.T) {
	inv := &domain.Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-00009",
		Charges: []domain.ChargeLine{
			{Type: domain.ChargeTypeCAM, Amount: decimal.NewFromInt(1500), Arrears: decimal.NewFromInt(500)},
		},
		Subtotal:     decimal.NewFromInt(1500),
		TotalArrears: decimal.NewFromInt(500),
		GrandTotal:   decimal.NewFromInt(2000),
		Balance:      decimal.NewFromInt(2000),
		Payments: []domain.InvoicePayment{
			{ID: "pay-1", Amount: decimal.NewFromInt(500), RecordedBy: "cashier"},
		},
	}

	resp := InvoiceFromDomain(inv)

	if len(resp.Charges) != 1 || !resp.Charges[0].Arrears.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("charges did not convert: %+v", resp.Charges)
	}
	if len(resp.Payments) != 1 || resp.Payments[0].RecordedBy != "cashier" {
		t.Fatalf("payments did not convert: %+v", resp.Payments)
	}
	if !resp.GrandTotal.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected grand total to carry, got %v", resp.GrandTotal)
	}
}

func TestBreakdownFromDomain(t *testing.T) {
	b, err := domain.ComputeElectricityCharges(1200, 1450, decimal.RequireFromString("22.5"), decimal.Zero)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	resp := BreakdownFromDomain(b)

	if resp.UnitsConsumed != 250 {
		t.Fatalf("expected 250 units, got %d", resp.UnitsConsumed)
	}
	if !resp.Total.Equal(b.Total) {
		t.Fatalf("expected total to carry, got %v", resp.Total)
	}
}

func TestTransactionFromDomainConvertsUsages(t *testing.T) {
	now := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	txn := &domain.Transaction{
		ID:            "txn-1",
		ResidentID:    "res-1",
		Kind:          domain.TransactionKindBillPayment,
		Amount:        decimal.NewFromInt(5000),
		BalanceBefore: decimal.NewFromInt(8000),
		BalanceAfter:  decimal.NewFromInt(3000),
		DepositUsages: []domain.DepositUsage{
			{DepositID: "dep-1", Amount: decimal.NewFromInt(5000)},
		},
		CreatedBy: "clerk",
		CreatedAt: now,
	}

	resp := TransactionFromDomain(txn)

	if len(resp.DepositUsages) != 1 || resp.DepositUsages[0].DepositID != "dep-1" {
		t.Fatalf("deposit usages did not convert: %+v", resp.DepositUsages)
	}
	if !resp.BalanceAfter.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("snapshot did not carry: %v", resp.BalanceAfter)
	}
}

func TestReceiptFromDomain(t *testing.T) {
	r := &domain.Receipt{
		ID:            "rcpt-1",
		ReceiptNumber: "RCPT-00003",
		ResidentID:    "res-1",
		Amount:        decimal.NewFromInt(10000),
		Allocations: []domain.Allocation{
			{InvoiceID: "inv-1", Amount: decimal.NewFromInt(6000)},
		},
		TotalAllocated:    decimal.NewFromInt(6000),
		UnallocatedAmount: decimal.NewFromInt(4000),
		Status:            domain.ReceiptStatusPosted,
	}

	resp := ReceiptFromDomain(r)

	if len(resp.Allocations) != 1 || resp.Allocations[0].InvoiceID != "inv-1" {
		t.Fatalf("allocations did not convert: %+v", resp.Allocations)
	}
	if !resp.UnallocatedAmount.Equal(decimal.NewFromInt(4000)) {
		t.Fatalf("unallocated amount did not carry: %v", resp.UnallocatedAmount)
	}
}
