package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
	"github.com/sgcerp/tajbilling/internal/usecase/mocks"
)

type receiptFixture struct {
	receiptRepo *mocks.MockReceiptRepository
	invoiceRepo *mocks.MockInvoiceRepository
	outboxRepo  *mocks.MockOutboxRepository
	uc          *usecase.ReceiptUseCase
}

func newReceiptFixture(t *testing.T) *receiptFixture {
	t.Helper()
	f := &receiptFixture{
		receiptRepo: mocks.NewMockReceiptRepository(),
		invoiceRepo: mocks.NewMockInvoiceRepository(),
		outboxRepo:  mocks.NewMockOutboxRepository(),
	}
	f.uc = usecase.NewReceiptUseCase(
		mocks.NewMockTransactionManager(),
		f.receiptRepo,
		f.invoiceRepo,
		mocks.NewMockSequenceGenerator(),
		f.outboxRepo,
		mocks.NewMockAuditRepository(),
		mocks.NewMockIDGenerator(),
		0,
	)
	return f
}

func TestReceiptUseCase_Post(t *testing.T) {
	f := newReceiptFixture(t)
	f.invoiceRepo.Create(context.Background(), nil, issuedInvoice("inv-1", 1000))
	f.invoiceRepo.Create(context.Background(), nil, issuedInvoice("inv-2", 800))

	receipt, err := f.uc.Post(context.Background(), usecase.PostReceiptInput{
		ResidentID: "res-1",
		Amount:     decimal.NewFromInt(1500),
		Allocations: []domain.Allocation{
			{InvoiceID: "inv-1", Amount: decimal.NewFromInt(1000)},
			{InvoiceID: "inv-2", Amount: decimal.NewFromInt(300)},
		},
		Actor: "user-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !receipt.TotalAllocated.Equal(decimal.NewFromInt(1300)) {
		t.Errorf("expected 1300 allocated, got %s", receipt.TotalAllocated)
	}
	if !receipt.UnallocatedAmount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected 200 unallocated, got %s", receipt.UnallocatedAmount)
	}

	inv1, _ := f.invoiceRepo.GetByID(context.Background(), "inv-1")
	if inv1.Status != domain.InvoiceStatusPaid {
		t.Errorf("fully allocated invoice should be Paid, got %s", inv1.Status)
	}
	inv2, _ := f.invoiceRepo.GetByID(context.Background(), "inv-2")
	if inv2.Status != domain.InvoiceStatusPartiallyPaid {
		t.Errorf("partly allocated invoice should be Partially Paid, got %s", inv2.Status)
	}
	if len(inv2.Payments) != 1 || inv2.Payments[0].ReceiptID != receipt.ID {
		t.Error("invoice payment entry should be tagged with the receipt ID")
	}
	if inv2.Payments[0].Reference != receipt.ReceiptNumber {
		t.Errorf("payment reference should be the receipt number, got %s", inv2.Payments[0].Reference)
	}
}

func TestReceiptUseCase_Post_Rejections(t *testing.T) {
	f := newReceiptFixture(t)
	f.invoiceRepo.Create(context.Background(), nil, issuedInvoice("inv-1", 1000))

	t.Run("allocations exceed amount", func(t *testing.T) {
		_, err := f.uc.Post(context.Background(), usecase.PostReceiptInput{
			ResidentID: "res-1",
			Amount:     decimal.NewFromInt(500),
			Allocations: []domain.Allocation{
				{InvoiceID: "inv-1", Amount: decimal.NewFromInt(600)},
			},
			Actor: "user-1",
		})
		if !errors.Is(err, domain.ErrOverAllocation) {
			t.Errorf("expected ErrOverAllocation, got %v", err)
		}
	})

	t.Run("allocation exceeds invoice balance", func(t *testing.T) {
		_, err := f.uc.Post(context.Background(), usecase.PostReceiptInput{
			ResidentID: "res-1",
			Amount:     decimal.NewFromInt(2000),
			Allocations: []domain.Allocation{
				{InvoiceID: "inv-1", Amount: decimal.NewFromInt(2000)},
			},
			Actor: "user-1",
		})
		if !errors.Is(err, domain.ErrOverPayment) {
			t.Errorf("expected ErrOverPayment, got %v", err)
		}
	})

	t.Run("unknown invoice", func(t *testing.T) {
		_, err := f.uc.Post(context.Background(), usecase.PostReceiptInput{
			ResidentID: "res-1",
			Amount:     decimal.NewFromInt(100),
			Allocations: []domain.Allocation{
				{InvoiceID: "inv-9", Amount: decimal.NewFromInt(100)},
			},
			Actor: "user-1",
		})
		if !errors.Is(err, domain.ErrInvoiceNotFound) {
			t.Errorf("expected ErrInvoiceNotFound, got %v", err)
		}
	})
}

func TestReceiptUseCase_Void(t *testing.T) {
	f := newReceiptFixture(t)
	f.invoiceRepo.Create(context.Background(), nil, issuedInvoice("inv-1", 1000))

	// A payment from another source must survive the void.
	other, _ := f.invoiceRepo.GetByID(context.Background(), "inv-1")
	if err := other.AddPayment(domain.InvoicePayment{
		ID: "pay-other", Amount: decimal.NewFromInt(200), RecordedBy: "user-2",
	}); err != nil {
		t.Fatal(err)
	}

	receipt, err := f.uc.Post(context.Background(), usecase.PostReceiptInput{
		ResidentID: "res-1",
		Amount:     decimal.NewFromInt(500),
		Allocations: []domain.Allocation{
			{InvoiceID: "inv-1", Amount: decimal.NewFromInt(500)},
		},
		Actor: "user-1",
	})
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}

	voided, err := f.uc.Void(context.Background(), receipt.ID, "user-1")
	if err != nil {
		t.Fatalf("void failed: %v", err)
	}
	if voided.Status != domain.ReceiptStatusVoided {
		t.Errorf("expected Voided, got %s", voided.Status)
	}

	inv, _ := f.invoiceRepo.GetByID(context.Background(), "inv-1")
	if len(inv.Payments) != 1 || inv.Payments[0].ID != "pay-other" {
		t.Errorf("void should remove only this receipt's payments, got %+v", inv.Payments)
	}
	if !inv.TotalPaid.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected 200 still paid after void, got %s", inv.TotalPaid)
	}

	if _, err := f.uc.Void(context.Background(), receipt.ID, "user-1"); !errors.Is(err, domain.ErrReceiptNotPosted) {
		t.Errorf("double void should fail with ErrReceiptNotPosted, got %v", err)
	}
}
