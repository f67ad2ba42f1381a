package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
)

// ReceiptUseCase records incoming payments and allocates them across
// outstanding invoices. Each allocation writes a payment entry tagged with
// the receipt ID onto its invoice, so voiding the receipt removes exactly
// the entries it created and nothing else.
type ReceiptUseCase struct {
	txManager   TransactionManager
	receiptRepo ReceiptRepository
	invoiceRepo InvoiceRepository
	seqGen      SequenceGenerator
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	retrier     Retrier
	graceDays   int
}

// NewReceiptUseCase creates a new ReceiptUseCase.
func NewReceiptUseCase(
	txManager TransactionManager,
	receiptRepo ReceiptRepository,
	invoiceRepo InvoiceRepository,
	seqGen SequenceGenerator,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	graceDays int,
) *ReceiptUseCase {
	return &ReceiptUseCase{
		txManager:   txManager,
		receiptRepo: receiptRepo,
		invoiceRepo: invoiceRepo,
		seqGen:      seqGen,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		graceDays:   graceDays,
	}
}

// WithRetrier enables bounded retries on conflicting writes.
func (uc *ReceiptUseCase) WithRetrier(r Retrier) *ReceiptUseCase {
	uc.retrier = r
	return uc
}

func (uc *ReceiptUseCase) retry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}
	return uc.retrier.Retry(ctx, op)
}

// PostReceiptInput represents input for posting a receipt.
type PostReceiptInput struct {
	ResidentID  string
	PropertyID  string
	Amount      decimal.Decimal
	Allocations []domain.Allocation
	Method      string
	Bank        string
	Reference   string
	Notes       string
	ReceivedAt  *time.Time
	Actor       string
}

// Post validates and persists a receipt, then applies its allocations to the
// invoices in one database transaction. Allocations exceeding an invoice's
// balance, or summing past the receipt amount, reject the whole receipt.
func (uc *ReceiptUseCase) Post(ctx context.Context, input PostReceiptInput) (*domain.Receipt, error) {
	serial, err := uc.seqGen.Next(ctx, SequenceReceipt)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	receivedAt := now
	if input.ReceivedAt != nil {
		receivedAt = *input.ReceivedAt
	}

	receipt := &domain.Receipt{
		ID:            uc.idGen.Generate(),
		Serial:        serial,
		ReceiptNumber: domain.FormatBillNumber("RCT", receivedAt, serial),
		ResidentID:    input.ResidentID,
		PropertyID:    input.PropertyID,
		Amount:        input.Amount,
		Allocations:   input.Allocations,
		Method:        orDefault(input.Method, domain.PaymentMethodCash),
		Bank:          input.Bank,
		Reference:     input.Reference,
		Notes:         input.Notes,
		Status:        domain.ReceiptStatusPosted,
		ReceivedAt:    receivedAt,
		CreatedBy:     input.Actor,
		UpdatedBy:     input.Actor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := receipt.Validate(); err != nil {
		return nil, err
	}
	receipt.RecomputeAllocated()

	err = uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		for _, alloc := range receipt.Allocations {
			invoice, err := uc.invoiceRepo.GetByIDForUpdate(ctx, tx, alloc.InvoiceID)
			if err != nil {
				return err
			}
			payment := domain.InvoicePayment{
				ID:         uc.idGen.Generate(),
				ReceiptID:  receipt.ID,
				Amount:     alloc.Amount,
				Date:       receivedAt,
				Method:     receipt.Method,
				Bank:       receipt.Bank,
				Reference:  receipt.ReceiptNumber,
				RecordedBy: input.Actor,
				RecordedAt: now,
			}
			if err := invoice.AddPayment(payment); err != nil {
				return err
			}
			invoice.RecomputeDerived(now, uc.graceDays)
			invoice.UpdatedBy = input.Actor
			invoice.UpdatedAt = now
			if err := uc.invoiceRepo.Update(ctx, tx, invoice); err != nil {
				return err
			}
		}

		if err := uc.receiptRepo.Create(ctx, tx, receipt); err != nil {
			return err
		}
		if err := uc.writeEvent(ctx, tx, receipt, domain.EventTypeReceiptPosted); err != nil {
			return err
		}
		if err := uc.writeAudit(ctx, tx, input.Actor, domain.AuditActionReceiptPost, receipt.ID, nil, receipt); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Void reverses a posted receipt: every invoice it paid drops exactly the
// payment entries carrying this receipt's ID. Coincidentally equal amounts
// from other receipts are untouched.
func (uc *ReceiptUseCase) Void(ctx context.Context, receiptID, actor string) (*domain.Receipt, error) {
	var receipt *domain.Receipt
	err := uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		receipt, err = uc.receiptRepo.GetByID(ctx, receiptID)
		if err != nil {
			return err
		}
		if receipt.Status == domain.ReceiptStatusVoided {
			return domain.ErrReceiptNotPosted
		}

		now := time.Now().UTC()
		for _, alloc := range receipt.Allocations {
			invoice, err := uc.invoiceRepo.GetByIDForUpdate(ctx, tx, alloc.InvoiceID)
			if err != nil {
				return err
			}
			invoice.RemovePaymentsByReceipt(receipt.ID)
			invoice.RecomputeDerived(now, uc.graceDays)
			invoice.UpdatedBy = actor
			invoice.UpdatedAt = now
			if err := uc.invoiceRepo.Update(ctx, tx, invoice); err != nil {
				return err
			}
		}

		before := *receipt
		receipt.Status = domain.ReceiptStatusVoided
		receipt.UpdatedBy = actor
		receipt.UpdatedAt = now
		if err := uc.receiptRepo.Update(ctx, tx, receipt); err != nil {
			return err
		}
		if err := uc.writeEvent(ctx, tx, receipt, domain.EventTypeReceiptVoided); err != nil {
			return err
		}
		if err := uc.writeAudit(ctx, tx, actor, domain.AuditActionReceiptVoid, receipt.ID, &before, receipt); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Get returns one receipt.
func (uc *ReceiptUseCase) Get(ctx context.Context, id string) (*domain.Receipt, error) {
	return uc.receiptRepo.GetByID(ctx, id)
}

// List returns receipts, optionally narrowed to one resident.
func (uc *ReceiptUseCase) List(ctx context.Context, residentID string, limit, offset int) ([]*domain.Receipt, int, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.receiptRepo.List(ctx, residentID, limit, offset)
}

func (uc *ReceiptUseCase) writeEvent(ctx context.Context, tx Transaction, receipt *domain.Receipt, eventType string) error {
	if uc.outboxRepo == nil {
		return nil
	}
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   receipt.ID,
		AggregateType: domain.AggregateTypeReceipt,
		EventType:     eventType,
		Payload: map[string]any{
			"receipt_id":     receipt.ID,
			"receipt_number": receipt.ReceiptNumber,
			"amount":         receipt.Amount.String(),
			"allocated":      receipt.TotalAllocated.String(),
			"unallocated":    receipt.UnallocatedAmount.String(),
		},
		CreatedAt: time.Now().UTC(),
	})
}

func (uc *ReceiptUseCase) writeAudit(ctx context.Context, tx Transaction, actor string, action domain.AuditAction, resourceID string, before, after any) error {
	if uc.auditRepo == nil {
		return nil
	}
	return uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Actor:        actor,
		Action:       string(action),
		ResourceType: domain.AggregateTypeReceipt,
		ResourceID:   resourceID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
