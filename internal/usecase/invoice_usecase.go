package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
)

// InvoiceUseCase owns the invoice lifecycle. Derived totals are recomputed
// from the charge lines and payment log on every mutation; nothing ever
// adjusts a stored total in place.
type InvoiceUseCase struct {
	txManager    TransactionManager
	invoiceRepo  InvoiceRepository
	propertyRepo PropertyRepository
	seqGen       SequenceGenerator
	outboxRepo   OutboxRepository
	auditRepo    AuditRepository
	idGen        IDGenerator
	retrier      Retrier
	graceDays    int
	dueOffset    int
}

// NewInvoiceUseCase creates a new InvoiceUseCase.
func NewInvoiceUseCase(
	txManager TransactionManager,
	invoiceRepo InvoiceRepository,
	propertyRepo PropertyRepository,
	seqGen SequenceGenerator,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	graceDays int,
	dueOffsetDays int,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txManager:    txManager,
		invoiceRepo:  invoiceRepo,
		propertyRepo: propertyRepo,
		seqGen:       seqGen,
		outboxRepo:   outboxRepo,
		auditRepo:    auditRepo,
		idGen:        idGen,
		graceDays:    graceDays,
		dueOffset:    dueOffsetDays,
	}
}

// WithRetrier enables bounded retries on conflicting invoice writes.
func (uc *InvoiceUseCase) WithRetrier(r Retrier) *InvoiceUseCase {
	uc.retrier = r
	return uc
}

func (uc *InvoiceUseCase) retry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}
	return uc.retrier.Retry(ctx, op)
}

// UpsertChargeInput places one charge stream's line onto the invoice for a
// property and period.
type UpsertChargeInput struct {
	PropertyID  string
	MeterNumber string // per-meter invoices for multi-meter properties
	MeterIndex  int    // 1-based position of the meter on the property
	Month       string
	PeriodFrom  time.Time
	PeriodTo    time.Time
	Line        domain.ChargeLine
	Actor       string
}

// UpsertChargeLine attaches a charge line to the period's invoice, creating
// the invoice if it does not exist yet. Re-billing the same stream for the
// same period replaces the existing line, so regenerating a bill updates the
// invoice instead of double-billing it.
func (uc *InvoiceUseCase) UpsertChargeLine(ctx context.Context, input UpsertChargeInput) (*domain.Invoice, error) {
	if input.Actor == "" {
		return nil, domain.NewValidationError("actor", "acting principal is required")
	}

	existing, err := uc.invoiceRepo.GetByPropertyPeriod(ctx, input.PropertyID, input.Month, input.MeterNumber)
	if err != nil && !errors.Is(err, domain.ErrInvoiceNotFound) {
		return nil, err
	}

	if existing != nil {
		return uc.replaceLine(ctx, existing.ID, input)
	}
	return uc.createWithLine(ctx, input)
}

func (uc *InvoiceUseCase) createWithLine(ctx context.Context, input UpsertChargeInput) (*domain.Invoice, error) {
	property, err := uc.propertyRepo.GetByID(ctx, input.PropertyID)
	if err != nil {
		return nil, err
	}

	serial, err := uc.seqGen.Next(ctx, SequenceInvoice)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	invoice := &domain.Invoice{
		ID:     uc.idGen.Generate(),
		Serial: serial,
		// The human-facing number carries the property serial; the stream
		// serial above only orders invoices internally.
		InvoiceNumber: domain.FormatInvoiceNumber([]string{input.Line.Type}, input.PeriodFrom, property.Serial, input.MeterIndex),
		PropertyID:    input.PropertyID,
		MeterNumber:   input.MeterNumber,
		Month:         input.Month,
		PeriodFrom:    input.PeriodFrom,
		PeriodTo:      input.PeriodTo,
		DueDate:       domain.DueDateFor(input.PeriodTo, uc.dueOffset),
		Charges:       []domain.ChargeLine{input.Line},
		Status:        domain.InvoiceStatusIssued,
		CreatedBy:     input.Actor,
		UpdatedBy:     input.Actor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	invoice.RecomputeDerived(now, uc.graceDays)
	if err := invoice.Validate(); err != nil {
		return nil, err
	}

	err = uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := uc.invoiceRepo.Create(ctx, tx, invoice); err != nil {
			return err
		}
		if err := uc.writeEvent(ctx, tx, invoice, domain.EventTypeInvoiceIssued); err != nil {
			return err
		}
		if err := uc.writeAudit(ctx, tx, input.Actor, domain.AuditActionInvoiceCreate, invoice.ID, nil, invoice); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (uc *InvoiceUseCase) replaceLine(ctx context.Context, invoiceID string, input UpsertChargeInput) (*domain.Invoice, error) {
	var invoice *domain.Invoice
	err := uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		invoice, err = uc.invoiceRepo.GetByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Status == domain.InvoiceStatusCancelled {
			return domain.ErrInvoiceNotEditable
		}

		before := *invoice
		replaced := false
		for i, c := range invoice.Charges {
			if c.Type == input.Line.Type && (c.SourceID == input.Line.SourceID || c.SourceID == "") {
				invoice.Charges[i] = input.Line
				replaced = true
				break
			}
		}
		if !replaced {
			invoice.Charges = append(invoice.Charges, input.Line)
		}

		now := time.Now().UTC()
		invoice.RecomputeDerived(now, uc.graceDays)
		invoice.UpdatedBy = input.Actor
		invoice.UpdatedAt = now

		if err := uc.invoiceRepo.Update(ctx, tx, invoice); err != nil {
			return err
		}
		if err := uc.writeAudit(ctx, tx, input.Actor, domain.AuditActionInvoiceUpdate, invoice.ID, &before, invoice); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// RemoveChargeLine detaches a charge stream's line when its source bill is
// deleted. An invoice left with no lines is deleted outright so it can never
// feed phantom arrears.
func (uc *InvoiceUseCase) RemoveChargeLine(ctx context.Context, propertyID, month, meterNumber, chargeType, sourceID, actor string) error {
	existing, err := uc.invoiceRepo.GetByPropertyPeriod(ctx, propertyID, month, meterNumber)
	if err != nil {
		if errors.Is(err, domain.ErrInvoiceNotFound) {
			return nil
		}
		return err
	}

	return uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		invoice, err := uc.invoiceRepo.GetByIDForUpdate(ctx, tx, existing.ID)
		if err != nil {
			return err
		}

		before := *invoice
		kept := invoice.Charges[:0]
		for _, c := range invoice.Charges {
			if c.Type == chargeType && (sourceID == "" || c.SourceID == sourceID) {
				continue
			}
			kept = append(kept, c)
		}
		invoice.Charges = kept

		if len(invoice.Charges) == 0 {
			if err := uc.invoiceRepo.Delete(ctx, tx, invoice.ID); err != nil {
				return err
			}
			if err := uc.writeAudit(ctx, tx, actor, domain.AuditActionInvoiceDelete, invoice.ID, &before, nil); err != nil {
				return err
			}
			return tx.Commit(ctx)
		}

		now := time.Now().UTC()
		invoice.RecomputeDerived(now, uc.graceDays)
		invoice.UpdatedBy = actor
		invoice.UpdatedAt = now
		if err := uc.invoiceRepo.Update(ctx, tx, invoice); err != nil {
			return err
		}
		if err := uc.writeAudit(ctx, tx, actor, domain.AuditActionInvoiceUpdate, invoice.ID, &before, invoice); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
}

// RecordPaymentInput represents a payment recorded directly on an invoice.
type RecordPaymentInput struct {
	InvoiceID string
	Amount    decimal.Decimal
	Date      time.Time
	Method    string
	Bank      string
	Reference string
	Notes     string
	Actor     string
}

// RecordPayment appends to the invoice's payment log and recomputes the
// derived totals.
func (uc *InvoiceUseCase) RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Invoice, error) {
	var invoice *domain.Invoice
	err := uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		invoice, err = uc.invoiceRepo.GetByIDForUpdate(ctx, tx, input.InvoiceID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		payment := domain.InvoicePayment{
			ID:         uc.idGen.Generate(),
			Amount:     input.Amount,
			Date:       input.Date,
			Method:     orDefault(input.Method, domain.PaymentMethodCash),
			Bank:       input.Bank,
			Reference:  input.Reference,
			Notes:      input.Notes,
			RecordedBy: input.Actor,
			RecordedAt: now,
		}
		if payment.Date.IsZero() {
			payment.Date = now
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
		if err := uc.writeEvent(ctx, tx, invoice, domain.EventTypePaymentRecorded); err != nil {
			return err
		}
		if err := uc.writeAudit(ctx, tx, input.Actor, domain.AuditActionInvoiceUpdate, invoice.ID, nil, invoice); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// Cancel voids an invoice. Cancelled invoices keep their history but leave
// every derived pipeline: no arrears, no surcharge, no status sweeps.
func (uc *InvoiceUseCase) Cancel(ctx context.Context, invoiceID, actor string) (*domain.Invoice, error) {
	var invoice *domain.Invoice
	err := uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		invoice, err = uc.invoiceRepo.GetByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Status == domain.InvoiceStatusCancelled {
			return nil
		}
		if invoice.TotalPaid.IsPositive() {
			return domain.NewValidationError("status", "invoice with recorded payments cannot be cancelled")
		}

		before := *invoice
		now := time.Now().UTC()
		invoice.Status = domain.InvoiceStatusCancelled
		invoice.UpdatedBy = actor
		invoice.UpdatedAt = now

		if err := uc.invoiceRepo.Update(ctx, tx, invoice); err != nil {
			return err
		}
		if err := uc.writeEvent(ctx, tx, invoice, domain.EventTypeInvoiceCancelled); err != nil {
			return err
		}
		if err := uc.writeAudit(ctx, tx, actor, domain.AuditActionInvoiceCancel, invoice.ID, &before, invoice); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// Get returns one invoice with freshly recomputed derived fields. The
// recomputation is read-side only; persisted state is untouched.
func (uc *InvoiceUseCase) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	invoice.RecomputeDerived(time.Now().UTC(), uc.graceDays)
	return invoice, nil
}

// List returns invoices matching the search and month filters.
func (uc *InvoiceUseCase) List(ctx context.Context, search, month string, limit, offset int) ([]*domain.Invoice, int, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	invoices, total, err := uc.invoiceRepo.List(ctx, search, month, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	now := time.Now().UTC()
	for _, inv := range invoices {
		inv.RecomputeDerived(now, uc.graceDays)
	}
	return invoices, total, nil
}

// ListByProperty returns a property's invoices, newest first.
func (uc *InvoiceUseCase) ListByProperty(ctx context.Context, propertyID string, limit, offset int) ([]*domain.Invoice, int, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	invoices, total, err := uc.invoiceRepo.ListByProperty(ctx, propertyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	now := time.Now().UTC()
	for _, inv := range invoices {
		inv.RecomputeDerived(now, uc.graceDays)
	}
	return invoices, total, nil
}

// SweepStatuses recomputes every invoice and persists the ones whose status
// or surcharge changed, typically marking newly overdue invoices. Intended
// for a daily scheduled run.
func (uc *InvoiceUseCase) SweepStatuses(ctx context.Context, actor string) (int, error) {
	invoices, err := uc.invoiceRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	now := time.Now().UTC()
	for _, inv := range invoices {
		prevStatus := inv.Status
		prevSurcharge := inv.LateSurcharge
		inv.RecomputeDerived(now, uc.graceDays)
		if inv.Status == prevStatus && inv.LateSurcharge.Equal(prevSurcharge) {
			continue
		}

		inv := inv
		err := uc.retry(ctx, func() error {
			tx, err := uc.txManager.Begin(ctx)
			if err != nil {
				return err
			}
			defer tx.Rollback(ctx)

			fresh, err := uc.invoiceRepo.GetByIDForUpdate(ctx, tx, inv.ID)
			if err != nil {
				return err
			}
			fresh.RecomputeDerived(now, uc.graceDays)
			fresh.UpdatedBy = actor
			fresh.UpdatedAt = now
			if err := uc.invoiceRepo.Update(ctx, tx, fresh); err != nil {
				return err
			}
			return tx.Commit(ctx)
		})
		if err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (uc *InvoiceUseCase) writeEvent(ctx context.Context, tx Transaction, invoice *domain.Invoice, eventType string) error {
	if uc.outboxRepo == nil {
		return nil
	}
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   invoice.ID,
		AggregateType: domain.AggregateTypeInvoice,
		EventType:     eventType,
		Payload: map[string]any{
			"invoice_id":     invoice.ID,
			"invoice_number": invoice.InvoiceNumber,
			"property_id":    invoice.PropertyID,
			"grand_total":    invoice.GrandTotal.String(),
			"balance":        invoice.Balance.String(),
			"due_date":       invoice.DueDate.Format(time.RFC3339),
		},
		CreatedAt: time.Now().UTC(),
	})
}

func (uc *InvoiceUseCase) writeAudit(ctx context.Context, tx Transaction, actor string, action domain.AuditAction, resourceID string, before, after any) error {
	if uc.auditRepo == nil {
		return nil
	}
	return uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Actor:        actor,
		Action:       string(action),
		ResourceType: domain.AggregateTypeInvoice,
		ResourceID:   resourceID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
