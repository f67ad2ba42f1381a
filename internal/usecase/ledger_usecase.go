package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
)

// LedgerUseCase maintains prepaid resident balances. Every balance-affecting
// operation reads the balance under a row lock, validates, writes an
// immutable transaction with before/after snapshots, and persists the new
// balance in the same database transaction.
type LedgerUseCase struct {
	txManager    TransactionManager
	residentRepo ResidentRepository
	txnRepo      TransactionRepository
	invoiceRepo  InvoiceRepository
	outboxRepo   OutboxRepository
	auditRepo    AuditRepository
	idGen        IDGenerator
	retrier      Retrier
	graceDays    int
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	residentRepo ResidentRepository,
	txnRepo TransactionRepository,
	invoiceRepo InvoiceRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	graceDays int,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:    txManager,
		residentRepo: residentRepo,
		txnRepo:      txnRepo,
		invoiceRepo:  invoiceRepo,
		outboxRepo:   outboxRepo,
		auditRepo:    auditRepo,
		idGen:        idGen,
		graceDays:    graceDays,
	}
}

// WithRetrier enables bounded retries on conflicting balance writes.
func (uc *LedgerUseCase) WithRetrier(r Retrier) *LedgerUseCase {
	uc.retrier = r
	return uc
}

func (uc *LedgerUseCase) retry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}
	return uc.retrier.Retry(ctx, op)
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	ResidentID    string
	Amount        decimal.Decimal
	Description   string
	PaymentMethod string
	Bank          string
	ExternalRef   string
	DepositDate   *time.Time
	Actor         string
}

// Deposit credits a resident's balance and records the deposit transaction.
func (uc *LedgerUseCase) Deposit(ctx context.Context, input DepositInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if input.ExternalRef == "" {
		return nil, domain.NewValidationError("externalRef", "transaction number is required")
	}

	var txn *domain.Transaction
	err := uc.retry(ctx, func() error {
		var err error
		txn, err = uc.deposit(ctx, input)
		return err
	})
	return txn, err
}

func (uc *LedgerUseCase) deposit(ctx context.Context, input DepositInput) (*domain.Transaction, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	resident, err := uc.residentRepo.GetByIDForUpdate(ctx, tx, input.ResidentID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	createdAt := now
	if input.DepositDate != nil {
		createdAt = *input.DepositDate
	}

	description := input.Description
	if description == "" {
		description = "Deposit"
	}

	balanceBefore := resident.Balance
	balanceAfter := resident.ApplyCredit(input.Amount)

	txn := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		ResidentID:    resident.ID,
		Kind:          domain.TransactionKindDeposit,
		Amount:        input.Amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		Description:   description,
		PaymentMethod: input.PaymentMethod,
		Bank:          input.Bank,
		ExternalRef:   input.ExternalRef,
		CreatedBy:     input.Actor,
		CreatedAt:     createdAt,
	}
	if err := txn.Validate(); err != nil {
		return nil, err
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}
	if err := uc.residentRepo.UpdateBalance(ctx, tx, resident.ID, balanceAfter, input.Actor, now); err != nil {
		return nil, err
	}
	if err := uc.writeAudit(ctx, tx, input.Actor, domain.AuditActionDeposit, txn.ID, nil, txn); err != nil {
		return nil, err
	}
	if err := uc.writeEvent(ctx, tx, txn.ID, domain.AggregateTypeTransaction, domain.EventTypeDepositRecorded, map[string]any{
		"resident_id": resident.ID,
		"amount":      input.Amount.String(),
		"balance":     balanceAfter.String(),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return txn, nil
}

// PayInput represents input for a bill payment from a resident's balance.
type PayInput struct {
	ResidentID    string
	Amount        decimal.Decimal
	ReferenceType string
	ReferenceID   string // invoice being paid, if any
	ReferenceNo   string
	Description   string
	PaymentMethod string
	Bank          string
	ExternalRef   string
	PaymentDate   *time.Time
	DepositUsages []domain.DepositUsage
	Actor         string
}

// Pay debits a resident's balance. Optional deposit usages record which
// deposits funded the payment; no single deposit's cumulative usage may
// exceed its original amount, validated at write time. When the payment
// references an invoice, the invoice's payment log is updated after the
// ledger write; a failure there surfaces as a reconciliation fault, never
// swallowed. The committed ledger transaction stands as the audit trail.
func (uc *LedgerUseCase) Pay(ctx context.Context, input PayInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var txn *domain.Transaction
	err := uc.retry(ctx, func() error {
		var err error
		txn, err = uc.pay(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	if input.ReferenceID != "" {
		if err := uc.recordInvoicePayment(ctx, txn, input); err != nil {
			return txn, fmt.Errorf("%w: payment %s recorded but invoice %s not updated: %v",
				domain.ErrReconciliation, txn.ID, input.ReferenceID, err)
		}
	}
	return txn, nil
}

func (uc *LedgerUseCase) pay(ctx context.Context, input PayInput) (*domain.Transaction, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	resident, err := uc.residentRepo.GetByIDForUpdate(ctx, tx, input.ResidentID)
	if err != nil {
		return nil, err
	}

	if err := resident.ValidateDebit(input.Amount); err != nil {
		return nil, err
	}
	if err := uc.validateDepositUsages(ctx, resident.ID, input.DepositUsages); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	createdAt := now
	if input.PaymentDate != nil {
		createdAt = *input.PaymentDate
	}

	description := input.Description
	if description == "" {
		description = "Payment for " + orDefault(input.ReferenceType, "bill")
	}

	balanceBefore := resident.Balance
	balanceAfter := resident.ApplyDebit(input.Amount)

	txn := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		ResidentID:    resident.ID,
		Kind:          domain.TransactionKindBillPayment,
		Amount:        input.Amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		ReferenceType: input.ReferenceType,
		ReferenceID:   input.ReferenceID,
		ReferenceNo:   input.ReferenceNo,
		ExternalRef:   input.ExternalRef,
		Description:   description,
		PaymentMethod: input.PaymentMethod,
		Bank:          input.Bank,
		DepositUsages: input.DepositUsages,
		CreatedBy:     input.Actor,
		CreatedAt:     createdAt,
	}
	if err := txn.Validate(); err != nil {
		return nil, err
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}
	if err := uc.residentRepo.UpdateBalance(ctx, tx, resident.ID, balanceAfter, input.Actor, now); err != nil {
		return nil, err
	}
	if err := uc.writeAudit(ctx, tx, input.Actor, domain.AuditActionPay, txn.ID, nil, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return txn, nil
}

// validateDepositUsages enforces the deposit usage invariant: for every
// referenced deposit, existing usage plus the new usage must not exceed the
// deposit's amount.
func (uc *LedgerUseCase) validateDepositUsages(ctx context.Context, residentID string, usages []domain.DepositUsage) error {
	if len(usages) == 0 {
		return nil
	}

	ids := make([]string, 0, len(usages))
	for _, u := range usages {
		ids = append(ids, u.DepositID)
	}
	used, err := uc.txnRepo.UsageByDeposit(ctx, ids)
	if err != nil {
		return err
	}

	for _, u := range usages {
		deposit, err := uc.txnRepo.GetByID(ctx, u.DepositID)
		if err != nil {
			return err
		}
		if deposit.Kind != domain.TransactionKindDeposit || deposit.IsReversal() {
			return domain.ErrDepositNotFound
		}
		if deposit.ResidentID != residentID {
			return domain.NewValidationError("depositUsages", "deposit %s does not belong to this resident", u.DepositID)
		}
		remaining := deposit.Amount.Sub(used[u.DepositID])
		if u.Amount.GreaterThan(remaining) {
			return fmt.Errorf("%w: deposit %s has %s remaining, requested %s",
				domain.ErrDepositOverused, u.DepositID, remaining, u.Amount)
		}
	}
	return nil
}

func (uc *LedgerUseCase) recordInvoicePayment(ctx context.Context, txn *domain.Transaction, input PayInput) error {
	return uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		invoice, err := uc.invoiceRepo.GetByIDForUpdate(ctx, tx, input.ReferenceID)
		if err != nil {
			return err
		}

		payment := domain.InvoicePayment{
			ID:         uc.idGen.Generate(),
			Amount:     txn.Amount,
			Date:       txn.CreatedAt,
			Method:     orDefault(txn.PaymentMethod, domain.PaymentMethodBankTransfer),
			Bank:       txn.Bank,
			Reference:  txn.ID,
			Notes:      txn.Description,
			RecordedBy: input.Actor,
			RecordedAt: time.Now().UTC(),
		}
		if err := invoice.AddPayment(payment); err != nil {
			return err
		}
		invoice.RecomputeDerived(time.Now().UTC(), uc.graceDays)
		invoice.UpdatedBy = input.Actor

		if err := uc.invoiceRepo.Update(ctx, tx, invoice); err != nil {
			return err
		}
		if err := uc.writeEvent(ctx, tx, invoice.ID, domain.AggregateTypeInvoice, domain.EventTypePaymentRecorded, map[string]any{
			"invoice_id": invoice.ID,
			"amount":     txn.Amount.String(),
			"balance":    invoice.Balance.String(),
		}); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
}

// TransferInput represents input for a balance transfer between residents.
type TransferInput struct {
	FromResidentID string
	ToResidentID   string
	Amount         decimal.Decimal
	Description    string
	Actor          string
}

// Transfer moves balance between two residents as a matched transaction
// pair, each side referencing the other as counterparty. The two sides are
// separate single-aggregate writes: if the credit side fails after the debit
// committed, the fault surfaces as a reconciliation error and the debit
// transaction remains as the audit trail for manual correction.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transaction, *domain.Transaction, error) {
	if input.FromResidentID == input.ToResidentID {
		return nil, nil, domain.ErrSameResident
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, nil, err
	}

	source, err := uc.residentRepo.GetByID(ctx, input.FromResidentID)
	if err != nil {
		return nil, nil, err
	}
	target, err := uc.residentRepo.GetByID(ctx, input.ToResidentID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()

	var outTxn *domain.Transaction
	err = uc.retry(ctx, func() error {
		var err error
		outTxn, err = uc.transferLeg(ctx, source.ID, target.ID, input, domain.TransactionKindTransferOut, nil,
			orDefault(input.Description, "Transfer to "+target.Name), now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	var inTxn *domain.Transaction
	err = uc.retry(ctx, func() error {
		var err error
		inTxn, err = uc.transferLeg(ctx, target.ID, source.ID, input, domain.TransactionKindTransferIn, &outTxn.ID,
			orDefault(input.Description, "Transfer from "+source.Name), now)
		return err
	})
	if err != nil {
		return outTxn, nil, fmt.Errorf("%w: transfer debit %s committed but credit failed: %v",
			domain.ErrReconciliation, outTxn.ID, err)
	}

	return outTxn, inTxn, nil
}

// transferLeg writes one side of a transfer atomically. On the credit leg
// the counterparty link is closed in both directions.
func (uc *LedgerUseCase) transferLeg(
	ctx context.Context,
	residentID, otherID string,
	input TransferInput,
	kind string,
	counterparty *string,
	description string,
	now time.Time,
) (*domain.Transaction, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	resident, err := uc.residentRepo.GetByIDForUpdate(ctx, tx, residentID)
	if err != nil {
		return nil, err
	}

	balanceBefore := resident.Balance
	var balanceAfter decimal.Decimal
	if kind == domain.TransactionKindTransferOut {
		if err := resident.ValidateDebit(input.Amount); err != nil {
			return nil, err
		}
		balanceAfter = resident.ApplyDebit(input.Amount)
	} else {
		balanceAfter = resident.ApplyCredit(input.Amount)
	}

	txn := &domain.Transaction{
		ID:             uc.idGen.Generate(),
		ResidentID:     residentID,
		Kind:           kind,
		Amount:         input.Amount,
		BalanceBefore:  balanceBefore,
		BalanceAfter:   balanceAfter,
		CounterpartyID: counterparty,
		TargetResident: &otherID,
		Description:    description,
		CreatedBy:      input.Actor,
		CreatedAt:      now,
	}
	if err := txn.Validate(); err != nil {
		return nil, err
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}
	if err := uc.residentRepo.UpdateBalance(ctx, tx, residentID, balanceAfter, input.Actor, now); err != nil {
		return nil, err
	}

	if counterparty != nil {
		out, err := uc.txnRepo.GetByID(ctx, *counterparty)
		if err != nil {
			return nil, err
		}
		out.CounterpartyID = &txn.ID
		if err := uc.txnRepo.Update(ctx, tx, out); err != nil {
			return nil, err
		}
		if err := uc.writeEvent(ctx, tx, txn.ID, domain.AggregateTypeTransaction, domain.EventTypeTransferCompleted, map[string]any{
			"from_resident_id": otherID,
			"to_resident_id":   residentID,
			"amount":           input.Amount.String(),
			"out_txn_id":       *counterparty,
			"in_txn_id":        txn.ID,
		}); err != nil {
			return nil, err
		}
	}
	if err := uc.writeAudit(ctx, tx, input.Actor, domain.AuditActionTransfer, txn.ID, nil, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return txn, nil
}

// DepositRemaining is the per-deposit usage summary attached to listings.
type DepositRemaining struct {
	Used      decimal.Decimal
	Remaining decimal.Decimal
}

// ListTransactions lists a resident's transactions with, for each deposit,
// the amount already consumed by payments and the remainder.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, residentID string, filter TransactionFilter) ([]*domain.Transaction, map[string]DepositRemaining, int, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	txns, total, err := uc.txnRepo.ListByResident(ctx, residentID, filter)
	if err != nil {
		return nil, nil, 0, err
	}

	var depositIDs []string
	deposits := make(map[string]*domain.Transaction)
	for _, t := range txns {
		if t.Kind == domain.TransactionKindDeposit && !t.IsReversal() {
			depositIDs = append(depositIDs, t.ID)
			deposits[t.ID] = t
		}
	}

	remaining := make(map[string]DepositRemaining, len(depositIDs))
	if len(depositIDs) > 0 {
		used, err := uc.txnRepo.UsageByDeposit(ctx, depositIDs)
		if err != nil {
			return nil, nil, 0, err
		}
		for id, dep := range deposits {
			u := used[id]
			rem := dep.Amount.Sub(u)
			if rem.IsNegative() {
				rem = decimal.Zero
			}
			remaining[id] = DepositRemaining{Used: u, Remaining: rem}
		}
	}

	return txns, remaining, total, nil
}

// ListDeposits lists deposits across residents (or for one resident) with
// usage summaries.
func (uc *LedgerUseCase) ListDeposits(ctx context.Context, residentID string, suspenseOnly bool, limit, offset int) ([]*domain.Transaction, map[string]DepositRemaining, int, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	deposits, total, err := uc.txnRepo.ListDeposits(ctx, residentID, suspenseOnly, limit, offset)
	if err != nil {
		return nil, nil, 0, err
	}

	ids := make([]string, 0, len(deposits))
	for _, d := range deposits {
		ids = append(ids, d.ID)
	}
	remaining := make(map[string]DepositRemaining, len(ids))
	if len(ids) > 0 {
		used, err := uc.txnRepo.UsageByDeposit(ctx, ids)
		if err != nil {
			return nil, nil, 0, err
		}
		for _, d := range deposits {
			u := used[d.ID]
			rem := d.Amount.Sub(u)
			if rem.IsNegative() {
				rem = decimal.Zero
			}
			remaining[d.ID] = DepositRemaining{Used: u, Remaining: rem}
		}
	}
	return deposits, remaining, total, nil
}

// UpdateDepositInput represents an edit to an existing deposit transaction.
type UpdateDepositInput struct {
	ResidentID    string
	TransactionID string
	Amount        *decimal.Decimal
	Description   *string
	PaymentMethod *string
	Bank          *string
	ExternalRef   *string
	Actor         string
}

// UpdateDeposit edits a deposit. Reducing the amount below the sum already
// consumed by payments is rejected; amount changes adjust the resident
// balance by the difference.
func (uc *LedgerUseCase) UpdateDeposit(ctx context.Context, input UpdateDepositInput) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := uc.retry(ctx, func() error {
		var err error
		txn, err = uc.updateDeposit(ctx, input)
		return err
	})
	return txn, err
}

func (uc *LedgerUseCase) updateDeposit(ctx context.Context, input UpdateDepositInput) (*domain.Transaction, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	resident, err := uc.residentRepo.GetByIDForUpdate(ctx, tx, input.ResidentID)
	if err != nil {
		return nil, err
	}
	txn, err := uc.txnRepo.GetByID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if txn.Kind != domain.TransactionKindDeposit {
		return nil, domain.NewValidationError("transactionId", "only deposit transactions can be edited")
	}
	if txn.ResidentID != resident.ID {
		return nil, domain.NewValidationError("transactionId", "transaction does not belong to this resident")
	}

	now := time.Now().UTC()
	before := *txn

	if input.Amount != nil && !input.Amount.Equal(txn.Amount) {
		newAmount := *input.Amount
		if err := domain.ValidateAmount(newAmount); err != nil {
			return nil, err
		}
		used, err := uc.txnRepo.UsageByDeposit(ctx, []string{txn.ID})
		if err != nil {
			return nil, err
		}
		if newAmount.LessThan(used[txn.ID]) {
			return nil, fmt.Errorf("%w: %s already used from this deposit", domain.ErrDepositInUse, used[txn.ID])
		}

		diff := newAmount.Sub(txn.Amount)
		newBalance := resident.Balance.Add(diff)
		if newBalance.IsNegative() {
			return nil, domain.ErrInsufficientFunds
		}
		if err := uc.residentRepo.UpdateBalance(ctx, tx, resident.ID, newBalance, input.Actor, now); err != nil {
			return nil, err
		}
		txn.Amount = newAmount
		txn.BalanceAfter = newBalance
	}
	if input.Description != nil {
		txn.Description = *input.Description
	}
	if input.PaymentMethod != nil {
		txn.PaymentMethod = *input.PaymentMethod
	}
	if input.Bank != nil {
		txn.Bank = *input.Bank
	}
	if input.ExternalRef != nil {
		txn.ExternalRef = *input.ExternalRef
	}
	if err := txn.Validate(); err != nil {
		return nil, err
	}

	if err := uc.txnRepo.Update(ctx, tx, txn); err != nil {
		return nil, err
	}
	if err := uc.writeAudit(ctx, tx, input.Actor, domain.AuditActionDepositUpdate, txn.ID, &before, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return txn, nil
}

// DeleteDepositResult reports the cascade of a deposit deletion.
type DeleteDepositResult struct {
	NewBalance      decimal.Decimal
	DeletedPayments int
}

// DeleteDeposit removes a deposit transaction. Payments funded by the
// deposit are deleted too: each payment's amount is credited back to its
// resident and its invoice payment entry (matched by the ledger transaction
// reference, never by amount) is removed before the deposit itself goes.
func (uc *LedgerUseCase) DeleteDeposit(ctx context.Context, residentID, transactionID, actor string) (*DeleteDepositResult, error) {
	resident, err := uc.residentRepo.GetByID(ctx, residentID)
	if err != nil {
		return nil, err
	}
	txn, err := uc.txnRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Kind != domain.TransactionKindDeposit {
		return nil, domain.NewValidationError("transactionId", "only deposit transactions can be deleted")
	}
	if txn.ResidentID != resident.ID {
		return nil, domain.NewValidationError("transactionId", "transaction does not belong to this resident")
	}

	payments, err := uc.txnRepo.ListPaymentsUsingDeposit(ctx, txn.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		if err := uc.reversePayment(ctx, p, actor); err != nil {
			return nil, fmt.Errorf("%w: reversing payment %s: %v", domain.ErrReconciliation, p.ID, err)
		}
	}

	var result *DeleteDepositResult
	err = uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		locked, err := uc.residentRepo.GetByIDForUpdate(ctx, tx, residentID)
		if err != nil {
			return err
		}
		newBalance := locked.Balance.Sub(txn.Amount)
		if newBalance.IsNegative() {
			newBalance = decimal.Zero
		}
		now := time.Now().UTC()
		if err := uc.residentRepo.UpdateBalance(ctx, tx, residentID, newBalance, actor, now); err != nil {
			return err
		}
		if err := uc.txnRepo.Delete(ctx, tx, txn.ID); err != nil {
			return err
		}
		if err := uc.writeAudit(ctx, tx, actor, domain.AuditActionDepositDelete, txn.ID, txn, nil); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		result = &DeleteDepositResult{NewBalance: newBalance, DeletedPayments: len(payments)}
		return nil
	})
	return result, err
}

// reversePayment undoes one bill payment: credits the amount back to the
// resident, removes the invoice payment entry it created, and deletes the
// payment transaction.
func (uc *LedgerUseCase) reversePayment(ctx context.Context, payment *domain.Transaction, actor string) error {
	return uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		resident, err := uc.residentRepo.GetByIDForUpdate(ctx, tx, payment.ResidentID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := uc.residentRepo.UpdateBalance(ctx, tx, resident.ID, resident.Balance.Add(payment.Amount), actor, now); err != nil {
			return err
		}

		if payment.ReferenceID != "" {
			invoice, err := uc.invoiceRepo.GetByIDForUpdate(ctx, tx, payment.ReferenceID)
			if err == nil {
				kept := invoice.Payments[:0]
				for _, p := range invoice.Payments {
					if p.Reference == payment.ID {
						continue
					}
					kept = append(kept, p)
				}
				invoice.Payments = kept
				invoice.RecomputeDerived(now, uc.graceDays)
				invoice.UpdatedBy = actor
				if err := uc.invoiceRepo.Update(ctx, tx, invoice); err != nil {
					return err
				}
			} else if !errors.Is(err, domain.ErrInvoiceNotFound) {
				return err
			}
		}

		if err := uc.txnRepo.Delete(ctx, tx, payment.ID); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
}

// DeleteInvoiceResult reports the cascade of an invoice deletion.
type DeleteInvoiceResult struct {
	InvoiceNumber    string
	ReversedPayments int
}

// DeleteInvoice removes an invoice outright. Ledger payments recorded against
// it are not deleted; each one gets a reversal deposit (external reference
// "REV-<payment id>") crediting the amount back to its resident, so the
// transaction trail still sums to the balance afterwards.
func (uc *LedgerUseCase) DeleteInvoice(ctx context.Context, invoiceID, actor string) (*DeleteInvoiceResult, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	payments, err := uc.txnRepo.ListByReference(ctx, domain.ReferenceTypeInvoice, invoiceID)
	if err != nil {
		return nil, err
	}

	var result *DeleteInvoiceResult
	err = uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		now := time.Now().UTC()
		reversed := 0
		for _, p := range payments {
			if p.Kind != domain.TransactionKindBillPayment {
				continue
			}
			resident, err := uc.residentRepo.GetByIDForUpdate(ctx, tx, p.ResidentID)
			if err != nil {
				return err
			}
			newBalance := resident.Balance.Add(p.Amount)
			reversal := &domain.Transaction{
				ID:            uc.idGen.Generate(),
				ResidentID:    resident.ID,
				Kind:          domain.TransactionKindDeposit,
				Amount:        p.Amount,
				BalanceBefore: resident.Balance,
				BalanceAfter:  newBalance,
				ReferenceType: domain.ReferenceTypeInvoice,
				ReferenceID:   invoiceID,
				ExternalRef:   domain.ReversalPrefix + p.ID,
				PaymentMethod: p.PaymentMethod,
				Bank:          p.Bank,
				Description:   "reversal of payment on deleted invoice " + invoice.InvoiceNumber,
				CreatedBy:     actor,
				CreatedAt:     now,
			}
			if err := uc.txnRepo.Create(ctx, tx, reversal); err != nil {
				return err
			}
			if err := uc.residentRepo.UpdateBalance(ctx, tx, resident.ID, newBalance, actor, now); err != nil {
				return err
			}
			reversed++
		}

		if err := uc.invoiceRepo.Delete(ctx, tx, invoiceID); err != nil {
			return err
		}
		if err := uc.writeEvent(ctx, tx, invoiceID, domain.AggregateTypeInvoice, domain.EventTypeInvoiceDeleted, map[string]any{
			"invoice_id":        invoiceID,
			"invoice_number":    invoice.InvoiceNumber,
			"reversed_payments": reversed,
		}); err != nil {
			return err
		}
		if err := uc.writeAudit(ctx, tx, actor, domain.AuditActionInvoiceDelete, invoiceID, invoice, nil); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		result = &DeleteInvoiceResult{InvoiceNumber: invoice.InvoiceNumber, ReversedPayments: reversed}
		return nil
	})
	return result, err
}

// TransferSuspenseDeposit re-points a deposit held by a suspense resident to
// an identified resident, moving both balances.
func (uc *LedgerUseCase) TransferSuspenseDeposit(ctx context.Context, depositID, targetResidentID, actor string) (*domain.Transaction, error) {
	deposit, err := uc.txnRepo.GetByID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if deposit.Kind != domain.TransactionKindDeposit {
		return nil, domain.NewValidationError("transactionId", "transaction is not a deposit")
	}

	source, err := uc.residentRepo.GetByID(ctx, deposit.ResidentID)
	if err != nil {
		return nil, err
	}
	if !source.IsSuspense() {
		return nil, domain.NewValidationError("transactionId", "only suspense account deposits can be transferred")
	}
	target, err := uc.residentRepo.GetByID(ctx, targetResidentID)
	if err != nil {
		return nil, err
	}
	if target.IsSuspense() {
		return nil, domain.ErrSuspenseResident
	}

	var moved *domain.Transaction
	err = uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		now := time.Now().UTC()

		lockedSource, err := uc.residentRepo.GetByIDForUpdate(ctx, tx, source.ID)
		if err != nil {
			return err
		}
		sourceAfter := lockedSource.Balance.Sub(deposit.Amount)
		if sourceAfter.IsNegative() {
			sourceAfter = decimal.Zero
		}
		if err := uc.residentRepo.UpdateBalance(ctx, tx, source.ID, sourceAfter, actor, now); err != nil {
			return err
		}

		lockedTarget, err := uc.residentRepo.GetByIDForUpdate(ctx, tx, target.ID)
		if err != nil {
			return err
		}
		targetBefore := lockedTarget.Balance
		targetAfter := targetBefore.Add(deposit.Amount)
		if err := uc.residentRepo.UpdateBalance(ctx, tx, target.ID, targetAfter, actor, now); err != nil {
			return err
		}

		deposit.ResidentID = target.ID
		deposit.BalanceBefore = targetBefore
		deposit.BalanceAfter = targetAfter
		deposit.Description = orDefault(deposit.Description, "Deposit") + " (transferred from suspense account)"
		if err := uc.txnRepo.Update(ctx, tx, deposit); err != nil {
			return err
		}
		if err := uc.writeAudit(ctx, tx, actor, domain.AuditActionDepositUpdate, deposit.ID, nil, deposit); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		moved = deposit
		return nil
	})
	return moved, err
}

func (uc *LedgerUseCase) writeAudit(ctx context.Context, tx Transaction, actor string, action domain.AuditAction, resourceID string, before, after any) error {
	if uc.auditRepo == nil {
		return nil
	}
	return uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Actor:        actor,
		Action:       string(action),
		ResourceType: domain.AggregateTypeTransaction,
		ResourceID:   resourceID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}

func (uc *LedgerUseCase) writeEvent(ctx context.Context, tx Transaction, aggregateID, aggregateType, eventType string, payload map[string]any) error {
	if uc.outboxRepo == nil {
		return nil
	}
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	})
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
