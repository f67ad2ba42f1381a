package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction kinds
const (
	TransactionKindDeposit     = "deposit"
	TransactionKindBillPayment = "bill_payment"
	TransactionKindTransferIn  = "transfer_in"
	TransactionKindTransferOut = "transfer_out"
)

// Payment methods
const (
	PaymentMethodCash         = "Cash"
	PaymentMethodBankTransfer = "Bank Transfer"
	PaymentMethodCheque       = "Cheque"
	PaymentMethodOnline       = "Online"
	PaymentMethodOther        = "Other"
)

// Reference types a bill payment may point at.
const (
	ReferenceTypeInvoice     = "invoice"
	ReferenceTypeCAM         = "cam"
	ReferenceTypeElectricity = "electricity"
	ReferenceTypeRent        = "rent"
)

// ReversalPrefix marks external references of reversal transactions created
// when an invoice or deposit is deleted. Reversal deposits are excluded from
// deposit listings and remaining-amount math.
const ReversalPrefix = "REV-"

// DepositUsage links a portion of a specific deposit to the payment it
// funded, so a deposit's remaining unused amount can be audited at any time.
type DepositUsage struct {
	DepositID string
	Amount    decimal.Decimal
}

// Transaction is an immutable, append-only ledger entry belonging to exactly
// one resident. BalanceBefore/BalanceAfter are audit snapshots computed at
// write time, not a source of truth.
type Transaction struct {
	ID             string
	ResidentID     string
	Kind           string
	Amount         decimal.Decimal
	BalanceBefore  decimal.Decimal
	BalanceAfter   decimal.Decimal
	CounterpartyID *string // paired transaction for transfers
	TargetResident *string // other side of a transfer
	ReferenceType  string
	ReferenceID    string
	ReferenceNo    string
	ExternalRef    string
	PaymentMethod  string
	Bank           string
	Description    string
	DepositUsages  []DepositUsage
	CreatedBy      string
	CreatedAt      time.Time
}

// Signed returns the transaction's effect on the resident balance: positive
// for deposits and transfers in, negative for payments and transfers out.
func (t *Transaction) Signed() decimal.Decimal {
	switch t.Kind {
	case TransactionKindDeposit, TransactionKindTransferIn:
		return t.Amount
	case TransactionKindBillPayment, TransactionKindTransferOut:
		return t.Amount.Neg()
	}
	return decimal.Zero
}

// IsReversal reports whether the transaction was written to undo an earlier
// one.
func (t *Transaction) IsReversal() bool {
	return strings.HasPrefix(t.ExternalRef, ReversalPrefix)
}

// Validate checks the transaction invariants common to all kinds.
func (t *Transaction) Validate() error {
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	switch t.Kind {
	case TransactionKindDeposit, TransactionKindBillPayment,
		TransactionKindTransferIn, TransactionKindTransferOut:
	default:
		return NewValidationError("kind", "unknown transaction kind %q", t.Kind)
	}
	if t.CreatedBy == "" {
		return NewValidationError("createdBy", "acting principal is required")
	}
	switch t.PaymentMethod {
	case PaymentMethodBankTransfer, PaymentMethodCheque, PaymentMethodOnline:
		// Paying from tracked deposits inherits the bank from the deposit.
		if t.Bank == "" && len(t.DepositUsages) == 0 {
			return NewValidationError("bank", "bank is required for payment method %s", t.PaymentMethod)
		}
	}
	for _, u := range t.DepositUsages {
		if u.DepositID == "" {
			return NewValidationError("depositUsages", "deposit id cannot be empty")
		}
		if u.Amount.LessThanOrEqual(decimal.Zero) {
			return NewValidationError("depositUsages", "usage amount must be positive")
		}
	}
	return nil
}
