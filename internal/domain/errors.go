package domain

import "errors"

var (
	// Lookup errors
	ErrPropertyNotFound    = errors.New("property not found")
	ErrResidentNotFound    = errors.New("resident not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDepositNotFound     = errors.New("deposit not found")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrReceiptNotFound     = errors.New("receipt not found")
	ErrBillNotFound        = errors.New("bill not found")
	ErrTariffNotFound      = errors.New("no tariff version configured")

	// Ledger errors
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrSameResident      = errors.New("cannot transfer to the same resident")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrDepositOverused   = errors.New("deposit usage exceeds remaining amount")
	ErrDepositInUse      = errors.New("deposit has been used in payments")
	ErrSuspenseResident  = errors.New("operation not allowed on a suspense resident")

	// Billing errors
	ErrTariffResolution   = errors.New("no tariff slab matches")
	ErrDuplicateBill      = errors.New("bill already exists for this period")
	ErrDuplicateInvoice   = errors.New("invoice already exists for this period")
	ErrOverPayment        = errors.New("payment exceeds outstanding balance")
	ErrOverAllocation     = errors.New("allocations exceed receipt amount")
	ErrInvoiceNotEditable = errors.New("invoice can no longer be modified")
	ErrReceiptNotPosted   = errors.New("receipt is not in posted status")

	// Cross-cutting failures
	ErrConcurrencyConflict = errors.New("concurrent modification detected")
	ErrReconciliation      = errors.New("ledger reconciliation fault")
)
