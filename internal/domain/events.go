package domain

import "time"

// Event types
const (
	EventTypeInvoiceIssued       = "invoice.issued"
	EventTypeInvoiceCancelled    = "invoice.cancelled"
	EventTypeInvoiceDeleted      = "invoice.deleted"
	EventTypePaymentRecorded     = "invoice.payment_recorded"
	EventTypeReceiptPosted       = "receipt.posted"
	EventTypeReceiptVoided       = "receipt.voided"
	EventTypeDepositRecorded     = "ledger.deposit_recorded"
	EventTypeTransferCompleted   = "ledger.transfer_completed"
	EventTypeBulkRunCompleted    = "billing.bulk_run_completed"
	EventTypeReconciliationFault = "ledger.reconciliation_fault"
)

// Aggregate types
const (
	AggregateTypeInvoice     = "invoice"
	AggregateTypeReceipt     = "receipt"
	AggregateTypeResident    = "resident"
	AggregateTypeProperty    = "property"
	AggregateTypeTransaction = "transaction"
	AggregateTypeBulkRun     = "bulk_run"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// InvoiceIssuedEvent payload
type InvoiceIssuedEvent struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	PropertyID    string `json:"property_id"`
	GrandTotal    string `json:"grand_total"`
	DueDate       string `json:"due_date"`
}

// PaymentRecordedEvent payload
type PaymentRecordedEvent struct {
	InvoiceID string `json:"invoice_id"`
	ReceiptID string `json:"receipt_id,omitempty"`
	Amount    string `json:"amount"`
	Balance   string `json:"balance"`
}

// ReceiptPostedEvent payload
type ReceiptPostedEvent struct {
	ReceiptID     string `json:"receipt_id"`
	ReceiptNumber string `json:"receipt_number"`
	Amount        string `json:"amount"`
	Allocated     string `json:"allocated"`
	Unallocated   string `json:"unallocated"`
}

// TransferCompletedEvent payload
type TransferCompletedEvent struct {
	FromResidentID string `json:"from_resident_id"`
	ToResidentID   string `json:"to_resident_id"`
	Amount         string `json:"amount"`
	OutTxnID       string `json:"out_txn_id"`
	InTxnID        string `json:"in_txn_id"`
}

// BulkRunCompletedEvent payload
type BulkRunCompletedEvent struct {
	Kind    string `json:"kind"`
	Month   string `json:"month"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

// ReconciliationFaultEvent payload
type ReconciliationFaultEvent struct {
	AggregateType string `json:"aggregate_type"`
	AggregateID   string `json:"aggregate_id"`
	Detail        string `json:"detail"`
}
