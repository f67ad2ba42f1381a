package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records who did what to which aggregate. Every mutating operation
// writes one; the acting principal is mandatory, not telemetry.
type AuditLog struct {
	ID           string
	Actor        string // acting principal (createdBy/updatedBy/recordedBy)
	Action       string
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionPropertyCreate = AuditAction("property.create")
	AuditActionPropertyUpdate = AuditAction("property.update")
	AuditActionPropertyDelete = AuditAction("property.delete")

	AuditActionResidentCreate = AuditAction("resident.create")
	AuditActionResidentUpdate = AuditAction("resident.update")
	AuditActionResidentDelete = AuditAction("resident.delete")

	AuditActionDeposit       = AuditAction("ledger.deposit")
	AuditActionDepositUpdate = AuditAction("ledger.deposit_update")
	AuditActionDepositDelete = AuditAction("ledger.deposit_delete")
	AuditActionPay           = AuditAction("ledger.pay")
	AuditActionTransfer      = AuditAction("ledger.transfer")

	AuditActionTariffActivate = AuditAction("tariff.activate")

	AuditActionBillCreate = AuditAction("bill.create")
	AuditActionBillUpdate = AuditAction("bill.update")
	AuditActionBillDelete = AuditAction("bill.delete")
	AuditActionBulkRun    = AuditAction("bill.bulk_run")

	AuditActionInvoiceCreate = AuditAction("invoice.create")
	AuditActionInvoiceUpdate = AuditAction("invoice.update")
	AuditActionInvoiceCancel = AuditAction("invoice.cancel")
	AuditActionInvoiceDelete = AuditAction("invoice.delete")

	AuditActionReceiptPost = AuditAction("receipt.post")
	AuditActionReceiptVoid = AuditAction("receipt.void")
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusError   AuditStatus = "error"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	Actor        string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
