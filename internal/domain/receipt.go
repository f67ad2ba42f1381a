package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt statuses
const (
	ReceiptStatusPosted = "Posted"
	ReceiptStatusVoided = "Voided"
)

// Allocation assigns part of a receipt to one outstanding invoice.
type Allocation struct {
	InvoiceID string
	Amount    decimal.Decimal
}

// Receipt is a single incoming payment event split across one or more
// invoices. TotalAllocated + UnallocatedAmount always equals Amount.
type Receipt struct {
	ID                string
	Serial            int64
	ReceiptNumber     string
	ResidentID        string
	PropertyID        string
	Amount            decimal.Decimal
	Allocations       []Allocation
	TotalAllocated    decimal.Decimal
	UnallocatedAmount decimal.Decimal
	Method            string
	Bank              string
	Reference         string
	Notes             string
	Status            string
	ReceivedAt        time.Time
	CreatedBy         string
	UpdatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks the allocation bound before anything is persisted.
func (r *Receipt) Validate() error {
	if err := ValidateAmount(r.Amount); err != nil {
		return err
	}
	if r.ResidentID == "" && r.PropertyID == "" {
		return NewValidationError("residentId", "receipt needs a resident or property")
	}
	if r.CreatedBy == "" {
		return NewValidationError("createdBy", "acting principal is required")
	}
	total := decimal.Zero
	for _, a := range r.Allocations {
		if a.InvoiceID == "" {
			return NewValidationError("allocations", "invoice id cannot be empty")
		}
		if a.Amount.LessThanOrEqual(decimal.Zero) {
			return NewValidationError("allocations", "allocation amount must be positive")
		}
		total = total.Add(a.Amount)
	}
	if total.GreaterThan(r.Amount) {
		return ErrOverAllocation
	}
	return nil
}

// RecomputeAllocated refreshes the derived allocation totals.
func (r *Receipt) RecomputeAllocated() {
	total := decimal.Zero
	for _, a := range r.Allocations {
		total = total.Add(a.Amount)
	}
	r.TotalAllocated = total.Round(2)
	r.UnallocatedAmount = r.Amount.Sub(r.TotalAllocated)
}
