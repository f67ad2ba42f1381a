package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CAMCharge is one billing-cycle common-area-maintenance snapshot for a
// property. The amount comes from the size-label slab active for the period.
type CAMCharge struct {
	ID         string
	Serial     int64
	BillNumber string
	PropertyID string
	Month      string // "Jan-06" layout
	PeriodFrom time.Time
	PeriodTo   time.Time
	SizeLabel  string
	Amount     decimal.Decimal
	Arrears    decimal.Decimal
	Total      decimal.Decimal
	Status     string
	CreatedBy  string
	UpdatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the charge before persistence.
func (c *CAMCharge) Validate() error {
	if c.PropertyID == "" {
		return NewValidationError("propertyId", "cannot be empty")
	}
	if c.Amount.IsNegative() {
		return NewValidationError("amount", "cannot be negative")
	}
	if c.Month == "" {
		return NewValidationError("month", "cannot be empty")
	}
	return nil
}

// BillPeriod returns the first and last day of a billing month.
func BillPeriod(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	return from, to
}
