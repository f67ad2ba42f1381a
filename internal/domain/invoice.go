package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses
const (
	InvoiceStatusDraft         = "Draft"
	InvoiceStatusIssued        = "Issued"
	InvoiceStatusPartiallyPaid = "Partially Paid"
	InvoiceStatusPaid          = "Paid"
	InvoiceStatusOverdue       = "Overdue"
	InvoiceStatusCancelled     = "Cancelled"
)

// Charge line types
const (
	ChargeTypeCAM         = "cam"
	ChargeTypeElectricity = "electricity"
	ChargeTypeRent        = "rent"
	ChargeTypeCustom      = "custom"
)

// LateSurchargeRate is applied once to the current period's charges
// (never to carried arrears) when an invoice is past its grace period.
var LateSurchargeRate = decimal.RequireFromString("0.10")

// ChargeLine is one billed item on an invoice.
type ChargeLine struct {
	Type        string
	Description string
	Amount      decimal.Decimal // current period charge
	Arrears     decimal.Decimal // carried in from prior periods
	SourceID    string          // originating bill/charge record
}

// Total is the line's contribution to the grand total.
func (c ChargeLine) Total() decimal.Decimal {
	return c.Amount.Add(c.Arrears)
}

// InvoicePayment is one entry in an invoice's append-only payment log.
type InvoicePayment struct {
	ID         string
	ReceiptID  string
	Amount     decimal.Decimal
	Date       time.Time
	Method     string
	Bank       string
	Reference  string
	Notes      string
	RecordedBy string
	RecordedAt time.Time
}

// Invoice groups one or more charge streams for a property and period.
// Subtotal, TotalArrears, LateSurcharge, GrandTotal, TotalPaid, Balance and
// PaymentStatus are derived; RecomputeDerived is the only place they change.
type Invoice struct {
	ID            string
	Serial        int64
	InvoiceNumber string
	PropertyID    string
	MeterNumber   string // set when a multi-meter property gets per-meter invoices
	Month         string
	PeriodFrom    time.Time
	PeriodTo      time.Time
	DueDate       time.Time
	Charges       []ChargeLine
	Subtotal      decimal.Decimal
	TotalArrears  decimal.Decimal
	LateSurcharge decimal.Decimal
	GrandTotal    decimal.Decimal
	Payments      []InvoicePayment
	TotalPaid     decimal.Decimal
	Balance       decimal.Decimal
	PaymentStatus string
	Status        string
	Version       int64
	Notes         string
	CreatedBy     string
	UpdatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DueDateFor is the single deterministic due-date rule: a fixed offset after
// the period end.
func DueDateFor(periodTo time.Time, offsetDays int) time.Time {
	return dateOnly(periodTo).AddDate(0, 0, offsetDays)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsOverdue reports whether today (date-only) is strictly past the due date
// plus the grace period.
func (inv *Invoice) IsOverdue(today time.Time, graceDays int) bool {
	return dateOnly(today).After(dateOnly(inv.DueDate).AddDate(0, 0, graceDays))
}

// RecomputeDerived recalculates every derived field from the charge lines and
// payment log. It is pure with respect to its inputs and idempotent: calling
// it twice with the same state yields the same totals, so the late surcharge
// can never be double-applied.
//
// The surcharge is owed when the invoice is overdue and the un-surcharged
// amount was not fully paid by the grace cutoff. Judging by payment dates
// rather than current payment status keeps the rule stable: a late payment
// that happens to cover the surcharge does not retroactively remove it.
func (inv *Invoice) RecomputeDerived(today time.Time, graceDays int) {
	subtotal := decimal.Zero
	arrears := decimal.Zero
	for _, c := range inv.Charges {
		subtotal = subtotal.Add(c.Amount)
		arrears = arrears.Add(c.Arrears)
	}
	inv.Subtotal = subtotal.Round(2)
	inv.TotalArrears = arrears.Round(2)

	cutoff := dateOnly(inv.DueDate).AddDate(0, 0, graceDays)
	totalPaid := decimal.Zero
	paidByCutoff := decimal.Zero
	for _, p := range inv.Payments {
		totalPaid = totalPaid.Add(p.Amount)
		if !dateOnly(p.Date).After(cutoff) {
			paidByCutoff = paidByCutoff.Add(p.Amount)
		}
	}
	inv.TotalPaid = totalPaid.Round(2)

	base := inv.Subtotal.Add(inv.TotalArrears)
	overdue := inv.IsOverdue(today, graceDays)
	if overdue && paidByCutoff.LessThan(base) && inv.Subtotal.IsPositive() {
		inv.LateSurcharge = inv.Subtotal.Mul(LateSurchargeRate).Round(0)
	} else {
		inv.LateSurcharge = decimal.Zero
	}

	inv.GrandTotal = base.Add(inv.LateSurcharge)
	inv.Balance = inv.GrandTotal.Sub(inv.TotalPaid)

	switch {
	case inv.TotalPaid.IsZero():
		inv.PaymentStatus = BillStatusUnpaid
	case inv.Balance.LessThanOrEqual(decimal.Zero):
		inv.PaymentStatus = BillStatusPaid
	default:
		inv.PaymentStatus = BillStatusPartialPaid
	}

	inv.recomputeStatus(overdue)
}

// recomputeStatus applies the automatic status transitions. Draft and
// Cancelled only change through explicit operations.
func (inv *Invoice) recomputeStatus(overdue bool) {
	if inv.Status == InvoiceStatusDraft || inv.Status == InvoiceStatusCancelled {
		return
	}
	switch {
	case inv.PaymentStatus == BillStatusPaid:
		inv.Status = InvoiceStatusPaid
	case inv.TotalPaid.IsPositive():
		inv.Status = InvoiceStatusPartiallyPaid
	case overdue:
		inv.Status = InvoiceStatusOverdue
	default:
		inv.Status = InvoiceStatusIssued
	}
}

// AddPayment appends to the payment log. Over-payment is rejected rather than
// driving the balance negative.
func (inv *Invoice) AddPayment(p InvoicePayment) error {
	if inv.Status == InvoiceStatusCancelled {
		return ErrInvoiceNotEditable
	}
	if err := ValidateAmount(p.Amount); err != nil {
		return err
	}
	if p.Amount.GreaterThan(inv.Balance) {
		return ErrOverPayment
	}
	if p.RecordedBy == "" {
		return NewValidationError("recordedBy", "acting principal is required")
	}
	inv.Payments = append(inv.Payments, p)
	return nil
}

// RemovePaymentsByReceipt removes every payment recorded by the given
// receipt, matched by receipt ID so coincidentally equal amounts are never
// confused. Returns the removed entries.
func (inv *Invoice) RemovePaymentsByReceipt(receiptID string) []InvoicePayment {
	kept := inv.Payments[:0]
	var removed []InvoicePayment
	for _, p := range inv.Payments {
		if p.ReceiptID == receiptID {
			removed = append(removed, p)
			continue
		}
		kept = append(kept, p)
	}
	inv.Payments = kept
	return removed
}

// Validate checks invoice invariants prior to persistence.
func (inv *Invoice) Validate() error {
	if inv.PropertyID == "" {
		return NewValidationError("propertyId", "cannot be empty")
	}
	if len(inv.Charges) == 0 {
		return NewValidationError("charges", "invoice must have at least one charge line")
	}
	for _, c := range inv.Charges {
		switch c.Type {
		case ChargeTypeCAM, ChargeTypeElectricity, ChargeTypeRent, ChargeTypeCustom:
		default:
			return NewValidationError("charges", "unknown charge type %q", c.Type)
		}
		if c.Amount.IsNegative() || c.Arrears.IsNegative() {
			return NewValidationError("charges", "%s line cannot be negative", c.Type)
		}
	}
	if inv.PeriodTo.Before(inv.PeriodFrom) {
		return NewValidationError("period", "period end precedes period start")
	}
	if inv.CreatedBy == "" {
		return NewValidationError("createdBy", "acting principal is required")
	}
	return nil
}

// Invoice number prefixes by charge mix.
var invoicePrefixes = map[string]string{
	ChargeTypeCAM:         "CMC",
	ChargeTypeElectricity: "ELC",
	ChargeTypeRent:        "REN",
}

// FormatInvoiceNumber renders INV-<CMC|ELC|REN|MIX>-YYYY-MM-NNNN, with a
// -M<n> suffix for the second and later meters of a multi-meter property.
func FormatInvoiceNumber(chargeTypes []string, period time.Time, serial int64, meterIndex int) string {
	prefix := "MIX"
	if len(chargeTypes) == 1 {
		if p, ok := invoicePrefixes[chargeTypes[0]]; ok {
			prefix = p
		}
	}
	n := fmt.Sprintf("INV-%s-%04d-%02d-%04d", prefix, period.Year(), int(period.Month()), serial)
	if meterIndex > 1 {
		n = fmt.Sprintf("%s-M%d", n, meterIndex)
	}
	return n
}

// FormatBillNumber renders the per-stream bill numbers: CAM-YYYY-MM-NNNN,
// ELEC-YYYY-MM-NNNN, RCT-YYYY-MM-NNNN. NNNN is the property serial so the
// number reads as "this property, this month".
func FormatBillNumber(prefix string, period time.Time, serial int64) string {
	return fmt.Sprintf("%s-%04d-%02d-%04d", prefix, period.Year(), int(period.Month()), serial)
}

// FormatMeterBillNumber is FormatBillNumber with a -M<n> suffix for the
// second and later meters of a multi-meter property, keeping per-meter bill
// numbers unique within a period.
func FormatMeterBillNumber(prefix string, period time.Time, serial int64, meterIndex int) string {
	n := FormatBillNumber(prefix, period, serial)
	if meterIndex > 1 {
		n = fmt.Sprintf("%s-M%d", n, meterIndex)
	}
	return n
}
