package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
)

// ArrearsResolver computes the carried-forward balance for a new billing
// period by summing the outstanding balances of earlier unpaid invoices.
// Only invoices still linked to a live charge record count; a deleted bill's
// invoice never resurrects as phantom arrears. Surcharges already included
// in an old invoice's balance carry forward as-is and are never surcharged
// again.
type ArrearsResolver struct {
	invoiceRepo InvoiceRepository
}

// NewArrearsResolver creates a new ArrearsResolver.
func NewArrearsResolver(invoiceRepo InvoiceRepository) *ArrearsResolver {
	return &ArrearsResolver{invoiceRepo: invoiceRepo}
}

// Resolve returns the outstanding amount attributable to one charge stream
// of a property, for periods ending before the given date. meterNumber
// narrows electricity arrears to a single meter; empty matches any.
//
// An invoice mixing several charge streams apportions its outstanding
// balance across its lines in proportion to each line's share of the grand
// total, so a partial payment reduces every stream's arrears fairly instead
// of whichever stream happens to be listed first.
func (r *ArrearsResolver) Resolve(ctx context.Context, propertyID, chargeType, meterNumber string, before time.Time) (decimal.Decimal, error) {
	invoices, err := r.invoiceRepo.ListUnpaidByProperty(ctx, propertyID, chargeType, before)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, inv := range invoices {
		if chargeType == domain.ChargeTypeElectricity && meterNumber != "" &&
			inv.MeterNumber != "" && inv.MeterNumber != meterNumber {
			continue
		}
		if inv.Balance.LessThanOrEqual(decimal.Zero) {
			continue
		}
		total = total.Add(r.share(inv, chargeType))
	}
	return total.Round(2), nil
}

// share apportions an invoice's outstanding balance to one charge stream.
func (r *ArrearsResolver) share(inv *domain.Invoice, chargeType string) decimal.Decimal {
	streamTotal := decimal.Zero
	allTotal := decimal.Zero
	for _, c := range inv.Charges {
		t := c.Total()
		allTotal = allTotal.Add(t)
		if c.Type == chargeType {
			streamTotal = streamTotal.Add(t)
		}
	}
	if allTotal.IsZero() || streamTotal.IsZero() {
		return decimal.Zero
	}
	if streamTotal.Equal(allTotal) {
		return inv.Balance
	}
	return inv.Balance.Mul(streamTotal).Div(allTotal).Round(2)
}
