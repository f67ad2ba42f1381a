package usecase_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
)

// issuedInvoice builds a current-period invoice with one CAM line and a due
// date safely in the future, derived fields computed.
func issuedInvoice(id string, amount int64) *domain.Invoice {
	now := time.Now().UTC()
	inv := &domain.Invoice{
		ID:         id,
		Serial:     1,
		PropertyID: "prop-1",
		Month:      domain.MonthLabel(now),
		PeriodFrom: now.AddDate(0, 0, -20),
		PeriodTo:   now,
		DueDate:    now.AddDate(0, 0, 15),
		Charges: []domain.ChargeLine{
			{Type: domain.ChargeTypeCAM, Amount: decimal.NewFromInt(amount)},
		},
		Status:    domain.InvoiceStatusIssued,
		CreatedBy: "user-1",
	}
	inv.RecomputeDerived(now, 0)
	return inv
}
