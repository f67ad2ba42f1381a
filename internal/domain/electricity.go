package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Statutory billing rates. Each intermediate is rounded to 2 decimal places
// before the next step uses it; the final total is rounded to an integer.
var (
	FuelSurchargePerUnit = decimal.RequireFromString("3.2")
	GSTRate              = decimal.RequireFromString("0.18")
	ElectricityDutyRate  = decimal.RequireFromString("0.015")
)

// Bill statuses shared by electricity bills and CAM charges.
const (
	BillStatusUnpaid      = "unpaid"
	BillStatusPartialPaid = "partial_paid"
	BillStatusPaid        = "paid"
)

// ChargeBreakdown is the computed cost structure of one electricity billing
// cycle. MeterRent and TVFee are stored for compatibility with historical
// bills but are always zero and never enter Total.
type ChargeBreakdown struct {
	UnitsConsumed int64
	UnitRate      decimal.Decimal
	FixRate       decimal.Decimal
	EnergyCost    decimal.Decimal
	FuelSurcharge decimal.Decimal
	GST           decimal.Decimal
	Duty          decimal.Decimal
	MeterRent     decimal.Decimal
	TVFee         decimal.Decimal
	Total         decimal.Decimal
}

// ComputeElectricityCharges derives the full charge breakdown from meter
// readings and the resolved slab rate:
//
//	consumed      = current - previous        (negative rejected)
//	energyCost    = consumed * unitRate
//	fuelSurcharge = consumed * 3.2
//	gst           = energyCost * 18%
//	duty          = (energyCost + fuelSurcharge) * 1.5%
//	total         = round(energyCost + fuelSurcharge + gst + duty)
func ComputeElectricityCharges(previous, current int64, unitRate, fixRate decimal.Decimal) (ChargeBreakdown, error) {
	if current < previous {
		return ChargeBreakdown{}, NewValidationError("currentReading",
			"current reading (%d) cannot be less than previous reading (%d)", current, previous)
	}

	consumed := decimal.NewFromInt(current - previous)
	energyCost := consumed.Mul(unitRate).Round(2)
	fuelSurcharge := consumed.Mul(FuelSurchargePerUnit).Round(2)
	subtotal := energyCost.Add(fuelSurcharge)
	gst := energyCost.Mul(GSTRate).Round(2)
	duty := subtotal.Mul(ElectricityDutyRate).Round(2)
	total := subtotal.Add(gst).Add(duty).Round(0)

	return ChargeBreakdown{
		UnitsConsumed: current - previous,
		UnitRate:      unitRate,
		FixRate:       fixRate,
		EnergyCost:    energyCost,
		FuelSurcharge: fuelSurcharge,
		GST:           gst,
		Duty:          duty,
		MeterRent:     decimal.Zero,
		TVFee:         decimal.Zero,
		Total:         total,
	}, nil
}

// ElectricityBill is one billing-cycle snapshot for a single meter.
// Immutable once issued except for corrections.
type ElectricityBill struct {
	ID               string
	Serial           int64
	BillNumber       string
	PropertyID       string
	MeterNumber      string
	Month            string // "Jan-06" layout
	PeriodFrom       time.Time
	PeriodTo         time.Time
	PreviousReading  int64
	CurrentReading   int64
	Breakdown        ChargeBreakdown
	Arrears          decimal.Decimal
	TotalWithArrears decimal.Decimal
	Status           string
	CreatedBy        string
	UpdatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MonthLabel renders a period in the month format bills are keyed by.
func MonthLabel(t time.Time) string {
	return t.Format("Jan-06")
}
