package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeElectricityCharges(t *testing.T) {
	tests := []struct {
		name          string
		previous      int64
		current       int64
		unitRate      decimal.Decimal
		wantEnergy    string
		wantFuel      string
		wantGST       string
		wantDuty      string
		wantTotal     string
		wantUnits     int64
	}{
		{
			name:       "120 units at rate 10",
			previous:   1000,
			current:    1120,
			unitRate:   decimal.NewFromInt(10),
			wantUnits:  120,
			wantEnergy: "1200",
			wantFuel:   "384",
			wantGST:    "216",
			wantDuty:   "23.76",
			wantTotal:  "1824",
		},
		{
			name:       "zero consumption",
			previous:   500,
			current:    500,
			unitRate:   decimal.NewFromInt(10),
			wantUnits:  0,
			wantEnergy: "0",
			wantFuel:   "0",
			wantGST:    "0",
			wantDuty:   "0",
			wantTotal:  "0",
		},
		{
			name:       "fractional rate rounds intermediates",
			previous:   0,
			current:    333,
			unitRate:   decimal.RequireFromString("7.77"),
			wantUnits:  333,
			wantEnergy: "2587.41",
			wantFuel:   "1065.6",
			wantGST:    "465.73",
			wantDuty:   "54.8",
			wantTotal:  "4174",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeElectricityCharges(tt.previous, tt.current, tt.unitRate, decimal.Zero)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.UnitsConsumed != tt.wantUnits {
				t.Errorf("units: expected %d, got %d", tt.wantUnits, got.UnitsConsumed)
			}
			check := func(field, want string, have decimal.Decimal) {
				if !have.Equal(decimal.RequireFromString(want)) {
					t.Errorf("%s: expected %s, got %s", field, want, have)
				}
			}
			check("energyCost", tt.wantEnergy, got.EnergyCost)
			check("fuelSurcharge", tt.wantFuel, got.FuelSurcharge)
			check("gst", tt.wantGST, got.GST)
			check("duty", tt.wantDuty, got.Duty)
			check("total", tt.wantTotal, got.Total)
		})
	}
}

func TestComputeElectricityCharges_NegativeConsumption(t *testing.T) {
	_, err := ComputeElectricityCharges(1120, 1000, decimal.NewFromInt(10), decimal.Zero)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if ve.Field != "currentReading" {
		t.Errorf("expected field currentReading, got %s", ve.Field)
	}
	// The message must name both readings so the operator can fix the entry.
	want := "current reading (1000) cannot be less than previous reading (1120)"
	if ve.Message != want {
		t.Errorf("expected message %q, got %q", want, ve.Message)
	}
}

func TestComputeElectricityCharges_MeterRentAndTVFeeStayZero(t *testing.T) {
	got, err := ComputeElectricityCharges(0, 100, decimal.NewFromInt(10), decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.MeterRent.IsZero() || !got.TVFee.IsZero() {
		t.Errorf("meter rent and tv fee must be stored as zero, got %s / %s", got.MeterRent, got.TVFee)
	}
	// total = 1000 + 320 + 180 + 19.80 = 1519.80 -> 1520; rent/fee excluded
	if !got.Total.Equal(decimal.NewFromInt(1520)) {
		t.Errorf("expected total 1520, got %s", got.Total)
	}
}
