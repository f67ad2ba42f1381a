package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
)

func TestCreatePropertyRequestToUseCaseInput(t *testing.T) {
	req := CreatePropertyRequest{
		Name:      "House 12",
		OwnerName: "Asad Khan",
		AreaValue: "4",
		AreaUnit:  domain.AreaUnitMarla,
		Meters: []MeterItem{
			{MeterNumber: "MTR-100", Floor: "Ground"},
			{MeterNumber: "MTR-101", Floor: "First"},
		},
		Rental: &RentalItem{
			MonthlyRent: decimal.NewFromInt(25000),
			StartDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Active:      true,
		},
	}

	input := req.ToUseCaseInput("admin")

	if input.Actor != "admin" {
		t.Fatalf("expected actor to be set, got %q", input.Actor)
	}
	if len(input.Meters) != 2 || input.Meters[1].MeterNumber != "MTR-101" {
		t.Fatalf("meters did not convert: %+v", input.Meters)
	}
	if input.Rental == nil || !input.Rental.MonthlyRent.Equal(decimal.NewFromInt(25000)) {
		t.Fatalf("rental did not convert: %+v", input.Rental)
	}
}

func TestUpdatePropertyRequestLeavesAbsentFieldsNil(t *testing.T) {
	name := "Renamed"
	req := UpdatePropertyRequest{Name: &name}

	input := req.ToUseCaseInput("prop-1", "admin")

	if input.PropertyID != "prop-1" {
		t.Fatalf("expected property ID to pass through, got %q", input.PropertyID)
	}
	if input.Name == nil || *input.Name != "Renamed" {
		t.Fatalf("expected name pointer to carry, got %v", input.Name)
	}
	if input.OwnerName != nil || input.AreaValue != nil {
		t.Fatalf("expected absent fields to stay nil")
	}
}

func TestActivateTariffRequestToUseCaseInput(t *testing.T) {
	req := ActivateTariffRequest{
		EffectiveFrom: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		CAMSlabs: []CAMSlabItem{
			{SizeLabel: "4M", ZoneType: domain.ZoneTypeResidential, Amount: decimal.NewFromInt(1500)},
		},
		ElectricitySlabs: []ElectricitySlabItem{
			{Lower: 0, Upper: 100, UnitRate: decimal.RequireFromString("22.5"), Label: "0-100"},
		},
	}

	input := req.ToUseCaseInput("admin")

	if len(input.CAMSlabs) != 1 || input.CAMSlabs[0].SizeLabel != "4M" {
		t.Fatalf("CAM slabs did not convert: %+v", input.CAMSlabs)
	}
	if len(input.ElectricitySlabs) != 1 || input.ElectricitySlabs[0].Upper != 100 {
		t.Fatalf("electricity slabs did not convert: %+v", input.ElectricitySlabs)
	}
}

func TestCreateElectricityBillRequestMonthConversion(t *testing.T) {
	prev := int64(1200)
	req := CreateElectricityBillRequest{
		PropertyID:      "prop-1",
		MeterNumber:     "MTR-100",
		Year:            2025,
		Month:           3,
		CurrentReading:  1450,
		PreviousReading: &prev,
	}

	input := req.ToUseCaseInput("billing-clerk")

	if input.Month != time.March {
		t.Fatalf("expected March, got %v", input.Month)
	}
	if input.PreviousReading == nil || *input.PreviousReading != 1200 {
		t.Fatalf("previous reading did not carry: %v", input.PreviousReading)
	}
}

func TestUpsertChargeRequestDerivesPeriod(t *testing.T) {
	req := UpsertChargeRequest{
		PropertyID: "prop-1",
		Year:       2025,
		Month:      2,
		Type:       domain.ChargeTypeRent,
		Amount:     decimal.NewFromInt(25000),
	}

	input := req.ToUseCaseInput("admin")

	if input.Month != "Feb-25" {
		t.Fatalf("expected month label Feb-25, got %q", input.Month)
	}
	if !input.PeriodFrom.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected period start: %v", input.PeriodFrom)
	}
	if !input.PeriodTo.Equal(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected period end: %v", input.PeriodTo)
	}
	if input.Line.Type != domain.ChargeTypeRent {
		t.Fatalf("charge line did not convert: %+v", input.Line)
	}
}

func TestPayRequestConvertsDepositUsages(t *testing.T) {
	req := PayRequest{
		Amount: decimal.NewFromInt(5000),
		DepositUsages: []DepositUsageItem{
			{DepositID: "dep-1", Amount: decimal.NewFromInt(3000)},
			{DepositID: "dep-2", Amount: decimal.NewFromInt(2000)},
		},
	}

	input := req.ToUseCaseInput("res-1", "clerk")

	if input.ResidentID != "res-1" || input.Actor != "clerk" {
		t.Fatalf("identity did not carry: %+v", input)
	}
	if len(input.DepositUsages) != 2 || input.DepositUsages[0].DepositID != "dep-1" {
		t.Fatalf("deposit usages did not convert: %+v", input.DepositUsages)
	}
}

func TestPostReceiptRequestConvertsAllocations(t *testing.T) {
	req := PostReceiptRequest{
		ResidentID: "res-1",
		Amount:     decimal.NewFromInt(10000),
		Allocations: []AllocationItem{
			{InvoiceID: "inv-1", Amount: decimal.NewFromInt(6000)},
			{InvoiceID: "inv-2", Amount: decimal.NewFromInt(4000)},
		},
	}

	input := req.ToUseCaseInput("cashier")

	if len(input.Allocations) != 2 || input.Allocations[1].InvoiceID != "inv-2" {
		t.Fatalf("allocations did not convert: %+v", input.Allocations)
	}
}
