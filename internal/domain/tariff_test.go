package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTariffVersion() *TariffVersion {
	return &TariffVersion{
		Version: 1,
		CAMSlabs: []CAMSlab{
			{SizeLabel: "4M", ZoneType: ZoneTypeResidential, Amount: decimal.NewFromInt(3500)},
			{SizeLabel: "1K", ZoneType: ZoneTypeResidential, Amount: decimal.NewFromInt(7000)},
			{SizeLabel: "4M", ZoneType: ZoneTypeCommercial, Amount: decimal.NewFromInt(5000)},
		},
		ElectricitySlabs: []ElectricitySlab{
			{Lower: 0, Upper: 200, UnitRate: decimal.NewFromInt(10), Label: "0-200"},
			{Lower: 201, Upper: 400, UnitRate: decimal.NewFromInt(14), Label: "201-400"},
			{Lower: 401, Upper: 700, UnitRate: decimal.NewFromInt(18), Label: "401-700"},
		},
	}
}

func TestTariffVersion_CAMRateFor(t *testing.T) {
	v := testTariffVersion()

	tests := []struct {
		name      string
		sizeLabel string
		zoneType  string
		want      string
		wantMatch bool
	}{
		{"residential 4 marla", "4M", ZoneTypeResidential, "3500", true},
		{"commercial 4 marla", "4M", ZoneTypeCommercial, "5000", true},
		{"residential kanal", "1K", ZoneTypeResidential, "7000", true},
		{"unknown size", "9M", ZoneTypeResidential, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := v.CAMRateFor(tt.sizeLabel, tt.zoneType)
			require.Equal(t, tt.wantMatch, ok)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"expected %s, got %s", tt.want, got)
		})
	}
}

func TestTariffVersion_ElectricityRateFor(t *testing.T) {
	v := testTariffVersion()

	tests := []struct {
		name      string
		units     int64
		wantRate  string
		wantLabel string
	}{
		{"lower bound inclusive", 0, "10", "0-200"},
		{"upper bound inclusive", 200, "10", "0-200"},
		{"next slab lower bound", 201, "14", "201-400"},
		{"mid slab", 550, "18", "401-700"},
		{"above top slab uses top rate", 1500, "18", "401-700"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slab, ok := v.ElectricityRateFor(tt.units)
			require.True(t, ok, "expected a slab match for %d units", tt.units)
			assert.True(t, slab.UnitRate.Equal(decimal.RequireFromString(tt.wantRate)),
				"rate: expected %s, got %s", tt.wantRate, slab.UnitRate)
			assert.Equal(t, tt.wantLabel, slab.Label)
		})
	}
}

func TestTariffVersion_ElectricityRateFor_NoSlabs(t *testing.T) {
	v := &TariffVersion{}
	_, ok := v.ElectricityRateFor(100)
	assert.False(t, ok, "expected no match with empty slab table")
}

func TestProperty_SizeLabel(t *testing.T) {
	tests := []struct {
		name string
		area string
		unit string
		want string
	}{
		{"four marla", "4", AreaUnitMarla, "4M"},
		{"fractional marla", "4.5", AreaUnitMarla, "4.5M"},
		{"one kanal", "1", AreaUnitKanal, "1K"},
		{"zero area", "0", AreaUnitMarla, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Property{AreaValue: decimal.RequireFromString(tt.area), AreaUnit: tt.unit}
			assert.Equal(t, tt.want, p.SizeLabel())
		})
	}
}
