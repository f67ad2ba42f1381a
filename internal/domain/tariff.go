package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Zone types for CAM slabs.
const (
	ZoneTypeResidential = "residential"
	ZoneTypeCommercial  = "commercial"
)

// CAMSlab maps a property size label (e.g. "4M", "1K") within a zone to a
// flat monthly common-area-maintenance amount.
type CAMSlab struct {
	SizeLabel string
	ZoneType  string
	Amount    decimal.Decimal
}

// ElectricitySlab is a consumption band with its per-unit rate. Bounds are a
// closed interval [Lower, Upper]; the highest slab is open-ended upward.
type ElectricitySlab struct {
	Lower    int64
	Upper    int64
	UnitRate decimal.Decimal
	FixRate  decimal.Decimal
	Label    string
}

// TariffVersion is one immutable snapshot of the full slab configuration.
// Activating new tariffs appends a version with a later EffectiveFrom rather
// than mutating the previous one, so historical bills can always be audited
// against the rates in force when they were issued.
type TariffVersion struct {
	ID               string
	Version          int64
	EffectiveFrom    time.Time
	CAMSlabs         []CAMSlab
	ElectricitySlabs []ElectricitySlab
	CreatedBy        string
	CreatedAt        time.Time
}

// CAMRateFor looks up the flat CAM amount for a size label and zone. The
// second return reports whether a slab matched.
func (v *TariffVersion) CAMRateFor(sizeLabel, zoneType string) (decimal.Decimal, bool) {
	for _, s := range v.CAMSlabs {
		if s.SizeLabel == sizeLabel && (s.ZoneType == zoneType || s.ZoneType == "") {
			return s.Amount, true
		}
	}
	return decimal.Zero, false
}

// ElectricityRateFor resolves the slab covering the consumed units.
// Consumption above the highest configured bound uses the highest slab.
func (v *TariffVersion) ElectricityRateFor(units int64) (ElectricitySlab, bool) {
	var top ElectricitySlab
	haveTop := false
	for _, s := range v.ElectricitySlabs {
		if units >= s.Lower && units <= s.Upper {
			return s, true
		}
		if !haveTop || s.Upper > top.Upper {
			top = s
			haveTop = true
		}
	}
	if haveTop && units > top.Upper {
		return top, true
	}
	return ElectricitySlab{}, false
}

// Validate checks slab table consistency before a version is activated.
func (v *TariffVersion) Validate() error {
	for _, s := range v.CAMSlabs {
		if s.SizeLabel == "" {
			return NewValidationError("camSlabs", "size label cannot be empty")
		}
		if s.Amount.IsNegative() {
			return NewValidationError("camSlabs", "amount for %s cannot be negative", s.SizeLabel)
		}
	}
	for _, s := range v.ElectricitySlabs {
		if s.Lower < 0 || s.Upper < s.Lower {
			return NewValidationError("electricitySlabs", "invalid bounds [%d, %d]", s.Lower, s.Upper)
		}
		if s.UnitRate.IsNegative() {
			return NewValidationError("electricitySlabs", "unit rate for %s cannot be negative", s.Label)
		}
	}
	return nil
}
