package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Property types
const (
	PropertyTypeResidential = "residential"
	PropertyTypeCommercial  = "commercial"
)

// Area units
const (
	AreaUnitMarla = "Marla"
	AreaUnitKanal = "Kanal"
)

// Meter is an electricity meter installed at a property. A property may have
// several meters (one per floor or unit); each meter is billed separately.
type Meter struct {
	MeterNumber    string
	Floor          string
	ConnectionType string
}

// RentalAgreement links a property to a monthly rent charge stream.
type RentalAgreement struct {
	MonthlyRent decimal.Decimal
	StartDate   time.Time
	EndDate     *time.Time
	Active      bool
}

// Property is a billable unit (plot or building). The serial number is
// assigned once from a sequence and never reused.
type Property struct {
	ID           string
	Serial       int64
	Name         string
	PlotNumber   string
	Sector       string
	Block        string
	FullAddress  string
	OwnerName    string
	AreaValue    decimal.Decimal
	AreaUnit     string
	PropertyType string
	ResidentID   *string
	Meters       []Meter
	Rental       *RentalAgreement
	Active       bool
	CreatedBy    string
	UpdatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SizeLabel derives the slab label used by CAM tariff tables, e.g. a
// 4 Marla plot yields "4M" and a 1 Kanal plot yields "1K".
func (p *Property) SizeLabel() string {
	if p.AreaValue.IsZero() {
		return ""
	}
	suffix := ""
	switch p.AreaUnit {
	case AreaUnitMarla:
		suffix = "M"
	case AreaUnitKanal:
		suffix = "K"
	default:
		if p.AreaUnit != "" {
			suffix = strings.ToUpper(p.AreaUnit[:1])
		}
	}
	return p.AreaValue.String() + suffix
}

// MeterByNumber returns the meter with the given number, if present.
func (p *Property) MeterByNumber(meterNumber string) (Meter, bool) {
	for _, m := range p.Meters {
		if m.MeterNumber == meterNumber {
			return m, true
		}
	}
	return Meter{}, false
}

// Validate checks the identity fields required before a property can be
// billed.
func (p *Property) Validate() error {
	if err := ValidateName("name", p.Name); err != nil {
		return err
	}
	if p.AreaValue.IsNegative() {
		return NewValidationError("areaValue", "cannot be negative")
	}
	seen := make(map[string]bool, len(p.Meters))
	for _, m := range p.Meters {
		if m.MeterNumber == "" {
			return NewValidationError("meters", "meter number cannot be empty")
		}
		if seen[m.MeterNumber] {
			return NewValidationError("meters", "duplicate meter number %s", m.MeterNumber)
		}
		seen[m.MeterNumber] = true
	}
	return nil
}
