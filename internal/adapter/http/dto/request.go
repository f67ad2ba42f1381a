package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

// MeterItem represents a meter in property requests.
type MeterItem struct {
	MeterNumber    string `json:"meter_number"`
	Floor          string `json:"floor,omitempty"`
	ConnectionType string `json:"connection_type,omitempty"`
}

// RentalItem represents a rental agreement in property requests.
type RentalItem struct {
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Active      bool            `json:"active"`
}

func metersToDomain(items []MeterItem) []domain.Meter {
	if len(items) == 0 {
		return nil
	}
	meters := make([]domain.Meter, len(items))
	for i, m := range items {
		meters[i] = domain.Meter{
			MeterNumber:    m.MeterNumber,
			Floor:          m.Floor,
			ConnectionType: m.ConnectionType,
		}
	}
	return meters
}

func rentalToDomain(item *RentalItem) *domain.RentalAgreement {
	if item == nil {
		return nil
	}
	return &domain.RentalAgreement{
		MonthlyRent: item.MonthlyRent,
		StartDate:   item.StartDate,
		EndDate:     item.EndDate,
		Active:      item.Active,
	}
}

// CreatePropertyRequest represents a request to register a property.
type CreatePropertyRequest struct {
	Name         string      `json:"name"`
	PlotNumber   string      `json:"plot_number,omitempty"`
	Sector       string      `json:"sector,omitempty"`
	Block        string      `json:"block,omitempty"`
	FullAddress  string      `json:"full_address,omitempty"`
	OwnerName    string      `json:"owner_name,omitempty"`
	AreaValue    string      `json:"area_value,omitempty"`
	AreaUnit     string      `json:"area_unit,omitempty"`
	PropertyType string      `json:"property_type,omitempty"`
	Meters       []MeterItem `json:"meters,omitempty"`
	Rental       *RentalItem `json:"rental,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePropertyRequest) ToUseCaseInput(actor string) usecase.CreatePropertyInput {
	return usecase.CreatePropertyInput{
		Name:         r.Name,
		PlotNumber:   r.PlotNumber,
		Sector:       r.Sector,
		Block:        r.Block,
		FullAddress:  r.FullAddress,
		OwnerName:    r.OwnerName,
		AreaValue:    r.AreaValue,
		AreaUnit:     r.AreaUnit,
		PropertyType: r.PropertyType,
		Meters:       metersToDomain(r.Meters),
		Rental:       rentalToDomain(r.Rental),
		Actor:        actor,
	}
}

// UpdatePropertyRequest represents a partial edit to a property. Absent
// fields are left unchanged.
type UpdatePropertyRequest struct {
	Name         *string     `json:"name,omitempty"`
	PlotNumber   *string     `json:"plot_number,omitempty"`
	Sector       *string     `json:"sector,omitempty"`
	Block        *string     `json:"block,omitempty"`
	FullAddress  *string     `json:"full_address,omitempty"`
	OwnerName    *string     `json:"owner_name,omitempty"`
	AreaValue    *string     `json:"area_value,omitempty"`
	AreaUnit     *string     `json:"area_unit,omitempty"`
	PropertyType *string     `json:"property_type,omitempty"`
	Meters       []MeterItem `json:"meters,omitempty"`
	Rental       *RentalItem `json:"rental,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdatePropertyRequest) ToUseCaseInput(propertyID, actor string) usecase.UpdatePropertyInput {
	return usecase.UpdatePropertyInput{
		PropertyID:   propertyID,
		Name:         r.Name,
		PlotNumber:   r.PlotNumber,
		Sector:       r.Sector,
		Block:        r.Block,
		FullAddress:  r.FullAddress,
		OwnerName:    r.OwnerName,
		AreaValue:    r.AreaValue,
		AreaUnit:     r.AreaUnit,
		PropertyType: r.PropertyType,
		Meters:       metersToDomain(r.Meters),
		Rental:       rentalToDomain(r.Rental),
		Actor:        actor,
	}
}

// CreateResidentRequest represents a request to register a resident.
type CreateResidentRequest struct {
	Name          string   `json:"name"`
	CNIC          string   `json:"cnic,omitempty"`
	ContactNumber string   `json:"contact_number,omitempty"`
	Email         string   `json:"email,omitempty"`
	AccountType   string   `json:"account_type,omitempty"`
	PropertyIDs   []string `json:"property_ids,omitempty"`
	Suspense      bool     `json:"suspense,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateResidentRequest) ToUseCaseInput(actor string) usecase.CreateResidentInput {
	return usecase.CreateResidentInput{
		Name:          r.Name,
		CNIC:          r.CNIC,
		ContactNumber: r.ContactNumber,
		Email:         r.Email,
		AccountType:   r.AccountType,
		PropertyIDs:   r.PropertyIDs,
		Suspense:      r.Suspense,
		Actor:         actor,
	}
}

// UpdateResidentRequest represents a partial edit to a resident.
type UpdateResidentRequest struct {
	Name          *string  `json:"name,omitempty"`
	CNIC          *string  `json:"cnic,omitempty"`
	ContactNumber *string  `json:"contact_number,omitempty"`
	Email         *string  `json:"email,omitempty"`
	AccountType   *string  `json:"account_type,omitempty"`
	PropertyIDs   []string `json:"property_ids,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateResidentRequest) ToUseCaseInput(residentID, actor string) usecase.UpdateResidentInput {
	return usecase.UpdateResidentInput{
		ResidentID:    residentID,
		Name:          r.Name,
		CNIC:          r.CNIC,
		ContactNumber: r.ContactNumber,
		Email:         r.Email,
		AccountType:   r.AccountType,
		PropertyIDs:   r.PropertyIDs,
		Actor:         actor,
	}
}

// CAMSlabItem is one CAM slab row in a tariff activation request.
type CAMSlabItem struct {
	SizeLabel string          `json:"size_label"`
	ZoneType  string          `json:"zone_type,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

// ElectricitySlabItem is one consumption band in a tariff activation request.
type ElectricitySlabItem struct {
	Lower    int64           `json:"lower"`
	Upper    int64           `json:"upper"`
	UnitRate decimal.Decimal `json:"unit_rate"`
	FixRate  decimal.Decimal `json:"fix_rate,omitempty"`
	Label    string          `json:"label,omitempty"`
}

// ActivateTariffRequest represents a new tariff version to put in force.
type ActivateTariffRequest struct {
	EffectiveFrom    time.Time             `json:"effective_from"`
	CAMSlabs         []CAMSlabItem         `json:"cam_slabs,omitempty"`
	ElectricitySlabs []ElectricitySlabItem `json:"electricity_slabs,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ActivateTariffRequest) ToUseCaseInput(actor string) usecase.ActivateInput {
	camSlabs := make([]domain.CAMSlab, len(r.CAMSlabs))
	for i, s := range r.CAMSlabs {
		camSlabs[i] = domain.CAMSlab{SizeLabel: s.SizeLabel, ZoneType: s.ZoneType, Amount: s.Amount}
	}
	elecSlabs := make([]domain.ElectricitySlab, len(r.ElectricitySlabs))
	for i, s := range r.ElectricitySlabs {
		elecSlabs[i] = domain.ElectricitySlab{
			Lower:    s.Lower,
			Upper:    s.Upper,
			UnitRate: s.UnitRate,
			FixRate:  s.FixRate,
			Label:    s.Label,
		}
	}
	return usecase.ActivateInput{
		EffectiveFrom:    r.EffectiveFrom,
		CAMSlabs:         camSlabs,
		ElectricitySlabs: elecSlabs,
		Actor:            actor,
	}
}

// CreateCAMChargeRequest represents a request to bill one property's CAM for
// one month.
type CreateCAMChargeRequest struct {
	PropertyID     string           `json:"property_id"`
	Year           int              `json:"year"`
	Month          int              `json:"month"`
	AmountOverride *decimal.Decimal `json:"amount_override,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCAMChargeRequest) ToUseCaseInput(actor string) usecase.CreateCAMChargeInput {
	return usecase.CreateCAMChargeInput{
		PropertyID:     r.PropertyID,
		Year:           r.Year,
		Month:          time.Month(r.Month),
		AmountOverride: r.AmountOverride,
		Actor:          actor,
	}
}

// UpdateCAMChargeRequest represents a manual amount correction.
type UpdateCAMChargeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// BulkCAMChargeRequest represents a request to bill every property for one
// month.
type BulkCAMChargeRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// CreateElectricityBillRequest represents a request to bill one meter's
// consumption for one month.
type CreateElectricityBillRequest struct {
	PropertyID      string `json:"property_id"`
	MeterNumber     string `json:"meter_number"`
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	CurrentReading  int64  `json:"current_reading"`
	PreviousReading *int64 `json:"previous_reading,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateElectricityBillRequest) ToUseCaseInput(actor string) usecase.CreateElectricityBillInput {
	return usecase.CreateElectricityBillInput{
		PropertyID:      r.PropertyID,
		MeterNumber:     r.MeterNumber,
		Year:            r.Year,
		Month:           time.Month(r.Month),
		CurrentReading:  r.CurrentReading,
		PreviousReading: r.PreviousReading,
		Actor:           actor,
	}
}

// CorrectElectricityBillRequest represents a reading correction on an
// existing bill.
type CorrectElectricityBillRequest struct {
	PreviousReading int64 `json:"previous_reading"`
	CurrentReading  int64 `json:"current_reading"`
}

// MeterReadingItem is one meter reading in a bulk billing request.
type MeterReadingItem struct {
	PropertyID     string `json:"property_id"`
	MeterNumber    string `json:"meter_number"`
	CurrentReading int64  `json:"current_reading"`
}

// BulkElectricityRequest represents a request to bill a batch of meter
// readings.
type BulkElectricityRequest struct {
	Year     int                `json:"year"`
	Month    int                `json:"month"`
	Readings []MeterReadingItem `json:"readings"`
}

// ToReadings converts the request items to use case readings.
func (r *BulkElectricityRequest) ToReadings() []usecase.BulkReading {
	readings := make([]usecase.BulkReading, len(r.Readings))
	for i, item := range r.Readings {
		readings[i] = usecase.BulkReading{
			PropertyID:     item.PropertyID,
			MeterNumber:    item.MeterNumber,
			CurrentReading: item.CurrentReading,
		}
	}
	return readings
}

// UpsertChargeRequest attaches a manual charge line (rent, custom) to the
// invoice for a property and period.
type UpsertChargeRequest struct {
	PropertyID  string          `json:"property_id"`
	MeterNumber string          `json:"meter_number,omitempty"`
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Arrears     decimal.Decimal `json:"arrears,omitempty"`
	SourceID    string          `json:"source_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpsertChargeRequest) ToUseCaseInput(actor string) usecase.UpsertChargeInput {
	periodFrom, periodTo := domain.BillPeriod(r.Year, time.Month(r.Month))
	return usecase.UpsertChargeInput{
		PropertyID:  r.PropertyID,
		MeterNumber: r.MeterNumber,
		Month:       domain.MonthLabel(periodFrom),
		PeriodFrom:  periodFrom,
		PeriodTo:    periodTo,
		Line: domain.ChargeLine{
			Type:        r.Type,
			Description: r.Description,
			Amount:      r.Amount,
			Arrears:     r.Arrears,
			SourceID:    r.SourceID,
		},
		Actor: actor,
	}
}

// RecordPaymentRequest represents a payment recorded directly on an invoice.
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Date      *time.Time      `json:"date,omitempty"`
	Method    string          `json:"method,omitempty"`
	Bank      string          `json:"bank,omitempty"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordPaymentRequest) ToUseCaseInput(invoiceID, actor string) usecase.RecordPaymentInput {
	date := time.Now().UTC()
	if r.Date != nil {
		date = *r.Date
	}
	return usecase.RecordPaymentInput{
		InvoiceID: invoiceID,
		Amount:    r.Amount,
		Date:      date,
		Method:    r.Method,
		Bank:      r.Bank,
		Reference: r.Reference,
		Notes:     r.Notes,
		Actor:     actor,
	}
}

// AllocationItem assigns part of a receipt to one invoice.
type AllocationItem struct {
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// PostReceiptRequest represents a request to post a receipt.
type PostReceiptRequest struct {
	ResidentID  string           `json:"resident_id,omitempty"`
	PropertyID  string           `json:"property_id,omitempty"`
	Amount      decimal.Decimal  `json:"amount"`
	Allocations []AllocationItem `json:"allocations,omitempty"`
	Method      string           `json:"method,omitempty"`
	Bank        string           `json:"bank,omitempty"`
	Reference   string           `json:"reference,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	ReceivedAt  *time.Time       `json:"received_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *PostReceiptRequest) ToUseCaseInput(actor string) usecase.PostReceiptInput {
	allocations := make([]domain.Allocation, len(r.Allocations))
	for i, a := range r.Allocations {
		allocations[i] = domain.Allocation{InvoiceID: a.InvoiceID, Amount: a.Amount}
	}
	return usecase.PostReceiptInput{
		ResidentID:  r.ResidentID,
		PropertyID:  r.PropertyID,
		Amount:      r.Amount,
		Allocations: allocations,
		Method:      r.Method,
		Bank:        r.Bank,
		Reference:   r.Reference,
		Notes:       r.Notes,
		ReceivedAt:  r.ReceivedAt,
		Actor:       actor,
	}
}

// DepositRequest represents a deposit to a resident's balance.
type DepositRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Bank          string          `json:"bank,omitempty"`
	ExternalRef   string          `json:"external_ref"`
	DepositDate   *time.Time      `json:"deposit_date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *DepositRequest) ToUseCaseInput(residentID, actor string) usecase.DepositInput {
	return usecase.DepositInput{
		ResidentID:    residentID,
		Amount:        r.Amount,
		Description:   r.Description,
		PaymentMethod: r.PaymentMethod,
		Bank:          r.Bank,
		ExternalRef:   r.ExternalRef,
		DepositDate:   r.DepositDate,
		Actor:         actor,
	}
}

// DepositUsageItem links part of a payment to the deposit that funded it.
type DepositUsageItem struct {
	DepositID string          `json:"deposit_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// PayRequest represents a bill payment from a resident's balance.
type PayRequest struct {
	Amount        decimal.Decimal    `json:"amount"`
	ReferenceType string             `json:"reference_type,omitempty"`
	ReferenceID   string             `json:"reference_id,omitempty"`
	ReferenceNo   string             `json:"reference_no,omitempty"`
	Description   string             `json:"description,omitempty"`
	PaymentMethod string             `json:"payment_method,omitempty"`
	Bank          string             `json:"bank,omitempty"`
	ExternalRef   string             `json:"external_ref,omitempty"`
	PaymentDate   *time.Time         `json:"payment_date,omitempty"`
	DepositUsages []DepositUsageItem `json:"deposit_usages,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *PayRequest) ToUseCaseInput(residentID, actor string) usecase.PayInput {
	usages := make([]domain.DepositUsage, len(r.DepositUsages))
	for i, u := range r.DepositUsages {
		usages[i] = domain.DepositUsage{DepositID: u.DepositID, Amount: u.Amount}
	}
	return usecase.PayInput{
		ResidentID:    residentID,
		Amount:        r.Amount,
		ReferenceType: r.ReferenceType,
		ReferenceID:   r.ReferenceID,
		ReferenceNo:   r.ReferenceNo,
		Description:   r.Description,
		PaymentMethod: r.PaymentMethod,
		Bank:          r.Bank,
		ExternalRef:   r.ExternalRef,
		PaymentDate:   r.PaymentDate,
		DepositUsages: usages,
		Actor:         actor,
	}
}

// TransferRequest represents a balance transfer between residents.
type TransferRequest struct {
	ToResidentID string          `json:"to_resident_id"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput(fromResidentID, actor string) usecase.TransferInput {
	return usecase.TransferInput{
		FromResidentID: fromResidentID,
		ToResidentID:   r.ToResidentID,
		Amount:         r.Amount,
		Description:    r.Description,
		Actor:          actor,
	}
}

// UpdateDepositRequest represents a partial edit to a deposit transaction.
type UpdateDepositRequest struct {
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Description   *string          `json:"description,omitempty"`
	PaymentMethod *string          `json:"payment_method,omitempty"`
	Bank          *string          `json:"bank,omitempty"`
	ExternalRef   *string          `json:"external_ref,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateDepositRequest) ToUseCaseInput(residentID, transactionID, actor string) usecase.UpdateDepositInput {
	return usecase.UpdateDepositInput{
		ResidentID:    residentID,
		TransactionID: transactionID,
		Amount:        r.Amount,
		Description:   r.Description,
		PaymentMethod: r.PaymentMethod,
		Bank:          r.Bank,
		ExternalRef:   r.ExternalRef,
		Actor:         actor,
	}
}

// TransferSuspenseRequest moves a suspense deposit to an identified resident.
type TransferSuspenseRequest struct {
	TargetResidentID string `json:"target_resident_id"`
}
