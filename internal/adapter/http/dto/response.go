package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

// MeterResponse represents a meter in API responses.
type MeterResponse struct {
	MeterNumber    string `json:"meter_number"`
	Floor          string `json:"floor,omitempty"`
	ConnectionType string `json:"connection_type,omitempty"`
}

// RentalResponse represents a rental agreement in API responses.
type RentalResponse struct {
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Active      bool            `json:"active"`
}

// PropertyResponse represents a property in API responses.
type PropertyResponse struct {
	ID           string          `json:"id"`
	Serial       int64           `json:"serial"`
	Name         string          `json:"name"`
	PlotNumber   string          `json:"plot_number,omitempty"`
	Sector       string          `json:"sector,omitempty"`
	Block        string          `json:"block,omitempty"`
	FullAddress  string          `json:"full_address,omitempty"`
	OwnerName    string          `json:"owner_name,omitempty"`
	AreaValue    decimal.Decimal `json:"area_value"`
	AreaUnit     string          `json:"area_unit,omitempty"`
	SizeLabel    string          `json:"size_label,omitempty"`
	PropertyType string          `json:"property_type"`
	ResidentID   *string         `json:"resident_id,omitempty"`
	Meters       []MeterResponse `json:"meters,omitempty"`
	Rental       *RentalResponse `json:"rental,omitempty"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PropertyFromDomain converts a domain property to a response.
func PropertyFromDomain(p *domain.Property) *PropertyResponse {
	var meters []MeterResponse
	if len(p.Meters) > 0 {
		meters = make([]MeterResponse, len(p.Meters))
		for i, m := range p.Meters {
			meters[i] = MeterResponse{
				MeterNumber:    m.MeterNumber,
				Floor:          m.Floor,
				ConnectionType: m.ConnectionType,
			}
		}
	}
	var rental *RentalResponse
	if p.Rental != nil {
		rental = &RentalResponse{
			MonthlyRent: p.Rental.MonthlyRent,
			StartDate:   p.Rental.StartDate,
			EndDate:     p.Rental.EndDate,
			Active:      p.Rental.Active,
		}
	}
	return &PropertyResponse{
		ID:           p.ID,
		Serial:       p.Serial,
		Name:         p.Name,
		PlotNumber:   p.PlotNumber,
		Sector:       p.Sector,
		Block:        p.Block,
		FullAddress:  p.FullAddress,
		OwnerName:    p.OwnerName,
		AreaValue:    p.AreaValue,
		AreaUnit:     p.AreaUnit,
		SizeLabel:    p.SizeLabel(),
		PropertyType: p.PropertyType,
		ResidentID:   p.ResidentID,
		Meters:       meters,
		Rental:       rental,
		Active:       p.Active,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// PropertiesFromDomain converts domain properties to responses.
func PropertiesFromDomain(properties []*domain.Property) []*PropertyResponse {
	result := make([]*PropertyResponse, len(properties))
	for i, p := range properties {
		result[i] = PropertyFromDomain(p)
	}
	return result
}

// ListPropertiesResponse is a paginated property listing.
type ListPropertiesResponse struct {
	Properties []*PropertyResponse `json:"properties"`
	Total      int                 `json:"total"`
}

// ResidentResponse represents a resident in API responses.
type ResidentResponse struct {
	ID            string          `json:"id"`
	ResidentID    string          `json:"resident_id,omitempty"`
	Name          string          `json:"name"`
	CNIC          string          `json:"cnic,omitempty"`
	ContactNumber string          `json:"contact_number,omitempty"`
	Email         string          `json:"email,omitempty"`
	AccountType   string          `json:"account_type"`
	Balance       decimal.Decimal `json:"balance"`
	Active        bool            `json:"active"`
	Suspense      bool            `json:"suspense"`
	PropertyIDs   []string        `json:"property_ids,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ResidentFromDomain converts a domain resident to a response.
func ResidentFromDomain(r *domain.Resident) *ResidentResponse {
	return &ResidentResponse{
		ID:            r.ID,
		ResidentID:    r.ResidentID,
		Name:          r.Name,
		CNIC:          r.CNIC,
		ContactNumber: r.ContactNumber,
		Email:         r.Email,
		AccountType:   r.AccountType,
		Balance:       r.Balance,
		Active:        r.Active,
		Suspense:      r.IsSuspense(),
		PropertyIDs:   r.PropertyIDs,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ResidentsFromDomain converts domain residents to responses.
func ResidentsFromDomain(residents []*domain.Resident) []*ResidentResponse {
	result := make([]*ResidentResponse, len(residents))
	for i, r := range residents {
		result[i] = ResidentFromDomain(r)
	}
	return result
}

// ListResidentsResponse is a paginated resident listing.
type ListResidentsResponse struct {
	Residents []*ResidentResponse `json:"residents"`
	Total     int                 `json:"total"`
}

// DepositUsageResponse represents one deposit usage in API responses.
type DepositUsageResponse struct {
	DepositID string          `json:"deposit_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID             string                 `json:"id"`
	ResidentID     string                 `json:"resident_id"`
	Kind           string                 `json:"kind"`
	Amount         decimal.Decimal        `json:"amount"`
	BalanceBefore  decimal.Decimal        `json:"balance_before"`
	BalanceAfter   decimal.Decimal        `json:"balance_after"`
	CounterpartyID *string                `json:"counterparty_id,omitempty"`
	TargetResident *string                `json:"target_resident,omitempty"`
	ReferenceType  string                 `json:"reference_type,omitempty"`
	ReferenceID    string                 `json:"reference_id,omitempty"`
	ReferenceNo    string                 `json:"reference_no,omitempty"`
	ExternalRef    string                 `json:"external_ref,omitempty"`
	PaymentMethod  string                 `json:"payment_method,omitempty"`
	Bank           string                 `json:"bank,omitempty"`
	Description    string                 `json:"description,omitempty"`
	DepositUsages  []DepositUsageResponse `json:"deposit_usages,omitempty"`
	CreatedBy      string                 `json:"created_by"`
	CreatedAt      time.Time              `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	var usages []DepositUsageResponse
	if len(t.DepositUsages) > 0 {
		usages = make([]DepositUsageResponse, len(t.DepositUsages))
		for i, u := range t.DepositUsages {
			usages[i] = DepositUsageResponse{DepositID: u.DepositID, Amount: u.Amount}
		}
	}
	return &TransactionResponse{
		ID:             t.ID,
		ResidentID:     t.ResidentID,
		Kind:           t.Kind,
		Amount:         t.Amount,
		BalanceBefore:  t.BalanceBefore,
		BalanceAfter:   t.BalanceAfter,
		CounterpartyID: t.CounterpartyID,
		TargetResident: t.TargetResident,
		ReferenceType:  t.ReferenceType,
		ReferenceID:    t.ReferenceID,
		ReferenceNo:    t.ReferenceNo,
		ExternalRef:    t.ExternalRef,
		PaymentMethod:  t.PaymentMethod,
		Bank:           t.Bank,
		Description:    t.Description,
		DepositUsages:  usages,
		CreatedBy:      t.CreatedBy,
		CreatedAt:      t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// DepositRemainingResponse is the per-deposit usage summary in listings.
type DepositRemainingResponse struct {
	Used      decimal.Decimal `json:"used"`
	Remaining decimal.Decimal `json:"remaining"`
}

// DepositRemainingFromUseCase converts the per-deposit usage map.
func DepositRemainingFromUseCase(remaining map[string]usecase.DepositRemaining) map[string]DepositRemainingResponse {
	if remaining == nil {
		return nil
	}
	result := make(map[string]DepositRemainingResponse, len(remaining))
	for id, r := range remaining {
		result[id] = DepositRemainingResponse{Used: r.Used, Remaining: r.Remaining}
	}
	return result
}

// ListTransactionsResponse is a paginated transaction listing with, for each
// deposit, the amount already consumed and the remainder.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse              `json:"transactions"`
	Deposits     map[string]DepositRemainingResponse `json:"deposits,omitempty"`
	Total        int                                 `json:"total"`
}

// TransferResponse carries both legs of a balance transfer.
type TransferResponse struct {
	Debit  *TransactionResponse `json:"debit"`
	Credit *TransactionResponse `json:"credit"`
}

// DeleteDepositResponse reports the cascade of a deposit deletion.
type DeleteDepositResponse struct {
	NewBalance      decimal.Decimal `json:"new_balance"`
	DeletedPayments int             `json:"deleted_payments"`
}

// DeleteInvoiceResponse reports the cascade of an invoice deletion.
type DeleteInvoiceResponse struct {
	InvoiceNumber    string `json:"invoice_number"`
	ReversedPayments int    `json:"reversed_payments"`
}

// CAMSlabResponse represents a CAM slab in API responses.
type CAMSlabResponse struct {
	SizeLabel string          `json:"size_label"`
	ZoneType  string          `json:"zone_type,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

// ElectricitySlabResponse represents a consumption band in API responses.
type ElectricitySlabResponse struct {
	Lower    int64           `json:"lower"`
	Upper    int64           `json:"upper"`
	UnitRate decimal.Decimal `json:"unit_rate"`
	FixRate  decimal.Decimal `json:"fix_rate"`
	Label    string          `json:"label,omitempty"`
}

// TariffVersionResponse represents a tariff version in API responses.
type TariffVersionResponse struct {
	ID               string                    `json:"id"`
	Version          int64                     `json:"version"`
	EffectiveFrom    time.Time                 `json:"effective_from"`
	CAMSlabs         []CAMSlabResponse         `json:"cam_slabs,omitempty"`
	ElectricitySlabs []ElectricitySlabResponse `json:"electricity_slabs,omitempty"`
	CreatedBy        string                    `json:"created_by"`
	CreatedAt        time.Time                 `json:"created_at"`
}

// TariffVersionFromDomain converts a domain tariff version to a response.
func TariffVersionFromDomain(v *domain.TariffVersion) *TariffVersionResponse {
	camSlabs := make([]CAMSlabResponse, len(v.CAMSlabs))
	for i, s := range v.CAMSlabs {
		camSlabs[i] = CAMSlabResponse{SizeLabel: s.SizeLabel, ZoneType: s.ZoneType, Amount: s.Amount}
	}
	elecSlabs := make([]ElectricitySlabResponse, len(v.ElectricitySlabs))
	for i, s := range v.ElectricitySlabs {
		elecSlabs[i] = ElectricitySlabResponse{
			Lower:    s.Lower,
			Upper:    s.Upper,
			UnitRate: s.UnitRate,
			FixRate:  s.FixRate,
			Label:    s.Label,
		}
	}
	return &TariffVersionResponse{
		ID:               v.ID,
		Version:          v.Version,
		EffectiveFrom:    v.EffectiveFrom,
		CAMSlabs:         camSlabs,
		ElectricitySlabs: elecSlabs,
		CreatedBy:        v.CreatedBy,
		CreatedAt:        v.CreatedAt,
	}
}

// TariffVersionsFromDomain converts domain tariff versions to responses.
func TariffVersionsFromDomain(versions []*domain.TariffVersion) []*TariffVersionResponse {
	result := make([]*TariffVersionResponse, len(versions))
	for i, v := range versions {
		result[i] = TariffVersionFromDomain(v)
	}
	return result
}

// CAMChargeResponse represents a CAM charge in API responses.
type CAMChargeResponse struct {
	ID         string          `json:"id"`
	Serial     int64           `json:"serial"`
	BillNumber string          `json:"bill_number"`
	PropertyID string          `json:"property_id"`
	Month      string          `json:"month"`
	PeriodFrom time.Time       `json:"period_from"`
	PeriodTo   time.Time       `json:"period_to"`
	SizeLabel  string          `json:"size_label,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Arrears    decimal.Decimal `json:"arrears"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CAMChargeFromDomain converts a domain CAM charge to a response.
func CAMChargeFromDomain(c *domain.CAMCharge) *CAMChargeResponse {
	return &CAMChargeResponse{
		ID:         c.ID,
		Serial:     c.Serial,
		BillNumber: c.BillNumber,
		PropertyID: c.PropertyID,
		Month:      c.Month,
		PeriodFrom: c.PeriodFrom,
		PeriodTo:   c.PeriodTo,
		SizeLabel:  c.SizeLabel,
		Amount:     c.Amount,
		Arrears:    c.Arrears,
		Total:      c.Total,
		Status:     c.Status,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// CAMChargesFromDomain converts domain CAM charges to responses.
func CAMChargesFromDomain(charges []*domain.CAMCharge) []*CAMChargeResponse {
	result := make([]*CAMChargeResponse, len(charges))
	for i, c := range charges {
		result[i] = CAMChargeFromDomain(c)
	}
	return result
}

// ListCAMChargesResponse is a paginated CAM charge listing.
type ListCAMChargesResponse struct {
	Charges []*CAMChargeResponse `json:"charges"`
	Total   int                  `json:"total"`
}

// BreakdownResponse represents an electricity charge breakdown in API
// responses.
type BreakdownResponse struct {
	UnitsConsumed int64           `json:"units_consumed"`
	UnitRate      decimal.Decimal `json:"unit_rate"`
	FixRate       decimal.Decimal `json:"fix_rate"`
	EnergyCost    decimal.Decimal `json:"energy_cost"`
	FuelSurcharge decimal.Decimal `json:"fuel_surcharge"`
	GST           decimal.Decimal `json:"gst"`
	Duty          decimal.Decimal `json:"duty"`
	MeterRent     decimal.Decimal `json:"meter_rent"`
	TVFee         decimal.Decimal `json:"tv_fee"`
	Total         decimal.Decimal `json:"total"`
}

// BreakdownFromDomain converts a domain charge breakdown to a response.
func BreakdownFromDomain(b domain.ChargeBreakdown) BreakdownResponse {
	return BreakdownResponse{
		UnitsConsumed: b.UnitsConsumed,
		UnitRate:      b.UnitRate,
		FixRate:       b.FixRate,
		EnergyCost:    b.EnergyCost,
		FuelSurcharge: b.FuelSurcharge,
		GST:           b.GST,
		Duty:          b.Duty,
		MeterRent:     b.MeterRent,
		TVFee:         b.TVFee,
		Total:         b.Total,
	}
}

// ElectricityBillResponse represents an electricity bill in API responses.
type ElectricityBillResponse struct {
	ID               string            `json:"id"`
	Serial           int64             `json:"serial"`
	BillNumber       string            `json:"bill_number"`
	PropertyID       string            `json:"property_id"`
	MeterNumber      string            `json:"meter_number"`
	Month            string            `json:"month"`
	PeriodFrom       time.Time         `json:"period_from"`
	PeriodTo         time.Time         `json:"period_to"`
	PreviousReading  int64             `json:"previous_reading"`
	CurrentReading   int64             `json:"current_reading"`
	Breakdown        BreakdownResponse `json:"breakdown"`
	Arrears          decimal.Decimal   `json:"arrears"`
	TotalWithArrears decimal.Decimal   `json:"total_with_arrears"`
	Status           string            `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ElectricityBillFromDomain converts a domain electricity bill to a response.
func ElectricityBillFromDomain(b *domain.ElectricityBill) *ElectricityBillResponse {
	return &ElectricityBillResponse{
		ID:               b.ID,
		Serial:           b.Serial,
		BillNumber:       b.BillNumber,
		PropertyID:       b.PropertyID,
		MeterNumber:      b.MeterNumber,
		Month:            b.Month,
		PeriodFrom:       b.PeriodFrom,
		PeriodTo:         b.PeriodTo,
		PreviousReading:  b.PreviousReading,
		CurrentReading:   b.CurrentReading,
		Breakdown:        BreakdownFromDomain(b.Breakdown),
		Arrears:          b.Arrears,
		TotalWithArrears: b.TotalWithArrears,
		Status:           b.Status,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

// ElectricityBillsFromDomain converts domain electricity bills to responses.
func ElectricityBillsFromDomain(bills []*domain.ElectricityBill) []*ElectricityBillResponse {
	result := make([]*ElectricityBillResponse, len(bills))
	for i, b := range bills {
		result[i] = ElectricityBillFromDomain(b)
	}
	return result
}

// ListElectricityBillsResponse is a paginated electricity bill listing.
type ListElectricityBillsResponse struct {
	Bills []*ElectricityBillResponse `json:"bills"`
	Total int                        `json:"total"`
}

// ChargeLineResponse represents an invoice charge line in API responses.
type ChargeLineResponse struct {
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Arrears     decimal.Decimal `json:"arrears"`
	SourceID    string          `json:"source_id,omitempty"`
}

// InvoicePaymentResponse represents one entry of an invoice's payment log.
type InvoicePaymentResponse struct {
	ID         string          `json:"id"`
	ReceiptID  string          `json:"receipt_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Method     string          `json:"method,omitempty"`
	Bank       string          `json:"bank,omitempty"`
	Reference  string          `json:"reference,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	RecordedBy string          `json:"recorded_by"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// InvoiceResponse represents an invoice in API responses.
type InvoiceResponse struct {
	ID            string                   `json:"id"`
	Serial        int64                    `json:"serial"`
	InvoiceNumber string                   `json:"invoice_number"`
	PropertyID    string                   `json:"property_id"`
	MeterNumber   string                   `json:"meter_number,omitempty"`
	Month         string                   `json:"month"`
	PeriodFrom    time.Time                `json:"period_from"`
	PeriodTo      time.Time                `json:"period_to"`
	DueDate       time.Time                `json:"due_date"`
	Charges       []ChargeLineResponse     `json:"charges"`
	Subtotal      decimal.Decimal          `json:"subtotal"`
	TotalArrears  decimal.Decimal          `json:"total_arrears"`
	LateSurcharge decimal.Decimal          `json:"late_surcharge"`
	GrandTotal    decimal.Decimal          `json:"grand_total"`
	Payments      []InvoicePaymentResponse `json:"payments,omitempty"`
	TotalPaid     decimal.Decimal          `json:"total_paid"`
	Balance       decimal.Decimal          `json:"balance"`
	PaymentStatus string                   `json:"payment_status"`
	Status        string                   `json:"status"`
	Version       int64                    `json:"version"`
	Notes         string                   `json:"notes,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// InvoiceFromDomain converts a domain invoice to a response.
func InvoiceFromDomain(inv *domain.Invoice) *InvoiceResponse {
	charges := make([]ChargeLineResponse, len(inv.Charges))
	for i, c := range inv.Charges {
		charges[i] = ChargeLineResponse{
			Type:        c.Type,
			Description: c.Description,
			Amount:      c.Amount,
			Arrears:     c.Arrears,
			SourceID:    c.SourceID,
		}
	}
	var payments []InvoicePaymentResponse
	if len(inv.Payments) > 0 {
		payments = make([]InvoicePaymentResponse, len(inv.Payments))
		for i, p := range inv.Payments {
			payments[i] = InvoicePaymentResponse{
				ID:         p.ID,
				ReceiptID:  p.ReceiptID,
				Amount:     p.Amount,
				Date:       p.Date,
				Method:     p.Method,
				Bank:       p.Bank,
				Reference:  p.Reference,
				Notes:      p.Notes,
				RecordedBy: p.RecordedBy,
				RecordedAt: p.RecordedAt,
			}
		}
	}
	return &InvoiceResponse{
		ID:            inv.ID,
		Serial:        inv.Serial,
		InvoiceNumber: inv.InvoiceNumber,
		PropertyID:    inv.PropertyID,
		MeterNumber:   inv.MeterNumber,
		Month:         inv.Month,
		PeriodFrom:    inv.PeriodFrom,
		PeriodTo:      inv.PeriodTo,
		DueDate:       inv.DueDate,
		Charges:       charges,
		Subtotal:      inv.Subtotal,
		TotalArrears:  inv.TotalArrears,
		LateSurcharge: inv.LateSurcharge,
		GrandTotal:    inv.GrandTotal,
		Payments:      payments,
		TotalPaid:     inv.TotalPaid,
		Balance:       inv.Balance,
		PaymentStatus: inv.PaymentStatus,
		Status:        inv.Status,
		Version:       inv.Version,
		Notes:         inv.Notes,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

// InvoicesFromDomain converts domain invoices to responses.
func InvoicesFromDomain(invoices []*domain.Invoice) []*InvoiceResponse {
	result := make([]*InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		result[i] = InvoiceFromDomain(inv)
	}
	return result
}

// ListInvoicesResponse is a paginated invoice listing.
type ListInvoicesResponse struct {
	Invoices []*InvoiceResponse `json:"invoices"`
	Total    int                `json:"total"`
}

// SweepResponse reports how many invoices a status sweep touched.
type SweepResponse struct {
	Updated int `json:"updated"`
}

// AllocationResponse represents a receipt allocation in API responses.
type AllocationResponse struct {
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// ReceiptResponse represents a receipt in API responses.
type ReceiptResponse struct {
	ID                string               `json:"id"`
	Serial            int64                `json:"serial"`
	ReceiptNumber     string               `json:"receipt_number"`
	ResidentID        string               `json:"resident_id,omitempty"`
	PropertyID        string               `json:"property_id,omitempty"`
	Amount            decimal.Decimal      `json:"amount"`
	Allocations       []AllocationResponse `json:"allocations,omitempty"`
	TotalAllocated    decimal.Decimal      `json:"total_allocated"`
	UnallocatedAmount decimal.Decimal      `json:"unallocated_amount"`
	Method            string               `json:"method,omitempty"`
	Bank              string               `json:"bank,omitempty"`
	Reference         string               `json:"reference,omitempty"`
	Notes             string               `json:"notes,omitempty"`
	Status            string               `json:"status"`
	ReceivedAt        time.Time            `json:"received_at"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// ReceiptFromDomain converts a domain receipt to a response.
func ReceiptFromDomain(r *domain.Receipt) *ReceiptResponse {
	var allocations []AllocationResponse
	if len(r.Allocations) > 0 {
		allocations = make([]AllocationResponse, len(r.Allocations))
		for i, a := range r.Allocations {
			allocations[i] = AllocationResponse{InvoiceID: a.InvoiceID, Amount: a.Amount}
		}
	}
	return &ReceiptResponse{
		ID:                r.ID,
		Serial:            r.Serial,
		ReceiptNumber:     r.ReceiptNumber,
		ResidentID:        r.ResidentID,
		PropertyID:        r.PropertyID,
		Amount:            r.Amount,
		Allocations:       allocations,
		TotalAllocated:    r.TotalAllocated,
		UnallocatedAmount: r.UnallocatedAmount,
		Method:            r.Method,
		Bank:              r.Bank,
		Reference:         r.Reference,
		Notes:             r.Notes,
		Status:            r.Status,
		ReceivedAt:        r.ReceivedAt,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// ReceiptsFromDomain converts domain receipts to responses.
func ReceiptsFromDomain(receipts []*domain.Receipt) []*ReceiptResponse {
	result := make([]*ReceiptResponse, len(receipts))
	for i, r := range receipts {
		result[i] = ReceiptFromDomain(r)
	}
	return result
}

// ListReceiptsResponse is a paginated receipt listing.
type ListReceiptsResponse struct {
	Receipts []*ReceiptResponse `json:"receipts"`
	Total    int                `json:"total"`
}

// BalanceCheckResponse represents a resident balance reconciliation result.
type BalanceCheckResponse struct {
	ResidentID        string          `json:"resident_id"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	IsReconciled      bool            `json:"is_reconciled"`
	CheckedAt         time.Time       `json:"checked_at"`
}

// BalanceCheckFromUseCase converts a balance check result to a response.
func BalanceCheckFromUseCase(r *usecase.BalanceCheckResult) *BalanceCheckResponse {
	return &BalanceCheckResponse{
		ResidentID:        r.ResidentID,
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		IsReconciled:      r.IsReconciled,
		CheckedAt:         r.CheckedAt,
	}
}

// ReconcileResidentResponse pairs a balance check with its discrepancies.
type ReconcileResidentResponse struct {
	Result        *BalanceCheckResponse `json:"result"`
	Discrepancies []usecase.Discrepancy `json:"discrepancies"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
