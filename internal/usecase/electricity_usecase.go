package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sgcerp/tajbilling/internal/domain"
)

// ElectricityUseCase bills metered electricity consumption. Each bill covers
// one meter for one month; multi-meter properties get one bill per meter,
// each feeding its own invoice.
type ElectricityUseCase struct {
	billRepo     ElectricityBillRepository
	propertyRepo PropertyRepository
	tariffUC     *TariffUseCase
	arrears      *ArrearsResolver
	invoiceUC    *InvoiceUseCase
	seqGen       SequenceGenerator
	auditRepo    AuditRepository
	idGen        IDGenerator
	chunkSize    int
	workers      int
	logger       zerolog.Logger
}

// NewElectricityUseCase creates a new ElectricityUseCase.
func NewElectricityUseCase(
	billRepo ElectricityBillRepository,
	propertyRepo PropertyRepository,
	tariffUC *TariffUseCase,
	arrears *ArrearsResolver,
	invoiceUC *InvoiceUseCase,
	seqGen SequenceGenerator,
	auditRepo AuditRepository,
	idGen IDGenerator,
	chunkSize, workers int,
	logger zerolog.Logger,
) *ElectricityUseCase {
	return &ElectricityUseCase{
		billRepo:     billRepo,
		propertyRepo: propertyRepo,
		tariffUC:     tariffUC,
		arrears:      arrears,
		invoiceUC:    invoiceUC,
		seqGen:       seqGen,
		auditRepo:    auditRepo,
		idGen:        idGen,
		chunkSize:    chunkSize,
		workers:      workers,
		logger:       logger,
	}
}

// CreateElectricityBillInput represents input for billing one meter's
// consumption for one month.
type CreateElectricityBillInput struct {
	PropertyID      string
	MeterNumber     string
	Year            int
	Month           time.Month
	CurrentReading  int64
	// PreviousReading overrides the last bill's closing reading. Nil means
	// carry forward from the meter's latest bill (zero for a first bill).
	PreviousReading *int64
	Actor           string
}

// Preview computes the charge breakdown for a reading pair without saving
// anything.
func (uc *ElectricityUseCase) Preview(ctx context.Context, input CreateElectricityBillInput) (domain.ChargeBreakdown, error) {
	previous, err := uc.resolvePreviousReading(ctx, input)
	if err != nil {
		return domain.ChargeBreakdown{}, err
	}

	if input.CurrentReading < previous {
		return domain.ChargeBreakdown{}, domain.NewValidationError("currentReading",
			"current reading (%d) cannot be less than previous reading (%d)", input.CurrentReading, previous)
	}

	periodFrom, _ := domain.BillPeriod(input.Year, input.Month)
	slab, err := uc.tariffUC.ResolveElectricitySlab(ctx, input.CurrentReading-previous, periodFrom)
	if err != nil {
		return domain.ChargeBreakdown{}, err
	}
	return domain.ComputeElectricityCharges(previous, input.CurrentReading, slab.UnitRate, slab.FixRate)
}

// Create bills one meter for one month. The previous reading defaults to
// the meter's last billed reading; a reading below it is rejected. The bill
// record commits first, then the invoice line; a failure in between
// surfaces as a reconciliation fault.
func (uc *ElectricityUseCase) Create(ctx context.Context, input CreateElectricityBillInput) (*domain.ElectricityBill, error) {
	if input.Actor == "" {
		return nil, domain.NewValidationError("actor", "acting principal is required")
	}

	property, err := uc.propertyRepo.GetByID(ctx, input.PropertyID)
	if err != nil {
		return nil, err
	}
	meterIndex := 0
	for i, m := range property.Meters {
		if m.MeterNumber == input.MeterNumber {
			meterIndex = i + 1
			break
		}
	}
	if meterIndex == 0 {
		return nil, domain.NewValidationError("meterNumber", "meter %s is not installed at this property", input.MeterNumber)
	}

	periodFrom, periodTo := domain.BillPeriod(input.Year, input.Month)
	month := domain.MonthLabel(periodFrom)

	if existing, err := uc.billRepo.GetByMeterMonth(ctx, property.ID, input.MeterNumber, month); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: meter %s already billed for %s as %s",
			domain.ErrDuplicateBill, input.MeterNumber, month, existing.BillNumber)
	} else if err != nil && !errors.Is(err, domain.ErrBillNotFound) {
		return nil, err
	}

	previous, err := uc.resolvePreviousReading(ctx, input)
	if err != nil {
		return nil, err
	}
	if input.CurrentReading < previous {
		return nil, domain.NewValidationError("currentReading",
			"current reading (%d) cannot be less than previous reading (%d)", input.CurrentReading, previous)
	}

	slab, err := uc.tariffUC.ResolveElectricitySlab(ctx, input.CurrentReading-previous, periodFrom)
	if err != nil {
		return nil, err
	}
	breakdown, err := domain.ComputeElectricityCharges(previous, input.CurrentReading, slab.UnitRate, slab.FixRate)
	if err != nil {
		return nil, err
	}

	carried, err := uc.arrears.Resolve(ctx, property.ID, domain.ChargeTypeElectricity, input.MeterNumber, periodFrom)
	if err != nil {
		return nil, err
	}

	serial, err := uc.seqGen.Next(ctx, SequenceElectricityBill)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	bill := &domain.ElectricityBill{
		ID:     uc.idGen.Generate(),
		Serial: serial,
		// The human-facing number carries the property serial; the meter
		// suffix keeps second and later meters distinct within a period.
		BillNumber:       domain.FormatMeterBillNumber("ELEC", periodFrom, property.Serial, meterIndex),
		PropertyID:       property.ID,
		MeterNumber:      input.MeterNumber,
		Month:            month,
		PeriodFrom:       periodFrom,
		PeriodTo:         periodTo,
		PreviousReading:  previous,
		CurrentReading:   input.CurrentReading,
		Breakdown:        breakdown,
		Arrears:          carried,
		TotalWithArrears: breakdown.Total.Add(carried),
		Status:           domain.BillStatusUnpaid,
		CreatedBy:        input.Actor,
		UpdatedBy:        input.Actor,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.billRepo.Create(ctx, bill); err != nil {
		return nil, err
	}
	uc.writeAudit(ctx, input.Actor, domain.AuditActionBillCreate, bill.ID, nil, bill)

	_, err = uc.invoiceUC.UpsertChargeLine(ctx, UpsertChargeInput{
		PropertyID:  property.ID,
		MeterNumber: input.MeterNumber,
		MeterIndex:  meterIndex,
		Month:       month,
		PeriodFrom:  periodFrom,
		PeriodTo:    periodTo,
		Line: domain.ChargeLine{
			Type:        domain.ChargeTypeElectricity,
			Description: fmt.Sprintf("Electricity charges for %s (meter %s, %d units)", month, input.MeterNumber, breakdown.UnitsConsumed),
			Amount:      breakdown.Total,
			Arrears:     carried,
			SourceID:    bill.ID,
		},
		Actor: input.Actor,
	})
	if err != nil {
		return bill, fmt.Errorf("%w: electricity bill %s created but invoice not updated: %v",
			domain.ErrReconciliation, bill.BillNumber, err)
	}
	return bill, nil
}

// resolvePreviousReading carries the last bill's closing reading forward
// unless an explicit override is given. A meter's first bill starts at zero.
func (uc *ElectricityUseCase) resolvePreviousReading(ctx context.Context, input CreateElectricityBillInput) (int64, error) {
	if input.PreviousReading != nil {
		if *input.PreviousReading < 0 {
			return 0, domain.NewValidationError("previousReading", "cannot be negative")
		}
		return *input.PreviousReading, nil
	}
	latest, err := uc.billRepo.LatestByMeter(ctx, input.PropertyID, input.MeterNumber)
	if err != nil {
		if errors.Is(err, domain.ErrBillNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return latest.CurrentReading, nil
}

// Correct re-bills an existing bill with a corrected reading pair and
// refreshes the invoice line.
func (uc *ElectricityUseCase) Correct(ctx context.Context, billID string, previous, current int64, actor string) (*domain.ElectricityBill, error) {
	bill, err := uc.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if previous < 0 {
		return nil, domain.NewValidationError("previousReading", "cannot be negative")
	}
	if current < previous {
		return nil, domain.NewValidationError("currentReading",
			"current reading (%d) cannot be less than previous reading (%d)", current, previous)
	}

	slab, err := uc.tariffUC.ResolveElectricitySlab(ctx, current-previous, bill.PeriodFrom)
	if err != nil {
		return nil, err
	}
	breakdown, err := domain.ComputeElectricityCharges(previous, current, slab.UnitRate, slab.FixRate)
	if err != nil {
		return nil, err
	}

	before := *bill
	bill.PreviousReading = previous
	bill.CurrentReading = current
	bill.Breakdown = breakdown
	bill.TotalWithArrears = breakdown.Total.Add(bill.Arrears)
	bill.UpdatedBy = actor
	bill.UpdatedAt = time.Now().UTC()
	if err := uc.billRepo.Update(ctx, bill); err != nil {
		return nil, err
	}
	uc.writeAudit(ctx, actor, domain.AuditActionBillUpdate, bill.ID, &before, bill)

	meterIndex := 1
	if property, err := uc.propertyRepo.GetByID(ctx, bill.PropertyID); err == nil {
		for i, m := range property.Meters {
			if m.MeterNumber == bill.MeterNumber {
				meterIndex = i + 1
				break
			}
		}
	}

	_, err = uc.invoiceUC.UpsertChargeLine(ctx, UpsertChargeInput{
		PropertyID:  bill.PropertyID,
		MeterNumber: bill.MeterNumber,
		MeterIndex:  meterIndex,
		Month:       bill.Month,
		PeriodFrom:  bill.PeriodFrom,
		PeriodTo:    bill.PeriodTo,
		Line: domain.ChargeLine{
			Type:        domain.ChargeTypeElectricity,
			Description: fmt.Sprintf("Electricity charges for %s (meter %s, %d units)", bill.Month, bill.MeterNumber, breakdown.UnitsConsumed),
			Amount:      breakdown.Total,
			Arrears:     bill.Arrears,
			SourceID:    bill.ID,
		},
		Actor: actor,
	})
	if err != nil {
		return bill, fmt.Errorf("%w: electricity bill %s corrected but invoice not updated: %v",
			domain.ErrReconciliation, bill.BillNumber, err)
	}
	return bill, nil
}

// Delete removes a bill and its invoice line, invoice side first.
func (uc *ElectricityUseCase) Delete(ctx context.Context, billID, actor string) error {
	bill, err := uc.billRepo.GetByID(ctx, billID)
	if err != nil {
		return err
	}

	if err := uc.invoiceUC.RemoveChargeLine(ctx, bill.PropertyID, bill.Month, bill.MeterNumber, domain.ChargeTypeElectricity, bill.ID, actor); err != nil {
		return fmt.Errorf("%w: invoice line for %s not removed: %v", domain.ErrReconciliation, bill.BillNumber, err)
	}
	if err := uc.billRepo.Delete(ctx, bill.ID); err != nil {
		return fmt.Errorf("%w: invoice line removed but bill %s not deleted: %v",
			domain.ErrReconciliation, bill.BillNumber, err)
	}
	uc.writeAudit(ctx, actor, domain.AuditActionBillDelete, bill.ID, bill, nil)
	return nil
}

// Get returns one bill.
func (uc *ElectricityUseCase) Get(ctx context.Context, id string) (*domain.ElectricityBill, error) {
	return uc.billRepo.GetByID(ctx, id)
}

// List returns bills for a month.
func (uc *ElectricityUseCase) List(ctx context.Context, month string, limit, offset int) ([]*domain.ElectricityBill, int, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.billRepo.List(ctx, month, limit, offset)
}

// BulkReading is one meter reading in a bulk billing run.
type BulkReading struct {
	PropertyID     string
	MeterNumber    string
	CurrentReading int64
}

// BulkGenerate bills a batch of meter readings with bounded parallelism.
// Already-billed meters are skipped; per-item failures never abort the run.
func (uc *ElectricityUseCase) BulkGenerate(ctx context.Context, year int, month time.Month, readings []BulkReading, actor string) (BulkSummary, error) {
	byKey := make(map[string]BulkReading, len(readings))
	keys := make([]string, 0, len(readings))
	for _, r := range readings {
		key := r.PropertyID + "/" + r.MeterNumber
		byKey[key] = r
		keys = append(keys, key)
	}

	summary := runBulk(ctx, keys, uc.chunkSize, uc.workers, func(ctx context.Context, key string) (string, error) {
		r := byKey[key]
		_, err := uc.Create(ctx, CreateElectricityBillInput{
			PropertyID:     r.PropertyID,
			MeterNumber:    r.MeterNumber,
			Year:           year,
			Month:          month,
			CurrentReading: r.CurrentReading,
			Actor:          actor,
		})
		if errors.Is(err, domain.ErrDuplicateBill) {
			return BulkOutcomeSkipped, nil
		}
		if err != nil {
			return BulkOutcomeFailed, err
		}
		return BulkOutcomeCreated, nil
	})

	uc.writeAudit(ctx, actor, domain.AuditActionBulkRun, fmt.Sprintf("elec-%04d-%02d", year, int(month)), nil, summary)
	return summary, nil
}

func (uc *ElectricityUseCase) writeAudit(ctx context.Context, actor string, action domain.AuditAction, resourceID string, before, after any) {
	if uc.auditRepo == nil {
		return
	}
	err := uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Actor:        actor,
		Action:       string(action),
		ResourceType: "electricity_bill",
		ResourceID:   resourceID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		uc.logger.Error().Err(err).
			Str("action", string(action)).
			Str("resource_id", resourceID).
			Msg("failed to write audit log")
	}
}
