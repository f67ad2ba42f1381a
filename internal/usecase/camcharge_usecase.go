package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
)

// CAMChargeUseCase bills the monthly common-area-maintenance stream. Each
// charge is a per-property, per-month snapshot priced from the tariff
// version in force for the period; the matching invoice line is kept in
// step with it.
type CAMChargeUseCase struct {
	camRepo      CAMChargeRepository
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

// NewCAMChargeUseCase creates a new CAMChargeUseCase.
func NewCAMChargeUseCase(
	camRepo CAMChargeRepository,
	propertyRepo PropertyRepository,
	tariffUC *TariffUseCase,
	arrears *ArrearsResolver,
	invoiceUC *InvoiceUseCase,
	seqGen SequenceGenerator,
	auditRepo AuditRepository,
	idGen IDGenerator,
	chunkSize, workers int,
	logger zerolog.Logger,
) *CAMChargeUseCase {
	return &CAMChargeUseCase{
		camRepo:      camRepo,
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

// CreateCAMChargeInput represents input for billing one property's CAM for
// one month.
type CreateCAMChargeInput struct {
	PropertyID string
	Year       int
	Month      time.Month
	// AmountOverride bills a manual amount instead of the tariff rate.
	AmountOverride *decimal.Decimal
	Actor          string
}

// Create bills CAM for one property and month. Billing the same property
// and month twice is rejected; bulk runs treat that as a skip, not an error.
// The charge record commits first and the invoice line follows; if the
// invoice write fails the committed charge surfaces as a reconciliation
// fault rather than being silently orphaned.
func (uc *CAMChargeUseCase) Create(ctx context.Context, input CreateCAMChargeInput) (*domain.CAMCharge, error) {
	if input.Actor == "" {
		return nil, domain.NewValidationError("actor", "acting principal is required")
	}

	property, err := uc.propertyRepo.GetByID(ctx, input.PropertyID)
	if err != nil {
		return nil, err
	}

	periodFrom, periodTo := domain.BillPeriod(input.Year, input.Month)
	month := domain.MonthLabel(periodFrom)

	if existing, err := uc.camRepo.GetByPropertyMonth(ctx, property.ID, month); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: CAM for %s already billed as %s", domain.ErrDuplicateBill, month, existing.BillNumber)
	} else if err != nil && !errors.Is(err, domain.ErrBillNotFound) {
		return nil, err
	}

	amount := decimal.Zero
	if input.AmountOverride != nil {
		amount = *input.AmountOverride
	} else {
		amount, err = uc.tariffUC.ResolveCAMRate(ctx, property, periodFrom)
		if err != nil {
			return nil, err
		}
	}

	carried, err := uc.arrears.Resolve(ctx, property.ID, domain.ChargeTypeCAM, "", periodFrom)
	if err != nil {
		return nil, err
	}

	serial, err := uc.seqGen.Next(ctx, SequenceCAMBill)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	charge := &domain.CAMCharge{
		ID:     uc.idGen.Generate(),
		Serial: serial,
		// The human-facing number carries the property serial; the stream
		// serial above only orders charges internally.
		BillNumber: domain.FormatBillNumber("CAM", periodFrom, property.Serial),
		PropertyID: property.ID,
		Month:      month,
		PeriodFrom: periodFrom,
		PeriodTo:   periodTo,
		SizeLabel:  property.SizeLabel(),
		Amount:     amount,
		Arrears:    carried,
		Total:      amount.Add(carried),
		Status:     domain.BillStatusUnpaid,
		CreatedBy:  input.Actor,
		UpdatedBy:  input.Actor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := charge.Validate(); err != nil {
		return nil, err
	}
	if err := uc.camRepo.Create(ctx, charge); err != nil {
		return nil, err
	}
	uc.writeAudit(ctx, input.Actor, domain.AuditActionBillCreate, charge.ID, nil, charge)

	_, err = uc.invoiceUC.UpsertChargeLine(ctx, UpsertChargeInput{
		PropertyID: property.ID,
		Month:      month,
		PeriodFrom: periodFrom,
		PeriodTo:   periodTo,
		Line: domain.ChargeLine{
			Type:        domain.ChargeTypeCAM,
			Description: "CAM charges for " + month,
			Amount:      amount,
			Arrears:     carried,
			SourceID:    charge.ID,
		},
		Actor: input.Actor,
	})
	if err != nil {
		return charge, fmt.Errorf("%w: CAM charge %s billed but invoice not updated: %v",
			domain.ErrReconciliation, charge.BillNumber, err)
	}
	return charge, nil
}

// UpdateAmount re-prices an existing charge and refreshes its invoice line.
func (uc *CAMChargeUseCase) UpdateAmount(ctx context.Context, chargeID string, amount decimal.Decimal, actor string) (*domain.CAMCharge, error) {
	if amount.IsNegative() {
		return nil, domain.NewValidationError("amount", "cannot be negative")
	}

	charge, err := uc.camRepo.GetByID(ctx, chargeID)
	if err != nil {
		return nil, err
	}

	before := *charge
	charge.Amount = amount
	charge.Total = amount.Add(charge.Arrears)
	charge.UpdatedBy = actor
	charge.UpdatedAt = time.Now().UTC()
	if err := uc.camRepo.Update(ctx, charge); err != nil {
		return nil, err
	}
	uc.writeAudit(ctx, actor, domain.AuditActionBillUpdate, charge.ID, &before, charge)

	_, err = uc.invoiceUC.UpsertChargeLine(ctx, UpsertChargeInput{
		PropertyID: charge.PropertyID,
		Month:      charge.Month,
		PeriodFrom: charge.PeriodFrom,
		PeriodTo:   charge.PeriodTo,
		Line: domain.ChargeLine{
			Type:        domain.ChargeTypeCAM,
			Description: "CAM charges for " + charge.Month,
			Amount:      charge.Amount,
			Arrears:     charge.Arrears,
			SourceID:    charge.ID,
		},
		Actor: actor,
	})
	if err != nil {
		return charge, fmt.Errorf("%w: CAM charge %s updated but invoice not updated: %v",
			domain.ErrReconciliation, charge.BillNumber, err)
	}
	return charge, nil
}

// Delete removes a charge and its invoice line. The invoice side goes first:
// once the line is gone the charge can no longer feed arrears, so a failure
// between the two steps leaves no phantom balance.
func (uc *CAMChargeUseCase) Delete(ctx context.Context, chargeID, actor string) error {
	charge, err := uc.camRepo.GetByID(ctx, chargeID)
	if err != nil {
		return err
	}

	if err := uc.invoiceUC.RemoveChargeLine(ctx, charge.PropertyID, charge.Month, "", domain.ChargeTypeCAM, charge.ID, actor); err != nil {
		return fmt.Errorf("%w: invoice line for %s not removed: %v", domain.ErrReconciliation, charge.BillNumber, err)
	}
	if err := uc.camRepo.Delete(ctx, charge.ID); err != nil {
		return fmt.Errorf("%w: invoice line removed but charge %s not deleted: %v",
			domain.ErrReconciliation, charge.BillNumber, err)
	}
	uc.writeAudit(ctx, actor, domain.AuditActionBillDelete, charge.ID, charge, nil)
	return nil
}

// Get returns one charge.
func (uc *CAMChargeUseCase) Get(ctx context.Context, id string) (*domain.CAMCharge, error) {
	return uc.camRepo.GetByID(ctx, id)
}

// List returns charges for a month.
func (uc *CAMChargeUseCase) List(ctx context.Context, month string, limit, offset int) ([]*domain.CAMCharge, int, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.camRepo.List(ctx, month, limit, offset)
}

// BulkGenerate bills every property for a month with bounded parallelism.
// Properties already billed for the month are skipped; failures are
// reported per property and never abort the run.
func (uc *CAMChargeUseCase) BulkGenerate(ctx context.Context, year int, month time.Month, actor string) (BulkSummary, error) {
	properties, err := uc.propertyRepo.ListAll(ctx)
	if err != nil {
		return BulkSummary{}, err
	}

	ids := make([]string, 0, len(properties))
	for _, p := range properties {
		ids = append(ids, p.ID)
	}

	summary := runBulk(ctx, ids, uc.chunkSize, uc.workers, func(ctx context.Context, propertyID string) (string, error) {
		_, err := uc.Create(ctx, CreateCAMChargeInput{
			PropertyID: propertyID,
			Year:       year,
			Month:      month,
			Actor:      actor,
		})
		if errors.Is(err, domain.ErrDuplicateBill) {
			return BulkOutcomeSkipped, nil
		}
		if err != nil {
			return BulkOutcomeFailed, err
		}
		return BulkOutcomeCreated, nil
	})

	uc.writeAudit(ctx, actor, domain.AuditActionBulkRun, fmt.Sprintf("cam-%04d-%02d", year, int(month)), nil, summary)
	return summary, nil
}

// writeAudit is best-effort for charges; a failed audit write never fails
// the billing operation itself.
func (uc *CAMChargeUseCase) writeAudit(ctx context.Context, actor string, action domain.AuditAction, resourceID string, before, after any) {
	if uc.auditRepo == nil {
		return
	}
	err := uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Actor:        actor,
		Action:       string(action),
		ResourceType: "cam_charge",
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
