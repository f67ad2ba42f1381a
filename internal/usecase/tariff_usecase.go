package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
)

// TariffUseCase resolves billing rates from the append-only tariff history.
// Rate changes never mutate an existing version; a new version with its own
// effective date is appended, so regenerating an old bill resolves against
// the table that was in force then.
type TariffUseCase struct {
	tariffRepo TariffRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
}

// NewTariffUseCase creates a new TariffUseCase.
func NewTariffUseCase(tariffRepo TariffRepository, auditRepo AuditRepository, idGen IDGenerator) *TariffUseCase {
	return &TariffUseCase{
		tariffRepo: tariffRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
	}
}

// ActivateInput represents a new tariff version to put in force.
type ActivateInput struct {
	EffectiveFrom    time.Time
	CAMSlabs         []domain.CAMSlab
	ElectricitySlabs []domain.ElectricitySlab
	Actor            string
}

// Activate appends a new tariff version.
func (uc *TariffUseCase) Activate(ctx context.Context, input ActivateInput) (*domain.TariffVersion, error) {
	if input.Actor == "" {
		return nil, domain.NewValidationError("actor", "acting principal is required")
	}

	var nextVersion int64 = 1
	if current, err := uc.tariffRepo.ActiveAt(ctx, time.Now().UTC()); err == nil {
		nextVersion = current.Version + 1
	}

	version := &domain.TariffVersion{
		ID:               uc.idGen.Generate(),
		Version:          nextVersion,
		EffectiveFrom:    input.EffectiveFrom,
		CAMSlabs:         input.CAMSlabs,
		ElectricitySlabs: input.ElectricitySlabs,
		CreatedBy:        input.Actor,
		CreatedAt:        time.Now().UTC(),
	}
	if err := version.Validate(); err != nil {
		return nil, err
	}

	if err := uc.tariffRepo.Append(ctx, version); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			Actor:        input.Actor,
			Action:       string(domain.AuditActionTariffActivate),
			ResourceType: "tariff",
			ResourceID:   version.ID,
			AfterState:   domain.MarshalState(version),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    time.Now().UTC(),
		})
	}
	return version, nil
}

// ActiveAt returns the tariff version in force at the given instant.
func (uc *TariffUseCase) ActiveAt(ctx context.Context, asOf time.Time) (*domain.TariffVersion, error) {
	return uc.tariffRepo.ActiveAt(ctx, asOf)
}

// List returns tariff versions, newest first.
func (uc *TariffUseCase) List(ctx context.Context, limit, offset int) ([]*domain.TariffVersion, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.tariffRepo.List(ctx, limit, offset)
}

// ResolveCAMRate returns the monthly CAM rate for a property at the given
// instant. A property with no size resolves to zero; a sized property with
// no matching slab is a hard resolution failure so a half-configured tariff
// table never silently bills zero.
func (uc *TariffUseCase) ResolveCAMRate(ctx context.Context, property *domain.Property, asOf time.Time) (decimal.Decimal, error) {
	sizeLabel := property.SizeLabel()
	if sizeLabel == "" {
		return decimal.Zero, nil
	}

	version, err := uc.tariffRepo.ActiveAt(ctx, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	rate, ok := version.CAMRateFor(sizeLabel, property.PropertyType)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no CAM slab for size %s zone %s in tariff v%d",
			domain.ErrTariffResolution, sizeLabel, property.PropertyType, version.Version)
	}
	return rate, nil
}

// ResolveElectricitySlab returns the slab covering the given consumption at
// the given instant. Zero consumption with no matching slab resolves to a
// zero-rate slab; nonzero consumption must match.
func (uc *TariffUseCase) ResolveElectricitySlab(ctx context.Context, units int64, asOf time.Time) (domain.ElectricitySlab, error) {
	version, err := uc.tariffRepo.ActiveAt(ctx, asOf)
	if err != nil {
		return domain.ElectricitySlab{}, err
	}

	slab, ok := version.ElectricityRateFor(units)
	if !ok {
		if units == 0 {
			return domain.ElectricitySlab{}, nil
		}
		return domain.ElectricitySlab{}, fmt.Errorf("%w: no electricity slab covers %d units in tariff v%d",
			domain.ErrTariffResolution, units, version.Version)
	}
	return slab, nil
}
