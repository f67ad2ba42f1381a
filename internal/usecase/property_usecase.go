package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
)

// PropertyUseCase manages billable properties. Serial numbers come from a
// sequence at creation and are never reassigned.
type PropertyUseCase struct {
	propertyRepo PropertyRepository
	seqGen       SequenceGenerator
	auditRepo    AuditRepository
	idGen        IDGenerator
}

// NewPropertyUseCase creates a new PropertyUseCase.
func NewPropertyUseCase(propertyRepo PropertyRepository, seqGen SequenceGenerator, auditRepo AuditRepository, idGen IDGenerator) *PropertyUseCase {
	return &PropertyUseCase{
		propertyRepo: propertyRepo,
		seqGen:       seqGen,
		auditRepo:    auditRepo,
		idGen:        idGen,
	}
}

// CreatePropertyInput represents input for registering a property.
type CreatePropertyInput struct {
	Name         string
	PlotNumber   string
	Sector       string
	Block        string
	FullAddress  string
	OwnerName    string
	AreaValue    string
	AreaUnit     string
	PropertyType string
	Meters       []domain.Meter
	Rental       *domain.RentalAgreement
	Actor        string
}

// Create registers a property.
func (uc *PropertyUseCase) Create(ctx context.Context, input CreatePropertyInput) (*domain.Property, error) {
	if input.Actor == "" {
		return nil, domain.NewValidationError("actor", "acting principal is required")
	}

	area, err := parseArea(input.AreaValue)
	if err != nil {
		return nil, err
	}

	serial, err := uc.seqGen.Next(ctx, SequencePropertySerial)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	property := &domain.Property{
		ID:           uc.idGen.Generate(),
		Serial:       serial,
		Name:         input.Name,
		PlotNumber:   input.PlotNumber,
		Sector:       input.Sector,
		Block:        input.Block,
		FullAddress:  input.FullAddress,
		OwnerName:    input.OwnerName,
		AreaValue:    area,
		AreaUnit:     input.AreaUnit,
		PropertyType: orDefault(input.PropertyType, domain.PropertyTypeResidential),
		Meters:       input.Meters,
		Rental:       input.Rental,
		Active:       true,
		CreatedBy:    input.Actor,
		UpdatedBy:    input.Actor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := property.Validate(); err != nil {
		return nil, err
	}

	if err := uc.propertyRepo.Create(ctx, property); err != nil {
		return nil, err
	}
	uc.writeAudit(ctx, input.Actor, domain.AuditActionPropertyCreate, property.ID, nil, property)
	return property, nil
}

// UpdatePropertyInput represents an edit to a property.
type UpdatePropertyInput struct {
	PropertyID   string
	Name         *string
	PlotNumber   *string
	Sector       *string
	Block        *string
	FullAddress  *string
	OwnerName    *string
	AreaValue    *string
	AreaUnit     *string
	PropertyType *string
	Meters       []domain.Meter
	Rental       *domain.RentalAgreement
	Actor        string
}

// Update edits a property. The serial and identity are immutable.
func (uc *PropertyUseCase) Update(ctx context.Context, input UpdatePropertyInput) (*domain.Property, error) {
	property, err := uc.propertyRepo.GetByID(ctx, input.PropertyID)
	if err != nil {
		return nil, err
	}

	before := *property
	if input.Name != nil {
		property.Name = *input.Name
	}
	if input.PlotNumber != nil {
		property.PlotNumber = *input.PlotNumber
	}
	if input.Sector != nil {
		property.Sector = *input.Sector
	}
	if input.Block != nil {
		property.Block = *input.Block
	}
	if input.FullAddress != nil {
		property.FullAddress = *input.FullAddress
	}
	if input.OwnerName != nil {
		property.OwnerName = *input.OwnerName
	}
	if input.AreaValue != nil {
		area, err := parseArea(*input.AreaValue)
		if err != nil {
			return nil, err
		}
		property.AreaValue = area
	}
	if input.AreaUnit != nil {
		property.AreaUnit = *input.AreaUnit
	}
	if input.PropertyType != nil {
		property.PropertyType = *input.PropertyType
	}
	if input.Meters != nil {
		property.Meters = input.Meters
	}
	if input.Rental != nil {
		property.Rental = input.Rental
	}
	property.UpdatedBy = input.Actor
	property.UpdatedAt = time.Now().UTC()
	if err := property.Validate(); err != nil {
		return nil, err
	}

	if err := uc.propertyRepo.Update(ctx, property); err != nil {
		return nil, err
	}
	uc.writeAudit(ctx, input.Actor, domain.AuditActionPropertyUpdate, property.ID, &before, property)
	return property, nil
}

// Deactivate soft-deletes a property. A property still linked to a resident
// must be unlinked first. Deactivating is idempotent; historical charges and
// invoices stay in place, the property just drops out of listings and bulk
// billing runs.
func (uc *PropertyUseCase) Deactivate(ctx context.Context, id, actor string) error {
	property, err := uc.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !property.Active {
		return nil
	}
	if property.ResidentID != nil {
		return domain.NewValidationError("residentId", "property is linked to a resident; unlink it before deactivating")
	}

	before := *property
	property.Active = false
	property.UpdatedBy = actor
	property.UpdatedAt = time.Now().UTC()
	if err := uc.propertyRepo.Update(ctx, property); err != nil {
		return err
	}
	uc.writeAudit(ctx, actor, domain.AuditActionPropertyDelete, property.ID, &before, property)
	return nil
}

// Get returns one property.
func (uc *PropertyUseCase) Get(ctx context.Context, id string) (*domain.Property, error) {
	return uc.propertyRepo.GetByID(ctx, id)
}

// List returns properties matching the filter.
func (uc *PropertyUseCase) List(ctx context.Context, filter PropertyFilter) ([]*domain.Property, int, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.propertyRepo.List(ctx, filter)
}

func parseArea(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	area, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.NewValidationError("areaValue", "invalid area %q", s)
	}
	if area.IsNegative() {
		return decimal.Zero, domain.NewValidationError("areaValue", "cannot be negative")
	}
	return area, nil
}

func (uc *PropertyUseCase) writeAudit(ctx context.Context, actor string, action domain.AuditAction, resourceID string, before, after any) {
	if uc.auditRepo == nil {
		return
	}
	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Actor:        actor,
		Action:       string(action),
		ResourceType: domain.AggregateTypeProperty,
		ResourceID:   resourceID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
