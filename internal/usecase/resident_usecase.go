package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
)

// ResidentUseCase manages account holders. Human-facing resident IDs come
// from a sequence and are assigned exactly once; suspense accounts skip the
// sequence entirely.
type ResidentUseCase struct {
	txManager    TransactionManager
	residentRepo ResidentRepository
	propertyRepo PropertyRepository
	seqGen       SequenceGenerator
	auditRepo    AuditRepository
	idGen        IDGenerator
}

// NewResidentUseCase creates a new ResidentUseCase.
func NewResidentUseCase(
	txManager TransactionManager,
	residentRepo ResidentRepository,
	propertyRepo PropertyRepository,
	seqGen SequenceGenerator,
	auditRepo AuditRepository,
	idGen IDGenerator,
) *ResidentUseCase {
	return &ResidentUseCase{
		txManager:    txManager,
		residentRepo: residentRepo,
		propertyRepo: propertyRepo,
		seqGen:       seqGen,
		auditRepo:    auditRepo,
		idGen:        idGen,
	}
}

// CreateResidentInput represents input for registering a resident.
type CreateResidentInput struct {
	Name          string
	CNIC          string
	ContactNumber string
	Email         string
	AccountType   string
	PropertyIDs   []string
	// Suspense creates a placeholder account for unidentified payments; it
	// gets no resident ID and stays out of regular listings.
	Suspense bool
	Actor    string
}

// Create registers a resident and optionally links properties to it.
func (uc *ResidentUseCase) Create(ctx context.Context, input CreateResidentInput) (*domain.Resident, error) {
	if input.Actor == "" {
		return nil, domain.NewValidationError("actor", "acting principal is required")
	}
	if !input.Suspense && input.Name == "" {
		return nil, domain.NewValidationError("name", "cannot be empty")
	}

	now := time.Now().UTC()
	resident := &domain.Resident{
		ID:            uc.idGen.Generate(),
		Name:          input.Name,
		CNIC:          input.CNIC,
		ContactNumber: input.ContactNumber,
		Email:         input.Email,
		AccountType:   orDefault(input.AccountType, domain.AccountTypeResident),
		Balance:       decimal.Zero,
		Version:       1,
		Active:        true,
		PropertyIDs:   input.PropertyIDs,
		CreatedBy:     input.Actor,
		UpdatedBy:     input.Actor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if !input.Suspense {
		seq, err := uc.seqGen.Next(ctx, SequenceResidentID)
		if err != nil {
			return nil, err
		}
		resident.ResidentID = domain.FormatResidentID(seq)
	}
	if err := resident.Validate(); err != nil {
		return nil, err
	}

	if err := uc.residentRepo.Create(ctx, resident); err != nil {
		return nil, err
	}

	if len(input.PropertyIDs) > 0 {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback(ctx)
		if err := uc.propertyRepo.AssignResident(ctx, tx, input.PropertyIDs, &resident.ID, input.Actor, now); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
	}

	uc.writeAudit(ctx, input.Actor, domain.AuditActionResidentCreate, resident.ID, nil, resident)
	return resident, nil
}

// UpdateResidentInput represents an edit to a resident's identity fields.
// Balance is never editable here; only ledger operations move it.
type UpdateResidentInput struct {
	ResidentID    string
	Name          *string
	CNIC          *string
	ContactNumber *string
	Email         *string
	AccountType   *string
	PropertyIDs   []string
	Actor         string
}

// Update edits identity fields and re-links properties.
func (uc *ResidentUseCase) Update(ctx context.Context, input UpdateResidentInput) (*domain.Resident, error) {
	resident, err := uc.residentRepo.GetByID(ctx, input.ResidentID)
	if err != nil {
		return nil, err
	}

	before := *resident
	if input.Name != nil {
		resident.Name = *input.Name
	}
	if input.CNIC != nil {
		resident.CNIC = *input.CNIC
	}
	if input.ContactNumber != nil {
		resident.ContactNumber = *input.ContactNumber
	}
	if input.Email != nil {
		resident.Email = *input.Email
	}
	if input.AccountType != nil {
		resident.AccountType = *input.AccountType
	}
	now := time.Now().UTC()
	resident.UpdatedBy = input.Actor
	resident.UpdatedAt = now
	if err := resident.Validate(); err != nil {
		return nil, err
	}

	if input.PropertyIDs != nil {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback(ctx)

		// Unlink the properties no longer listed, then link the new set.
		if err := uc.propertyRepo.AssignResident(ctx, tx, resident.PropertyIDs, nil, input.Actor, now); err != nil {
			return nil, err
		}
		if err := uc.propertyRepo.AssignResident(ctx, tx, input.PropertyIDs, &resident.ID, input.Actor, now); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		resident.PropertyIDs = input.PropertyIDs
	}

	if err := uc.residentRepo.Update(ctx, resident); err != nil {
		return nil, err
	}
	uc.writeAudit(ctx, input.Actor, domain.AuditActionResidentUpdate, resident.ID, &before, resident)
	return resident, nil
}

// Deactivate soft-deletes a resident. The transaction history and balance
// survive; a nonzero balance blocks deactivation so money never strands.
func (uc *ResidentUseCase) Deactivate(ctx context.Context, residentID, actor string) error {
	resident, err := uc.residentRepo.GetByID(ctx, residentID)
	if err != nil {
		return err
	}
	if !resident.Balance.IsZero() {
		return domain.NewValidationError("balance", "resident with balance %s cannot be deactivated", resident.Balance)
	}

	before := *resident
	now := time.Now().UTC()
	resident.Active = false
	resident.UpdatedBy = actor
	resident.UpdatedAt = now
	if err := uc.residentRepo.Update(ctx, resident); err != nil {
		return err
	}

	if len(resident.PropertyIDs) > 0 {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)
		if err := uc.propertyRepo.AssignResident(ctx, tx, resident.PropertyIDs, nil, actor, now); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}

	uc.writeAudit(ctx, actor, domain.AuditActionResidentDelete, resident.ID, &before, resident)
	return nil
}

// Get returns one resident.
func (uc *ResidentUseCase) Get(ctx context.Context, id string) (*domain.Resident, error) {
	return uc.residentRepo.GetByID(ctx, id)
}

// List returns residents matching the filter. Suspense accounts only appear
// when explicitly requested.
func (uc *ResidentUseCase) List(ctx context.Context, filter ResidentFilter) ([]*domain.Resident, int, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.residentRepo.List(ctx, filter)
}

func (uc *ResidentUseCase) writeAudit(ctx context.Context, actor string, action domain.AuditAction, resourceID string, before, after any) {
	if uc.auditRepo == nil {
		return
	}
	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Actor:        actor,
		Action:       string(action),
		ResourceType: domain.AggregateTypeResident,
		ResourceID:   resourceID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
