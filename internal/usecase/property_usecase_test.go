package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
	"github.com/sgcerp/tajbilling/internal/usecase/mocks"
)

func newPropertyUseCase(t *testing.T) (*usecase.PropertyUseCase, *mocks.MockPropertyRepository) {
	t.Helper()
	repo := mocks.NewMockPropertyRepository()
	uc := usecase.NewPropertyUseCase(
		repo,
		mocks.NewMockSequenceGenerator(),
		mocks.NewMockAuditRepository(),
		mocks.NewMockIDGenerator(),
	)
	return uc, repo
}

func TestPropertyUseCase_Create(t *testing.T) {
	uc, _ := newPropertyUseCase(t)

	property, err := uc.Create(context.Background(), usecase.CreatePropertyInput{
		Name:      "House 12",
		OwnerName: "Ali Khan",
		AreaValue: "4",
		AreaUnit:  domain.AreaUnitMarla,
		Meters:    []domain.Meter{{MeterNumber: "MTR-1"}},
		Actor:     "user-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if property.Serial != 1 {
		t.Errorf("expected serial 1, got %d", property.Serial)
	}
	if property.PropertyType != domain.PropertyTypeResidential {
		t.Errorf("expected residential default, got %s", property.PropertyType)
	}
	if property.SizeLabel() != "4M" {
		t.Errorf("expected size label 4M, got %s", property.SizeLabel())
	}

	second, err := uc.Create(context.Background(), usecase.CreatePropertyInput{
		Name:  "Shop 3",
		Actor: "user-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Serial != 2 {
		t.Errorf("expected serial 2, got %d", second.Serial)
	}
	if second.SizeLabel() != "" {
		t.Errorf("area-less property should have no size label, got %s", second.SizeLabel())
	}
}

func TestPropertyUseCase_Create_Validation(t *testing.T) {
	uc, _ := newPropertyUseCase(t)

	tests := []struct {
		name  string
		input usecase.CreatePropertyInput
	}{
		{"missing actor", usecase.CreatePropertyInput{Name: "House 12"}},
		{"garbage area", usecase.CreatePropertyInput{Name: "House 12", AreaValue: "four", Actor: "user-1"}},
		{"negative area", usecase.CreatePropertyInput{Name: "House 12", AreaValue: "-4", Actor: "user-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := uc.Create(context.Background(), tt.input); !domain.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestPropertyUseCase_Update(t *testing.T) {
	uc, repo := newPropertyUseCase(t)

	property, err := uc.Create(context.Background(), usecase.CreatePropertyInput{
		Name:      "House 12",
		AreaValue: "4",
		AreaUnit:  domain.AreaUnitMarla,
		Actor:     "user-1",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	area := "1"
	unit := domain.AreaUnitKanal
	updated, err := uc.Update(context.Background(), usecase.UpdatePropertyInput{
		PropertyID: property.ID,
		AreaValue:  &area,
		AreaUnit:   &unit,
		Meters:     []domain.Meter{{MeterNumber: "MTR-1"}, {MeterNumber: "MTR-2"}},
		Actor:      "user-2",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.SizeLabel() != "1K" {
		t.Errorf("expected size label 1K, got %s", updated.SizeLabel())
	}
	if updated.Serial != property.Serial {
		t.Error("serial must never change")
	}
	if len(updated.Meters) != 2 {
		t.Errorf("expected 2 meters, got %d", len(updated.Meters))
	}
	if !updated.AreaValue.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected area 1, got %s", updated.AreaValue)
	}

	stored, _ := repo.GetByID(context.Background(), property.ID)
	if stored.UpdatedBy != "user-2" {
		t.Errorf("expected updatedBy user-2, got %s", stored.UpdatedBy)
	}
}

func TestPropertyUseCase_Deactivate(t *testing.T) {
	uc, repo := newPropertyUseCase(t)

	property, err := uc.Create(context.Background(), usecase.CreatePropertyInput{
		Name:      "House 12",
		AreaValue: "4",
		AreaUnit:  domain.AreaUnitMarla,
		Actor:     "user-1",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !property.Active {
		t.Fatal("new properties should start active")
	}

	if err := uc.Deactivate(context.Background(), property.ID, "user-2"); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), property.ID)
	if stored.Active {
		t.Error("property should be inactive")
	}
	if stored.UpdatedBy != "user-2" {
		t.Errorf("expected updatedBy user-2, got %s", stored.UpdatedBy)
	}

	// Deactivated properties drop out of bulk billing sweeps.
	all, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("deactivated property should not be swept, got %d", len(all))
	}

	// A second deactivation is a no-op.
	if err := uc.Deactivate(context.Background(), property.ID, "user-2"); err != nil {
		t.Errorf("repeat deactivate should be a no-op, got %v", err)
	}
}

func TestPropertyUseCase_Deactivate_RejectsLinkedProperty(t *testing.T) {
	uc, repo := newPropertyUseCase(t)

	property, err := uc.Create(context.Background(), usecase.CreatePropertyInput{
		Name:      "House 12",
		AreaValue: "4",
		AreaUnit:  domain.AreaUnitMarla,
		Actor:     "user-1",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	residentID := "res-1"
	property.ResidentID = &residentID
	if err := repo.Update(context.Background(), property); err != nil {
		t.Fatalf("link failed: %v", err)
	}

	if err := uc.Deactivate(context.Background(), property.ID, "user-2"); !domain.IsValidation(err) {
		t.Errorf("deactivating a linked property should fail, got %v", err)
	}
	stored, _ := repo.GetByID(context.Background(), property.ID)
	if !stored.Active {
		t.Error("rejected deactivation must not flip the flag")
	}
}
