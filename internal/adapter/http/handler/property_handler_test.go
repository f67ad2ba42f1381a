package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/adapter/http/dto"
	"github.com/sgcerp/tajbilling/internal/adapter/http/middleware"
	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

type fakePropertyService struct {
	createInput   usecase.CreatePropertyInput
	deactivatedID string
	property      *domain.Property
	err           error
}

func (f *fakePropertyService) Create(ctx context.Context, input usecase.CreatePropertyInput) (*domain.Property, error) {
	f.createInput = input
	return f.property, f.err
}

func (f *fakePropertyService) Update(ctx context.Context, input usecase.UpdatePropertyInput) (*domain.Property, error) {
	return f.property, f.err
}

func (f *fakePropertyService) Get(ctx context.Context, id string) (*domain.Property, error) {
	return f.property, f.err
}

func (f *fakePropertyService) List(ctx context.Context, filter usecase.PropertyFilter) ([]*domain.Property, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return []*domain.Property{f.property}, 1, nil
}

func (f *fakePropertyService) Deactivate(ctx context.Context, id, actor string) error {
	f.deactivatedID = id
	return f.err
}

func sampleProperty() *domain.Property {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Property{
		ID:           "prop-1",
		Serial:       7,
		Name:         "House 12",
		OwnerName:    "Asad Khan",
		AreaValue:    decimal.NewFromInt(4),
		AreaUnit:     domain.AreaUnitMarla,
		PropertyType: domain.PropertyTypeResidential,
		Meters:       []domain.Meter{{MeterNumber: "MTR-100"}},
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestPropertyHandlerCreate(t *testing.T) {
	svc := &fakePropertyService{property: sampleProperty()}
	h := NewPropertyHandler(svc)

	body, _ := json.Marshal(dto.CreatePropertyRequest{
		Name:      "House 12",
		OwnerName: "Asad Khan",
		AreaValue: "4",
		AreaUnit:  domain.AreaUnitMarla,
		Meters:    []dto.MeterItem{{MeterNumber: "MTR-100"}},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", bytes.NewReader(body))
	req.Header.Set(middleware.ActorHeader, "admin")
	rr := httptest.NewRecorder()

	middleware.Actor(http.HandlerFunc(h.Create)).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if svc.createInput.Actor != "admin" {
		t.Fatalf("expected actor from header, got %q", svc.createInput.Actor)
	}
	if len(svc.createInput.Meters) != 1 || svc.createInput.Meters[0].MeterNumber != "MTR-100" {
		t.Fatalf("meters did not convert: %+v", svc.createInput.Meters)
	}

	var resp dto.PropertyResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "prop-1" || resp.SizeLabel != "4M" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestPropertyHandlerCreateInvalidBody(t *testing.T) {
	h := NewPropertyHandler(&fakePropertyService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", bytes.NewReader([]byte("{broken")))
	rr := httptest.NewRecorder()

	h.Create(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestPropertyHandlerGetNotFound(t *testing.T) {
	h := NewPropertyHandler(&fakePropertyService{err: domain.ErrPropertyNotFound})

	r := chi.NewRouter()
	r.Get("/api/v1/properties/{id}", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/missing", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestPropertyHandlerDeactivate(t *testing.T) {
	svc := &fakePropertyService{property: sampleProperty()}
	h := NewPropertyHandler(svc)

	r := chi.NewRouter()
	r.Delete("/api/v1/properties/{id}", h.Deactivate)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/properties/prop-1", nil)
	req.Header.Set(middleware.ActorHeader, "admin")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}
	if svc.deactivatedID != "prop-1" {
		t.Fatalf("expected prop-1 deactivated, got %q", svc.deactivatedID)
	}
}

func TestPropertyHandlerList(t *testing.T) {
	h := NewPropertyHandler(&fakePropertyService{property: sampleProperty()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties?limit=10", nil)
	rr := httptest.NewRecorder()

	h.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp dto.ListPropertiesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 || len(resp.Properties) != 1 {
		t.Fatalf("unexpected listing: %+v", resp)
	}
}
