package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sgcerp/tajbilling/internal/adapter/http/dto"
	"github.com/sgcerp/tajbilling/internal/adapter/http/middleware"
	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

// PropertyService defines the behavior needed by PropertyHandler.
type PropertyService interface {
	Create(ctx context.Context, input usecase.CreatePropertyInput) (*domain.Property, error)
	Update(ctx context.Context, input usecase.UpdatePropertyInput) (*domain.Property, error)
	Get(ctx context.Context, id string) (*domain.Property, error)
	List(ctx context.Context, filter usecase.PropertyFilter) ([]*domain.Property, int, error)
	Deactivate(ctx context.Context, id, actor string) error
}

// PropertyHandler handles property-related HTTP requests.
type PropertyHandler struct {
	propertyUC PropertyService
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(propertyUC PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyUC: propertyUC}
}

// Create registers a new property.
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	property, err := h.propertyUC.Create(r.Context(), req.ToUseCaseInput(actor))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create property", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PropertyFromDomain(property))
}

// Update edits a property.
func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing property ID", "")
		return
	}

	var req dto.UpdatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	property, err := h.propertyUC.Update(r.Context(), req.ToUseCaseInput(id, actor))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update property", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PropertyFromDomain(property))
}

// Get retrieves a property by ID.
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing property ID", "")
		return
	}

	property, err := h.propertyUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get property", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PropertyFromDomain(property))
}

// Deactivate soft-deletes a property.
func (h *PropertyHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing property ID", "")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	if err := h.propertyUC.Deactivate(r.Context(), id, actor); err != nil {
		writeError(w, mapDomainError(err), "failed to deactivate property", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List lists properties.
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := usecase.PropertyFilter{
		Search:     r.URL.Query().Get("search"),
		Unassigned: r.URL.Query().Get("unassigned") == "true",
		Limit:      parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset:     parseIntQuery(r, "offset", 0),
	}
	if active := r.URL.Query().Get("active"); active != "" {
		val := active == "true"
		filter.Active = &val
	}

	properties, total, err := h.propertyUC.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list properties", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListPropertiesResponse{
		Properties: dto.PropertiesFromDomain(properties),
		Total:      total,
	})
}
