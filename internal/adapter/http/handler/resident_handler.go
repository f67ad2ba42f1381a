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

// ResidentService defines the behavior needed by ResidentHandler.
type ResidentService interface {
	Create(ctx context.Context, input usecase.CreateResidentInput) (*domain.Resident, error)
	Update(ctx context.Context, input usecase.UpdateResidentInput) (*domain.Resident, error)
	Deactivate(ctx context.Context, residentID, actor string) error
	Get(ctx context.Context, id string) (*domain.Resident, error)
	List(ctx context.Context, filter usecase.ResidentFilter) ([]*domain.Resident, int, error)
}

// ResidentHandler handles resident-related HTTP requests.
type ResidentHandler struct {
	residentUC ResidentService
}

// NewResidentHandler creates a new ResidentHandler.
func NewResidentHandler(residentUC ResidentService) *ResidentHandler {
	return &ResidentHandler{residentUC: residentUC}
}

// Create registers a new resident.
func (h *ResidentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateResidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	resident, err := h.residentUC.Create(r.Context(), req.ToUseCaseInput(actor))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create resident", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ResidentFromDomain(resident))
}

// Update edits a resident's identity fields.
func (h *ResidentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing resident ID", "")
		return
	}

	var req dto.UpdateResidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	resident, err := h.residentUC.Update(r.Context(), req.ToUseCaseInput(id, actor))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update resident", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ResidentFromDomain(resident))
}

// Deactivate soft-deletes a resident.
func (h *ResidentHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing resident ID", "")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	if err := h.residentUC.Deactivate(r.Context(), id, actor); err != nil {
		writeError(w, mapDomainError(err), "failed to deactivate resident", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get retrieves a resident by ID.
func (h *ResidentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing resident ID", "")
		return
	}

	resident, err := h.residentUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get resident", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ResidentFromDomain(resident))
}

// List lists residents. Suspense accounts only show up with suspense=true.
func (h *ResidentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := usecase.ResidentFilter{
		Search:       r.URL.Query().Get("search"),
		AccountType:  r.URL.Query().Get("account_type"),
		SuspenseOnly: r.URL.Query().Get("suspense") == "true",
		Limit:        parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset:       parseIntQuery(r, "offset", 0),
	}
	if active := r.URL.Query().Get("active"); active != "" {
		val := active == "true"
		filter.Active = &val
	}

	residents, total, err := h.residentUC.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list residents", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResidentsResponse{
		Residents: dto.ResidentsFromDomain(residents),
		Total:     total,
	})
}
