package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sgcerp/tajbilling/internal/adapter/http/dto"
	"github.com/sgcerp/tajbilling/internal/adapter/http/middleware"
	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

// CAMChargeHandler handles common-area-maintenance billing requests.
type CAMChargeHandler struct {
	camUC *usecase.CAMChargeUseCase
}

// NewCAMChargeHandler creates a new CAMChargeHandler.
func NewCAMChargeHandler(camUC *usecase.CAMChargeUseCase) *CAMChargeHandler {
	return &CAMChargeHandler{camUC: camUC}
}

// Create bills one property's CAM for one month.
func (h *CAMChargeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCAMChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	charge, err := h.camUC.Create(r.Context(), req.ToUseCaseInput(actor))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create CAM charge", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.CAMChargeFromDomain(charge))
}

// UpdateAmount corrects a charge's amount manually.
func (h *CAMChargeHandler) UpdateAmount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing charge ID", "")
		return
	}

	var req dto.UpdateCAMChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	charge, err := h.camUC.UpdateAmount(r.Context(), id, req.Amount, actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update CAM charge", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CAMChargeFromDomain(charge))
}

// Delete removes a charge and its invoice line.
func (h *CAMChargeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing charge ID", "")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	if err := h.camUC.Delete(r.Context(), id, actor); err != nil {
		writeError(w, mapDomainError(err), "failed to delete CAM charge", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get retrieves a charge by ID.
func (h *CAMChargeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing charge ID", "")
		return
	}

	charge, err := h.camUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get CAM charge", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CAMChargeFromDomain(charge))
}

// List lists charges for a month.
func (h *CAMChargeHandler) List(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	limit := parseIntQuery(r, "limit", domain.DefaultPageSize)
	offset := parseIntQuery(r, "offset", 0)

	charges, total, err := h.camUC.List(r.Context(), month, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list CAM charges", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListCAMChargesResponse{
		Charges: dto.CAMChargesFromDomain(charges),
		Total:   total,
	})
}

// BulkGenerate bills every property for one month. Per-item failures are
// reported in the summary, never abort the run.
func (h *CAMChargeHandler) BulkGenerate(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkCAMChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	summary, err := h.camUC.BulkGenerate(r.Context(), req.Year, time.Month(req.Month), actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to run bulk CAM billing", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
