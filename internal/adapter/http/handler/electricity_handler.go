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

// ElectricityHandler handles electricity billing requests.
type ElectricityHandler struct {
	electricityUC *usecase.ElectricityUseCase
}

// NewElectricityHandler creates a new ElectricityHandler.
func NewElectricityHandler(electricityUC *usecase.ElectricityUseCase) *ElectricityHandler {
	return &ElectricityHandler{electricityUC: electricityUC}
}

// Preview computes the charge breakdown for a reading pair without billing.
func (h *ElectricityHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateElectricityBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	breakdown, err := h.electricityUC.Preview(r.Context(), req.ToUseCaseInput(actor))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to preview charges", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BreakdownFromDomain(breakdown))
}

// Create bills one meter for one month.
func (h *ElectricityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateElectricityBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	bill, err := h.electricityUC.Create(r.Context(), req.ToUseCaseInput(actor))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create electricity bill", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ElectricityBillFromDomain(bill))
}

// Correct re-bills an existing bill from corrected readings.
func (h *ElectricityHandler) Correct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing bill ID", "")
		return
	}

	var req dto.CorrectElectricityBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	bill, err := h.electricityUC.Correct(r.Context(), id, req.PreviousReading, req.CurrentReading, actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to correct electricity bill", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ElectricityBillFromDomain(bill))
}

// Delete removes a bill and its invoice line.
func (h *ElectricityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing bill ID", "")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	if err := h.electricityUC.Delete(r.Context(), id, actor); err != nil {
		writeError(w, mapDomainError(err), "failed to delete electricity bill", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get retrieves a bill by ID.
func (h *ElectricityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing bill ID", "")
		return
	}

	bill, err := h.electricityUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get electricity bill", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ElectricityBillFromDomain(bill))
}

// List lists bills for a month.
func (h *ElectricityHandler) List(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	limit := parseIntQuery(r, "limit", domain.DefaultPageSize)
	offset := parseIntQuery(r, "offset", 0)

	bills, total, err := h.electricityUC.List(r.Context(), month, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list electricity bills", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListElectricityBillsResponse{
		Bills: dto.ElectricityBillsFromDomain(bills),
		Total: total,
	})
}

// BulkGenerate bills a batch of meter readings. Already-billed meters are
// skipped; per-item failures are reported in the summary.
func (h *ElectricityHandler) BulkGenerate(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkElectricityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	summary, err := h.electricityUC.BulkGenerate(r.Context(), req.Year, time.Month(req.Month), req.ToReadings(), actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to run bulk electricity billing", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
