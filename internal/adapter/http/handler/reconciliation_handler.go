package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sgcerp/tajbilling/internal/adapter/http/dto"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

// ReconciliationHandler handles ledger reconciliation HTTP requests.
type ReconciliationHandler struct {
	reconUC *usecase.ReconciliationUseCase
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconUC *usecase.ReconciliationUseCase) *ReconciliationHandler {
	return &ReconciliationHandler{reconUC: reconUC}
}

// Report runs every consistency check and aggregates the findings.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconUC.GenerateReport(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to generate reconciliation report", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Resident replays one resident's transactions against the stored balance.
func (h *ReconciliationHandler) Resident(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing resident ID", "")
		return
	}

	result, discrepancies, err := h.reconUC.ReconcileResident(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile resident", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconcileResidentResponse{
		Result:        dto.BalanceCheckFromUseCase(result),
		Discrepancies: discrepancies,
	})
}

// OwnerMatches proposes resident links for unassigned properties. The
// matches are suggestions for an operator to confirm, never applied
// automatically.
func (h *ReconciliationHandler) OwnerMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.reconUC.SuggestOwnerMatches(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to suggest owner matches", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, matches)
}
