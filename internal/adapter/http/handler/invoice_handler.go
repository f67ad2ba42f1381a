package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sgcerp/tajbilling/internal/adapter/http/dto"
	"github.com/sgcerp/tajbilling/internal/adapter/http/middleware"
	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

// InvoiceHandler handles invoice-related HTTP requests.
type InvoiceHandler struct {
	invoiceUC *usecase.InvoiceUseCase
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceUC *usecase.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{invoiceUC: invoiceUC}
}

// UpsertCharge attaches a manual charge line (rent, custom) to the period's
// invoice, creating the invoice if needed. Re-submitting the same stream for
// the same period replaces the existing line.
func (h *InvoiceHandler) UpsertCharge(w http.ResponseWriter, r *http.Request) {
	var req dto.UpsertChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	invoice, err := h.invoiceUC.UpsertChargeLine(r.Context(), req.ToUseCaseInput(actor))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to upsert charge line", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.InvoiceFromDomain(invoice))
}

// RemoveCharge detaches a charge line from the period's invoice. The line is
// identified by query parameters: property_id, month, type and optionally
// meter_number and source_id.
func (h *InvoiceHandler) RemoveCharge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	propertyID := q.Get("property_id")
	month := q.Get("month")
	chargeType := q.Get("type")
	if propertyID == "" || month == "" || chargeType == "" {
		writeError(w, http.StatusBadRequest, "missing charge identity",
			"property_id, month and type are required")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	err := h.invoiceUC.RemoveChargeLine(r.Context(), propertyID, month,
		q.Get("meter_number"), chargeType, q.Get("source_id"), actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to remove charge line", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecordPayment appends to the invoice's payment log.
func (h *InvoiceHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing invoice ID", "")
		return
	}

	var req dto.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	invoice, err := h.invoiceUC.RecordPayment(r.Context(), req.ToUseCaseInput(id, actor))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record payment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.InvoiceFromDomain(invoice))
}

// Cancel cancels an invoice.
func (h *InvoiceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing invoice ID", "")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	invoice, err := h.invoiceUC.Cancel(r.Context(), id, actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to cancel invoice", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.InvoiceFromDomain(invoice))
}

// Get retrieves an invoice by ID.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing invoice ID", "")
		return
	}

	invoice, err := h.invoiceUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get invoice", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.InvoiceFromDomain(invoice))
}

// List lists invoices, optionally filtered by search text and month.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	month := r.URL.Query().Get("month")
	limit := parseIntQuery(r, "limit", domain.DefaultPageSize)
	offset := parseIntQuery(r, "offset", 0)

	invoices, total, err := h.invoiceUC.List(r.Context(), search, month, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list invoices", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListInvoicesResponse{
		Invoices: dto.InvoicesFromDomain(invoices),
		Total:    total,
	})
}

// ListByProperty lists a property's invoices.
func (h *InvoiceHandler) ListByProperty(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "id")
	if propertyID == "" {
		writeError(w, http.StatusBadRequest, "missing property ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", domain.DefaultPageSize)
	offset := parseIntQuery(r, "offset", 0)

	invoices, total, err := h.invoiceUC.ListByProperty(r.Context(), propertyID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list invoices", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListInvoicesResponse{
		Invoices: dto.InvoicesFromDomain(invoices),
		Total:    total,
	})
}

// Sweep recomputes payment statuses across open invoices, marking overdue
// ones and applying late surcharges that have come due.
func (h *InvoiceHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	updated, err := h.invoiceUC.SweepStatuses(r.Context(), actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to sweep invoice statuses", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SweepResponse{Updated: updated})
}
