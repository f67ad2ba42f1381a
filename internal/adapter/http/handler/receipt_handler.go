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

// ReceiptHandler handles receipt-related HTTP requests.
type ReceiptHandler struct {
	receiptUC *usecase.ReceiptUseCase
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(receiptUC *usecase.ReceiptUseCase) *ReceiptHandler {
	return &ReceiptHandler{receiptUC: receiptUC}
}

// Post validates and persists a receipt, applying its allocations to the
// invoices in one transaction.
func (h *ReceiptHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req dto.PostReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	receipt, err := h.receiptUC.Post(r.Context(), req.ToUseCaseInput(actor))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post receipt", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ReceiptFromDomain(receipt))
}

// Void voids a posted receipt and backs its allocations out of the invoices.
func (h *ReceiptHandler) Void(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing receipt ID", "")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	receipt, err := h.receiptUC.Void(r.Context(), id, actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to void receipt", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReceiptFromDomain(receipt))
}

// Get retrieves a receipt by ID.
func (h *ReceiptHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing receipt ID", "")
		return
	}

	receipt, err := h.receiptUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get receipt", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReceiptFromDomain(receipt))
}

// List lists receipts, optionally filtered by resident.
func (h *ReceiptHandler) List(w http.ResponseWriter, r *http.Request) {
	residentID := r.URL.Query().Get("resident_id")
	limit := parseIntQuery(r, "limit", domain.DefaultPageSize)
	offset := parseIntQuery(r, "offset", 0)

	receipts, total, err := h.receiptUC.List(r.Context(), residentID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list receipts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListReceiptsResponse{
		Receipts: dto.ReceiptsFromDomain(receipts),
		Total:    total,
	})
}
