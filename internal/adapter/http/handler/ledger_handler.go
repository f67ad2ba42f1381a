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

// LedgerHandler handles resident ledger HTTP requests: deposits, payments
// and transfers.
type LedgerHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC *usecase.LedgerUseCase) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Deposit credits a resident's balance.
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	residentID := chi.URLParam(r, "id")
	if residentID == "" {
		writeError(w, http.StatusBadRequest, "missing resident ID", "")
		return
	}

	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	txn, err := h.ledgerUC.Deposit(r.Context(), req.ToUseCaseInput(residentID, actor))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record deposit", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Pay debits a resident's balance against a bill or invoice.
func (h *LedgerHandler) Pay(w http.ResponseWriter, r *http.Request) {
	residentID := chi.URLParam(r, "id")
	if residentID == "" {
		writeError(w, http.StatusBadRequest, "missing resident ID", "")
		return
	}

	var req dto.PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	txn, err := h.ledgerUC.Pay(r.Context(), req.ToUseCaseInput(residentID, actor))
	if err != nil {
		// The ledger write may have committed even when the linked invoice
		// update failed; surface the fault but include the transaction.
		status := mapDomainError(err)
		if txn != nil {
			writeJSON(w, status, map[string]any{
				"transaction": dto.TransactionFromDomain(txn),
				"error":       "payment recorded with reconciliation fault",
				"message":     err.Error(),
			})
			return
		}
		writeError(w, status, "failed to record payment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Transfer moves balance between two residents as a matched pair.
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	fromResidentID := chi.URLParam(r, "id")
	if fromResidentID == "" {
		writeError(w, http.StatusBadRequest, "missing resident ID", "")
		return
	}

	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	debit, credit, err := h.ledgerUC.Transfer(r.Context(), req.ToUseCaseInput(fromResidentID, actor))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to transfer balance", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferResponse{
		Debit:  dto.TransactionFromDomain(debit),
		Credit: dto.TransactionFromDomain(credit),
	})
}

// ListTransactions lists a resident's transactions with per-deposit usage.
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	residentID := chi.URLParam(r, "id")
	if residentID == "" {
		writeError(w, http.StatusBadRequest, "missing resident ID", "")
		return
	}

	filter := usecase.TransactionFilter{
		Kind:   r.URL.Query().Get("kind"),
		Limit:  parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset: parseIntQuery(r, "offset", 0),
	}
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date", err.Error())
			return
		}
		filter.StartDate = &parsed
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_date", err.Error())
			return
		}
		filter.EndDate = &parsed
	}

	txns, deposits, total, err := h.ledgerUC.ListTransactions(r.Context(), residentID, filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txns),
		Deposits:     dto.DepositRemainingFromUseCase(deposits),
		Total:        total,
	})
}

// ListDeposits lists a resident's deposits oldest first with, for each, the
// amount consumed by payments and the remainder.
func (h *LedgerHandler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	residentID := chi.URLParam(r, "id")
	if residentID == "" {
		writeError(w, http.StatusBadRequest, "missing resident ID", "")
		return
	}

	suspenseOnly := r.URL.Query().Get("suspense") == "true"
	limit := parseIntQuery(r, "limit", domain.DefaultPageSize)
	offset := parseIntQuery(r, "offset", 0)

	deposits, remaining, total, err := h.ledgerUC.ListDeposits(r.Context(), residentID, suspenseOnly, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list deposits", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(deposits),
		Deposits:     dto.DepositRemainingFromUseCase(remaining),
		Total:        total,
	})
}

// UpdateDeposit edits a deposit transaction. Amount changes adjust the
// resident balance by the difference.
func (h *LedgerHandler) UpdateDeposit(w http.ResponseWriter, r *http.Request) {
	residentID := chi.URLParam(r, "id")
	transactionID := chi.URLParam(r, "txnID")
	if residentID == "" || transactionID == "" {
		writeError(w, http.StatusBadRequest, "missing resident or transaction ID", "")
		return
	}

	var req dto.UpdateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	txn, err := h.ledgerUC.UpdateDeposit(r.Context(), req.ToUseCaseInput(residentID, transactionID, actor))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update deposit", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// DeleteDeposit removes a deposit and cascades to the payments it funded.
func (h *LedgerHandler) DeleteDeposit(w http.ResponseWriter, r *http.Request) {
	residentID := chi.URLParam(r, "id")
	transactionID := chi.URLParam(r, "txnID")
	if residentID == "" || transactionID == "" {
		writeError(w, http.StatusBadRequest, "missing resident or transaction ID", "")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	result, err := h.ledgerUC.DeleteDeposit(r.Context(), residentID, transactionID, actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to delete deposit", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DeleteDepositResponse{
		NewBalance:      result.NewBalance,
		DeletedPayments: result.DeletedPayments,
	})
}

// DeleteInvoice removes an invoice, reversing its ledger payments.
func (h *LedgerHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID := chi.URLParam(r, "id")
	if invoiceID == "" {
		writeError(w, http.StatusBadRequest, "missing invoice ID", "")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	result, err := h.ledgerUC.DeleteInvoice(r.Context(), invoiceID, actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to delete invoice", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DeleteInvoiceResponse{
		InvoiceNumber:    result.InvoiceNumber,
		ReversedPayments: result.ReversedPayments,
	})
}

// TransferSuspense moves a suspense deposit to an identified resident.
func (h *LedgerHandler) TransferSuspense(w http.ResponseWriter, r *http.Request) {
	depositID := chi.URLParam(r, "id")
	if depositID == "" {
		writeError(w, http.StatusBadRequest, "missing deposit ID", "")
		return
	}

	var req dto.TransferSuspenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	txn, err := h.ledgerUC.TransferSuspenseDeposit(r.Context(), depositID, req.TargetResidentID, actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to transfer suspense deposit", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}
