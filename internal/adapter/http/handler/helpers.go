package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sgcerp/tajbilling/internal/adapter/http/dto"
	"github.com/sgcerp/tajbilling/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrPropertyNotFound),
		errors.Is(err, domain.ErrResidentNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrDepositNotFound),
		errors.Is(err, domain.ErrInvoiceNotFound),
		errors.Is(err, domain.ErrReceiptNotFound),
		errors.Is(err, domain.ErrBillNotFound),
		errors.Is(err, domain.ErrTariffNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateBill),
		errors.Is(err, domain.ErrDuplicateInvoice),
		errors.Is(err, domain.ErrInvoiceNotEditable),
		errors.Is(err, domain.ErrReceiptNotPosted),
		errors.Is(err, domain.ErrDepositInUse),
		errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrOverPayment),
		errors.Is(err, domain.ErrOverAllocation),
		errors.Is(err, domain.ErrDepositOverused),
		errors.Is(err, domain.ErrTariffResolution):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSameResident),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSuspenseResident),
		domain.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
