package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError reports a malformed or out-of-range input field. It is
// returned before any persistence happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validation constants
const (
	MaxNameLength    = 255
	MaxAmount        = "1000000000000" // 1 trillion
	MinAmount        = "0.01"
	DefaultPageSize  = 50
	MaxPageSize      = 1000
	ResidentIDDigits = 5
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateAmount validates a monetary amount for deposits, payments and
// transfers.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount, _ := decimal.NewFromString(MinAmount)
	if amount.LessThan(minAmount) {
		return NewValidationError("amount", "minimum amount is %s", MinAmount)
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return NewValidationError("amount", "maximum amount is %s", MaxAmount)
	}

	return nil
}

// ValidateName validates a person or property name.
func ValidateName(field, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewValidationError(field, "cannot be empty")
	}
	if len(name) > MaxNameLength {
		return NewValidationError(field, "exceeds %d characters", MaxNameLength)
	}
	return nil
}

// ValidateEmail validates email format. Empty emails are allowed; residents
// are frequently registered without one.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil
	}
	if !emailRegex.MatchString(email) {
		return NewValidationError("email", "invalid email format")
	}
	return nil
}

// ValidatePagination clamps pagination parameters to sane bounds.
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
