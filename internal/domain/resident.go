package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Account types
const (
	AccountTypeResident       = "Resident"
	AccountTypePropertyDealer = "Property Dealer"
	AccountTypeOther          = "Other"
)

// Resident is an account holder with a prepaid balance. The balance is the
// source of truth; transaction snapshots are a derived audit trail. Residents
// are soft-deleted only, so their transaction history survives.
type Resident struct {
	ID            string
	ResidentID    string // human-facing, zero-padded; empty for suspense accounts
	Name          string
	CNIC          string
	ContactNumber string
	Email         string
	AccountType   string
	Balance       decimal.Decimal
	Version       int64
	Active        bool
	PropertyIDs   []string
	CreatedBy     string
	UpdatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsSuspense reports whether this is a placeholder account for payments whose
// sender could not be identified. Suspense residents never receive a resident
// ID and are excluded from regular listings.
func (r *Resident) IsSuspense() bool {
	return r.Name == "" || r.ResidentID == ""
}

// ValidateDebit checks that the balance covers a debit of amount.
func (r *Resident) ValidateDebit(amount decimal.Decimal) error {
	if r.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (r *Resident) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return r.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (r *Resident) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return r.Balance.Add(amount)
}

// FormatResidentID renders a sequence value as the zero-padded human-facing
// resident ID.
func FormatResidentID(seq int64) string {
	return fmt.Sprintf("%0*d", ResidentIDDigits, seq)
}

// Validate checks resident fields. Name may be empty only for suspense
// accounts, which is the caller's decision; everything else is validated here.
func (r *Resident) Validate() error {
	if r.Name != "" {
		if err := ValidateName("name", r.Name); err != nil {
			return err
		}
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	switch r.AccountType {
	case "", AccountTypeResident, AccountTypePropertyDealer, AccountTypeOther:
	default:
		return NewValidationError("accountType", "unknown account type %q", r.AccountType)
	}
	if r.Balance.IsNegative() {
		return NewValidationError("balance", "cannot be negative")
	}
	return nil
}
