package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
)

// ReconciliationUseCase detects drift between aggregates that are mutated
// without a shared transaction: resident balances vs their transaction
// trails, transfer pairs, invoice derived totals, and residents whose
// property links went stale. It reports faults; it never repairs them
// silently.
type ReconciliationUseCase struct {
	residentRepo ResidentRepository
	txnRepo      TransactionRepository
	invoiceRepo  InvoiceRepository
	propertyRepo PropertyRepository
	graceDays    int
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	residentRepo ResidentRepository,
	txnRepo TransactionRepository,
	invoiceRepo InvoiceRepository,
	propertyRepo PropertyRepository,
	graceDays int,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		residentRepo: residentRepo,
		txnRepo:      txnRepo,
		invoiceRepo:  invoiceRepo,
		propertyRepo: propertyRepo,
		graceDays:    graceDays,
	}
}

// Discrepancy is one detected inconsistency.
type Discrepancy struct {
	Kind       string `json:"kind"`
	ResourceID string `json:"resource_id"`
	Detail     string `json:"detail"`
}

// Discrepancy kinds.
const (
	DiscrepancyBalanceDrift     = "balance_drift"
	DiscrepancyBrokenSnapshot   = "broken_snapshot"
	DiscrepancyUnpairedTransfer = "unpaired_transfer"
	DiscrepancyInvoiceTotals    = "invoice_totals"
	DiscrepancyUnmatchedOwner   = "unmatched_owner"
)

// BalanceCheckResult compares one resident's stored balance against the sum
// of their transaction trail.
type BalanceCheckResult struct {
	ResidentID        string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	CheckedAt         time.Time
}

// ReconcileResident replays a resident's transactions and compares the
// running sum with the stored balance. The snapshot chain is checked too:
// every transaction's balanceBefore must match the previous balanceAfter.
func (uc *ReconciliationUseCase) ReconcileResident(ctx context.Context, residentID string) (*BalanceCheckResult, []Discrepancy, error) {
	resident, err := uc.residentRepo.GetByID(ctx, residentID)
	if err != nil {
		return nil, nil, err
	}

	txns, err := uc.txnRepo.ListByResidentAll(ctx, residentID)
	if err != nil {
		return nil, nil, err
	}

	var discrepancies []Discrepancy
	calculated := decimal.Zero
	for _, txn := range txns {
		if !txn.BalanceBefore.Equal(calculated) {
			discrepancies = append(discrepancies, Discrepancy{
				Kind:       DiscrepancyBrokenSnapshot,
				ResourceID: txn.ID,
				Detail: "balanceBefore " + txn.BalanceBefore.String() +
					" does not continue from running balance " + calculated.String(),
			})
		}
		calculated = calculated.Add(txn.Signed())
		if !txn.BalanceAfter.Equal(calculated) {
			discrepancies = append(discrepancies, Discrepancy{
				Kind:       DiscrepancyBrokenSnapshot,
				ResourceID: txn.ID,
				Detail:     "balanceAfter " + txn.BalanceAfter.String() + " does not match running balance " + calculated.String(),
			})
		}
	}

	result := &BalanceCheckResult{
		ResidentID:        residentID,
		RecordedBalance:   resident.Balance,
		CalculatedBalance: calculated,
		Difference:        resident.Balance.Sub(calculated),
		IsReconciled:      resident.Balance.Equal(calculated) && len(discrepancies) == 0,
		CheckedAt:         time.Now().UTC(),
	}
	if !resident.Balance.Equal(calculated) {
		discrepancies = append(discrepancies, Discrepancy{
			Kind:       DiscrepancyBalanceDrift,
			ResourceID: residentID,
			Detail: "stored balance " + resident.Balance.String() +
				" but transaction trail sums to " + calculated.String(),
		})
	}
	return result, discrepancies, nil
}

// CheckTransferPairs finds transfer legs whose counterparty is missing or
// does not point back, the footprint of a transfer that failed between its
// two writes.
func (uc *ReconciliationUseCase) CheckTransferPairs(ctx context.Context) ([]Discrepancy, error) {
	residents, err := uc.residentRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var discrepancies []Discrepancy
	for _, resident := range residents {
		txns, err := uc.txnRepo.ListByResidentAll(ctx, resident.ID)
		if err != nil {
			return nil, err
		}
		for _, txn := range txns {
			if txn.Kind != domain.TransactionKindTransferOut && txn.Kind != domain.TransactionKindTransferIn {
				continue
			}
			if txn.CounterpartyID == nil {
				discrepancies = append(discrepancies, Discrepancy{
					Kind:       DiscrepancyUnpairedTransfer,
					ResourceID: txn.ID,
					Detail:     txn.Kind + " has no counterparty transaction",
				})
				continue
			}
			other, err := uc.txnRepo.GetByID(ctx, *txn.CounterpartyID)
			if err != nil {
				discrepancies = append(discrepancies, Discrepancy{
					Kind:       DiscrepancyUnpairedTransfer,
					ResourceID: txn.ID,
					Detail:     "counterparty " + *txn.CounterpartyID + " not found",
				})
				continue
			}
			if other.CounterpartyID == nil || *other.CounterpartyID != txn.ID || !other.Amount.Equal(txn.Amount) {
				discrepancies = append(discrepancies, Discrepancy{
					Kind:       DiscrepancyUnpairedTransfer,
					ResourceID: txn.ID,
					Detail:     "counterparty " + other.ID + " does not mirror this leg",
				})
			}
		}
	}
	return discrepancies, nil
}

// CheckInvoiceTotals recomputes every invoice's derived fields and reports
// the ones whose stored totals disagree.
func (uc *ReconciliationUseCase) CheckInvoiceTotals(ctx context.Context) ([]Discrepancy, error) {
	invoices, err := uc.invoiceRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var discrepancies []Discrepancy
	now := time.Now().UTC()
	for _, inv := range invoices {
		storedGrand := inv.GrandTotal
		storedBalance := inv.Balance
		inv.RecomputeDerived(now, uc.graceDays)
		if !inv.GrandTotal.Equal(storedGrand) || !inv.Balance.Equal(storedBalance) {
			discrepancies = append(discrepancies, Discrepancy{
				Kind:       DiscrepancyInvoiceTotals,
				ResourceID: inv.ID,
				Detail: "stored grand total " + storedGrand.String() + "/" + storedBalance.String() +
					" but recomputation yields " + inv.GrandTotal.String() + "/" + inv.Balance.String(),
			})
		}
	}
	return discrepancies, nil
}

// OwnerMatch is a candidate link between an unassigned property and a
// resident, proposed by owner-name matching.
type OwnerMatch struct {
	PropertyID   string `json:"property_id"`
	OwnerName    string `json:"owner_name"`
	ResidentID   string `json:"resident_id"`
	ResidentName string `json:"resident_name"`
	Exact        bool   `json:"exact"`
}

// SuggestOwnerMatches proposes resident links for unassigned properties by
// comparing owner names. Matches are suggestions for an operator to confirm;
// they are never applied automatically.
func (uc *ReconciliationUseCase) SuggestOwnerMatches(ctx context.Context) ([]OwnerMatch, error) {
	properties, err := uc.propertyRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	residents, err := uc.residentRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var matches []OwnerMatch
	for _, p := range properties {
		if p.ResidentID != nil || p.OwnerName == "" {
			continue
		}
		owner := normalizeName(p.OwnerName)
		for _, r := range residents {
			if r.IsSuspense() || !r.Active {
				continue
			}
			name := normalizeName(r.Name)
			if name == "" {
				continue
			}
			exact := name == owner
			if exact || strings.Contains(owner, name) || strings.Contains(name, owner) {
				matches = append(matches, OwnerMatch{
					PropertyID:   p.ID,
					OwnerName:    p.OwnerName,
					ResidentID:   r.ID,
					ResidentName: r.Name,
					Exact:        exact,
				})
			}
		}
	}
	return matches, nil
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Report is a full reconciliation sweep.
type Report struct {
	TotalResidents     int           `json:"total_residents"`
	ReconciledBalances int           `json:"reconciled_balances"`
	Discrepancies      []Discrepancy `json:"discrepancies"`
	OwnerMatches       []OwnerMatch  `json:"owner_matches"`
	CheckedAt          time.Time     `json:"checked_at"`
}

// GenerateReport runs every check and aggregates the findings.
func (uc *ReconciliationUseCase) GenerateReport(ctx context.Context) (*Report, error) {
	residents, err := uc.residentRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		TotalResidents: len(residents),
		Discrepancies:  make([]Discrepancy, 0),
		CheckedAt:      time.Now().UTC(),
	}

	for _, r := range residents {
		result, found, err := uc.ReconcileResident(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if result.IsReconciled {
			report.ReconciledBalances++
		}
		report.Discrepancies = append(report.Discrepancies, found...)
	}

	pairs, err := uc.CheckTransferPairs(ctx)
	if err != nil {
		return nil, err
	}
	report.Discrepancies = append(report.Discrepancies, pairs...)

	totals, err := uc.CheckInvoiceTotals(ctx)
	if err != nil {
		return nil, err
	}
	report.Discrepancies = append(report.Discrepancies, totals...)

	matches, err := uc.SuggestOwnerMatches(ctx)
	if err != nil {
		return nil, err
	}
	report.OwnerMatches = matches

	return report, nil
}
