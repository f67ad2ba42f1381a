package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository. Deposit
// usages ride along in a jsonb column; UsageByDeposit unnests them with a
// jsonb query so the sums stay server-side.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `
	id, resident_id, kind, amount, balance_before, balance_after,
	counterparty_id, target_resident, reference_type, reference_id,
	reference_no, external_ref, payment_method, bank, description,
	deposit_usages, created_by, created_at`

// Create inserts a ledger transaction within the caller's database
// transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	usages, err := marshalJSONB(txn.DepositUsages)
	if err != nil {
		return err
	}

	_, err = txOf(tx).Exec(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		txn.ID,
		txn.ResidentID,
		txn.Kind,
		decimalToNumeric(txn.Amount),
		decimalToNumeric(txn.BalanceBefore),
		decimalToNumeric(txn.BalanceAfter),
		txn.CounterpartyID,
		txn.TargetResident,
		txn.ReferenceType,
		txn.ReferenceID,
		txn.ReferenceNo,
		txn.ExternalRef,
		txn.PaymentMethod,
		txn.Bank,
		txn.Description,
		usages,
		txn.CreatedBy,
		timeToPgTimestamptz(txn.CreatedAt),
	)
	return err
}

// GetByID retrieves a ledger transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return txn, nil
}

// Update rewrites a ledger transaction within the caller's database
// transaction. Used when reversing or re-linking entries.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	usages, err := marshalJSONB(txn.DepositUsages)
	if err != nil {
		return err
	}

	tag, err := txOf(tx).Exec(ctx, `
		UPDATE transactions SET
			kind = $2, amount = $3, balance_before = $4, balance_after = $5,
			counterparty_id = $6, target_resident = $7, reference_type = $8,
			reference_id = $9, reference_no = $10, external_ref = $11,
			payment_method = $12, bank = $13, description = $14, deposit_usages = $15
		WHERE id = $1`,
		txn.ID,
		txn.Kind,
		decimalToNumeric(txn.Amount),
		decimalToNumeric(txn.BalanceBefore),
		decimalToNumeric(txn.BalanceAfter),
		txn.CounterpartyID,
		txn.TargetResident,
		txn.ReferenceType,
		txn.ReferenceID,
		txn.ReferenceNo,
		txn.ExternalRef,
		txn.PaymentMethod,
		txn.Bank,
		txn.Description,
		usages,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// Delete removes a ledger transaction within the caller's database
// transaction.
func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txOf(tx).Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// ListByResident lists a resident's transactions, newest first.
func (r *TransactionRepository) ListByResident(ctx context.Context, residentID string, filter usecase.TransactionFilter) ([]*domain.Transaction, int, error) {
	where := ` WHERE resident_id = $1`
	args := []any{residentID}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		where += ` AND kind = ` + argn(len(args))
	}
	if filter.StartDate != nil {
		args = append(args, timeToPgTimestamptz(*filter.StartDate))
		where += ` AND created_at >= ` + argn(len(args))
	}
	if filter.EndDate != nil {
		args = append(args, timeToPgTimestamptz(*filter.EndDate))
		where += ` AND created_at <= ` + argn(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions`+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT `+argn(len(args)-1)+` OFFSET `+argn(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// ListDeposits lists a resident's deposit transactions, oldest first so
// deposit usage is applied in FIFO order. With suspenseOnly set, only
// deposits parked on suspense accounts are returned.
func (r *TransactionRepository) ListDeposits(ctx context.Context, residentID string, suspenseOnly bool, limit, offset int) ([]*domain.Transaction, int, error) {
	where := ` WHERE t.kind = $1`
	args := []any{domain.TransactionKindDeposit}
	if residentID != "" {
		args = append(args, residentID)
		where += ` AND t.resident_id = ` + argn(len(args))
	}
	if suspenseOnly {
		where += ` AND EXISTS (
			SELECT 1 FROM residents r
			WHERE r.id = t.resident_id AND (r.name = '' OR r.resident_id = ''))`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM transactions t`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions t`+where+`
		ORDER BY t.created_at, t.id
		LIMIT `+argn(len(args)-1)+` OFFSET `+argn(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// UsageByDeposit sums, per deposit ID, the bill-payment usages referencing it.
func (r *TransactionRepository) UsageByDeposit(ctx context.Context, depositIDs []string) (map[string]decimal.Decimal, error) {
	usage := make(map[string]decimal.Decimal, len(depositIDs))
	if len(depositIDs) == 0 {
		return usage, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT u->>'DepositID', sum((u->>'Amount')::numeric)
		FROM transactions t, jsonb_array_elements(t.deposit_usages) u
		WHERE u->>'DepositID' = ANY($1)
		GROUP BY 1`, depositIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var depositID string
		var total pgtype.Numeric
		if err := rows.Scan(&depositID, &total); err != nil {
			return nil, err
		}
		usage[depositID] = numericToDecimal(total)
	}
	return usage, rows.Err()
}

// ListPaymentsUsingDeposit returns the bill payments that consumed a deposit.
func (r *TransactionRepository) ListPaymentsUsingDeposit(ctx context.Context, depositID string) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE EXISTS (
			SELECT 1 FROM jsonb_array_elements(deposit_usages) u
			WHERE u->>'DepositID' = $1)
		ORDER BY created_at, id`, depositID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListByReference returns the transactions recorded against one source
// record, e.g. every bill payment an invoice received.
func (r *TransactionRepository) ListByReference(ctx context.Context, referenceType, referenceID string) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY created_at, id`, referenceType, referenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListByResidentAll returns a resident's full trail, oldest first, for
// reconciliation walks.
func (r *TransactionRepository) ListByResidentAll(ctx context.Context, residentID string) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE resident_id = $1
		ORDER BY created_at, id`, residentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	var amount, before, after pgtype.Numeric
	var createdAt pgtype.Timestamptz
	var usages []byte

	err := row.Scan(
		&txn.ID, &txn.ResidentID, &txn.Kind, &amount, &before, &after,
		&txn.CounterpartyID, &txn.TargetResident, &txn.ReferenceType,
		&txn.ReferenceID, &txn.ReferenceNo, &txn.ExternalRef,
		&txn.PaymentMethod, &txn.Bank, &txn.Description,
		&usages, &txn.CreatedBy, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	txn.Amount = numericToDecimal(amount)
	txn.BalanceBefore = numericToDecimal(before)
	txn.BalanceAfter = numericToDecimal(after)
	txn.DepositUsages = unmarshalJSONB[[]domain.DepositUsage](usages)
	txn.CreatedAt = createdAt.Time
	return &txn, nil
}

func scanTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}
