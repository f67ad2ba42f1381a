package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

// ReceiptRepository implements usecase.ReceiptRepository. Allocations are a
// jsonb column; voiding reverses them via the invoice repository, never by
// editing allocation rows in place.
type ReceiptRepository struct {
	pool *pgxpool.Pool
}

// NewReceiptRepository creates a new ReceiptRepository.
func NewReceiptRepository(pool *pgxpool.Pool) *ReceiptRepository {
	return &ReceiptRepository{pool: pool}
}

const receiptColumns = `
	id, serial, receipt_number, resident_id, property_id, amount,
	allocations, total_allocated, unallocated_amount, method, bank,
	reference, notes, status, received_at,
	created_by, updated_by, created_at, updated_at`

// Create inserts a receipt within the caller's transaction.
func (r *ReceiptRepository) Create(ctx context.Context, tx usecase.Transaction, receipt *domain.Receipt) error {
	allocations, err := marshalJSONB(receipt.Allocations)
	if err != nil {
		return err
	}

	_, err = txOf(tx).Exec(ctx, `
		INSERT INTO receipts (`+receiptColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		receipt.ID,
		receipt.Serial,
		receipt.ReceiptNumber,
		receipt.ResidentID,
		receipt.PropertyID,
		decimalToNumeric(receipt.Amount),
		allocations,
		decimalToNumeric(receipt.TotalAllocated),
		decimalToNumeric(receipt.UnallocatedAmount),
		receipt.Method,
		receipt.Bank,
		receipt.Reference,
		receipt.Notes,
		receipt.Status,
		timeToPgTimestamptz(receipt.ReceivedAt),
		receipt.CreatedBy,
		receipt.UpdatedBy,
		timeToPgTimestamptz(receipt.CreatedAt),
		timeToPgTimestamptz(receipt.UpdatedAt),
	)
	return err
}

// GetByID retrieves a receipt by ID.
func (r *ReceiptRepository) GetByID(ctx context.Context, id string) (*domain.Receipt, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE id = $1`, id)
	receipt, err := scanReceipt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReceiptNotFound
		}
		return nil, err
	}
	return receipt, nil
}

// Update rewrites a receipt within the caller's transaction. Used when
// voiding.
func (r *ReceiptRepository) Update(ctx context.Context, tx usecase.Transaction, receipt *domain.Receipt) error {
	allocations, err := marshalJSONB(receipt.Allocations)
	if err != nil {
		return err
	}

	tag, err := txOf(tx).Exec(ctx, `
		UPDATE receipts SET
			allocations = $2, total_allocated = $3, unallocated_amount = $4,
			notes = $5, status = $6, updated_by = $7, updated_at = $8
		WHERE id = $1`,
		receipt.ID,
		allocations,
		decimalToNumeric(receipt.TotalAllocated),
		decimalToNumeric(receipt.UnallocatedAmount),
		receipt.Notes,
		receipt.Status,
		receipt.UpdatedBy,
		timeToPgTimestamptz(receipt.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReceiptNotFound
	}
	return nil
}

// List lists receipts, newest first, optionally narrowed to one resident.
func (r *ReceiptRepository) List(ctx context.Context, residentID string, limit, offset int) ([]*domain.Receipt, int, error) {
	where := ``
	args := []any{}
	if residentID != "" {
		args = append(args, residentID)
		where = ` WHERE resident_id = $1`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM receipts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, `
		SELECT `+receiptColumns+` FROM receipts`+where+`
		ORDER BY serial DESC
		LIMIT `+argn(len(args)-1)+` OFFSET `+argn(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	receipts, err := scanReceipts(rows)
	if err != nil {
		return nil, 0, err
	}
	return receipts, total, nil
}

// ListAll returns every receipt, oldest first. Used by reconciliation.
func (r *ReceiptRepository) ListAll(ctx context.Context) ([]*domain.Receipt, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+receiptColumns+` FROM receipts ORDER BY serial`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReceipts(rows)
}

func scanReceipt(row pgx.Row) (*domain.Receipt, error) {
	var rc domain.Receipt
	var amount, totalAllocated, unallocated pgtype.Numeric
	var receivedAt, createdAt, updatedAt pgtype.Timestamptz
	var allocations []byte

	err := row.Scan(
		&rc.ID, &rc.Serial, &rc.ReceiptNumber, &rc.ResidentID, &rc.PropertyID,
		&amount, &allocations, &totalAllocated, &unallocated,
		&rc.Method, &rc.Bank, &rc.Reference, &rc.Notes, &rc.Status, &receivedAt,
		&rc.CreatedBy, &rc.UpdatedBy, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rc.Amount = numericToDecimal(amount)
	rc.Allocations = unmarshalJSONB[[]domain.Allocation](allocations)
	rc.TotalAllocated = numericToDecimal(totalAllocated)
	rc.UnallocatedAmount = numericToDecimal(unallocated)
	rc.ReceivedAt = receivedAt.Time
	rc.CreatedAt = createdAt.Time
	rc.UpdatedAt = updatedAt.Time
	return &rc, nil
}

func scanReceipts(rows pgx.Rows) ([]*domain.Receipt, error) {
	var out []*domain.Receipt
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, receipt)
	}
	return out, rows.Err()
}
