package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgcerp/tajbilling/internal/domain"
)

// CAMChargeRepository implements usecase.CAMChargeRepository.
type CAMChargeRepository struct {
	pool *pgxpool.Pool
}

// NewCAMChargeRepository creates a new CAMChargeRepository.
func NewCAMChargeRepository(pool *pgxpool.Pool) *CAMChargeRepository {
	return &CAMChargeRepository{pool: pool}
}

const camChargeColumns = `
	id, serial, bill_number, property_id, month, period_from, period_to,
	size_label, amount, arrears, total, status,
	created_by, updated_by, created_at, updated_at`

// Create inserts a CAM charge. A unique index on (property_id, month) backs
// the duplicate-billing guard.
func (r *CAMChargeRepository) Create(ctx context.Context, charge *domain.CAMCharge) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cam_charges (`+camChargeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		charge.ID,
		charge.Serial,
		charge.BillNumber,
		charge.PropertyID,
		charge.Month,
		timeToPgTimestamptz(charge.PeriodFrom),
		timeToPgTimestamptz(charge.PeriodTo),
		charge.SizeLabel,
		decimalToNumeric(charge.Amount),
		decimalToNumeric(charge.Arrears),
		decimalToNumeric(charge.Total),
		charge.Status,
		charge.CreatedBy,
		charge.UpdatedBy,
		timeToPgTimestamptz(charge.CreatedAt),
		timeToPgTimestamptz(charge.UpdatedAt),
	)
	return err
}

// GetByID retrieves a CAM charge by ID.
func (r *CAMChargeRepository) GetByID(ctx context.Context, id string) (*domain.CAMCharge, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+camChargeColumns+` FROM cam_charges WHERE id = $1`, id)
	return scanCAMChargeRow(row)
}

// GetByPropertyMonth retrieves the charge billed to a property for a month.
func (r *CAMChargeRepository) GetByPropertyMonth(ctx context.Context, propertyID, month string) (*domain.CAMCharge, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+camChargeColumns+` FROM cam_charges
		WHERE property_id = $1 AND month = $2`, propertyID, month)
	return scanCAMChargeRow(row)
}

// Update rewrites a CAM charge.
func (r *CAMChargeRepository) Update(ctx context.Context, charge *domain.CAMCharge) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cam_charges SET
			amount = $2, arrears = $3, total = $4, status = $5,
			updated_by = $6, updated_at = $7
		WHERE id = $1`,
		charge.ID,
		decimalToNumeric(charge.Amount),
		decimalToNumeric(charge.Arrears),
		decimalToNumeric(charge.Total),
		charge.Status,
		charge.UpdatedBy,
		timeToPgTimestamptz(charge.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBillNotFound
	}
	return nil
}

// Delete removes a CAM charge.
func (r *CAMChargeRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cam_charges WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBillNotFound
	}
	return nil
}

// List lists CAM charges, optionally narrowed to one billing month.
func (r *CAMChargeRepository) List(ctx context.Context, month string, limit, offset int) ([]*domain.CAMCharge, int, error) {
	where := ``
	args := []any{}
	if month != "" {
		args = append(args, month)
		where = ` WHERE month = $1`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM cam_charges`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, `
		SELECT `+camChargeColumns+` FROM cam_charges`+where+`
		ORDER BY serial DESC
		LIMIT `+argn(len(args)-1)+` OFFSET `+argn(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.CAMCharge
	for rows.Next() {
		charge, err := scanCAMCharge(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, charge)
	}
	return out, total, rows.Err()
}

// LatestByProperty returns a property's most recent CAM charge by period.
func (r *CAMChargeRepository) LatestByProperty(ctx context.Context, propertyID string) (*domain.CAMCharge, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+camChargeColumns+` FROM cam_charges
		WHERE property_id = $1
		ORDER BY period_to DESC
		LIMIT 1`, propertyID)
	return scanCAMChargeRow(row)
}

func scanCAMCharge(row pgx.Row) (*domain.CAMCharge, error) {
	var c domain.CAMCharge
	var amount, arrears, total pgtype.Numeric
	var periodFrom, periodTo, createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&c.ID, &c.Serial, &c.BillNumber, &c.PropertyID, &c.Month,
		&periodFrom, &periodTo, &c.SizeLabel, &amount, &arrears, &total,
		&c.Status, &c.CreatedBy, &c.UpdatedBy, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.PeriodFrom = periodFrom.Time
	c.PeriodTo = periodTo.Time
	c.Amount = numericToDecimal(amount)
	c.Arrears = numericToDecimal(arrears)
	c.Total = numericToDecimal(total)
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}

func scanCAMChargeRow(row pgx.Row) (*domain.CAMCharge, error) {
	charge, err := scanCAMCharge(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBillNotFound
		}
		return nil, err
	}
	return charge, nil
}
