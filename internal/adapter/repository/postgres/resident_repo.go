package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

// ResidentRepository implements usecase.ResidentRepository. Linked property
// IDs are not stored on the resident row; they are derived from the
// properties.resident_id foreign key on every read so the two can never
// disagree.
type ResidentRepository struct {
	pool *pgxpool.Pool
}

// NewResidentRepository creates a new ResidentRepository.
func NewResidentRepository(pool *pgxpool.Pool) *ResidentRepository {
	return &ResidentRepository{pool: pool}
}

const residentColumns = `
	r.id, r.resident_id, r.name, r.cnic, r.contact_number, r.email,
	r.account_type, r.balance, r.version, r.active,
	coalesce(p.property_ids, '{}'),
	r.created_by, r.updated_by, r.created_at, r.updated_at`

const residentJoin = `
	FROM residents r
	LEFT JOIN LATERAL (
		SELECT array_agg(id ORDER BY serial) AS property_ids
		FROM properties WHERE resident_id = r.id
	) p ON true`

// Create inserts a resident.
func (r *ResidentRepository) Create(ctx context.Context, resident *domain.Resident) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO residents (
			id, resident_id, name, cnic, contact_number, email, account_type,
			balance, version, active, created_by, updated_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		resident.ID,
		resident.ResidentID,
		resident.Name,
		resident.CNIC,
		resident.ContactNumber,
		resident.Email,
		resident.AccountType,
		decimalToNumeric(resident.Balance),
		resident.Version,
		resident.Active,
		resident.CreatedBy,
		resident.UpdatedBy,
		timeToPgTimestamptz(resident.CreatedAt),
		timeToPgTimestamptz(resident.UpdatedAt),
	)
	return err
}

// GetByID retrieves a resident by ID.
func (r *ResidentRepository) GetByID(ctx context.Context, id string) (*domain.Resident, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+residentColumns+residentJoin+` WHERE r.id = $1`, id)
	return scanResidentRow(row)
}

// GetByIDForUpdate retrieves a resident with a row lock inside the caller's
// transaction. Property links are read separately; only the resident row is
// locked.
func (r *ResidentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Resident, error) {
	pgtx := txOf(tx)

	var resident domain.Resident
	var balance pgtype.Numeric
	var createdAt, updatedAt pgtype.Timestamptz
	err := pgtx.QueryRow(ctx, `
		SELECT id, resident_id, name, cnic, contact_number, email, account_type,
			balance, version, active, created_by, updated_by, created_at, updated_at
		FROM residents WHERE id = $1
		FOR UPDATE`, id).Scan(
		&resident.ID, &resident.ResidentID, &resident.Name, &resident.CNIC,
		&resident.ContactNumber, &resident.Email, &resident.AccountType,
		&balance, &resident.Version, &resident.Active,
		&resident.CreatedBy, &resident.UpdatedBy, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrResidentNotFound
		}
		return nil, err
	}

	rows, err := pgtx.Query(ctx, `SELECT id FROM properties WHERE resident_id = $1 ORDER BY serial`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var pid string
		if err := rows.Scan(&pid); err != nil {
			return nil, err
		}
		resident.PropertyIDs = append(resident.PropertyIDs, pid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	resident.Balance = numericToDecimal(balance)
	resident.CreatedAt = createdAt.Time
	resident.UpdatedAt = updatedAt.Time
	return &resident, nil
}

// UpdateBalance sets a resident's balance and bumps its version within the
// caller's transaction.
func (r *ResidentRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedBy string, updatedAt time.Time) error {
	tag, err := txOf(tx).Exec(ctx, `
		UPDATE residents SET balance = $2, version = version + 1, updated_by = $3, updated_at = $4
		WHERE id = $1`,
		id, decimalToNumeric(balance), updatedBy, timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrResidentNotFound
	}
	return nil
}

// Update rewrites a resident's profile fields. Balance and version are only
// touched through UpdateBalance.
func (r *ResidentRepository) Update(ctx context.Context, resident *domain.Resident) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE residents SET
			name = $2, cnic = $3, contact_number = $4, email = $5,
			account_type = $6, active = $7, updated_by = $8, updated_at = $9
		WHERE id = $1`,
		resident.ID,
		resident.Name,
		resident.CNIC,
		resident.ContactNumber,
		resident.Email,
		resident.AccountType,
		resident.Active,
		resident.UpdatedBy,
		timeToPgTimestamptz(resident.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrResidentNotFound
	}
	return nil
}

// List lists residents matching the filter with pagination. Suspense accounts
// only appear when SuspenseOnly is set.
func (r *ResidentRepository) List(ctx context.Context, filter usecase.ResidentFilter) ([]*domain.Resident, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.SuspenseOnly {
		where += ` AND (r.name = '' OR r.resident_id = '')`
	} else {
		where += ` AND r.name <> '' AND r.resident_id <> ''`
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := argn(len(args))
		where += ` AND (r.name ILIKE ` + n + ` OR r.resident_id ILIKE ` + n + ` OR r.cnic ILIKE ` + n + ` OR r.contact_number ILIKE ` + n + `)`
	}
	if filter.AccountType != "" {
		args = append(args, filter.AccountType)
		where += ` AND r.account_type = ` + argn(len(args))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		where += ` AND r.active = ` + argn(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM residents r`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.pool.Query(ctx, `
		SELECT `+residentColumns+residentJoin+where+`
		ORDER BY r.resident_id, r.created_at
		LIMIT `+argn(len(args)-1)+` OFFSET `+argn(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	residents, err := scanResidents(rows)
	if err != nil {
		return nil, 0, err
	}
	return residents, total, nil
}

// ListAll returns every resident including suspense accounts. Used by
// reconciliation sweeps.
func (r *ResidentRepository) ListAll(ctx context.Context) ([]*domain.Resident, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+residentColumns+residentJoin+` ORDER BY r.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResidents(rows)
}

func scanResident(row pgx.Row) (*domain.Resident, error) {
	var resident domain.Resident
	var balance pgtype.Numeric
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&resident.ID, &resident.ResidentID, &resident.Name, &resident.CNIC,
		&resident.ContactNumber, &resident.Email, &resident.AccountType,
		&balance, &resident.Version, &resident.Active, &resident.PropertyIDs,
		&resident.CreatedBy, &resident.UpdatedBy, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	resident.Balance = numericToDecimal(balance)
	resident.CreatedAt = createdAt.Time
	resident.UpdatedAt = updatedAt.Time
	return &resident, nil
}

func scanResidentRow(row pgx.Row) (*domain.Resident, error) {
	resident, err := scanResident(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrResidentNotFound
		}
		return nil, err
	}
	return resident, nil
}

func scanResidents(rows pgx.Rows) ([]*domain.Resident, error) {
	var out []*domain.Resident
	for rows.Next() {
		resident, err := scanResident(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resident)
	}
	return out, rows.Err()
}
