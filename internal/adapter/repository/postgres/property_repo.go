package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

// PropertyRepository implements usecase.PropertyRepository. Meters and rental
// agreements live in jsonb columns; they are always read and written as part
// of the property row.
type PropertyRepository struct {
	pool *pgxpool.Pool
}

// NewPropertyRepository creates a new PropertyRepository.
func NewPropertyRepository(pool *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{pool: pool}
}

const propertyColumns = `
	id, serial, name, plot_number, sector, block, full_address, owner_name,
	area_value, area_unit, property_type, resident_id, meters, rental, active,
	created_by, updated_by, created_at, updated_at`

// Create inserts a property.
func (r *PropertyRepository) Create(ctx context.Context, property *domain.Property) error {
	meters, err := marshalJSONB(property.Meters)
	if err != nil {
		return err
	}
	rental, err := marshalJSONB(property.Rental)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO properties (`+propertyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		property.ID,
		property.Serial,
		property.Name,
		property.PlotNumber,
		property.Sector,
		property.Block,
		property.FullAddress,
		property.OwnerName,
		decimalToNumeric(property.AreaValue),
		property.AreaUnit,
		property.PropertyType,
		property.ResidentID,
		meters,
		rental,
		property.Active,
		property.CreatedBy,
		property.UpdatedBy,
		timeToPgTimestamptz(property.CreatedAt),
		timeToPgTimestamptz(property.UpdatedAt),
	)
	return err
}

// GetByID retrieves a property by ID.
func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)
	property, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, err
	}
	return property, nil
}

// Update rewrites a property's mutable fields.
func (r *PropertyRepository) Update(ctx context.Context, property *domain.Property) error {
	meters, err := marshalJSONB(property.Meters)
	if err != nil {
		return err
	}
	rental, err := marshalJSONB(property.Rental)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE properties SET
			name = $2, plot_number = $3, sector = $4, block = $5,
			full_address = $6, owner_name = $7, area_value = $8, area_unit = $9,
			property_type = $10, meters = $11, rental = $12, active = $13,
			updated_by = $14, updated_at = $15
		WHERE id = $1`,
		property.ID,
		property.Name,
		property.PlotNumber,
		property.Sector,
		property.Block,
		property.FullAddress,
		property.OwnerName,
		decimalToNumeric(property.AreaValue),
		property.AreaUnit,
		property.PropertyType,
		meters,
		rental,
		property.Active,
		property.UpdatedBy,
		timeToPgTimestamptz(property.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

// List lists properties matching the filter with pagination.
func (r *PropertyRepository) List(ctx context.Context, filter usecase.PropertyFilter) ([]*domain.Property, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := argn(len(args))
		where += ` AND (name ILIKE ` + n + ` OR owner_name ILIKE ` + n + ` OR plot_number ILIKE ` + n + `)`
	}
	if filter.Unassigned {
		where += ` AND resident_id IS NULL`
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		where += ` AND active = ` + argn(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM properties`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.pool.Query(ctx, `
		SELECT `+propertyColumns+` FROM properties`+where+`
		ORDER BY serial
		LIMIT `+argn(len(args)-1)+` OFFSET `+argn(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	properties, err := scanProperties(rows)
	if err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

// ListByOwnerName finds properties by exact (case-insensitive) owner name.
func (r *PropertyRepository) ListByOwnerName(ctx context.Context, ownerName string, unassignedOnly bool) ([]*domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE lower(owner_name) = lower($1)`
	if unassignedOnly {
		query += ` AND resident_id IS NULL`
	}
	query += ` ORDER BY serial`

	rows, err := r.pool.Query(ctx, query, ownerName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProperties(rows)
}

// AssignResident links or unlinks (nil residentID) a set of properties within
// the caller's transaction.
func (r *PropertyRepository) AssignResident(ctx context.Context, tx usecase.Transaction, propertyIDs []string, residentID *string, updatedBy string, updatedAt time.Time) error {
	if len(propertyIDs) == 0 {
		return nil
	}
	_, err := txOf(tx).Exec(ctx, `
		UPDATE properties SET resident_id = $2, updated_by = $3, updated_at = $4
		WHERE id = ANY($1)`,
		propertyIDs, residentID, updatedBy, timeToPgTimestamptz(updatedAt))
	return err
}

// ListAll returns every active property ordered by serial. Used by bulk
// billing and reconciliation sweeps; deactivated properties drop out of both.
func (r *PropertyRepository) ListAll(ctx context.Context) ([]*domain.Property, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+propertyColumns+` FROM properties WHERE active ORDER BY serial`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProperties(rows)
}

func scanProperty(row pgx.Row) (*domain.Property, error) {
	var p domain.Property
	var area pgtype.Numeric
	var createdAt, updatedAt pgtype.Timestamptz
	var meters, rental []byte

	err := row.Scan(
		&p.ID, &p.Serial, &p.Name, &p.PlotNumber, &p.Sector, &p.Block,
		&p.FullAddress, &p.OwnerName, &area, &p.AreaUnit, &p.PropertyType,
		&p.ResidentID, &meters, &rental, &p.Active,
		&p.CreatedBy, &p.UpdatedBy, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.AreaValue = numericToDecimal(area)
	p.Meters = unmarshalJSONB[[]domain.Meter](meters)
	p.Rental = unmarshalJSONB[*domain.RentalAgreement](rental)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return &p, nil
}

func scanProperties(rows pgx.Rows) ([]*domain.Property, error) {
	var out []*domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
