package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgcerp/tajbilling/internal/domain"
)

// TariffRepository implements usecase.TariffRepository over an append-only
// version table. Versions are never updated or deleted; a rate change is a
// new row with a later effective_from.
type TariffRepository struct {
	pool *pgxpool.Pool
}

// NewTariffRepository creates a new TariffRepository.
func NewTariffRepository(pool *pgxpool.Pool) *TariffRepository {
	return &TariffRepository{pool: pool}
}

const tariffColumns = `
	id, version, effective_from, cam_slabs, electricity_slabs, created_by, created_at`

// Append stores a new tariff version. The version number is assigned
// server-side from the latest existing version.
func (r *TariffRepository) Append(ctx context.Context, version *domain.TariffVersion) error {
	camSlabs, err := marshalJSONB(version.CAMSlabs)
	if err != nil {
		return err
	}
	elecSlabs, err := marshalJSONB(version.ElectricitySlabs)
	if err != nil {
		return err
	}

	return r.pool.QueryRow(ctx, `
		INSERT INTO tariff_versions (id, version, effective_from, cam_slabs, electricity_slabs, created_by, created_at)
		VALUES ($1, (SELECT coalesce(max(version), 0) + 1 FROM tariff_versions), $2, $3, $4, $5, $6)
		RETURNING version`,
		version.ID,
		timeToPgTimestamptz(version.EffectiveFrom),
		camSlabs,
		elecSlabs,
		version.CreatedBy,
		timeToPgTimestamptz(version.CreatedAt),
	).Scan(&version.Version)
}

// ActiveAt returns the latest version effective at or before asOf.
func (r *TariffRepository) ActiveAt(ctx context.Context, asOf time.Time) (*domain.TariffVersion, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+tariffColumns+` FROM tariff_versions
		WHERE effective_from <= $1
		ORDER BY effective_from DESC, version DESC
		LIMIT 1`, timeToPgTimestamptz(asOf))

	version, err := scanTariffVersion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTariffNotFound
		}
		return nil, err
	}
	return version, nil
}

// List returns tariff versions, newest first.
func (r *TariffRepository) List(ctx context.Context, limit, offset int) ([]*domain.TariffVersion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+tariffColumns+` FROM tariff_versions
		ORDER BY version DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.TariffVersion
	for rows.Next() {
		version, err := scanTariffVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, version)
	}
	return out, rows.Err()
}

func scanTariffVersion(row pgx.Row) (*domain.TariffVersion, error) {
	var v domain.TariffVersion
	var effectiveFrom, createdAt pgtype.Timestamptz
	var camSlabs, elecSlabs []byte

	err := row.Scan(&v.ID, &v.Version, &effectiveFrom, &camSlabs, &elecSlabs, &v.CreatedBy, &createdAt)
	if err != nil {
		return nil, err
	}

	v.EffectiveFrom = effectiveFrom.Time
	v.CAMSlabs = unmarshalJSONB[[]domain.CAMSlab](camSlabs)
	v.ElectricitySlabs = unmarshalJSONB[[]domain.ElectricitySlab](elecSlabs)
	v.CreatedAt = createdAt.Time
	return &v, nil
}
