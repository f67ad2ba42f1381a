package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/sgcerp/tajbilling/internal/usecase"
)

// SequenceRepository implements usecase.SequenceGenerator on a single-row-
// per-counter table. Increments are atomic UPDATE .. RETURNING, so two
// concurrent callers can never draw the same number; gaps from rolled-back
// business transactions are accepted.
//
// A counter introduced after data already exists self-heals: the first draw
// seeds it from the highest serial already persisted for that counter, so
// numbering continues instead of restarting at 1.
type SequenceRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSequenceRepository creates a new SequenceRepository.
func NewSequenceRepository(pool *pgxpool.Pool, logger zerolog.Logger) *SequenceRepository {
	return &SequenceRepository{pool: pool, logger: logger}
}

// seedQueries maps each counter to the query recovering its highest serial
// in use. Counters without a backing table fall back to a time-derived seed.
var seedQueries = map[string]string{
	usecase.SequencePropertySerial:  `SELECT coalesce(max(serial), 0) FROM properties`,
	usecase.SequenceResidentID:      `SELECT coalesce(max(resident_id::bigint), 0) FROM residents WHERE resident_id <> ''`,
	usecase.SequenceCAMBill:         `SELECT coalesce(max(serial), 0) FROM cam_charges`,
	usecase.SequenceElectricityBill: `SELECT coalesce(max(serial), 0) FROM electricity_bills`,
	usecase.SequenceInvoice:         `SELECT coalesce(max(serial), 0) FROM invoices`,
	usecase.SequenceReceipt:         `SELECT coalesce(max(serial), 0) FROM receipts`,
}

// Next atomically draws the next value for a named counter.
func (r *SequenceRepository) Next(ctx context.Context, counter string) (int64, error) {
	var value int64
	err := r.pool.QueryRow(ctx,
		`UPDATE sequences SET value = value + 1 WHERE name = $1 RETURNING value`,
		counter).Scan(&value)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	seed, err := r.seed(ctx, counter)
	if err != nil {
		return 0, err
	}

	// Another caller may seed the counter between our UPDATE and INSERT;
	// ON CONFLICT turns the race into a plain increment.
	err = r.pool.QueryRow(ctx, `
		INSERT INTO sequences (name, value)
		VALUES ($1, $2 + 1)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value`,
		counter, seed).Scan(&value)
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (r *SequenceRepository) seed(ctx context.Context, counter string) (int64, error) {
	query, ok := seedQueries[counter]
	if !ok {
		// Unknown counter with no table to recover from. A second-resolution
		// timestamp keeps the numbers unique even here.
		return time.Now().UTC().Unix(), nil
	}

	var max int64
	if err := r.pool.QueryRow(ctx, query).Scan(&max); err != nil {
		// The backing table could not be read; a time-derived seed keeps
		// draws unique while the failure is investigated.
		r.logger.Error().Err(err).
			Str("counter", counter).
			Msg("failed to recover sequence seed, falling back to time-derived seed")
		return time.Now().UTC().Unix(), nil
	}
	return max, nil
}
