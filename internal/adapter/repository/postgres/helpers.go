package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/usecase"
)

// dbtx is the querying surface shared by *pgxpool.Pool and pgx.Tx, so every
// repository method can run against either the pool or an open transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txOf unwraps a usecase.Transaction into the underlying pgx transaction.
func txOf(tx usecase.Transaction) pgx.Tx {
	return tx.(*Tx).PgxTx()
}

// argn formats a positional SQL placeholder for dynamically built queries.
func argn(n int) string {
	return fmt.Sprintf("$%d", n)
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// marshalJSONB renders a child collection for a jsonb column; nil collections
// become SQL NULL rather than the string "null".
func marshalJSONB(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalJSONB[T any](data []byte) T {
	var out T
	if len(data) > 0 {
		_ = json.Unmarshal(data, &out)
	}
	return out
}
