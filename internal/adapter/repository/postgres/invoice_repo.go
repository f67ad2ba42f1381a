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

// InvoiceRepository implements usecase.InvoiceRepository. Charge lines and
// payments are jsonb columns: they only ever change together with the
// invoice's derived totals, so splitting them into child tables would buy
// nothing but extra round trips.
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

const invoiceColumns = `
	id, serial, invoice_number, property_id, meter_number, month,
	period_from, period_to, due_date, charges, subtotal, total_arrears,
	late_surcharge, grand_total, payments, total_paid, balance,
	payment_status, status, version, notes,
	created_by, updated_by, created_at, updated_at`

// Create inserts an invoice within the caller's transaction.
func (r *InvoiceRepository) Create(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	charges, payments, err := marshalInvoiceCollections(invoice)
	if err != nil {
		return err
	}

	_, err = txOf(tx).Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`,
		invoice.ID,
		invoice.Serial,
		invoice.InvoiceNumber,
		invoice.PropertyID,
		invoice.MeterNumber,
		invoice.Month,
		timeToPgTimestamptz(invoice.PeriodFrom),
		timeToPgTimestamptz(invoice.PeriodTo),
		timeToPgTimestamptz(invoice.DueDate),
		charges,
		decimalToNumeric(invoice.Subtotal),
		decimalToNumeric(invoice.TotalArrears),
		decimalToNumeric(invoice.LateSurcharge),
		decimalToNumeric(invoice.GrandTotal),
		payments,
		decimalToNumeric(invoice.TotalPaid),
		decimalToNumeric(invoice.Balance),
		invoice.PaymentStatus,
		invoice.Status,
		invoice.Version,
		invoice.Notes,
		invoice.CreatedBy,
		invoice.UpdatedBy,
		timeToPgTimestamptz(invoice.CreatedAt),
		timeToPgTimestamptz(invoice.UpdatedAt),
	)
	return err
}

// GetByID retrieves an invoice by ID.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	return scanInvoiceRow(row)
}

// GetByIDForUpdate retrieves an invoice with a row lock inside the caller's
// transaction.
func (r *InvoiceRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Invoice, error) {
	row := txOf(tx).QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id)
	return scanInvoiceRow(row)
}

// GetByPropertyPeriod finds the invoice for a property's billing month.
// meterNumber narrows to one meter stream on multi-meter properties; an empty
// meterNumber matches the property-level invoice.
func (r *InvoiceRepository) GetByPropertyPeriod(ctx context.Context, propertyID, month, meterNumber string) (*domain.Invoice, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE property_id = $1 AND month = $2 AND meter_number = $3`,
		propertyID, month, meterNumber)
	return scanInvoiceRow(row)
}

// Update rewrites an invoice with optimistic locking on its version column.
func (r *InvoiceRepository) Update(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	charges, payments, err := marshalInvoiceCollections(invoice)
	if err != nil {
		return err
	}

	tag, err := txOf(tx).Exec(ctx, `
		UPDATE invoices SET
			due_date = $3, charges = $4, subtotal = $5, total_arrears = $6,
			late_surcharge = $7, grand_total = $8, payments = $9, total_paid = $10,
			balance = $11, payment_status = $12, status = $13, version = version + 1,
			notes = $14, updated_by = $15, updated_at = $16
		WHERE id = $1 AND version = $2`,
		invoice.ID,
		invoice.Version,
		timeToPgTimestamptz(invoice.DueDate),
		charges,
		decimalToNumeric(invoice.Subtotal),
		decimalToNumeric(invoice.TotalArrears),
		decimalToNumeric(invoice.LateSurcharge),
		decimalToNumeric(invoice.GrandTotal),
		payments,
		decimalToNumeric(invoice.TotalPaid),
		decimalToNumeric(invoice.Balance),
		invoice.PaymentStatus,
		invoice.Status,
		invoice.Notes,
		invoice.UpdatedBy,
		timeToPgTimestamptz(invoice.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	invoice.Version++
	return nil
}

// Delete removes an invoice within the caller's transaction. Only invoices
// whose last charge line was removed are ever deleted.
func (r *InvoiceRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txOf(tx).Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

// ListUnpaidByProperty returns unpaid and partially paid invoices whose
// period ends before the given date, oldest first. chargeType, when set,
// keeps only invoices carrying at least one charge line of that type, so
// arrears stay within their own billing stream.
func (r *InvoiceRepository) ListUnpaidByProperty(ctx context.Context, propertyID, chargeType string, before time.Time) ([]*domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + ` FROM invoices
		WHERE property_id = $1
		  AND period_to < $2
		  AND status <> $3
		  AND balance > 0`
	args := []any{propertyID, timeToPgTimestamptz(before), domain.InvoiceStatusCancelled}
	if chargeType != "" {
		args = append(args, chargeType)
		query += `
		  AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(charges) c
			WHERE c->>'Type' = ` + argn(len(args)) + `)`
	}
	query += `
		ORDER BY period_to, serial`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInvoices(rows)
}

// ListByProperty lists a property's invoices, newest period first.
func (r *InvoiceRepository) ListByProperty(ctx context.Context, propertyID string, limit, offset int) ([]*domain.Invoice, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM invoices WHERE property_id = $1`, propertyID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE property_id = $1
		ORDER BY period_to DESC, serial DESC
		LIMIT $2 OFFSET $3`, propertyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invoices, err := scanInvoices(rows)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// List lists invoices matching a free-text search and/or billing month.
func (r *InvoiceRepository) List(ctx context.Context, search, month string, limit, offset int) ([]*domain.Invoice, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += ` AND invoice_number ILIKE ` + argn(len(args))
	}
	if month != "" {
		args = append(args, month)
		where += ` AND month = ` + argn(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM invoices`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices`+where+`
		ORDER BY serial DESC
		LIMIT `+argn(len(args)-1)+` OFFSET `+argn(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invoices, err := scanInvoices(rows)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// ListAll returns every invoice, oldest first. Used by status sweeps and
// reconciliation.
func (r *InvoiceRepository) ListAll(ctx context.Context) ([]*domain.Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY serial`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInvoices(rows)
}

func marshalInvoiceCollections(invoice *domain.Invoice) (charges, payments []byte, err error) {
	charges, err = marshalJSONB(invoice.Charges)
	if err != nil {
		return nil, nil, err
	}
	payments, err = marshalJSONB(invoice.Payments)
	if err != nil {
		return nil, nil, err
	}
	return charges, payments, nil
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	var subtotal, totalArrears, lateSurcharge, grandTotal, totalPaid, balance pgtype.Numeric
	var periodFrom, periodTo, dueDate, createdAt, updatedAt pgtype.Timestamptz
	var charges, payments []byte

	err := row.Scan(
		&inv.ID, &inv.Serial, &inv.InvoiceNumber, &inv.PropertyID, &inv.MeterNumber,
		&inv.Month, &periodFrom, &periodTo, &dueDate, &charges,
		&subtotal, &totalArrears, &lateSurcharge, &grandTotal,
		&payments, &totalPaid, &balance, &inv.PaymentStatus, &inv.Status,
		&inv.Version, &inv.Notes,
		&inv.CreatedBy, &inv.UpdatedBy, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	inv.PeriodFrom = periodFrom.Time
	inv.PeriodTo = periodTo.Time
	inv.DueDate = dueDate.Time
	inv.Charges = unmarshalJSONB[[]domain.ChargeLine](charges)
	inv.Subtotal = numericToDecimal(subtotal)
	inv.TotalArrears = numericToDecimal(totalArrears)
	inv.LateSurcharge = numericToDecimal(lateSurcharge)
	inv.GrandTotal = numericToDecimal(grandTotal)
	inv.Payments = unmarshalJSONB[[]domain.InvoicePayment](payments)
	inv.TotalPaid = numericToDecimal(totalPaid)
	inv.Balance = numericToDecimal(balance)
	inv.CreatedAt = createdAt.Time
	inv.UpdatedAt = updatedAt.Time
	return &inv, nil
}

func scanInvoiceRow(row pgx.Row) (*domain.Invoice, error) {
	invoice, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, err
	}
	return invoice, nil
}

func scanInvoices(rows pgx.Rows) ([]*domain.Invoice, error) {
	var out []*domain.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, invoice)
	}
	return out, rows.Err()
}
