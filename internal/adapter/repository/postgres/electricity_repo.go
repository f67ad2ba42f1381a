package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgcerp/tajbilling/internal/domain"
)

// ElectricityBillRepository implements usecase.ElectricityBillRepository.
// The full charge breakdown is flattened into numeric columns rather than
// jsonb so month-end reports can aggregate it directly in SQL.
type ElectricityBillRepository struct {
	pool *pgxpool.Pool
}

// NewElectricityBillRepository creates a new ElectricityBillRepository.
func NewElectricityBillRepository(pool *pgxpool.Pool) *ElectricityBillRepository {
	return &ElectricityBillRepository{pool: pool}
}

const electricityBillColumns = `
	id, serial, bill_number, property_id, meter_number, month,
	period_from, period_to, previous_reading, current_reading,
	units_consumed, unit_rate, fix_rate, energy_cost, fuel_surcharge,
	gst, duty, meter_rent, tv_fee, breakdown_total,
	arrears, total_with_arrears, status,
	created_by, updated_by, created_at, updated_at`

// Create inserts an electricity bill. A unique index on
// (property_id, meter_number, month) backs the duplicate-billing guard.
func (r *ElectricityBillRepository) Create(ctx context.Context, bill *domain.ElectricityBill) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO electricity_bills (`+electricityBillColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`,
		bill.ID,
		bill.Serial,
		bill.BillNumber,
		bill.PropertyID,
		bill.MeterNumber,
		bill.Month,
		timeToPgTimestamptz(bill.PeriodFrom),
		timeToPgTimestamptz(bill.PeriodTo),
		bill.PreviousReading,
		bill.CurrentReading,
		bill.Breakdown.UnitsConsumed,
		decimalToNumeric(bill.Breakdown.UnitRate),
		decimalToNumeric(bill.Breakdown.FixRate),
		decimalToNumeric(bill.Breakdown.EnergyCost),
		decimalToNumeric(bill.Breakdown.FuelSurcharge),
		decimalToNumeric(bill.Breakdown.GST),
		decimalToNumeric(bill.Breakdown.Duty),
		decimalToNumeric(bill.Breakdown.MeterRent),
		decimalToNumeric(bill.Breakdown.TVFee),
		decimalToNumeric(bill.Breakdown.Total),
		decimalToNumeric(bill.Arrears),
		decimalToNumeric(bill.TotalWithArrears),
		bill.Status,
		bill.CreatedBy,
		bill.UpdatedBy,
		timeToPgTimestamptz(bill.CreatedAt),
		timeToPgTimestamptz(bill.UpdatedAt),
	)
	return err
}

// GetByID retrieves an electricity bill by ID.
func (r *ElectricityBillRepository) GetByID(ctx context.Context, id string) (*domain.ElectricityBill, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+electricityBillColumns+` FROM electricity_bills WHERE id = $1`, id)
	return scanElectricityBillRow(row)
}

// GetByMeterMonth retrieves the bill for one meter in one month.
func (r *ElectricityBillRepository) GetByMeterMonth(ctx context.Context, propertyID, meterNumber, month string) (*domain.ElectricityBill, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+electricityBillColumns+` FROM electricity_bills
		WHERE property_id = $1 AND meter_number = $2 AND month = $3`,
		propertyID, meterNumber, month)
	return scanElectricityBillRow(row)
}

// LatestByMeter returns a meter's most recent bill by period. Its current
// reading seeds the next month's previous reading.
func (r *ElectricityBillRepository) LatestByMeter(ctx context.Context, propertyID, meterNumber string) (*domain.ElectricityBill, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+electricityBillColumns+` FROM electricity_bills
		WHERE property_id = $1 AND meter_number = $2
		ORDER BY period_to DESC
		LIMIT 1`, propertyID, meterNumber)
	return scanElectricityBillRow(row)
}

// Update rewrites an electricity bill.
func (r *ElectricityBillRepository) Update(ctx context.Context, bill *domain.ElectricityBill) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE electricity_bills SET
			previous_reading = $2, current_reading = $3, units_consumed = $4,
			unit_rate = $5, fix_rate = $6, energy_cost = $7, fuel_surcharge = $8,
			gst = $9, duty = $10, meter_rent = $11, tv_fee = $12, breakdown_total = $13,
			arrears = $14, total_with_arrears = $15, status = $16,
			updated_by = $17, updated_at = $18
		WHERE id = $1`,
		bill.ID,
		bill.PreviousReading,
		bill.CurrentReading,
		bill.Breakdown.UnitsConsumed,
		decimalToNumeric(bill.Breakdown.UnitRate),
		decimalToNumeric(bill.Breakdown.FixRate),
		decimalToNumeric(bill.Breakdown.EnergyCost),
		decimalToNumeric(bill.Breakdown.FuelSurcharge),
		decimalToNumeric(bill.Breakdown.GST),
		decimalToNumeric(bill.Breakdown.Duty),
		decimalToNumeric(bill.Breakdown.MeterRent),
		decimalToNumeric(bill.Breakdown.TVFee),
		decimalToNumeric(bill.Breakdown.Total),
		decimalToNumeric(bill.Arrears),
		decimalToNumeric(bill.TotalWithArrears),
		bill.Status,
		bill.UpdatedBy,
		timeToPgTimestamptz(bill.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBillNotFound
	}
	return nil
}

// Delete removes an electricity bill.
func (r *ElectricityBillRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM electricity_bills WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBillNotFound
	}
	return nil
}

// List lists electricity bills, optionally narrowed to one billing month.
func (r *ElectricityBillRepository) List(ctx context.Context, month string, limit, offset int) ([]*domain.ElectricityBill, int, error) {
	where := ``
	args := []any{}
	if month != "" {
		args = append(args, month)
		where = ` WHERE month = $1`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM electricity_bills`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, `
		SELECT `+electricityBillColumns+` FROM electricity_bills`+where+`
		ORDER BY serial DESC
		LIMIT `+argn(len(args)-1)+` OFFSET `+argn(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.ElectricityBill
	for rows.Next() {
		bill, err := scanElectricityBill(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, bill)
	}
	return out, total, rows.Err()
}

func scanElectricityBill(row pgx.Row) (*domain.ElectricityBill, error) {
	var b domain.ElectricityBill
	var unitRate, fixRate, energyCost, fuelSurcharge, gst, duty pgtype.Numeric
	var meterRent, tvFee, breakdownTotal, arrears, totalWithArrears pgtype.Numeric
	var periodFrom, periodTo, createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&b.ID, &b.Serial, &b.BillNumber, &b.PropertyID, &b.MeterNumber, &b.Month,
		&periodFrom, &periodTo, &b.PreviousReading, &b.CurrentReading,
		&b.Breakdown.UnitsConsumed, &unitRate, &fixRate, &energyCost, &fuelSurcharge,
		&gst, &duty, &meterRent, &tvFee, &breakdownTotal,
		&arrears, &totalWithArrears, &b.Status,
		&b.CreatedBy, &b.UpdatedBy, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.PeriodFrom = periodFrom.Time
	b.PeriodTo = periodTo.Time
	b.Breakdown.UnitRate = numericToDecimal(unitRate)
	b.Breakdown.FixRate = numericToDecimal(fixRate)
	b.Breakdown.EnergyCost = numericToDecimal(energyCost)
	b.Breakdown.FuelSurcharge = numericToDecimal(fuelSurcharge)
	b.Breakdown.GST = numericToDecimal(gst)
	b.Breakdown.Duty = numericToDecimal(duty)
	b.Breakdown.MeterRent = numericToDecimal(meterRent)
	b.Breakdown.TVFee = numericToDecimal(tvFee)
	b.Breakdown.Total = numericToDecimal(breakdownTotal)
	b.Arrears = numericToDecimal(arrears)
	b.TotalWithArrears = numericToDecimal(totalWithArrears)
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time
	return &b, nil
}

func scanElectricityBillRow(row pgx.Row) (*domain.ElectricityBill, error) {
	bill, err := scanElectricityBill(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBillNotFound
		}
		return nil, err
	}
	return bill, nil
}
