package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
)

// PropertyFilter narrows property listings.
type PropertyFilter struct {
	Search     string
	Unassigned bool
	Active     *bool
	Limit      int
	Offset     int
}

// PropertyRepository defines data access for properties.
type PropertyRepository interface {
	Create(ctx context.Context, property *domain.Property) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	Update(ctx context.Context, property *domain.Property) error
	List(ctx context.Context, filter PropertyFilter) ([]*domain.Property, int, error)
	ListByOwnerName(ctx context.Context, ownerName string, unassignedOnly bool) ([]*domain.Property, error)
	AssignResident(ctx context.Context, tx Transaction, propertyIDs []string, residentID *string, updatedBy string, updatedAt time.Time) error
	ListAll(ctx context.Context) ([]*domain.Property, error)
}

// ResidentFilter narrows resident listings. Suspense accounts are excluded
// unless SuspenseOnly is set.
type ResidentFilter struct {
	Search       string
	AccountType  string
	Active       *bool
	SuspenseOnly bool
	Limit        int
	Offset       int
}

// ResidentRepository defines data access for residents.
type ResidentRepository interface {
	Create(ctx context.Context, resident *domain.Resident) error
	GetByID(ctx context.Context, id string) (*domain.Resident, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Resident, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedBy string, updatedAt time.Time) error
	Update(ctx context.Context, resident *domain.Resident) error
	List(ctx context.Context, filter ResidentFilter) ([]*domain.Resident, int, error)
	ListAll(ctx context.Context) ([]*domain.Resident, error)
}

// TransactionFilter narrows a resident's transaction listing.
type TransactionFilter struct {
	Kind      string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	Update(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	Delete(ctx context.Context, tx Transaction, id string) error
	ListByResident(ctx context.Context, residentID string, filter TransactionFilter) ([]*domain.Transaction, int, error)
	ListDeposits(ctx context.Context, residentID string, suspenseOnly bool, limit, offset int) ([]*domain.Transaction, int, error)
	// UsageByDeposit sums, per deposit ID, the bill-payment usages referencing it.
	UsageByDeposit(ctx context.Context, depositIDs []string) (map[string]decimal.Decimal, error)
	ListPaymentsUsingDeposit(ctx context.Context, depositID string) ([]*domain.Transaction, error)
	ListByReference(ctx context.Context, referenceType, referenceID string) ([]*domain.Transaction, error)
	ListByResidentAll(ctx context.Context, residentID string) ([]*domain.Transaction, error)
}

// TariffRepository defines data access for the append-only tariff history.
type TariffRepository interface {
	Append(ctx context.Context, version *domain.TariffVersion) error
	ActiveAt(ctx context.Context, asOf time.Time) (*domain.TariffVersion, error)
	List(ctx context.Context, limit, offset int) ([]*domain.TariffVersion, error)
}

// CAMChargeRepository defines data access for CAM charges.
type CAMChargeRepository interface {
	Create(ctx context.Context, charge *domain.CAMCharge) error
	GetByID(ctx context.Context, id string) (*domain.CAMCharge, error)
	GetByPropertyMonth(ctx context.Context, propertyID, month string) (*domain.CAMCharge, error)
	Update(ctx context.Context, charge *domain.CAMCharge) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, month string, limit, offset int) ([]*domain.CAMCharge, int, error)
	LatestByProperty(ctx context.Context, propertyID string) (*domain.CAMCharge, error)
}

// ElectricityBillRepository defines data access for electricity bills.
type ElectricityBillRepository interface {
	Create(ctx context.Context, bill *domain.ElectricityBill) error
	GetByID(ctx context.Context, id string) (*domain.ElectricityBill, error)
	GetByMeterMonth(ctx context.Context, propertyID, meterNumber, month string) (*domain.ElectricityBill, error)
	LatestByMeter(ctx context.Context, propertyID, meterNumber string) (*domain.ElectricityBill, error)
	Update(ctx context.Context, bill *domain.ElectricityBill) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, month string, limit, offset int) ([]*domain.ElectricityBill, int, error)
}

// InvoiceRepository defines data access for invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, tx Transaction, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Invoice, error)
	GetByPropertyPeriod(ctx context.Context, propertyID, month, meterNumber string) (*domain.Invoice, error)
	Update(ctx context.Context, tx Transaction, invoice *domain.Invoice) error
	Delete(ctx context.Context, tx Transaction, id string) error
	// ListUnpaidByProperty returns unpaid/partially paid invoices whose period
	// ends before the given date, oldest first. Only invoices still linked to
	// a live charge record are returned; deleted bills never resurrect as
	// phantom arrears.
	ListUnpaidByProperty(ctx context.Context, propertyID, chargeType string, before time.Time) ([]*domain.Invoice, error)
	ListByProperty(ctx context.Context, propertyID string, limit, offset int) ([]*domain.Invoice, int, error)
	List(ctx context.Context, search, month string, limit, offset int) ([]*domain.Invoice, int, error)
	ListAll(ctx context.Context) ([]*domain.Invoice, error)
}

// ReceiptRepository defines data access for receipts.
type ReceiptRepository interface {
	Create(ctx context.Context, tx Transaction, receipt *domain.Receipt) error
	GetByID(ctx context.Context, id string) (*domain.Receipt, error)
	Update(ctx context.Context, tx Transaction, receipt *domain.Receipt) error
	List(ctx context.Context, residentID string, limit, offset int) ([]*domain.Receipt, int, error)
	ListAll(ctx context.Context) ([]*domain.Receipt, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// SequenceGenerator issues collision-free monotonically increasing integers
// per named counter. Gaps from failed saves are acceptable; duplicates are
// not. Implementations must self-heal when a counter is introduced after
// data already exists.
type SequenceGenerator interface {
	Next(ctx context.Context, counter string) (int64, error)
}

// Sequence counter names.
const (
	SequencePropertySerial  = "property_serial"
	SequenceResidentID      = "resident_id"
	SequenceCAMBill         = "cam_bill"
	SequenceElectricityBill = "electricity_bill"
	SequenceInvoice         = "invoice"
	SequenceReceipt         = "receipt"
)

// Retrier retries an operation on transient conflicts. Implementations bound
// the number of attempts; exhausted retries surface the conflict.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
