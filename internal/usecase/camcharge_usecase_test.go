package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
	"github.com/sgcerp/tajbilling/internal/usecase/mocks"
)

type billingFixture struct {
	propertyRepo *mocks.MockPropertyRepository
	camRepo      *mocks.MockCAMChargeRepository
	billRepo     *mocks.MockElectricityBillRepository
	invoiceRepo  *mocks.MockInvoiceRepository
	tariffRepo   *mocks.MockTariffRepository
	seqGen       *mocks.MockSequenceGenerator
	auditRepo    *mocks.MockAuditRepository
	tariffUC     *usecase.TariffUseCase
	camUC        *usecase.CAMChargeUseCase
	elecUC       *usecase.ElectricityUseCase
	invoiceUC    *usecase.InvoiceUseCase
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()
	f := &billingFixture{
		propertyRepo: mocks.NewMockPropertyRepository(),
		camRepo:      mocks.NewMockCAMChargeRepository(),
		billRepo:     mocks.NewMockElectricityBillRepository(),
		invoiceRepo:  mocks.NewMockInvoiceRepository(),
		tariffRepo:   mocks.NewMockTariffRepository(),
		seqGen:       mocks.NewMockSequenceGenerator(),
		auditRepo:    mocks.NewMockAuditRepository(),
	}
	idGen := mocks.NewMockIDGenerator()
	txMgr := mocks.NewMockTransactionManager()
	auditRepo := f.auditRepo

	f.tariffUC = usecase.NewTariffUseCase(f.tariffRepo, auditRepo, idGen)
	arrears := usecase.NewArrearsResolver(f.invoiceRepo)
	f.invoiceUC = usecase.NewInvoiceUseCase(txMgr, f.invoiceRepo, f.propertyRepo, f.seqGen, mocks.NewMockOutboxRepository(), auditRepo, idGen, 0, usecase.DefaultDueDateOffsetDays)
	f.camUC = usecase.NewCAMChargeUseCase(f.camRepo, f.propertyRepo, f.tariffUC, arrears, f.invoiceUC, f.seqGen, auditRepo, idGen, 0, 0, zerolog.Nop())
	f.elecUC = usecase.NewElectricityUseCase(f.billRepo, f.propertyRepo, f.tariffUC, arrears, f.invoiceUC, f.seqGen, auditRepo, idGen, 0, 0, zerolog.Nop())

	_, err := f.tariffUC.Activate(context.Background(), usecase.ActivateInput{
		EffectiveFrom: date(2025, 1, 1),
		CAMSlabs: []domain.CAMSlab{
			{SizeLabel: "4M", ZoneType: domain.ZoneTypeResidential, Amount: decimal.NewFromInt(1500)},
		},
		ElectricitySlabs: []domain.ElectricitySlab{
			{Lower: 0, Upper: 500, UnitRate: decimal.NewFromInt(10), Label: "0-500"},
		},
		Actor: "admin",
	})
	if err != nil {
		t.Fatalf("tariff activation failed: %v", err)
	}
	return f
}

func (f *billingFixture) addProperty(id string, serial int64, marla int64, meters ...string) *domain.Property {
	p := &domain.Property{
		ID:           id,
		Serial:       serial,
		Name:         "Property " + id,
		AreaValue:    decimal.NewFromInt(marla),
		AreaUnit:     domain.AreaUnitMarla,
		PropertyType: domain.PropertyTypeResidential,
		Active:       true,
	}
	for _, m := range meters {
		p.Meters = append(p.Meters, domain.Meter{MeterNumber: m})
	}
	f.propertyRepo.Create(context.Background(), p)
	return p
}

func TestCAMChargeUseCase_Create(t *testing.T) {
	f := newBillingFixture(t)
	f.addProperty("prop-1", 7, 4)

	charge, err := f.camUC.Create(context.Background(), usecase.CreateCAMChargeInput{
		PropertyID: "prop-1",
		Year:       2025,
		Month:      time.June,
		Actor:      "user-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Bill numbers derive from the property serial, not the draw order.
	if charge.BillNumber != "CAM-2025-06-0007" {
		t.Errorf("expected bill number CAM-2025-06-0007, got %s", charge.BillNumber)
	}
	if !charge.Amount.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("expected tariff amount 1500, got %s", charge.Amount)
	}
	if charge.Month != "Jun-25" {
		t.Errorf("expected month Jun-25, got %s", charge.Month)
	}

	invoice, err := f.invoiceRepo.GetByPropertyPeriod(context.Background(), "prop-1", "Jun-25", "")
	if err != nil {
		t.Fatalf("invoice should exist: %v", err)
	}
	if len(invoice.Charges) != 1 || invoice.Charges[0].SourceID != charge.ID {
		t.Error("invoice should carry the CAM line sourced from the charge")
	}
	if !invoice.GrandTotal.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("expected invoice grand total 1500, got %s", invoice.GrandTotal)
	}
	if invoice.DueDate != domain.DueDateFor(charge.PeriodTo, usecase.DefaultDueDateOffsetDays) {
		t.Errorf("unexpected due date %s", invoice.DueDate)
	}
}

func TestCAMChargeUseCase_Create_AuditFailureIsBestEffort(t *testing.T) {
	f := newBillingFixture(t)
	f.addProperty("prop-1", 1, 4)

	f.auditRepo.CreateFunc = func(ctx context.Context, log *domain.AuditLog) error {
		return errors.New("audit store unavailable")
	}
	f.auditRepo.CreateTxFunc = func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
		return nil
	}

	charge, err := f.camUC.Create(context.Background(), usecase.CreateCAMChargeInput{
		PropertyID: "prop-1",
		Year:       2025,
		Month:      time.June,
		Actor:      "user-1",
	})
	if err != nil {
		t.Fatalf("billing must survive a failed audit write: %v", err)
	}
	if charge.BillNumber != "CAM-2025-06-0001" {
		t.Errorf("unexpected bill number %s", charge.BillNumber)
	}
}

func TestCAMChargeUseCase_Create_Duplicate(t *testing.T) {
	f := newBillingFixture(t)
	f.addProperty("prop-1", 1, 4)

	input := usecase.CreateCAMChargeInput{PropertyID: "prop-1", Year: 2025, Month: time.June, Actor: "user-1"}
	if _, err := f.camUC.Create(context.Background(), input); err != nil {
		t.Fatalf("first billing failed: %v", err)
	}
	if _, err := f.camUC.Create(context.Background(), input); !errors.Is(err, domain.ErrDuplicateBill) {
		t.Errorf("expected ErrDuplicateBill, got %v", err)
	}
}

func TestCAMChargeUseCase_Create_CarriesArrears(t *testing.T) {
	f := newBillingFixture(t)
	f.addProperty("prop-1", 1, 4)

	if _, err := f.camUC.Create(context.Background(), usecase.CreateCAMChargeInput{
		PropertyID: "prop-1", Year: 2025, Month: time.May, Actor: "user-1",
	}); err != nil {
		t.Fatalf("May billing failed: %v", err)
	}

	june, err := f.camUC.Create(context.Background(), usecase.CreateCAMChargeInput{
		PropertyID: "prop-1", Year: 2025, Month: time.June, Actor: "user-1",
	})
	if err != nil {
		t.Fatalf("June billing failed: %v", err)
	}

	if !june.Arrears.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("expected May's unpaid 1500 carried as arrears, got %s", june.Arrears)
	}
	if !june.Total.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected total 3000, got %s", june.Total)
	}
}

func TestCAMChargeUseCase_Delete_RemovesArrearsSource(t *testing.T) {
	f := newBillingFixture(t)
	f.addProperty("prop-1", 1, 4)

	may, err := f.camUC.Create(context.Background(), usecase.CreateCAMChargeInput{
		PropertyID: "prop-1", Year: 2025, Month: time.May, Actor: "user-1",
	})
	if err != nil {
		t.Fatalf("May billing failed: %v", err)
	}
	if err := f.camUC.Delete(context.Background(), may.ID, "user-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	june, err := f.camUC.Create(context.Background(), usecase.CreateCAMChargeInput{
		PropertyID: "prop-1", Year: 2025, Month: time.June, Actor: "user-1",
	})
	if err != nil {
		t.Fatalf("June billing failed: %v", err)
	}
	if !june.Arrears.IsZero() {
		t.Errorf("deleted bill must not resurrect as arrears, got %s", june.Arrears)
	}
}

func TestCAMChargeUseCase_BulkGenerate(t *testing.T) {
	f := newBillingFixture(t)
	f.addProperty("prop-1", 1, 4)
	f.addProperty("prop-2", 2, 4)
	f.addProperty("prop-3", 3, 7) // no slab for 7M: fails

	// prop-2 billed ahead of the run: skipped.
	if _, err := f.camUC.Create(context.Background(), usecase.CreateCAMChargeInput{
		PropertyID: "prop-2", Year: 2025, Month: time.June, Actor: "user-1",
	}); err != nil {
		t.Fatalf("pre-billing failed: %v", err)
	}

	summary, err := f.camUC.BulkGenerate(context.Background(), 2025, time.June, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Created != 1 || summary.Skipped != 1 || summary.Failed != 1 {
		t.Errorf("expected 1/1/1 created/skipped/failed, got %d/%d/%d",
			summary.Created, summary.Skipped, summary.Failed)
	}
	for _, item := range summary.Items {
		if item.Key == "prop-3" && item.Outcome != usecase.BulkOutcomeFailed {
			t.Errorf("prop-3 should fail tariff resolution, got %s", item.Outcome)
		}
	}
}
