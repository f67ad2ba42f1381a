package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

// MockPropertyRepository is a mock implementation of PropertyRepository.
type MockPropertyRepository struct {
	mu         sync.RWMutex
	properties map[string]*domain.Property

	CreateFunc          func(ctx context.Context, property *domain.Property) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.Property, error)
	UpdateFunc          func(ctx context.Context, property *domain.Property) error
	ListFunc            func(ctx context.Context, filter usecase.PropertyFilter) ([]*domain.Property, int, error)
	ListByOwnerNameFunc func(ctx context.Context, ownerName string, unassignedOnly bool) ([]*domain.Property, error)
	AssignResidentFunc  func(ctx context.Context, tx usecase.Transaction, propertyIDs []string, residentID *string, updatedBy string, updatedAt time.Time) error
	ListAllFunc         func(ctx context.Context) ([]*domain.Property, error)
}

func NewMockPropertyRepository() *MockPropertyRepository {
	return &MockPropertyRepository{
		properties: make(map[string]*domain.Property),
	}
}

func (m *MockPropertyRepository) Create(ctx context.Context, property *domain.Property) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, property)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.properties[property.ID] = property
	return nil
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.properties[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPropertyNotFound
}

func (m *MockPropertyRepository) Update(ctx context.Context, property *domain.Property) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, property)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.properties[property.ID] = property
	return nil
}

func (m *MockPropertyRepository) List(ctx context.Context, filter usecase.PropertyFilter) ([]*domain.Property, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Property, 0, len(m.properties))
	for _, p := range m.properties {
		if filter.Active != nil && p.Active != *filter.Active {
			continue
		}
		if filter.Unassigned && p.ResidentID != nil {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Serial < out[j].Serial })
	return out, len(out), nil
}

func (m *MockPropertyRepository) ListByOwnerName(ctx context.Context, ownerName string, unassignedOnly bool) ([]*domain.Property, error) {
	if m.ListByOwnerNameFunc != nil {
		return m.ListByOwnerNameFunc(ctx, ownerName, unassignedOnly)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Property
	for _, p := range m.properties {
		if unassignedOnly && p.ResidentID != nil {
			continue
		}
		if strings.EqualFold(p.OwnerName, ownerName) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockPropertyRepository) AssignResident(ctx context.Context, tx usecase.Transaction, propertyIDs []string, residentID *string, updatedBy string, updatedAt time.Time) error {
	if m.AssignResidentFunc != nil {
		return m.AssignResidentFunc(ctx, tx, propertyIDs, residentID, updatedBy, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range propertyIDs {
		if p, ok := m.properties[id]; ok {
			p.ResidentID = residentID
			p.UpdatedBy = updatedBy
			p.UpdatedAt = updatedAt
		}
	}
	return nil
}

func (m *MockPropertyRepository) ListAll(ctx context.Context) ([]*domain.Property, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Property, 0, len(m.properties))
	for _, p := range m.properties {
		if !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Serial < out[j].Serial })
	return out, nil
}

// MockResidentRepository is a mock implementation of ResidentRepository.
type MockResidentRepository struct {
	mu        sync.RWMutex
	residents map[string]*domain.Resident

	CreateFunc           func(ctx context.Context, resident *domain.Resident) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Resident, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Resident, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedBy string, updatedAt time.Time) error
	UpdateFunc           func(ctx context.Context, resident *domain.Resident) error
	ListFunc             func(ctx context.Context, filter usecase.ResidentFilter) ([]*domain.Resident, int, error)
	ListAllFunc          func(ctx context.Context) ([]*domain.Resident, error)
}

func NewMockResidentRepository() *MockResidentRepository {
	return &MockResidentRepository{
		residents: make(map[string]*domain.Resident),
	}
}

func (m *MockResidentRepository) Create(ctx context.Context, resident *domain.Resident) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, resident)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.residents[resident.ID] = resident
	return nil
}

func (m *MockResidentRepository) GetByID(ctx context.Context, id string) (*domain.Resident, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.residents[id]; ok {
		return r, nil
	}
	return nil, domain.ErrResidentNotFound
}

func (m *MockResidentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Resident, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockResidentRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedBy string, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedBy, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.residents[id]; ok {
		r.Balance = balance
		r.Version++
		r.UpdatedBy = updatedBy
		r.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockResidentRepository) Update(ctx context.Context, resident *domain.Resident) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, resident)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.residents[resident.ID] = resident
	return nil
}

func (m *MockResidentRepository) List(ctx context.Context, filter usecase.ResidentFilter) ([]*domain.Resident, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	all, _ := m.ListAll(ctx)
	var out []*domain.Resident
	for _, r := range all {
		if r.IsSuspense() != filter.SuspenseOnly {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func (m *MockResidentRepository) ListAll(ctx context.Context) ([]*domain.Resident, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Resident, 0, len(m.residents))
	for _, r := range m.residents {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	txns map[string]*domain.Transaction

	CreateFunc                   func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	GetByIDFunc                  func(ctx context.Context, id string) (*domain.Transaction, error)
	UpdateFunc                   func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	DeleteFunc                   func(ctx context.Context, tx usecase.Transaction, id string) error
	ListByResidentFunc           func(ctx context.Context, residentID string, filter usecase.TransactionFilter) ([]*domain.Transaction, int, error)
	ListDepositsFunc             func(ctx context.Context, residentID string, suspenseOnly bool, limit, offset int) ([]*domain.Transaction, int, error)
	UsageByDepositFunc           func(ctx context.Context, depositIDs []string) (map[string]decimal.Decimal, error)
	ListPaymentsUsingDepositFunc func(ctx context.Context, depositID string) ([]*domain.Transaction, error)
	ListByResidentAllFunc        func(ctx context.Context, residentID string) ([]*domain.Transaction, error)
	ListByReferenceFunc          func(ctx context.Context, referenceType, referenceID string) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		txns: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns[txn.ID] = txn
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.txns[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns[txn.ID] = txn
	return nil
}

func (m *MockTransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.txns, id)
	return nil
}

func (m *MockTransactionRepository) ListByResident(ctx context.Context, residentID string, filter usecase.TransactionFilter) ([]*domain.Transaction, int, error) {
	if m.ListByResidentFunc != nil {
		return m.ListByResidentFunc(ctx, residentID, filter)
	}
	all, _ := m.ListByResidentAll(ctx, residentID)
	return all, len(all), nil
}

func (m *MockTransactionRepository) ListDeposits(ctx context.Context, residentID string, suspenseOnly bool, limit, offset int) ([]*domain.Transaction, int, error) {
	if m.ListDepositsFunc != nil {
		return m.ListDepositsFunc(ctx, residentID, suspenseOnly, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, t := range m.txns {
		if t.Kind != domain.TransactionKindDeposit || t.IsReversal() {
			continue
		}
		if residentID != "" && t.ResidentID != residentID {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, len(out), nil
}

func (m *MockTransactionRepository) UsageByDeposit(ctx context.Context, depositIDs []string) (map[string]decimal.Decimal, error) {
	if m.UsageByDepositFunc != nil {
		return m.UsageByDepositFunc(ctx, depositIDs)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[string]bool, len(depositIDs))
	for _, id := range depositIDs {
		wanted[id] = true
	}
	used := make(map[string]decimal.Decimal)
	for _, t := range m.txns {
		for _, u := range t.DepositUsages {
			if wanted[u.DepositID] {
				used[u.DepositID] = used[u.DepositID].Add(u.Amount)
			}
		}
	}
	return used, nil
}

func (m *MockTransactionRepository) ListPaymentsUsingDeposit(ctx context.Context, depositID string) ([]*domain.Transaction, error) {
	if m.ListPaymentsUsingDepositFunc != nil {
		return m.ListPaymentsUsingDepositFunc(ctx, depositID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, t := range m.txns {
		for _, u := range t.DepositUsages {
			if u.DepositID == depositID {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

func (m *MockTransactionRepository) ListByResidentAll(ctx context.Context, residentID string) ([]*domain.Transaction, error) {
	if m.ListByResidentAllFunc != nil {
		return m.ListByResidentAllFunc(ctx, residentID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, t := range m.txns {
		if t.ResidentID == residentID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockTransactionRepository) ListByReference(ctx context.Context, referenceType, referenceID string) ([]*domain.Transaction, error) {
	if m.ListByReferenceFunc != nil {
		return m.ListByReferenceFunc(ctx, referenceType, referenceID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, t := range m.txns {
		if t.ReferenceType == referenceType && t.ReferenceID == referenceID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// MockTariffRepository is a mock implementation of TariffRepository.
type MockTariffRepository struct {
	mu       sync.RWMutex
	versions []*domain.TariffVersion

	AppendFunc   func(ctx context.Context, version *domain.TariffVersion) error
	ActiveAtFunc func(ctx context.Context, asOf time.Time) (*domain.TariffVersion, error)
	ListFunc     func(ctx context.Context, limit, offset int) ([]*domain.TariffVersion, error)
}

func NewMockTariffRepository() *MockTariffRepository {
	return &MockTariffRepository{}
}

func (m *MockTariffRepository) Append(ctx context.Context, version *domain.TariffVersion) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, version)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions = append(m.versions, version)
	return nil
}

func (m *MockTariffRepository) ActiveAt(ctx context.Context, asOf time.Time) (*domain.TariffVersion, error) {
	if m.ActiveAtFunc != nil {
		return m.ActiveAtFunc(ctx, asOf)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var active *domain.TariffVersion
	for _, v := range m.versions {
		if v.EffectiveFrom.After(asOf) {
			continue
		}
		if active == nil || v.EffectiveFrom.After(active.EffectiveFrom) {
			active = v
		}
	}
	if active == nil {
		return nil, domain.ErrTariffNotFound
	}
	return active, nil
}

func (m *MockTariffRepository) List(ctx context.Context, limit, offset int) ([]*domain.TariffVersion, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.TariffVersion(nil), m.versions...), nil
}

// MockCAMChargeRepository is a mock implementation of CAMChargeRepository.
type MockCAMChargeRepository struct {
	mu      sync.RWMutex
	charges map[string]*domain.CAMCharge

	CreateFunc             func(ctx context.Context, charge *domain.CAMCharge) error
	GetByIDFunc            func(ctx context.Context, id string) (*domain.CAMCharge, error)
	GetByPropertyMonthFunc func(ctx context.Context, propertyID, month string) (*domain.CAMCharge, error)
	UpdateFunc             func(ctx context.Context, charge *domain.CAMCharge) error
	DeleteFunc             func(ctx context.Context, id string) error
	ListFunc               func(ctx context.Context, month string, limit, offset int) ([]*domain.CAMCharge, int, error)
	LatestByPropertyFunc   func(ctx context.Context, propertyID string) (*domain.CAMCharge, error)
}

func NewMockCAMChargeRepository() *MockCAMChargeRepository {
	return &MockCAMChargeRepository{
		charges: make(map[string]*domain.CAMCharge),
	}
}

func (m *MockCAMChargeRepository) Create(ctx context.Context, charge *domain.CAMCharge) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, charge)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.charges[charge.ID] = charge
	return nil
}

func (m *MockCAMChargeRepository) GetByID(ctx context.Context, id string) (*domain.CAMCharge, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.charges[id]; ok {
		return c, nil
	}
	return nil, domain.ErrBillNotFound
}

func (m *MockCAMChargeRepository) GetByPropertyMonth(ctx context.Context, propertyID, month string) (*domain.CAMCharge, error) {
	if m.GetByPropertyMonthFunc != nil {
		return m.GetByPropertyMonthFunc(ctx, propertyID, month)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.charges {
		if c.PropertyID == propertyID && c.Month == month {
			return c, nil
		}
	}
	return nil, domain.ErrBillNotFound
}

func (m *MockCAMChargeRepository) Update(ctx context.Context, charge *domain.CAMCharge) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, charge)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.charges[charge.ID] = charge
	return nil
}

func (m *MockCAMChargeRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.charges, id)
	return nil
}

func (m *MockCAMChargeRepository) List(ctx context.Context, month string, limit, offset int) ([]*domain.CAMCharge, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, month, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.CAMCharge
	for _, c := range m.charges {
		if month == "" || c.Month == month {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (m *MockCAMChargeRepository) LatestByProperty(ctx context.Context, propertyID string) (*domain.CAMCharge, error) {
	if m.LatestByPropertyFunc != nil {
		return m.LatestByPropertyFunc(ctx, propertyID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.CAMCharge
	for _, c := range m.charges {
		if c.PropertyID != propertyID {
			continue
		}
		if latest == nil || c.PeriodFrom.After(latest.PeriodFrom) {
			latest = c
		}
	}
	if latest == nil {
		return nil, domain.ErrBillNotFound
	}
	return latest, nil
}

// MockElectricityBillRepository is a mock implementation of ElectricityBillRepository.
type MockElectricityBillRepository struct {
	mu    sync.RWMutex
	bills map[string]*domain.ElectricityBill

	CreateFunc          func(ctx context.Context, bill *domain.ElectricityBill) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.ElectricityBill, error)
	GetByMeterMonthFunc func(ctx context.Context, propertyID, meterNumber, month string) (*domain.ElectricityBill, error)
	LatestByMeterFunc   func(ctx context.Context, propertyID, meterNumber string) (*domain.ElectricityBill, error)
	UpdateFunc          func(ctx context.Context, bill *domain.ElectricityBill) error
	DeleteFunc          func(ctx context.Context, id string) error
	ListFunc            func(ctx context.Context, month string, limit, offset int) ([]*domain.ElectricityBill, int, error)
}

func NewMockElectricityBillRepository() *MockElectricityBillRepository {
	return &MockElectricityBillRepository{
		bills: make(map[string]*domain.ElectricityBill),
	}
}

func (m *MockElectricityBillRepository) Create(ctx context.Context, bill *domain.ElectricityBill) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, bill)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bills[bill.ID] = bill
	return nil
}

func (m *MockElectricityBillRepository) GetByID(ctx context.Context, id string) (*domain.ElectricityBill, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.bills[id]; ok {
		return b, nil
	}
	return nil, domain.ErrBillNotFound
}

func (m *MockElectricityBillRepository) GetByMeterMonth(ctx context.Context, propertyID, meterNumber, month string) (*domain.ElectricityBill, error) {
	if m.GetByMeterMonthFunc != nil {
		return m.GetByMeterMonthFunc(ctx, propertyID, meterNumber, month)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bills {
		if b.PropertyID == propertyID && b.MeterNumber == meterNumber && b.Month == month {
			return b, nil
		}
	}
	return nil, domain.ErrBillNotFound
}

func (m *MockElectricityBillRepository) LatestByMeter(ctx context.Context, propertyID, meterNumber string) (*domain.ElectricityBill, error) {
	if m.LatestByMeterFunc != nil {
		return m.LatestByMeterFunc(ctx, propertyID, meterNumber)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.ElectricityBill
	for _, b := range m.bills {
		if b.PropertyID != propertyID || b.MeterNumber != meterNumber {
			continue
		}
		if latest == nil || b.PeriodFrom.After(latest.PeriodFrom) {
			latest = b
		}
	}
	if latest == nil {
		return nil, domain.ErrBillNotFound
	}
	return latest, nil
}

func (m *MockElectricityBillRepository) Update(ctx context.Context, bill *domain.ElectricityBill) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, bill)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bills[bill.ID] = bill
	return nil
}

func (m *MockElectricityBillRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bills, id)
	return nil
}

func (m *MockElectricityBillRepository) List(ctx context.Context, month string, limit, offset int) ([]*domain.ElectricityBill, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, month, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ElectricityBill
	for _, b := range m.bills {
		if month == "" || b.Month == month {
			out = append(out, b)
		}
	}
	return out, len(out), nil
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository.
type MockInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[string]*domain.Invoice

	CreateFunc               func(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.Invoice, error)
	GetByIDForUpdateFunc     func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Invoice, error)
	GetByPropertyPeriodFunc  func(ctx context.Context, propertyID, month, meterNumber string) (*domain.Invoice, error)
	UpdateFunc               func(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error
	DeleteFunc               func(ctx context.Context, tx usecase.Transaction, id string) error
	ListUnpaidByPropertyFunc func(ctx context.Context, propertyID, chargeType string, before time.Time) ([]*domain.Invoice, error)
	ListByPropertyFunc       func(ctx context.Context, propertyID string, limit, offset int) ([]*domain.Invoice, int, error)
	ListFunc                 func(ctx context.Context, search, month string, limit, offset int) ([]*domain.Invoice, int, error)
	ListAllFunc              func(ctx context.Context) ([]*domain.Invoice, error)
}

func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{
		invoices: make(map[string]*domain.Invoice),
	}
}

func (m *MockInvoiceRepository) Create(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, invoice)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if inv, ok := m.invoices[id]; ok {
		return inv, nil
	}
	return nil, domain.ErrInvoiceNotFound
}

func (m *MockInvoiceRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Invoice, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockInvoiceRepository) GetByPropertyPeriod(ctx context.Context, propertyID, month, meterNumber string) (*domain.Invoice, error) {
	if m.GetByPropertyPeriodFunc != nil {
		return m.GetByPropertyPeriodFunc(ctx, propertyID, month, meterNumber)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, inv := range m.invoices {
		if inv.PropertyID == propertyID && inv.Month == month && inv.MeterNumber == meterNumber {
			return inv, nil
		}
	}
	return nil, domain.ErrInvoiceNotFound
}

func (m *MockInvoiceRepository) Update(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, invoice)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.invoices, id)
	return nil
}

func (m *MockInvoiceRepository) ListUnpaidByProperty(ctx context.Context, propertyID, chargeType string, before time.Time) ([]*domain.Invoice, error) {
	if m.ListUnpaidByPropertyFunc != nil {
		return m.ListUnpaidByPropertyFunc(ctx, propertyID, chargeType, before)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Invoice
	for _, inv := range m.invoices {
		if inv.PropertyID != propertyID || inv.Status == domain.InvoiceStatusCancelled {
			continue
		}
		if !inv.PeriodTo.Before(before) {
			continue
		}
		if inv.Balance.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if chargeType != "" {
			hasType := false
			for _, c := range inv.Charges {
				if c.Type == chargeType {
					hasType = true
					break
				}
			}
			if !hasType {
				continue
			}
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodFrom.Before(out[j].PeriodFrom) })
	return out, nil
}

func (m *MockInvoiceRepository) ListByProperty(ctx context.Context, propertyID string, limit, offset int) ([]*domain.Invoice, int, error) {
	if m.ListByPropertyFunc != nil {
		return m.ListByPropertyFunc(ctx, propertyID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Invoice
	for _, inv := range m.invoices {
		if inv.PropertyID == propertyID {
			out = append(out, inv)
		}
	}
	return out, len(out), nil
}

func (m *MockInvoiceRepository) List(ctx context.Context, search, month string, limit, offset int) ([]*domain.Invoice, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, search, month, limit, offset)
	}
	all, _ := m.ListAll(ctx)
	return all, len(all), nil
}

func (m *MockInvoiceRepository) ListAll(ctx context.Context) ([]*domain.Invoice, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockReceiptRepository is a mock implementation of ReceiptRepository.
type MockReceiptRepository struct {
	mu       sync.RWMutex
	receipts map[string]*domain.Receipt

	CreateFunc  func(ctx context.Context, tx usecase.Transaction, receipt *domain.Receipt) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.Receipt, error)
	UpdateFunc  func(ctx context.Context, tx usecase.Transaction, receipt *domain.Receipt) error
	ListFunc    func(ctx context.Context, residentID string, limit, offset int) ([]*domain.Receipt, int, error)
	ListAllFunc func(ctx context.Context) ([]*domain.Receipt, error)
}

func NewMockReceiptRepository() *MockReceiptRepository {
	return &MockReceiptRepository{
		receipts: make(map[string]*domain.Receipt),
	}
}

func (m *MockReceiptRepository) Create(ctx context.Context, tx usecase.Transaction, receipt *domain.Receipt) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, receipt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts[receipt.ID] = receipt
	return nil
}

func (m *MockReceiptRepository) GetByID(ctx context.Context, id string) (*domain.Receipt, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.receipts[id]; ok {
		return r, nil
	}
	return nil, domain.ErrReceiptNotFound
}

func (m *MockReceiptRepository) Update(ctx context.Context, tx usecase.Transaction, receipt *domain.Receipt) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, receipt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts[receipt.ID] = receipt
	return nil
}

func (m *MockReceiptRepository) List(ctx context.Context, residentID string, limit, offset int) ([]*domain.Receipt, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, residentID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Receipt
	for _, r := range m.receipts {
		if residentID == "" || r.ResidentID == residentID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (m *MockReceiptRepository) ListAll(ctx context.Context) ([]*domain.Receipt, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Receipt, 0, len(m.receipts))
	for _, r := range m.receipts {
		out = append(out, r)
	}
	return out, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return nil
}

// Events returns a copy of the captured events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc   func(ctx context.Context, log *domain.AuditLog) error
	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AuditLog(nil), m.logs...), nil
}

func (m *MockAuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditLog
	for _, l := range m.logs {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			out = append(out, l)
		}
	}
	return out, nil
}

// Logs returns a copy of the captured audit logs.
func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AuditLog(nil), m.logs...)
}

// MockSequenceGenerator is a mock implementation of SequenceGenerator.
type MockSequenceGenerator struct {
	mu       sync.Mutex
	counters map[string]int64

	NextFunc func(ctx context.Context, counter string) (int64, error)
}

func NewMockSequenceGenerator() *MockSequenceGenerator {
	return &MockSequenceGenerator{
		counters: make(map[string]int64),
	}
}

func (m *MockSequenceGenerator) Next(ctx context.Context, counter string) (int64, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, counter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[counter]++
	return m.counters[counter], nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%04d", m.counter)
}
