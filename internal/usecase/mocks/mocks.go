// Package mocks contains hand-rolled test doubles for the usecase
// interfaces. Each mock stores state in memory and lets individual tests
// override behavior through the *Func fields.
package mocks

import (
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/keepbooks/bankrec/internal/domain"
	"github.com/keepbooks/bankrec/internal/usecase"
)

// MockBatchRepository is a mock implementation of BatchRepository.
type MockBatchRepository struct {
	mu      sync.RWMutex
	batches map[string]*domain.ImportBatch

	CreateFunc       func(ctx context.Context, batch *domain.ImportBatch) error
	GetByIDFunc      func(ctx context.Context, id string) (*domain.ImportBatch, error)
	ListByUserFunc   func(ctx context.Context, userID string, limit, offset int) ([]*domain.ImportBatch, error)
	UpdateFunc       func(ctx context.Context, batch *domain.ImportBatch) error
	UpdateStatusFunc func(ctx context.Context, id string, status domain.BatchStatus, completedAt time.Time) error

	StatusUpdates []domain.BatchStatus
}

func NewMockBatchRepository() *MockBatchRepository {
	return &MockBatchRepository{batches: make(map[string]*domain.ImportBatch)}
}

func (m *MockBatchRepository) Create(ctx context.Context, batch *domain.ImportBatch) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, batch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *batch
	m.batches[batch.ID] = &cp
	return nil
}

func (m *MockBatchRepository) GetByID(ctx context.Context, id string) (*domain.ImportBatch, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.batches[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, domain.ErrBatchNotFound
}

func (m *MockBatchRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.ImportBatch, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ImportBatch
	for _, b := range m.batches {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockBatchRepository) Update(ctx context.Context, batch *domain.ImportBatch) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, batch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *batch
	m.batches[batch.ID] = &cp
	return nil
}

func (m *MockBatchRepository) UpdateStatus(ctx context.Context, id string, status domain.BatchStatus, completedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, completedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusUpdates = append(m.StatusUpdates, status)
	if b, ok := m.batches[id]; ok {
		b.Status = status
		b.CompletedAt = &completedAt
	}
	return nil
}

// MockExpenseRepository is a mock implementation of ExpenseRepository.
type MockExpenseRepository struct {
	mu       sync.RWMutex
	expenses map[string]*domain.Expense
	records  []domain.ExistingRecord

	CreateFunc        func(ctx context.Context, expense *domain.Expense) error
	ListByBatchFunc   func(ctx context.Context, batchID string) ([]*domain.Expense, error)
	ListRecordsFunc   func(ctx context.Context, userID string) ([]domain.ExistingRecord, error)
	DeleteByBatchFunc func(ctx context.Context, batchID string) (int64, error)

	DeleteCalls int
}

func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{expenses: make(map[string]*domain.Expense)}
}

// SeedRecords sets the dedup snapshot returned by ListRecords.
func (m *MockExpenseRepository) SeedRecords(records []domain.ExistingRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = records
}

func (m *MockExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, expense)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *expense
	m.expenses[expense.ID] = &cp
	return nil
}

func (m *MockExpenseRepository) ListByBatch(ctx context.Context, batchID string) ([]*domain.Expense, error) {
	if m.ListByBatchFunc != nil {
		return m.ListByBatchFunc(ctx, batchID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Expense
	for _, e := range m.expenses {
		if e.ImportBatchID == batchID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockExpenseRepository) ListRecords(ctx context.Context, userID string) ([]domain.ExistingRecord, error) {
	if m.ListRecordsFunc != nil {
		return m.ListRecordsFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.ExistingRecord, 0, len(m.records)+len(m.expenses))
	out = append(out, m.records...)
	for _, e := range m.expenses {
		out = append(out, domain.ExistingRecord{Date: e.Date, Amount: e.Amount, BankReference: e.BankReference})
	}
	return out, nil
}

func (m *MockExpenseRepository) DeleteByBatch(ctx context.Context, batchID string) (int64, error) {
	m.mu.Lock()
	m.DeleteCalls++
	m.mu.Unlock()
	if m.DeleteByBatchFunc != nil {
		return m.DeleteByBatchFunc(ctx, batchID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, e := range m.expenses {
		if e.ImportBatchID == batchID {
			delete(m.expenses, id)
			deleted++
		}
	}
	return deleted, nil
}

// Count returns how many expenses are currently stored.
func (m *MockExpenseRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.expenses)
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository.
type MockInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[string]*domain.Invoice

	ListOpenFunc     func(ctx context.Context, userID string, statuses []domain.InvoiceStatus, from, to time.Time) ([]*domain.Invoice, error)
	GetByIDFunc      func(ctx context.Context, id string) (*domain.Invoice, error)
	UpdateStatusFunc func(ctx context.Context, id string, status domain.InvoiceStatus, updatedAt time.Time) error
	CreateTxFunc     func(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice, item *domain.LineItem) error
}

func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{invoices: make(map[string]*domain.Invoice)}
}

// Seed adds invoices to the store.
func (m *MockInvoiceRepository) Seed(invoices ...*domain.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range invoices {
		cp := *inv
		m.invoices[inv.ID] = &cp
	}
}

func (m *MockInvoiceRepository) ListOpen(ctx context.Context, userID string, statuses []domain.InvoiceStatus, from, to time.Time) ([]*domain.Invoice, error) {
	if m.ListOpenFunc != nil {
		return m.ListOpenFunc(ctx, userID, statuses, from, to)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	open := make(map[domain.InvoiceStatus]bool)
	for _, s := range statuses {
		open[s] = true
	}
	var out []*domain.Invoice
	for _, inv := range m.invoices {
		if inv.UserID != userID || !open[inv.Status] {
			continue
		}
		if inv.IssueDate.Before(from) || inv.IssueDate.After(to) {
			continue
		}
		cp := *inv
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if inv, ok := m.invoices[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, domain.ErrInvoiceNotFound
}

func (m *MockInvoiceRepository) UpdateStatus(ctx context.Context, id string, status domain.InvoiceStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return domain.ErrInvoiceNotFound
	}
	inv.Status = status
	inv.UpdatedAt = updatedAt
	return nil
}

func (m *MockInvoiceRepository) CreateTx(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice, item *domain.LineItem) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, invoice, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *invoice
	m.invoices[invoice.ID] = &cp
	return nil
}

// MockCustomerRepository is a mock implementation of CustomerRepository.
type MockCustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer

	GetByNameFunc func(ctx context.Context, userID, name string) (*domain.Customer, error)
	CreateTxFunc  func(ctx context.Context, tx usecase.Transaction, customer *domain.Customer) error
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{customers: make(map[string]*domain.Customer)}
}

func (m *MockCustomerRepository) GetByName(ctx context.Context, userID, name string) (*domain.Customer, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, userID, name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.customers {
		if c.UserID == userID && strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

func (m *MockCustomerRepository) CreateTx(ctx context.Context, tx usecase.Transaction, customer *domain.Customer) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, customer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *customer
	m.customers[customer.ID] = &cp
	return nil
}

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments []*domain.InvoicePayment

	CreateFunc      func(ctx context.Context, payment *domain.InvoicePayment) error
	ListByBatchFunc func(ctx context.Context, batchID string) ([]*domain.InvoicePayment, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{}
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.InvoicePayment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *payment
	m.payments = append(m.payments, &cp)
	return nil
}

func (m *MockPaymentRepository) ListByBatch(ctx context.Context, batchID string) ([]*domain.InvoicePayment, error) {
	if m.ListByBatchFunc != nil {
		return m.ListByBatchFunc(ctx, batchID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.InvoicePayment
	for _, p := range m.payments {
		if p.ImportBatchID == batchID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu      sync.RWMutex
	Entries []*domain.AuditLog

	CreateFunc func(ctx context.Context, log *domain.AuditLog) error
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
	m.Entries = append(m.Entries, log)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Entries, nil
}

// MockStatementParser is a mock implementation of StatementParser.
type MockStatementParser struct {
	ParseFunc func(ctx context.Context, r io.Reader, fileName, bankHint string) (*domain.ParsedStatement, error)
}

func (m *MockStatementParser) Parse(ctx context.Context, r io.Reader, fileName, bankHint string) (*domain.ParsedStatement, error) {
	return m.ParseFunc(ctx, r, fileName, bankHint)
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
	return "id-" + strconv.Itoa(m.counter)
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

// MockTransaction is a no-op usecase.Transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	t.RolledBack = true
	return nil
}


