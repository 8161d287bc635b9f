package usecase

import (
	"context"
	"io"
	"time"

	"github.com/keepbooks/bankrec/internal/domain"
)

// BatchRepository defines data access for import batches.
type BatchRepository interface {
	Create(ctx context.Context, batch *domain.ImportBatch) error
	GetByID(ctx context.Context, id string) (*domain.ImportBatch, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.ImportBatch, error)
	Update(ctx context.Context, batch *domain.ImportBatch) error
	UpdateStatus(ctx context.Context, id string, status domain.BatchStatus, completedAt time.Time) error
}

// ExpenseRepository defines data access for expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) error
	ListByBatch(ctx context.Context, batchID string) ([]*domain.Expense, error)
	// ListRecords returns the dedup view of every persisted transaction for
	// a user.
	ListRecords(ctx context.Context, userID string) ([]domain.ExistingRecord, error)
	// DeleteByBatch removes all expenses tagged with the batch ID and
	// reports how many rows were deleted.
	DeleteByBatch(ctx context.Context, batchID string) (int64, error)
}

// InvoiceRepository defines data access for invoices.
type InvoiceRepository interface {
	// ListOpen returns a user's invoices with status in statuses and issue
	// date inside [from, to], in stable issue-date order.
	ListOpen(ctx context.Context, userID string, statuses []domain.InvoiceStatus, from, to time.Time) ([]*domain.Invoice, error)
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	UpdateStatus(ctx context.Context, id string, status domain.InvoiceStatus, updatedAt time.Time) error
	// CreateTx inserts an invoice and its line item inside tx.
	CreateTx(ctx context.Context, tx Transaction, invoice *domain.Invoice, item *domain.LineItem) error
}

// CustomerRepository defines data access for customers.
type CustomerRepository interface {
	// GetByName matches the customer name case-insensitively and exactly.
	GetByName(ctx context.Context, userID, name string) (*domain.Customer, error)
	CreateTx(ctx context.Context, tx Transaction, customer *domain.Customer) error
}

// PaymentRepository defines data access for batch-to-invoice payment joins.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.InvoicePayment) error
	ListByBatch(ctx context.Context, batchID string) ([]*domain.InvoicePayment, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// StatementParser turns an uploaded file into normalized transactions. The
// import pipeline never touches raw statement bytes itself.
type StatementParser interface {
	Parse(ctx context.Context, r io.Reader, fileName, bankHint string) (*domain.ParsedStatement, error)
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
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
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
