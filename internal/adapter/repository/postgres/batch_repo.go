package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keepbooks/bankrec/internal/domain"
)

// BatchRepository implements usecase.BatchRepository.
type BatchRepository struct {
	pool *pgxpool.Pool
}

// NewBatchRepository creates a new BatchRepository.
func NewBatchRepository(pool *pgxpool.Pool) *BatchRepository {
	return &BatchRepository{pool: pool}
}

const batchColumns = `
	id, user_id, file_name, file_type, bank_name, account_number,
	total_transactions, imported_expenses, imported_income,
	skipped_transactions, invoices_marked_paid, new_invoices_created,
	status, error_message, created_at, completed_at
`

// Create inserts a new import batch.
func (r *BatchRepository) Create(ctx context.Context, batch *domain.ImportBatch) error {
	query := `
		INSERT INTO import_batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.pool.Exec(ctx, query,
		batch.ID,
		batch.UserID,
		batch.FileName,
		batch.FileType,
		batch.BankName,
		batch.AccountNumber,
		batch.TotalTransactions,
		batch.ImportedExpenses,
		batch.ImportedIncome,
		batch.SkippedTransactions,
		batch.InvoicesMarkedPaid,
		batch.NewInvoicesCreated,
		string(batch.Status),
		batch.ErrorMessage,
		batch.CreatedAt,
		batch.CompletedAt,
	)

	return err
}

// GetByID retrieves a batch by ID.
func (r *BatchRepository) GetByID(ctx context.Context, id string) (*domain.ImportBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM import_batches WHERE id = $1`

	batch, err := scanBatch(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBatchNotFound
		}

		return nil, err
	}

	return batch, nil
}

// ListByUser lists a user's batches, newest first.
func (r *BatchRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.ImportBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM import_batches
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []*domain.ImportBatch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}

	return batches, rows.Err()
}

// Update rewrites the batch counters and status.
func (r *BatchRepository) Update(ctx context.Context, batch *domain.ImportBatch) error {
	query := `
		UPDATE import_batches SET
			total_transactions = $2,
			imported_expenses = $3,
			imported_income = $4,
			skipped_transactions = $5,
			invoices_marked_paid = $6,
			new_invoices_created = $7,
			status = $8,
			error_message = $9,
			completed_at = $10
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		batch.ID,
		batch.TotalTransactions,
		batch.ImportedExpenses,
		batch.ImportedIncome,
		batch.SkippedTransactions,
		batch.InvoicesMarkedPaid,
		batch.NewInvoicesCreated,
		string(batch.Status),
		batch.ErrorMessage,
		batch.CompletedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBatchNotFound
	}

	return nil
}

// UpdateStatus flips only the batch status and completion time.
func (r *BatchRepository) UpdateStatus(ctx context.Context, id string, status domain.BatchStatus, completedAt time.Time) error {
	query := `UPDATE import_batches SET status = $2, completed_at = $3 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, string(status), completedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBatchNotFound
	}

	return nil
}

func scanBatch(row pgx.Row) (*domain.ImportBatch, error) {
	var batch domain.ImportBatch
	var status string

	err := row.Scan(
		&batch.ID,
		&batch.UserID,
		&batch.FileName,
		&batch.FileType,
		&batch.BankName,
		&batch.AccountNumber,
		&batch.TotalTransactions,
		&batch.ImportedExpenses,
		&batch.ImportedIncome,
		&batch.SkippedTransactions,
		&batch.InvoicesMarkedPaid,
		&batch.NewInvoicesCreated,
		&status,
		&batch.ErrorMessage,
		&batch.CreatedAt,
		&batch.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	batch.Status = domain.BatchStatus(status)

	return &batch, nil
}
