package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keepbooks/bankrec/internal/domain"
)

// ExpenseRepository implements usecase.ExpenseRepository. Writes go through
// the retrier because expense inserts and batch deletes are the hot path
// during imports and can hit deadlocks under concurrent batches.
type ExpenseRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool, retrier: NewRetrier()}
}

// Create inserts a new expense.
func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	query := `
		INSERT INTO expenses (
			id, user_id, description, amount, category, date,
			vendor_name, bank_reference, import_batch_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	return r.retrier.Retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, query,
			expense.ID,
			expense.UserID,
			expense.Description,
			expense.Amount.String(),
			expense.Category,
			expense.Date,
			expense.VendorName,
			expense.BankReference,
			expense.ImportBatchID,
			expense.CreatedAt,
		)

		return err
	})
}

// ListByBatch lists all expenses created by one batch, in insertion order.
func (r *ExpenseRepository) ListByBatch(ctx context.Context, batchID string) ([]*domain.Expense, error) {
	query := `
		SELECT id, user_id, description, amount::text, category, date,
		       vendor_name, bank_reference, import_batch_id, created_at
		FROM expenses
		WHERE import_batch_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*domain.Expense
	for rows.Next() {
		var expense domain.Expense
		var amount string

		err := rows.Scan(
			&expense.ID,
			&expense.UserID,
			&expense.Description,
			&amount,
			&expense.Category,
			&expense.Date,
			&expense.VendorName,
			&expense.BankReference,
			&expense.ImportBatchID,
			&expense.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		expense.Amount = scanDecimal(amount)
		expenses = append(expenses, &expense)
	}

	return expenses, rows.Err()
}

// ListRecords returns the duplicate-check view of a user's persisted
// expenses: date, stored (positive) amount, and bank reference.
func (r *ExpenseRepository) ListRecords(ctx context.Context, userID string) ([]domain.ExistingRecord, error) {
	query := `
		SELECT date, amount::text, bank_reference
		FROM expenses
		WHERE user_id = $1
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ExistingRecord
	for rows.Next() {
		var record domain.ExistingRecord
		var amount string

		if err := rows.Scan(&record.Date, &amount, &record.BankReference); err != nil {
			return nil, err
		}

		record.Amount = scanDecimal(amount)
		records = append(records, record)
	}

	return records, rows.Err()
}

// DeleteByBatch removes every expense tagged with the batch ID and reports
// how many rows went away.
func (r *ExpenseRepository) DeleteByBatch(ctx context.Context, batchID string) (int64, error) {
	query := `DELETE FROM expenses WHERE import_batch_id = $1`

	var deleted int64
	err := r.retrier.Retry(ctx, func() error {
		tag, err := r.pool.Exec(ctx, query, batchID)
		if err != nil {
			return err
		}

		deleted = tag.RowsAffected()
		return nil
	})

	return deleted, err
}
