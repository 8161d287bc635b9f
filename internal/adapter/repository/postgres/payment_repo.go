package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keepbooks/bankrec/internal/domain"
)

// PaymentRepository implements usecase.PaymentRepository, the join table
// between import batches and the invoices they settled.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Create inserts a new invoice payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.InvoicePayment) error {
	query := `
		INSERT INTO invoice_payments (
			id, import_batch_id, invoice_id, amount, match_type, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		payment.ID,
		payment.ImportBatchID,
		payment.InvoiceID,
		payment.Amount.String(),
		string(payment.MatchType),
		payment.CreatedAt,
	)

	return err
}

// ListByBatch lists all invoice payments recorded by one batch.
func (r *PaymentRepository) ListByBatch(ctx context.Context, batchID string) ([]*domain.InvoicePayment, error) {
	query := `
		SELECT id, import_batch_id, invoice_id, amount::text, match_type, created_at
		FROM invoice_payments
		WHERE import_batch_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.InvoicePayment
	for rows.Next() {
		var payment domain.InvoicePayment
		var amount, matchType string

		err := rows.Scan(
			&payment.ID,
			&payment.ImportBatchID,
			&payment.InvoiceID,
			&amount,
			&matchType,
			&payment.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		payment.Amount = scanDecimal(amount)
		payment.MatchType = domain.MatchType(matchType)
		payments = append(payments, &payment)
	}

	return payments, rows.Err()
}
