package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keepbooks/bankrec/internal/domain"
	"github.com/keepbooks/bankrec/internal/usecase"
)

// InvoiceRepository implements usecase.InvoiceRepository.
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

const invoiceColumns = `
	id, user_id, number, total::text, status, issue_date, due_date,
	client_id, client_name, created_at, updated_at
`

// ListOpen returns a user's invoices with the given statuses issued inside
// [from, to]. Issue-date order keeps match tie-breaking stable.
func (r *InvoiceRepository) ListOpen(ctx context.Context, userID string, statuses []domain.InvoiceStatus, from, to time.Time) ([]*domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE user_id = $1
		  AND status = ANY($2)
		  AND issue_date >= $3
		  AND issue_date <= $4
		ORDER BY issue_date, id
	`

	statusArgs := make([]string, len(statuses))
	for i, s := range statuses {
		statusArgs[i] = string(s)
	}

	rows, err := r.pool.Query(ctx, query, userID, statusArgs, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*domain.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}

	return invoices, rows.Err()
}

// GetByID retrieves an invoice by ID.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	invoice, err := scanInvoice(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}

		return nil, err
	}

	return invoice, nil
}

// UpdateStatus flips an invoice's status.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id string, status domain.InvoiceStatus, updatedAt time.Time) error {
	query := `UPDATE invoices SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, string(status), updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}

	return nil
}

// CreateTx inserts an invoice and its single line item inside tx so the
// auto-create path commits or rolls back as one unit.
func (r *InvoiceRepository) CreateTx(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice, item *domain.LineItem) error {
	pgxTx := tx.(*Tx).PgxTx()

	invoiceQuery := `
		INSERT INTO invoices (
			id, user_id, number, total, status, issue_date, due_date,
			client_id, client_name, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := pgxTx.Exec(ctx, invoiceQuery,
		invoice.ID,
		invoice.UserID,
		invoice.Number,
		invoice.Total.String(),
		string(invoice.Status),
		invoice.IssueDate,
		invoice.DueDate,
		invoice.ClientID,
		invoice.ClientName,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO invoice_line_items (
			id, invoice_id, description, quantity, unit_price, amount
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = pgxTx.Exec(ctx, itemQuery,
		item.ID,
		item.InvoiceID,
		item.Description,
		item.Quantity,
		item.UnitPrice.String(),
		item.Amount.String(),
	)

	return err
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var invoice domain.Invoice
	var total, status string

	err := row.Scan(
		&invoice.ID,
		&invoice.UserID,
		&invoice.Number,
		&total,
		&status,
		&invoice.IssueDate,
		&invoice.DueDate,
		&invoice.ClientID,
		&invoice.ClientName,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	invoice.Total = scanDecimal(total)
	invoice.Status = domain.InvoiceStatus(status)

	return &invoice, nil
}
