package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keepbooks/bankrec/internal/domain"
	"github.com/keepbooks/bankrec/internal/usecase"
)

// CustomerRepository implements usecase.CustomerRepository.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// GetByName matches a customer by exact name, case-insensitively.
func (r *CustomerRepository) GetByName(ctx context.Context, userID, name string) (*domain.Customer, error) {
	query := `
		SELECT id, user_id, name, email, created_at
		FROM customers
		WHERE user_id = $1 AND LOWER(name) = LOWER($2)
	`

	var customer domain.Customer
	err := r.pool.QueryRow(ctx, query, userID, name).Scan(
		&customer.ID,
		&customer.UserID,
		&customer.Name,
		&customer.Email,
		&customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}

		return nil, err
	}

	return &customer, nil
}

// CreateTx inserts a customer inside tx.
func (r *CustomerRepository) CreateTx(ctx context.Context, tx usecase.Transaction, customer *domain.Customer) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO customers (id, user_id, name, email, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := pgxTx.Exec(ctx, query,
		customer.ID,
		customer.UserID,
		customer.Name,
		customer.Email,
		customer.CreatedAt,
	)

	return err
}
