package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a persisted outgoing transaction. Amount is stored as a
// positive value; direction is implied by the record type.
type Expense struct {
	ID            string
	UserID        string
	Description   string
	Amount        decimal.Decimal
	Category      string
	Date          time.Time
	VendorName    string
	BankReference string
	ImportBatchID string
	CreatedAt     time.Time
}

// InvoicePayment joins an import batch to an invoice it settled. It exists
// so the audit trail can answer which batch paid which invoice; Undo does
// not revert invoice status, but the join makes the mutation traceable.
type InvoicePayment struct {
	ID            string
	ImportBatchID string
	InvoiceID     string
	Amount        decimal.Decimal
	MatchType     MatchType
	CreatedAt     time.Time
}
