package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a bank statement row.
type TransactionType string

const (
	TypeExpense  TransactionType = "expense"
	TypeIncome   TransactionType = "income"
	TypeTransfer TransactionType = "transfer"
	TypeUnknown  TransactionType = "unknown"
)

// NormalizedTransaction is a single statement row as produced by a statement
// parser. Amount sign carries direction: negative is money out, positive is
// money in. The struct is never mutated after parsing.
type NormalizedTransaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Balance     *decimal.Decimal
	Reference   string
	RawFields   map[string]string
}

// CategorizedTransaction carries a normalized row through the import
// pipeline, accumulating the classification and persistence outcome.
type CategorizedTransaction struct {
	NormalizedTransaction

	Type                TransactionType
	Category            string
	Confidence          float64
	MatchedInvoiceID    string
	MatchedCustomerName string
	Imported            bool
	ImportedRecordID    string
	Skipped             bool
	SkipReason          string
	Error               string
}

// ExistingRecord is the minimal view of an already persisted transaction
// needed for duplicate detection.
type ExistingRecord struct {
	Date          time.Time
	Amount        decimal.Decimal
	BankReference string
}
