package domain

import "time"

// ParsedStatement is the output of a statement parser: the ordered rows of
// one uploaded file plus whatever metadata the parser could detect.
type ParsedStatement struct {
	BankName      string
	AccountNumber string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	Transactions  []NormalizedTransaction
}
