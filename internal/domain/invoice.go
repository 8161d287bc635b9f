package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// OpenInvoiceStatuses are the statuses the matcher considers payable.
var OpenInvoiceStatuses = []InvoiceStatus{InvoiceSent, InvoiceDraft, InvoiceOverdue}

// Invoice is a receivable owned by a user. The import pipeline only reads
// invoices and flips open ones to paid, or creates one in the auto-create
// path.
type Invoice struct {
	ID         string
	UserID     string
	Number     string
	Total      decimal.Decimal
	Status     InvoiceStatus
	IssueDate  time.Time
	DueDate    *time.Time
	ClientID   string
	ClientName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LineItem is a single line on an invoice.
type LineItem struct {
	ID          string
	InvoiceID   string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// Customer is an invoice counterparty.
type Customer struct {
	ID        string
	UserID    string
	Name      string
	Email     string
	CreatedAt time.Time
}
