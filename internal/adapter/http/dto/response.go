package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/keepbooks/bankrec/internal/domain"
	"github.com/keepbooks/bankrec/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// BatchResponse represents an import batch in API responses.
type BatchResponse struct {
	ID                  string     `json:"id"`
	FileName            string     `json:"file_name"`
	FileType            string     `json:"file_type"`
	BankName            string     `json:"bank_name,omitempty"`
	AccountNumber       string     `json:"account_number,omitempty"`
	TotalTransactions   int        `json:"total_transactions"`
	ImportedExpenses    int        `json:"imported_expenses"`
	ImportedIncome      int        `json:"imported_income"`
	SkippedTransactions int        `json:"skipped_transactions"`
	InvoicesMarkedPaid  int        `json:"invoices_marked_paid"`
	NewInvoicesCreated  int        `json:"new_invoices_created"`
	Status              string     `json:"status"`
	ErrorMessage        string     `json:"error_message,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
}

// BatchFromDomain converts a domain batch to a response.
func BatchFromDomain(b *domain.ImportBatch) *BatchResponse {
	return &BatchResponse{
		ID:                  b.ID,
		FileName:            b.FileName,
		FileType:            b.FileType,
		BankName:            b.BankName,
		AccountNumber:       b.AccountNumber,
		TotalTransactions:   b.TotalTransactions,
		ImportedExpenses:    b.ImportedExpenses,
		ImportedIncome:      b.ImportedIncome,
		SkippedTransactions: b.SkippedTransactions,
		InvoicesMarkedPaid:  b.InvoicesMarkedPaid,
		NewInvoicesCreated:  b.NewInvoicesCreated,
		Status:              string(b.Status),
		ErrorMessage:        b.ErrorMessage,
		CreatedAt:           b.CreatedAt,
		CompletedAt:         b.CompletedAt,
	}
}

// BatchesFromDomain converts domain batches to responses.
func BatchesFromDomain(batches []*domain.ImportBatch) []*BatchResponse {
	result := make([]*BatchResponse, len(batches))
	for i, b := range batches {
		result[i] = BatchFromDomain(b)
	}
	return result
}

// TransactionResponse represents one processed statement row.
type TransactionResponse struct {
	Date                time.Time       `json:"date"`
	Description         string          `json:"description"`
	Amount              decimal.Decimal `json:"amount"`
	Type                string          `json:"type"`
	Category            string          `json:"category,omitempty"`
	Confidence          float64         `json:"confidence"`
	MatchedInvoiceID    string          `json:"matched_invoice_id,omitempty"`
	MatchedCustomerName string          `json:"matched_customer_name,omitempty"`
	Imported            bool            `json:"imported"`
	ImportedRecordID    string          `json:"imported_record_id,omitempty"`
	Skipped             bool            `json:"skipped"`
	SkipReason          string          `json:"skip_reason,omitempty"`
	Error               string          `json:"error,omitempty"`
}

// TransactionFromDomain converts a categorized transaction to a response.
func TransactionFromDomain(t *domain.CategorizedTransaction) *TransactionResponse {
	return &TransactionResponse{
		Date:                t.Date,
		Description:         t.Description,
		Amount:              t.Amount,
		Type:                string(t.Type),
		Category:            t.Category,
		Confidence:          t.Confidence,
		MatchedInvoiceID:    t.MatchedInvoiceID,
		MatchedCustomerName: t.MatchedCustomerName,
		Imported:            t.Imported,
		ImportedRecordID:    t.ImportedRecordID,
		Skipped:             t.Skipped,
		SkipReason:          t.SkipReason,
		Error:               t.Error,
	}
}

// ImportResponse is the summary returned after an import.
type ImportResponse struct {
	Batch        *BatchResponse         `json:"batch"`
	Transactions []*TransactionResponse `json:"transactions"`
	Errors       []string               `json:"errors,omitempty"`
}

// ImportResponseFromResult converts an import result to a response.
func ImportResponseFromResult(result *usecase.ImportResult) *ImportResponse {
	transactions := make([]*TransactionResponse, len(result.Transactions))
	for i, t := range result.Transactions {
		transactions[i] = TransactionFromDomain(t)
	}

	return &ImportResponse{
		Batch:        BatchFromDomain(result.Batch),
		Transactions: transactions,
		Errors:       result.Errors,
	}
}

// ExpenseResponse represents a persisted expense.
type ExpenseResponse struct {
	ID            string          `json:"id"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category,omitempty"`
	Date          time.Time       `json:"date"`
	VendorName    string          `json:"vendor_name,omitempty"`
	BankReference string          `json:"bank_reference,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ExpenseFromDomain converts a domain expense to a response.
func ExpenseFromDomain(e *domain.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:            e.ID,
		Description:   e.Description,
		Amount:        e.Amount,
		Category:      e.Category,
		Date:          e.Date,
		VendorName:    e.VendorName,
		BankReference: e.BankReference,
		CreatedAt:     e.CreatedAt,
	}
}

// PaymentResponse represents a batch-to-invoice payment join.
type PaymentResponse struct {
	ID        string          `json:"id"`
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	MatchType string          `json:"match_type"`
	CreatedAt time.Time       `json:"created_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.InvoicePayment) *PaymentResponse {
	return &PaymentResponse{
		ID:        p.ID,
		InvoiceID: p.InvoiceID,
		Amount:    p.Amount,
		MatchType: string(p.MatchType),
		CreatedAt: p.CreatedAt,
	}
}

// BatchDetailResponse is one batch with everything it created.
type BatchDetailResponse struct {
	Batch    *BatchResponse     `json:"batch"`
	Expenses []*ExpenseResponse `json:"expenses"`
	Payments []*PaymentResponse `json:"payments"`
}

// BatchDetailFromUseCase converts a batch detail to a response.
func BatchDetailFromUseCase(detail *usecase.BatchDetail) *BatchDetailResponse {
	expenses := make([]*ExpenseResponse, len(detail.Expenses))
	for i, e := range detail.Expenses {
		expenses[i] = ExpenseFromDomain(e)
	}

	payments := make([]*PaymentResponse, len(detail.Payments))
	for i, p := range detail.Payments {
		payments[i] = PaymentFromDomain(p)
	}

	return &BatchDetailResponse{
		Batch:    BatchFromDomain(detail.Batch),
		Expenses: expenses,
		Payments: payments,
	}
}

// AuditLogResponse represents one audit trail entry.
type AuditLogResponse struct {
	ID           string         `json:"id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	RequestID    string         `json:"request_id,omitempty"`
	BeforeState  map[string]any `json:"before_state,omitempty"`
	AfterState   map[string]any `json:"after_state,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditLogFromDomain converts a domain audit log to a response.
func AuditLogFromDomain(l *domain.AuditLog) *AuditLogResponse {
	return &AuditLogResponse{
		ID:           l.ID,
		Action:       l.Action,
		ResourceType: l.ResourceType,
		ResourceID:   l.ResourceID,
		RequestID:    l.RequestID,
		BeforeState:  l.BeforeState,
		AfterState:   l.AfterState,
		Status:       l.Status,
		ErrorMessage: l.ErrorMessage,
		CreatedAt:    l.CreatedAt,
	}
}

// AuditLogsFromDomain converts domain audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = AuditLogFromDomain(l)
	}
	return result
}

// UndoResponse reports what an undo removed.
type UndoResponse struct {
	Batch           *BatchResponse `json:"batch"`
	DeletedExpenses int64          `json:"deleted_expenses"`
}

// UndoResponseFromResult converts an undo result to a response.
func UndoResponseFromResult(result *usecase.UndoResult) *UndoResponse {
	return &UndoResponse{
		Batch:           BatchFromDomain(result.Batch),
		DeletedExpenses: result.DeletedExpenses,
	}
}
