package domain

import "time"

// BatchStatus is the lifecycle state of an import batch.
type BatchStatus string

const (
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
	BatchUndone     BatchStatus = "undone"
)

// ImportBatch records one statement import. Every expense and invoice
// payment written during the import is tagged with the batch ID so the
// whole batch can be reversed.
type ImportBatch struct {
	ID                  string
	UserID              string
	FileName            string
	FileType            string
	BankName            string
	AccountNumber       string
	TotalTransactions   int
	ImportedExpenses    int
	ImportedIncome      int
	SkippedTransactions int
	InvoicesMarkedPaid  int
	NewInvoicesCreated  int
	Status              BatchStatus
	ErrorMessage        string
	CreatedAt           time.Time
	CompletedAt         *time.Time
}

// CanUndo reports whether the batch is in a state that allows Undo.
// Undo is legal exactly once, from completed. A batch that is already
// undone is rejected rather than silently re-undone.
func (b *ImportBatch) CanUndo() error {
	switch b.Status {
	case BatchUndone:
		return ErrBatchAlreadyUndone
	case BatchCompleted:
		return nil
	default:
		return ErrBatchNotCompleted
	}
}
