package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keepbooks/bankrec/internal/domain"
)

// ImportUseCase sequences one statement import: parse, categorize, dedup,
// match income to invoices, persist expenses, finalize the batch. It also
// owns Undo.
type ImportUseCase struct {
	batchRepo   BatchRepository
	expenseRepo ExpenseRepository
	paymentRepo PaymentRepository
	auditRepo   AuditRepository
	parser      StatementParser
	matcher     *MatcherUseCase
	idGen       IDGenerator
	rules       *domain.RuleSet

	autoCreateInvoices bool
	storeTimeout       time.Duration
}

// ImportOptions tune orchestrator behavior.
type ImportOptions struct {
	// AutoCreateInvoices turns unmatched income into freshly created paid
	// invoices instead of leaving it unlinked.
	AutoCreateInvoices bool
	// StoreTimeout bounds every individual store call. Nothing in the
	// pipeline blocks indefinitely.
	StoreTimeout time.Duration
}

// NewImportUseCase creates a new ImportUseCase.
func NewImportUseCase(
	batchRepo BatchRepository,
	expenseRepo ExpenseRepository,
	paymentRepo PaymentRepository,
	auditRepo AuditRepository,
	parser StatementParser,
	matcher *MatcherUseCase,
	idGen IDGenerator,
	rules *domain.RuleSet,
	opts ImportOptions,
) *ImportUseCase {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 30 * time.Second
	}

	return &ImportUseCase{
		batchRepo:          batchRepo,
		expenseRepo:        expenseRepo,
		paymentRepo:        paymentRepo,
		auditRepo:          auditRepo,
		parser:             parser,
		matcher:            matcher,
		idGen:              idGen,
		rules:              rules,
		autoCreateInvoices: opts.AutoCreateInvoices,
		storeTimeout:       opts.StoreTimeout,
	}
}

// ImportInput describes one uploaded statement.
type ImportInput struct {
	UserID    string
	FileName  string
	BankHint  string
	RequestID string
	File      io.Reader
}

// ImportResult is the summary returned to the caller. Row-level failures
// are listed in Errors; they never abort the batch.
type ImportResult struct {
	Batch        *domain.ImportBatch
	Transactions []*domain.CategorizedTransaction
	Errors       []string
}

// ImportStatement runs one import batch. Rows are processed synchronously
// in file order so counters and skip decisions are deterministic for a
// given input and existing-record snapshot.
func (uc *ImportUseCase) ImportStatement(ctx context.Context, input ImportInput) (*ImportResult, error) {
	if err := domain.ValidateFileName(input.FileName); err != nil {
		return nil, err
	}

	fileType, err := domain.FileTypeFromName(input.FileName)
	if err != nil {
		return nil, err
	}

	// Input errors surface before any batch exists; no partial state.
	stmt, err := uc.parser.Parse(ctx, input.File, input.FileName, input.BankHint)
	if err != nil {
		return nil, err
	}
	if len(stmt.Transactions) == 0 {
		return nil, domain.ErrEmptyStatement
	}

	batch := &domain.ImportBatch{
		ID:                uc.idGen.Generate(),
		UserID:            input.UserID,
		FileName:          input.FileName,
		FileType:          fileType,
		BankName:          stmt.BankName,
		AccountNumber:     stmt.AccountNumber,
		TotalTransactions: len(stmt.Transactions),
		Status:            domain.BatchProcessing,
		CreatedAt:         time.Now().UTC(),
	}

	if err := uc.withTimeout(ctx, func(ctx context.Context) error {
		return uc.batchRepo.Create(ctx, batch)
	}); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	// Snapshot of existing records for dedup. Concurrent imports of
	// overlapping data can both pass this check; that race is accepted, not
	// masked.
	var existing []domain.ExistingRecord
	if err := uc.withTimeout(ctx, func(ctx context.Context) error {
		var listErr error
		existing, listErr = uc.expenseRepo.ListRecords(ctx, input.UserID)
		return listErr
	}); err != nil {
		uc.failBatch(ctx, batch, err)
		return nil, fmt.Errorf("load existing records: %w", err)
	}

	result := &ImportResult{Batch: batch}

	for i := range stmt.Transactions {
		row := &domain.CategorizedTransaction{NormalizedTransaction: stmt.Transactions[i]}
		result.Transactions = append(result.Transactions, row)

		uc.processRow(ctx, batch, row, existing)

		// Persisted rows join the snapshot so a duplicate later in the
		// same file is caught like any other.
		if row.Imported && row.Type == domain.TypeExpense {
			existing = append(existing, domain.ExistingRecord{
				Date:          row.Date,
				Amount:        row.Amount,
				BankReference: row.Reference,
			})
		}

		if row.Error != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", i+1, row.Error))
		}
	}

	now := time.Now().UTC()
	batch.Status = domain.BatchCompleted
	batch.CompletedAt = &now

	if err := uc.withTimeout(ctx, func(ctx context.Context) error {
		return uc.batchRepo.Update(ctx, batch)
	}); err != nil {
		uc.failBatch(ctx, batch, err)
		return nil, fmt.Errorf("finalize batch: %w", err)
	}

	uc.audit(ctx, input.UserID, input.RequestID, domain.AuditActionImport, batch, nil)

	return result, nil
}

// processRow commits one row independently of the others' outcomes. Errors
// are recorded on the row; the batch keeps going.
func (uc *ImportUseCase) processRow(ctx context.Context, batch *domain.ImportBatch, row *domain.CategorizedTransaction, existing []domain.ExistingRecord) {
	cls := uc.rules.Categorize(row.NormalizedTransaction)
	row.Type = cls.Type
	row.Category = cls.Category
	row.Confidence = cls.Confidence

	if domain.IsDuplicate(row.NormalizedTransaction, existing) {
		row.Skipped = true
		row.SkipReason = "duplicate"
		batch.SkippedTransactions++
		return
	}

	switch row.Type {
	case domain.TypeTransfer, domain.TypeUnknown:
		// Counted in the total, never persisted.
		row.Skipped = true
		row.SkipReason = string(row.Type)
		batch.SkippedTransactions++

	case domain.TypeExpense:
		uc.importExpense(ctx, batch, row)

	case domain.TypeIncome:
		uc.importIncome(ctx, batch, row)
	}
}

func (uc *ImportUseCase) importExpense(ctx context.Context, batch *domain.ImportBatch, row *domain.CategorizedTransaction) {
	vendor, _ := domain.ExtractVendorName(row.Description)

	expense := &domain.Expense{
		ID:            uc.idGen.Generate(),
		UserID:        batch.UserID,
		Description:   row.Description,
		Amount:        row.Amount.Abs(),
		Category:      row.Category,
		Date:          row.Date,
		VendorName:    vendor,
		BankReference: row.Reference,
		ImportBatchID: batch.ID,
		CreatedAt:     time.Now().UTC(),
	}

	if err := uc.withTimeout(ctx, func(ctx context.Context) error {
		return uc.expenseRepo.Create(ctx, expense)
	}); err != nil {
		row.Error = fmt.Sprintf("persist expense: %v", err)
		return
	}

	row.Imported = true
	row.ImportedRecordID = expense.ID
	batch.ImportedExpenses++
}

func (uc *ImportUseCase) importIncome(ctx context.Context, batch *domain.ImportBatch, row *domain.CategorizedTransaction) {
	var match *InvoiceMatch
	if err := uc.withTimeout(ctx, func(ctx context.Context) error {
		var matchErr error
		match, matchErr = uc.matcher.MatchIncome(ctx, batch.UserID, row.NormalizedTransaction)
		return matchErr
	}); err != nil {
		row.Error = fmt.Sprintf("match invoice: %v", err)
		return
	}

	if match != nil {
		if err := uc.withTimeout(ctx, func(ctx context.Context) error {
			return uc.matcher.SettleMatch(ctx, batch.ID, row.NormalizedTransaction, match)
		}); err != nil {
			row.Error = fmt.Sprintf("settle invoice: %v", err)
			return
		}

		row.MatchedInvoiceID = match.Invoice.ID
		row.MatchedCustomerName = match.Invoice.ClientName
		row.Confidence = match.Confidence
		batch.InvoicesMarkedPaid++
	} else if uc.autoCreateInvoices {
		var invoice *domain.Invoice
		if err := uc.withTimeout(ctx, func(ctx context.Context) error {
			var createErr error
			invoice, createErr = uc.matcher.CreateInvoiceForTransaction(ctx, batch.ID, batch.UserID, row.NormalizedTransaction)
			return createErr
		}); err != nil {
			row.Error = fmt.Sprintf("create invoice: %v", err)
			return
		}

		row.MatchedInvoiceID = invoice.ID
		row.MatchedCustomerName = invoice.ClientName
		batch.NewInvoicesCreated++
	}

	row.Imported = true
	batch.ImportedIncome++
}

// UndoResult reports what Undo removed.
type UndoResult struct {
	Batch           *domain.ImportBatch
	DeletedExpenses int64
}

// UndoBatch deletes every expense tagged with the batch ID, then flips the
// batch to undone. The status flips only after deletion is confirmed, so a
// crash mid-undo leaves the batch completed and the undo retryable. A
// second undo is rejected, not repeated, and invoice status is never
// reverted.
func (uc *ImportUseCase) UndoBatch(ctx context.Context, userID, batchID string) (*UndoResult, error) {
	batch, err := uc.getOwnedBatch(ctx, userID, batchID)
	if err != nil {
		return nil, err
	}

	if err := batch.CanUndo(); err != nil {
		return nil, err
	}

	var deleted int64
	if err := uc.withTimeout(ctx, func(ctx context.Context) error {
		var delErr error
		deleted, delErr = uc.expenseRepo.DeleteByBatch(ctx, batch.ID)
		return delErr
	}); err != nil {
		return nil, fmt.Errorf("delete batch expenses: %w", err)
	}

	now := time.Now().UTC()
	if err := uc.withTimeout(ctx, func(ctx context.Context) error {
		return uc.batchRepo.UpdateStatus(ctx, batch.ID, domain.BatchUndone, now)
	}); err != nil {
		return nil, fmt.Errorf("mark batch undone: %w", err)
	}

	before := batchState(batch)
	batch.Status = domain.BatchUndone
	batch.CompletedAt = &now

	uc.audit(ctx, userID, "", domain.AuditActionUndo, batch, before)

	return &UndoResult{Batch: batch, DeletedExpenses: deleted}, nil
}

// BatchDetail is one batch with everything it created.
type BatchDetail struct {
	Batch    *domain.ImportBatch
	Expenses []*domain.Expense
	Payments []*domain.InvoicePayment
}

// GetBatch returns one of the user's batches with its expenses and invoice
// payments. Foreign batches are reported as not found.
func (uc *ImportUseCase) GetBatch(ctx context.Context, userID, batchID string) (*BatchDetail, error) {
	batch, err := uc.getOwnedBatch(ctx, userID, batchID)
	if err != nil {
		return nil, err
	}

	expenses, err := uc.expenseRepo.ListByBatch(ctx, batch.ID)
	if err != nil {
		return nil, err
	}

	payments, err := uc.paymentRepo.ListByBatch(ctx, batch.ID)
	if err != nil {
		return nil, err
	}

	return &BatchDetail{Batch: batch, Expenses: expenses, Payments: payments}, nil
}

// ListBatches returns the user's import history, newest first.
func (uc *ImportUseCase) ListBatches(ctx context.Context, userID string, limit, offset int) ([]*domain.ImportBatch, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.batchRepo.ListByUser(ctx, userID, limit, offset)
}

// ListAuditLogs returns the user's audit trail, newest first, optionally
// narrowed to one action or batch.
func (uc *ImportUseCase) ListAuditLogs(ctx context.Context, userID, action, resourceID string, limit, offset int) ([]*domain.AuditLog, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.auditRepo.List(ctx, domain.AuditFilter{
		UserID:     userID,
		Action:     action,
		ResourceID: resourceID,
		Limit:      limit,
		Offset:     offset,
	})
}

func (uc *ImportUseCase) getOwnedBatch(ctx context.Context, userID, batchID string) (*domain.ImportBatch, error) {
	batch, err := uc.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	// Ownership failures look identical to missing batches on purpose.
	if batch.UserID != userID {
		return nil, domain.ErrBatchNotFound
	}

	return batch, nil
}

// failBatch marks the batch failed after an unrecoverable error. Counts on
// a failed batch are untrusted. Best effort: if the status write itself
// fails there is nothing left to do but log.
func (uc *ImportUseCase) failBatch(ctx context.Context, batch *domain.ImportBatch, cause error) {
	batch.Status = domain.BatchFailed
	batch.ErrorMessage = cause.Error()

	if err := uc.withTimeout(ctx, func(ctx context.Context) error {
		return uc.batchRepo.Update(ctx, batch)
	}); err != nil {
		log.Error().Err(err).Str("batch_id", batch.ID).Msg("failed to mark batch as failed")
	}
}

func (uc *ImportUseCase) audit(ctx context.Context, userID, requestID, action string, batch *domain.ImportBatch, before map[string]any) {
	entry := &domain.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: "import_batch",
		ResourceID:   batch.ID,
		RequestID:    requestID,
		BeforeState:  before,
		AfterState:   batchState(batch),
		Status:       string(batch.Status),
		CreatedAt:    time.Now().UTC(),
	}

	if err := uc.auditRepo.Create(ctx, entry); err != nil {
		log.Warn().Err(err).Str("batch_id", batch.ID).Str("action", action).Msg("audit log write failed")
	}
}

func batchState(batch *domain.ImportBatch) map[string]any {
	return map[string]any{
		"status":               string(batch.Status),
		"total_transactions":   batch.TotalTransactions,
		"imported_expenses":    batch.ImportedExpenses,
		"imported_income":      batch.ImportedIncome,
		"skipped_transactions": batch.SkippedTransactions,
		"invoices_marked_paid": batch.InvoicesMarkedPaid,
		"new_invoices_created": batch.NewInvoicesCreated,
	}
}

func (uc *ImportUseCase) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()
	return fn(ctx)
}
