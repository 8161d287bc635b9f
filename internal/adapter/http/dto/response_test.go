package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepbooks/bankrec/internal/domain"
	"github.com/keepbooks/bankrec/internal/usecase"
)

func TestBatchFromDomain(t *testing.T) {
	now := time.Now()
	done := now.Add(2 * time.Second)
	batch := &domain.ImportBatch{
		ID:                  "batch-1",
		UserID:              "user-1",
		FileName:            "jan.csv",
		FileType:            "csv",
		BankName:            "keystone",
		AccountNumber:       "0123456789",
		TotalTransactions:   10,
		ImportedExpenses:    6,
		ImportedIncome:      2,
		SkippedTransactions: 1,
		InvoicesMarkedPaid:  2,
		NewInvoicesCreated:  1,
		Status:              domain.BatchCompleted,
		CreatedAt:           now,
		CompletedAt:         &done,
	}

	resp := BatchFromDomain(batch)
	require.NotNil(t, resp)
	assert.Equal(t, "batch-1", resp.ID)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 6, resp.ImportedExpenses)
	assert.Equal(t, 2, resp.InvoicesMarkedPaid)
	require.NotNil(t, resp.CompletedAt)

	list := BatchesFromDomain([]*domain.ImportBatch{batch})
	require.Len(t, list, 1)
	assert.Equal(t, "batch-1", list[0].ID)
}

func TestImportResponseFromResult(t *testing.T) {
	result := &usecase.ImportResult{
		Batch: &domain.ImportBatch{ID: "batch-1", Status: domain.BatchCompleted},
		Transactions: []*domain.CategorizedTransaction{
			{
				NormalizedTransaction: domain.NormalizedTransaction{
					Description: "UBER TRIP",
					Amount:      decimal.RequireFromString("-45.00"),
				},
				Type:       domain.TypeExpense,
				Category:   "Transport",
				Confidence: 0.8,
				Imported:   true,
			},
			{
				NormalizedTransaction: domain.NormalizedTransaction{
					Description: "DUPLICATE ROW",
				},
				Skipped:    true,
				SkipReason: "duplicate",
			},
		},
		Errors: []string{"row 7: no parseable date"},
	}

	resp := ImportResponseFromResult(result)
	require.Len(t, resp.Transactions, 2)
	assert.Equal(t, "expense", resp.Transactions[0].Type)
	assert.True(t, resp.Transactions[0].Imported)
	assert.True(t, resp.Transactions[1].Skipped)
	assert.Equal(t, "duplicate", resp.Transactions[1].SkipReason)
	assert.Equal(t, []string{"row 7: no parseable date"}, resp.Errors)
}

func TestBatchDetailFromUseCase(t *testing.T) {
	detail := &usecase.BatchDetail{
		Batch: &domain.ImportBatch{ID: "batch-1"},
		Expenses: []*domain.Expense{
			{ID: "exp-1", Amount: decimal.RequireFromString("-4500")},
		},
		Payments: []*domain.InvoicePayment{
			{ID: "pay-1", InvoiceID: "inv-1", MatchType: domain.MatchReference},
		},
	}

	resp := BatchDetailFromUseCase(detail)
	require.Len(t, resp.Expenses, 1)
	require.Len(t, resp.Payments, 1)
	assert.Equal(t, "inv-1", resp.Payments[0].InvoiceID)
	assert.Equal(t, string(domain.MatchReference), resp.Payments[0].MatchType)
}

func TestUndoResponseFromResult(t *testing.T) {
	resp := UndoResponseFromResult(&usecase.UndoResult{
		Batch:           &domain.ImportBatch{ID: "batch-1", Status: domain.BatchUndone},
		DeletedExpenses: 4,
	})

	assert.Equal(t, "undone", resp.Batch.Status)
	assert.Equal(t, int64(4), resp.DeletedExpenses)
}
