package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/keepbooks/bankrec/internal/domain"
	"github.com/keepbooks/bankrec/internal/usecase"
	"github.com/keepbooks/bankrec/internal/usecase/mocks"
)

func newMatcher(invoiceRepo *mocks.MockInvoiceRepository, customerRepo *mocks.MockCustomerRepository, paymentRepo *mocks.MockPaymentRepository) *usecase.MatcherUseCase {
	return usecase.NewMatcherUseCase(mocks.NewMockTransactionManager(), invoiceRepo, customerRepo, paymentRepo, mocks.NewMockIDGenerator())
}

func TestMatchIncome_NoCandidatesIsNotAnError(t *testing.T) {
	t.Parallel()

	matcher := newMatcher(mocks.NewMockInvoiceRepository(), mocks.NewMockCustomerRepository(), mocks.NewMockPaymentRepository())

	match, err := matcher.MatchIncome(context.Background(), "user-1", domain.NormalizedTransaction{
		Date:        time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Description: "SOME CREDIT",
		Amount:      decimal.NewFromInt(1000),
	})
	if err != nil {
		t.Fatalf("no match must not be an error, got %v", err)
	}
	if match != nil {
		t.Fatalf("expected nil match, got %+v", match)
	}
}

func TestMatchIncome_BelowThresholdRejected(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	invoiceRepo := mocks.NewMockInvoiceRepository()
	// Amount within 5% only, issue date far out: score 25, below the
	// qualifying threshold of 40.
	invoiceRepo.Seed(&domain.Invoice{
		ID:        "inv-1",
		UserID:    "user-1",
		Number:    "INV-X",
		Total:     decimal.NewFromInt(104000),
		Status:    domain.InvoiceSent,
		IssueDate: day.AddDate(0, 0, -45),
	})

	matcher := newMatcher(invoiceRepo, mocks.NewMockCustomerRepository(), mocks.NewMockPaymentRepository())

	match, err := matcher.MatchIncome(context.Background(), "user-1", domain.NormalizedTransaction{
		Date:        day,
		Description: "UNRELATED",
		Amount:      decimal.NewFromInt(100000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match != nil {
		t.Fatalf("score below threshold should not match, got score %d", match.Score)
	}
}

func TestMatchIncome_TiesKeepQueryOrder(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	first := &domain.Invoice{
		ID: "inv-first", UserID: "user-1", Number: "AA-1",
		Total: decimal.NewFromInt(5000), Status: domain.InvoiceSent, IssueDate: day,
	}
	second := &domain.Invoice{
		ID: "inv-second", UserID: "user-1", Number: "AA-2",
		Total: decimal.NewFromInt(5000), Status: domain.InvoiceSent, IssueDate: day,
	}

	invoiceRepo := mocks.NewMockInvoiceRepository()
	invoiceRepo.ListOpenFunc = func(ctx context.Context, userID string, statuses []domain.InvoiceStatus, from, to time.Time) ([]*domain.Invoice, error) {
		return []*domain.Invoice{first, second}, nil
	}

	matcher := newMatcher(invoiceRepo, mocks.NewMockCustomerRepository(), mocks.NewMockPaymentRepository())

	match, err := matcher.MatchIncome(context.Background(), "user-1", domain.NormalizedTransaction{
		Date:        day,
		Description: "CREDIT 5000",
		Amount:      decimal.NewFromInt(5000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match == nil || match.Invoice.ID != "inv-first" {
		t.Fatalf("tie must keep the first candidate in query order, got %+v", match)
	}
}

func TestMatchIncome_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	invoiceRepo := mocks.NewMockInvoiceRepository()
	invoiceRepo.ListOpenFunc = func(ctx context.Context, userID string, statuses []domain.InvoiceStatus, from, to time.Time) ([]*domain.Invoice, error) {
		return nil, errors.New("store down")
	}

	matcher := newMatcher(invoiceRepo, mocks.NewMockCustomerRepository(), mocks.NewMockPaymentRepository())

	_, err := matcher.MatchIncome(context.Background(), "user-1", domain.NormalizedTransaction{
		Date:   time.Now(),
		Amount: decimal.NewFromInt(1000),
	})
	if err == nil {
		t.Fatal("store failures must propagate as errors")
	}
}

func TestCreateInvoiceForTransaction_ReusesCustomerCaseInsensitively(t *testing.T) {
	t.Parallel()

	customerRepo := mocks.NewMockCustomerRepository()
	existing := &domain.Customer{ID: "cust-1", UserID: "user-1", Name: "BLUE OCEAN VENTURES"}
	if err := customerRepo.CreateTx(context.Background(), &mocks.MockTransaction{}, existing); err != nil {
		t.Fatal(err)
	}

	created := false
	customerRepo.CreateTxFunc = func(ctx context.Context, tx usecase.Transaction, customer *domain.Customer) error {
		created = true
		return nil
	}

	invoiceRepo := mocks.NewMockInvoiceRepository()
	matcher := newMatcher(invoiceRepo, customerRepo, mocks.NewMockPaymentRepository())

	inv, err := matcher.CreateInvoiceForTransaction(context.Background(), "batch-1", "user-1", domain.NormalizedTransaction{
		Date:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Description: "NIP TRANSFER FROM Blue Ocean Ventures",
		Amount:      decimal.NewFromInt(75000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created {
		t.Error("existing customer should be reused, not recreated")
	}
	if inv.ClientID != "cust-1" {
		t.Errorf("client id = %q, want cust-1", inv.ClientID)
	}
	if inv.Status != domain.InvoicePaid {
		t.Errorf("status = %s, want paid", inv.Status)
	}
	if inv.Number == "" {
		t.Error("invoice number must be generated")
	}
}

func TestCreateInvoiceForTransaction_RecordsPaymentJoin(t *testing.T) {
	t.Parallel()

	paymentRepo := mocks.NewMockPaymentRepository()
	matcher := newMatcher(mocks.NewMockInvoiceRepository(), mocks.NewMockCustomerRepository(), paymentRepo)

	inv, err := matcher.CreateInvoiceForTransaction(context.Background(), "batch-9", "user-1", domain.NormalizedTransaction{
		Date:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Description: "POS SETTLEMENT KANO BRANCH",
		Amount:      decimal.NewFromInt(31000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payments, _ := paymentRepo.ListByBatch(context.Background(), "batch-9")
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment join, got %d", len(payments))
	}
	if payments[0].InvoiceID != inv.ID || payments[0].MatchType != domain.MatchAutoCreated {
		t.Errorf("payment join = %+v", payments[0])
	}
}
