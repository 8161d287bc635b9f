package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/keepbooks/bankrec/internal/domain"
)

// MatcherUseCase scores a user's open invoices against income transactions
// and owns the two caller actions: settling a matched invoice and
// auto-creating one when nothing matched.
type MatcherUseCase struct {
	txManager    TransactionManager
	invoiceRepo  InvoiceRepository
	customerRepo CustomerRepository
	paymentRepo  PaymentRepository
	idGen        IDGenerator
}

// NewMatcherUseCase creates a new MatcherUseCase.
func NewMatcherUseCase(
	txManager TransactionManager,
	invoiceRepo InvoiceRepository,
	customerRepo CustomerRepository,
	paymentRepo PaymentRepository,
	idGen IDGenerator,
) *MatcherUseCase {
	return &MatcherUseCase{
		txManager:    txManager,
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		paymentRepo:  paymentRepo,
		idGen:        idGen,
	}
}

// InvoiceMatch is the best qualifying candidate for one income transaction.
type InvoiceMatch struct {
	Invoice    *domain.Invoice
	Score      int
	MatchType  domain.MatchType
	Confidence float64
}

// MatchIncome finds the best open invoice for an income transaction.
// A nil match with a nil error means no invoice qualified; that is a valid
// outcome, not a failure. Ties keep the first candidate in query order.
func (uc *MatcherUseCase) MatchIncome(ctx context.Context, userID string, tx domain.NormalizedTransaction) (*InvoiceMatch, error) {
	from, to := domain.MatchWindow(tx.Date)

	candidates, err := uc.invoiceRepo.ListOpen(ctx, userID, domain.OpenInvoiceStatuses, from, to)
	if err != nil {
		return nil, fmt.Errorf("list open invoices: %w", err)
	}

	var best *InvoiceMatch
	for _, inv := range candidates {
		score, ok := domain.ScoreInvoice(tx, inv)
		if !ok || score.Score < domain.MinMatchScore {
			continue
		}

		if best == nil || score.Score > best.Score {
			best = &InvoiceMatch{
				Invoice:    inv,
				Score:      score.Score,
				MatchType:  score.MatchType,
				Confidence: domain.MatchConfidence(score.Score),
			}
		}
	}

	return best, nil
}

// SettleMatch marks the matched invoice paid and records the batch-to-invoice
// payment join so the mutation stays traceable to exactly one batch.
func (uc *MatcherUseCase) SettleMatch(ctx context.Context, batchID string, tx domain.NormalizedTransaction, match *InvoiceMatch) error {
	now := time.Now().UTC()

	if err := uc.invoiceRepo.UpdateStatus(ctx, match.Invoice.ID, domain.InvoicePaid, now); err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}

	payment := &domain.InvoicePayment{
		ID:            uc.idGen.Generate(),
		ImportBatchID: batchID,
		InvoiceID:     match.Invoice.ID,
		Amount:        tx.Amount.Abs(),
		MatchType:     match.MatchType,
		CreatedAt:     now,
	}

	if err := uc.paymentRepo.Create(ctx, payment); err != nil {
		return fmt.Errorf("record invoice payment: %w", err)
	}

	return nil
}

// CreateInvoiceForTransaction auto-creates a paid invoice for income that
// matched nothing: generated number, find-or-create customer by
// case-insensitive exact name, one line item equal to the transaction
// amount.
func (uc *MatcherUseCase) CreateInvoiceForTransaction(ctx context.Context, batchID, userID string, tx domain.NormalizedTransaction) (*domain.Invoice, error) {
	clientName, ok := domain.ExtractVendorName(tx.Description)
	if !ok {
		clientName = "Unknown Customer"
	}

	now := time.Now().UTC()

	dbTx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx)

	customer, err := uc.customerRepo.GetByName(ctx, userID, clientName)
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound):
		customer = &domain.Customer{
			ID:        uc.idGen.Generate(),
			UserID:    userID,
			Name:      clientName,
			CreatedAt: now,
		}
		if err := uc.customerRepo.CreateTx(ctx, dbTx, customer); err != nil {
			return nil, fmt.Errorf("create customer: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("find customer: %w", err)
	}

	amount := tx.Amount.Abs()
	invoice := &domain.Invoice{
		ID:         uc.idGen.Generate(),
		UserID:     userID,
		Number:     uc.generateInvoiceNumber(tx.Date),
		Total:      amount,
		Status:     domain.InvoicePaid,
		IssueDate:  tx.Date,
		ClientID:   customer.ID,
		ClientName: customer.Name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	item := &domain.LineItem{
		ID:          uc.idGen.Generate(),
		InvoiceID:   invoice.ID,
		Description: tx.Description,
		Quantity:    1,
		UnitPrice:   amount,
		Amount:      amount,
	}

	if err := uc.invoiceRepo.CreateTx(ctx, dbTx, invoice, item); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, err
	}

	payment := &domain.InvoicePayment{
		ID:            uc.idGen.Generate(),
		ImportBatchID: batchID,
		InvoiceID:     invoice.ID,
		Amount:        amount,
		MatchType:     domain.MatchAutoCreated,
		CreatedAt:     now,
	}
	if err := uc.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("record invoice payment: %w", err)
	}

	return invoice, nil
}

// generateInvoiceNumber builds a human-readable unique invoice number. The
// ULID suffix keeps numbers unique without a counter.
func (uc *MatcherUseCase) generateInvoiceNumber(date time.Time) string {
	id := uc.idGen.Generate()
	suffix := id
	if len(id) > 8 {
		suffix = id[len(id)-8:]
	}
	return fmt.Sprintf("INV-%d-%s", date.Year(), strings.ToUpper(suffix))
}
