package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/keepbooks/bankrec/internal/domain"
)

func TestScoreInvoice(t *testing.T) {
	t.Parallel()

	txDate := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	invoice := func(total float64, number, client string, issued time.Time) *domain.Invoice {
		return &domain.Invoice{
			ID:         "inv-1",
			Number:     number,
			Total:      decimal.NewFromFloat(total),
			Status:     domain.InvoiceSent,
			IssueDate:  issued,
			ClientName: client,
		}
	}

	tests := []struct {
		name          string
		tx            domain.NormalizedTransaction
		invoice       *domain.Invoice
		wantScore     int
		wantMatchType domain.MatchType
		wantOK        bool
	}{
		{
			name: "reference match with exact amount and close date",
			tx: domain.NormalizedTransaction{
				Date:        txDate,
				Description: "TRANSFER FROM ACME LTD INV-2024-0007",
				Amount:      decimal.NewFromInt(150000),
			},
			invoice:       invoice(150000, "INV-2024-0007", "Acme Limited", txDate.AddDate(0, 0, -3)),
			wantScore:     50 + 40 + 15 + 10, // exact + reference + partial name + date
			wantMatchType: domain.MatchReference,
			wantOK:        true,
		},
		{
			name: "full client name without reference",
			tx: domain.NormalizedTransaction{
				Date:        txDate,
				Description: "NIP CREDIT FROM BLUE OCEAN VENTURES",
				Amount:      decimal.NewFromInt(80000),
			},
			invoice:       invoice(80000, "INV-2024-0011", "Blue Ocean Ventures", txDate.AddDate(0, 0, -20)),
			wantScore:     50 + 30 + 5,
			wantMatchType: domain.MatchCustomer,
			wantOK:        true,
		},
		{
			name: "reference and full name combine",
			tx: domain.NormalizedTransaction{
				Date:        txDate,
				Description: "PAYMENT ACME LIMITED INV-2024-0007",
				Amount:      decimal.NewFromInt(150000),
			},
			invoice:       invoice(150000, "INV-2024-0007", "Acme Limited", txDate.AddDate(0, 0, -3)),
			wantScore:     50 + 40 + 30 + 10,
			wantMatchType: domain.MatchCombined,
			wantOK:        true,
		},
		{
			name: "amount within one percent",
			tx: domain.NormalizedTransaction{
				Date:        txDate,
				Description: "UNRELATED NARRATION",
				Amount:      decimal.NewFromInt(99500),
			},
			invoice:       invoice(100000, "INV-2024-0020", "Someone Else", txDate.AddDate(0, 0, -40)),
			wantScore:     40,
			wantMatchType: domain.MatchAmount,
			wantOK:        true,
		},
		{
			name: "amount within five percent",
			tx: domain.NormalizedTransaction{
				Date:        txDate,
				Description: "UNRELATED NARRATION",
				Amount:      decimal.NewFromInt(96000),
			},
			invoice:       invoice(100000, "INV-2024-0021", "Someone Else", txDate.AddDate(0, 0, -40)),
			wantScore:     25,
			wantMatchType: domain.MatchAmount,
			wantOK:        true,
		},
		{
			name: "amount beyond five percent discards candidate",
			tx: domain.NormalizedTransaction{
				Date:        txDate,
				Description: "PAYMENT ACME LIMITED INV-2024-0007",
				Amount:      decimal.NewFromInt(94000),
			},
			invoice: invoice(100000, "INV-2024-0007", "Acme Limited", txDate),
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := domain.ScoreInvoice(tt.tx, tt.invoice)

			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Score != tt.wantScore {
				t.Errorf("score = %d, want %d", got.Score, tt.wantScore)
			}
			if got.MatchType != tt.wantMatchType {
				t.Errorf("matchType = %s, want %s", got.MatchType, tt.wantMatchType)
			}
		})
	}
}

func TestMatchConfidence(t *testing.T) {
	t.Parallel()

	if got := domain.MatchConfidence(60); got != 0.6 {
		t.Errorf("confidence(60) = %v, want 0.6", got)
	}

	// The cap keeps confidence strictly below certainty even for perfect scores.
	if got := domain.MatchConfidence(130); got != 0.99 {
		t.Errorf("confidence(130) = %v, want 0.99", got)
	}
}

func TestMatchWindow(t *testing.T) {
	t.Parallel()

	txDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	from, to := domain.MatchWindow(txDate)

	if want := txDate.AddDate(0, 0, -60); !from.Equal(want) {
		t.Errorf("from = %s, want %s", from, want)
	}
	if want := txDate.AddDate(0, 0, 7); !to.Equal(want) {
		t.Errorf("to = %s, want %s", to, want)
	}
}
