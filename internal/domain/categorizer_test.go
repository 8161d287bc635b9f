package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/keepbooks/bankrec/internal/domain"
)

func tx(desc string, amount float64) domain.NormalizedTransaction {
	return domain.NormalizedTransaction{
		Date:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Amount:      decimal.NewFromFloat(amount),
	}
}

func TestCategorize(t *testing.T) {
	t.Parallel()

	rules := domain.DefaultRuleSet()

	tests := []struct {
		name           string
		tx             domain.NormalizedTransaction
		wantType       domain.TransactionType
		wantCategory   string
		wantConfidence float64
	}{
		{
			name:           "uber trip is travel expense",
			tx:             tx("UBER TRIP LAGOS", -4500),
			wantType:       domain.TypeExpense,
			wantCategory:   "Travel & Transport",
			wantConfidence: 0.8,
		},
		{
			name:           "unmatched negative amount falls back to miscellaneous",
			tx:             tx("XJQ-99 UNRECOGNIZABLE NARRATION", -120.50),
			wantType:       domain.TypeExpense,
			wantCategory:   "Miscellaneous",
			wantConfidence: 0.5,
		},
		{
			name:           "unmatched positive amount is income without category",
			tx:             tx("SOME RANDOM CREDIT", 900),
			wantType:       domain.TypeIncome,
			wantConfidence: 0.5,
		},
		{
			name:           "invoice reference credit is income",
			tx:             tx("TRANSFER FROM ACME LTD INV-2024-0007", 150000),
			wantType:       domain.TypeIncome,
			wantConfidence: 0.75,
		},
		{
			name:           "transfer rule overrides negative sign",
			tx:             tx("TRF TO SELF savings top-up", -20000),
			wantType:       domain.TypeTransfer,
			wantConfidence: 0.85,
		},
		{
			name:           "transfer rule overrides positive sign",
			tx:             tx("INTERNAL TRANSFER from operations", 20000),
			wantType:       domain.TypeTransfer,
			wantConfidence: 0.85,
		},
		{
			name:           "zero amount is unknown",
			tx:             tx("BALANCE ENQUIRY", 0),
			wantType:       domain.TypeUnknown,
			wantConfidence: 0.3,
		},
		{
			name:           "bank charge expense rule",
			tx:             tx("SMS ALERT FEE JAN", -50),
			wantType:       domain.TypeExpense,
			wantCategory:   "Bank Charges",
			wantConfidence: 0.8,
		},
		{
			name:           "expense rule ignored for income sign",
			tx:             tx("REFUND uber overcharge", 4500),
			wantType:       domain.TypeIncome,
			wantConfidence: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := rules.Categorize(tt.tx)

			if got.Type != tt.wantType {
				t.Errorf("type = %s, want %s", got.Type, tt.wantType)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestCategorize_Deterministic(t *testing.T) {
	t.Parallel()

	rules := domain.DefaultRuleSet()
	sample := tx("POS PURCHASE SHOPRITE IKEJA", -15300)

	first := rules.Categorize(sample)
	for i := 0; i < 10; i++ {
		if got := rules.Categorize(sample); got != first {
			t.Fatalf("categorization not deterministic: %+v vs %+v", got, first)
		}
	}
}
