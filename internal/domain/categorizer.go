package domain

import (
	"regexp"
	"strings"
)

// Classification is the categorizer output for one transaction.
type Classification struct {
	Type       TransactionType
	Category   string
	Confidence float64
}

// Confidence levels are part of the categorizer contract: they feed UI
// trust indicators and must stay stable for a fixed rule set.
const (
	ConfidenceTransferRule = 0.85
	ConfidenceExpenseRule  = 0.8
	ConfidenceIncomeRule   = 0.75
	ConfidenceFallback     = 0.5
	ConfidenceUnknown      = 0.3
)

// FallbackExpenseCategory is assigned to expenses no rule claims.
const FallbackExpenseCategory = "Miscellaneous"

// Rule maps a description pattern to a transaction type and, for expense
// rules, a category. Patterns are matched against the lower-cased
// description.
type Rule struct {
	Pattern  *regexp.Regexp
	Type     TransactionType
	Category string
}

// RuleSet is an immutable, priority-ordered list of rules evaluated top to
// bottom. Order is contractual: transfer rules sit ahead of the narrow
// category rules so internal transfers are never mis-filed as expenses.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet builds a rule set from an ordered rule list.
func NewRuleSet(rules []Rule) *RuleSet {
	return &RuleSet{rules: rules}
}

// Categorize classifies one transaction. It is deterministic and
// side-effect free: same transaction and rule set, same answer.
func (rs *RuleSet) Categorize(tx NormalizedTransaction) Classification {
	provisional := TypeUnknown
	switch {
	case tx.Amount.IsNegative():
		provisional = TypeExpense
	case tx.Amount.IsPositive():
		provisional = TypeIncome
	}

	desc := strings.ToLower(tx.Description)

	for _, rule := range rs.rules {
		if !rule.Pattern.MatchString(desc) {
			continue
		}

		// A transfer rule overrides the sign-derived type.
		if rule.Type == TypeTransfer {
			return Classification{Type: TypeTransfer, Confidence: ConfidenceTransferRule}
		}

		if rule.Type != provisional {
			continue
		}

		if rule.Type == TypeExpense {
			return Classification{Type: TypeExpense, Category: rule.Category, Confidence: ConfidenceExpenseRule}
		}

		return Classification{Type: TypeIncome, Confidence: ConfidenceIncomeRule}
	}

	switch provisional {
	case TypeExpense:
		return Classification{Type: TypeExpense, Category: FallbackExpenseCategory, Confidence: ConfidenceFallback}
	case TypeIncome:
		return Classification{Type: TypeIncome, Confidence: ConfidenceFallback}
	default:
		return Classification{Type: TypeUnknown, Confidence: ConfidenceUnknown}
	}
}
