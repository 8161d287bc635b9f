package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MatchType names the strongest evidence behind an invoice match.
type MatchType string

const (
	MatchAmount      MatchType = "amount"
	MatchReference   MatchType = "reference"
	MatchCustomer    MatchType = "customer"
	MatchCombined    MatchType = "combined"
	MatchAutoCreated MatchType = "auto_created"
)

// MinMatchScore is the qualifying threshold for an invoice match.
const MinMatchScore = 40

// Candidate window around the transaction date. Invoices issued long before
// the payment or after it are not considered.
const (
	MatchWindowBefore = 60 * 24 * time.Hour
	MatchWindowAfter  = 7 * 24 * time.Hour
)

var (
	exactAmountTolerance = decimal.NewFromFloat(0.01)
	closeAmountPct       = decimal.NewFromFloat(0.01)
	nearAmountPct        = decimal.NewFromFloat(0.05)
)

// InvoiceScore is the additive score for one candidate invoice.
type InvoiceScore struct {
	Score     int
	MatchType MatchType
}

// MatchWindow returns the issue-date range of candidate invoices for a
// transaction dated at txDate.
func MatchWindow(txDate time.Time) (from, to time.Time) {
	return txDate.Add(-MatchWindowBefore), txDate.Add(MatchWindowAfter)
}

// ScoreInvoice scores one open invoice against an income transaction.
// Amount closeness gates the candidacy: beyond 5% of the invoice total the
// candidate is discarded outright, whatever else matches.
func ScoreInvoice(tx NormalizedTransaction, inv *Invoice) (InvoiceScore, bool) {
	diff := tx.Amount.Abs().Sub(inv.Total).Abs()

	var score int
	switch {
	case diff.LessThan(exactAmountTolerance):
		score = 50
	case diff.LessThanOrEqual(inv.Total.Mul(closeAmountPct)):
		score = 40
	case diff.LessThanOrEqual(inv.Total.Mul(nearAmountPct)):
		score = 25
	default:
		return InvoiceScore{}, false
	}

	matchType := MatchAmount
	desc := strings.ToLower(tx.Description)

	refMatched := inv.Number != "" && strings.Contains(desc, strings.ToLower(inv.Number))
	if refMatched {
		score += 40
		matchType = MatchReference
	}

	clientName := strings.ToLower(strings.TrimSpace(inv.ClientName))
	switch {
	case clientName != "" && strings.Contains(desc, clientName):
		score += 30
		if refMatched {
			matchType = MatchCombined
		} else {
			matchType = MatchCustomer
		}
	case firstNameToken(clientName) != "" && strings.Contains(desc, firstNameToken(clientName)):
		score += 15
	}

	days := tx.Date.Sub(inv.IssueDate)
	if days < 0 {
		days = -days
	}
	switch {
	case days <= 7*24*time.Hour:
		score += 10
	case days <= 30*24*time.Hour:
		score += 5
	}

	return InvoiceScore{Score: score, MatchType: matchType}, true
}

// MatchConfidence maps a score to a reported confidence, always capped
// below 1.0: a heuristic match is never a certainty.
func MatchConfidence(score int) float64 {
	c := float64(score) / 100
	if c > 0.99 {
		return 0.99
	}
	return c
}

func firstNameToken(clientName string) string {
	tok, _, _ := strings.Cut(clientName, " ")
	if len(tok) < 3 {
		return ""
	}
	return tok
}
