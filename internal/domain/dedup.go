package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DuplicateTolerance is the hard amount boundary for (date, amount)
// duplicate detection: differences strictly below it are duplicates.
var DuplicateTolerance = decimal.NewFromFloat(0.01)

// IsDuplicate reports whether an incoming transaction is already persisted.
// Per existing record, first match wins: an equal bank reference on both
// sides is decisive; otherwise same calendar date with an absolute amount
// difference below DuplicateTolerance counts.
//
// Two distinct same-day, same-amount transactions will false-positive. That
// is a documented limitation of the heuristic, not a bug to fix here.
func IsDuplicate(tx NormalizedTransaction, existing []ExistingRecord) bool {
	txAmount := tx.Amount.Abs()

	for _, rec := range existing {
		if tx.Reference != "" && rec.BankReference != "" && tx.Reference == rec.BankReference {
			return true
		}

		if !sameCalendarDay(tx.Date, rec.Date) {
			continue
		}

		if txAmount.Sub(rec.Amount.Abs()).Abs().LessThan(DuplicateTolerance) {
			return true
		}
	}

	return false
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
