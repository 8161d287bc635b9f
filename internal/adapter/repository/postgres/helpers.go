package postgres

import "github.com/shopspring/decimal"

// Amounts cross the wire as strings. Queries select numeric columns with a
// ::text cast and bind string parameters, so no numeric codec setup is
// needed and precision is preserved.
func scanDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
