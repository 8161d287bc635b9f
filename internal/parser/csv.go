// Package parser turns bank statement exports into normalized transactions.
//
// Only CSV is handled here. Column names vary wildly between banks, so the
// parser matches headers against known aliases instead of assuming a fixed
// layout. Anything smarter than column-name matching (PDF layouts, OCR) is
// out of scope.
package parser

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/keepbooks/bankrec/internal/domain"
)

// Header aliases seen across bank CSV exports. Matching is case-insensitive
// after whitespace normalization.
var (
	dateAliases        = []string{"date", "transaction date", "trans date", "txn date", "value date", "posting date"}
	descriptionAliases = []string{"description", "narration", "details", "transaction details", "particulars", "remarks", "memo"}
	amountAliases      = []string{"amount", "transaction amount", "value"}
	debitAliases       = []string{"debit", "debits", "withdrawal", "withdrawals", "paid out", "money out", "dr"}
	creditAliases      = []string{"credit", "credits", "deposit", "deposits", "paid in", "money in", "cr"}
	balanceAliases     = []string{"balance", "running balance", "closing balance", "bal"}
	referenceAliases   = []string{"reference", "ref", "reference number", "transaction ref", "transaction id", "instrument no"}
)

// Date layouts tried in order. Day-first layouts come before month-first
// because the banks this targets export day-first.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"01/02/2006",
}

var accountNumberPattern = regexp.MustCompile(`\b(\d{8,12})\b`)

// CSVParser implements the statement parser collaborator for CSV exports.
type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// columns holds resolved header indexes. -1 means the column is absent.
type columns struct {
	date      int
	desc      int
	amount    int
	debit     int
	credit    int
	balance   int
	reference int
	headers   []string
}

// Parse reads the whole file and returns normalized transactions in file
// order. Rows whose date cell does not parse (summary lines, footers) are
// skipped rather than failing the file.
func (p *CSVParser) Parse(ctx context.Context, r io.Reader, fileName, bankHint string) (*domain.ParsedStatement, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	statement := &domain.ParsedStatement{BankName: bankHint}

	var cols *columns
	var preamble []string

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		if cols == nil {
			if c, ok := resolveColumns(record); ok {
				cols = c
				continue
			}
			// Everything above the header row is preamble. Keep it for
			// account number detection.
			preamble = append(preamble, strings.Join(record, " "))
			continue
		}

		tx, ok := p.parseRow(cols, record)
		if !ok {
			continue
		}
		statement.Transactions = append(statement.Transactions, tx)

		if statement.PeriodStart.IsZero() || tx.Date.Before(statement.PeriodStart) {
			statement.PeriodStart = tx.Date
		}
		if tx.Date.After(statement.PeriodEnd) {
			statement.PeriodEnd = tx.Date
		}
	}

	if cols == nil {
		return nil, fmt.Errorf("%w: no header row with date, description and amount columns", domain.ErrMissingColumns)
	}

	statement.AccountNumber = findAccountNumber(strings.Join(preamble, "\n"))

	return statement, nil
}

// parseRow converts one data row. Returns false for rows that are not
// transactions: blank lines, summaries, rows with no amount.
func (p *CSVParser) parseRow(cols *columns, record []string) (domain.NormalizedTransaction, bool) {
	var tx domain.NormalizedTransaction

	dateCell := cell(record, cols.date)
	if dateCell == "" {
		return tx, false
	}

	date, ok := parseDate(dateCell)
	if !ok {
		return tx, false
	}
	tx.Date = date
	tx.Description = strings.TrimSpace(cell(record, cols.desc))

	amount, ok := resolveAmount(cols, record)
	if !ok {
		return tx, false
	}
	tx.Amount = amount

	if cols.balance >= 0 {
		if bal, err := parseDecimal(cell(record, cols.balance)); err == nil {
			tx.Balance = &bal
		}
	}
	if cols.reference >= 0 {
		tx.Reference = strings.TrimSpace(cell(record, cols.reference))
	}

	tx.RawFields = make(map[string]string, len(cols.headers))
	for i, header := range cols.headers {
		if header == "" || i >= len(record) {
			continue
		}
		tx.RawFields[header] = record[i]
	}

	return tx, true
}

// resolveAmount prefers a single signed amount column; otherwise combines
// debit and credit columns into a signed value, debits negative.
func resolveAmount(cols *columns, record []string) (decimal.Decimal, bool) {
	if cols.amount >= 0 {
		amount, err := parseDecimal(cell(record, cols.amount))
		if err != nil {
			return decimal.Zero, false
		}
		return amount, true
	}

	debitCell := cell(record, cols.debit)
	creditCell := cell(record, cols.credit)

	if debitCell != "" {
		if debit, err := parseDecimal(debitCell); err == nil && !debit.IsZero() {
			return debit.Abs().Neg(), true
		}
	}
	if creditCell != "" {
		if credit, err := parseDecimal(creditCell); err == nil && !credit.IsZero() {
			return credit.Abs(), true
		}
	}

	return decimal.Zero, false
}

// resolveColumns decides whether a record is the header row. A header needs
// a date column, a description column, and either an amount column or a
// debit/credit pair.
func resolveColumns(record []string) (*columns, bool) {
	cols := &columns{
		date: -1, desc: -1, amount: -1, debit: -1,
		credit: -1, balance: -1, reference: -1,
	}

	headers := make([]string, len(record))
	for i, raw := range record {
		header := normalizeHeader(raw)
		headers[i] = strings.TrimSpace(raw)

		switch {
		case cols.date < 0 && matchesAlias(header, dateAliases):
			cols.date = i
		case cols.desc < 0 && matchesAlias(header, descriptionAliases):
			cols.desc = i
		case cols.amount < 0 && matchesAlias(header, amountAliases):
			cols.amount = i
		case cols.debit < 0 && matchesAlias(header, debitAliases):
			cols.debit = i
		case cols.credit < 0 && matchesAlias(header, creditAliases):
			cols.credit = i
		case cols.balance < 0 && matchesAlias(header, balanceAliases):
			cols.balance = i
		case cols.reference < 0 && matchesAlias(header, referenceAliases):
			cols.reference = i
		}
	}
	cols.headers = headers

	if cols.date < 0 || cols.desc < 0 {
		return nil, false
	}
	if cols.amount < 0 && (cols.debit < 0 || cols.credit < 0) {
		return nil, false
	}
	return cols, true
}

func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	// "Amount (NGN)" and friends match their bare alias.
	if idx := strings.IndexAny(s, "(["); idx > 0 {
		s = strings.TrimSpace(s[:idx])
	}
	return strings.TrimRight(s, ".:")
}

func matchesAlias(header string, aliases []string) bool {
	for _, alias := range aliases {
		if header == alias {
			return true
		}
	}
	return false
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseDecimal normalizes bank amount formats: currency symbols, thousands
// separators, parenthesized negatives, and DR/CR suffixes.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	upper := strings.ToUpper(s)
	if strings.HasSuffix(upper, "DR") {
		negative = true
		s = s[:len(s)-2]
	} else if strings.HasSuffix(upper, "CR") {
		s = s[:len(s)-2]
	}

	replacer := strings.NewReplacer(
		"₦", "", "$", "", "£", "", "€", "",
		"NGN", "", "USD", "", "GBP", "", "EUR", "",
		",", "", " ", "", " ", "",
	)
	s = strings.TrimSpace(replacer.Replace(s))

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func findAccountNumber(text string) string {
	return accountNumberPattern.FindString(text)
}
