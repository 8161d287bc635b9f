package domain

import "regexp"

// defaultRules is the built-in rule table. Evaluation order matters and is
// frozen: transfer detection first, then expense categories from narrow to
// broad, then income markers. Do not reorder.
var defaultRules = []Rule{
	// Internal transfers. These must win over everything below, otherwise a
	// sweep between the user's own accounts shows up as an expense.
	{Pattern: regexp.MustCompile(`\bown\s+acc(?:oun)?t\b`), Type: TypeTransfer},
	{Pattern: regexp.MustCompile(`\bself\s*(?:trf|transfer)\b`), Type: TypeTransfer},
	{Pattern: regexp.MustCompile(`\b(?:trf|transfer)\s+to\s+self\b`), Type: TypeTransfer},
	{Pattern: regexp.MustCompile(`\binternal\s+transfer\b`), Type: TypeTransfer},
	{Pattern: regexp.MustCompile(`\bbetween\s+(?:own\s+)?accounts\b`), Type: TypeTransfer},
	{Pattern: regexp.MustCompile(`\baccount\s+sweep\b`), Type: TypeTransfer},

	// Expense categories.
	{Pattern: regexp.MustCompile(`\b(?:uber|bolt|taxify|taxi|cab)\b`), Type: TypeExpense, Category: "Travel & Transport"},
	{Pattern: regexp.MustCompile(`\b(?:flight|airline|air\s?peace|arik|hotel|lodging)\b`), Type: TypeExpense, Category: "Travel & Transport"},
	{Pattern: regexp.MustCompile(`\b(?:fuel|petrol|diesel|filling\s+station)\b`), Type: TypeExpense, Category: "Fuel"},
	{Pattern: regexp.MustCompile(`\b(?:restaurant|eatery|cafe|kfc|chicken\s+republic|food)\b`), Type: TypeExpense, Category: "Food & Dining"},
	{Pattern: regexp.MustCompile(`\b(?:supermarket|grocery|groceries|shoprite|spar|market)\b`), Type: TypeExpense, Category: "Groceries"},
	{Pattern: regexp.MustCompile(`\b(?:electricity|phcn|ikedc|ekedc|prepaid\s+meter|water\s+bill)\b`), Type: TypeExpense, Category: "Utilities"},
	{Pattern: regexp.MustCompile(`\b(?:dstv|gotv|startimes|internet|airtime|data\s+(?:plan|bundle))\b`), Type: TypeExpense, Category: "Utilities"},
	{Pattern: regexp.MustCompile(`\b(?:netflix|spotify|apple\.com|subscription|aws|google\s+cloud|microsoft|zoom)\b`), Type: TypeExpense, Category: "Software & Subscriptions"},
	{Pattern: regexp.MustCompile(`\b(?:rent|landlord|lease)\b`), Type: TypeExpense, Category: "Rent"},
	{Pattern: regexp.MustCompile(`\b(?:salary|salaries|payroll|wages|staff\s+payment)\b`), Type: TypeExpense, Category: "Salaries"},
	{Pattern: regexp.MustCompile(`\b(?:insurance|premium|hmo)\b`), Type: TypeExpense, Category: "Insurance"},
	{Pattern: regexp.MustCompile(`\b(?:hospital|pharmacy|clinic|medical)\b`), Type: TypeExpense, Category: "Medical"},
	{Pattern: regexp.MustCompile(`\b(?:stationery|office\s+supplies|printer|toner)\b`), Type: TypeExpense, Category: "Office Supplies"},
	{Pattern: regexp.MustCompile(`\b(?:charge|fee|commission|vat|levy|stamp\s+duty|sms\s+alert|maintenance\s+fee)\b`), Type: TypeExpense, Category: "Bank Charges"},

	// Income markers. No category; income is matched to invoices instead.
	{Pattern: regexp.MustCompile(`\b(?:invoice|inv[-/]?\d+)\b`), Type: TypeIncome},
	{Pattern: regexp.MustCompile(`\b(?:payment\s+received|payment\s+for|settlement)\b`), Type: TypeIncome},
	{Pattern: regexp.MustCompile(`\b(?:pos\s+settlement|merchant\s+settlement)\b`), Type: TypeIncome},
	{Pattern: regexp.MustCompile(`\b(?:interest|dividend)\b`), Type: TypeIncome},
}

// DefaultRuleSet returns the built-in rule table.
func DefaultRuleSet() *RuleSet {
	return NewRuleSet(defaultRules)
}
