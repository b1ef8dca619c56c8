package ledger

// Transaction is a single ledger operation as the backend reports it.
type Transaction struct {
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	PaymentType string  `json:"payment_type"`
	Comment     string  `json:"comment"`
}

// Balances holds per-method account balances.
type Balances struct {
	Cash float64 `json:"cash"`
	QR   float64 `json:"qr"`
	Bank float64 `json:"bn"`
}

// Total sums all payment methods.
func (b Balances) Total() float64 { return b.Cash + b.QR + b.Bank }

// Summary is the owner's month overview.
type Summary struct {
	MonthLabel   string   `json:"month_label"`
	Expenses     float64  `json:"expenses"`
	Incomes      float64  `json:"incomes"`
	BalanceMonth float64  `json:"balance_month"`
	Balances     Balances `json:"balances"`
	BalanceTotal float64  `json:"balance_total"`
	DebtsOweMe   float64  `json:"debts_owe_me"`
	DebtsIOwe    float64  `json:"debts_i_owe"`
}

// Catalog lists the selectable categories and payment methods for entry flows.
type Catalog struct {
	Expenses     []string `json:"expenses"`
	Incomes      []string `json:"incomes"`
	PaymentTypes []string `json:"payment_types"`
}

// Draft is a fully accumulated transaction ready for submission.
type Draft struct {
	Kind        string  `json:"type"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	PaymentType string  `json:"payment_type"`
	Comment     string  `json:"comment"`
}

// Breakdown is a period analysis result: total plus named shares.
// ByType is set for income analysis, ByCategory for expense analysis.
type Breakdown struct {
	Total      float64            `json:"total"`
	ByType     map[string]float64 `json:"by_type,omitempty"`
	ByCategory map[string]float64 `json:"by_category,omitempty"`
}

// MonthFigures is one month's totals in a months comparison.
type MonthFigures struct {
	Month    string  `json:"month"`
	Incomes  float64 `json:"incomes"`
	Expenses float64 `json:"expenses"`
}

// Comparison is a year's month-by-month revenue/expense series.
type Comparison struct {
	Year   int            `json:"year"`
	Months []MonthFigures `json:"months"`
}

// MonthCheck is the average check within the current month.
type MonthCheck struct {
	Label   string  `json:"month_label"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// YearCheck is the average check within the current year.
type YearCheck struct {
	Label   string  `json:"year_label"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// AverageCheck pairs the month and year average-check windows.
type AverageCheck struct {
	Month MonthCheck `json:"month"`
	Year  YearCheck  `json:"year"`
}

// TopCategory is one entry in the top-expenses report.
type TopCategory struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// TopExpenses ranks expense categories for a month.
type TopExpenses struct {
	MonthLabel string        `json:"month_label"`
	Total      float64       `json:"total"`
	Categories []TopCategory `json:"categories"`
}

// Valid period values for analysis commands.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// Debt direction values.
const (
	DebtOweMe = "owe_me"
	DebtIOwe  = "i_owe"
)

// Transaction kind values.
const (
	KindExpense = "expense"
	KindIncome  = "income"
)
