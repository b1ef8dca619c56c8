package render

import (
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/finbot/internal/ledger"
)

func TestAmountGrouping(t *testing.T) {
	cases := []struct {
		v        float64
		decimals int
		want     string
	}{
		{2500, 0, "2 500"},
		{2500.5, 2, "2 500.50"},
		{1234567.89, 2, "1 234 567.89"},
		{999, 0, "999"},
		{0, 2, "0.00"},
		{-1500, 0, "-1 500"},
	}
	for _, tc := range cases {
		if got := Amount(tc.v, tc.decimals); got != tc.want {
			t.Errorf("Amount(%v, %d) = %q, want %q", tc.v, tc.decimals, got, tc.want)
		}
	}
}

func TestTransactionLines(t *testing.T) {
	income := ledger.Transaction{
		Type: ledger.KindIncome, Category: "QR code", Amount: 25000, Comment: "BMW X5",
	}
	if got := Transaction(income); got != "➕ 25 000 ₽ — BMW X5 — QR code" {
		t.Errorf("income line = %q", got)
	}

	expense := ledger.Transaction{
		Type: ledger.KindExpense, Category: "Tools", Amount: 5000, PaymentType: "Cash",
	}
	if got := Transaction(expense); got != "➖ 5 000 ₽ — Tools — Cash" {
		t.Errorf("expense line = %q", got)
	}

	expense.Comment = "drill bits"
	if got := Transaction(expense); got != "➖ 5 000 ₽ — Tools — Cash — drill bits" {
		t.Errorf("expense line with comment = %q", got)
	}
}

func TestTransactionEscapesHTML(t *testing.T) {
	tx := ledger.Transaction{
		Type: ledger.KindExpense, Category: "A<b>", Amount: 10, PaymentType: "Cash",
	}
	if got := Transaction(tx); !strings.Contains(got, "A&lt;b&gt;") {
		t.Errorf("category not escaped: %q", got)
	}
}

func TestOwnerSummary(t *testing.T) {
	s := &ledger.Summary{
		MonthLabel:   "August 2026",
		Expenses:     1200.5,
		Incomes:      5000,
		BalanceMonth: 3799.5,
		Balances:     ledger.Balances{Cash: 100, QR: 200, Bank: 300},
		BalanceTotal: 600,
		DebtsOweMe:   50,
		DebtsIOwe:    70,
	}
	txs := []ledger.Transaction{
		{Type: ledger.KindExpense, Category: "Tools", Amount: 2500, PaymentType: "Cash"},
	}

	got := OwnerSummary(s, txs)
	for _, want := range []string{
		"August 2026",
		"💵 Cash: <b>100.00</b> ₽",
		"💵 Total: <b>600.00</b> ₽",
		"➖ Expenses: <b>1 200.50</b> ₽",
		"💳 My debts: <b>70.00</b> ₽",
		"Last 5 operations",
		"➖ 2 500 ₽ — Tools — Cash",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("owner summary missing %q:\n%s", want, got)
		}
	}
}

func TestEmployeeSummary(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)

	got := EmployeeSummary(now, nil)
	if !strings.Contains(got, "31 August 2026") {
		t.Errorf("employee summary missing date:\n%s", got)
	}
	if !strings.Contains(got, "No operations yet") {
		t.Errorf("employee summary missing placeholder:\n%s", got)
	}
	if strings.Contains(got, "Balance") {
		t.Errorf("employee summary must not show balances:\n%s", got)
	}

	txs := []ledger.Transaction{
		{Type: ledger.KindIncome, Category: "Cash", Amount: 1000, Comment: "Smith"},
	}
	got = EmployeeSummary(now, txs)
	if !strings.Contains(got, "➕ 1 000 ₽ — Smith — Cash") {
		t.Errorf("employee summary missing transaction:\n%s", got)
	}
}

func TestAnalysisIncomeShares(t *testing.T) {
	res := &ledger.Breakdown{
		Total:  1000,
		ByType: map[string]float64{"Cash": 750, "QR code": 250},
	}
	got := AnalysisIncome("This month", res)
	if !strings.Contains(got, "💵 Cash: <b>750</b> ₽ (75%)") {
		t.Errorf("missing cash share:\n%s", got)
	}
	if !strings.Contains(got, "📱 QR code: <b>250</b> ₽ (25%)") {
		t.Errorf("missing qr share:\n%s", got)
	}
	if !strings.Contains(got, "Total: <b>1 000</b> ₽") {
		t.Errorf("missing total:\n%s", got)
	}
	// Larger share renders first.
	if strings.Index(got, "Cash") > strings.Index(got, "QR code") {
		t.Errorf("shares not ordered by amount:\n%s", got)
	}
}

func TestAnalysisZeroTotal(t *testing.T) {
	res := &ledger.Breakdown{Total: 0}
	if got := AnalysisIncome("Today", res); !strings.Contains(got, "No data") {
		t.Errorf("zero-total income analysis = %q, want No data", got)
	}
	if got := AnalysisExpense("Today", res); !strings.Contains(got, "No data") {
		t.Errorf("zero-total expense analysis = %q, want No data", got)
	}
}

func TestCompareMonthsDelta(t *testing.T) {
	cmp := &ledger.Comparison{
		Year: 2026,
		Months: []ledger.MonthFigures{
			{Month: "June", Incomes: 1000, Expenses: 0},
			{Month: "July", Incomes: 1500, Expenses: 400},
			{Month: "August", Incomes: 1200, Expenses: 500},
		},
	}
	got := CompareMonths(cmp)

	// First month never has a delta.
	juneBlock := got[strings.Index(got, "June"):strings.Index(got, "July")]
	if strings.Contains(juneBlock, "%") {
		t.Errorf("first month must not carry a delta:\n%s", juneBlock)
	}

	if !strings.Contains(got, "(+50%)") {
		t.Errorf("missing +50%% revenue delta:\n%s", got)
	}
	if !strings.Contains(got, "(-20%)") {
		t.Errorf("missing -20%% revenue delta:\n%s", got)
	}

	// July expenses follow a zero month, so no delta; August gets one.
	julyBlock := got[strings.Index(got, "July"):strings.Index(got, "August")]
	if strings.Contains(julyBlock[strings.Index(julyBlock, "Expenses"):], "%") {
		t.Errorf("delta against zero previous expenses:\n%s", julyBlock)
	}
	if !strings.Contains(got, "(+25%)") {
		t.Errorf("missing +25%% expenses delta:\n%s", got)
	}
}

func TestTopExpensesReport(t *testing.T) {
	top := &ledger.TopExpenses{
		MonthLabel: "August",
		Total:      3000,
		Categories: []ledger.TopCategory{
			{Category: "Tools", Amount: 2000},
			{Category: "Supplies", Amount: 1000},
		},
	}
	got := TopExpensesReport(top)
	if !strings.Contains(got, "1. Tools: <b>2 000</b> ₽") {
		t.Errorf("missing ranked line:\n%s", got)
	}
	if !strings.Contains(got, "Total: <b>3 000</b> ₽") {
		t.Errorf("missing total:\n%s", got)
	}

	empty := &ledger.TopExpenses{MonthLabel: "August"}
	if got := TopExpensesReport(empty); !strings.Contains(got, "No data") {
		t.Errorf("empty report = %q, want No data", got)
	}
}

func TestSavedAcknowledgment(t *testing.T) {
	expense := ledger.Draft{
		Kind: ledger.KindExpense, Category: "Tools", Amount: 2500, PaymentType: "Cash",
	}
	got := Saved(expense)
	if !strings.Contains(got, "Tools — 2 500.00 ₽ — Cash") {
		t.Errorf("expense detail missing:\n%s", got)
	}
	if !strings.Contains(got, "✅") {
		t.Errorf("acknowledgment header missing:\n%s", got)
	}

	income := ledger.Draft{
		Kind: ledger.KindIncome, Category: "Cash", Amount: 10000, PaymentType: "Cash",
		Comment: "Acme LLC",
	}
	got = Saved(income)
	if !strings.Contains(got, "Cash — 10 000.00 ₽") {
		t.Errorf("income detail missing:\n%s", got)
	}
	if !strings.Contains(got, "Acme LLC") {
		t.Errorf("comment missing:\n%s", got)
	}
}

func TestDebtAndBalanceScreens(t *testing.T) {
	if got := DebtsScreen(ledger.DebtOweMe, 1500); !strings.Contains(got, "Owed to me") {
		t.Errorf("DebtsScreen = %q", got)
	}
	if got := DebtsScreen(ledger.DebtIOwe, 1500); !strings.Contains(got, "My debts") {
		t.Errorf("DebtsScreen = %q", got)
	}

	bal := &ledger.Balances{Cash: 100, QR: 200, Bank: 300}
	got := BalancesScreen(bal)
	for _, want := range []string{"💵 Cash", "📱 QR code", "🏢 Bank transfer"} {
		if !strings.Contains(got, want) {
			t.Errorf("BalancesScreen missing %q:\n%s", want, got)
		}
	}

	if got := BalanceSet("qr", 50000); !strings.Contains(got, "QR account") ||
		!strings.Contains(got, "50 000.00") {
		t.Errorf("BalanceSet = %q", got)
	}
}
