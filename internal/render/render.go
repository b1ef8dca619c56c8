// Package render turns ledger payloads into chat screen text.
// Every function is pure: output depends only on the input data.
// Output is Telegram HTML; all backend- and user-supplied values are escaped.
package render

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/m3rciful/finbot/core/telegram/format"
	"github.com/m3rciful/finbot/internal/ledger"
)

const divider = "━━━━━━━━━━━━━━━━"

// Payment method emoji used on keyboards and analysis lines.
func PaymentEmoji(method string) string {
	switch method {
	case "Cash":
		return "💵"
	case "QR code":
		return "📱"
	default:
		return "🏢"
	}
}

// Amount renders a value with space-grouped thousands and the given
// number of decimal places: Amount(2500.5, 2) == "2 500.50".
func Amount(v float64, decimals int) string {
	s := fmt.Sprintf("%.*f", decimals, v)
	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

func rub(v float64, decimals int) string {
	return format.B(Amount(v, decimals)) + " ₽"
}

// Transaction renders one operation line:
// income  `➕ 25 000 ₽ — comment — category`
// expense `➖ 5 000 ₽ — category — payment[ — comment]`
func Transaction(tx ledger.Transaction) string {
	sign := "➖"
	if tx.Type == ledger.KindIncome {
		sign = "➕"
	}
	amount := Amount(tx.Amount, 0) + " ₽"

	if tx.Type == ledger.KindIncome {
		return fmt.Sprintf("%s %s — %s — %s",
			sign, amount, format.EscapeHTML(tx.Comment), format.EscapeHTML(tx.Category))
	}
	line := fmt.Sprintf("%s %s — %s — %s",
		sign, amount, format.EscapeHTML(tx.Category), format.EscapeHTML(tx.PaymentType))
	if tx.Comment != "" {
		line += " — " + format.EscapeHTML(tx.Comment)
	}
	return line
}

// OwnerSummary is the owner's main screen: balances, month totals, debts,
// then the five most recent operations.
func OwnerSummary(s *ledger.Summary, txs []ledger.Transaction) string {
	var b strings.Builder
	b.WriteString(format.B("💼 Business") + "\n")
	b.WriteString(format.B(format.EscapeHTML(s.MonthLabel)) + "\n\n")
	b.WriteString(format.B("💰 Balance:") + "\n")
	b.WriteString("💵 Cash: " + rub(s.Balances.Cash, 2) + "\n")
	b.WriteString("📱 QR code: " + rub(s.Balances.QR, 2) + "\n")
	b.WriteString("🏢 Bank transfer: " + rub(s.Balances.Bank, 2) + "\n")
	b.WriteString(divider + "\n")
	b.WriteString("💵 Total: " + rub(s.BalanceTotal, 2) + "\n\n")
	b.WriteString("➖ Expenses: " + rub(s.Expenses, 2) + "\n")
	b.WriteString("➕ Incomes: " + rub(s.Incomes, 2) + "\n")
	b.WriteString("🟰 This month: " + rub(s.BalanceMonth, 2) + "\n")
	b.WriteString("💳 My debts: " + rub(s.DebtsIOwe, 2) + "\n")
	b.WriteString("💰 Owed to me: " + rub(s.DebtsOweMe, 2) + "\n")

	if len(txs) > 0 {
		b.WriteString("\n" + format.B("📋 Last 5 operations:") + "\n\n")
		for i, tx := range txs {
			if i == 5 {
				break
			}
			b.WriteString(Transaction(tx) + "\n")
		}
	}
	return b.String()
}

// EmployeeSummary is the restricted main screen: current date and the ten
// most recent operations, no balances or debts.
func EmployeeSummary(now time.Time, txs []ledger.Transaction) string {
	var b strings.Builder
	b.WriteString(format.B("💼 Cash desk") + "\n")
	b.WriteString(now.Format("2 January 2006") + "\n\n")
	b.WriteString(format.B("📋 Last 10 operations:") + "\n\n")

	if len(txs) == 0 {
		b.WriteString("No operations yet")
		return b.String()
	}
	for i, tx := range txs {
		if i == 10 {
			break
		}
		b.WriteString(Transaction(tx) + "\n")
	}
	return b.String()
}

// share is a named slice of a breakdown, ordered for stable output.
type share struct {
	name   string
	amount float64
}

func sortedShares(m map[string]float64) []share {
	out := make([]share, 0, len(m))
	for name, amount := range m {
		out = append(out, share{name, amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].amount != out[j].amount {
			return out[i].amount > out[j].amount
		}
		return out[i].name < out[j].name
	})
	return out
}

// AnalysisIncome renders the income breakdown for a period. Percentage
// shares are only computed when the total is positive.
func AnalysisIncome(periodLabel string, res *ledger.Breakdown) string {
	var b strings.Builder
	b.WriteString(format.B("💰 Income for "+strings.ToLower(periodLabel)) + "\n\n")

	if res.Total <= 0 {
		b.WriteString("No data")
		return b.String()
	}
	for _, s := range sortedShares(res.ByType) {
		pct := s.amount / res.Total * 100
		b.WriteString(fmt.Sprintf("%s %s: %s (%.0f%%)\n",
			PaymentEmoji(s.name), format.EscapeHTML(s.name), rub(s.amount, 0), pct))
	}
	b.WriteString(divider + "\nTotal: " + rub(res.Total, 0))
	return b.String()
}

// AnalysisExpense renders the expense breakdown for a period.
func AnalysisExpense(periodLabel string, res *ledger.Breakdown) string {
	var b strings.Builder
	b.WriteString(format.B("💸 Expenses for "+strings.ToLower(periodLabel)) + "\n\n")

	if res.Total <= 0 {
		b.WriteString("No data")
		return b.String()
	}
	for _, s := range sortedShares(res.ByCategory) {
		b.WriteString(fmt.Sprintf("%s: %s\n", format.EscapeHTML(s.name), rub(s.amount, 0)))
	}
	b.WriteString(divider + "\nTotal: " + rub(res.Total, 0))
	return b.String()
}

// CompareMonths renders the month-by-month series. A signed delta against
// the previous month is appended only when the previous value is positive;
// the first month never carries one.
func CompareMonths(cmp *ledger.Comparison) string {
	var b strings.Builder
	b.WriteString(format.B(fmt.Sprintf("📊 Months comparison (%d)", cmp.Year)) + "\n\n")

	for i, m := range cmp.Months {
		b.WriteString(format.B(format.EscapeHTML(m.Month)+":") + "\n")
		b.WriteString("💰 Revenue: " + rub(m.Incomes, 0))
		if i > 0 {
			b.WriteString(delta(m.Incomes, cmp.Months[i-1].Incomes))
		}
		b.WriteString("\n💸 Expenses: " + rub(m.Expenses, 0))
		if i > 0 {
			b.WriteString(delta(m.Expenses, cmp.Months[i-1].Expenses))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func delta(current, previous float64) string {
	if previous <= 0 {
		return ""
	}
	change := (current - previous) / previous * 100
	sign := ""
	if change >= 0 {
		sign = "+"
	}
	return fmt.Sprintf(" (%s%.0f%%)", sign, change)
}

// AverageCheckReport renders the month and year average-check windows.
func AverageCheckReport(ac *ledger.AverageCheck) string {
	var b strings.Builder
	b.WriteString(format.B("💰 Average check") + "\n\n")
	b.WriteString(format.B("For "+format.EscapeHTML(ac.Month.Label)+":") + "\n")
	b.WriteString("Average check: " + rub(ac.Month.Average, 0) + "\n")
	b.WriteString(fmt.Sprintf("Operations: %d\n\n", ac.Month.Count))
	b.WriteString(format.B("For "+format.EscapeHTML(ac.Year.Label)+":") + "\n")
	b.WriteString("Average check: " + rub(ac.Year.Average, 0) + "\n")
	b.WriteString(fmt.Sprintf("Operations: %d", ac.Year.Count))
	return b.String()
}

// TopExpensesReport ranks expense categories for the month.
func TopExpensesReport(top *ledger.TopExpenses) string {
	var b strings.Builder
	b.WriteString(format.B("📋 Top expense categories ("+format.EscapeHTML(top.MonthLabel)+")") + "\n\n")

	if len(top.Categories) == 0 {
		b.WriteString("No data")
		return b.String()
	}
	for i, c := range top.Categories {
		b.WriteString(fmt.Sprintf("%d. %s: %s\n", i+1, format.EscapeHTML(c.Category), rub(c.Amount, 0)))
	}
	b.WriteString(divider + "\nTotal: " + rub(top.Total, 0))
	return b.String()
}

// BalancesScreen shows current per-method balances before editing.
func BalancesScreen(bal *ledger.Balances) string {
	var b strings.Builder
	b.WriteString(format.B("💰 Current balances:") + "\n\n")
	b.WriteString("💵 Cash: " + rub(bal.Cash, 2) + "\n")
	b.WriteString("📱 QR code: " + rub(bal.QR, 2) + "\n")
	b.WriteString("🏢 Bank transfer: " + rub(bal.Bank, 2))
	return b.String()
}

// DebtLabel names a debt direction for screens and confirmations.
func DebtLabel(debtKind string) string {
	if debtKind == ledger.DebtOweMe {
		return "Owed to me"
	}
	return "My debts"
}

// DebtsScreen shows the aggregate for one debt direction.
func DebtsScreen(debtKind string, amount float64) string {
	return DebtLabel(debtKind) + ":\n" + rub(amount, 2)
}

// BalanceKindLabel names a balance account in prompts and confirmations.
func BalanceKindLabel(paymentKind string) string {
	switch paymentKind {
	case "cash":
		return "cash"
	case "qr":
		return "QR account"
	default:
		return "bank account"
	}
}

// BalanceSet is the confirmation after overwriting a balance.
func BalanceSet(paymentKind string, amount float64) string {
	return fmt.Sprintf("Done! ✅ Balance (%s) set: %s",
		BalanceKindLabel(paymentKind), rub(amount, 2))
}

// DebtsSet is the confirmation after overwriting a debt aggregate.
func DebtsSet(debtKind string, amount float64) string {
	return fmt.Sprintf("Done! ✅ %s set: %s", DebtLabel(debtKind), rub(amount, 2))
}

// Acknowledgment phrase pools, one picked at random per saved record.
var (
	savedIncomePhrases = []string{
		"Great! ✅ Income recorded.",
		"Got it! ✅ Logged.",
		"Noted ✅",
		"Done ✅",
	}
	savedExpensePhrases = []string{
		"Recorded ✅",
		"Done ✅",
		"Logged ✅",
		"Got it ✅",
		"Noted ✅",
	}
)

// Saved renders the post-finalize acknowledgment for a submitted draft.
func Saved(d ledger.Draft) string {
	var header, detail string
	if d.Kind == ledger.KindExpense {
		header = savedExpensePhrases[rand.IntN(len(savedExpensePhrases))]
		detail = fmt.Sprintf("%s — %s ₽ — %s",
			format.EscapeHTML(d.Category), Amount(d.Amount, 2), format.EscapeHTML(d.PaymentType))
	} else {
		header = savedIncomePhrases[rand.IntN(len(savedIncomePhrases))]
		detail = fmt.Sprintf("%s — %s ₽", format.EscapeHTML(d.Category), Amount(d.Amount, 2))
	}
	if c := strings.TrimSpace(d.Comment); c != "" {
		detail += "\n" + format.EscapeHTML(c)
	}
	return header + "\n" + detail
}
