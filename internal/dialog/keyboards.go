package dialog

import (
	"strconv"

	"github.com/m3rciful/finbot/internal/access"
	"github.com/m3rciful/finbot/internal/render"
)

const backLabel = "⬅️ Back"

func menuKeyboard(caps access.Capabilities) Keyboard {
	kb := Keyboard{{{Label: "➕ Add transaction", Data: "menu:add"}}}
	if caps.CanViewAnalysis {
		kb = append(kb, []Button{{Label: "📊 Analysis", Data: "menu:analysis"}})
	}
	if caps.CanEditBalance {
		kb = append(kb, []Button{{Label: "💰 Check balance", Data: "menu:balance"}})
	}
	if caps.CanEditDebts {
		kb = append(kb, []Button{{Label: "💳 Debts", Data: "menu:debts"}})
	}
	return kb
}

func typeKeyboard() Keyboard {
	return Keyboard{
		{{Label: "➖ Expense", Data: "type:expense"}},
		{{Label: "➕ Income", Data: "type:income"}},
		{{Label: backLabel, Data: "back:menu"}},
	}
}

// Expense categories go two per row to keep long lists compact.
func expenseCategoriesKeyboard(categories []string) Keyboard {
	var kb Keyboard
	var row []Button
	for i, c := range categories {
		row = append(row, Button{Label: c, Data: "expcat:" + strconv.Itoa(i)})
		if len(row) == 2 {
			kb = append(kb, row)
			row = nil
		}
	}
	if len(row) > 0 {
		kb = append(kb, row)
	}
	kb = append(kb, []Button{{Label: backLabel, Data: "back:choose_type"}})
	return kb
}

func incomeCategoriesKeyboard(categories []string) Keyboard {
	var kb Keyboard
	for i, c := range categories {
		kb = append(kb, []Button{{Label: c, Data: "inccat:" + strconv.Itoa(i)}})
	}
	kb = append(kb, []Button{{Label: backLabel, Data: "back:choose_type"}})
	return kb
}

func paymentKeyboard(paymentTypes []string) Keyboard {
	var kb Keyboard
	for i, p := range paymentTypes {
		kb = append(kb, []Button{{
			Label: render.PaymentEmoji(p) + " " + p,
			Data:  "payment:" + strconv.Itoa(i),
		}})
	}
	return kb
}

func skipCommentKeyboard() Keyboard {
	return Keyboard{{{Label: "Skip", Data: "comment:skip"}}}
}

func analysisPeriodsKeyboard() Keyboard {
	return Keyboard{
		{{Label: "📅 Today", Data: "aperiod:today"}},
		{{Label: "📅 This week", Data: "aperiod:week"}},
		{{Label: "📅 This month", Data: "aperiod:month"}},
		{{Label: "📅 This year", Data: "aperiod:year"}},
		{{Label: "⚙️ Special reports", Data: "aperiod:special"}},
		{{Label: backLabel, Data: "back:menu"}},
	}
}

func analysisTypeKeyboard() Keyboard {
	return Keyboard{
		{{Label: "💰 Income", Data: "atype:income"}},
		{{Label: "💸 Expenses", Data: "atype:expense"}},
		{{Label: backLabel, Data: "back:analysis_periods"}},
	}
}

func specialReportsKeyboard() Keyboard {
	return Keyboard{
		{{Label: "📊 Months comparison", Data: "special:compare"}},
		{{Label: "💰 Average check", Data: "special:average"}},
		{{Label: "📋 Top expense categories", Data: "special:top"}},
		{{Label: backLabel, Data: "back:analysis_periods"}},
	}
}

func balanceKeyboard() Keyboard {
	return Keyboard{
		{{Label: "💵 Edit cash", Data: "balance:cash"}},
		{{Label: "📱 Edit QR", Data: "balance:qr"}},
		{{Label: "🏢 Edit bank", Data: "balance:bn"}},
		{{Label: backLabel, Data: "back:menu"}},
	}
}

func debtsTypeKeyboard() Keyboard {
	return Keyboard{
		{{Label: "💰 Owed to me", Data: "debts_type:owe_me"}},
		{{Label: "💳 My debts", Data: "debts_type:i_owe"}},
		{{Label: backLabel, Data: "back:menu"}},
	}
}

func debtsActionsKeyboard() Keyboard {
	return Keyboard{
		{{Label: "Edit", Data: "debts:edit"}},
		{{Label: backLabel, Data: "back:debts_type"}},
	}
}
