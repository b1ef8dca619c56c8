package dialog

// State is a node of the per-user dialogue state machine.
type State int

const (
	StateMenu State = iota
	StateAddChooseType
	StateExpenseCategory
	StateIncomeCategory
	StateAmountEntry
	StatePaymentTypeSelect
	StateCommentEntry
	StateAnalysisPeriod
	StateAnalysisType
	StateSpecialReports
	StateBalanceMenu
	StateBalanceAmountEntry
	StateDebtsChooseType
	StateDebtsAmountEntry
)

var stateNames = map[State]string{
	StateMenu:               "menu",
	StateAddChooseType:      "add_choose_type",
	StateExpenseCategory:    "expense_category",
	StateIncomeCategory:     "income_category",
	StateAmountEntry:        "amount_entry",
	StatePaymentTypeSelect:  "payment_type_select",
	StateCommentEntry:       "comment_entry",
	StateAnalysisPeriod:     "analysis_period",
	StateAnalysisType:       "analysis_type",
	StateSpecialReports:     "special_reports",
	StateBalanceMenu:        "balance_menu",
	StateBalanceAmountEntry: "balance_amount_entry",
	StateDebtsChooseType:    "debts_choose_type",
	StateDebtsAmountEntry:   "debts_amount_entry",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// expectsText reports whether free text is meaningful input in this state.
func (s State) expectsText() bool {
	switch s {
	case StateAmountEntry, StateCommentEntry, StateBalanceAmountEntry, StateDebtsAmountEntry:
		return true
	}
	return false
}
