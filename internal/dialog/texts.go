package dialog

import (
	"strings"

	"github.com/m3rciful/finbot/core/telegram/format"
)

var textAmountPrompt = "How much?\n\nExamples: " + strings.Join([]string{
	format.Code("2500"),
	format.Code("2 500"),
	format.Code("2.500"),
	format.Code("2500,50"),
	format.Code("2к"),
}, ", ")

const (
	textChooseType    = "Okay 🙂 What are we adding?"
	textExpenseWhat   = "What did you spend on? 💪"
	textIncomeWhere   = "Money! Where from? 💰"
	textAmountInvalid = "Didn't catch the amount 🙈\nWrite it like: 2500 / 2 500 / 2500,50 / 2к"
	textPaymentFrom   = "Which account does it come from?"
	textCommentAsk    = "Add a comment?"

	textCommentCompany         = "Write the company name:"
	textCommentClient          = "Write the client name or car model:"
	textCommentCompanyRequired = "The company name is required! Write it:"
	textCommentClientRequired  = "A client name or car model is required! Write it:"

	textAnalysisPeriods = "📊 Analysis\n\nPick a period:"
	textSpecialReports  = "⚙️ Special reports"

	textDebtsWhich = "Which debts?"

	textTransportDown = "The ledger is not responding, please try again 🙈"
	textAccessDenied  = "Access denied"

	// Income category whose comment is a company name rather than a client.
	incomeCategoryCompany = "Services (bank transfer)"
)

func analysisPeriodLabel(period string) string {
	switch period {
	case "today":
		return "Today"
	case "week":
		return "This week"
	case "month":
		return "This month"
	case "year":
		return "This year"
	}
	return period
}

func analysisTypePrompt(period string) string {
	return "📊 " + analysisPeriodLabel(period) + "\n\nWhat shall we look at?"
}

func balancePrompt(paymentKind string) string {
	var label string
	switch paymentKind {
	case "cash":
		label = "cash"
	case "qr":
		label = "the QR account"
	default:
		label = "the bank account"
	}
	return "What's the balance of " + label + "? 💰\n\nWrite the amount (e.g. 50000 or 50к)"
}

func debtsPrompt(debtKind string) string {
	label := "debt"
	if debtKind == "owe_me" {
		label = "debt owed to you"
	}
	return "How much " + label + " is there? 💳\n\nWrite the amount (e.g. 10000 or 10к)"
}
