// Package dialog implements the per-user conversational state machine.
// It is transport-agnostic: inbound events arrive as Start/Press/Text calls
// and all output goes through the Outbox interface.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/finbot/core/logger"
	"github.com/m3rciful/finbot/internal/access"
	"github.com/m3rciful/finbot/internal/ledger"
	"github.com/m3rciful/finbot/internal/money"
	"github.com/m3rciful/finbot/internal/render"
)

// Ledger is the machine's view of the backend gateway.
type Ledger interface {
	SummaryMonth(ctx context.Context, userID int64) (*ledger.Summary, error)
	LastTransactions(ctx context.Context, userID int64, limit int) ([]ledger.Transaction, error)
	Categories(ctx context.Context, userID int64) (*ledger.Catalog, error)
	AllBalances(ctx context.Context, userID int64) (*ledger.Balances, error)
	Add(ctx context.Context, userID int64, d ledger.Draft) error
	AnalysisIncome(ctx context.Context, userID int64, period string) (*ledger.Breakdown, error)
	AnalysisExpense(ctx context.Context, userID int64, period string) (*ledger.Breakdown, error)
	CompareMonths(ctx context.Context, userID int64) (*ledger.Comparison, error)
	AverageCheck(ctx context.Context, userID int64) (*ledger.AverageCheck, error)
	TopExpenses(ctx context.Context, userID int64) (*ledger.TopExpenses, error)
	SetBalance(ctx context.Context, userID int64, amount float64, paymentKind string) error
	Debts(ctx context.Context, userID int64, debtKind string) (float64, error)
	SetDebts(ctx context.Context, userID int64, amount float64, debtKind string) error
}

// Machine drives every user's dialogue. Safe for concurrent use; events
// for one user are serialized by the session store.
type Machine struct {
	store  *Store
	ledger Ledger
	now    func() time.Time
}

// NewMachine builds a dialogue machine on top of a session store.
func NewMachine(store *Store, backend Ledger) *Machine {
	return &Machine{
		store:  store,
		ledger: backend,
		now:    time.Now,
	}
}

// ExpectsText reports whether the user's next text message belongs to a flow.
func (m *Machine) ExpectsText(userID int64) bool {
	return m.store.ExpectsText(userID)
}

// Start handles the reset command: any in-flight flow is abandoned with no
// backend write and the menu is rendered fresh.
func (m *Machine) Start(ctx context.Context, userID int64, role access.Role, out Outbox) error {
	return m.store.With(userID, role, func(s *Session) error {
		out.Delete(s.Working)
		s.Working = nil
		s.reset()
		return m.showMenu(ctx, s, out)
	})
}

// Press handles a button tap. Payload is "key:value".
func (m *Machine) Press(ctx context.Context, userID int64, role access.Role, payload string, out Outbox) error {
	key, value, _ := strings.Cut(payload, ":")
	return m.store.With(userID, role, func(s *Session) error {
		from := s.State
		err := m.press(ctx, s, out, key, value)
		m.logTransition(ctx, s, "press", payload, from, err)
		return err
	})
}

// Text handles a free-text message.
func (m *Machine) Text(ctx context.Context, userID int64, role access.Role, text string, out Outbox) error {
	return m.store.With(userID, role, func(s *Session) error {
		from := s.State
		err := m.text(ctx, s, out, text)
		m.logTransition(ctx, s, "text", "", from, err)
		return err
	})
}

func (m *Machine) logTransition(ctx context.Context, s *Session, input, payload string, from State, err error) {
	attrs := []slog.Attr{
		slog.String("input", input),
		slog.String("state", from.String()),
		slog.String("next", s.State.String()),
	}
	if payload != "" {
		attrs = append(attrs, slog.String("cb_key", payload))
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
	}
	logger.Debug(ctx, "dialog", "event.handled", attrs...)
}

func (m *Machine) press(ctx context.Context, s *Session, out Outbox, key, value string) error {
	if key == "back" {
		return m.goBack(ctx, s, out, value)
	}

	switch s.State {
	case StateMenu:
		return m.pressMenu(ctx, s, out, key, value)
	case StateAddChooseType:
		if key == "type" {
			return m.chooseKind(ctx, s, out, value)
		}
	case StateExpenseCategory:
		if key == "expcat" {
			return m.chooseCategory(ctx, s, out, value)
		}
	case StateIncomeCategory:
		if key == "inccat" {
			return m.chooseCategory(ctx, s, out, value)
		}
	case StatePaymentTypeSelect:
		if key == "payment" {
			return m.choosePayment(ctx, s, out, value)
		}
	case StateCommentEntry:
		if key == "comment" && value == "skip" {
			return m.skipComment(ctx, s, out)
		}
	case StateAnalysisPeriod:
		if key == "aperiod" {
			return m.choosePeriod(ctx, s, out, value)
		}
	case StateAnalysisType:
		if key == "atype" {
			return m.runAnalysis(ctx, s, out, value)
		}
	case StateSpecialReports:
		if key == "special" {
			return m.runSpecialReport(ctx, s, out, value)
		}
	case StateBalanceMenu:
		if key == "balance" {
			return m.startBalanceEdit(ctx, s, out, value)
		}
	case StateDebtsChooseType:
		switch key {
		case "debts_type":
			return m.showDebts(ctx, s, out, value)
		case "debts":
			if value == "edit" {
				return m.startDebtsEdit(ctx, s, out)
			}
		}
	}

	// Stale button from an earlier screen; nothing to do.
	return nil
}

func (m *Machine) text(ctx context.Context, s *Session, out Outbox, text string) error {
	switch s.State {
	case StateAmountEntry:
		return m.amountReceived(ctx, s, out, text)
	case StateCommentEntry:
		return m.commentReceived(ctx, s, out, text)
	case StateBalanceAmountEntry:
		return m.balanceAmountReceived(ctx, s, out, text)
	case StateDebtsAmountEntry:
		return m.debtsAmountReceived(ctx, s, out, text)
	}
	return nil
}

// ---- Menu ----

func (m *Machine) pressMenu(ctx context.Context, s *Session, out Outbox, key, value string) error {
	if key != "menu" {
		return nil
	}
	switch value {
	case "add":
		s.Draft = &Draft{}
		s.Pending = Pending{}
		return m.transitionTo(ctx, s, out, StateAddChooseType)
	case "analysis":
		if !s.Caps.CanViewAnalysis {
			out.Alert(textAccessDenied)
			return nil
		}
		return m.transitionTo(ctx, s, out, StateAnalysisPeriod)
	case "balance":
		if !s.Caps.CanEditBalance {
			out.Alert(textAccessDenied)
			return nil
		}
		return m.transitionTo(ctx, s, out, StateBalanceMenu)
	case "debts":
		if !s.Caps.CanEditDebts {
			out.Alert(textAccessDenied)
			return nil
		}
		return m.transitionTo(ctx, s, out, StateDebtsChooseType)
	}
	return nil
}

// showMenu renders the main screen as a fresh message. Ledger read failures
// degrade to an error text with the menu keyboard still attached, so the
// user can navigate and retry.
func (m *Machine) showMenu(ctx context.Context, s *Session, out Outbox) error {
	text, err := m.menuText(ctx, s)
	if err != nil {
		text = errorText(err)
	}
	ref, sendErr := out.Send(text, menuKeyboard(s.Caps))
	if sendErr != nil {
		return sendErr
	}
	s.Working = ref
	s.State = StateMenu
	return nil
}

func (m *Machine) menuText(ctx context.Context, s *Session) (string, error) {
	if s.Caps.CanViewAnalysis {
		summary, err := m.ledger.SummaryMonth(ctx, s.UserID)
		if err != nil {
			return "", err
		}
		txs, err := m.ledger.LastTransactions(ctx, s.UserID, 5)
		if err != nil {
			return "", err
		}
		return render.OwnerSummary(summary, txs), nil
	}
	txs, err := m.ledger.LastTransactions(ctx, s.UserID, 10)
	if err != nil {
		return "", err
	}
	return render.EmployeeSummary(m.now(), txs), nil
}

// ---- Transaction entry ----

func (m *Machine) chooseKind(ctx context.Context, s *Session, out Outbox, kind string) error {
	if kind != ledger.KindExpense && kind != ledger.KindIncome {
		return nil
	}

	// Fresh catalog per entry flow; selections index into this snapshot.
	catalog, err := m.ledger.Categories(ctx, s.UserID)
	if err != nil {
		return m.showReadError(s, out, err)
	}
	s.Catalog = catalog
	s.Draft = &Draft{Kind: kind}

	if kind == ledger.KindExpense {
		return m.transitionTo(ctx, s, out, StateExpenseCategory)
	}
	return m.transitionTo(ctx, s, out, StateIncomeCategory)
}

func (m *Machine) chooseCategory(ctx context.Context, s *Session, out Outbox, value string) error {
	idx, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("dialog: bad category payload %q: %w", value, err)
	}
	if s.Catalog == nil || s.Draft == nil {
		return errors.New("dialog: category selected with no active entry flow")
	}

	list := s.Catalog.Expenses
	if s.Draft.Kind == ledger.KindIncome {
		list = s.Catalog.Incomes
	}
	if idx < 0 || idx >= len(list) {
		return fmt.Errorf("dialog: category index %d out of range (%d options)", idx, len(list))
	}

	s.Draft.Category = list[idx]
	if s.Draft.Kind == ledger.KindIncome {
		// Income categories double as the payment method.
		s.Draft.PaymentType = list[idx]
	}
	return m.transitionTo(ctx, s, out, StateAmountEntry)
}

func (m *Machine) amountReceived(ctx context.Context, s *Session, out Outbox, text string) error {
	out.DeleteInbound()

	amount, ok := money.Parse(text)
	if !ok {
		return m.reprompt(s, out, textAmountInvalid)
	}
	if s.Draft == nil {
		return errors.New("dialog: amount received with no active entry flow")
	}
	s.Draft.Amount = amount
	s.Draft.AmountSet = true

	if s.Draft.Kind == ledger.KindExpense {
		return m.transitionTo(ctx, s, out, StatePaymentTypeSelect)
	}
	return m.transitionTo(ctx, s, out, StateCommentEntry)
}

func (m *Machine) choosePayment(ctx context.Context, s *Session, out Outbox, value string) error {
	idx, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("dialog: bad payment payload %q: %w", value, err)
	}
	if s.Catalog == nil || s.Draft == nil {
		return errors.New("dialog: payment selected with no active entry flow")
	}
	if idx < 0 || idx >= len(s.Catalog.PaymentTypes) {
		return fmt.Errorf("dialog: payment index %d out of range (%d options)", idx, len(s.Catalog.PaymentTypes))
	}

	s.Draft.PaymentType = s.Catalog.PaymentTypes[idx]
	return m.transitionTo(ctx, s, out, StateCommentEntry)
}

func (m *Machine) skipComment(ctx context.Context, s *Session, out Outbox) error {
	if s.Draft == nil {
		return errors.New("dialog: comment skipped with no active entry flow")
	}
	if s.Draft.Kind == ledger.KindIncome {
		// Income has no skip button; a stale press is treated as an
		// empty comment, which income rejects.
		return m.reprompt(s, out, incomeCommentRequired(s.Draft.Category))
	}
	s.Draft.Comment = ""
	s.Draft.CommentSet = true
	return m.finalize(ctx, s, out)
}

func (m *Machine) commentReceived(ctx context.Context, s *Session, out Outbox, text string) error {
	out.DeleteInbound()

	if s.Draft == nil {
		return errors.New("dialog: comment received with no active entry flow")
	}
	comment := strings.TrimSpace(text)
	if s.Draft.Kind == ledger.KindIncome && comment == "" {
		return m.reprompt(s, out, incomeCommentRequired(s.Draft.Category))
	}

	s.Draft.Comment = comment
	s.Draft.CommentSet = true
	return m.finalize(ctx, s, out)
}

// finalize is the single submit point. The draft is discarded and the menu
// re-rendered no matter how the backend call went.
func (m *Machine) finalize(ctx context.Context, s *Session, out Outbox) error {
	draft := s.Draft.toLedger()

	out.Delete(s.Working)
	s.Working = nil

	err := m.ledger.Add(ctx, s.UserID, draft)

	s.Draft = nil
	s.Catalog = nil
	s.State = StateMenu

	text := render.Saved(draft)
	if err != nil {
		text = errorText(err)
	}
	if _, sendErr := out.Send(text, nil); sendErr != nil {
		return sendErr
	}
	return m.showMenu(ctx, s, out)
}

// ---- Analysis ----

func (m *Machine) choosePeriod(ctx context.Context, s *Session, out Outbox, value string) error {
	if value == "special" {
		return m.transitionTo(ctx, s, out, StateSpecialReports)
	}
	switch value {
	case ledger.PeriodToday, ledger.PeriodWeek, ledger.PeriodMonth, ledger.PeriodYear:
	default:
		return nil
	}
	s.Pending.AnalysisPeriod = value
	return m.transitionTo(ctx, s, out, StateAnalysisType)
}

func (m *Machine) runAnalysis(ctx context.Context, s *Session, out Outbox, kind string) error {
	period := s.Pending.AnalysisPeriod
	if period == "" {
		period = ledger.PeriodMonth
	}
	label := analysisPeriodLabel(period)

	var report string
	switch kind {
	case "income":
		res, err := m.ledger.AnalysisIncome(ctx, s.UserID, period)
		if err != nil {
			return m.showReadError(s, out, err)
		}
		report = render.AnalysisIncome(label, res)
	case "expense":
		res, err := m.ledger.AnalysisExpense(ctx, s.UserID, period)
		if err != nil {
			return m.showReadError(s, out, err)
		}
		report = render.AnalysisExpense(label, res)
	default:
		return nil
	}

	return m.deliverReport(ctx, s, out, report)
}

func (m *Machine) runSpecialReport(ctx context.Context, s *Session, out Outbox, kind string) error {
	var report string
	switch kind {
	case "compare":
		res, err := m.ledger.CompareMonths(ctx, s.UserID)
		if err != nil {
			return m.showReadError(s, out, err)
		}
		report = render.CompareMonths(res)
	case "average":
		res, err := m.ledger.AverageCheck(ctx, s.UserID)
		if err != nil {
			return m.showReadError(s, out, err)
		}
		report = render.AverageCheckReport(res)
	case "top":
		res, err := m.ledger.TopExpenses(ctx, s.UserID)
		if err != nil {
			return m.showReadError(s, out, err)
		}
		report = render.TopExpensesReport(res)
	default:
		return nil
	}

	return m.deliverReport(ctx, s, out, report)
}

func (m *Machine) deliverReport(ctx context.Context, s *Session, out Outbox, report string) error {
	out.Delete(s.Working)
	s.Working = nil
	s.Pending = Pending{}

	if _, err := out.Send(report, nil); err != nil {
		return err
	}
	return m.showMenu(ctx, s, out)
}

// ---- Balance ----

func (m *Machine) startBalanceEdit(ctx context.Context, s *Session, out Outbox, paymentKind string) error {
	switch paymentKind {
	case "cash", "qr", "bn":
	default:
		return nil
	}
	s.Pending.BalanceKind = paymentKind
	return m.transitionTo(ctx, s, out, StateBalanceAmountEntry)
}

func (m *Machine) balanceAmountReceived(ctx context.Context, s *Session, out Outbox, text string) error {
	out.DeleteInbound()

	amount, ok := money.Parse(text)
	if !ok {
		return m.reprompt(s, out, textAmountInvalid)
	}

	paymentKind := s.Pending.BalanceKind
	err := m.ledger.SetBalance(ctx, s.UserID, amount, paymentKind)

	out.Delete(s.Working)
	s.Working = nil
	s.Pending = Pending{}
	s.State = StateMenu

	text = render.BalanceSet(paymentKind, amount)
	if err != nil {
		text = errorText(err)
	}
	if _, sendErr := out.Send(text, nil); sendErr != nil {
		return sendErr
	}
	return m.showMenu(ctx, s, out)
}

// ---- Debts ----

func (m *Machine) showDebts(ctx context.Context, s *Session, out Outbox, debtKind string) error {
	switch debtKind {
	case ledger.DebtOweMe, ledger.DebtIOwe:
	default:
		return nil
	}

	amount, err := m.ledger.Debts(ctx, s.UserID, debtKind)
	if err != nil {
		return m.showReadError(s, out, err)
	}

	s.Pending.DebtKind = debtKind
	return m.show(s, out, render.DebtsScreen(debtKind, amount), debtsActionsKeyboard())
}

func (m *Machine) startDebtsEdit(ctx context.Context, s *Session, out Outbox) error {
	if s.Pending.DebtKind == "" {
		return nil
	}
	return m.transitionTo(ctx, s, out, StateDebtsAmountEntry)
}

func (m *Machine) debtsAmountReceived(ctx context.Context, s *Session, out Outbox, text string) error {
	out.DeleteInbound()

	amount, ok := money.Parse(text)
	if !ok {
		return m.reprompt(s, out, textAmountInvalid)
	}

	debtKind := s.Pending.DebtKind
	err := m.ledger.SetDebts(ctx, s.UserID, amount, debtKind)

	out.Delete(s.Working)
	s.Working = nil
	s.Pending = Pending{}
	s.State = StateMenu

	text = render.DebtsSet(debtKind, amount)
	if err != nil {
		text = errorText(err)
	}
	if _, sendErr := out.Send(text, nil); sendErr != nil {
		return sendErr
	}
	return m.showMenu(ctx, s, out)
}

// ---- Navigation ----

// goBack routes an explicit back target, falling back to the current
// state's default predecessor for stale or unqualified presses.
func (m *Machine) goBack(ctx context.Context, s *Session, out Outbox, target string) error {
	var to State
	switch target {
	case "menu":
		out.Delete(s.Working)
		s.Working = nil
		s.reset()
		return m.showMenu(ctx, s, out)
	case "choose_type":
		to = StateAddChooseType
	case "analysis_periods":
		to = StateAnalysisPeriod
	case "debts_type":
		to = StateDebtsChooseType
	default:
		to = defaultBack(s)
	}

	if to == StateMenu {
		out.Delete(s.Working)
		s.Working = nil
		s.reset()
		return m.showMenu(ctx, s, out)
	}
	return m.transitionTo(ctx, s, out, to)
}

// defaultBack is the predecessor for every state; no state lacks one.
func defaultBack(s *Session) State {
	switch s.State {
	case StateAddChooseType, StateAnalysisPeriod, StateBalanceMenu, StateDebtsChooseType:
		return StateMenu
	case StateExpenseCategory, StateIncomeCategory:
		return StateAddChooseType
	case StateAmountEntry:
		if s.Draft != nil && s.Draft.Kind == ledger.KindIncome {
			return StateIncomeCategory
		}
		return StateExpenseCategory
	case StatePaymentTypeSelect:
		return StateAmountEntry
	case StateCommentEntry:
		if s.Draft != nil && s.Draft.Kind == ledger.KindExpense {
			return StatePaymentTypeSelect
		}
		return StateAmountEntry
	case StateAnalysisType, StateSpecialReports:
		return StateAnalysisPeriod
	case StateBalanceAmountEntry:
		return StateBalanceMenu
	case StateDebtsAmountEntry:
		return StateDebtsChooseType
	}
	return StateMenu
}

// transitionTo renders the target state's prompt and moves the session there.
// States whose prompt needs a ledger read keep the current state on failure.
func (m *Machine) transitionTo(ctx context.Context, s *Session, out Outbox, to State) error {
	switch to {
	case StateMenu:
		return m.showMenu(ctx, s, out)

	case StateAddChooseType:
		if err := m.show(s, out, textChooseType, typeKeyboard()); err != nil {
			return err
		}

	case StateExpenseCategory, StateIncomeCategory:
		if s.Catalog == nil {
			catalog, err := m.ledger.Categories(ctx, s.UserID)
			if err != nil {
				return m.showReadError(s, out, err)
			}
			s.Catalog = catalog
		}
		text, kb := textExpenseWhat, expenseCategoriesKeyboard(s.Catalog.Expenses)
		if to == StateIncomeCategory {
			text, kb = textIncomeWhere, incomeCategoriesKeyboard(s.Catalog.Incomes)
		}
		if err := m.show(s, out, text, kb); err != nil {
			return err
		}

	case StateAmountEntry:
		if err := m.show(s, out, textAmountPrompt, nil); err != nil {
			return err
		}

	case StatePaymentTypeSelect:
		if s.Catalog == nil {
			return errors.New("dialog: payment prompt with no catalog")
		}
		if err := m.show(s, out, textPaymentFrom, paymentKeyboard(s.Catalog.PaymentTypes)); err != nil {
			return err
		}

	case StateCommentEntry:
		text := textCommentAsk
		var kb Keyboard
		if s.Draft != nil && s.Draft.Kind == ledger.KindExpense {
			kb = skipCommentKeyboard()
		} else if s.Draft != nil {
			text = incomeCommentPrompt(s.Draft.Category)
		}
		if err := m.show(s, out, text, kb); err != nil {
			return err
		}

	case StateAnalysisPeriod:
		if err := m.show(s, out, textAnalysisPeriods, analysisPeriodsKeyboard()); err != nil {
			return err
		}

	case StateAnalysisType:
		period := s.Pending.AnalysisPeriod
		if period == "" {
			period = ledger.PeriodMonth
		}
		if err := m.show(s, out, analysisTypePrompt(period), analysisTypeKeyboard()); err != nil {
			return err
		}

	case StateSpecialReports:
		if err := m.show(s, out, textSpecialReports, specialReportsKeyboard()); err != nil {
			return err
		}

	case StateBalanceMenu:
		balances, err := m.ledger.AllBalances(ctx, s.UserID)
		if err != nil {
			return m.showReadError(s, out, err)
		}
		if err := m.show(s, out, render.BalancesScreen(balances), balanceKeyboard()); err != nil {
			return err
		}

	case StateBalanceAmountEntry:
		if err := m.show(s, out, balancePrompt(s.Pending.BalanceKind), nil); err != nil {
			return err
		}

	case StateDebtsChooseType:
		if err := m.show(s, out, textDebtsWhich, debtsTypeKeyboard()); err != nil {
			return err
		}

	case StateDebtsAmountEntry:
		if err := m.show(s, out, debtsPrompt(s.Pending.DebtKind), nil); err != nil {
			return err
		}
	}

	s.State = to
	return nil
}

// show edits the working message in place, sending a fresh one when there
// is nothing to edit or the edit is refused.
func (m *Machine) show(s *Session, out Outbox, text string, kb Keyboard) error {
	if s.Working != nil {
		if err := out.Edit(s.Working, text, kb); err == nil {
			return nil
		}
	}
	ref, err := out.Send(text, kb)
	if err != nil {
		return err
	}
	s.Working = ref
	return nil
}

// reprompt replaces the working message with guidance text, keeping state.
func (m *Machine) reprompt(s *Session, out Outbox, text string) error {
	out.Delete(s.Working)
	s.Working = nil
	ref, err := out.Send(text, nil)
	if err != nil {
		return err
	}
	s.Working = ref
	return nil
}

// showReadError surfaces a read failure without touching state, so the
// user can retry by re-issuing the same input.
func (m *Machine) showReadError(s *Session, out Outbox, err error) error {
	_, sendErr := out.Send(errorText(err), nil)
	return sendErr
}

func incomeCommentPrompt(category string) string {
	if category == incomeCategoryCompany {
		return textCommentCompany
	}
	return textCommentClient
}

func incomeCommentRequired(category string) string {
	if category == incomeCategoryCompany {
		return textCommentCompanyRequired
	}
	return textCommentClientRequired
}

// errorText maps gateway failures to user-facing text: backend messages
// verbatim, transport failures as a generic notice.
func errorText(err error) string {
	var be *ledger.BackendError
	if errors.As(err, &be) {
		return "Error: " + be.Message
	}
	return textTransportDown
}
