package dialog

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/finbot/internal/access"
	"github.com/m3rciful/finbot/internal/ledger"
)

type sentMsg struct {
	text string
	kb   Keyboard
}

type fakeOutbox struct {
	sends          []sentMsg
	edits          []sentMsg
	deletes        int
	inboundDeletes int
	alerts         []string
	nextRef        int
}

func (f *fakeOutbox) Send(text string, kb Keyboard) (MsgRef, error) {
	f.sends = append(f.sends, sentMsg{text, kb})
	f.nextRef++
	return f.nextRef, nil
}

func (f *fakeOutbox) Edit(ref MsgRef, text string, kb Keyboard) error {
	f.edits = append(f.edits, sentMsg{text, kb})
	return nil
}

func (f *fakeOutbox) Delete(ref MsgRef) {
	if ref != nil {
		f.deletes++
	}
}

func (f *fakeOutbox) DeleteInbound() { f.inboundDeletes++ }

func (f *fakeOutbox) Alert(text string) { f.alerts = append(f.alerts, text) }

func (f *fakeOutbox) lastText() string {
	if n := len(f.sends); n > 0 {
		return f.sends[n-1].text
	}
	return ""
}

func (f *fakeOutbox) allTexts() string {
	var b strings.Builder
	for _, s := range f.sends {
		b.WriteString(s.text + "\n")
	}
	for _, e := range f.edits {
		b.WriteString(e.text + "\n")
	}
	return b.String()
}

type fakeLedger struct {
	adds    []ledger.Draft
	addErr  error
	readErr error

	catalog  ledger.Catalog
	summary  ledger.Summary
	txs      []ledger.Transaction
	balances ledger.Balances
	debts    float64
}

func (f *fakeLedger) SummaryMonth(ctx context.Context, userID int64) (*ledger.Summary, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return &f.summary, nil
}

func (f *fakeLedger) LastTransactions(ctx context.Context, userID int64, limit int) ([]ledger.Transaction, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.txs, nil
}

func (f *fakeLedger) Categories(ctx context.Context, userID int64) (*ledger.Catalog, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return &f.catalog, nil
}

func (f *fakeLedger) AllBalances(ctx context.Context, userID int64) (*ledger.Balances, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return &f.balances, nil
}

func (f *fakeLedger) Add(ctx context.Context, userID int64, d ledger.Draft) error {
	f.adds = append(f.adds, d)
	return f.addErr
}

func (f *fakeLedger) AnalysisIncome(ctx context.Context, userID int64, period string) (*ledger.Breakdown, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return &ledger.Breakdown{Total: 100, ByType: map[string]float64{"Cash": 100}}, nil
}

func (f *fakeLedger) AnalysisExpense(ctx context.Context, userID int64, period string) (*ledger.Breakdown, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return &ledger.Breakdown{Total: 100, ByCategory: map[string]float64{"Tools": 100}}, nil
}

func (f *fakeLedger) CompareMonths(ctx context.Context, userID int64) (*ledger.Comparison, error) {
	return &ledger.Comparison{Year: 2026}, f.readErr
}

func (f *fakeLedger) AverageCheck(ctx context.Context, userID int64) (*ledger.AverageCheck, error) {
	return &ledger.AverageCheck{}, f.readErr
}

func (f *fakeLedger) TopExpenses(ctx context.Context, userID int64) (*ledger.TopExpenses, error) {
	return &ledger.TopExpenses{}, f.readErr
}

func (f *fakeLedger) SetBalance(ctx context.Context, userID int64, amount float64, paymentKind string) error {
	return f.addErr
}

func (f *fakeLedger) Debts(ctx context.Context, userID int64, debtKind string) (float64, error) {
	return f.debts, f.readErr
}

func (f *fakeLedger) SetDebts(ctx context.Context, userID int64, amount float64, debtKind string) error {
	return f.addErr
}

const ownerID = int64(1)

func newTestMachine() (*Machine, *Store, *fakeLedger) {
	backend := &fakeLedger{
		catalog: ledger.Catalog{
			Expenses:     []string{"Tools", "Supplies"},
			Incomes:      []string{"Cash", "Services (bank transfer)"},
			PaymentTypes: []string{"Cash", "QR code", "Bank transfer"},
		},
		summary: ledger.Summary{MonthLabel: "August 2026"},
	}
	store := NewStore()
	m := NewMachine(store, backend)
	m.now = func() time.Time { return time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC) }
	return m, store, backend
}

func sessionOf(t *testing.T, store *Store, userID int64, role access.Role) *Session {
	t.Helper()
	var got *Session
	if err := store.With(userID, role, func(s *Session) error {
		got = s
		return nil
	}); err != nil {
		t.Fatalf("session access: %v", err)
	}
	return got
}

func TestExpenseEndToEnd(t *testing.T) {
	m, store, backend := newTestMachine()
	out := &fakeOutbox{}
	ctx := context.Background()

	steps := []struct {
		press string
		text  string
	}{
		{press: "menu:add"},
		{press: "type:expense"},
		{press: "expcat:0"},
		{text: "2500"},
		{press: "payment:0"},
		{press: "comment:skip"},
	}

	if err := m.Start(ctx, ownerID, access.RoleOwner, out); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, step := range steps {
		var err error
		if step.press != "" {
			err = m.Press(ctx, ownerID, access.RoleOwner, step.press, out)
		} else {
			err = m.Text(ctx, ownerID, access.RoleOwner, step.text, out)
		}
		if err != nil {
			t.Fatalf("step %+v: %v", step, err)
		}
	}

	if len(backend.adds) != 1 {
		t.Fatalf("add calls = %d, want exactly 1", len(backend.adds))
	}
	want := ledger.Draft{
		Kind: ledger.KindExpense, Category: "Tools", Amount: 2500,
		PaymentType: "Cash", Comment: "",
	}
	if backend.adds[0] != want {
		t.Errorf("add draft = %+v, want %+v", backend.adds[0], want)
	}

	s := sessionOf(t, store, ownerID, access.RoleOwner)
	if s.State != StateMenu {
		t.Errorf("state after finalize = %v, want menu", s.State)
	}
	if s.Draft != nil {
		t.Errorf("draft not discarded after finalize")
	}
}

func TestIncomeRequiresComment(t *testing.T) {
	m, store, backend := newTestMachine()
	out := &fakeOutbox{}
	ctx := context.Background()

	if err := m.Start(ctx, ownerID, access.RoleOwner, out); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, press := range []string{"menu:add", "type:income", "inccat:1"} {
		if err := m.Press(ctx, ownerID, access.RoleOwner, press, out); err != nil {
			t.Fatalf("press %s: %v", press, err)
		}
	}
	if err := m.Text(ctx, ownerID, access.RoleOwner, "10к", out); err != nil {
		t.Fatalf("amount: %v", err)
	}

	// Empty comment is rejected; state and draft stay put.
	if err := m.Text(ctx, ownerID, access.RoleOwner, "   ", out); err != nil {
		t.Fatalf("empty comment: %v", err)
	}
	if len(backend.adds) != 0 {
		t.Fatal("empty income comment must not submit")
	}
	s := sessionOf(t, store, ownerID, access.RoleOwner)
	if s.State != StateCommentEntry {
		t.Errorf("state = %v, want comment_entry", s.State)
	}
	if s.Draft == nil || s.Draft.CommentSet {
		t.Error("comment must stay unset after rejection")
	}

	if err := m.Text(ctx, ownerID, access.RoleOwner, "Acme LLC", out); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if len(backend.adds) != 1 {
		t.Fatalf("add calls = %d, want 1", len(backend.adds))
	}
	got := backend.adds[0]
	if got.Comment != "Acme LLC" {
		t.Errorf("comment = %q", got.Comment)
	}
	if got.Category != "Services (bank transfer)" || got.PaymentType != "Services (bank transfer)" {
		t.Errorf("income category must double as payment type, got %+v", got)
	}
	if got.Amount != 10000 {
		t.Errorf("amount = %v, want 10000", got.Amount)
	}
}

func TestIncomeCompanyPrompt(t *testing.T) {
	m, _, _ := newTestMachine()
	out := &fakeOutbox{}
	ctx := context.Background()

	_ = m.Start(ctx, ownerID, access.RoleOwner, out)
	for _, press := range []string{"menu:add", "type:income", "inccat:1"} {
		_ = m.Press(ctx, ownerID, access.RoleOwner, press, out)
	}
	_ = m.Text(ctx, ownerID, access.RoleOwner, "500", out)

	if !strings.Contains(out.allTexts(), textCommentCompany) {
		t.Errorf("bank-transfer income must ask for a company name, got:\n%s", out.allTexts())
	}
}

func TestInvalidAmountReprompts(t *testing.T) {
	m, store, backend := newTestMachine()
	out := &fakeOutbox{}
	ctx := context.Background()

	_ = m.Start(ctx, ownerID, access.RoleOwner, out)
	for _, press := range []string{"menu:add", "type:expense", "expcat:1"} {
		_ = m.Press(ctx, ownerID, access.RoleOwner, press, out)
	}

	deletesBefore := out.inboundDeletes
	if err := m.Text(ctx, ownerID, access.RoleOwner, "abc", out); err != nil {
		t.Fatalf("invalid amount: %v", err)
	}

	s := sessionOf(t, store, ownerID, access.RoleOwner)
	if s.State != StateAmountEntry {
		t.Errorf("state = %v, want amount_entry", s.State)
	}
	if out.inboundDeletes != deletesBefore+1 {
		t.Error("offending user message must be deleted")
	}
	if out.lastText() != textAmountInvalid {
		t.Errorf("last message = %q, want guidance", out.lastText())
	}
	if len(backend.adds) != 0 {
		t.Error("no backend call on invalid amount")
	}
}

func TestFinalizeCleanupOnBackendError(t *testing.T) {
	m, store, backend := newTestMachine()
	backend.addErr = &ledger.BackendError{Cmd: "add", Message: "unknown category"}
	out := &fakeOutbox{}
	ctx := context.Background()

	_ = m.Start(ctx, ownerID, access.RoleOwner, out)
	for _, press := range []string{"menu:add", "type:expense", "expcat:0"} {
		_ = m.Press(ctx, ownerID, access.RoleOwner, press, out)
	}
	_ = m.Text(ctx, ownerID, access.RoleOwner, "100", out)
	_ = m.Press(ctx, ownerID, access.RoleOwner, "payment:1", out)
	if err := m.Press(ctx, ownerID, access.RoleOwner, "comment:skip", out); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	s := sessionOf(t, store, ownerID, access.RoleOwner)
	if s.State != StateMenu {
		t.Errorf("state = %v, want menu even on backend error", s.State)
	}
	if s.Draft != nil {
		t.Error("draft must be discarded on backend error")
	}
	if !strings.Contains(out.allTexts(), "Error: unknown category") {
		t.Errorf("backend message must surface verbatim:\n%s", out.allTexts())
	}
}

func TestRoleGatingLeavesStateUnchanged(t *testing.T) {
	m, store, _ := newTestMachine()
	out := &fakeOutbox{}
	ctx := context.Background()
	employee := int64(2)

	_ = m.Start(ctx, employee, access.RoleEmployee, out)

	for _, press := range []string{"menu:analysis", "menu:balance", "menu:debts"} {
		if err := m.Press(ctx, employee, access.RoleEmployee, press, out); err != nil {
			t.Fatalf("press %s: %v", press, err)
		}
	}

	s := sessionOf(t, store, employee, access.RoleEmployee)
	if s.State != StateMenu {
		t.Errorf("state = %v, want menu", s.State)
	}
	if s.Role != access.RoleEmployee {
		t.Errorf("role changed to %v", s.Role)
	}
	if len(out.alerts) != 3 {
		t.Errorf("alerts = %d, want one per rejected press", len(out.alerts))
	}
	for _, a := range out.alerts {
		if a != textAccessDenied {
			t.Errorf("alert = %q", a)
		}
	}
}

func TestResetAbandonsFlowWithoutWrite(t *testing.T) {
	m, store, backend := newTestMachine()
	out := &fakeOutbox{}
	ctx := context.Background()

	_ = m.Start(ctx, ownerID, access.RoleOwner, out)
	for _, press := range []string{"menu:add", "type:expense", "expcat:0"} {
		_ = m.Press(ctx, ownerID, access.RoleOwner, press, out)
	}
	_ = m.Text(ctx, ownerID, access.RoleOwner, "900", out)

	if err := m.Start(ctx, ownerID, access.RoleOwner, out); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if len(backend.adds) != 0 {
		t.Error("reset must not issue a backend write")
	}
	s := sessionOf(t, store, ownerID, access.RoleOwner)
	if s.State != StateMenu || s.Draft != nil || s.Catalog != nil {
		t.Errorf("session not reset: state=%v draft=%v", s.State, s.Draft)
	}
}

func TestBackDefinedFromEveryState(t *testing.T) {
	wantBack := map[State]State{
		StateMenu:               StateMenu,
		StateAddChooseType:      StateMenu,
		StateExpenseCategory:    StateAddChooseType,
		StateIncomeCategory:     StateAddChooseType,
		StateAmountEntry:        StateExpenseCategory,
		StatePaymentTypeSelect:  StateAmountEntry,
		StateCommentEntry:       StatePaymentTypeSelect,
		StateAnalysisPeriod:     StateMenu,
		StateAnalysisType:       StateAnalysisPeriod,
		StateSpecialReports:     StateAnalysisPeriod,
		StateBalanceMenu:        StateMenu,
		StateBalanceAmountEntry: StateBalanceMenu,
		StateDebtsChooseType:    StateMenu,
		StateDebtsAmountEntry:   StateDebtsChooseType,
	}

	for from, want := range wantBack {
		m, store, backend := newTestMachine()
		out := &fakeOutbox{}
		ctx := context.Background()

		err := store.With(ownerID, access.RoleOwner, func(s *Session) error {
			s.State = from
			s.Catalog = &backend.catalog
			s.Draft = &Draft{Kind: ledger.KindExpense}
			s.Pending = Pending{
				AnalysisPeriod: ledger.PeriodMonth,
				BalanceKind:    "cash",
				DebtKind:       ledger.DebtIOwe,
			}
			return nil
		})
		if err != nil {
			t.Fatalf("seed session: %v", err)
		}

		if err := m.Press(ctx, ownerID, access.RoleOwner, "back:", out); err != nil {
			t.Fatalf("back from %v: %v", from, err)
		}
		s := sessionOf(t, store, ownerID, access.RoleOwner)
		if s.State != want {
			t.Errorf("back from %v = %v, want %v", from, s.State, want)
		}
	}
}

func TestAnalysisFlow(t *testing.T) {
	m, store, _ := newTestMachine()
	out := &fakeOutbox{}
	ctx := context.Background()

	_ = m.Start(ctx, ownerID, access.RoleOwner, out)
	for _, press := range []string{"menu:analysis", "aperiod:week", "atype:income"} {
		if err := m.Press(ctx, ownerID, access.RoleOwner, press, out); err != nil {
			t.Fatalf("press %s: %v", press, err)
		}
	}

	if !strings.Contains(out.allTexts(), "Income for this week") {
		t.Errorf("report missing:\n%s", out.allTexts())
	}
	s := sessionOf(t, store, ownerID, access.RoleOwner)
	if s.State != StateMenu {
		t.Errorf("state after report = %v, want menu", s.State)
	}
	if s.Pending != (Pending{}) {
		t.Errorf("pending not cleared: %+v", s.Pending)
	}
}

func TestReadFailureKeepsState(t *testing.T) {
	m, store, backend := newTestMachine()
	out := &fakeOutbox{}
	ctx := context.Background()

	_ = m.Start(ctx, ownerID, access.RoleOwner, out)
	_ = m.Press(ctx, ownerID, access.RoleOwner, "menu:add", out)

	backend.readErr = &ledger.TransportError{Cmd: "get_categories", Reason: "timeout"}
	if err := m.Press(ctx, ownerID, access.RoleOwner, "type:expense", out); err != nil {
		t.Fatalf("press: %v", err)
	}

	s := sessionOf(t, store, ownerID, access.RoleOwner)
	if s.State != StateAddChooseType {
		t.Errorf("state = %v, want add_choose_type (retryable)", s.State)
	}
	if out.lastText() != textTransportDown {
		t.Errorf("last message = %q, want transport notice", out.lastText())
	}

	// Same input succeeds once the backend recovers.
	backend.readErr = nil
	if err := m.Press(ctx, ownerID, access.RoleOwner, "type:expense", out); err != nil {
		t.Fatalf("retry: %v", err)
	}
	s = sessionOf(t, store, ownerID, access.RoleOwner)
	if s.State != StateExpenseCategory {
		t.Errorf("state after retry = %v, want expense_category", s.State)
	}
}

func TestDebtsFlow(t *testing.T) {
	m, store, backend := newTestMachine()
	backend.debts = 1500
	out := &fakeOutbox{}
	ctx := context.Background()

	_ = m.Start(ctx, ownerID, access.RoleOwner, out)
	for _, press := range []string{"menu:debts", "debts_type:owe_me", "debts:edit"} {
		if err := m.Press(ctx, ownerID, access.RoleOwner, press, out); err != nil {
			t.Fatalf("press %s: %v", press, err)
		}
	}

	s := sessionOf(t, store, ownerID, access.RoleOwner)
	if s.State != StateDebtsAmountEntry {
		t.Fatalf("state = %v, want debts_amount_entry", s.State)
	}

	if err := m.Text(ctx, ownerID, access.RoleOwner, "3к", out); err != nil {
		t.Fatalf("amount: %v", err)
	}
	s = sessionOf(t, store, ownerID, access.RoleOwner)
	if s.State != StateMenu {
		t.Errorf("state = %v, want menu", s.State)
	}
	if !strings.Contains(out.allTexts(), "Owed to me") {
		t.Errorf("confirmation missing:\n%s", out.allTexts())
	}
}

func TestExpectsText(t *testing.T) {
	m, _, _ := newTestMachine()
	out := &fakeOutbox{}
	ctx := context.Background()

	if m.ExpectsText(ownerID) {
		t.Error("no session yet, must not expect text")
	}

	_ = m.Start(ctx, ownerID, access.RoleOwner, out)
	if m.ExpectsText(ownerID) {
		t.Error("menu state must not expect text")
	}

	for _, press := range []string{"menu:add", "type:expense", "expcat:0"} {
		_ = m.Press(ctx, ownerID, access.RoleOwner, press, out)
	}
	if !m.ExpectsText(ownerID) {
		t.Error("amount entry must expect text")
	}
}

func TestPerUserSerialization(t *testing.T) {
	store := NewStore()
	const n = 200
	counter := 0

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = store.With(ownerID, access.RoleOwner, func(s *Session) error {
				v := counter
				time.Sleep(time.Microsecond)
				counter = v + 1
				return nil
			})
		}()
	}
	wg.Wait()

	if counter != n {
		t.Errorf("counter = %d, want %d: session events interleaved", counter, n)
	}
}
