package dialog

import (
	"sync"

	"github.com/m3rciful/finbot/internal/access"
	"github.com/m3rciful/finbot/internal/ledger"
)

// Draft is the transaction being assembled across turns.
// AmountSet/CommentSet track fields whose zero value is meaningful.
type Draft struct {
	Kind        string
	Category    string
	Amount      float64
	AmountSet   bool
	PaymentType string
	Comment     string
	CommentSet  bool
}

func (d *Draft) toLedger() ledger.Draft {
	return ledger.Draft{
		Kind:        d.Kind,
		Category:    d.Category,
		Amount:      d.Amount,
		PaymentType: d.PaymentType,
		Comment:     d.Comment,
	}
}

// Pending holds the transient context of non-transaction flows.
// Mutually exclusive with Draft: a session never carries both.
type Pending struct {
	AnalysisPeriod string
	BalanceKind    string
	DebtKind       string
}

// Session is one user's private conversation state. It is only ever
// mutated while its store entry is locked.
type Session struct {
	UserID  int64
	Role    access.Role
	Caps    access.Capabilities
	State   State
	Draft   *Draft
	Catalog *ledger.Catalog
	Pending Pending
	Working MsgRef
}

// reset clears everything transient and returns the session to Menu.
// The working message handle is left for the caller to dispose of.
func (s *Session) reset() {
	s.State = StateMenu
	s.Draft = nil
	s.Catalog = nil
	s.Pending = Pending{}
}

// Store maps user ids to sessions and serializes per-user event processing.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*storeEntry
}

type storeEntry struct {
	mu      sync.Mutex
	session *Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*storeEntry)}
}

func (st *Store) entry(userID int64, role access.Role) *storeEntry {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.sessions[userID]
	if !ok {
		e = &storeEntry{session: &Session{
			UserID: userID,
			Role:   role,
			Caps:   access.CapabilitiesOf(role),
			State:  StateMenu,
		}}
		st.sessions[userID] = e
	}
	return e
}

// With runs fn with the user's session under that session's lock.
// Events for the same user execute strictly one at a time; different
// users proceed concurrently. The session is created lazily on first use.
func (st *Store) With(userID int64, role access.Role, fn func(*Session) error) error {
	e := st.entry(userID, role)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.Role != role {
		e.session.Role = role
		e.session.Caps = access.CapabilitiesOf(role)
	}
	return fn(e.session)
}

// ExpectsText reports whether the user's next free-text message is input
// for an in-flight flow, without creating a session.
func (st *Store) ExpectsText(userID int64) bool {
	st.mu.Lock()
	e, ok := st.sessions[userID]
	st.mu.Unlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.State.expectsText()
}
