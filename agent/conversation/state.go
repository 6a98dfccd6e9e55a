// Package conversation tracks, per authenticated customer, a single pending
// confirmation spanning two consecutive messages. State lives in memory only
// and does not survive a restart.
package conversation

import (
	"strings"
	"sync"
)

type PendingAction int

const (
	ActionNone PendingAction = iota
	ActionAwaitCartConfirmation
)

// State is the pending record for one customer. At most one exists per
// customer; it is consumed by the next message regardless of outcome.
type State struct {
	Action      PendingAction
	ProductID   int64
	ProductName string
	Quantity    int
}

type Store struct {
	mu     sync.Mutex
	byUser map[int64]State
}

func NewStore() *Store {
	return &Store{byUser: make(map[int64]State)}
}

// SetPendingCart records an awaited cart-add confirmation, replacing any
// previous pending action for the customer.
func (s *Store) SetPendingCart(userID, productID int64, productName string, quantity int) {
	if userID <= 0 {
		return
	}
	if quantity <= 0 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[userID] = State{
		Action:      ActionAwaitCartConfirmation,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
	}
}

// Take atomically reads and clears the customer's pending state. The second
// return is false when nothing was pending.
func (s *Store) Take(userID int64) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.byUser[userID]
	if !ok || st.Action == ActionNone {
		return State{}, false
	}
	delete(s.byUser, userID)
	return st, true
}

// Peek reports the pending state without consuming it.
func (s *Store) Peek(userID int64) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.byUser[userID]
	if !ok || st.Action == ActionNone {
		return State{}, false
	}
	return st, true
}

// affirmatives are the recognized confirmation phrases. Matching is exact or
// by substring, after lowercasing and trimming.
var affirmatives = []string{
	"có", "co", "đúng", "dung", "ok", "oke", "okay", "yes", "đồng ý", "dong y",
	"chắc chắn", "chac chan", "muốn", "muon", "thêm", "them",
}

// IsAffirmative reports whether msg confirms a pending action.
func IsAffirmative(msg string) bool {
	m := strings.ToLower(strings.TrimSpace(msg))
	if m == "" {
		return false
	}
	for _, a := range affirmatives {
		if m == a || strings.Contains(m, a) {
			return true
		}
	}
	return false
}
