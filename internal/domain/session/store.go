package session

import (
	"sync"
	"time"

	"budgetcoach/internal/domain/budget"
	"budgetcoach/internal/domain/transaction"
)

// DefaultTTL bounds how long a loaded list is served without a reload
const DefaultTTL = 10 * time.Minute

type record struct {
	transactions []*transaction.Transaction
	txLoaded     time.Time

	budgets      []*budget.Budget
	budgetLoaded time.Time
}

// Store caches each owner's transactions and budgets. Lists are replaced
// whole on load and patched in place by writes. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	ttl     time.Duration
	records map[string]*record
	now     func() time.Time
}

// NewStore creates a store whose lists go stale after ttl.
// A non-positive ttl uses DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{ttl: ttl, records: make(map[string]*record), now: time.Now}
}

func (s *Store) fresh(loaded time.Time) bool {
	return !loaded.IsZero() && s.now().Sub(loaded) < s.ttl
}

// record returns the owner's record, creating it. Caller holds s.mu.
func (s *Store) record(owner string) *record {
	r, ok := s.records[owner]
	if !ok {
		r = &record{}
		s.records[owner] = r
	}
	return r
}

// Transactions returns a copy of the cached list, newest first
func (s *Store) Transactions(owner string) ([]*transaction.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[owner]
	if !ok || !s.fresh(r.txLoaded) {
		return nil, false
	}
	return append([]*transaction.Transaction(nil), r.transactions...), true
}

// SetTransactions replaces the cached list
func (s *Store) SetTransactions(owner string, list []*transaction.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.record(owner)
	r.transactions = append([]*transaction.Transaction(nil), list...)
	r.txLoaded = s.now()
}

// AddTransaction inserts t keeping the repository order: date descending,
// then ID descending.
// Nothing happens when no list is loaded.
func (s *Store) AddTransaction(owner string, t *transaction.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.records[owner]; ok && !r.txLoaded.IsZero() {
		r.insert(t)
	}
}

// insert places t before the first entry that sorts after it. Caller
// holds s.mu.
func (r *record) insert(t *transaction.Transaction) {
	i := 0
	for i < len(r.transactions) && sortsBefore(r.transactions[i], t) {
		i++
	}
	r.transactions = append(r.transactions, nil)
	copy(r.transactions[i+1:], r.transactions[i:])
	r.transactions[i] = t
}

func sortsBefore(a, b *transaction.Transaction) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.ID > b.ID
}

// ReplaceTransaction swaps the cached entry with the same ID. The entry is
// reinserted since its date may have changed.
func (s *Store) ReplaceTransaction(owner string, t *transaction.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[owner]
	if !ok {
		return
	}
	for i, old := range r.transactions {
		if old.ID == t.ID {
			r.transactions = append(r.transactions[:i], r.transactions[i+1:]...)
			r.insert(t)
			return
		}
	}
}

// RemoveTransaction drops the cached entry with the given ID
func (s *Store) RemoveTransaction(owner, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[owner]
	if !ok {
		return
	}
	for i, t := range r.transactions {
		if t.ID == id {
			r.transactions = append(r.transactions[:i], r.transactions[i+1:]...)
			return
		}
	}
}

// Budgets returns a copy of the cached budget list
func (s *Store) Budgets(owner string) ([]*budget.Budget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[owner]
	if !ok || !s.fresh(r.budgetLoaded) {
		return nil, false
	}
	return append([]*budget.Budget(nil), r.budgets...), true
}

// SetBudgets replaces the cached budget list
func (s *Store) SetBudgets(owner string, list []*budget.Budget) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.record(owner)
	r.budgets = append([]*budget.Budget(nil), list...)
	r.budgetLoaded = s.now()
}

// PutBudget inserts b or replaces the entry with the same ID.
// Nothing happens when no list is loaded.
func (s *Store) PutBudget(owner string, b *budget.Budget) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[owner]
	if !ok || r.budgetLoaded.IsZero() {
		return
	}
	for i, old := range r.budgets {
		if old.ID == b.ID {
			r.budgets[i] = b
			return
		}
	}
	r.budgets = append(r.budgets, b)
}

// RemoveBudget drops the cached budget with the given ID
func (s *Store) RemoveBudget(owner, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[owner]
	if !ok {
		return
	}
	for i, b := range r.budgets {
		if b.ID == id {
			r.budgets = append(r.budgets[:i], r.budgets[i+1:]...)
			return
		}
	}
}

// Clear forgets everything cached for the owner. Called on sign-out and
// account teardown.
func (s *Store) Clear(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, owner)
}

// Compile-time checks
var (
	_ transaction.Cache = (*Store)(nil)
	_ budget.Cache      = (*Store)(nil)
)
