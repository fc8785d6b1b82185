// Package memory keeps records in process memory. Used for development and
// tests; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"budgetcoach/internal/domain/transaction"
)

type TransactionRepository struct {
	mu    sync.RWMutex
	items map[string]*transaction.Transaction
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{items: make(map[string]*transaction.Transaction)}
}

func (r *TransactionRepository) Create(_ context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	t := transaction.New(uuid.NewString(), params)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[t.ID] = t

	cp := *t
	return &cp, nil
}

func (r *TransactionRepository) GetByID(_ context.Context, id string) (*transaction.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok {
		return nil, transaction.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *TransactionRepository) ListByUserID(_ context.Context, userID string, limit int, after string) ([]*transaction.Transaction, error) {
	r.mu.RLock()
	var list []*transaction.Transaction
	for _, t := range r.items {
		if t.UserID == userID {
			cp := *t
			list = append(list, &cp)
		}
	}
	r.mu.RUnlock()

	// newest first, ID descending as tiebreaker so cursors are stable
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].ID > list[j].ID
	})

	if after != "" {
		idx := -1
		for i, t := range list {
			if t.ID == after {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, transaction.ErrNotFound
		}
		list = list[idx+1:]
	}

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *TransactionRepository) Replace(_ context.Context, id string, params transaction.CreateParams) (*transaction.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return nil, transaction.ErrNotFound
	}
	t := transaction.New(id, params)
	r.items[id] = t

	cp := *t
	return &cp, nil
}

func (r *TransactionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return transaction.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *TransactionRepository) DeleteAllByUserID(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, t := range r.items {
		if t.UserID == userID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

var _ transaction.Repository = (*TransactionRepository)(nil)
