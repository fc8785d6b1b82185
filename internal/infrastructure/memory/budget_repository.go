package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"budgetcoach/internal/domain/budget"
)

type BudgetRepository struct {
	mu    sync.RWMutex
	items map[string]*budget.Budget
}

func NewBudgetRepository() *BudgetRepository {
	return &BudgetRepository{items: make(map[string]*budget.Budget)}
}

func (r *BudgetRepository) Create(_ context.Context, params budget.CreateParams) (*budget.Budget, error) {
	b := budget.New(uuid.NewString(), params)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[b.ID] = b

	cp := *b
	return &cp, nil
}

func (r *BudgetRepository) GetByID(_ context.Context, id string) (*budget.Budget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.items[id]
	if !ok {
		return nil, budget.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *BudgetRepository) ListByUserID(_ context.Context, userID string) ([]*budget.Budget, error) {
	r.mu.RLock()
	var list []*budget.Budget
	for _, b := range r.items {
		if b.UserID == userID {
			cp := *b
			list = append(list, &cp)
		}
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].Category != list[j].Category {
			return list[i].Category < list[j].Category
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *BudgetRepository) UpdateSpent(_ context.Context, id string, spent float64) (*budget.Budget, error) {
	return r.mutate(id, func(b *budget.Budget) error {
		b.Spent = spent
		return nil
	})
}

func (r *BudgetRepository) AdjustSpent(_ context.Context, id string, delta float64) (*budget.Budget, error) {
	return r.mutate(id, func(b *budget.Budget) error {
		if b.Spent+delta < 0 {
			return budget.ErrNegativeSpent
		}
		b.Spent += delta
		return nil
	})
}

func (r *BudgetRepository) mutate(id string, fn func(*budget.Budget) error) (*budget.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.items[id]
	if !ok {
		return nil, budget.ErrNotFound
	}
	if err := fn(b); err != nil {
		return nil, err
	}

	cp := *b
	return &cp, nil
}

func (r *BudgetRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return budget.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *BudgetRepository) DeleteAllByUserID(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, b := range r.items {
		if b.UserID == userID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

var _ budget.Repository = (*BudgetRepository)(nil)
