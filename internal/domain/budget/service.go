package budget

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Change is the result of a spent mutation. Crossed is true when the budget
// went from within its allocation to over it.
type Change struct {
	Budget  *Budget `json:"budget"`
	Crossed bool    `json:"crossedLimit"`
}

// Service contains the business logic for budget operations
type Service struct {
	repo  Repository
	cache Cache
}

// NewService creates a new budget service. cache may be nil.
func NewService(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Create validates and stores a new budget
func (s *Service) Create(ctx context.Context, params CreateParams) (*Budget, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	b, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}

	s.put(b)
	return b, nil
}

// Get returns a budget owned by userID
func (s *Service) Get(ctx context.Context, userID, id string) (*Budget, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	return b, nil
}

// List returns every budget of the user, served from the session cache
// when it holds the list.
func (s *Service) List(ctx context.Context, userID string) ([]*Budget, error) {
	if s.cache != nil {
		if list, ok := s.cache.Budgets(userID); ok {
			return list, nil
		}
	}

	list, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	if s.cache != nil {
		s.cache.SetBudgets(userID, list)
	}
	return list, nil
}

// UpdateSpent sets the spent value of a budget
func (s *Service) UpdateSpent(ctx context.Context, userID, id string, spent float64) (*Change, error) {
	if math.IsNaN(spent) || math.IsInf(spent, 0) {
		return nil, fmt.Errorf("%w: spent must be a finite number", ErrInvalidInput)
	}
	if spent < 0 {
		return nil, ErrNegativeSpent
	}

	before, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	after, err := s.repo.UpdateSpent(ctx, id, spent)
	if err != nil {
		return nil, fmt.Errorf("failed to update budget %s: %w", id, err)
	}

	s.put(after)
	return &Change{Budget: after, Crossed: !before.IsOver() && after.IsOver()}, nil
}

// AdjustSpent adds delta (which may be negative) to the spent value of a budget
func (s *Service) AdjustSpent(ctx context.Context, userID, id string, delta float64) (*Change, error) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return nil, fmt.Errorf("%w: delta must be a finite number", ErrInvalidInput)
	}

	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}

	// the repository enforces the non-negative bound in the same write
	after, err := s.repo.AdjustSpent(ctx, id, delta)
	if errors.Is(err, ErrNegativeSpent) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust budget %s: %w", id, err)
	}

	s.put(after)
	return adjusted(after, delta), nil
}

// adjusted derives the crossing from the stored result so a concurrent
// write between read and update cannot skew it.
func adjusted(after *Budget, delta float64) *Change {
	wasOver := after.Spent-delta > after.Amount
	return &Change{Budget: after, Crossed: !wasOver && after.IsOver()}
}

// AdjustSpentByCategory adds delta to every budget of the user with the
// given category label. Budgets that would go negative are rejected before
// any write. A budget that turns negative between the check and its write
// stops the run with the changes applied so far.
func (s *Service) AdjustSpentByCategory(ctx context.Context, userID, category string, delta float64) ([]*Change, error) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return nil, fmt.Errorf("%w: delta must be a finite number", ErrInvalidInput)
	}

	list, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	var matched []*Budget
	for _, b := range list {
		if b.Category == category {
			if b.Spent+delta < 0 {
				return nil, ErrNegativeSpent
			}
			matched = append(matched, b)
		}
	}
	if len(matched) == 0 {
		return nil, ErrNotFound
	}

	changes := make([]*Change, 0, len(matched))
	for _, before := range matched {
		after, err := s.repo.AdjustSpent(ctx, before.ID, delta)
		if err != nil {
			return changes, fmt.Errorf("failed to adjust budget %s: %w", before.ID, err)
		}
		s.put(after)
		changes = append(changes, adjusted(after, delta))
	}

	return changes, nil
}

// Delete removes a budget owned by userID
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete budget %s: %w", id, err)
	}

	if s.cache != nil {
		s.cache.RemoveBudget(userID, id)
	}

	logrus.WithFields(logrus.Fields{"user_id": userID, "budget_id": id}).Info("Budget deleted")
	return nil
}

func (s *Service) put(b *Budget) {
	if s.cache != nil {
		s.cache.PutBudget(b.UserID, b)
	}
}
