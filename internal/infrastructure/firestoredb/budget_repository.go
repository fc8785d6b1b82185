package firestoredb

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"

	"budgetcoach/internal/domain/budget"
)

type budgetDoc struct {
	UserID   string  `firestore:"userId"`
	Category string  `firestore:"category"`
	Amount   float64 `firestore:"amount"`
	Spent    float64 `firestore:"spent"`
	Color    string  `firestore:"color,omitempty"`
}

func decodeBudget(snap *firestore.DocumentSnapshot) (*budget.Budget, error) {
	var d budgetDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to decode budget %s: %w", snap.Ref.ID, err)
	}
	return &budget.Budget{
		ID:       snap.Ref.ID,
		UserID:   d.UserID,
		Category: d.Category,
		Amount:   d.Amount,
		Spent:    d.Spent,
		Color:    d.Color,
	}, nil
}

type BudgetRepository struct {
	client *firestore.Client
}

func NewBudgetRepository(client *firestore.Client) *BudgetRepository {
	return &BudgetRepository{client: client}
}

func (r *BudgetRepository) col() *firestore.CollectionRef {
	return r.client.Collection(budgetsCollection)
}

func (r *BudgetRepository) Create(ctx context.Context, params budget.CreateParams) (*budget.Budget, error) {
	ref, _, err := r.col().Add(ctx, budgetDoc{
		UserID:   params.UserID,
		Category: params.Category,
		Amount:   params.Amount,
		Spent:    params.Spent,
		Color:    params.Color,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add budget: %w", err)
	}
	return budget.New(ref.ID, params), nil
}

func (r *BudgetRepository) GetByID(ctx context.Context, id string) (*budget.Budget, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, budget.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return decodeBudget(snap)
}

func (r *BudgetRepository) ListByUserID(ctx context.Context, userID string) ([]*budget.Budget, error) {
	q := r.col().Where(fieldUserID, "==", userID).OrderBy(fieldCategory, firestore.Asc)

	docs, err := collect(q.Documents(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	list := make([]*budget.Budget, 0, len(docs))
	for _, snap := range docs {
		b, err := decodeBudget(snap)
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, nil
}

func (r *BudgetRepository) UpdateSpent(ctx context.Context, id string, spent float64) (*budget.Budget, error) {
	return r.update(ctx, id, spent)
}

// AdjustSpent reads and writes spent inside one transaction so the
// non-negative check holds under concurrent adjustments.
func (r *BudgetRepository) AdjustSpent(ctx context.Context, id string, delta float64) (*budget.Budget, error) {
	ref := r.col().Doc(id)
	var updated *budget.Budget

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return budget.ErrNotFound
			}
			return err
		}
		b, err := decodeBudget(snap)
		if err != nil {
			return err
		}
		if b.Spent+delta < 0 {
			return budget.ErrNegativeSpent
		}
		b.Spent += delta
		updated = b
		return tx.Update(ref, []firestore.Update{{Path: fieldSpent, Value: b.Spent}})
	})
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) || errors.Is(err, budget.ErrNegativeSpent) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to adjust budget: %w", err)
	}
	return updated, nil
}

func (r *BudgetRepository) update(ctx context.Context, id string, spent float64) (*budget.Budget, error) {
	ref := r.col().Doc(id)
	_, err := ref.Update(ctx, []firestore.Update{{Path: fieldSpent, Value: spent}})
	if isNotFound(err) {
		return nil, budget.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *BudgetRepository) Delete(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return budget.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return nil
}

func (r *BudgetRepository) DeleteAllByUserID(ctx context.Context, userID string) (int, error) {
	return deleteWhereUser(ctx, r.client, budgetsCollection, userID)
}

var _ budget.Repository = (*BudgetRepository)(nil)
