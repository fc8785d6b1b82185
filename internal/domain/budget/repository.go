package budget

import "context"

// Repository defines the interface for budget data access.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Budget, error)

	// GetByID returns ErrNotFound when no document exists
	GetByID(ctx context.Context, id string) (*Budget, error)

	// ListByUserID returns the user's budgets ordered by category
	ListByUserID(ctx context.Context, userID string) ([]*Budget, error)

	// UpdateSpent sets spent to an absolute value
	UpdateSpent(ctx context.Context, id string, spent float64) (*Budget, error)

	// AdjustSpent adds delta to spent atomically and returns the updated
	// budget. It returns ErrNegativeSpent, leaving spent unchanged, when the
	// result would drop below zero.
	AdjustSpent(ctx context.Context, id string, delta float64) (*Budget, error)

	Delete(ctx context.Context, id string) error

	DeleteAllByUserID(ctx context.Context, userID string) (int, error)
}

// Cache holds per-owner budget lists between requests.
// Implemented by session.Store.
type Cache interface {
	Budgets(userID string) ([]*Budget, bool)
	SetBudgets(userID string, list []*Budget)
	PutBudget(userID string, b *Budget)
	RemoveBudget(userID, id string)
}
