package user

import (
	"context"

	"budgetcoach/internal/domain/budget"
	"budgetcoach/internal/domain/transaction"
)

// Repository defines the interface for user data access
type Repository interface {
	// Create returns ErrEmailTaken when the email is already registered
	Create(ctx context.Context, params CreateUserParams) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Delete(ctx context.Context, id string) error
}

// TransactionStore is the part of the transaction repository used for
// seeding and teardown
type TransactionStore interface {
	Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error)
	DeleteAllByUserID(ctx context.Context, userID string) (int, error)
}

// BudgetStore is the part of the budget repository used for seeding and
// teardown
type BudgetStore interface {
	Create(ctx context.Context, params budget.CreateParams) (*budget.Budget, error)
	DeleteAllByUserID(ctx context.Context, userID string) (int, error)
}

// SessionCache drops whatever is cached for a user
type SessionCache interface {
	Clear(owner string)
}

// ExternalIdentity is a user verified by an external identity provider
type ExternalIdentity struct {
	UID         string
	Email       string
	DisplayName string
}

// TokenVerifier verifies ID tokens issued by an external provider.
// Implemented by the Firebase Auth client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*ExternalIdentity, error)
}
