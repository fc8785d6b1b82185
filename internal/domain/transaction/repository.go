package transaction

import "context"

// Repository defines the interface for transaction data access.
// Defined in the domain layer, implemented in the infrastructure layer.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Transaction, error)

	// GetByID returns ErrNotFound when no document exists
	GetByID(ctx context.Context, id string) (*Transaction, error)

	// ListByUserID returns the user's transactions ordered by date, newest first.
	// limit <= 0 disables the limit; after is the ID of the last document of
	// the previous page, empty for the first page.
	ListByUserID(ctx context.Context, userID string, limit int, after string) ([]*Transaction, error)

	// Replace overwrites every field of an existing transaction
	Replace(ctx context.Context, id string, params CreateParams) (*Transaction, error)

	Delete(ctx context.Context, id string) error

	// DeleteAllByUserID removes every transaction owned by the user and
	// returns the number of deleted documents
	DeleteAllByUserID(ctx context.Context, userID string) (int, error)
}

// Cache holds per-owner transaction lists between requests.
// Implemented by session.Store.
type Cache interface {
	Transactions(userID string) ([]*Transaction, bool)
	SetTransactions(userID string, list []*Transaction)
	AddTransaction(userID string, t *Transaction)
	ReplaceTransaction(userID string, t *Transaction)
	RemoveTransaction(userID, id string)
}
