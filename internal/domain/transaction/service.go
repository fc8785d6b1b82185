package transaction

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RecentLimit is the number of transactions shown on the dashboard.
const RecentLimit = 5

var (
	txMeter      = otel.Meter("budgetcoach/transaction")
	txCreated, _ = txMeter.Int64Counter("transactions.created.total",
		metric.WithDescription("Transactions created by kind"),
	)
)

// Service contains the business logic for transaction operations
type Service struct {
	repo  Repository
	cache Cache
}

// NewService creates a new transaction service. cache may be nil.
func NewService(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Create validates and stores a new transaction
func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if s.cache != nil {
		s.cache.AddTransaction(params.UserID, t)
	}
	txCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", t.Kind())))

	return t, nil
}

// Get returns a transaction owned by userID
func (s *Service) Get(ctx context.Context, userID, id string) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, ErrForbidden
	}
	return t, nil
}

// List returns one page of the user's transactions, newest first.
// The cursor must reference one of the user's own transactions.
func (s *Service) List(ctx context.Context, userID string, limit int, after string) ([]*Transaction, error) {
	if after != "" {
		if _, err := s.Get(ctx, userID, after); err != nil {
			return nil, err
		}
	}
	return s.repo.ListByUserID(ctx, userID, limit, after)
}

// All returns every transaction of the user, served from the session cache
// when it holds the list.
func (s *Service) All(ctx context.Context, userID string) ([]*Transaction, error) {
	if s.cache != nil {
		if list, ok := s.cache.Transactions(userID); ok {
			return list, nil
		}
	}

	list, err := s.repo.ListByUserID(ctx, userID, 0, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	if s.cache != nil {
		s.cache.SetTransactions(userID, list)
	}
	return list, nil
}

// Recent returns the n newest transactions
func (s *Service) Recent(ctx context.Context, userID string, n int) ([]*Transaction, error) {
	if n <= 0 {
		n = RecentLimit
	}
	return s.repo.ListByUserID(ctx, userID, n, "")
}

// Replace overwrites an existing transaction owned by userID
func (s *Service) Replace(ctx context.Context, userID, id string, params CreateParams) (*Transaction, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}

	params.UserID = userID
	if err := params.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.Replace(ctx, id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to replace transaction %s: %w", id, err)
	}

	if s.cache != nil {
		s.cache.ReplaceTransaction(userID, t)
	}
	return t, nil
}

// Delete removes a transaction owned by userID
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}

	if s.cache != nil {
		s.cache.RemoveTransaction(userID, id)
	}

	logrus.WithFields(logrus.Fields{"user_id": userID, "transaction_id": id}).Info("Transaction deleted")
	return nil
}
