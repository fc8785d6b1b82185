package user

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetcoach/internal/domain/budget"
	"budgetcoach/internal/domain/transaction"
)

const day = 24 * time.Hour

// SampleTransactions returns the demo ledger dated relative to now.
// Dates are truncated to the day.
func SampleTransactions(userID string, now time.Time) []transaction.CreateParams {
	today := now.UTC().Truncate(day)
	return []transaction.CreateParams{
		{UserID: userID, Date: today, Description: "Grocery Shopping", Category: "Food", Amount: -150.50},
		{UserID: userID, Date: today, Description: "Salary Deposit", Category: "Income", Amount: 5000.00},
		{UserID: userID, Date: today.Add(-7 * day), Description: "Netflix Subscription", Category: "Entertainment", Amount: -15.99},
		{UserID: userID, Date: today.Add(-14 * day), Description: "Gas Station", Category: "Transportation", Amount: -45.00},
		{UserID: userID, Date: today.Add(-21 * day), Description: "Amazon Purchase", Category: "Shopping", Amount: -89.99},
	}
}

// SampleBudgets returns the demo budgets matching SampleTransactions
func SampleBudgets(userID string) []budget.CreateParams {
	return []budget.CreateParams{
		{UserID: userID, Category: "Food", Amount: 500.00, Spent: 150.50},
		{UserID: userID, Category: "Transportation", Amount: 200.00, Spent: 45.00},
		{UserID: userID, Category: "Entertainment", Amount: 100.00, Spent: 15.99},
		{UserID: userID, Category: "Shopping", Amount: 300.00, Spent: 89.99},
		{UserID: userID, Category: "Utilities", Amount: 250.00, Spent: 0.00},
	}
}

// Seed reports what SeedSampleData created
type Seed struct {
	Transactions int `json:"transactions"`
	Budgets      int `json:"budgets"`
}

// SeedSampleData stores the demo ledger and budgets for an existing user.
// Cached lists are dropped so the next read loads the new records.
func (s *Service) SeedSampleData(ctx context.Context, userID string, now time.Time) (*Seed, error) {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	txs := SampleTransactions(userID, now)
	budgets := SampleBudgets(userID)

	for i := range txs {
		if err := txs[i].Validate(); err != nil {
			return nil, err
		}
	}
	for i := range budgets {
		if err := budgets[i].Validate(); err != nil {
			return nil, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for _, p := range txs {
			if _, err := s.transactions.Create(gctx, p); err != nil {
				return fmt.Errorf("failed to seed transaction %q: %w", p.Description, err)
			}
		}
		return nil
	})
	g.Go(func() error {
		for _, p := range budgets {
			if _, err := s.budgets.Create(gctx, p); err != nil {
				return fmt.Errorf("failed to seed budget %q: %w", p.Category, err)
			}
		}
		return nil
	})

	err := g.Wait()
	if s.cache != nil {
		s.cache.Clear(userID)
	}
	if err != nil {
		return nil, err
	}

	return &Seed{Transactions: len(txs), Budgets: len(budgets)}, nil
}
