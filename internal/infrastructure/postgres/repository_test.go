package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetcoach/internal/domain/budget"
	"budgetcoach/internal/domain/transaction"
	"budgetcoach/internal/domain/user"
)

// setupTestDB connects to TEST_DATABASE_URL, applies the migrations and
// skips the test when no database is reachable.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := New(dbURL)
	if err != nil {
		t.Skipf("test database unreachable: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(dbURL))
	return db
}

func TestTransactionRepository_Keyset(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	owner := uuid.NewString()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// two entries share a date to exercise the id tiebreaker
	dates := []time.Time{base, base, base.AddDate(0, 0, 1), base.AddDate(0, 0, 2)}
	for _, d := range dates {
		_, err := repo.Create(ctx, transaction.CreateParams{UserID: owner, Date: d, Description: "d", Category: "Food", Amount: -1})
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	after := ""
	for {
		page, err := repo.ListByUserID(ctx, owner, 3, after)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, tx := range page {
			assert.False(t, seen[tx.ID], "duplicate %s", tx.ID)
			seen[tx.ID] = true
		}
		after = page[len(page)-1].ID
	}
	assert.Len(t, seen, 4)

	_, err := repo.ListByUserID(ctx, owner, 3, uuid.NewString())
	assert.ErrorIs(t, err, transaction.ErrNotFound)

	n, err := repo.DeleteAllByUserID(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestBudgetRepository_AdjustSpent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBudgetRepository(db)
	ctx := context.Background()
	owner := uuid.NewString()

	b, err := repo.Create(ctx, budget.CreateParams{UserID: owner, Category: "Food", Amount: 500, Spent: 150.5})
	require.NoError(t, err)

	b, err = repo.AdjustSpent(ctx, b.ID, 10)
	require.NoError(t, err)
	assert.InDelta(t, 160.5, b.Spent, 1e-9)

	_, err = repo.AdjustSpent(ctx, b.ID, -200)
	assert.ErrorIs(t, err, budget.ErrNegativeSpent)
	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.InDelta(t, 160.5, got.Spent, 1e-9)

	_, err = repo.AdjustSpent(ctx, uuid.NewString(), -1)
	assert.ErrorIs(t, err, budget.ErrNotFound)

	_, err = repo.UpdateSpent(ctx, uuid.NewString(), 1)
	assert.ErrorIs(t, err, budget.ErrNotFound)

	_, err = repo.DeleteAllByUserID(ctx, owner)
	require.NoError(t, err)
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	u, err := repo.Create(ctx, user.CreateUserParams{Email: email, Provider: user.ProviderPassword, PasswordHash: "h"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Delete(ctx, u.ID) })

	_, err = repo.Create(ctx, user.CreateUserParams{Email: email, Provider: user.ProviderPassword, PasswordHash: "h"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}
