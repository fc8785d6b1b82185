package firestoredb

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetcoach/internal/domain/budget"
	"budgetcoach/internal/domain/transaction"
	"budgetcoach/internal/domain/user"
)

// newEmulatorClient connects to the Firestore emulator named by
// FIRESTORE_EMULATOR_HOST, skipping the test when it is not set.
func newEmulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	client, err := firestore.NewClient(context.Background(), "budgetcoach-test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestTransactionRepository_Emulator(t *testing.T) {
	client := newEmulatorClient(t)
	repo := NewTransactionRepository(client)
	ctx := context.Background()
	owner := uuid.NewString()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, transaction.CreateParams{
			UserID: owner, Date: base.AddDate(0, 0, i), Description: "d", Category: "Food", Amount: -10,
		})
		require.NoError(t, err)
	}

	page, err := repo.ListByUserID(ctx, owner, 2, "")
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].Date.Equal(base.AddDate(0, 0, 2)))

	rest, err := repo.ListByUserID(ctx, owner, 2, page[1].ID)
	require.NoError(t, err)
	require.Len(t, rest, 1)

	_, err = repo.Replace(ctx, "missing-"+owner, transaction.CreateParams{UserID: owner})
	assert.ErrorIs(t, err, transaction.ErrNotFound)

	n, err := repo.DeleteAllByUserID(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestTransactionRepository_EmulatorReadsClientDocuments(t *testing.T) {
	client := newEmulatorClient(t)
	repo := NewTransactionRepository(client)
	ctx := context.Background()
	owner := uuid.NewString()

	seeded := []map[string]any{
		{"userId": owner, "date": "2024-03-20", "description": "rent", "category": "Housing", "amount": -900.0},
		{"userId": owner, "date": "2024-03-25T10:00:00.000Z", "description": "lunch", "category": "Food", "amount": -12.5},
		{"userId": owner, "date": 42, "description": "broken", "category": "Food", "amount": -1.0},
	}
	for _, doc := range seeded {
		_, _, err := client.Collection(transactionsCollection).Add(ctx, doc)
		require.NoError(t, err)
	}
	created, err := repo.Create(ctx, transaction.CreateParams{
		UserID: owner, Date: time.Date(2024, 3, 22, 8, 0, 0, 0, time.UTC), Description: "bus", Category: "Transport", Amount: -2,
	})
	require.NoError(t, err)

	list, err := repo.ListByUserID(ctx, owner, 0, "")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "lunch", list[0].Description)
	assert.True(t, list[0].Date.Equal(time.Date(2024, 3, 25, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, created.ID, list[1].ID)
	assert.Equal(t, "rent", list[2].Description)
	assert.True(t, list[2].Date.Equal(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)))

	_, err = repo.DeleteAllByUserID(ctx, owner)
	require.NoError(t, err)
}

func TestBudgetRepository_Emulator(t *testing.T) {
	client := newEmulatorClient(t)
	repo := NewBudgetRepository(client)
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

	_, err = repo.AdjustSpent(ctx, "missing-"+owner, 1)
	assert.ErrorIs(t, err, budget.ErrNotFound)

	_, err = repo.UpdateSpent(ctx, "missing-"+owner, 1)
	assert.ErrorIs(t, err, budget.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, b.ID))
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), budget.ErrNotFound)
}

func TestUserRepository_Emulator(t *testing.T) {
	client := newEmulatorClient(t)
	repo := NewUserRepository(client)
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	u, err := repo.Create(ctx, user.CreateUserParams{Email: email, Provider: user.ProviderPassword, PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, user.CreateUserParams{Email: email, Provider: user.ProviderPassword, PasswordHash: "h"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	got, err := repo.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, repo.Delete(ctx, u.ID))
	_, err = repo.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)
}
