// Package storage opens the repositories of the configured backend.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"budgetcoach/internal/domain/budget"
	"budgetcoach/internal/domain/transaction"
	"budgetcoach/internal/domain/user"
	"budgetcoach/internal/infrastructure/firebase"
	"budgetcoach/internal/infrastructure/firestoredb"
	"budgetcoach/internal/infrastructure/memory"
	"budgetcoach/internal/infrastructure/postgres"
	"budgetcoach/internal/shared/config"
)

// Backend holds the repositories of one storage backend
type Backend struct {
	Name         string
	Users        user.Repository
	Transactions transaction.Repository
	Budgets      budget.Repository

	// Firebase is set when a Firebase project is configured, whatever the backend
	Firebase *firebase.App

	closers []func() error
}

// Open builds the backend selected by cfg.Storage.Backend. Postgres
// migrations are applied before the repositories are returned.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	b := &Backend{Name: cfg.Storage.Backend}

	if cfg.FirebaseEnabled() {
		app, err := firebase.NewApp(ctx, firebase.Config{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsFile: cfg.Firebase.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		b.Firebase = app
	}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		b.Users = memory.NewUserRepository()
		b.Transactions = memory.NewTransactionRepository()
		b.Budgets = memory.NewBudgetRepository()

	case config.BackendFirestore:
		if b.Firebase == nil {
			return nil, errors.New("firestore backend requires a Firebase project")
		}
		client, err := b.Firebase.Firestore(ctx)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, client.Close)
		b.Users = firestoredb.NewUserRepository(client)
		b.Transactions = firestoredb.NewTransactionRepository(client)
		b.Budgets = firestoredb.NewBudgetRepository(client)

	case config.BackendPostgres:
		if err := postgres.RunMigrations(cfg.Database.URL()); err != nil {
			return nil, err
		}
		db, err := postgres.New(cfg.Database.ConnectionString())
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db.Close)
		b.Users = postgres.NewUserRepository(db)
		b.Transactions = postgres.NewTransactionRepository(db)
		b.Budgets = postgres.NewBudgetRepository(db)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	logrus.WithField("backend", b.Name).Info("Storage backend ready")
	return b, nil
}

// Verifier returns the Firebase token verifier, or nil when Firebase is off
func (b *Backend) Verifier() user.TokenVerifier {
	if b.Firebase == nil {
		return nil
	}
	return b.Firebase
}

// Close releases the backend's clients
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
