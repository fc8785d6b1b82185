package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"budgetcoach/internal/shared/auth"
	"budgetcoach/internal/shared/validate"
)

// Service contains the business logic for accounts
type Service struct {
	repo         Repository
	transactions TransactionStore
	budgets      BudgetStore
	cache        SessionCache
	verifier     TokenVerifier
}

// NewService creates a new user service. cache and verifier may be nil.
func NewService(repo Repository, transactions TransactionStore, budgets BudgetStore, cache SessionCache, verifier TokenVerifier) *Service {
	return &Service{
		repo:         repo,
		transactions: transactions,
		budgets:      budgets,
		cache:        cache,
		verifier:     verifier,
	}
}

// Register creates a password account
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*User, error) {
	email = NormalizeEmail(email)
	if err := validate.Var("email", email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validate.Var("password", password, fmt.Sprintf("required,min=%d", auth.MinPasswordLength)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	params := CreateUserParams{
		Email:        email,
		DisplayName:  displayName,
		Provider:     ProviderPassword,
		PasswordHash: hash,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": u.ID}).Info("User registered")
	return u, nil
}

// Login checks email and password
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	return u, nil
}

// SignInWithFirebase verifies a Firebase ID token and returns the matching
// user, creating it on first sign-in. The Firebase UID is the user ID.
func (s *Service) SignInWithFirebase(ctx context.Context, idToken string) (*User, error) {
	if s.verifier == nil {
		return nil, ErrFirebaseDisabled
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, ErrInvalidCredentials
	}

	ident, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		logrus.WithError(err).Warn("Firebase token rejected")
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByID(ctx, ident.UID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	params := CreateUserParams{
		ID:          ident.UID,
		Email:       ident.Email,
		DisplayName: ident.DisplayName,
		Provider:    ProviderFirebase,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	u, err = s.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": u.ID}).Info("Firebase user created")
	return u, nil
}

// Get returns a user by ID
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Teardown reports what DeleteAccount removed
type Teardown struct {
	Transactions int `json:"transactions"`
	Budgets      int `json:"budgets"`
}

// DeleteAccount removes every transaction and budget of the user, then the
// user itself, and drops the user's cached records.
func (s *Service) DeleteAccount(ctx context.Context, userID string) (*Teardown, error) {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	res, err := s.PurgeData(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":      userID,
		"transactions": res.Transactions,
		"budgets":      res.Budgets,
	}).Info("Account deleted")
	return res, nil
}

// PurgeData removes every transaction and budget of the user but keeps the
// account.
func (s *Service) PurgeData(ctx context.Context, userID string) (*Teardown, error) {
	res := &Teardown{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.transactions.DeleteAllByUserID(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to delete transactions: %w", err)
		}
		res.Transactions = n
		return nil
	})
	g.Go(func() error {
		n, err := s.budgets.DeleteAllByUserID(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to delete budgets: %w", err)
		}
		res.Budgets = n
		return nil
	})

	err := g.Wait()
	if s.cache != nil {
		s.cache.Clear(userID)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}
