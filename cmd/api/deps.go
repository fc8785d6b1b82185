package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"budgetcoach/internal/domain/budget"
	"budgetcoach/internal/domain/notification"
	"budgetcoach/internal/domain/session"
	"budgetcoach/internal/domain/transaction"
	"budgetcoach/internal/domain/user"
	"budgetcoach/internal/infrastructure/storage"
	httphandlers "budgetcoach/internal/interfaces/http"
	"budgetcoach/internal/shared/auth"
	"budgetcoach/internal/shared/config"
	"budgetcoach/internal/shared/middleware"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Storage *storage.Backend
	Cache   *session.Store
	Queue   *notification.Queue

	// Handlers
	AuthHandler         *httphandlers.AuthHandler
	UserHandler         *httphandlers.UserHandler
	TransactionHandler  *httphandlers.TransactionHandler
	BudgetHandler       *httphandlers.BudgetHandler
	DashboardHandler    *httphandlers.DashboardHandler
	CoachHandler        *httphandlers.CoachHandler
	NotificationHandler *httphandlers.NotificationHandler

	// Auth
	JWT         *auth.JWT
	AuthLimiter *middleware.RateLimiter
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cache := session.NewStore(cfg.Session.CacheTTL)
	queue := notification.NewQueue(cfg.Notification.TTL)

	// Initialize domain services
	transactionService := transaction.NewService(backend.Transactions, cache)
	budgetService := budget.NewService(backend.Budgets, cache)
	userService := user.NewService(backend.Users, backend.Transactions, backend.Budgets, cache, backend.Verifier())

	jwt := auth.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)

	var authUsers httphandlers.AuthUserDeleter
	if backend.Firebase != nil {
		authUsers = backend.Firebase
	} else {
		logrus.Info("Firebase is not configured, Firebase sign-in is disabled")
	}

	limiterCfg := middleware.DefaultRateLimiterConfig()
	limiterCfg.Rate = rate.Limit(cfg.RateLimit.AuthRPS)
	limiterCfg.Burst = cfg.RateLimit.AuthBurst

	return &Dependencies{
		Storage:             backend,
		Cache:               cache,
		Queue:               queue,
		AuthHandler:         httphandlers.NewAuthHandler(userService, jwt, cache, queue),
		UserHandler:         httphandlers.NewUserHandler(userService, authUsers, cache, queue),
		TransactionHandler:  httphandlers.NewTransactionHandler(transactionService, queue),
		BudgetHandler:       httphandlers.NewBudgetHandler(budgetService, queue),
		DashboardHandler:    httphandlers.NewDashboardHandler(transactionService, budgetService),
		CoachHandler:        httphandlers.NewCoachHandler(transactionService),
		NotificationHandler: httphandlers.NewNotificationHandler(queue),
		JWT:                 jwt,
		AuthLimiter:         middleware.NewRateLimiter(limiterCfg),
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	d.AuthLimiter.Stop()
	d.Queue.Close()
	if err := d.Storage.Close(); err != nil {
		logrus.WithError(err).Warn("Error closing storage backend")
	}
}
