package main

import (
	"net/http"

	"github.com/sirupsen/logrus"

	httphandlers "budgetcoach/internal/interfaces/http"
	"budgetcoach/internal/shared/config"
	"budgetcoach/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Pages, gated by the route guard
	mux.HandleFunc("/{$}", httphandlers.Page("home.html"))
	mux.HandleFunc("/login", httphandlers.Page("login.html"))
	mux.HandleFunc("/register", httphandlers.Page("register.html"))
	mux.HandleFunc("/dashboard", httphandlers.Page("dashboard.html"))
	mux.HandleFunc("/transactions", httphandlers.Page("transactions.html"))
	mux.HandleFunc("/budget", httphandlers.Page("budget.html"))
	mux.HandleFunc("/ai-coach", httphandlers.Page("ai-coach.html"))

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Public auth routes
	limit := deps.AuthLimiter.Middleware
	mux.Handle("/api/auth/register", limit(http.HandlerFunc(deps.AuthHandler.HandleRegister)))
	mux.Handle("/api/auth/login", limit(http.HandlerFunc(deps.AuthHandler.HandleLogin)))
	mux.Handle("/api/auth/firebase", limit(http.HandlerFunc(deps.AuthHandler.HandleFirebaseLogin)))
	mux.HandleFunc("/api/auth/logout", deps.AuthHandler.HandleLogout)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)
	protect := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authMiddleware(h))
	}

	protect("/api/users/me", deps.UserHandler.HandleMe)
	protect("/api/users/me/sample-data", deps.UserHandler.HandleSampleData)
	protect("/api/transactions", deps.TransactionHandler.HandleTransactions)
	protect("/api/transactions/{id}", deps.TransactionHandler.HandleTransactionByID)
	protect("/api/budgets", deps.BudgetHandler.HandleBudgets)
	protect("/api/budgets/adjust", deps.BudgetHandler.HandleAdjustCategory)
	protect("/api/budgets/{id}", deps.BudgetHandler.HandleBudgetByID)
	protect("/api/budgets/{id}/spent", deps.BudgetHandler.HandleUpdateSpent)
	protect("/api/budgets/{id}/adjust", deps.BudgetHandler.HandleAdjustSpent)
	protect("/api/dashboard", deps.DashboardHandler.HandleDashboard)
	protect("/api/coach/messages", deps.CoachHandler.HandleMessage)
	protect("/api/notifications", deps.NotificationHandler.HandleNotifications)
	protect("/api/notifications/{id}", deps.NotificationHandler.HandleNotificationByID)

	// Apply global middleware
	var handler http.Handler = middleware.RouteGuard(mux)
	handler = middleware.CORS(cfg.Server.AllowedHosts)(handler)
	handler = middleware.Tracing(handler)
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(cfg.Telemetry.ServiceName)(handler)
	}
	handler = middleware.Logging(handler)

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		logrus.Info("TLS security middleware enabled (HSTS + SecureCookies)")
	}
	if cfg.TLS.ForceHTTPS {
		handler = middleware.RequireHTTPS(handler)
	}

	return handler
}
