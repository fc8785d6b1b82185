package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"budgetcoach/internal/domain/analytics"
	"budgetcoach/internal/domain/budget"
	"budgetcoach/internal/domain/notification"
)

type BudgetHandler struct {
	budgets  *budget.Service
	notifier Notifier
}

// NewBudgetHandler creates the budget handlers. notifier may be nil.
func NewBudgetHandler(budgets *budget.Service, notifier Notifier) *BudgetHandler {
	return &BudgetHandler{budgets: budgets, notifier: notifier}
}

type CreateBudgetRequest struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Spent    float64 `json:"spent"`
	Color    string  `json:"color,omitempty"`
}

type UpdateSpentRequest struct {
	Spent *float64 `json:"spent"`
}

type AdjustSpentRequest struct {
	Delta *float64 `json:"delta"`
}

type AdjustCategoryRequest struct {
	Category string   `json:"category"`
	Delta    *float64 `json:"delta"`
}

// BudgetView is a budget with its display progress
type BudgetView struct {
	*budget.Budget
	Progress analytics.Progress `json:"progress"`
}

func newBudgetView(b *budget.Budget) BudgetView {
	return BudgetView{Budget: b, Progress: analytics.BudgetProgress(b)}
}

type BudgetListResponse struct {
	Budgets []BudgetView           `json:"budgets"`
	Totals  analytics.BudgetTotals `json:"totals"`
}

type BudgetChangeResponse struct {
	Budget       BudgetView `json:"budget"`
	CrossedLimit bool       `json:"crossedLimit"`
}

// HandleBudgets handles GET (list) and POST (create) on /api/budgets
func (h *BudgetHandler) HandleBudgets(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := h.budgets.List(r.Context(), id.UserID)
		if err != nil {
			h.writeError(w, err, "Failed to list budgets", id.UserID, "")
			return
		}

		resp := BudgetListResponse{Budgets: make([]BudgetView, 0, len(list)), Totals: analytics.Totals(list)}
		for _, b := range list {
			resp.Budgets = append(resp.Budgets, newBudgetView(b))
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		var req CreateBudgetRequest
		if err := decodeJSON(w, r, &req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		b, err := h.budgets.Create(r.Context(), budget.CreateParams{
			UserID:   id.UserID,
			Category: req.Category,
			Amount:   req.Amount,
			Spent:    req.Spent,
			Color:    req.Color,
		})
		if err != nil {
			h.writeError(w, err, "Failed to create budget", id.UserID, "")
			return
		}
		writeJSON(w, http.StatusCreated, newBudgetView(b))

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleBudgetByID handles GET and DELETE on /api/budgets/{id}
func (h *BudgetHandler) HandleBudgetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUser(w, r)
	if !ok {
		return
	}

	budgetID := r.PathValue("id")
	if budgetID == "" {
		http.Error(w, "Budget ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		b, err := h.budgets.Get(r.Context(), id.UserID, budgetID)
		if err != nil {
			h.writeError(w, err, "Failed to get budget", id.UserID, budgetID)
			return
		}
		writeJSON(w, http.StatusOK, newBudgetView(b))

	case http.MethodDelete:
		if err := h.budgets.Delete(r.Context(), id.UserID, budgetID); err != nil {
			h.writeError(w, err, "Failed to delete budget", id.UserID, budgetID)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleUpdateSpent handles PUT /api/budgets/{id}/spent
func (h *BudgetHandler) HandleUpdateSpent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateSpentRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Spent == nil {
		http.Error(w, "spent is required", http.StatusBadRequest)
		return
	}

	budgetID := r.PathValue("id")
	change, err := h.budgets.UpdateSpent(r.Context(), id.UserID, budgetID, *req.Spent)
	if err != nil {
		h.writeError(w, err, "Failed to update budget", id.UserID, budgetID)
		return
	}

	h.warnIfCrossed(r.Context(), id.UserID, change)
	writeJSON(w, http.StatusOK, toChangeResponse(change))
}

// HandleAdjustSpent handles POST /api/budgets/{id}/adjust
func (h *BudgetHandler) HandleAdjustSpent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req AdjustSpentRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Delta == nil {
		http.Error(w, "delta is required", http.StatusBadRequest)
		return
	}

	budgetID := r.PathValue("id")
	change, err := h.budgets.AdjustSpent(r.Context(), id.UserID, budgetID, *req.Delta)
	if err != nil {
		h.writeError(w, err, "Failed to update budget", id.UserID, budgetID)
		return
	}

	h.warnIfCrossed(r.Context(), id.UserID, change)
	writeJSON(w, http.StatusOK, toChangeResponse(change))
}

// HandleAdjustCategory handles POST /api/budgets/adjust, applying a delta to
// every budget with the given category
func (h *BudgetHandler) HandleAdjustCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req AdjustCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Category == "" || req.Delta == nil {
		http.Error(w, "category and delta are required", http.StatusBadRequest)
		return
	}

	changes, err := h.budgets.AdjustSpentByCategory(r.Context(), id.UserID, req.Category, *req.Delta)
	if err != nil {
		h.writeError(w, err, "Failed to update budgets", id.UserID, "")
		return
	}

	resp := make([]BudgetChangeResponse, 0, len(changes))
	for _, c := range changes {
		h.warnIfCrossed(r.Context(), id.UserID, c)
		resp = append(resp, toChangeResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BudgetHandler) warnIfCrossed(ctx context.Context, userID string, c *budget.Change) {
	if !c.Crossed {
		return
	}
	notify(ctx, h.notifier, userID,
		fmt.Sprintf("You have exceeded your %s budget: $%.2f of $%.2f spent", c.Budget.Category, c.Budget.Spent, c.Budget.Amount),
		notification.SeverityWarning)
}

func toChangeResponse(c *budget.Change) BudgetChangeResponse {
	return BudgetChangeResponse{Budget: newBudgetView(c.Budget), CrossedLimit: c.Crossed}
}

func (h *BudgetHandler) writeError(w http.ResponseWriter, err error, msg, userID, budgetID string) {
	switch {
	case errors.Is(err, budget.ErrNotFound):
		http.Error(w, "Budget not found", http.StatusNotFound)
	case errors.Is(err, budget.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, budget.ErrNegativeSpent):
		http.Error(w, "Spent cannot be negative", http.StatusBadRequest)
	case errors.Is(err, budget.ErrInvalidInput):
		http.Error(w, "category is required and amounts must be non-negative numbers", http.StatusBadRequest)
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":   userID,
			"budget_id": budgetID,
		}).Error(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}
