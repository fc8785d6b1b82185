package http

import (
	"math"
	"net/http"

	"github.com/sirupsen/logrus"

	"budgetcoach/internal/domain/analytics"
	"budgetcoach/internal/domain/budget"
	"budgetcoach/internal/domain/transaction"
)

type DashboardHandler struct {
	transactions *transaction.Service
	budgets      *budget.Service
}

func NewDashboardHandler(transactions *transaction.Service, budgets *budget.Service) *DashboardHandler {
	return &DashboardHandler{transactions: transactions, budgets: budgets}
}

// SummaryResponse is the JSON form of analytics.Snapshot. Average is 0 for an
// empty ledger.
type SummaryResponse struct {
	Count       int                `json:"count"`
	Total       float64            `json:"total"`
	Average     float64            `json:"average"`
	ByCategory  map[string]float64 `json:"byCategory"`
	TopCategory string             `json:"topCategory,omitempty"`
}

func newSummaryResponse(s analytics.Snapshot) SummaryResponse {
	resp := SummaryResponse{
		Count:      s.Count,
		Total:      s.Total,
		Average:    s.Average,
		ByCategory: s.ByCategory,
	}
	if math.IsNaN(resp.Average) {
		resp.Average = 0
	}
	if top, ok := analytics.TopCategory(s.ByCategory); ok {
		resp.TopCategory = top
	}
	return resp
}

type DashboardResponse struct {
	Summary      SummaryResponse            `json:"summary"`
	Recent       []*transaction.Transaction `json:"recentTransactions"`
	Budgets      []BudgetView               `json:"budgets"`
	BudgetTotals analytics.BudgetTotals     `json:"budgetTotals"`
}

// HandleDashboard handles GET /api/dashboard
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := currentUser(w, r)
	if !ok {
		return
	}
	log := logrus.WithField("user_id", id.UserID)

	all, err := h.transactions.All(r.Context(), id.UserID)
	if err != nil {
		log.WithError(err).Error("Error loading transactions for dashboard")
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	recent, err := h.transactions.Recent(r.Context(), id.UserID, transaction.RecentLimit)
	if err != nil {
		log.WithError(err).Error("Error loading recent transactions")
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	budgets, err := h.budgets.List(r.Context(), id.UserID)
	if err != nil {
		log.WithError(err).Error("Error loading budgets for dashboard")
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	resp := DashboardResponse{
		Summary:      newSummaryResponse(analytics.Summarize(all)),
		Recent:       recent,
		Budgets:      make([]BudgetView, 0, len(budgets)),
		BudgetTotals: analytics.Totals(budgets),
	}
	for _, b := range budgets {
		resp.Budgets = append(resp.Budgets, newBudgetView(b))
	}

	writeJSON(w, http.StatusOK, resp)
}
