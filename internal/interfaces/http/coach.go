package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"budgetcoach/internal/domain/analytics"
	"budgetcoach/internal/domain/coach"
	"budgetcoach/internal/domain/transaction"
)

type CoachHandler struct {
	transactions *transaction.Service
	now          func() time.Time
}

func NewCoachHandler(transactions *transaction.Service) *CoachHandler {
	return &CoachHandler{transactions: transactions, now: time.Now}
}

type CoachMessageRequest struct {
	Message string `json:"message"`
}

// HandleMessage handles POST /api/coach/messages
func (h *CoachHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CoachMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	txs, err := h.transactions.All(r.Context(), id.UserID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", id.UserID).Error("Error loading transactions for coach")
		http.Error(w, "Failed to answer message", http.StatusInternalServerError)
		return
	}

	ex, err := coach.Ask(r.Context(), req.Message, analytics.Summarize(txs), h.now().UTC())
	if errors.Is(err, coach.ErrEmptyMessage) {
		http.Error(w, "Message cannot be empty", http.StatusBadRequest)
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("user_id", id.UserID).Error("Error answering coach message")
		http.Error(w, "Failed to answer message", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ex)
}
