package http

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"budgetcoach/internal/domain/notification"
	"budgetcoach/internal/domain/transaction"
)

const maxPageSize = 200

type TransactionHandler struct {
	transactions *transaction.Service
	notifier     Notifier
}

// NewTransactionHandler creates the ledger handlers. notifier may be nil.
func NewTransactionHandler(transactions *transaction.Service, notifier Notifier) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, notifier: notifier}
}

type TransactionRequest struct {
	Date        string  `json:"date"` // YYYY-MM-DD or RFC 3339, empty means now
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type,omitempty"`
}

func (req TransactionRequest) params(userID string) (transaction.CreateParams, error) {
	p := transaction.CreateParams{
		UserID:      userID,
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
		Type:        req.Type,
	}

	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			return p, err
		}
		p.Date = d
	}
	return p, nil
}

func parseDate(s string) (time.Time, error) {
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d.UTC(), nil
	}
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return d.UTC(), nil
}

type TransactionListResponse struct {
	Transactions []*transaction.Transaction `json:"transactions"`
	NextCursor   string                     `json:"nextCursor,omitempty"`
}

// HandleTransactions handles GET (list) and POST (create) on /api/transactions
func (h *TransactionHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *TransactionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	view, err := transaction.View{
		Category: q.Get("category"),
		SortBy:   q.Get("sort"),
		Order:    q.Get("order"),
	}.Normalize()
	if err != nil {
		http.Error(w, "sort must be date or amount and order asc or desc", http.StatusBadRequest)
		return
	}

	limit := 0
	if s := q.Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
	}
	after := q.Get("after")

	var list []*transaction.Transaction
	if limit > 0 || after != "" {
		list, err = h.transactions.List(r.Context(), id.UserID, limit, after)
	} else {
		list, err = h.transactions.All(r.Context(), id.UserID)
	}
	if err != nil {
		h.writeError(w, err, "Failed to list transactions", id.UserID, after)
		return
	}

	resp := TransactionListResponse{Transactions: transaction.Arrange(list, view)}
	if limit > 0 && len(list) == limit {
		resp.NextCursor = list[len(list)-1].ID
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *TransactionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req TransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params, err := req.params(id.UserID)
	if err != nil {
		http.Error(w, "Invalid date format (use YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	t, err := h.transactions.Create(r.Context(), params)
	if err != nil {
		notify(r.Context(), h.notifier, id.UserID, "Error adding transaction", notification.SeverityError)
		h.writeError(w, err, "Failed to create transaction", id.UserID, "")
		return
	}

	notify(r.Context(), h.notifier, id.UserID,
		fmt.Sprintf("Successfully added %s of $%s", t.Kind(), strconv.FormatFloat(math.Abs(t.Amount), 'f', -1, 64)),
		notification.SeveritySuccess)

	writeJSON(w, http.StatusCreated, t)
}

// HandleTransactionByID handles GET, PUT and DELETE on /api/transactions/{id}
func (h *TransactionHandler) HandleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUser(w, r)
	if !ok {
		return
	}

	transactionID := r.PathValue("id")
	if transactionID == "" {
		http.Error(w, "Transaction ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := h.transactions.Get(r.Context(), id.UserID, transactionID)
		if err != nil {
			h.writeError(w, err, "Failed to get transaction", id.UserID, transactionID)
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodPut:
		var req TransactionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		params, err := req.params(id.UserID)
		if err != nil {
			http.Error(w, "Invalid date format (use YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		t, err := h.transactions.Replace(r.Context(), id.UserID, transactionID, params)
		if err != nil {
			h.writeError(w, err, "Failed to update transaction", id.UserID, transactionID)
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodDelete:
		if err := h.transactions.Delete(r.Context(), id.UserID, transactionID); err != nil {
			h.writeError(w, err, "Failed to delete transaction", id.UserID, transactionID)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *TransactionHandler) writeError(w http.ResponseWriter, err error, msg, userID, transactionID string) {
	switch {
	case errors.Is(err, transaction.ErrNotFound):
		http.Error(w, "Transaction not found", http.StatusNotFound)
	case errors.Is(err, transaction.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, transaction.ErrInvalidInput):
		http.Error(w, "description and category are required and amount must be a number", http.StatusBadRequest)
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":        userID,
			"transaction_id": transactionID,
		}).Error(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}
