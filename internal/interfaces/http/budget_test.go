package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"budgetcoach/internal/domain/budget"
	"budgetcoach/internal/domain/notification"
	"budgetcoach/internal/infrastructure/memory"
)

func newBudgetFixture(t *testing.T) (*BudgetHandler, *recordingNotifier, *budget.Budget) {
	t.Helper()

	svc := budget.NewService(memory.NewBudgetRepository(), nil)
	b, err := svc.Create(context.Background(), budget.CreateParams{UserID: "user-1", Category: "Food", Amount: 500, Spent: 495})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	notifier := &recordingNotifier{}
	return NewBudgetHandler(svc, notifier), notifier, b
}

func TestHandleBudgets_CreateAndList(t *testing.T) {
	handler, _, _ := newBudgetFixture(t)

	body := bytes.NewBufferString(`{"category":"Rent","amount":0,"spent":0}`)
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/budgets", body), "user-1")
	rr := httptest.NewRecorder()
	handler.HandleBudgets(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", rr.Code, http.StatusCreated)
	}

	req = withUser(httptest.NewRequest(http.MethodGet, "/api/budgets", nil), "user-1")
	rr = httptest.NewRecorder()
	handler.HandleBudgets(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp BudgetListResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Budgets) != 2 {
		t.Fatalf("got %d budgets, want 2", len(resp.Budgets))
	}
	if resp.Totals.Allocated != 500 || resp.Totals.Spent != 495 || resp.Totals.Remaining != 5 {
		t.Errorf("totals = %+v", resp.Totals)
	}
	for _, v := range resp.Budgets {
		if v.Category == "Rent" && (v.Progress.Percent != 0 || v.Progress.DisplayPercent != 0) {
			t.Errorf("zero allocation progress = %+v, want 0", v.Progress)
		}
	}
}

func TestHandleBudgets_CreateInvalid(t *testing.T) {
	handler, _, _ := newBudgetFixture(t)

	body := bytes.NewBufferString(`{"category":"Rent","amount":-1}`)
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/budgets", body), "user-1")
	rr := httptest.NewRecorder()
	handler.HandleBudgets(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestHandleAdjustSpent_CrossingWarns(t *testing.T) {
	handler, notifier, b := newBudgetFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/budgets/"+b.ID+"/adjust", bytes.NewBufferString(`{"delta":10}`))
	req.SetPathValue("id", b.ID)
	req = withUser(req, "user-1")
	rr := httptest.NewRecorder()

	handler.HandleAdjustSpent(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp BudgetChangeResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.CrossedLimit || resp.Budget.Spent != 505 {
		t.Errorf("response = %+v, want crossed with spent 505", resp)
	}
	if !resp.Budget.Progress.OverBudget || resp.Budget.Progress.DisplayPercent != 100 {
		t.Errorf("progress = %+v, want over budget and display 100", resp.Budget.Progress)
	}

	n, ok := notifier.last()
	if !ok || n.Severity != notification.SeverityWarning || !strings.Contains(n.Message, "Food") {
		t.Errorf("notification = %+v, want a Food warning", n)
	}

	// Already over: a second change does not warn again
	notifier.sent = nil
	req = httptest.NewRequest(http.MethodPost, "/api/budgets/"+b.ID+"/adjust", bytes.NewBufferString(`{"delta":10}`))
	req.SetPathValue("id", b.ID)
	req = withUser(req, "user-1")
	rr = httptest.NewRecorder()
	handler.HandleAdjustSpent(rr, req)

	if _, ok := notifier.last(); ok {
		t.Error("expected no warning once the budget is already over")
	}
}

func TestHandleUpdateSpent(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		body           string
		expectedStatus int
	}{
		{"Success", "user-1", `{"spent":100}`, http.StatusOK},
		{"Negative", "user-1", `{"spent":-1}`, http.StatusBadRequest},
		{"Missing Spent", "user-1", `{}`, http.StatusBadRequest},
		{"Forbidden", "user-2", `{"spent":100}`, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, notifier, b := newBudgetFixture(t)

			req := httptest.NewRequest(http.MethodPut, "/api/budgets/"+b.ID+"/spent", bytes.NewBufferString(tt.body))
			req.SetPathValue("id", b.ID)
			req = withUser(req, tt.userID)
			rr := httptest.NewRecorder()

			handler.HandleUpdateSpent(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if _, ok := notifier.last(); ok {
				t.Error("expected no notification")
			}
		})
	}
}

func TestHandleAdjustCategory(t *testing.T) {
	handler, _, _ := newBudgetFixture(t)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"Unknown Category", `{"category":"Travel","delta":5}`, http.StatusNotFound},
		{"Would Go Negative", `{"category":"Food","delta":-1000}`, http.StatusBadRequest},
		{"Missing Delta", `{"category":"Food"}`, http.StatusBadRequest},
		{"Success", `{"category":"Food","delta":-5}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withUser(httptest.NewRequest(http.MethodPost, "/api/budgets/adjust", bytes.NewBufferString(tt.body)), "user-1")
			rr := httptest.NewRecorder()

			handler.HandleAdjustCategory(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandleBudgetByID(t *testing.T) {
	handler, _, b := newBudgetFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/budgets/"+b.ID, nil)
	req.SetPathValue("id", b.ID)
	rr := httptest.NewRecorder()
	handler.HandleBudgetByID(rr, withUser(req, "user-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d, want %d", rr.Code, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/budgets/"+b.ID, nil)
	req.SetPathValue("id", b.ID)
	rr = httptest.NewRecorder()
	handler.HandleBudgetByID(rr, withUser(req, "user-1"))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", rr.Code, http.StatusNoContent)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/budgets/"+b.ID, nil)
	req.SetPathValue("id", b.ID)
	rr = httptest.NewRecorder()
	handler.HandleBudgetByID(rr, withUser(req, "user-1"))
	if rr.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
