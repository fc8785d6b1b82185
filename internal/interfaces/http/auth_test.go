package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"budgetcoach/internal/domain/user"
	"budgetcoach/internal/infrastructure/memory"
	"budgetcoach/internal/shared/auth"
	"budgetcoach/internal/shared/middleware"
)

func newUserService() *user.Service {
	return user.NewService(memory.NewUserRepository(), memory.NewTransactionRepository(), memory.NewBudgetRepository(), nil, nil)
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHandleRegister(t *testing.T) {
	jwt := auth.NewJWT("test-secret", time.Hour)
	handler := NewAuthHandler(newUserService(), jwt)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"Success", `{"email":"Ana@Example.com","password":"secret1","displayName":"Ana"}`, http.StatusCreated},
		{"Duplicate Email", `{"email":"ana@example.com","password":"secret1"}`, http.StatusConflict},
		{"Short Password", `{"email":"bob@example.com","password":"123"}`, http.StatusBadRequest},
		{"Invalid Email", `{"email":"bob","password":"secret1"}`, http.StatusBadRequest},
		{"Invalid Body", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			handler.HandleRegister(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var resp AuthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.User.Email != "ana@example.com" {
				t.Errorf("email = %q, want normalized ana@example.com", resp.User.Email)
			}
			claims, err := jwt.Validate(resp.Token)
			if err != nil || claims.UserID != resp.User.ID {
				t.Errorf("token does not identify the new user: %v", err)
			}

			access := findCookie(rr, middleware.AccessTokenCookie)
			if access == nil || !access.HttpOnly || access.Value != resp.Token {
				t.Errorf("access_token cookie = %+v", access)
			}
			marker := findCookie(rr, middleware.AuthCookie)
			if marker == nil || marker.Value != "true" || marker.MaxAge != int(SessionMaxAge.Seconds()) {
				t.Errorf("auth cookie = %+v", marker)
			}
		})
	}
}

func TestHandleLogin(t *testing.T) {
	users := newUserService()
	if _, err := users.Register(context.Background(), "ana@example.com", "secret1", "Ana"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	handler := NewAuthHandler(users, auth.NewJWT("test-secret", time.Hour))

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"Success", `{"email":"ana@example.com","password":"secret1"}`, http.StatusOK},
		{"Wrong Password", `{"email":"ana@example.com","password":"nope123"}`, http.StatusUnauthorized},
		{"Unknown Email", `{"email":"bob@example.com","password":"secret1"}`, http.StatusUnauthorized},
		{"Missing Fields", `{"email":"ana@example.com"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			handler.HandleLogin(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if tt.expectedStatus == http.StatusOK && findCookie(rr, middleware.AuthCookie) == nil {
				t.Error("expected auth cookie on successful login")
			}
		})
	}
}

func TestHandleFirebaseLogin_Disabled(t *testing.T) {
	handler := NewAuthHandler(newUserService(), auth.NewJWT("test-secret", time.Hour))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/firebase", bytes.NewBufferString(`{"idToken":"abc"}`))
	rr := httptest.NewRecorder()

	handler.HandleFirebaseLogin(rr, req)

	if rr.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotImplemented)
	}
}

func TestHandleLogout(t *testing.T) {
	jwt := auth.NewJWT("test-secret", time.Hour)
	clearer := &recordingClearer{}
	handler := NewAuthHandler(newUserService(), jwt, clearer)

	token, _ := jwt.Generate("user-1", "ana@example.com")
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: token})
	rr := httptest.NewRecorder()

	handler.HandleLogout(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	for _, name := range []string{middleware.AccessTokenCookie, middleware.AuthCookie} {
		c := findCookie(rr, name)
		if c == nil || c.MaxAge >= 0 {
			t.Errorf("cookie %s not cleared: %+v", name, c)
		}
	}
	if len(clearer.cleared) != 1 || clearer.cleared[0] != "user-1" {
		t.Errorf("cleared = %v, want [user-1]", clearer.cleared)
	}
}

func TestHandleLogout_MethodNotAllowed(t *testing.T) {
	handler := NewAuthHandler(newUserService(), auth.NewJWT("test-secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil)
	rr := httptest.NewRecorder()

	handler.HandleLogout(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}
