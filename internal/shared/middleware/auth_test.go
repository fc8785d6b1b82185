package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"budgetcoach/internal/domain/session"
	"budgetcoach/internal/shared/auth"
)

func TestAuth(t *testing.T) {
	jwt := auth.NewJWT("test-secret", time.Hour)
	validToken, err := jwt.Generate("user-1", "test@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	otherToken, _ := auth.NewJWT("other-secret", time.Hour).Generate("user-1", "test@example.com")

	tests := []struct {
		name           string
		setupRequest   func(r *http.Request)
		expectedStatus int
		expectedUser   bool
	}{
		{
			name: "Valid Token in Cookie",
			setupRequest: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: validToken})
			},
			expectedStatus: http.StatusOK,
			expectedUser:   true,
		},
		{
			name: "Valid Token in Header",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+validToken)
			},
			expectedStatus: http.StatusOK,
			expectedUser:   true,
		},
		{
			name:           "No Token",
			setupRequest:   func(r *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Malformed Header",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Token "+validToken)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Invalid Token",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer invalid")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Token Signed With Another Secret",
			setupRequest: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: otherToken})
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, ok := session.FromContext(r.Context())
				if !ok && tt.expectedUser {
					t.Error("Expected identity in context, got none")
				}
				if ok && !tt.expectedUser {
					t.Error("Unexpected identity in context")
				}
				if ok && (id.UserID != "user-1" || id.Email != "test@example.com") {
					t.Errorf("identity = %+v, want user-1/test@example.com", id)
				}
				w.WriteHeader(http.StatusOK)
			})

			handler := Auth(jwt)(nextHandler)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setupRequest(req)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
		})
	}
}
