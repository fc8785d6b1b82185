package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"budgetcoach/internal/domain/user"
	"budgetcoach/internal/shared/auth"
	"budgetcoach/internal/shared/middleware"
)

// SessionMaxAge is the lifetime of the auth marker cookie
const SessionMaxAge = 7 * 24 * time.Hour

type AuthHandler struct {
	users    *user.Service
	jwt      *auth.JWT
	clearers []Clearer
}

// NewAuthHandler creates the sign-in handlers. clearers run on logout for the
// signed-out user.
func NewAuthHandler(users *user.Service, jwt *auth.JWT, clearers ...Clearer) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt, clearers: clearers}
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"idToken"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// HandleRegister creates a new user with password authentication
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.users.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	switch {
	case errors.Is(err, user.ErrInvalidInput):
		http.Error(w, "A valid email and a password of at least 6 characters are required", http.StatusBadRequest)
		return
	case errors.Is(err, user.ErrEmailTaken):
		http.Error(w, "User with this email already exists", http.StatusConflict)
		return
	case err != nil:
		logrus.WithError(err).Error("Error registering user")
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	h.signIn(w, r, u, http.StatusCreated)
}

// HandleLogin authenticates a user with email and password
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, user.ErrInvalidCredentials) {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		logrus.WithError(err).Error("Error logging in")
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	h.signIn(w, r, u, http.StatusOK)
}

// HandleFirebaseLogin exchanges a Firebase ID token for a session
func (h *AuthHandler) HandleFirebaseLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req FirebaseLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.users.SignInWithFirebase(r.Context(), req.IDToken)
	switch {
	case errors.Is(err, user.ErrFirebaseDisabled):
		http.Error(w, "Firebase sign-in is not available", http.StatusNotImplemented)
		return
	case errors.Is(err, user.ErrInvalidCredentials):
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	case errors.Is(err, user.ErrInvalidInput):
		http.Error(w, "Firebase account has no usable email", http.StatusBadRequest)
		return
	case err != nil:
		logrus.WithError(err).Error("Error signing in with Firebase")
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	h.signIn(w, r, u, http.StatusOK)
}

// HandleLogout clears the session cookies and the caller's cached state
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := r.Cookie(middleware.AccessTokenCookie); err == nil {
		if claims, err := h.jwt.Validate(cookie.Value); err == nil {
			for _, c := range h.clearers {
				c.Clear(claims.UserID)
			}
		}
	}

	clearSessionCookies(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, u *user.User, status int) {
	token, err := h.jwt.Generate(u.ID, u.Email)
	if err != nil {
		logrus.WithError(err).WithField("user_id", u.ID).Error("Error generating JWT")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	setSessionCookies(w, r, token, h.jwt.TTL())
	writeJSON(w, status, AuthResponse{Token: token, User: u})
}

// isSecure reports whether the request arrived over HTTPS
func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}

// setSessionCookies sets the HttpOnly JWT cookie and the auth marker read by
// the route guard
func setSessionCookies(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) {
	secure := isSecure(r)

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookie,
		Value:    "true",
		Path:     "/",
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionMaxAge.Seconds()),
	})
}

func clearSessionCookies(w http.ResponseWriter, r *http.Request) {
	secure := isSecure(r)

	for _, name := range []string{middleware.AccessTokenCookie, middleware.AuthCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: name == middleware.AccessTokenCookie,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}
