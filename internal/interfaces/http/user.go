package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"budgetcoach/internal/domain/user"
)

// AuthUserDeleter removes a user from an external identity provider
type AuthUserDeleter interface {
	DeleteAuthUser(ctx context.Context, uid string) error
}

type UserHandler struct {
	users     *user.Service
	authUsers AuthUserDeleter
	clearers  []Clearer
	now       func() time.Time
}

// NewUserHandler creates the account handlers. authUsers may be nil when
// Firebase is not configured.
func NewUserHandler(users *user.Service, authUsers AuthUserDeleter, clearers ...Clearer) *UserHandler {
	return &UserHandler{users: users, authUsers: authUsers, clearers: clearers, now: time.Now}
}

// HandleMe handles GET and DELETE requests for the current user
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := currentUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGetMe(w, r, id.UserID)
	case http.MethodDelete:
		h.handleDeleteMe(w, r, id.UserID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *UserHandler) handleGetMe(w http.ResponseWriter, r *http.Request, userID string) {
	u, err := h.users.Get(r.Context(), userID)
	if errors.Is(err, user.ErrNotFound) {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Error getting user")
		http.Error(w, "Failed to get user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) handleDeleteMe(w http.ResponseWriter, r *http.Request, userID string) {
	u, err := h.users.Get(r.Context(), userID)
	if errors.Is(err, user.ErrNotFound) {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Error getting user")
		http.Error(w, "Failed to delete account", http.StatusInternalServerError)
		return
	}

	res, err := h.users.DeleteAccount(r.Context(), userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Error deleting account")
		http.Error(w, "Failed to delete account", http.StatusInternalServerError)
		return
	}

	if u.Provider == user.ProviderFirebase && h.authUsers != nil {
		if err := h.authUsers.DeleteAuthUser(r.Context(), userID); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("Failed to delete Firebase user")
		}
	}

	for _, c := range h.clearers {
		c.Clear(userID)
	}
	clearSessionCookies(w, r)
	writeJSON(w, http.StatusOK, res)
}

// HandleSampleData handles POST /api/users/me/sample-data
func (h *UserHandler) HandleSampleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := currentUser(w, r)
	if !ok {
		return
	}

	seed, err := h.users.SeedSampleData(r.Context(), id.UserID, h.now())
	if errors.Is(err, user.ErrNotFound) {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("user_id", id.UserID).Error("Error seeding sample data")
		http.Error(w, "Failed to add sample data", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, seed)
}
