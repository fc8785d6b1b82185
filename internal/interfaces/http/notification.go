package http

import (
	"errors"
	"net/http"

	"budgetcoach/internal/domain/notification"
)

type NotificationHandler struct {
	queue *notification.Queue
}

func NewNotificationHandler(queue *notification.Queue) *NotificationHandler {
	return &NotificationHandler{queue: queue}
}

type NotificationListResponse struct {
	Notifications []*notification.Notification `json:"notifications"`
}

// HandleNotifications handles GET /api/notifications
func (h *NotificationHandler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := currentUser(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, NotificationListResponse{Notifications: h.queue.List(id.UserID)})
}

// HandleNotificationByID handles DELETE /api/notifications/{id} (dismiss)
func (h *NotificationHandler) HandleNotificationByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := currentUser(w, r)
	if !ok {
		return
	}

	notificationID := r.PathValue("id")
	if notificationID == "" {
		http.Error(w, "Notification ID is required", http.StatusBadRequest)
		return
	}

	if err := h.queue.Dequeue(id.UserID, notificationID); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			http.Error(w, "Notification not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to dismiss notification", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
