package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/farmdirect/api/internal/domain"
)

// NotificationService is the slice of the notification sink the handlers need.
type NotificationService interface {
	List(ctx context.Context, userID string) ([]domain.Notification, error)
	Clear(ctx context.Context, userID string) error
}

// HandleNotifications serves GET /notifications (newest first) and
// DELETE /notifications (bulk clear).
func HandleNotifications(svc NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		switch r.Method {
		case http.MethodGet:
			notifications, err := svc.List(r.Context(), identity.UserID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			out := make([]notificationResponse, 0, len(notifications))
			for _, n := range notifications {
				out = append(out, notificationResponse{
					ID:        n.ID,
					Title:     n.Title,
					Message:   n.Message,
					Link:      n.Link,
					CreatedAt: n.CreatedAt,
				})
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(listNotificationsResponse{Notifications: out})

		case http.MethodDelete:
			if err := svc.Clear(r.Context(), identity.UserID); err != nil {
				writeDomainError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

type listNotificationsResponse struct {
	Notifications []notificationResponse `json:"notifications"`
}

type notificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
