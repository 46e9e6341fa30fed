package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Chikothe3rd/campuseats/internal/apperr"
	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/go-chi/chi/v5"
)

type NotificationService interface {
	// List returns notifications owned by user
	List(ctx context.Context, userID string) ([]models.Notification, error)
	// MarkRead marks a notification as read by its owner
	MarkRead(ctx context.Context, id, userID string) error
}

// NotificationHandler represents HTTP handler for notification-related requests
type NotificationHandler struct {
	svc NotificationService
}

// NewNotificationHandler creates new NotificationHandler instance
func NewNotificationHandler(svc NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type notificationResponse struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Severity  string  `json:"severity"`
	Read      bool    `json:"read"`
	OrderID   *string `json:"order_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// ListNotifications returns the actor's notifications, newest first
// 200 — успешная обработка запроса;
// 401 — пользователь не аутентифицирован;
// 500 — внутренняя ошибка сервера.
func (nh *NotificationHandler) ListNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		notifications, err := nh.svc.List(r.Context(), actor.UserID)
		if err != nil {
			http.Error(w, apperr.UserMessage(err), http.StatusInternalServerError)
			return
		}

		resp := make([]notificationResponse, 0, len(notifications))
		for _, n := range notifications {
			resp = append(resp, notificationResponse{
				ID:        n.ID,
				Title:     n.Title,
				Message:   n.Message,
				Severity:  n.Severity,
				Read:      n.Read,
				OrderID:   n.OrderID,
				CreatedAt: n.CreatedAt.Format(time.RFC3339),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}

// MarkNotificationRead marks one notification as read
// 204 — уведомление отмечено прочитанным;
// 401 — пользователь не аутентифицирован;
// 404 — уведомление не найдено;
// 500 — внутренняя ошибка сервера.
func (nh *NotificationHandler) MarkNotificationRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		err := nh.svc.MarkRead(r.Context(), chi.URLParam(r, "notificationID"), actor.UserID)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "notification not found", http.StatusNotFound)
			default:
				http.Error(w, apperr.UserMessage(err), http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
