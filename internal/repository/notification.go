package repository

import (
	"context"

	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/Chikothe3rd/campuseats/internal/repository/postgres"
)

const (
	insertNotificationQuery = `
						INSERT INTO notifications (id, user_id, title, message, severity, order_id)
						VALUES ($1, $2, $3, $4, $5, $6)
						RETURNING created_at
`
	selectNotificationsByUserIDQuery = `
						SELECT id, user_id, title, message, severity, read, order_id, created_at FROM notifications
						WHERE user_id = $1
						ORDER BY created_at DESC
`
	markNotificationReadQuery = `
						UPDATE notifications
						SET read = true
						WHERE id = $1 AND user_id = $2
`
)

// NotificationRepository implements NotificationRepository interface
type NotificationRepository struct {
	db *postgres.DB
}

// NewNotificationRepository creates new NotificationRepository instance
func NewNotificationRepository(db *postgres.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotification inserts new notification to database
func (nr *NotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	err := nr.db.QueryRow(ctx, insertNotificationQuery,
		n.ID, n.UserID, n.Title, n.Message, n.Severity, n.OrderID).Scan(&n.CreatedAt)
	if err != nil {
		return nil, err
	}

	return n, nil
}

// GetNotificationsByUserID returns user notifications, newest first
func (nr *NotificationRepository) GetNotificationsByUserID(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := nr.db.Query(ctx, selectNotificationsByUserIDQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []models.Notification{}

	for rows.Next() {
		n := models.Notification{}
		err = rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Severity, &n.Read, &n.OrderID, &n.CreatedAt)
		if err != nil {
			continue
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

// MarkNotificationRead marks notification as read by its owner
func (nr *NotificationRepository) MarkNotificationRead(ctx context.Context, id, userID string) error {
	cmd, err := nr.db.Exec(ctx, markNotificationReadQuery, id, userID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}
