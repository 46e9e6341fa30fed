package service

import (
	"context"

	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/Chikothe3rd/campuseats/internal/retry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationRepository is interface for interacting with notification-related data
type NotificationRepository interface {
	// CreateNotification inserts new notification to database
	CreateNotification(ctx context.Context, n *models.Notification) (*models.Notification, error)
	// GetNotificationsByUserID returns user notifications, newest first
	GetNotificationsByUserID(ctx context.Context, userID string) ([]models.Notification, error)
	// MarkNotificationRead marks notification as read by its owner
	MarkNotificationRead(ctx context.Context, id, userID string) error
}

// NotificationService implements NotificationService interface
type NotificationService struct {
	repo      NotificationRepository
	logger    *zap.Logger
	retryOpts retry.Options
}

// NewNotificationService creates new NotificationService instance
func NewNotificationService(repo NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		logger:    logger,
		retryOpts: retry.DefaultOptions(),
	}
}

// Notify creates an in-app notification record. Failures are logged, never
// escalated: a transition must not fail because its notification did.
func (ns *NotificationService) Notify(ctx context.Context, userID, title, message, severity string, orderID *string) error {
	n := models.Notification{
		ID:       uuid.NewString(),
		UserID:   userID,
		Title:    title,
		Message:  message,
		Severity: severity,
		OrderID:  orderID,
	}

	_, err := retry.Do(ctx, ns.retryOpts, func(ctx context.Context) (*models.Notification, error) {
		return ns.repo.CreateNotification(ctx, &n)
	})
	if err != nil {
		ns.logger.Error("create notification", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	return nil
}

// List returns notifications owned by user
func (ns *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	return retry.Do(ctx, ns.retryOpts, func(ctx context.Context) ([]models.Notification, error) {
		return ns.repo.GetNotificationsByUserID(ctx, userID)
	})
}

// MarkRead marks a notification as read by its owner
func (ns *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	_, err := retry.Do(ctx, ns.retryOpts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, ns.repo.MarkNotificationRead(ctx, id, userID)
	})
	return err
}
