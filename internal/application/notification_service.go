package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/classroom-reserve/internal/persistence"
)

// NotificationService surfaces the per-recipient notification feed. Writes
// happen through the Notifier on booking and room mutations; this service
// only reads and acknowledges.
type NotificationService struct {
	notifications persistence.NotificationRepository
	logger        *zap.Logger
}

func NewNotificationService(notifications persistence.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		logger:        defaultLogger(logger),
	}
}

// ListNotifications returns the caller's notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, principal Principal, unreadOnly bool) ([]persistence.Notification, error) {
	if s == nil || s.notifications == nil {
		return nil, fmt.Errorf("notification repository not configured")
	}
	items, err := s.notifications.ListNotificationsForRecipient(ctx, principal.UserID, unreadOnly)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return items, nil
}

// MarkRead acknowledges one notification. A recipient can only acknowledge
// their own notifications; anything else reports not found.
func (s *NotificationService) MarkRead(ctx context.Context, principal Principal, notificationID string) error {
	if s == nil || s.notifications == nil {
		return fmt.Errorf("notification repository not configured")
	}
	count, err := s.notifications.MarkNotificationRead(ctx, notificationID, principal.UserID)
	if err != nil {
		return mapRepoError(err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
