package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/classroom-reserve/internal/persistence"
)

// Notifier delivers user-facing notifications. Implementations must be safe
// for concurrent use; send failures are the caller's to log and swallow, a
// failed delivery never fails the operation that produced it.
type Notifier interface {
	Send(ctx context.Context, n persistence.Notification) error
}

// StoreNotifier persists notifications to the notification repository.
type StoreNotifier struct {
	notifications persistence.NotificationRepository
	idGenerator   func() string
	now           func() time.Time
}

// NewStoreNotifier wires a repository-backed notifier.
func NewStoreNotifier(notifications persistence.NotificationRepository, idGenerator func() string, now func() time.Time) *StoreNotifier {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &StoreNotifier{notifications: notifications, idGenerator: idGenerator, now: now}
}

// Send stores the notification, stamping id and creation time when absent.
func (n *StoreNotifier) Send(ctx context.Context, notification persistence.Notification) error {
	if n == nil || n.notifications == nil {
		return fmt.Errorf("notification repository not configured")
	}
	if notification.ID == "" {
		notification.ID = n.idGenerator()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = n.now()
	}
	return n.notifications.InsertNotification(ctx, notification)
}

// notify delivers best-effort: failures are logged and dropped so booking
// transitions never depend on notification delivery.
func notify(ctx context.Context, logger *zap.Logger, notifier Notifier, n persistence.Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Send(ctx, n); err != nil {
		logger.Warn("failed to deliver notification",
			zap.String("recipient_id", n.RecipientID),
			zap.String("kind", string(n.Kind)),
			zap.Error(err),
		)
	}
}

const notificationDateLayout = "Jan 2, 2006"

// describeSpan renders a single date, or the inclusive first-to-last range of
// a recurring reservation, for notification messages.
func describeSpan(dates []time.Time) string {
	if len(dates) == 0 {
		return ""
	}
	first, last := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	if first.Equal(last) {
		return first.Format(notificationDateLayout)
	}
	return fmt.Sprintf("%s to %s", first.Format(notificationDateLayout), last.Format(notificationDateLayout))
}

func bookingDates(bookings []persistence.Booking) []time.Time {
	dates := make([]time.Time, 0, len(bookings))
	for _, b := range bookings {
		dates = append(dates, b.Date)
	}
	return dates
}
