package persistence

import (
	"context"
	"time"

	"github.com/example/classroom-reserve/internal/booking"
)

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// RoomRepository exposes CRUD operations for rooms. CreateRoom and
// UpdateRoom must refuse a (building, number) pair already taken by another
// room with ErrDuplicate.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// BookingFilter narrows booking queries. Zero-valued fields are ignored;
// DateFrom/DateTo bound the occurrence date inclusively.
type BookingFilter struct {
	RoomID   string
	UserID   string
	GroupID  string
	Statuses []booking.Status
	DateFrom *time.Time
	DateTo   *time.Time
}

// BookingRepository stores reservation occurrences. Batch operations carry
// the group-consistency contract: InsertBookings is all-or-nothing, and the
// group-scope mutations return the count actually affected so callers can
// detect a partially applied write on stores without multi-document
// transactions. Status writes report modified counts, not matched counts:
// an occurrence the write would leave byte-identical (same status, same
// updated_at) is not counted, on every backend.
type BookingRepository interface {
	InsertBookings(ctx context.Context, bookings []Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	UpdateBooking(ctx context.Context, b Booking) error
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	SetBookingStatus(ctx context.Context, id string, status booking.Status, at time.Time) (int64, error)
	SetGroupStatus(ctx context.Context, groupID string, status booking.Status, at time.Time) (int64, error)
	DeleteBooking(ctx context.Context, id string) (int64, error)
	DeleteGroup(ctx context.Context, groupID string) (int64, error)
}

// NotificationRepository stores per-recipient notifications.
type NotificationRepository interface {
	InsertNotification(ctx context.Context, n Notification) error
	ListNotificationsForRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id, recipientID string) (int64, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error)
}
