package persistence

import (
	"time"

	"github.com/example/classroom-reserve/internal/booking"
	"github.com/example/classroom-reserve/internal/recurrence"
)

// Role is the access level of a stored user account.
type Role string

const (
	// RoleProfessor may request reservations for their own use.
	RoleProfessor Role = "professor"
	// RoleAdmin may manage rooms, users, and decide reservations.
	RoleAdmin Role = "admin"
)

// Known reports whether the role is a recognised value.
func (r Role) Known() bool {
	return r == RoleProfessor || r == RoleAdmin
}

// User represents a stored account.
type User struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         Role      `bson:"role"`
	Department   string    `bson:"department,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// Room represents a reservable classroom. Rooms are uniquely keyed by
// (building, number).
type Room struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Number    string    `bson:"number"`
	Building  string    `bson:"building"`
	Capacity  int       `bson:"capacity"`
	Features  []string  `bson:"features"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Booking is one stored occurrence: a single dated, timed reservation of a
// room. Occurrences generated from one recurring request share a GroupID.
type Booking struct {
	ID           string            `bson:"_id"`
	RoomID       string            `bson:"room_id"`
	UserID       string            `bson:"user_id"`
	GroupID      string            `bson:"group_id,omitempty"`
	Title        string            `bson:"title"`
	Description  string            `bson:"description,omitempty"`
	Date         time.Time         `bson:"date"`
	Start        booking.TimeOfDay `bson:"start_minutes"`
	End          booking.TimeOfDay `bson:"end_minutes"`
	Status       booking.Status    `bson:"status"`
	RepeatPolicy recurrence.Policy `bson:"repeat_policy"`
	RepeatEnd    *time.Time        `bson:"repeat_end,omitempty"`
	CreatedAt    time.Time         `bson:"created_at"`
	UpdatedAt    time.Time         `bson:"updated_at"`
}

// Interval returns the occurrence's reservable slot.
func (b Booking) Interval() booking.Interval {
	return booking.Interval{Date: b.Date, Start: b.Start, End: b.End}
}

// NotificationKind tags the event a notification was produced by.
type NotificationKind string

const (
	KindBookingRequest   NotificationKind = "booking_request"
	KindBookingApproved  NotificationKind = "booking_approved"
	KindBookingRejected  NotificationKind = "booking_rejected"
	KindBookingCancelled NotificationKind = "booking_cancelled"
	KindBookingUpdated   NotificationKind = "booking_updated"
	KindRoomUpdate       NotificationKind = "room_update"
	KindSystem           NotificationKind = "system"
)

// Notification is a stored fire-and-forget message to one recipient,
// optionally back-referencing the occurrence or group that triggered it.
type Notification struct {
	ID          string           `bson:"_id"`
	RecipientID string           `bson:"recipient_id"`
	SenderID    string           `bson:"sender_id,omitempty"`
	Kind        NotificationKind `bson:"kind"`
	Title       string           `bson:"title"`
	Message     string           `bson:"message"`
	BookingID   string           `bson:"booking_id,omitempty"`
	GroupID     string           `bson:"group_id,omitempty"`
	Read        bool             `bson:"read"`
	CreatedAt   time.Time        `bson:"created_at"`
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string     `bson:"_id"`
	UserID    string     `bson:"user_id"`
	Token     string     `bson:"token"`
	ExpiresAt time.Time  `bson:"expires_at"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
	RevokedAt *time.Time `bson:"revoked_at,omitempty"`
}
