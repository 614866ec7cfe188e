package application

import (
	"time"

	"github.com/example/classroom-reserve/internal/booking"
	"github.com/example/classroom-reserve/internal/persistence"
	"github.com/example/classroom-reserve/internal/recurrence"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// Scope selects whether a mutation applies to one occurrence or to every
// member of its reservation group.
type Scope string

const (
	// ScopeSingle applies the mutation to the named occurrence only.
	ScopeSingle Scope = "single"
	// ScopeGroup applies the mutation to every occurrence sharing the group id.
	ScopeGroup Scope = "group"
)

// Known reports whether the scope is a recognised value. The empty scope is
// treated as ScopeSingle by the services.
func (s Scope) Known() bool {
	switch s {
	case ScopeSingle, ScopeGroup, "":
		return true
	}
	return false
}

// BookingInput captures caller provided reservation fields.
type BookingInput struct {
	RoomID       string
	Title        string
	Description  string
	Date         time.Time
	Start        booking.TimeOfDay
	End          booking.TimeOfDay
	RepeatPolicy recurrence.Policy
	RepeatEnd    *time.Time
	Weekly       recurrence.WeeklySchedule
}

// CheckAvailabilityParams wraps the data required for a conflict pre-check.
type CheckAvailabilityParams struct {
	Input BookingInput
}

// CheckAvailabilityResult reports the expanded candidate slots and any
// occurrences that would block them.
type CheckAvailabilityResult struct {
	Candidates []booking.Interval
	Conflicts  []booking.Occurrence
}

// Available reports whether every candidate slot is free.
func (r CheckAvailabilityResult) Available() bool {
	return len(r.Conflicts) == 0
}

// CreateBookingParams wraps the data required to create a reservation.
type CreateBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// CreateBookingResult reports the persisted occurrences of one request.
// GroupID is empty for a single non-repeating reservation.
type CreateBookingResult struct {
	Bookings []persistence.Booking
	GroupID  string
}

// DecideBookingParams wraps the data required to approve or reject a
// reservation.
type DecideBookingParams struct {
	Principal Principal
	BookingID string
	Status    booking.Status
	Scope     Scope
}

// DecideBookingResult reports the transition outcome.
type DecideBookingResult struct {
	Status        booking.Status
	AffectedCount int64
}

// EditBookingParams wraps the data required to edit a single occurrence.
type EditBookingParams struct {
	Principal Principal
	BookingID string
	Input     BookingInput
}

// DeleteBookingParams wraps the data required to delete a reservation.
type DeleteBookingParams struct {
	Principal Principal
	BookingID string
	Scope     Scope
}

// DeleteBookingResult reports how many occurrences were removed.
type DeleteBookingResult struct {
	DeletedCount int64
}

// ListBookingsParams narrows reservation listings.
type ListBookingsParams struct {
	Principal Principal
	RoomID    string
	GroupID   string
	Statuses  []booking.Status
	DateFrom  *time.Time
	DateTo    *time.Time
	Mine      bool
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name     string
	Number   string
	Building string
	Capacity int
	Features []string
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Input     RoomInput
}

// UserInput captures caller provided user attributes.
type UserInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update a user. An empty
// Password leaves the stored hash untouched.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}
