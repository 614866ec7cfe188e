package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/classroom-reserve/internal/application"
	"github.com/example/classroom-reserve/internal/booking"
	"github.com/example/classroom-reserve/internal/persistence"
	"github.com/example/classroom-reserve/internal/recurrence"
)

var (
	userCounter    uint64
	roomCounter    uint64
	bookingCounter uint64
)

var referenceTime = time.Date(2025, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record that can be
// materialised for application or persistence tests.
type UserFixture struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         persistence.Role
	Department   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Name:         fmt.Sprintf("User %03d", idx),
		Email:        fmt.Sprintf("%s@example.edu", id),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Role:         persistence.RoleProfessor,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserName overrides the generated display name.
func WithUserName(name string) UserOption {
	return func(f *UserFixture) {
		f.Name = name
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserRole sets the role on the generated fixture.
func WithUserRole(role persistence.Role) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// WithAdminRole marks the fixture as an administrator.
func WithAdminRole() UserOption {
	return WithUserRole(persistence.RoleAdmin)
}

// WithUserDepartment sets the department on the fixture.
func WithUserDepartment(department string) UserOption {
	return func(f *UserFixture) {
		f.Department = department
	}
}

// WithUserTimestamps sets both created and updated timestamps on the fixture.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Name:         f.Name,
		Email:        f.Email,
		PasswordHash: f.PasswordHash,
		Role:         f.Role,
		Department:   f.Department,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, IsAdmin: f.Role == persistence.RoleAdmin}
}

// Input returns the fixture as an application.UserInput using the supplied
// plaintext password.
func (f UserFixture) Input(password string) application.UserInput {
	return application.UserInput{
		Name:       f.Name,
		Email:      f.Email,
		Password:   password,
		Role:       string(f.Role),
		Department: f.Department,
	}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic classroom record.
type RoomFixture struct {
	ID        string
	Name      string
	Number    string
	Building  string
	Capacity  int
	Features  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	id := fmt.Sprintf("room-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := RoomFixture{
		ID:        id,
		Name:      fmt.Sprintf("Lecture Hall %03d", idx),
		Number:    fmt.Sprintf("%d", 100+idx),
		Building:  "Science Building",
		Capacity:  int(20 + idx%40),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomNumber overrides the generated room number.
func WithRoomNumber(number string) RoomOption {
	return func(f *RoomFixture) {
		f.Number = number
	}
}

// WithRoomBuilding overrides the generated building.
func WithRoomBuilding(building string) RoomOption {
	return func(f *RoomFixture) {
		f.Building = building
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomFeatures sets the feature list on the fixture.
func WithRoomFeatures(features ...string) RoomOption {
	return func(f *RoomFixture) {
		f.Features = features
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		Name:      f.Name,
		Number:    f.Number,
		Building:  f.Building,
		Capacity:  f.Capacity,
		Features:  f.Features,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.RoomInput.
func (f RoomFixture) Input() application.RoomInput {
	return application.RoomInput{
		Name:     f.Name,
		Number:   f.Number,
		Building: f.Building,
		Capacity: f.Capacity,
		Features: f.Features,
	}
}

// ---------------------------- Booking fixtures ----------------------------

// BookingFixture represents a deterministic occurrence record.
type BookingFixture struct {
	ID           string
	RoomID       string
	UserID       string
	GroupID      string
	Title        string
	Description  string
	Date         time.Time
	Start        booking.TimeOfDay
	End          booking.TimeOfDay
	Status       booking.Status
	RepeatPolicy recurrence.Policy
	RepeatEnd    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic occurrence fixture. Successive
// fixtures land on successive dates so they never collide by accident.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	id := fmt.Sprintf("booking-%03d", idx)
	date := booking.DateOf(referenceTime).AddDate(0, 0, int(idx))
	fixture := BookingFixture{
		ID:           id,
		RoomID:       "room-001",
		UserID:       "user-001",
		Title:        fmt.Sprintf("Lecture %03d", idx),
		Date:         date,
		Start:        9 * 60,
		End:          10 * 60,
		Status:       booking.StatusPending,
		RepeatPolicy: recurrence.PolicyNone,
		CreatedAt:    referenceTime,
		UpdatedAt:    referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated occurrence ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingRoom places the occurrence in the named room.
func WithBookingRoom(roomID string) BookingOption {
	return func(f *BookingFixture) {
		f.RoomID = roomID
	}
}

// WithBookingUser sets the occurrence holder.
func WithBookingUser(userID string) BookingOption {
	return func(f *BookingFixture) {
		f.UserID = userID
	}
}

// WithBookingGroup stamps the occurrence with a reservation group.
func WithBookingGroup(groupID string) BookingOption {
	return func(f *BookingFixture) {
		f.GroupID = groupID
	}
}

// WithBookingTitle sets the occurrence title.
func WithBookingTitle(title string) BookingOption {
	return func(f *BookingFixture) {
		f.Title = title
	}
}

// WithBookingDate anchors the occurrence to a calendar date.
func WithBookingDate(date time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.Date = booking.DateOf(date)
	}
}

// WithBookingTimes sets the occurrence slot.
func WithBookingTimes(start, end booking.TimeOfDay) BookingOption {
	return func(f *BookingFixture) {
		f.Start = start
		f.End = end
	}
}

// WithBookingStatus sets the lifecycle state.
func WithBookingStatus(status booking.Status) BookingOption {
	return func(f *BookingFixture) {
		f.Status = status
	}
}

// WithBookingRepeat sets the repeat policy and its end bound.
func WithBookingRepeat(policy recurrence.Policy, repeatEnd time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.RepeatPolicy = policy
		end := booking.DateOf(repeatEnd)
		f.RepeatEnd = &end
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:           f.ID,
		RoomID:       f.RoomID,
		UserID:       f.UserID,
		GroupID:      f.GroupID,
		Title:        f.Title,
		Description:  f.Description,
		Date:         f.Date,
		Start:        f.Start,
		End:          f.End,
		Status:       f.Status,
		RepeatPolicy: f.RepeatPolicy,
		RepeatEnd:    f.RepeatEnd,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Occurrence returns the fixture in the conflict checker's shape.
func (f BookingFixture) Occurrence() booking.Occurrence {
	return booking.Occurrence{
		ID:      f.ID,
		RoomID:  f.RoomID,
		GroupID: f.GroupID,
		Title:   f.Title,
		Status:  f.Status,
		Interval: booking.Interval{
			Date:  f.Date,
			Start: f.Start,
			End:   f.End,
		},
	}
}
