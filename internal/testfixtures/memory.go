package testfixtures

import (
	"testing"

	"github.com/example/classroom-reserve/internal/persistence"
	"github.com/example/classroom-reserve/internal/persistence/memory"
)

// MemoryHarness provides repository access backed by an in-memory storage
// instance for integration-style persistence tests.
type MemoryHarness struct {
	Store *memory.Storage

	Users         persistence.UserRepository
	Rooms         persistence.RoomRepository
	Bookings      persistence.BookingRepository
	Notifications persistence.NotificationRepository
	Sessions      persistence.SessionRepository
}

// NewMemoryHarness constructs a MemoryHarness and registers its cleanup with
// the provided testing.TB.
func NewMemoryHarness(tb testing.TB) *MemoryHarness {
	tb.Helper()

	store := memory.Open()
	tb.Cleanup(func() { _ = store.Close() })

	return &MemoryHarness{
		Store:         store,
		Users:         store,
		Rooms:         store,
		Bookings:      store,
		Notifications: store,
		Sessions:      store,
	}
}
