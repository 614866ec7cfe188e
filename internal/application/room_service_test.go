package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/classroom-reserve/internal/booking"
	"github.com/example/classroom-reserve/internal/persistence"
	"github.com/example/classroom-reserve/internal/persistence/memory"
)

func newRoomTestService(t *testing.T) (*RoomService, *memory.Storage, *failingNotifier) {
	t.Helper()

	store := memory.Open()
	t.Cleanup(func() { _ = store.Close() })

	sink := &failingNotifier{}
	clock := newTestClock(time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))
	svc := NewRoomService(store, store, sink, sequenceIDs("room"), clock.NowFunc(), nil)
	return svc, store, sink
}

var adminPrincipal = Principal{UserID: "admin-1", IsAdmin: true}

func TestRoomService_CreateRoom(t *testing.T) {
	t.Parallel()

	svc, store, _ := newRoomTestService(t)

	room, err := svc.CreateRoom(context.Background(), CreateRoomParams{
		Principal: adminPrincipal,
		Input: RoomInput{
			Name:     "Lecture Hall A",
			Number:   "101",
			Building: "Science",
			Capacity: 120,
			Features: []string{"projector", "whiteboard"},
		},
	})
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if room.ID == "" {
		t.Fatal("expected a generated room id")
	}

	stored, err := store.GetRoom(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("room was not persisted: %v", err)
	}
	if stored.Building != "Science" || stored.Number != "101" {
		t.Fatalf("unexpected stored room %+v", stored)
	}
}

func TestRoomService_CreateRoom_RejectsDuplicateKey(t *testing.T) {
	t.Parallel()

	svc, _, _ := newRoomTestService(t)

	input := RoomInput{Name: "Hall", Number: "101", Building: "Science", Capacity: 50}
	if _, err := svc.CreateRoom(context.Background(), CreateRoomParams{Principal: adminPrincipal, Input: input}); err != nil {
		t.Fatalf("first CreateRoom failed: %v", err)
	}

	input.Name = "Different name, same key"
	_, err := svc.CreateRoom(context.Background(), CreateRoomParams{Principal: adminPrincipal, Input: input})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["number"]; !ok {
		t.Fatalf("expected number field error, got %v", vErr.FieldErrors)
	}
}

func TestRoomService_CreateRoom_RequiresAdmin(t *testing.T) {
	t.Parallel()

	svc, _, _ := newRoomTestService(t)

	_, err := svc.CreateRoom(context.Background(), CreateRoomParams{
		Principal: Principal{UserID: "prof-1"},
		Input:     RoomInput{Name: "Hall", Number: "101", Building: "Science", Capacity: 50},
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRoomService_CreateRoom_ValidatesFields(t *testing.T) {
	t.Parallel()

	svc, _, _ := newRoomTestService(t)

	_, err := svc.CreateRoom(context.Background(), CreateRoomParams{
		Principal: adminPrincipal,
		Input:     RoomInput{Capacity: -3},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"name", "number", "building", "capacity"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected %s field error, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestRoomService_UpdateRoom_NotifiesUpcomingHolders(t *testing.T) {
	t.Parallel()

	svc, store, sink := newRoomTestService(t)

	room, err := svc.CreateRoom(context.Background(), CreateRoomParams{
		Principal: adminPrincipal,
		Input:     RoomInput{Name: "Hall", Number: "101", Building: "Science", Capacity: 50},
	})
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	future := booking.DateOf(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
	err = store.InsertBookings(context.Background(), []persistence.Booking{
		{ID: "b-1", RoomID: room.ID, UserID: "prof-1", Title: "Lecture", Date: future, Start: 540, End: 600, Status: booking.StatusApproved},
		{ID: "b-2", RoomID: room.ID, UserID: "prof-1", Title: "Lab", Date: future.AddDate(0, 0, 1), Start: 540, End: 600, Status: booking.StatusPending},
		{ID: "b-3", RoomID: room.ID, UserID: "prof-2", Title: "Office hours", Date: future, Start: 660, End: 720, Status: booking.StatusApproved},
	})
	if err != nil {
		t.Fatalf("failed to seed bookings: %v", err)
	}

	_, err = svc.UpdateRoom(context.Background(), UpdateRoomParams{
		Principal: adminPrincipal,
		RoomID:    room.ID,
		Input:     RoomInput{Name: "Hall (renovated)", Number: "101", Building: "Science", Capacity: 40},
	})
	if err != nil {
		t.Fatalf("UpdateRoom failed: %v", err)
	}

	// One notification per distinct holder, not per occurrence.
	if len(sink.sent) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(sink.sent))
	}
	recipients := map[string]bool{}
	for _, n := range sink.sent {
		if n.Kind != persistence.KindRoomUpdate {
			t.Fatalf("unexpected kind %s", n.Kind)
		}
		recipients[n.RecipientID] = true
	}
	if !recipients["prof-1"] || !recipients["prof-2"] {
		t.Fatalf("unexpected recipients %v", recipients)
	}
}

func TestRoomService_DeleteRoom_BlockedByUpcomingReservations(t *testing.T) {
	t.Parallel()

	svc, store, _ := newRoomTestService(t)

	room, err := svc.CreateRoom(context.Background(), CreateRoomParams{
		Principal: adminPrincipal,
		Input:     RoomInput{Name: "Hall", Number: "101", Building: "Science", Capacity: 50},
	})
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	future := booking.DateOf(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
	err = store.InsertBookings(context.Background(), []persistence.Booking{
		{ID: "b-1", RoomID: room.ID, UserID: "prof-1", Title: "Lecture", Date: future, Start: 540, End: 600, Status: booking.StatusApproved},
	})
	if err != nil {
		t.Fatalf("failed to seed booking: %v", err)
	}

	err = svc.DeleteRoom(context.Background(), adminPrincipal, room.ID)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if _, err := store.DeleteBooking(context.Background(), "b-1"); err != nil {
		t.Fatalf("failed to clear booking: %v", err)
	}
	if err := svc.DeleteRoom(context.Background(), adminPrincipal, room.ID); err != nil {
		t.Fatalf("DeleteRoom failed after clearing reservations: %v", err)
	}
}
