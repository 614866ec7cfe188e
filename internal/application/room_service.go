package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/classroom-reserve/internal/booking"
	"github.com/example/classroom-reserve/internal/persistence"
)

// BookingIndex exposes the occurrence lookups needed by the room service to
// notify holders of upcoming reservations.
type BookingIndex interface {
	ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error)
}

// RoomService manages the room catalog.
type RoomService struct {
	rooms       persistence.RoomRepository
	bookings    BookingIndex
	notifier    Notifier
	idGenerator func() string
	now         func() time.Time
	logger      *zap.Logger
}

// NewRoomService wires dependencies for room catalog operations.
func NewRoomService(rooms persistence.RoomRepository, bookings BookingIndex, notifier Notifier, idGenerator func() string, now func() time.Time, logger *zap.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{
		rooms:       rooms,
		bookings:    bookings,
		notifier:    notifier,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, fields ...zap.Field) *zap.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, fields...)
}

// CreateRoom validates and persists a new room. Only admins may manage the
// catalog; a (building, number) pair already in use is a field error.
func (s *RoomService) CreateRoom(ctx context.Context, params CreateRoomParams) (persistence.Room, error) {
	if s == nil || s.rooms == nil {
		return persistence.Room{}, fmt.Errorf("room repository not configured")
	}
	if !params.Principal.IsAdmin {
		return persistence.Room{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "CreateRoom",
		zap.String("building", params.Input.Building),
		zap.String("number", params.Input.Number),
	)

	input := params.Input
	vErr := &ValidationError{}
	validateRoomCore(input, vErr)
	if vErr.HasErrors() {
		return persistence.Room{}, vErr
	}

	now := s.now()
	room := persistence.Room{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(input.Name),
		Number:    strings.TrimSpace(input.Number),
		Building:  strings.TrimSpace(input.Building),
		Capacity:  input.Capacity,
		Features:  input.Features,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.rooms.CreateRoom(ctx, room); err != nil {
		if isDuplicateError(err) {
			vErr.add("number", "room number already exists in this building")
			return persistence.Room{}, vErr
		}
		logger.Error("room creation failed", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
		return persistence.Room{}, err
	}

	logger.Info("room created", zap.String("room_id", room.ID))
	return room, nil
}

// UpdateRoom applies catalog changes and notifies holders of upcoming
// reservations in the room.
func (s *RoomService) UpdateRoom(ctx context.Context, params UpdateRoomParams) (persistence.Room, error) {
	if s == nil || s.rooms == nil {
		return persistence.Room{}, fmt.Errorf("room repository not configured")
	}
	if !params.Principal.IsAdmin {
		return persistence.Room{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "UpdateRoom", zap.String("room_id", params.RoomID))

	existing, err := s.rooms.GetRoom(ctx, params.RoomID)
	if err != nil {
		return persistence.Room{}, mapRepoError(err)
	}

	input := params.Input
	vErr := &ValidationError{}
	validateRoomCore(input, vErr)
	if vErr.HasErrors() {
		return persistence.Room{}, vErr
	}

	updated := existing
	updated.Name = strings.TrimSpace(input.Name)
	updated.Number = strings.TrimSpace(input.Number)
	updated.Building = strings.TrimSpace(input.Building)
	updated.Capacity = input.Capacity
	updated.Features = input.Features
	updated.UpdatedAt = s.now()

	if err := s.rooms.UpdateRoom(ctx, updated); err != nil {
		if isDuplicateError(err) {
			vErr.add("number", "room number already exists in this building")
			return persistence.Room{}, vErr
		}
		logger.Error("room update failed", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
		return persistence.Room{}, mapRepoError(err)
	}

	s.notifyRoomChange(ctx, logger, params.Principal.UserID, updated)

	logger.Info("room updated")
	return updated, nil
}

// GetRoom returns one room by id.
func (s *RoomService) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if s == nil || s.rooms == nil {
		return persistence.Room{}, fmt.Errorf("room repository not configured")
	}
	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return persistence.Room{}, mapRepoError(err)
	}
	return room, nil
}

// ListRooms enumerates the catalog.
func (s *RoomService) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	if s == nil || s.rooms == nil {
		return nil, fmt.Errorf("room repository not configured")
	}
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// DeleteRoom removes a room from the catalog. Rooms with upcoming
// reservations cannot be deleted.
func (s *RoomService) DeleteRoom(ctx context.Context, principal Principal, roomID string) error {
	if s == nil || s.rooms == nil {
		return fmt.Errorf("room repository not configured")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteRoom", zap.String("room_id", roomID))

	upcoming, err := s.upcomingBookings(ctx, roomID)
	if err != nil {
		return err
	}
	if len(upcoming) > 0 {
		vErr := &ValidationError{}
		vErr.add("room_id", "room has upcoming reservations")
		return vErr
	}

	if err := s.rooms.DeleteRoom(ctx, roomID); err != nil {
		logger.Error("room deletion failed", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
		return mapRepoError(err)
	}
	logger.Info("room deleted")
	return nil
}

func (s *RoomService) upcomingBookings(ctx context.Context, roomID string) ([]persistence.Booking, error) {
	if s.bookings == nil {
		return nil, nil
	}
	from := booking.DateOf(s.now())
	rows, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{
		RoomID:   roomID,
		Statuses: []booking.Status{booking.StatusPending, booking.StatusApproved},
		DateFrom: &from,
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return rows, nil
}

// notifyRoomChange tells each distinct holder of an upcoming reservation that
// the room details changed.
func (s *RoomService) notifyRoomChange(ctx context.Context, logger *zap.Logger, changerID string, room persistence.Room) {
	if s.notifier == nil {
		return
	}
	upcoming, err := s.upcomingBookings(ctx, room.ID)
	if err != nil {
		logger.Warn("failed to load reservations for room change notification", zap.Error(err))
		return
	}

	seen := make(map[string]struct{}, len(upcoming))
	for _, row := range upcoming {
		if _, ok := seen[row.UserID]; ok {
			continue
		}
		seen[row.UserID] = struct{}{}
		notify(ctx, logger, s.notifier, persistence.Notification{
			RecipientID: row.UserID,
			SenderID:    changerID,
			Kind:        persistence.KindRoomUpdate,
			Title:       "Room details changed",
			Message:     fmt.Sprintf("Room %s %s (%s) was updated; please review your upcoming reservations.", room.Building, room.Number, room.Name),
		})
	}
}

func validateRoomCore(input RoomInput, vErr *ValidationError) {
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.Number) == "" {
		vErr.add("number", "number is required")
	}
	if strings.TrimSpace(input.Building) == "" {
		vErr.add("building", "building is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
}
