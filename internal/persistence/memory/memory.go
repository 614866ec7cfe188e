// Package memory provides a mutex-guarded in-memory implementation of the
// persistence repositories, used by tests and the dev-mode store backend.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/classroom-reserve/internal/booking"
	"github.com/example/classroom-reserve/internal/persistence"
)

// Storage implements every repository interface over in-process maps.
type Storage struct {
	mu            sync.RWMutex
	users         map[string]persistence.User
	rooms         map[string]persistence.Room
	bookings      map[string]persistence.Booking
	notifications map[string]persistence.Notification
	sessions      map[string]persistence.Session
}

// Open returns an empty Storage.
func Open() *Storage {
	return &Storage{
		users:         make(map[string]persistence.User),
		rooms:         make(map[string]persistence.Room),
		bookings:      make(map[string]persistence.Booking),
		notifications: make(map[string]persistence.Notification),
		sessions:      make(map[string]persistence.Session),
	}
}

// Close releases resources held by the storage. No-op for memory.
func (s *Storage) Close() error { return nil }

// --- UserRepository ---

func (s *Storage) CreateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return persistence.ErrDuplicate
	}
	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}
	s.users[user.ID] = user
	return nil
}

func (s *Storage) UpdateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}
	s.users[user.ID] = user
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range s.users {
		if strings.ToLower(user.Email) == email {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (s *Storage) ListUsers(ctx context.Context) ([]persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]persistence.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Storage) ensureUniqueEmailLocked(id, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	for otherID, other := range s.users {
		if otherID == id {
			continue
		}
		if strings.ToLower(other.Email) == email {
			return persistence.ErrDuplicate
		}
	}
	return nil
}

// --- RoomRepository ---

func (s *Storage) CreateRoom(ctx context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; ok {
		return persistence.ErrDuplicate
	}
	if err := s.ensureUniqueRoomKeyLocked(room.ID, room.Building, room.Number); err != nil {
		return err
	}
	s.rooms[room.ID] = cloneRoom(room)
	return nil
}

func (s *Storage) UpdateRoom(ctx context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueRoomKeyLocked(room.ID, room.Building, room.Number); err != nil {
		return err
	}
	s.rooms[room.ID] = cloneRoom(room)
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return cloneRoom(room), nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]persistence.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, cloneRoom(room))
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Building != rooms[j].Building {
			return rooms[i].Building < rooms[j].Building
		}
		return rooms[i].Number < rooms[j].Number
	})
	return rooms, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.rooms, id)
	return nil
}

func (s *Storage) ensureUniqueRoomKeyLocked(id, building, number string) error {
	for otherID, other := range s.rooms {
		if otherID == id {
			continue
		}
		if other.Building == building && other.Number == number {
			return persistence.ErrDuplicate
		}
	}
	return nil
}

// --- BookingRepository ---

func (s *Storage) InsertBookings(ctx context.Context, bookings []persistence.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range bookings {
		if _, ok := s.bookings[b.ID]; ok {
			return persistence.ErrDuplicate
		}
	}
	for _, b := range bookings {
		s.bookings[b.ID] = b
	}
	return nil
}

func (s *Storage) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return b, nil
}

func (s *Storage) UpdateBooking(ctx context.Context, b persistence.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[b.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.bookings[b.ID] = b
	return nil
}

func (s *Storage) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.Booking, 0)
	for _, b := range s.bookings {
		if matchesFilter(b, filter) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Storage) SetBookingStatus(ctx context.Context, id string, status booking.Status, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return 0, nil
	}
	if b.Status == status && b.UpdatedAt.Equal(at) {
		return 0, nil
	}
	b.Status = status
	b.UpdatedAt = at
	s.bookings[id] = b
	return 1, nil
}

func (s *Storage) SetGroupStatus(ctx context.Context, groupID string, status booking.Status, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Count like UpdateMany's ModifiedCount: a member the write would leave
	// untouched is matched but not modified.
	var affected int64
	for id, b := range s.bookings {
		if b.GroupID != groupID {
			continue
		}
		if b.Status == status && b.UpdatedAt.Equal(at) {
			continue
		}
		b.Status = status
		b.UpdatedAt = at
		s.bookings[id] = b
		affected++
	}
	return affected, nil
}

func (s *Storage) DeleteBooking(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[id]; !ok {
		return 0, nil
	}
	delete(s.bookings, id)
	return 1, nil
}

func (s *Storage) DeleteGroup(ctx context.Context, groupID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, b := range s.bookings {
		if b.GroupID == groupID {
			delete(s.bookings, id)
			deleted++
		}
	}
	return deleted, nil
}

func matchesFilter(b persistence.Booking, filter persistence.BookingFilter) bool {
	if filter.RoomID != "" && b.RoomID != filter.RoomID {
		return false
	}
	if filter.UserID != "" && b.UserID != filter.UserID {
		return false
	}
	if filter.GroupID != "" && b.GroupID != filter.GroupID {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if b.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.DateFrom != nil && b.Date.Before(booking.DateOf(*filter.DateFrom)) {
		return false
	}
	if filter.DateTo != nil && b.Date.After(booking.DateOf(*filter.DateTo)) {
		return false
	}
	return true
}

// --- NotificationRepository ---

func (s *Storage) InsertNotification(ctx context.Context, n persistence.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notifications[n.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.notifications[n.ID] = n
	return nil
}

func (s *Storage) ListNotificationsForRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]persistence.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.Notification, 0)
	for _, n := range s.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Storage) MarkNotificationRead(ctx context.Context, id, recipientID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return 0, nil
	}
	n.Read = true
	s.notifications[id] = n
	return 1, nil
}

// --- SessionRepository ---

func (s *Storage) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.sessions {
		if other.Token == session.Token {
			return persistence.Session{}, persistence.ErrDuplicate
		}
	}
	s.sessions[session.ID] = session
	return session, nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.Token == token {
			return session, nil
		}
	}
	return persistence.Session{}, persistence.ErrNotFound
}

func (s *Storage) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.sessions {
		if session.Token == token {
			at := revokedAt
			session.RevokedAt = &at
			session.UpdatedAt = revokedAt
			s.sessions[id] = session
			return session, nil
		}
	}
	return persistence.Session{}, persistence.ErrNotFound
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, session := range s.sessions {
		if session.ExpiresAt.Before(reference) {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func cloneRoom(room persistence.Room) persistence.Room {
	room.Features = append([]string(nil), room.Features...)
	return room
}
