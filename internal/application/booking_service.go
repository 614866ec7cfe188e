package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/classroom-reserve/internal/booking"
	"github.com/example/classroom-reserve/internal/persistence"
	"github.com/example/classroom-reserve/internal/recurrence"
)

// RoomCatalog exposes the room lookups needed by the booking service.
type RoomCatalog interface {
	GetRoom(ctx context.Context, id string) (persistence.Room, error)
}

// UserDirectory exposes the user lookups needed by the booking service.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]persistence.User, error)
}

// BookingService orchestrates recurrence expansion, conflict resolution,
// reservation group management, and status transitions.
type BookingService struct {
	bookings    persistence.BookingRepository
	rooms       RoomCatalog
	users       UserDirectory
	notifier    Notifier
	idGenerator func() string
	now         func() time.Time
	logger      *zap.Logger

	roomLocks keyedLocks
}

// NewBookingService wires dependencies for reservation operations.
func NewBookingService(bookings persistence.BookingRepository, rooms RoomCatalog, users UserDirectory, notifier Notifier, idGenerator func() string, now func() time.Time, logger *zap.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:    bookings,
		rooms:       rooms,
		users:       users,
		notifier:    notifier,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, fields ...zap.Field) *zap.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, fields...)
}

// CheckAvailability expands the requested slots and reports which approved
// occurrences would block them. It performs no writes and never returns a
// conflict as an error.
func (s *BookingService) CheckAvailability(ctx context.Context, params CheckAvailabilityParams) (CheckAvailabilityResult, error) {
	if s == nil {
		return CheckAvailabilityResult{}, fmt.Errorf("BookingService is nil")
	}

	input := params.Input
	if input.RepeatPolicy == "" {
		input.RepeatPolicy = recurrence.PolicyNone
	}

	candidates, err := s.expandInput(input)
	if err != nil {
		return CheckAvailabilityResult{}, err
	}

	existing, err := s.loadOccurrences(ctx, params.Input.RoomID, candidates, booking.BlockingAtCreation)
	if err != nil {
		return CheckAvailabilityResult{}, err
	}

	return CheckAvailabilityResult{
		Candidates: candidates,
		Conflicts:  booking.FindConflicts(existing, candidates, "", "", booking.BlockingAtCreation),
	}, nil
}

// CreateBooking expands, re-checks for conflicts under the room lock, and
// persists every occurrence of the request in one batch with status pending.
// Recurring requests share a freshly generated group id.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (result CreateBookingResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	input := params.Input
	if input.RepeatPolicy == "" {
		input.RepeatPolicy = recurrence.PolicyNone
	}
	logger := s.loggerWith(ctx, "CreateBooking",
		zap.String("room_id", input.RoomID),
		zap.String("user_id", params.Principal.UserID),
		zap.String("repeat_policy", string(input.RepeatPolicy)),
	)
	defer func() {
		if err != nil {
			logger.Error("booking creation failed", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
			return
		}
		logger.Info("booking created",
			zap.String("group_id", result.GroupID),
			zap.Int("occurrences", len(result.Bookings)),
		)
	}()

	if err = s.ensureRoomExists(ctx, input.RoomID); err != nil {
		return
	}

	var candidates []booking.Interval
	candidates, err = s.expandInput(input)
	if err != nil {
		return
	}

	unlock := s.roomLocks.acquire(input.RoomID)
	defer unlock()

	var existing []booking.Occurrence
	existing, err = s.loadOccurrences(ctx, input.RoomID, candidates, booking.BlockingAtCreation)
	if err != nil {
		return
	}

	conflicts := booking.FindConflicts(existing, candidates, "", "", booking.BlockingAtCreation)
	if len(conflicts) > 0 {
		err = &ConflictError{Conflicts: conflicts}
		return
	}

	now := s.now()
	groupID := ""
	if input.RepeatPolicy != recurrence.PolicyNone {
		groupID = s.idGenerator()
	}

	rows := make([]persistence.Booking, 0, len(candidates))
	for _, candidate := range candidates {
		rows = append(rows, persistence.Booking{
			ID:           s.idGenerator(),
			RoomID:       input.RoomID,
			UserID:       params.Principal.UserID,
			GroupID:      groupID,
			Title:        strings.TrimSpace(input.Title),
			Description:  input.Description,
			Date:         candidate.Date,
			Start:        candidate.Start,
			End:          candidate.End,
			Status:       booking.StatusPending,
			RepeatPolicy: input.RepeatPolicy,
			RepeatEnd:    input.RepeatEnd,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	if err = s.bookings.InsertBookings(ctx, rows); err != nil {
		err = mapRepoError(err)
		return
	}

	s.notifyAdmins(ctx, logger, params.Principal.UserID, rows)

	result = CreateBookingResult{Bookings: rows, GroupID: groupID}
	return
}

// GetBooking returns one occurrence by id.
func (s *BookingService) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if s == nil || s.bookings == nil {
		return persistence.Booking{}, fmt.Errorf("booking repository not configured")
	}
	b, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return persistence.Booking{}, mapRepoError(err)
	}
	return b, nil
}

// ListBookings enumerates occurrences matching the filter, ordered by date
// then start time.
func (s *BookingService) ListBookings(ctx context.Context, params ListBookingsParams) ([]persistence.Booking, error) {
	if s == nil || s.bookings == nil {
		return nil, fmt.Errorf("booking repository not configured")
	}

	filter := persistence.BookingFilter{
		RoomID:   params.RoomID,
		GroupID:  params.GroupID,
		Statuses: params.Statuses,
		DateFrom: params.DateFrom,
		DateTo:   params.DateTo,
	}
	if params.Mine {
		filter.UserID = params.Principal.UserID
	}

	bookings, err := s.bookings.ListBookings(ctx, filter)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return bookings, nil
}

// DecideBooking applies an admin approval or rejection. Approval re-checks the
// affected occurrences against already-approved reservations of the same room
// before the transition; scope group transitions every member sharing the
// group id and reports how many were affected.
func (s *BookingService) DecideBooking(ctx context.Context, params DecideBookingParams) (result DecideBookingResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "DecideBooking",
		zap.String("booking_id", params.BookingID),
		zap.String("status", string(params.Status)),
		zap.String("scope", string(params.Scope)),
	)
	defer func() {
		if err != nil {
			logger.Error("booking decision failed", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
			return
		}
		logger.Info("booking decided", zap.Int64("affected", result.AffectedCount))
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if params.Status != booking.StatusApproved && params.Status != booking.StatusRejected {
		vErr.add("status", "status must be approved or rejected")
	}
	if !params.Scope.Known() {
		vErr.add("scope", "scope must be single or group")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var target persistence.Booking
	target, err = s.bookings.GetBooking(ctx, params.BookingID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	scope := params.Scope
	if scope == ScopeGroup && target.GroupID == "" {
		scope = ScopeSingle
	}

	members := []persistence.Booking{target}
	if scope == ScopeGroup {
		members, err = s.bookings.ListBookings(ctx, persistence.BookingFilter{GroupID: target.GroupID})
		if err != nil {
			err = mapRepoError(err)
			return
		}
	}

	unlock := s.roomLocks.acquire(target.RoomID)
	defer unlock()

	if params.Status == booking.StatusApproved {
		candidates := make([]booking.Interval, 0, len(members))
		for _, member := range members {
			candidates = append(candidates, member.Interval())
		}

		var existing []booking.Occurrence
		existing, err = s.loadOccurrences(ctx, target.RoomID, candidates, booking.BlockingAtApproval)
		if err != nil {
			return
		}

		conflicts := booking.FindConflicts(existing, candidates, target.ID, target.GroupID, booking.BlockingAtApproval)
		if len(conflicts) > 0 {
			err = &ConflictError{Conflicts: conflicts}
			return
		}
	}

	var affected int64
	if scope == ScopeGroup {
		affected, err = s.bookings.SetGroupStatus(ctx, target.GroupID, params.Status, s.now())
	} else {
		affected, err = s.bookings.SetBookingStatus(ctx, target.ID, params.Status, s.now())
	}
	if err != nil {
		err = mapRepoError(err)
		return
	}

	s.notifyDecision(ctx, logger, params.Principal.UserID, target, members, params.Status)

	result = DecideBookingResult{Status: params.Status, AffectedCount: affected}
	return
}

// EditBooking updates a single occurrence after re-validating and re-checking
// conflicts against everything not rejected, excluding the occurrence itself.
func (s *BookingService) EditBooking(ctx context.Context, params EditBookingParams) (updated persistence.Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "EditBooking", zap.String("booking_id", params.BookingID))
	defer func() {
		if err != nil {
			logger.Error("booking edit failed", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
			return
		}
		logger.Info("booking edited", zap.String("room_id", updated.RoomID))
	}()

	var existing persistence.Booking
	existing, err = s.bookings.GetBooking(ctx, params.BookingID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if existing.UserID != params.Principal.UserID && !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	if input.RoomID == "" {
		input.RoomID = existing.RoomID
	}
	if input.Date.IsZero() {
		input.Date = existing.Date
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	candidate := booking.Interval{Date: booking.DateOf(input.Date), Start: input.Start, End: input.End}
	if !candidate.Valid() {
		vErr.add("time", "end time must be after start time")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if input.RoomID != existing.RoomID {
		if err = s.ensureRoomExists(ctx, input.RoomID); err != nil {
			return
		}
	}

	unlock := s.roomLocks.acquire(input.RoomID)
	defer unlock()

	var occupied []booking.Occurrence
	occupied, err = s.loadOccurrences(ctx, input.RoomID, []booking.Interval{candidate}, booking.BlockingAtEdit)
	if err != nil {
		return
	}

	conflicts := booking.FindConflicts(occupied, []booking.Interval{candidate}, existing.ID, "", booking.BlockingAtEdit)
	if len(conflicts) > 0 {
		err = &ConflictError{Conflicts: conflicts}
		return
	}

	next := existing
	next.RoomID = input.RoomID
	next.Title = strings.TrimSpace(input.Title)
	next.Description = input.Description
	next.Date = candidate.Date
	next.Start = candidate.Start
	next.End = candidate.End
	next.UpdatedAt = s.now()

	if err = s.bookings.UpdateBooking(ctx, next); err != nil {
		err = mapRepoError(err)
		return
	}

	if params.Principal.UserID != existing.UserID {
		notify(ctx, logger, s.notifier, persistence.Notification{
			RecipientID: existing.UserID,
			SenderID:    params.Principal.UserID,
			Kind:        persistence.KindBookingUpdated,
			Title:       "Reservation updated",
			Message:     fmt.Sprintf("Your reservation %q on %s was updated by an administrator.", next.Title, describeSpan([]time.Time{next.Date})),
			BookingID:   next.ID,
			GroupID:     next.GroupID,
		})
	}

	updated = next
	return
}

// DeleteBooking removes one occurrence or a whole reservation group and
// reports how many rows were removed.
func (s *BookingService) DeleteBooking(ctx context.Context, params DeleteBookingParams) (result DeleteBookingResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "DeleteBooking",
		zap.String("booking_id", params.BookingID),
		zap.String("scope", string(params.Scope)),
	)
	defer func() {
		if err != nil {
			logger.Error("booking deletion failed", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
			return
		}
		logger.Info("booking deleted", zap.Int64("deleted", result.DeletedCount))
	}()

	if !params.Scope.Known() {
		vErr := &ValidationError{}
		vErr.add("scope", "scope must be single or group")
		err = vErr
		return
	}

	var target persistence.Booking
	target, err = s.bookings.GetBooking(ctx, params.BookingID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if target.UserID != params.Principal.UserID && !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	scope := params.Scope
	if scope == ScopeGroup && target.GroupID == "" {
		scope = ScopeSingle
	}

	members := []persistence.Booking{target}
	if scope == ScopeGroup {
		members, err = s.bookings.ListBookings(ctx, persistence.BookingFilter{GroupID: target.GroupID})
		if err != nil {
			err = mapRepoError(err)
			return
		}
	}

	var deleted int64
	if scope == ScopeGroup {
		deleted, err = s.bookings.DeleteGroup(ctx, target.GroupID)
	} else {
		deleted, err = s.bookings.DeleteBooking(ctx, target.ID)
	}
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if params.Principal.UserID != target.UserID {
		notify(ctx, logger, s.notifier, persistence.Notification{
			RecipientID: target.UserID,
			SenderID:    params.Principal.UserID,
			Kind:        persistence.KindBookingCancelled,
			Title:       "Reservation cancelled",
			Message:     fmt.Sprintf("Your reservation %q on %s was cancelled by an administrator.", target.Title, describeSpan(bookingDates(members))),
			BookingID:   target.ID,
			GroupID:     target.GroupID,
		})
	}

	result = DeleteBookingResult{DeletedCount: deleted}
	return
}

// expandInput validates the request and expands it into concrete slots.
// Expansion failures surface as field level validation errors.
func (s *BookingService) expandInput(input BookingInput) ([]booking.Interval, error) {
	vErr := &ValidationError{}
	if input.RoomID == "" {
		vErr.add("room_id", "room is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if !input.RepeatPolicy.Known() {
		vErr.add("repeat_policy", "unknown repeat policy")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	candidates, err := recurrence.Expand(recurrence.Request{
		Date:      input.Date,
		Start:     input.Start,
		End:       input.End,
		Policy:    input.RepeatPolicy,
		RepeatEnd: input.RepeatEnd,
		Weekly:    input.Weekly,
	})
	if err != nil {
		return nil, expansionValidationError(err)
	}
	return candidates, nil
}

func expansionValidationError(err error) error {
	vErr := &ValidationError{}
	switch {
	case errors.Is(err, recurrence.ErrInvalidInterval):
		vErr.add("time", err.Error())
	case errors.Is(err, recurrence.ErrMissingRepeatEnd), errors.Is(err, recurrence.ErrRepeatEndBeforeDate):
		vErr.add("repeat_end", err.Error())
	case errors.Is(err, recurrence.ErrNoWeekdayEnabled):
		vErr.add("weekly", err.Error())
	case errors.Is(err, recurrence.ErrUnknownPolicy):
		vErr.add("repeat_policy", err.Error())
	default:
		return err
	}
	return vErr
}

func (s *BookingService) ensureRoomExists(ctx context.Context, roomID string) error {
	if s.rooms == nil || roomID == "" {
		return nil
	}
	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		if isNotFoundError(err) {
			vErr := &ValidationError{}
			vErr.add("room_id", "room does not exist")
			return vErr
		}
		return err
	}
	return nil
}

// loadOccurrences fetches the room occurrences in blocking statuses within
// the date window spanned by the candidates.
func (s *BookingService) loadOccurrences(ctx context.Context, roomID string, candidates []booking.Interval, blocking booking.StatusSet) ([]booking.Occurrence, error) {
	if s.bookings == nil || len(candidates) == 0 {
		return nil, nil
	}

	from, to := candidates[0].Date, candidates[0].Date
	for _, candidate := range candidates[1:] {
		if candidate.Date.Before(from) {
			from = candidate.Date
		}
		if candidate.Date.After(to) {
			to = candidate.Date
		}
	}

	rows, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{
		RoomID:   roomID,
		Statuses: blocking.Statuses(),
		DateFrom: &from,
		DateTo:   &to,
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}

	occurrences := make([]booking.Occurrence, 0, len(rows))
	for _, row := range rows {
		occurrences = append(occurrences, toOccurrence(row))
	}
	return occurrences, nil
}

func toOccurrence(b persistence.Booking) booking.Occurrence {
	return booking.Occurrence{
		ID:       b.ID,
		RoomID:   b.RoomID,
		GroupID:  b.GroupID,
		Title:    b.Title,
		Status:   b.Status,
		Interval: b.Interval(),
	}
}

func (s *BookingService) notifyAdmins(ctx context.Context, logger *zap.Logger, requesterID string, rows []persistence.Booking) {
	if s.users == nil || s.notifier == nil || len(rows) == 0 {
		return
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		logger.Warn("failed to list admins for notification", zap.Error(err))
		return
	}
	message := fmt.Sprintf("New reservation request %q for %s.", rows[0].Title, describeSpan(bookingDates(rows)))
	for _, user := range users {
		if user.Role != persistence.RoleAdmin || user.ID == requesterID {
			continue
		}
		notify(ctx, logger, s.notifier, persistence.Notification{
			RecipientID: user.ID,
			SenderID:    requesterID,
			Kind:        persistence.KindBookingRequest,
			Title:       "New reservation request",
			Message:     message,
			BookingID:   rows[0].ID,
			GroupID:     rows[0].GroupID,
		})
	}
}

func (s *BookingService) notifyDecision(ctx context.Context, logger *zap.Logger, deciderID string, target persistence.Booking, members []persistence.Booking, status booking.Status) {
	kind := persistence.KindBookingApproved
	title := "Reservation approved"
	verb := "approved"
	if status == booking.StatusRejected {
		kind = persistence.KindBookingRejected
		title = "Reservation rejected"
		verb = "rejected"
	}
	notify(ctx, logger, s.notifier, persistence.Notification{
		RecipientID: target.UserID,
		SenderID:    deciderID,
		Kind:        kind,
		Title:       title,
		Message:     fmt.Sprintf("Your reservation %q on %s was %s.", target.Title, describeSpan(bookingDates(members)), verb),
		BookingID:   target.ID,
		GroupID:     target.GroupID,
	})
}

// keyedLocks serializes check-then-act sequences per room id so two
// overlapping requests for one room cannot both pass the conflict check.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedLocks) acquire(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
