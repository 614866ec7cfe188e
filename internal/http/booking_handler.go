package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/classroom-reserve/internal/application"
	"github.com/example/classroom-reserve/internal/booking"
	"github.com/example/classroom-reserve/internal/persistence"
	"github.com/example/classroom-reserve/internal/recurrence"
)

const dateLayout = "2006-01-02"

type bookingService interface {
	CheckAvailability(ctx context.Context, params application.CheckAvailabilityParams) (application.CheckAvailabilityResult, error)
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.CreateBookingResult, error)
	GetBooking(ctx context.Context, id string) (persistence.Booking, error)
	ListBookings(ctx context.Context, params application.ListBookingsParams) ([]persistence.Booking, error)
	DecideBooking(ctx context.Context, params application.DecideBookingParams) (application.DecideBookingResult, error)
	EditBooking(ctx context.Context, params application.EditBookingParams) (persistence.Booking, error)
	DeleteBooking(ctx context.Context, params application.DeleteBookingParams) (application.DeleteBookingResult, error)
}

// BookingHandler exposes reservation requests, the availability pre-check,
// and the administrator decision endpoint.
type BookingHandler struct {
	service   bookingService
	responder responder
}

func NewBookingHandler(service bookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{service: service, responder: newResponder(logger)}
}

func (h *BookingHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	input, err := decodeBookingInput(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.CheckAvailability(r.Context(), application.CheckAvailabilityParams{Input: input})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{
		Available:  result.Available(),
		Candidates: toIntervalDTOs(result.Candidates),
		Conflicts:  toConflictDTOs(result.Conflicts),
	})
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	input, err := decodeBookingInput(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.CreateBooking(r.Context(), application.CreateBookingParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]bookingDTO, 0, len(result.Bookings))
	for _, b := range result.Bookings {
		dtos = append(dtos, toBookingDTO(b))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, createBookingResponse{
		Bookings: dtos,
		GroupID:  result.GroupID,
	})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID := strings.TrimSpace(chi.URLParam(r, "id"))
	if bookingID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	b, err := h.service.GetBooking(r.Context(), bookingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toBookingDTO(b))
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	params, err := decodeListParams(r, principal)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	bookings, err := h.service.ListBookings(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]bookingDTO, 0, len(bookings))
	for _, b := range bookings {
		dtos = append(dtos, toBookingDTO(b))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: dtos})
}

func (h *BookingHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID := strings.TrimSpace(chi.URLParam(r, "id"))
	if bookingID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	input, err := decodeBookingInput(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	updated, err := h.service.EditBooking(r.Context(), application.EditBookingParams{
		Principal: principal,
		BookingID: bookingID,
		Input:     input,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toBookingDTO(updated))
}

func (h *BookingHandler) Decide(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID := strings.TrimSpace(chi.URLParam(r, "id"))
	if bookingID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	var req decideBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.DecideBooking(r.Context(), application.DecideBookingParams{
		Principal: principal,
		BookingID: bookingID,
		Status:    booking.Status(req.Status),
		Scope:     application.Scope(req.Scope),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, decideBookingResponse{
		Status:        string(result.Status),
		AffectedCount: result.AffectedCount,
	})
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID := strings.TrimSpace(chi.URLParam(r, "id"))
	if bookingID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.DeleteBooking(r.Context(), application.DeleteBookingParams{
		Principal: principal,
		BookingID: bookingID,
		Scope:     application.Scope(r.URL.Query().Get("scope")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, deleteBookingResponse{DeletedCount: result.DeletedCount})
}

type bookingRequest struct {
	RoomID         string                 `json:"room_id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Date           string                 `json:"date"`
	StartTime      string                 `json:"start_time"`
	EndTime        string                 `json:"end_time"`
	RepeatType     string                 `json:"repeat_type"`
	RepeatEndDate  string                 `json:"repeat_end_date"`
	WeeklySchedule map[string]daySlotBody `json:"weekly_schedule"`
}

type daySlotBody struct {
	Enabled   *bool  `json:"enabled"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

var weekdaysByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func decodeBookingInput(r *http.Request) (application.BookingInput, error) {
	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return application.BookingInput{}, errBadRequestBody
	}
	return req.toInput()
}

// toInput converts the wire form. Only structural parse failures are
// reported here; field-level validation belongs to the services.
func (r bookingRequest) toInput() (application.BookingInput, error) {
	input := application.BookingInput{
		RoomID:      r.RoomID,
		Title:       r.Title,
		Description: r.Description,
	}

	if r.Date != "" {
		date, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			return application.BookingInput{}, fmt.Errorf("invalid date %q; expected YYYY-MM-DD", r.Date)
		}
		input.Date = date
	}

	if r.StartTime != "" {
		start, err := booking.ParseTimeOfDay(r.StartTime)
		if err != nil {
			return application.BookingInput{}, fmt.Errorf("invalid start_time %q; expected HH:MM", r.StartTime)
		}
		input.Start = start
	}
	if r.EndTime != "" {
		end, err := booking.ParseTimeOfDay(r.EndTime)
		if err != nil {
			return application.BookingInput{}, fmt.Errorf("invalid end_time %q; expected HH:MM", r.EndTime)
		}
		input.End = end
	}

	input.RepeatPolicy = recurrence.PolicyNone
	if r.RepeatType != "" {
		input.RepeatPolicy = recurrence.Policy(r.RepeatType)
	}

	if r.RepeatEndDate != "" {
		repeatEnd, err := time.Parse(dateLayout, r.RepeatEndDate)
		if err != nil {
			return application.BookingInput{}, fmt.Errorf("invalid repeat_end_date %q; expected YYYY-MM-DD", r.RepeatEndDate)
		}
		input.RepeatEnd = &repeatEnd
	}

	for name, slot := range r.WeeklySchedule {
		day, ok := weekdaysByName[strings.ToLower(name)]
		if !ok {
			return application.BookingInput{}, fmt.Errorf("unknown weekday %q in weekly_schedule", name)
		}
		// Clients may send all seven days and flag each one. A day that is
		// explicitly disabled is dropped before its times are parsed; a day
		// without the flag counts as enabled.
		if slot.Enabled != nil && !*slot.Enabled {
			continue
		}
		start, err := booking.ParseTimeOfDay(slot.StartTime)
		if err != nil {
			return application.BookingInput{}, fmt.Errorf("invalid start_time for %s; expected HH:MM", name)
		}
		end, err := booking.ParseTimeOfDay(slot.EndTime)
		if err != nil {
			return application.BookingInput{}, fmt.Errorf("invalid end_time for %s; expected HH:MM", name)
		}
		input.Weekly[day] = recurrence.DaySlot{Enabled: true, Start: start, End: end}
	}

	return input, nil
}

func decodeListParams(r *http.Request, principal application.Principal) (application.ListBookingsParams, error) {
	query := r.URL.Query()
	params := application.ListBookingsParams{
		Principal: principal,
		RoomID:    query.Get("room_id"),
		GroupID:   query.Get("group_id"),
		Mine:      query.Get("mine") == "true",
	}

	for _, raw := range query["status"] {
		status := booking.Status(raw)
		if !status.Known() {
			return application.ListBookingsParams{}, fmt.Errorf("unknown status %q", raw)
		}
		params.Statuses = append(params.Statuses, status)
	}

	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			return application.ListBookingsParams{}, fmt.Errorf("invalid from date %q; expected YYYY-MM-DD", raw)
		}
		params.DateFrom = &from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			return application.ListBookingsParams{}, fmt.Errorf("invalid to date %q; expected YYYY-MM-DD", raw)
		}
		params.DateTo = &to
	}

	return params, nil
}

type decideBookingRequest struct {
	Status string `json:"status"`
	Scope  string `json:"scope"`
}

type decideBookingResponse struct {
	Status        string `json:"status"`
	AffectedCount int64  `json:"affected_count"`
}

type deleteBookingResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}

type bookingDTO struct {
	ID           string     `json:"id"`
	RoomID       string     `json:"room_id"`
	UserID       string     `json:"user_id"`
	GroupID      string     `json:"group_id,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Date         string     `json:"date"`
	StartTime    string     `json:"start_time"`
	EndTime      string     `json:"end_time"`
	Status       string     `json:"status"`
	RepeatType   string     `json:"repeat_type"`
	RepeatEnd    *string    `json:"repeat_end_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toBookingDTO(b persistence.Booking) bookingDTO {
	dto := bookingDTO{
		ID:          b.ID,
		RoomID:      b.RoomID,
		UserID:      b.UserID,
		GroupID:     b.GroupID,
		Title:       b.Title,
		Description: b.Description,
		Date:        b.Date.Format(dateLayout),
		StartTime:   b.Start.String(),
		EndTime:     b.End.String(),
		Status:      string(b.Status),
		RepeatType:  string(b.RepeatPolicy),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.RepeatEnd != nil {
		formatted := b.RepeatEnd.Format(dateLayout)
		dto.RepeatEnd = &formatted
	}
	return dto
}

type createBookingResponse struct {
	Bookings []bookingDTO `json:"bookings"`
	GroupID  string       `json:"group_id,omitempty"`
}

type listBookingsResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

type availabilityResponse struct {
	Available  bool          `json:"available"`
	Candidates []intervalDTO `json:"candidates"`
	Conflicts  []conflictDTO `json:"conflicts"`
}

type intervalDTO struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func toIntervalDTOs(intervals []booking.Interval) []intervalDTO {
	out := make([]intervalDTO, 0, len(intervals))
	for _, interval := range intervals {
		out = append(out, intervalDTO{
			Date:      interval.Date.Format(dateLayout),
			StartTime: interval.Start.String(),
			EndTime:   interval.End.String(),
		})
	}
	return out
}

type conflictDTO struct {
	BookingID string `json:"booking_id"`
	RoomID    string `json:"room_id"`
	GroupID   string `json:"group_id,omitempty"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func toConflictDTOs(conflicts []booking.Occurrence) []conflictDTO {
	out := make([]conflictDTO, 0, len(conflicts))
	for _, occ := range conflicts {
		out = append(out, conflictDTO{
			BookingID: occ.ID,
			RoomID:    occ.RoomID,
			GroupID:   occ.GroupID,
			Title:     occ.Title,
			Status:    string(occ.Status),
			Date:      occ.Date.Format(dateLayout),
			StartTime: occ.Start.String(),
			EndTime:   occ.End.String(),
		})
	}
	return out
}
