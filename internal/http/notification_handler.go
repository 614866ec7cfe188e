package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/classroom-reserve/internal/application"
	"github.com/example/classroom-reserve/internal/persistence"
)

var errInvalidNotificationID = errors.New("invalid notification id")

type notificationService interface {
	ListNotifications(ctx context.Context, principal application.Principal, unreadOnly bool) ([]persistence.Notification, error)
	MarkRead(ctx context.Context, principal application.Principal, notificationID string) error
}

// NotificationHandler exposes the caller's notification feed.
type NotificationHandler struct {
	service   notificationService
	responder responder
}

func NewNotificationHandler(service notificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, responder: newResponder(logger)}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"
	items, err := h.service.ListNotifications(r.Context(), principal, unreadOnly)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]notificationDTO, 0, len(items))
	for _, n := range items {
		dtos = append(dtos, toNotificationDTO(n))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listNotificationsResponse{Notifications: dtos})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	notificationID := strings.TrimSpace(chi.URLParam(r, "id"))
	if notificationID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidNotificationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.MarkRead(r.Context(), principal, notificationID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type notificationDTO struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id,omitempty"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	BookingID string    `json:"booking_id,omitempty"`
	GroupID   string    `json:"group_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationDTO(n persistence.Notification) notificationDTO {
	return notificationDTO{
		ID:        n.ID,
		SenderID:  n.SenderID,
		Kind:      string(n.Kind),
		Title:     n.Title,
		Message:   n.Message,
		BookingID: n.BookingID,
		GroupID:   n.GroupID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

type listNotificationsResponse struct {
	Notifications []notificationDTO `json:"notifications"`
}
