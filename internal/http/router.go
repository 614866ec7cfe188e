package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RouterConfig wires handlers into the HTTP surface. Nil handlers leave
// their routes unregistered.
type RouterConfig struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Rooms         *RoomHandler
	Bookings      *BookingHandler
	Notifications *NotificationHandler
	Sessions      SessionValidator
	Logger        *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	if cfg.Auth != nil {
		r.Post("/sessions", cfg.Auth.CreateSession)
		r.Delete("/sessions/current", cfg.Auth.DeleteCurrentSession)
	}

	r.Group(func(r chi.Router) {
		if cfg.Sessions != nil {
			r.Use(RequireSession(cfg.Sessions, logger))
		}

		if cfg.Rooms != nil {
			r.Get("/rooms", cfg.Rooms.List)
			r.Post("/rooms", cfg.Rooms.Create)
			r.Get("/rooms/{id}", cfg.Rooms.Get)
			r.Put("/rooms/{id}", cfg.Rooms.Update)
			r.Delete("/rooms/{id}", cfg.Rooms.Delete)
		}

		if cfg.Users != nil {
			r.Get("/users", cfg.Users.List)
			r.Post("/users", cfg.Users.Create)
			r.Put("/users/{id}", cfg.Users.Update)
			r.Delete("/users/{id}", cfg.Users.Delete)
		}

		if cfg.Bookings != nil {
			r.Post("/bookings/check", cfg.Bookings.Check)
			r.Get("/bookings", cfg.Bookings.List)
			r.Post("/bookings", cfg.Bookings.Create)
			r.Get("/bookings/{id}", cfg.Bookings.Get)
			r.Put("/bookings/{id}", cfg.Bookings.Edit)
			r.Patch("/bookings/{id}/status", cfg.Bookings.Decide)
			r.Delete("/bookings/{id}", cfg.Bookings.Delete)
		}

		if cfg.Notifications != nil {
			r.Get("/notifications", cfg.Notifications.List)
			r.Post("/notifications/{id}/read", cfg.Notifications.MarkRead)
		}
	})

	return r
}
