package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/classroom-reserve/internal/application"
	"github.com/example/classroom-reserve/internal/booking"
	"github.com/example/classroom-reserve/internal/persistence"
	"github.com/example/classroom-reserve/internal/persistence/memory"
	"github.com/example/classroom-reserve/internal/testfixtures"
)

// testHashParams keeps password hashing cheap in tests; VerifyPassword reads
// the parameters back from the encoded hash.
var testHashParams = application.Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

type handlerEnv struct {
	store  *memory.Storage
	clock  *testfixtures.Clock
	server *httptest.Server
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	store := memory.Open()
	t.Cleanup(func() { _ = store.Close() })

	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	factory := testfixtures.NewServiceFactory(testfixtures.WithClock(clock))
	notifier := application.NewStoreNotifier(store, factory.IDGenerator.NextFunc(), clock.NowFunc())

	bookings := factory.NewBookingService(testfixtures.BookingServiceDeps{
		Bookings: store,
		Rooms:    store,
		Users:    store,
		Notifier: notifier,
	})
	rooms := factory.NewRoomService(testfixtures.RoomServiceDeps{
		Rooms:    store,
		Bookings: store,
		Notifier: notifier,
	})
	users := factory.NewUserService(testfixtures.UserServiceDeps{
		Users:      store,
		HashParams: testHashParams,
	})
	auth := factory.NewAuthService(testfixtures.AuthServiceDeps{
		Credentials: store,
		Sessions:    store,
		SessionTTL:  time.Hour,
	})
	notifications := factory.NewNotificationService(testfixtures.NotificationServiceDeps{
		Notifications: store,
	})

	router := NewRouter(RouterConfig{
		Auth:          NewAuthHandler(auth, nil),
		Users:         NewUserHandler(users, nil),
		Rooms:         NewRoomHandler(rooms, nil),
		Bookings:      NewBookingHandler(bookings, nil),
		Notifications: NewNotificationHandler(notifications, nil),
		Sessions:      auth,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &handlerEnv{store: store, clock: clock, server: server}
}

func (env *handlerEnv) seedUser(t *testing.T, fixture testfixtures.UserFixture, password string) persistence.User {
	t.Helper()

	hash, err := application.CreatePasswordHash(password, testHashParams)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := fixture.Persistence()
	user.PasswordHash = hash
	if err := env.store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (env *handlerEnv) seedRoom(t *testing.T, fixture testfixtures.RoomFixture) persistence.Room {
	t.Helper()

	room := fixture.Persistence()
	if err := env.store.CreateRoom(context.Background(), room); err != nil {
		t.Fatalf("seed room: %v", err)
	}
	return room
}

func (env *handlerEnv) login(t *testing.T, email, password string) string {
	t.Helper()

	status, body := env.do(t, http.MethodPost, "/sessions", "", map[string]any{
		"email":    email,
		"password": password,
	})
	if status != http.StatusCreated {
		t.Fatalf("login returned status %d: %s", status, body)
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login response missing token")
	}
	return resp.Token
}

func (env *handlerEnv) do(t *testing.T, method, path, token string, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, env.server.URL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := env.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp.StatusCode, data
}

func bookingPayload(room persistence.Room, date string) map[string]any {
	return map[string]any{
		"room_id":    room.ID,
		"title":      "Algorithms",
		"date":       date,
		"start_time": "09:00",
		"end_time":   "10:30",
	}
}

func TestAuthHandlers(t *testing.T) {
	t.Parallel()

	t.Run("login issues session token via cookie and header", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		env.seedUser(t, testfixtures.NewUserFixture(testfixtures.WithUserEmail("ada@example.edu")), "correct horse")

		status, body := env.do(t, http.MethodPost, "/sessions", "", map[string]any{
			"email":    "Ada@Example.edu",
			"password": "correct horse",
		})
		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", status, body)
		}

		var resp struct {
			Token string `json:"token"`
			User  struct {
				Email string `json:"email"`
			} `json:"user"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Token == "" {
			t.Fatal("expected a session token")
		}
		if resp.User.Email != "ada@example.edu" {
			t.Fatalf("expected normalized email, got %q", resp.User.Email)
		}
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		env.seedUser(t, testfixtures.NewUserFixture(testfixtures.WithUserEmail("bob@example.edu")), "correct horse")

		status, _ := env.do(t, http.MethodPost, "/sessions", "", map[string]any{
			"email":    "bob@example.edu",
			"password": "battery staple",
		})
		if status != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", status)
		}
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		user := env.seedUser(t, testfixtures.NewUserFixture(), "correct horse")
		token := env.login(t, user.Email, "correct horse")

		if status, _ := env.do(t, http.MethodGet, "/rooms", token, nil); status != http.StatusOK {
			t.Fatalf("expected 200 before logout, got %d", status)
		}

		if status, _ := env.do(t, http.MethodDelete, "/sessions/current", token, nil); status != http.StatusNoContent {
			t.Fatalf("expected 204 from logout, got %d", status)
		}

		if status, _ := env.do(t, http.MethodGet, "/rooms", token, nil); status != http.StatusUnauthorized {
			t.Fatalf("expected 401 after logout, got %d", status)
		}
	})

	t.Run("protected routes require a token", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		if status, _ := env.do(t, http.MethodGet, "/bookings", "", nil); status != http.StatusUnauthorized {
			t.Fatalf("expected 401 without token, got %d", status)
		}
	})
}

func TestBookingHandlers(t *testing.T) {
	t.Parallel()

	t.Run("create persists a pending reservation", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		room := env.seedRoom(t, testfixtures.NewRoomFixture())
		user := env.seedUser(t, testfixtures.NewUserFixture(), "correct horse")
		token := env.login(t, user.Email, "correct horse")

		status, body := env.do(t, http.MethodPost, "/bookings", token, bookingPayload(room, "2025-03-03"))
		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", status, body)
		}

		var resp struct {
			Bookings []struct {
				ID        string `json:"id"`
				Status    string `json:"status"`
				Date      string `json:"date"`
				StartTime string `json:"start_time"`
			} `json:"bookings"`
			GroupID string `json:"group_id"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Bookings) != 1 {
			t.Fatalf("expected one occurrence, got %d", len(resp.Bookings))
		}
		if resp.GroupID != "" {
			t.Fatalf("single reservation should not carry a group, got %q", resp.GroupID)
		}
		if got := resp.Bookings[0]; got.Status != "pending" || got.Date != "2025-03-03" || got.StartTime != "09:00" {
			t.Fatalf("unexpected occurrence: %+v", got)
		}
	})

	t.Run("weekly repeat expands into a group", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		room := env.seedRoom(t, testfixtures.NewRoomFixture())
		user := env.seedUser(t, testfixtures.NewUserFixture(), "correct horse")
		token := env.login(t, user.Email, "correct horse")

		status, body := env.do(t, http.MethodPost, "/bookings", token, map[string]any{
			"room_id":         room.ID,
			"title":           "Seminar",
			"date":            "2025-03-03",
			"repeat_type":     "weekly",
			"repeat_end_date": "2025-03-17",
			"weekly_schedule": map[string]any{
				"monday": map[string]any{"start_time": "13:00", "end_time": "14:30"},
			},
		})
		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", status, body)
		}

		var resp struct {
			Bookings []struct {
				Date    string `json:"date"`
				GroupID string `json:"group_id"`
			} `json:"bookings"`
			GroupID string `json:"group_id"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.GroupID == "" {
			t.Fatal("expected a reservation group id")
		}
		if len(resp.Bookings) != 3 {
			t.Fatalf("expected three Mondays, got %d", len(resp.Bookings))
		}
		for _, b := range resp.Bookings {
			if b.GroupID != resp.GroupID {
				t.Fatalf("occurrence carries group %q, want %q", b.GroupID, resp.GroupID)
			}
		}
	})

	t.Run("explicitly disabled weekdays are not booked", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		room := env.seedRoom(t, testfixtures.NewRoomFixture())
		user := env.seedUser(t, testfixtures.NewUserFixture(), "correct horse")
		token := env.login(t, user.Email, "correct horse")

		status, body := env.do(t, http.MethodPost, "/bookings", token, map[string]any{
			"room_id":         room.ID,
			"title":           "Seminar",
			"date":            "2025-03-03",
			"repeat_type":     "weekly",
			"repeat_end_date": "2025-03-10",
			"weekly_schedule": map[string]any{
				"monday":  map[string]any{"enabled": true, "start_time": "13:00", "end_time": "14:30"},
				"tuesday": map[string]any{"enabled": false, "start_time": "09:00", "end_time": "10:00"},
			},
		})
		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", status, body)
		}

		var resp struct {
			Bookings []struct {
				Date string `json:"date"`
			} `json:"bookings"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Bookings) != 2 {
			t.Fatalf("expected the two Mondays only, got %d occurrences", len(resp.Bookings))
		}
		for _, b := range resp.Bookings {
			if b.Date == "2025-03-04" {
				t.Fatal("disabled Tuesday was booked")
			}
		}
	})

	t.Run("conflict with an approved reservation returns 409 with details", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		room := env.seedRoom(t, testfixtures.NewRoomFixture())
		user := env.seedUser(t, testfixtures.NewUserFixture(), "correct horse")
		admin := env.seedUser(t, testfixtures.NewUserFixture(testfixtures.WithAdminRole()), "correct horse")
		token := env.login(t, user.Email, "correct horse")
		adminToken := env.login(t, admin.Email, "correct horse")

		status, body := env.do(t, http.MethodPost, "/bookings", token, bookingPayload(room, "2025-03-03"))
		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", status, body)
		}
		var created struct {
			Bookings []struct {
				ID string `json:"id"`
			} `json:"bookings"`
		}
		if err := json.Unmarshal(body, &created); err != nil {
			t.Fatalf("decode response: %v", err)
		}

		path := fmt.Sprintf("/bookings/%s/status", created.Bookings[0].ID)
		if status, body := env.do(t, http.MethodPatch, path, adminToken, map[string]any{"status": "approved"}); status != http.StatusOK {
			t.Fatalf("expected 200 from approval, got %d: %s", status, body)
		}

		status, body = env.do(t, http.MethodPost, "/bookings", token, bookingPayload(room, "2025-03-03"))
		if status != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", status, body)
		}

		var conflict struct {
			Conflicts []struct {
				BookingID string `json:"booking_id"`
				StartTime string `json:"start_time"`
			} `json:"conflicts"`
		}
		if err := json.Unmarshal(body, &conflict); err != nil {
			t.Fatalf("decode conflict response: %v", err)
		}
		if len(conflict.Conflicts) == 0 {
			t.Fatal("expected conflict details")
		}
		if conflict.Conflicts[0].BookingID != created.Bookings[0].ID {
			t.Fatalf("expected conflict with %q, got %q", created.Bookings[0].ID, conflict.Conflicts[0].BookingID)
		}
	})

	t.Run("availability check reports conflicts without erroring", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		room := env.seedRoom(t, testfixtures.NewRoomFixture())
		user := env.seedUser(t, testfixtures.NewUserFixture(), "correct horse")
		token := env.login(t, user.Email, "correct horse")

		approved := testfixtures.NewBookingFixture(
			testfixtures.WithBookingRoom(room.ID),
			testfixtures.WithBookingUser(user.ID),
			testfixtures.WithBookingDate(time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)),
			testfixtures.WithBookingTimes(9*60, 10*60),
			testfixtures.WithBookingStatus(booking.StatusApproved),
		).Persistence()
		if err := env.store.InsertBookings(context.Background(), []persistence.Booking{approved}); err != nil {
			t.Fatalf("seed booking: %v", err)
		}

		status, body := env.do(t, http.MethodPost, "/bookings/check", token, bookingPayload(room, "2025-03-03"))
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", status, body)
		}

		var resp struct {
			Available bool `json:"available"`
			Conflicts []struct {
				BookingID string `json:"booking_id"`
			} `json:"conflicts"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Available {
			t.Fatal("expected the slot to be unavailable")
		}
		if len(resp.Conflicts) != 1 || resp.Conflicts[0].BookingID != approved.ID {
			t.Fatalf("unexpected conflicts: %+v", resp.Conflicts)
		}
	})

	t.Run("decision requires admin role", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		room := env.seedRoom(t, testfixtures.NewRoomFixture())
		user := env.seedUser(t, testfixtures.NewUserFixture(), "correct horse")
		token := env.login(t, user.Email, "correct horse")

		status, body := env.do(t, http.MethodPost, "/bookings", token, bookingPayload(room, "2025-03-03"))
		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", status, body)
		}
		var created struct {
			Bookings []struct {
				ID string `json:"id"`
			} `json:"bookings"`
		}
		if err := json.Unmarshal(body, &created); err != nil {
			t.Fatalf("decode response: %v", err)
		}

		path := fmt.Sprintf("/bookings/%s/status", created.Bookings[0].ID)
		if status, _ := env.do(t, http.MethodPatch, path, token, map[string]any{"status": "approved"}); status != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", status)
		}
	})

	t.Run("missing title maps to a field error", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		room := env.seedRoom(t, testfixtures.NewRoomFixture())
		user := env.seedUser(t, testfixtures.NewUserFixture(), "correct horse")
		token := env.login(t, user.Email, "correct horse")

		payload := bookingPayload(room, "2025-03-03")
		payload["title"] = ""
		status, body := env.do(t, http.MethodPost, "/bookings", token, payload)
		if status != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", status, body)
		}

		var resp struct {
			Errors map[string]string `json:"errors"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if _, ok := resp.Errors["title"]; !ok {
			t.Fatalf("expected a title field error, got %v", resp.Errors)
		}
	})

	t.Run("malformed date is a bad request", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		room := env.seedRoom(t, testfixtures.NewRoomFixture())
		user := env.seedUser(t, testfixtures.NewUserFixture(), "correct horse")
		token := env.login(t, user.Email, "correct horse")

		payload := bookingPayload(room, "03/03/2025")
		if status, _ := env.do(t, http.MethodPost, "/bookings", token, payload); status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", status)
		}
	})

	t.Run("group delete removes every occurrence", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		room := env.seedRoom(t, testfixtures.NewRoomFixture())
		user := env.seedUser(t, testfixtures.NewUserFixture(), "correct horse")
		token := env.login(t, user.Email, "correct horse")

		status, body := env.do(t, http.MethodPost, "/bookings", token, map[string]any{
			"room_id":         room.ID,
			"title":           "Lab",
			"date":            "2025-03-03",
			"start_time":      "09:00",
			"end_time":        "10:00",
			"repeat_type":     "daily",
			"repeat_end_date": "2025-03-05",
		})
		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", status, body)
		}
		var created struct {
			Bookings []struct {
				ID string `json:"id"`
			} `json:"bookings"`
		}
		if err := json.Unmarshal(body, &created); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(created.Bookings) != 3 {
			t.Fatalf("expected three occurrences, got %d", len(created.Bookings))
		}

		path := fmt.Sprintf("/bookings/%s?scope=group", created.Bookings[0].ID)
		status, body = env.do(t, http.MethodDelete, path, token, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", status, body)
		}
		var deleted struct {
			DeletedCount int64 `json:"deleted_count"`
		}
		if err := json.Unmarshal(body, &deleted); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if deleted.DeletedCount != 3 {
			t.Fatalf("expected three deletions, got %d", deleted.DeletedCount)
		}
	})

	t.Run("list filters to the caller with mine", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		room := env.seedRoom(t, testfixtures.NewRoomFixture())
		alice := env.seedUser(t, testfixtures.NewUserFixture(), "correct horse")
		bob := env.seedUser(t, testfixtures.NewUserFixture(), "correct horse")
		aliceToken := env.login(t, alice.Email, "correct horse")
		bobToken := env.login(t, bob.Email, "correct horse")

		if status, body := env.do(t, http.MethodPost, "/bookings", aliceToken, bookingPayload(room, "2025-03-03")); status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", status, body)
		}
		if status, body := env.do(t, http.MethodPost, "/bookings", bobToken, bookingPayload(room, "2025-03-04")); status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", status, body)
		}

		status, body := env.do(t, http.MethodGet, "/bookings?mine=true", aliceToken, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", status, body)
		}
		var resp struct {
			Bookings []struct {
				UserID string `json:"user_id"`
			} `json:"bookings"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Bookings) != 1 {
			t.Fatalf("expected one booking, got %d", len(resp.Bookings))
		}
		if resp.Bookings[0].UserID != alice.ID {
			t.Fatalf("expected bookings for %q, got %q", alice.ID, resp.Bookings[0].UserID)
		}
	})
}

func TestRoomHandlers(t *testing.T) {
	t.Parallel()

	t.Run("non-admins may list but not mutate", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		env.seedRoom(t, testfixtures.NewRoomFixture())
		user := env.seedUser(t, testfixtures.NewUserFixture(), "correct horse")
		token := env.login(t, user.Email, "correct horse")

		status, body := env.do(t, http.MethodGet, "/rooms", token, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", status, body)
		}

		status, _ = env.do(t, http.MethodPost, "/rooms", token, map[string]any{
			"name": "Annex", "number": "101", "building": "East", "capacity": 20,
		})
		if status != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", status)
		}
	})

	t.Run("admin creates a room", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		admin := env.seedUser(t, testfixtures.NewUserFixture(testfixtures.WithAdminRole()), "correct horse")
		token := env.login(t, admin.Email, "correct horse")

		status, body := env.do(t, http.MethodPost, "/rooms", token, map[string]any{
			"name":     "Physics Lab",
			"number":   "204",
			"building": "Science Building",
			"capacity": 24,
			"features": []string{"projector"},
		})
		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", status, body)
		}

		var resp struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.ID == "" || resp.Name != "Physics Lab" {
			t.Fatalf("unexpected room payload: %+v", resp)
		}
	})
}

func TestUserHandlers(t *testing.T) {
	t.Parallel()

	t.Run("mutations require admin role", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		user := env.seedUser(t, testfixtures.NewUserFixture(), "correct horse")
		token := env.login(t, user.Email, "correct horse")

		status, _ := env.do(t, http.MethodPost, "/users", token, map[string]any{
			"name": "New User", "email": "new@example.edu", "password": "secret pass", "role": "professor",
		})
		if status != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", status)
		}
	})

	t.Run("admin creates an account without exposing the hash", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		admin := env.seedUser(t, testfixtures.NewUserFixture(testfixtures.WithAdminRole()), "correct horse")
		token := env.login(t, admin.Email, "correct horse")

		status, body := env.do(t, http.MethodPost, "/users", token, map[string]any{
			"name": "Grace", "email": "grace@example.edu", "password": "compiler rules", "role": "professor",
		})
		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", status, body)
		}

		var raw map[string]any
		if err := json.Unmarshal(body, &raw); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if _, leaked := raw["password_hash"]; leaked {
			t.Fatal("response must not carry the password hash")
		}
		if raw["email"] != "grace@example.edu" {
			t.Fatalf("unexpected email %v", raw["email"])
		}
	})
}

func TestNotificationHandlers(t *testing.T) {
	t.Parallel()

	t.Run("admins are notified of new requests and can acknowledge", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		room := env.seedRoom(t, testfixtures.NewRoomFixture())
		user := env.seedUser(t, testfixtures.NewUserFixture(), "correct horse")
		admin := env.seedUser(t, testfixtures.NewUserFixture(testfixtures.WithAdminRole()), "correct horse")
		token := env.login(t, user.Email, "correct horse")
		adminToken := env.login(t, admin.Email, "correct horse")

		if status, body := env.do(t, http.MethodPost, "/bookings", token, bookingPayload(room, "2025-03-03")); status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", status, body)
		}

		status, body := env.do(t, http.MethodGet, "/notifications?unread=true", adminToken, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", status, body)
		}
		var resp struct {
			Notifications []struct {
				ID   string `json:"id"`
				Kind string `json:"kind"`
				Read bool   `json:"read"`
			} `json:"notifications"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Notifications) != 1 {
			t.Fatalf("expected one notification, got %d", len(resp.Notifications))
		}
		if resp.Notifications[0].Kind != string(persistence.KindBookingRequest) {
			t.Fatalf("unexpected kind %q", resp.Notifications[0].Kind)
		}

		markPath := fmt.Sprintf("/notifications/%s/read", resp.Notifications[0].ID)
		if status, _ := env.do(t, http.MethodPost, markPath, adminToken, nil); status != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", status)
		}

		status, body = env.do(t, http.MethodGet, "/notifications?unread=true", adminToken, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", status, body)
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Notifications) != 0 {
			t.Fatalf("expected no unread notifications, got %d", len(resp.Notifications))
		}
	})

	t.Run("recipients cannot acknowledge another user's notification", func(t *testing.T) {
		t.Parallel()

		env := newHandlerEnv(t)
		room := env.seedRoom(t, testfixtures.NewRoomFixture())
		user := env.seedUser(t, testfixtures.NewUserFixture(), "correct horse")
		admin := env.seedUser(t, testfixtures.NewUserFixture(testfixtures.WithAdminRole()), "correct horse")
		token := env.login(t, user.Email, "correct horse")
		adminToken := env.login(t, admin.Email, "correct horse")

		if status, body := env.do(t, http.MethodPost, "/bookings", token, bookingPayload(room, "2025-03-03")); status != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", status, body)
		}

		status, body := env.do(t, http.MethodGet, "/notifications", adminToken, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", status, body)
		}
		var resp struct {
			Notifications []struct {
				ID string `json:"id"`
			} `json:"notifications"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Notifications) == 0 {
			t.Fatal("expected at least one notification")
		}

		markPath := fmt.Sprintf("/notifications/%s/read", resp.Notifications[0].ID)
		if status, _ := env.do(t, http.MethodPost, markPath, token, nil); status != http.StatusNotFound {
			t.Fatalf("expected 404 for another user's notification, got %d", status)
		}
	})
}
