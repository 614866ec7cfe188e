package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/classroom-reserve/internal/persistence"
	"github.com/example/classroom-reserve/internal/persistence/memory"
)

func newAuthTestService(t *testing.T, clock *testClock) (*AuthService, *memory.Storage) {
	t.Helper()

	store := memory.Open()
	t.Cleanup(func() { _ = store.Close() })

	hash, err := CreatePasswordHash("correct horse", DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	err = store.CreateUser(context.Background(), persistence.User{
		ID:           "prof-1",
		Name:         "Ada",
		Email:        "ada@example.edu",
		PasswordHash: hash,
		Role:         persistence.RoleProfessor,
	})
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	svc := NewAuthService(store, store, nil, sequenceIDs("tok"), clock.NowFunc(), time.Hour, nil)
	return svc, store
}

func TestAuthService_Authenticate_IssuesSession(t *testing.T) {
	t.Parallel()

	clock := newTestClock(time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))
	svc, _ := newAuthTestService(t, clock)

	result, err := svc.Authenticate(context.Background(), AuthenticateParams{
		Email:    "Ada@Example.edu",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if result.User.ID != "prof-1" {
		t.Fatalf("unexpected user %q", result.User.ID)
	}
	if result.Session.Token == "" {
		t.Fatal("expected a session token")
	}
	if !result.Session.ExpiresAt.Equal(clock.Now().Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", result.Session.ExpiresAt)
	}
}

func TestAuthService_Authenticate_RejectsBadPassword(t *testing.T) {
	t.Parallel()

	clock := newTestClock(time.Time{})
	svc, _ := newAuthTestService(t, clock)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "ada@example.edu", password: "incorrect"},
		{name: "unknown email", email: "nobody@example.edu", password: "correct horse"},
		{name: "empty password", email: "ada@example.edu", password: ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: tc.email, Password: tc.password})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthService_ValidateSession_Lifecycle(t *testing.T) {
	t.Parallel()

	clock := newTestClock(time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))
	svc, _ := newAuthTestService(t, clock)

	result, err := svc.Authenticate(context.Background(), AuthenticateParams{
		Email:    "ada@example.edu",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	token := result.Session.Token

	principal, err := svc.ValidateSession(context.Background(), token)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if principal.UserID != "prof-1" || principal.IsAdmin {
		t.Fatalf("unexpected principal %+v", principal)
	}

	clock.Advance(2 * time.Hour)
	if _, err := svc.ValidateSession(context.Background(), token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestAuthService_RevokeSession(t *testing.T) {
	t.Parallel()

	clock := newTestClock(time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))
	svc, _ := newAuthTestService(t, clock)

	result, err := svc.Authenticate(context.Background(), AuthenticateParams{
		Email:    "ada@example.edu",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	if err := svc.RevokeSession(context.Background(), result.Session.Token); err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	if _, err := svc.ValidateSession(context.Background(), result.Session.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}
	if err := svc.RevokeSession(context.Background(), "unknown-token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown token, got %v", err)
	}
}

func TestAuthService_SweepExpiredSessions(t *testing.T) {
	t.Parallel()

	clock := newTestClock(time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))
	svc, store := newAuthTestService(t, clock)

	for i := 0; i < 3; i++ {
		if _, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "ada@example.edu",
			Password: "correct horse",
		}); err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
	}

	clock.Advance(90 * time.Minute)
	deleted, err := svc.SweepExpiredSessions(context.Background())
	if err != nil {
		t.Fatalf("SweepExpiredSessions failed: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 pruned sessions, got %d", deleted)
	}

	remaining, err := store.DeleteExpiredSessions(context.Background(), clock.Now())
	if err != nil {
		t.Fatalf("follow-up sweep failed: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected idempotent sweep, got %d", remaining)
	}
}
