package testfixtures

import (
	"context"
	"testing"

	"github.com/example/classroom-reserve/internal/application"
	"github.com/example/classroom-reserve/internal/persistence"
)

type capturingUserRepo struct {
	persistence.UserRepository
	created persistence.User
}

func (c *capturingUserRepo) CreateUser(ctx context.Context, user persistence.User) error {
	c.created = user
	return nil
}

func (c *capturingUserRepo) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	return persistence.User{}, persistence.ErrNotFound
}

func TestServiceFactoryNewUserService(t *testing.T) {
	factory := NewServiceFactory()
	repo := &capturingUserRepo{}

	svc := factory.NewUserService(UserServiceDeps{Users: repo})
	principal := application.Principal{UserID: "admin", IsAdmin: true}
	input := application.UserInput{
		Name:     "User",
		Email:    "user@example.edu",
		Password: "open sesame",
		Role:     string(persistence.RoleProfessor),
	}

	user, err := svc.CreateUser(context.Background(), application.CreateUserParams{Principal: principal, Input: input})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if user.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", user.ID)
	}
	if repo.created.ID != user.ID {
		t.Fatalf("repository received unexpected ID: %q", repo.created.ID)
	}
	if !user.CreatedAt.Equal(factory.Clock.Now()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Now(), user.CreatedAt)
	}
}

func TestMemoryHarnessSharesOneStore(t *testing.T) {
	harness := NewMemoryHarness(t)

	room := NewRoomFixture().Persistence()
	if err := harness.Rooms.CreateRoom(context.Background(), room); err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}

	got, err := harness.Store.GetRoom(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("GetRoom returned error: %v", err)
	}
	if got.Name != room.Name {
		t.Fatalf("expected room %q, got %q", room.Name, got.Name)
	}
}
