package application

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/classroom-reserve/internal/persistence"
)

// UserService manages professor and admin accounts. All mutations are
// restricted to admins.
type UserService struct {
	users       persistence.UserRepository
	hashParams  Argon2idParams
	idGenerator func() string
	now         func() time.Time
	logger      *zap.Logger
}

// NewUserService wires dependencies for account management.
func NewUserService(users persistence.UserRepository, hashParams Argon2idParams, idGenerator func() string, now func() time.Time, logger *zap.Logger) *UserService {
	if hashParams == (Argon2idParams{}) {
		hashParams = DefaultArgon2idParams
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:       users,
		hashParams:  hashParams,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, fields ...zap.Field) *zap.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, fields...)
}

// CreateUser validates, hashes the password, and persists a new account.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (persistence.User, error) {
	if s == nil || s.users == nil {
		return persistence.User{}, fmt.Errorf("user repository not configured")
	}
	if !params.Principal.IsAdmin {
		return persistence.User{}, ErrUnauthorized
	}

	input := params.Input
	logger := s.loggerWith(ctx, "CreateUser", zap.String("email", normalizeEmail(input.Email)))

	vErr := &ValidationError{}
	validateUserCore(input, vErr)
	if input.Password == "" {
		vErr.add("password", "password is required")
	}
	if vErr.HasErrors() {
		return persistence.User{}, vErr
	}

	hash, err := CreatePasswordHash(input.Password, s.hashParams)
	if err != nil {
		return persistence.User{}, err
	}

	now := s.now()
	user := persistence.User{
		ID:           s.idGenerator(),
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		PasswordHash: hash,
		Role:         persistence.Role(input.Role),
		Department:   strings.TrimSpace(input.Department),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if isDuplicateError(err) {
			vErr.add("email", "email already in use")
			return persistence.User{}, vErr
		}
		logger.Error("user creation failed", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
		return persistence.User{}, err
	}

	logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// UpdateUser applies account changes. An empty password keeps the stored
// hash.
func (s *UserService) UpdateUser(ctx context.Context, params UpdateUserParams) (persistence.User, error) {
	if s == nil || s.users == nil {
		return persistence.User{}, fmt.Errorf("user repository not configured")
	}
	if !params.Principal.IsAdmin {
		return persistence.User{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "UpdateUser", zap.String("user_id", params.UserID))

	existing, err := s.users.GetUser(ctx, params.UserID)
	if err != nil {
		return persistence.User{}, mapRepoError(err)
	}

	input := params.Input
	vErr := &ValidationError{}
	validateUserCore(input, vErr)
	if vErr.HasErrors() {
		return persistence.User{}, vErr
	}

	updated := existing
	updated.Name = strings.TrimSpace(input.Name)
	updated.Email = normalizeEmail(input.Email)
	updated.Role = persistence.Role(input.Role)
	updated.Department = strings.TrimSpace(input.Department)
	updated.UpdatedAt = s.now()

	if input.Password != "" {
		hash, err := CreatePasswordHash(input.Password, s.hashParams)
		if err != nil {
			return persistence.User{}, err
		}
		updated.PasswordHash = hash
	}

	if err := s.users.UpdateUser(ctx, updated); err != nil {
		if isDuplicateError(err) {
			vErr.add("email", "email already in use")
			return persistence.User{}, vErr
		}
		logger.Error("user update failed", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
		return persistence.User{}, mapRepoError(err)
	}

	logger.Info("user updated")
	return updated, nil
}

// GetUser returns one account by id.
func (s *UserService) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if s == nil || s.users == nil {
		return persistence.User{}, fmt.Errorf("user repository not configured")
	}
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return persistence.User{}, mapRepoError(err)
	}
	return user, nil
}

// ListUsers enumerates accounts.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]persistence.User, error) {
	if s == nil || s.users == nil {
		return nil, fmt.Errorf("user repository not configured")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	return s.users.ListUsers(ctx)
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, userID string) error {
	if s == nil || s.users == nil {
		return fmt.Errorf("user repository not configured")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if principal.UserID == userID {
		vErr := &ValidationError{}
		vErr.add("user_id", "cannot delete your own account")
		return vErr
	}

	logger := s.loggerWith(ctx, "DeleteUser", zap.String("user_id", userID))
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		logger.Error("user deletion failed", zap.Error(err), zap.String("error_kind", ErrorKind(err)))
		return mapRepoError(err)
	}
	logger.Info("user deleted")
	return nil
}

func validateUserCore(input UserInput, vErr *ValidationError) {
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	email := normalizeEmail(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "must be a valid email address")
	}
	if !persistence.Role(input.Role).Known() {
		vErr.add("role", "role must be professor or admin")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
