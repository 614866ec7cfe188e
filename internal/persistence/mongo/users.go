package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/classroom-reserve/internal/persistence"
)

func (s *Storage) CreateUser(ctx context.Context, user persistence.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return persistence.ErrDuplicate
		}
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return nil
}

func (s *Storage) UpdateUser(ctx context.Context, user persistence.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return persistence.ErrDuplicate
		}
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id string) (persistence.User, error) {
	var user persistence.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user persistence.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return user, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]persistence.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	var out []persistence.User
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return out, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	if res.DeletedCount == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
