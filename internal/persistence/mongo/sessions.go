package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/classroom-reserve/internal/persistence"
)

func (s *Storage) CreateSession(ctx context.Context, sess persistence.Session) (persistence.Session, error) {
	if _, err := s.sessions.InsertOne(ctx, sess); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return persistence.Session{}, persistence.ErrDuplicate
		}
		return persistence.Session{}, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return sess, nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	var sess persistence.Session
	err := s.sessions.FindOne(ctx, bson.M{"token": token}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return persistence.Session{}, persistence.ErrNotFound
	}
	if err != nil {
		return persistence.Session{}, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return sess, nil
}

func (s *Storage) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	var sess persistence.Session
	err := s.sessions.FindOneAndUpdate(ctx,
		bson.M{"token": token},
		bson.M{"$set": bson.M{"revoked_at": revokedAt, "updated_at": revokedAt}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return persistence.Session{}, persistence.ErrNotFound
	}
	if err != nil {
		return persistence.Session{}, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return sess, nil
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error) {
	res, err := s.sessions.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": reference}})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return res.DeletedCount, nil
}
