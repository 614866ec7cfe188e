package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/classroom-reserve/internal/persistence"
)

func (s *Storage) CreateRoom(ctx context.Context, room persistence.Room) error {
	if _, err := s.rooms.InsertOne(ctx, room); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return persistence.ErrDuplicate
		}
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return nil
}

func (s *Storage) UpdateRoom(ctx context.Context, room persistence.Room) error {
	res, err := s.rooms.ReplaceOne(ctx, bson.M{"_id": room.ID}, room)
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

func (s *Storage) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	var room persistence.Room
	if err := s.rooms.FindOne(ctx, bson.M{"_id": id}).Decode(&room); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return persistence.Room{}, persistence.ErrNotFound
		}
		return persistence.Room{}, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return room, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	cursor, err := s.rooms.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{
		{Key: "building", Value: 1},
		{Key: "number", Value: 1},
	}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	var out []persistence.Room
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return out, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id string) error {
	res, err := s.rooms.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	if res.DeletedCount == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
