package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/classroom-reserve/internal/persistence"
)

func (s *Storage) InsertNotification(ctx context.Context, n persistence.Notification) error {
	if _, err := s.notifications.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return nil
}

func (s *Storage) ListNotificationsForRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]persistence.Notification, error) {
	query := bson.M{"recipient_id": recipientID}
	if unreadOnly {
		query["read"] = false
	}

	cursor, err := s.notifications.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	var out []persistence.Notification
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return out, nil
}

func (s *Storage) MarkNotificationRead(ctx context.Context, id, recipientID string) (int64, error) {
	res, err := s.notifications.UpdateOne(ctx,
		bson.M{"_id": id, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return res.ModifiedCount, nil
}
