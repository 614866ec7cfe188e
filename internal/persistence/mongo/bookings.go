package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/classroom-reserve/internal/booking"
	"github.com/example/classroom-reserve/internal/persistence"
)

// InsertBookings persists a batch of occurrences all-or-nothing. When the
// deployment supports transactions the batch runs inside one; otherwise an
// ordered insert is issued and any partially written prefix is rolled back
// before the error is surfaced, so no partial group is ever left behind.
func (s *Storage) InsertBookings(ctx context.Context, bookings []persistence.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	docs := make([]any, 0, len(bookings))
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		docs = append(docs, b)
		ids = append(ids, b.ID)
	}

	err := withTransaction(ctx, s.client, func(sc mongo.SessionContext) (any, error) {
		_, err := s.bookings.InsertMany(sc, docs)
		return nil, err
	})
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return persistence.ErrDuplicate
	}
	if !IsTxnNotSupported(err) {
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}

	// Standalone server: ordered insert with explicit rollback.
	if _, err := s.bookings.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		if _, cleanupErr := s.bookings.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); cleanupErr != nil {
			return fmt.Errorf("%w: insert failed (%v) and rollback failed (%v)", persistence.ErrUnavailable, err, cleanupErr)
		}
		if mongo.IsDuplicateKeyError(err) {
			return persistence.ErrDuplicate
		}
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return nil
}

func (s *Storage) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	var b persistence.Booking
	if err := s.bookings.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return b, nil
}

func (s *Storage) UpdateBooking(ctx context.Context, b persistence.Booking) error {
	res, err := s.bookings.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (s *Storage) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	query := bson.M{}
	if filter.RoomID != "" {
		query["room_id"] = filter.RoomID
	}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.GroupID != "" {
		query["group_id"] = filter.GroupID
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}
	dateRange := bson.M{}
	if filter.DateFrom != nil {
		dateRange["$gte"] = booking.DateOf(*filter.DateFrom)
	}
	if filter.DateTo != nil {
		dateRange["$lte"] = booking.DateOf(*filter.DateTo)
	}
	if len(dateRange) > 0 {
		query["date"] = dateRange
	}

	cursor, err := s.bookings.Find(ctx, query, options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "start_minutes", Value: 1},
		{Key: "_id", Value: 1},
	}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	var out []persistence.Booking
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return out, nil
}

func (s *Storage) SetBookingStatus(ctx context.Context, id string, status booking.Status, at time.Time) (int64, error) {
	res, err := s.bookings.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": at}},
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return res.ModifiedCount, nil
}

// SetGroupStatus transitions every member of a group in one updateMany. The
// modified count is reported back so a caller can detect a partially
// applied write on deployments without transactional guarantees.
func (s *Storage) SetGroupStatus(ctx context.Context, groupID string, status booking.Status, at time.Time) (int64, error) {
	res, err := s.bookings.UpdateMany(ctx,
		bson.M{"group_id": groupID},
		bson.M{"$set": bson.M{"status": status, "updated_at": at}},
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return res.ModifiedCount, nil
}

func (s *Storage) DeleteBooking(ctx context.Context, id string) (int64, error) {
	res, err := s.bookings.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return res.DeletedCount, nil
}

func (s *Storage) DeleteGroup(ctx context.Context, groupID string) (int64, error) {
	res, err := s.bookings.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return res.DeletedCount, nil
}
