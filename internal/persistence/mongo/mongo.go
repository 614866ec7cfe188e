// Package mongo implements the persistence repositories over a MongoDB
// database. Collections mirror the repository split: users, rooms,
// bookings, notifications, sessions.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Storage bundles the collection handles behind the repository interfaces.
type Storage struct {
	client        *mongo.Client
	db            *mongo.Database
	users         *mongo.Collection
	rooms         *mongo.Collection
	bookings      *mongo.Collection
	notifications *mongo.Collection
	sessions      *mongo.Collection
}

// Open connects to the deployment, verifies reachability, and returns a
// Storage bound to the named database.
func Open(ctx context.Context, uri, database string) (*Storage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	db := client.Database(database)
	return &Storage{
		client:        client,
		db:            db,
		users:         db.Collection("users"),
		rooms:         db.Collection("rooms"),
		bookings:      db.Collection("bookings"),
		notifications: db.Collection("notifications"),
		sessions:      db.Collection("sessions"),
	}, nil
}

// Close disconnects from the deployment.
func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Database exposes the underlying handle for index reconciliation.
func (s *Storage) Database() *mongo.Database {
	return s.db
}
