package notificationRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoNotificationRepo implements NotificationRepository using MongoDB.
type MongoNotificationRepo struct {
	client *mongo.Client
	users  *mongo.Collection
	guests *mongo.Collection
	events *mongo.Collection
}

// NewMongoNotificationRepo creates a new NotificationRepository instance using MongoDB.
func NewMongoNotificationRepo(client *mongo.Client, dbName string) *MongoNotificationRepo {
	db := client.Database(dbName)
	repo := &MongoNotificationRepo{
		client: client,
		users:  db.Collection("user_notifications"),
		guests: db.Collection("guest_notifications"),
		events: db.Collection("events"),
	}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoNotificationRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	userModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := r.users.Indexes().CreateMany(ctx, userModels); err != nil {
		return fmt.Errorf("failed to create user_notifications indexes: %w", err)
	}

	guestModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "deviceId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := r.guests.Indexes().CreateMany(ctx, guestModels); err != nil {
		return fmt.Errorf("failed to create guest_notifications indexes: %w", err)
	}

	eventModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "ownerId", Value: 1}}},
	}
	if _, err := r.events.Indexes().CreateMany(ctx, eventModels); err != nil {
		return fmt.Errorf("failed to create events indexes: %w", err)
	}
	return nil
}
