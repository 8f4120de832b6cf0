package notificationRepo

import (
	"context"
	"errors"
	"time"

	"remindly/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoNotificationRepo) prepare(n *models.Notification) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Status == "" {
		n.Status = models.NotificationUnread
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
}

// CreateForUser appends a notification to a user's feed and returns its ID.
func (r *MongoNotificationRepo) CreateForUser(ctx context.Context, userID string, n models.Notification) (string, error) {
	r.prepare(&n)
	n.UserID = userID
	n.DeviceID = ""

	if _, err := r.users.InsertOne(ctx, n); err != nil {
		return "", err
	}
	return n.ID, nil
}

// CreateForGuest appends a notification to a guest device's feed and returns its ID.
func (r *MongoNotificationRepo) CreateForGuest(ctx context.Context, deviceID string, n models.Notification) (string, error) {
	r.prepare(&n)
	n.DeviceID = deviceID
	n.UserID = ""

	if _, err := r.guests.InsertOne(ctx, n); err != nil {
		return "", err
	}
	return n.ID, nil
}

func (r *MongoNotificationRepo) list(ctx context.Context, coll *mongo.Collection, filter bson.M, opts models.ListOptions) ([]models.Notification, error) {
	if opts.Status != "" {
		filter["status"] = opts.Status
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = 20
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *MongoNotificationRepo) ListForUser(ctx context.Context, userID string, opts models.ListOptions) ([]models.Notification, error) {
	return r.list(ctx, r.users, bson.M{"userId": userID}, opts)
}

func (r *MongoNotificationRepo) ListForGuest(ctx context.Context, deviceID string, opts models.ListOptions) ([]models.Notification, error) {
	return r.list(ctx, r.guests, bson.M{"deviceId": deviceID}, opts)
}

func (r *MongoNotificationRepo) markRead(ctx context.Context, coll *mongo.Collection, filter bson.M) (*models.Notification, error) {
	update := bson.M{"$set": bson.M{"status": models.NotificationRead}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Notification
	err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *MongoNotificationRepo) MarkRead(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	return r.markRead(ctx, r.users, bson.M{"id": notificationID, "userId": userID})
}

func (r *MongoNotificationRepo) MarkGuestRead(ctx context.Context, deviceID, notificationID string) (*models.Notification, error) {
	return r.markRead(ctx, r.guests, bson.M{"id": notificationID, "deviceId": deviceID})
}

func (r *MongoNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	filter := bson.M{"userId": userID, "status": models.NotificationUnread}

	count, err := r.users.CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	res, err := r.users.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"status": models.NotificationRead}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
