package notificationRepo

import (
	"context"
	"errors"
	"time"

	"remindly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateForEventTxn links a notification to its calendar event in one
// transaction: read the event, verify the caller owns it, stamp
// reminderSentAt, insert the feed entry. One attempt only; transient failures
// bubble up so the dispatcher's bounded retry loop can re-run the whole thing.
func (r *MongoNotificationRepo) CreateForEventTxn(ctx context.Context, userID, eventID string, n models.Notification) (*models.Notification, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	r.prepare(&n)
	n.UserID = userID
	n.EventID = eventID

	err = mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if err := session.StartTransaction(); err != nil {
			return err
		}

		var ev models.Event
		if err := r.events.FindOne(sc, bson.M{"id": eventID}).Decode(&ev); err != nil {
			_ = session.AbortTransaction(sc)
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrEventNotFound
			}
			return err
		}
		if ev.OwnerID != userID {
			_ = session.AbortTransaction(sc)
			return ErrNotAuthorized
		}

		update := bson.M{"$set": bson.M{"reminderSentAt": time.Now()}}
		if _, err := r.events.UpdateOne(sc, bson.M{"id": eventID}, update); err != nil {
			_ = session.AbortTransaction(sc)
			return err
		}
		if _, err := r.users.InsertOne(sc, n); err != nil {
			_ = session.AbortTransaction(sc)
			return err
		}

		return session.CommitTransaction(sc)
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}
