package notificationRepo

import (
	"context"
	"errors"

	"remindly/models"
)

// Raised only by the transactional event-linked write; neither is transient,
// so the dispatcher never retries them.
var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotAuthorized = errors.New("event not owned by user")
)

// NotificationRepository is the per-recipient notification feed. User and
// guest feeds live in separate collections keyed by userId and deviceId.
type NotificationRepository interface {
	CreateForUser(ctx context.Context, userID string, n models.Notification) (string, error)
	CreateForGuest(ctx context.Context, deviceID string, n models.Notification) (string, error)

	ListForUser(ctx context.Context, userID string, opts models.ListOptions) ([]models.Notification, error)
	ListForGuest(ctx context.Context, deviceID string, opts models.ListOptions) ([]models.Notification, error)

	// MarkRead returns nil, nil when the notification does not exist; marking
	// an already-read record again is a no-op success.
	MarkRead(ctx context.Context, userID, notificationID string) (*models.Notification, error)
	MarkGuestRead(ctx context.Context, deviceID, notificationID string) (*models.Notification, error)
	// MarkAllRead updates every unread record for the user in one batch write
	// and reports how many were flipped; it issues no write when there is
	// nothing unread.
	MarkAllRead(ctx context.Context, userID string) (int64, error)

	// CreateForEventTxn runs one transaction attempt: load the event, verify
	// ownership, stamp ReminderSentAt, insert the feed entry. It does not
	// retry; the dispatcher owns the retry loop.
	CreateForEventTxn(ctx context.Context, userID, eventID string, n models.Notification) (*models.Notification, error)
}
