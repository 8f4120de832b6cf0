package push

import (
	"context"

	"remindly/models"
)

// Feed read and read-tracking operations. "Nothing to do" conditions come
// back as nil records or zero counts, never as errors.

func (s *DefaultDispatchService) GetUserNotifications(ctx context.Context, userID string, opts models.ListOptions) ([]models.Notification, error) {
	return s.Feed.ListForUser(ctx, userID, opts)
}

func (s *DefaultDispatchService) GetGuestNotifications(ctx context.Context, deviceID string, opts models.ListOptions) ([]models.Notification, error) {
	return s.Feed.ListForGuest(ctx, deviceID, opts)
}

// MarkAsRead flips one notification to read. Returns nil when the target
// record does not exist; re-marking an already-read record still returns it.
func (s *DefaultDispatchService) MarkAsRead(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	return s.Feed.MarkRead(ctx, userID, notificationID)
}

func (s *DefaultDispatchService) MarkGuestNotificationAsRead(ctx context.Context, deviceID, notificationID string) (*models.Notification, error) {
	return s.Feed.MarkGuestRead(ctx, deviceID, notificationID)
}

// MarkAllAsRead batch-updates every unread record for the user and returns
// how many were flipped.
func (s *DefaultDispatchService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	return s.Feed.MarkAllRead(ctx, userID)
}
