package push

import (
	"context"
	"fmt"
	"time"

	guestRepo "remindly/database/repository/guest"
	notificationRepo "remindly/database/repository/notification"
	tokenRepo "remindly/database/repository/token"
	"remindly/models"
	"remindly/utils"

	"go.uber.org/zap"
)

// Limiter throttles outbound sends per recipient key.
type Limiter interface {
	Apply(ctx context.Context, key string) error
}

// DispatchService is the push-notification dispatch and feed surface.
// Expected failures (no recipients, bad formats, provider rejections) come
// back inside the DispatchResult; only the event-reminder path returns errors.
type DispatchService interface {
	SendNotification(ctx context.Context, token string, payload models.NotificationPayload) *models.DispatchResult
	SendNotificationToUser(ctx context.Context, userID string, payload models.NotificationPayload) *models.DispatchResult
	SendNotificationToUsers(ctx context.Context, userIDs []string, payload models.NotificationPayload) *models.DispatchResult
	BroadcastNotification(ctx context.Context, payload models.NotificationPayload) *models.DispatchResult
	SendNotificationToBatch(ctx context.Context, tokens []string, title, body string, data map[string]string) *models.DispatchResult
	SendNotificationToDevice(ctx context.Context, deviceID string, title, body string, data map[string]string) *models.DispatchResult
	SendTopicNotification(ctx context.Context, topic string, payload models.NotificationPayload) *models.DispatchResult
	SendEventReminder(ctx context.Context, userID, eventID string, payload models.NotificationPayload) (*models.Notification, error)

	GetUserNotifications(ctx context.Context, userID string, opts models.ListOptions) ([]models.Notification, error)
	GetGuestNotifications(ctx context.Context, deviceID string, opts models.ListOptions) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) (*models.Notification, error)
	MarkGuestNotificationAsRead(ctx context.Context, deviceID, notificationID string) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
}

// DefaultDispatchService is the production implementation.
type DefaultDispatchService struct {
	Transport Transport
	Tokens    tokenRepo.DeviceTokenRepository
	Guests    guestRepo.GuestDeviceRepository
	Feed      notificationRepo.NotificationRepository
	Limiter   Limiter
	Validator *Validator
	Logger    *zap.Logger

	// Retry settings for the transactional event-notification write.
	MaxRetries   int
	RetryBackoff time.Duration

	// Feed records expire logically at CreatedAt + TTL; no purge job runs.
	NotificationTTL time.Duration
}

// NewDispatchService wires the dispatcher. Transport may be nil (sends then
// report "transport not initialized"); stores and the validator may not.
func NewDispatchService(
	transport Transport,
	tokens tokenRepo.DeviceTokenRepository,
	guests guestRepo.GuestDeviceRepository,
	feed notificationRepo.NotificationRepository,
	limiter Limiter,
	validator *Validator,
) (*DefaultDispatchService, error) {
	if tokens == nil || guests == nil || feed == nil || validator == nil {
		return nil, fmt.Errorf("dispatch service initialization error: missing required collaborator")
	}
	return &DefaultDispatchService{
		Transport:       transport,
		Tokens:          tokens,
		Guests:          guests,
		Feed:            feed,
		Limiter:         limiter,
		Validator:       validator,
		Logger:          utils.GetLogger(),
		MaxRetries:      3,
		RetryBackoff:    200 * time.Millisecond,
		NotificationTTL: 30 * 24 * time.Hour,
	}, nil
}
