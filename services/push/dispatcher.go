package push

import (
	"context"
	"errors"
	"time"

	notificationRepo "remindly/database/repository/notification"
	"remindly/models"

	"go.uber.org/zap"
)

func (s *DefaultDispatchService) newRecord(payload models.NotificationPayload) models.Notification {
	now := time.Now()
	kind := "general"
	if t, ok := payload.Data["type"]; ok && t != "" {
		kind = t
	}
	return models.Notification{
		Type:      kind,
		Title:     payload.Title,
		Body:      payload.Body,
		Data:      payload.Data,
		Status:    models.NotificationUnread,
		CreatedAt: now,
		ExpiresAt: now.Add(s.NotificationTTL),
	}
}

func (s *DefaultDispatchService) throttle(ctx context.Context, key string) error {
	if s.Limiter == nil {
		return nil
	}
	return s.Limiter.Apply(ctx, key)
}

// SendNotification delivers to a single raw token. Single sends are not
// retried; only the transactional notification-write path retries.
func (s *DefaultDispatchService) SendNotification(ctx context.Context, token string, payload models.NotificationPayload) *models.DispatchResult {
	if s.Transport == nil {
		return models.DispatchFailure("transport not initialized")
	}
	if !s.Validator.WellFormed(token) {
		return models.DispatchFailure("invalid token format")
	}
	if err := s.throttle(ctx, "token:"+token); err != nil {
		return models.DispatchFailure(err.Error())
	}

	id, err := s.Transport.Send(ctx, token, payload)
	if err != nil {
		if IsTokenInvalid(err) {
			if derr := s.Tokens.Deactivate(ctx, token); derr != nil {
				s.Logger.Error("failed to deactivate dead token", zap.Error(derr))
			}
			return models.DispatchFailure("token deactivated")
		}
		return models.DispatchFailure(err.Error())
	}
	return &models.DispatchResult{Success: true, MessageID: id, SuccessCount: 1}
}

// sendMulticast is the shared multicast primitive. Each precondition failure
// gets its own error string so callers can tell an empty audience from a
// missing transport from a wall of malformed tokens. The second return
// reports whether the provider was actually invoked; feed records are only
// written for sends that were at least attempted.
func (s *DefaultDispatchService) sendMulticast(ctx context.Context, tokens []string, payload models.NotificationPayload, rateKey string) (*models.DispatchResult, bool) {
	if len(tokens) == 0 {
		return models.DispatchFailure("no valid FCM tokens found"), false
	}
	if s.Transport == nil {
		return models.DispatchFailure("Firebase app not initialized"), false
	}
	valid := s.Validator.Filter(tokens)
	if len(valid) == 0 {
		return models.DispatchFailure("no valid FCM token formats found"), false
	}
	if err := s.throttle(ctx, rateKey); err != nil {
		return models.DispatchFailure(err.Error()), false
	}

	outcomes, err := s.Transport.SendMulticast(ctx, valid, payload)
	if err != nil {
		return models.DispatchFailure(err.Error()), true
	}

	result := &models.DispatchResult{}
	for _, out := range outcomes {
		if out.Success {
			result.SuccessCount++
			if out.MessageID != "" {
				result.MessageIDs = append(result.MessageIDs, out.MessageID)
			}
		} else {
			result.FailureCount++
		}
	}

	// Dead tokens get deactivated even on a mostly-successful multicast.
	s.handleInvalidTokens(ctx, outcomes)

	if result.SuccessCount == 0 {
		result.Error = "all sends failed"
		return result, true
	}
	result.Success = true
	return result, true
}

// handleInvalidTokens deactivates every token whose per-recipient response
// identified it as invalid or unregistered. A deactivation that fails on a
// transient store error is only logged: the token simply fails again on the
// next send, a bounded cost rather than a correctness problem.
func (s *DefaultDispatchService) handleInvalidTokens(ctx context.Context, outcomes []SendOutcome) {
	for _, out := range outcomes {
		if !out.TokenInvalid {
			continue
		}
		if err := s.Tokens.Deactivate(ctx, out.Token); err != nil {
			s.Logger.Error("failed to deactivate dead token",
				zap.String("token", out.Token), zap.Error(err))
			continue
		}
		s.Logger.Info("deactivated dead token",
			zap.String("token", out.Token), zap.String("cause", out.ErrMessage))
	}
}

// SendNotificationToUser fans out to every active token a user has and
// appends one record to the user's feed.
func (s *DefaultDispatchService) SendNotificationToUser(ctx context.Context, userID string, payload models.NotificationPayload) *models.DispatchResult {
	rows, err := s.Tokens.ActiveForUser(ctx, userID)
	if err != nil {
		return models.DispatchFailure(err.Error())
	}
	if len(rows) == 0 {
		return models.DispatchFailure("no active tokens")
	}
	tokens := make([]string, 0, len(rows))
	for _, row := range rows {
		tokens = append(tokens, row.Token)
	}
	if len(s.Validator.Filter(tokens)) == 0 {
		return models.DispatchFailure("no valid token formats")
	}

	result, attempted := s.sendMulticast(ctx, tokens, payload, "user:"+userID)
	if attempted {
		s.persistUserRecord(ctx, userID, payload)
	}
	return result
}

func (s *DefaultDispatchService) persistUserRecord(ctx context.Context, userID string, payload models.NotificationPayload) {
	if _, err := s.Feed.CreateForUser(ctx, userID, s.newRecord(payload)); err != nil {
		// A push delivered without a feed record is the accepted cross-store
		// gap; the send result stands.
		s.Logger.Error("failed to persist notification record",
			zap.String("userId", userID), zap.Error(err))
	}
}

// BroadcastNotification fans out to every active token system-wide.
func (s *DefaultDispatchService) BroadcastNotification(ctx context.Context, payload models.NotificationPayload) *models.DispatchResult {
	rows, err := s.Tokens.AllActive(ctx)
	if err != nil {
		return models.DispatchFailure(err.Error())
	}
	if len(rows) == 0 {
		return models.DispatchFailure("no active tokens")
	}
	tokens := make([]string, 0, len(rows))
	for _, row := range rows {
		tokens = append(tokens, row.Token)
	}
	result, _ := s.sendMulticast(ctx, tokens, payload, "broadcast")
	return result
}

// SendNotificationToUsers resolves tokens for a batch of users in one query
// and writes one feed record per user, not per token.
func (s *DefaultDispatchService) SendNotificationToUsers(ctx context.Context, userIDs []string, payload models.NotificationPayload) *models.DispatchResult {
	if len(userIDs) == 0 {
		return models.DispatchFailure("no user ids provided")
	}
	rows, err := s.Tokens.ActiveForUsers(ctx, userIDs)
	if err != nil {
		return models.DispatchFailure(err.Error())
	}
	if len(rows) == 0 {
		return models.DispatchFailure("no active tokens")
	}

	tokens := make([]string, 0, len(rows))
	reached := make(map[string]bool, len(userIDs))
	for _, row := range rows {
		tokens = append(tokens, row.Token)
		reached[row.UserID] = true
	}

	result, attempted := s.sendMulticast(ctx, tokens, payload, "batch")
	if attempted {
		for userID := range reached {
			s.persistUserRecord(ctx, userID, payload)
		}
	}
	return result
}

// SendNotificationToBatch is the lower-level multicast entry point taking raw
// tokens directly.
func (s *DefaultDispatchService) SendNotificationToBatch(ctx context.Context, tokens []string, title, body string, data map[string]string) *models.DispatchResult {
	payload := models.NotificationPayload{Title: title, Body: body, Data: data}
	result, _ := s.sendMulticast(ctx, tokens, payload, "batch")
	return result
}

// SendNotificationToDevice is the guest path: delivery to the single token a
// guest device registered, plus a record in the guest's feed.
func (s *DefaultDispatchService) SendNotificationToDevice(ctx context.Context, deviceID string, title, body string, data map[string]string) *models.DispatchResult {
	device, err := s.Guests.ByDeviceID(ctx, deviceID)
	if err != nil {
		return models.DispatchFailure(err.Error())
	}
	if device == nil || !device.IsActive || device.FirebaseToken == "" {
		return models.DispatchFailure("no active token")
	}
	if s.Transport == nil {
		return models.DispatchFailure("transport not initialized")
	}
	payload := models.NotificationPayload{Title: title, Body: body, Data: data}
	if !s.Validator.WellFormed(device.FirebaseToken) {
		return models.DispatchFailure("invalid token format")
	}
	if err := s.throttle(ctx, "device:"+deviceID); err != nil {
		return models.DispatchFailure(err.Error())
	}

	id, err := s.Transport.Send(ctx, device.FirebaseToken, payload)
	if err != nil {
		if IsTokenInvalid(err) {
			if derr := s.Guests.Deactivate(ctx, deviceID); derr != nil {
				s.Logger.Error("failed to deactivate guest device", zap.Error(derr))
			}
			return models.DispatchFailure("token deactivated")
		}
		return models.DispatchFailure(err.Error())
	}

	record := s.newRecord(payload)
	if _, err := s.Feed.CreateForGuest(ctx, deviceID, record); err != nil {
		s.Logger.Error("failed to persist guest notification record",
			zap.String("deviceId", deviceID), zap.Error(err))
	}
	return &models.DispatchResult{Success: true, MessageID: id, SuccessCount: 1}
}

// SendTopicNotification publishes to a topic subscription.
func (s *DefaultDispatchService) SendTopicNotification(ctx context.Context, topic string, payload models.NotificationPayload) *models.DispatchResult {
	if !ValidTopic(topic) {
		return models.DispatchFailure("invalid topic format")
	}
	if s.Transport == nil {
		return models.DispatchFailure("transport not initialized")
	}
	if err := s.throttle(ctx, "topic:"+topic); err != nil {
		return models.DispatchFailure(err.Error())
	}

	id, err := s.Transport.SendTopic(ctx, topic, payload)
	if err != nil {
		return models.DispatchFailure(err.Error())
	}
	return &models.DispatchResult{Success: true, MessageID: id, SuccessCount: 1}
}

// SendEventReminder pushes an event reminder to the user's devices, then
// appends the event-linked feed entry through the transactional write. The
// transaction is retried on transient failures up to MaxRetries with linearly
// increasing backoff; NotFound and Unauthorized are never retried. Unlike the
// other send paths this returns an error after exhaustion, for the caller to
// handle.
func (s *DefaultDispatchService) SendEventReminder(ctx context.Context, userID, eventID string, payload models.NotificationPayload) (*models.Notification, error) {
	rows, err := s.Tokens.ActiveForUser(ctx, userID)
	if err == nil && len(rows) > 0 {
		tokens := make([]string, 0, len(rows))
		for _, row := range rows {
			tokens = append(tokens, row.Token)
		}
		res, _ := s.sendMulticast(ctx, tokens, payload, "user:"+userID)
		if !res.Success {
			s.Logger.Warn("event reminder push failed, recording feed entry anyway",
				zap.String("userId", userID), zap.String("eventId", eventID),
				zap.String("error", res.Error))
		}
	} else if err != nil {
		s.Logger.Warn("token lookup failed for event reminder",
			zap.String("userId", userID), zap.Error(err))
	}

	record := s.newRecord(payload)
	record.Type = "event_reminder"

	var created *models.Notification
	err = s.withRetry(ctx, func() error {
		var txnErr error
		created, txnErr = s.Feed.CreateForEventTxn(ctx, userID, eventID, record)
		return txnErr
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// withRetry runs fn up to MaxRetries times with linearly increasing backoff,
// skipping retries for the non-transient ownership errors and surfacing the
// last error after exhaustion.
func (s *DefaultDispatchService) withRetry(ctx context.Context, fn func() error) error {
	attempts := s.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, notificationRepo.ErrEventNotFound) ||
			errors.Is(lastErr, notificationRepo.ErrNotAuthorized) {
			return lastErr
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i) * s.RetryBackoff):
		}
	}
	return lastErr
}
