package push

import (
	"context"
	"fmt"

	"remindly/models"

	"firebase.google.com/go/v4/messaging"
)

// FCMTransport binds the Transport port to Firebase Cloud Messaging.
type FCMTransport struct {
	client *messaging.Client
}

// NewFCMTransport wraps an initialized Messaging client.
func NewFCMTransport(client *messaging.Client) (*FCMTransport, error) {
	if client == nil {
		return nil, fmt.Errorf("fcm transport initialization error: messaging client is nil")
	}
	return &FCMTransport{client: client}, nil
}

func buildMessage(token string, payload models.NotificationPayload) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
}

// tokenDead maps provider error codes to the dead-token class: the token was
// never valid or the installation unregistered it. Everything else (quota,
// unavailable, internal) is a plain provider failure.
func tokenDead(err error) bool {
	return messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err)
}

func (t *FCMTransport) Send(ctx context.Context, token string, payload models.NotificationPayload) (string, error) {
	id, err := t.client.Send(ctx, buildMessage(token, payload))
	if err != nil {
		if tokenDead(err) {
			return "", MarkTokenInvalid(err)
		}
		return "", fmt.Errorf("failed to send FCM message: %w", err)
	}
	return id, nil
}

func (t *FCMTransport) SendMulticast(ctx context.Context, tokens []string, payload models.NotificationPayload) ([]SendOutcome, error) {
	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	}

	resp, err := t.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}

	// Zip tokens and responses immediately; the index pairing is valid only
	// here, where the provider guarantees response order.
	outcomes := make([]SendOutcome, 0, len(resp.Responses))
	for i, r := range resp.Responses {
		out := SendOutcome{Token: tokens[i], Success: r.Success, MessageID: r.MessageID}
		if r.Error != nil {
			out.ErrMessage = r.Error.Error()
			out.TokenInvalid = tokenDead(r.Error)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

func (t *FCMTransport) SendTopic(ctx context.Context, topic string, payload models.NotificationPayload) (string, error) {
	msg := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	}
	id, err := t.client.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("failed to send FCM topic message: %w", err)
	}
	return id, nil
}
