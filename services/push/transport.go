package push

import (
	"context"
	"errors"

	"remindly/models"
)

// SendOutcome pairs one token with its per-recipient provider response. The
// pairs are built once, right after the provider call, so nothing downstream
// ever matches tokens to responses by array position.
type SendOutcome struct {
	Token        string
	Success      bool
	MessageID    string
	ErrMessage   string
	TokenInvalid bool
}

// Transport is the push-delivery port. The concrete binding (FCM) lives in
// fcm.go; tests use fakes.
type Transport interface {
	Send(ctx context.Context, token string, payload models.NotificationPayload) (string, error)
	SendMulticast(ctx context.Context, tokens []string, payload models.NotificationPayload) ([]SendOutcome, error)
	SendTopic(ctx context.Context, topic string, payload models.NotificationPayload) (string, error)
}

// tokenInvalidError marks provider rejections that identify the registration
// token itself as invalid or unregistered.
type tokenInvalidError struct {
	cause error
}

func (e *tokenInvalidError) Error() string { return e.cause.Error() }
func (e *tokenInvalidError) Unwrap() error { return e.cause }

// MarkTokenInvalid wraps a provider error as a dead-token rejection.
func MarkTokenInvalid(err error) error {
	return &tokenInvalidError{cause: err}
}

// IsTokenInvalid reports whether a transport error identifies a dead token.
func IsTokenInvalid(err error) bool {
	var tie *tokenInvalidError
	return errors.As(err, &tie)
}
