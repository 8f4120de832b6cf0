package tokenRepo

import (
	"context"

	"remindly/models"
)

// DeviceTokenRepository is the single source of truth for which push tokens
// are still usable. It does not retry; storage errors propagate to the caller.
type DeviceTokenRepository interface {
	// Save registers a token for a user, reactivating the existing row when
	// the same (user, token) pair was registered before.
	Save(ctx context.Context, userID, token string, deviceType models.DeviceType) (*models.DeviceToken, error)
	// Deactivate marks every row holding the token inactive, regardless of
	// owner. Idempotent.
	Deactivate(ctx context.Context, token string) error
	// DeactivateForUser marks one user's registration of a token inactive
	// (client-initiated, e.g. logout).
	DeactivateForUser(ctx context.Context, userID, token string) error
	ActiveForUser(ctx context.Context, userID string) ([]models.DeviceToken, error)
	ActiveForUsers(ctx context.Context, userIDs []string) ([]models.DeviceToken, error)
	AllActive(ctx context.Context) ([]models.DeviceToken, error)
}
