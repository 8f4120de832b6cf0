package guestRepo

import (
	"context"

	"remindly/models"
)

// GuestDeviceRepository tracks unauthenticated devices by their
// client-generated fingerprint.
type GuestDeviceRepository interface {
	// Upsert creates the device on first contact and updates token/timezone
	// in place on later ones.
	Upsert(ctx context.Context, deviceID, firebaseToken, timezone string) (*models.GuestDevice, error)
	ByDeviceID(ctx context.Context, deviceID string) (*models.GuestDevice, error)
	Deactivate(ctx context.Context, deviceID string) error
}
