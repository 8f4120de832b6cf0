package guestRepo

import (
	"context"
	"errors"
	"time"

	"remindly/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormGuestDeviceRepo implements GuestDeviceRepository on a relational store.
type GormGuestDeviceRepo struct {
	db *gorm.DB
}

// NewGormGuestDeviceRepo creates a new GuestDeviceRepository instance.
func NewGormGuestDeviceRepo(db *gorm.DB) *GormGuestDeviceRepo {
	return &GormGuestDeviceRepo{db: db}
}

func (r *GormGuestDeviceRepo) Upsert(ctx context.Context, deviceID, firebaseToken, timezone string) (*models.GuestDevice, error) {
	var existing models.GuestDevice
	err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).First(&existing).Error
	if err == nil {
		if firebaseToken != "" {
			existing.FirebaseToken = firebaseToken
		}
		if timezone != "" {
			existing.Timezone = timezone
		}
		existing.IsActive = true
		existing.UpdatedAt = time.Now()
		if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	row := models.GuestDevice{
		ID:            uuid.New().String(),
		DeviceID:      deviceID,
		FirebaseToken: firebaseToken,
		Timezone:      timezone,
		IsActive:      true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ByDeviceID returns nil, nil when the device is unknown; absence is an
// expected condition for the guest send path, not an error.
func (r *GormGuestDeviceRepo) ByDeviceID(ctx context.Context, deviceID string) (*models.GuestDevice, error) {
	var row models.GuestDevice
	err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *GormGuestDeviceRepo) Deactivate(ctx context.Context, deviceID string) error {
	return r.db.WithContext(ctx).
		Model(&models.GuestDevice{}).
		Where("device_id = ?", deviceID).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now()}).Error
}
