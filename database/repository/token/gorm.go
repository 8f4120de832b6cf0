package tokenRepo

import (
	"context"
	"errors"
	"time"

	"remindly/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidTokenFormat is returned by Save before any lookup or write when
// the token fails format validation; malformed tokens never reach storage.
var ErrInvalidTokenFormat = errors.New("invalid token format")

// TokenChecker decides whether a token string is acceptable for the push
// provider before it is persisted.
type TokenChecker interface {
	WellFormed(token string) bool
}

// GormDeviceTokenRepo implements DeviceTokenRepository on a relational store.
type GormDeviceTokenRepo struct {
	db      *gorm.DB
	checker TokenChecker
}

// NewGormDeviceTokenRepo creates a new DeviceTokenRepository instance.
func NewGormDeviceTokenRepo(db *gorm.DB, checker TokenChecker) *GormDeviceTokenRepo {
	return &GormDeviceTokenRepo{db: db, checker: checker}
}

func (r *GormDeviceTokenRepo) Save(ctx context.Context, userID, token string, deviceType models.DeviceType) (*models.DeviceToken, error) {
	if r.checker != nil && !r.checker.WellFormed(token) {
		return nil, ErrInvalidTokenFormat
	}

	// Providers treat the token opaquely but clients re-send it with varying
	// casing; the existence match is case-insensitive so a casing change
	// reactivates instead of duplicating.
	var existing models.DeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(token) = LOWER(?)", userID, token).
		First(&existing).Error
	if err == nil {
		existing.IsActive = true
		existing.Token = token
		existing.DeviceType = deviceType
		existing.UpdatedAt = time.Now()
		if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	row := models.DeviceToken{
		ID:         uuid.New().String(),
		UserID:     userID,
		Token:      token,
		DeviceType: deviceType,
		IsActive:   true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Deactivate flips every row holding the token to inactive. A token the
// provider reports dead cannot belong to a live session for any owner, so the
// deactivation is global. Already-inactive rows make this a no-op success.
func (r *GormDeviceTokenRepo) Deactivate(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Model(&models.DeviceToken{}).
		Where("token = ?", token).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now()}).Error
}

func (r *GormDeviceTokenRepo) DeactivateForUser(ctx context.Context, userID, token string) error {
	return r.db.WithContext(ctx).
		Model(&models.DeviceToken{}).
		Where("user_id = ? AND token = ?", userID, token).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now()}).Error
}

func (r *GormDeviceTokenRepo) ActiveForUser(ctx context.Context, userID string) ([]models.DeviceToken, error) {
	var rows []models.DeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ActiveForUsers returns active rows for a batch of users in one query. An
// empty input returns an empty list without querying, so a caller bug never
// turns into a match-everything scan.
func (r *GormDeviceTokenRepo) ActiveForUsers(ctx context.Context, userIDs []string) ([]models.DeviceToken, error) {
	if len(userIDs) == 0 {
		return []models.DeviceToken{}, nil
	}
	var rows []models.DeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id IN ? AND is_active = ?", userIDs, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormDeviceTokenRepo) AllActive(ctx context.Context) ([]models.DeviceToken, error) {
	var rows []models.DeviceToken
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
