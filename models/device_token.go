// File: remindly/models/device_token.go
package models

import "time"

// DeviceType is the platform a push token was issued for.
type DeviceType string

const (
	DeviceTypeIOS     DeviceType = "ios"
	DeviceTypeAndroid DeviceType = "android"
	DeviceTypeWeb     DeviceType = "web"
)

// DeviceToken is one registered push token for a user. Rows are deactivated
// when the provider reports the token dead or the client signs out; they are
// never hard-deleted here.
type DeviceToken struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	UserID     string     `gorm:"index:idx_user_token;size:36;not null" json:"userId"`
	Token      string     `gorm:"index:idx_user_token;index;size:255;not null" json:"token"`
	DeviceType DeviceType `gorm:"size:16" json:"deviceType"`
	IsActive   bool       `gorm:"default:true" json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// GuestDevice is an unauthenticated device tracked by its client-generated
// fingerprint. Fields are updated in place; rows are never deleted automatically.
type GuestDevice struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	DeviceID      string    `gorm:"uniqueIndex;size:128;not null" json:"deviceId"`
	FirebaseToken string    `gorm:"size:255" json:"firebaseToken,omitempty"`
	Timezone      string    `gorm:"size:64" json:"timezone,omitempty"`
	IsActive      bool      `gorm:"default:true" json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
