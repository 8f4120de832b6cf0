package models

import "time"

// Notification status values.
const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

// Notification is one entry in a recipient's feed. Exactly one of UserID or
// DeviceID is set, depending on whether the recipient is a registered user or
// a guest device.
type Notification struct {
	ID        string            `bson:"id" json:"id"`
	UserID    string            `bson:"userId,omitempty" json:"userId,omitempty"`
	DeviceID  string            `bson:"deviceId,omitempty" json:"deviceId,omitempty"`
	Type      string            `bson:"type" json:"type"`
	Title     string            `bson:"title" json:"title"`
	Body      string            `bson:"body" json:"body"`
	Data      map[string]string `bson:"data,omitempty" json:"data,omitempty"`
	Status    string            `bson:"status" json:"status"`
	EventID   string            `bson:"eventId,omitempty" json:"eventId,omitempty"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time         `bson:"expiresAt" json:"expiresAt"`
}

// Event is the minimal calendar-event document this subsystem touches: the
// parent record for an event-linked reminder notification.
type Event struct {
	ID             string    `bson:"id" json:"id"`
	OwnerID        string    `bson:"ownerId" json:"ownerId"`
	Title          string    `bson:"title" json:"title"`
	StartsAt       time.Time `bson:"startsAt" json:"startsAt"`
	ReminderSentAt time.Time `bson:"reminderSentAt,omitempty" json:"reminderSentAt,omitempty"`
}

// NotificationPayload is the outbound push content.
type NotificationPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// ListOptions controls feed pagination.
type ListOptions struct {
	Page   int
	Limit  int
	Status string
}
