package models

// Reminder target kinds.
const (
	ReminderTargetUser  = "user"
	ReminderTargetGuest = "guest"
)

// ReminderPayload is the body of a scheduled reminder task.
type ReminderPayload struct {
	Target     string `json:"target"`
	ID         string `json:"id"`
	ReminderID string `json:"reminderId"`
	EventID    string `json:"eventId,omitempty"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	FireDate   string `json:"fireDate"`
}
