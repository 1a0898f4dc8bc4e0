package model

import "time"

// Notification type constants
const (
	NotifTypeMealReminder = "meal_reminder"
)

type PushSubscription struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	Endpoint  string    `json:"endpoint"`
	P256dhKey string    `json:"p256dh_key"`
	AuthKey   string    `json:"auth_key"`
	CreatedAt time.Time `json:"created_at"`
}
