package models

import "time"

// WebhookEvent records a delivered provider message by its svix id so that
// redeliveries are acknowledged without being applied twice. The body is not
// kept: it carries user details that must not outlive a user.deleted event.
type WebhookEvent struct {
	ID         string    `gorm:"primaryKey;size:255" json:"id"`
	Type       string    `gorm:"size:100;not null;index" json:"type"`
	ReceivedAt time.Time `gorm:"not null;index" json:"received_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
