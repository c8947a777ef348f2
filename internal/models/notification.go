package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is an immutable record produced when an alert fires or on
// certain account events. Only the Read flag changes after creation.
// HoldingID is nil for account-level notifications, which are exempt from
// the per-holding dedup window.
type Notification struct {
	NotificationID uuid.UUID  `gorm:"column:notification_id;type:uuid;primaryKey" json:"notification_id"`
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	HoldingID      *uuid.UUID `gorm:"column:holding_id;type:uuid;index" json:"holding_id"`
	Message        string     `gorm:"column:message;not null" json:"message"`
	Read           bool       `gorm:"column:read;not null;default:false" json:"read"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate sets the UUID when not set.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.NotificationID == uuid.Nil {
		n.NotificationID = uuid.New()
	}
	return nil
}
