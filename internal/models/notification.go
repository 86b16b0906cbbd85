package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationCategory drives the dispatcher's collapse-vs-append
// behavior. Progress events update a single live row per user; all
// other categories append freely.
type NotificationCategory string

const (
	CategoryProgress  NotificationCategory = "progress"
	CategoryCompleted NotificationCategory = "completed"
	CategoryAdhoc     NotificationCategory = "adhoc"
)

type NotificationType string

const (
	TypeInfo    NotificationType = "info"
	TypeSuccess NotificationType = "success"
	TypeWarning NotificationType = "warning"
	TypeError   NotificationType = "error"
)

type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`

	Category NotificationCategory `gorm:"type:varchar(20);not null;index" json:"category"`
	Title    string               `gorm:"type:varchar(200);not null" json:"title"`
	Message  string               `gorm:"type:text;not null" json:"message"`
	Type     NotificationType     `gorm:"type:varchar(10);not null" json:"type"`

	Read      bool      `gorm:"not null" json:"read"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`

	// Optional contextual payload (profile id, step number, ...).
	Data datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`
}
