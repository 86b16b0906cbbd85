package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OnboardingDraft holds the in-progress state of a user's multi-step
// profile form. One row per user (unique index on user_id); the row is
// mutated in place on every save and never deleted. Once IsCompleted
// flips to true the draft is terminal.
type OnboardingDraft struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	CurrentStep int `gorm:"not null;default:1" json:"current_step"` // >= 1, advisory

	// Structured form payload (jsonb). Legacy rows may still carry the
	// payload as a JSON-encoded string; see DecodeDraftData.
	Data datatypes.JSON `gorm:"type:jsonb" json:"data"`

	IsCompleted bool `gorm:"not null;default:false" json:"is_completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payload decodes the draft's data column, upgrading legacy rows.
func (d *OnboardingDraft) Payload() (OnboardingData, error) {
	return DecodeDraftData(d.Data)
}
