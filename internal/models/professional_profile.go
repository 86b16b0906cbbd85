package models

import (
	"time"

	"github.com/google/uuid"
)

// ProfessionalProfile is the normalized record materialized from a
// completed onboarding draft. Created exactly once per user (unique
// index on user_id); the children are exclusively owned and removed in
// cascade with the parent.
type ProfessionalProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	FullName string `gorm:"type:varchar(200);not null" json:"full_name"`
	Summary  string `gorm:"type:varchar(1000)" json:"summary"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Experiences []WorkExperience `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"experiences"`
	Educations  []Education      `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"educations"`
	Skills      []ProfileSkill   `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"skills"`
}

// Position preserves the order entries were submitted in; child tables
// have no other ordering key.

type WorkExperience struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;index;not null" json:"profile_id"`

	Company     string     `gorm:"type:varchar(200);not null" json:"company"`
	Role        string     `gorm:"type:varchar(200);not null" json:"role"`
	Description string     `gorm:"type:text" json:"description"`
	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`

	Position int `gorm:"not null;default:0" json:"position"`
}

type Education struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;index;not null" json:"profile_id"`

	Institution    string     `gorm:"type:varchar(200);not null" json:"institution"`
	Degree         string     `gorm:"type:varchar(200);not null" json:"degree"`
	StartDate      time.Time  `gorm:"not null" json:"start_date"`
	GraduationDate *time.Time `json:"graduation_date,omitempty"`

	Position int `gorm:"not null;default:0" json:"position"`
}

type ProfileSkill struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;index;not null" json:"profile_id"`

	Name  string `gorm:"type:varchar(120);not null" json:"name"`
	Level string `gorm:"type:varchar(30)" json:"level,omitempty"`

	Position int `gorm:"not null;default:0" json:"position"`
}
