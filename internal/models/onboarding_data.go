package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// OnboardingData is the statically shaped draft payload collected by the
// multi-step form. Slices keep the order the client submitted them in.
type OnboardingData struct {
	FullName    string           `json:"full_name"`
	Email       string           `json:"email"`
	Summary     string           `json:"summary"`
	Skills      []SkillEntry     `json:"skills"`
	Experiences []WorkEntry      `json:"experiences"`
	Educations  []EducationEntry `json:"educations"`
}

type SkillEntry struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

type WorkEntry struct {
	Company     string     `json:"company"`
	Role        string     `json:"role"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"` // nil = current job
}

type EducationEntry struct {
	Institution    string     `json:"institution"`
	Degree         string     `json:"degree"`
	StartDate      time.Time  `json:"start_date"`
	GraduationDate *time.Time `json:"graduation_date,omitempty"` // nil = still studying
}

// DecodeDraftData reads a draft payload column. Drafts written before the
// typed-document migration stored the form as a flat JSON-encoded string
// inside the column; those are unwrapped and parsed into the structured
// form so no data is lost. The upgrade is one-way: callers re-encode with
// EncodeDraftData and the string form is never written again.
func DecodeDraftData(raw datatypes.JSON) (OnboardingData, error) {
	var data OnboardingData

	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return data, nil
	}

	if trimmed[0] == '"' {
		// legacy flat-string row
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return data, err
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			return data, nil
		}
		trimmed = []byte(inner)
	}

	if err := json.Unmarshal(trimmed, &data); err != nil {
		return data, err
	}
	return data, nil
}

// IsLegacyDraftData reports whether the column still holds the old
// string-encoded representation.
func IsLegacyDraftData(raw datatypes.JSON) bool {
	trimmed := bytes.TrimSpace([]byte(raw))
	return len(trimmed) > 0 && trimmed[0] == '"'
}

func EncodeDraftData(data OnboardingData) (datatypes.JSON, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
