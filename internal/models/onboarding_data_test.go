package models

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestDecodeDraftDataStructured(t *testing.T) {
	raw := datatypes.JSON(`{
		"full_name": "Ada Lovelace",
		"email": "ada@example.com",
		"summary": "Pioneer",
		"skills": [{"name": "Mathematics", "level": "advanced"}, {"name": "Go"}],
		"experiences": [{"company": "Babbage & Co", "role": "Engineer", "description": "Engines", "start_date": "2019-03-01T00:00:00Z"}],
		"educations": [{"institution": "University of London", "degree": "Mathematics", "start_date": "2015-09-01T00:00:00Z"}]
	}`)

	data, err := DecodeDraftData(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.FullName != "Ada Lovelace" {
		t.Fatalf("full name = %q", data.FullName)
	}
	if len(data.Skills) != 2 || data.Skills[0].Name != "Mathematics" || data.Skills[1].Level != "" {
		t.Fatalf("skills mismatch: %+v", data.Skills)
	}
	if len(data.Experiences) != 1 || data.Experiences[0].EndDate != nil {
		t.Fatalf("experiences mismatch: %+v", data.Experiences)
	}
	want := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	if !data.Experiences[0].StartDate.Equal(want) {
		t.Fatalf("start date = %v", data.Experiences[0].StartDate)
	}
}

func TestDecodeDraftDataLegacyString(t *testing.T) {
	// pre-migration rows stored the payload as a JSON-encoded string
	legacy := datatypes.JSON(`"{\"full_name\": \"Grace Hopper\", \"skills\": [{\"name\": \"COBOL\"}]}"`)

	if !IsLegacyDraftData(legacy) {
		t.Fatal("expected legacy form to be detected")
	}

	data, err := DecodeDraftData(legacy)
	if err != nil {
		t.Fatalf("decode legacy: %v", err)
	}
	if data.FullName != "Grace Hopper" {
		t.Fatalf("full name = %q", data.FullName)
	}
	if len(data.Skills) != 1 || data.Skills[0].Name != "COBOL" {
		t.Fatalf("skills mismatch: %+v", data.Skills)
	}

	// the upgraded form round-trips as a structured document
	upgraded, err := EncodeDraftData(data)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if IsLegacyDraftData(upgraded) {
		t.Fatal("re-encoded payload must not be the string form")
	}
	again, err := DecodeDraftData(upgraded)
	if err != nil {
		t.Fatalf("decode upgraded: %v", err)
	}
	if again.FullName != data.FullName || len(again.Skills) != len(data.Skills) {
		t.Fatal("upgrade lost data")
	}
}

func TestDecodeDraftDataEmpty(t *testing.T) {
	for _, raw := range []datatypes.JSON{nil, datatypes.JSON(``), datatypes.JSON(`null`), datatypes.JSON(`""`)} {
		data, err := DecodeDraftData(raw)
		if err != nil {
			t.Fatalf("decode %q: %v", raw, err)
		}
		if data.FullName != "" || len(data.Skills) != 0 {
			t.Fatalf("expected zero value for %q, got %+v", raw, data)
		}
	}
}

func TestEncodeDraftDataPreservesOrder(t *testing.T) {
	data := OnboardingData{
		FullName: "Ada Lovelace",
		Skills:   []SkillEntry{{Name: "C"}, {Name: "B"}, {Name: "A"}},
	}

	encoded, err := EncodeDraftData(data)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeDraftData(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i, name := range []string{"C", "B", "A"} {
		if decoded.Skills[i].Name != name {
			t.Fatalf("skill %d = %q, want %q", i, decoded.Skills[i].Name, name)
		}
	}
}
