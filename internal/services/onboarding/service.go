package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vertexhq/vertex-api/internal/models"
	"github.com/vertexhq/vertex-api/internal/storage"
)

// Notifier is the dispatcher surface the orchestrator needs. Both
// calls are best-effort: implementations must never fail the business
// operation that triggered them.
type Notifier interface {
	NotifyProgress(ctx context.Context, userID uuid.UUID, step int)
	NotifyCompleted(ctx context.Context, userID uuid.UUID, profileID uuid.UUID)
}

// Service owns the onboarding state machine:
//
//	[no draft] --SaveProgress--> [draft] --SaveProgress--> [draft]
//	[draft] --Complete (ok)--> [completed]  (terminal)
//	[draft] --Complete (validation fails)--> [draft]  (unchanged)
//	[completed] --Complete--> rejected
type Service struct {
	drafts   storage.DraftStore
	profiles storage.ProfileStore
	uow      storage.UnitOfWork
	notifier Notifier
}

func NewService(drafts storage.DraftStore, profiles storage.ProfileStore, uow storage.UnitOfWork, notifier Notifier) *Service {
	return &Service{drafts: drafts, profiles: profiles, uow: uow, notifier: notifier}
}

// DraftSnapshot is what callers see of a draft: the stored fields
// verbatim, with the payload decoded into its structured form.
type DraftSnapshot struct {
	CurrentStep int                   `json:"current_step"`
	Data        models.OnboardingData `json:"data"`
	IsCompleted bool                  `json:"is_completed"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// SaveProgress upserts the single draft row for the user and emits a
// progress notification. Saving is always allowed, even when the step
// number goes backwards; ordering beyond step >= 1 is a client concern.
func (s *Service) SaveProgress(ctx context.Context, userID uuid.UUID, step int, data models.OnboardingData, isCompleted bool) (*DraftSnapshot, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if step < 1 {
		return nil, fmt.Errorf("%w: current step must be >= 1", ErrInvalidInput)
	}

	encoded, err := models.EncodeDraftData(data)
	if err != nil {
		return nil, fmt.Errorf("%w: encode draft data: %v", ErrInvalidInput, err)
	}

	saved, err := s.drafts.Upsert(ctx, &models.OnboardingDraft{
		UserID:      userID,
		CurrentStep: step,
		Data:        encoded,
		IsCompleted: isCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: save draft: %v", ErrPersistence, err)
	}

	s.notifier.NotifyProgress(ctx, userID, saved.CurrentStep)

	return &DraftSnapshot{
		CurrentStep: saved.CurrentStep,
		Data:        data,
		IsCompleted: saved.IsCompleted,
		UpdatedAt:   saved.UpdatedAt,
	}, nil
}

// GetProgress returns the stored draft verbatim, or ErrNotFound.
func (s *Service) GetProgress(ctx context.Context, userID uuid.UUID) (*DraftSnapshot, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	draft, err := s.drafts.GetByUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load draft: %v", ErrPersistence, err)
	}

	data, err := draft.Payload()
	if err != nil {
		return nil, fmt.Errorf("%w: decode draft data: %v", ErrPersistence, err)
	}

	return &DraftSnapshot{
		CurrentStep: draft.CurrentStep,
		Data:        data,
		IsCompleted: draft.IsCompleted,
		UpdatedAt:   draft.UpdatedAt,
	}, nil
}

// CompleteOnboarding converts the accumulated draft into a normalized
// professional profile. The profile insert and the draft flag flip
// commit as one transaction; on any failure the draft stays in its
// pre-completion state, so the call is safely retryable.
func (s *Service) CompleteOnboarding(ctx context.Context, userID uuid.UUID) (*models.ProfessionalProfile, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	draft, err := s.drafts.GetByUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load draft: %v", ErrPersistence, err)
	}

	if draft.IsCompleted {
		// completion cannot be replayed
		return nil, ErrAlreadyCompleted
	}

	data, err := draft.Payload()
	if err != nil {
		return nil, fmt.Errorf("%w: decode draft data: %v", ErrPersistence, err)
	}
	if strings.TrimSpace(data.FullName) == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrValidationFailed)
	}

	// guards against a profile created out-of-band; the unique index on
	// user_id remains the authoritative defense
	if _, err := s.profiles.GetByUser(ctx, userID); err == nil {
		return nil, ErrDuplicateProfile
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: check existing profile: %v", ErrPersistence, err)
	}

	profile := buildProfile(userID, data)

	err = s.uow.Do(ctx, func(tx storage.TxStores) error {
		if err := tx.Profiles().Create(ctx, profile); err != nil {
			return err
		}
		draft.IsCompleted = true
		_, err := tx.Drafts().Upsert(ctx, draft)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: complete onboarding: %v", ErrPersistence, err)
	}

	s.notifier.NotifyCompleted(ctx, userID, profile.ID)

	return profile, nil
}

// buildProfile maps the draft payload into the owned child collections,
// copying every field and keeping submission order.
func buildProfile(userID uuid.UUID, data models.OnboardingData) *models.ProfessionalProfile {
	now := time.Now().UTC()
	profile := &models.ProfessionalProfile{
		ID:        uuid.New(),
		UserID:    userID,
		FullName:  data.FullName,
		Summary:   data.Summary,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for i, exp := range data.Experiences {
		profile.Experiences = append(profile.Experiences, models.WorkExperience{
			Company:     exp.Company,
			Role:        exp.Role,
			Description: exp.Description,
			StartDate:   exp.StartDate,
			EndDate:     exp.EndDate,
			Position:    i,
		})
	}
	for i, edu := range data.Educations {
		profile.Educations = append(profile.Educations, models.Education{
			Institution:    edu.Institution,
			Degree:         edu.Degree,
			StartDate:      edu.StartDate,
			GraduationDate: edu.GraduationDate,
			Position:       i,
		})
	}
	for i, skill := range data.Skills {
		profile.Skills = append(profile.Skills, models.ProfileSkill{
			Name:     skill.Name,
			Level:    skill.Level,
			Position: i,
		})
	}

	return profile
}
