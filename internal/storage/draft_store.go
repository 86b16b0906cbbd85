package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vertexhq/vertex-api/internal/models"
)

type GormDraftStore struct {
	db *gorm.DB
}

func NewDraftStore(db *gorm.DB) *GormDraftStore {
	return &GormDraftStore{db: db}
}

func (s *GormDraftStore) GetByUser(ctx context.Context, userID uuid.UUID) (*models.OnboardingDraft, error) {
	var draft models.OnboardingDraft
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.upgradeLegacyPayload(ctx, &draft)
	return &draft, nil
}

// upgradeLegacyPayload rewrites rows that still carry the old
// string-encoded payload into the structured jsonb form. Best effort: a
// failed rewrite keeps the row readable and is retried on the next read.
func (s *GormDraftStore) upgradeLegacyPayload(ctx context.Context, draft *models.OnboardingDraft) {
	if !models.IsLegacyDraftData(draft.Data) {
		return
	}

	data, err := models.DecodeDraftData(draft.Data)
	if err != nil {
		log.Printf("draft %s: cannot decode legacy payload: %v", draft.ID, err)
		return
	}
	encoded, err := models.EncodeDraftData(data)
	if err != nil {
		log.Printf("draft %s: cannot re-encode legacy payload: %v", draft.ID, err)
		return
	}

	if err := s.db.WithContext(ctx).Model(&models.OnboardingDraft{}).
		Where("id = ?", draft.ID).
		Update("data", encoded).Error; err != nil {
		log.Printf("draft %s: legacy payload upgrade failed: %v", draft.ID, err)
		return
	}
	draft.Data = encoded
}

func (s *GormDraftStore) Upsert(ctx context.Context, draft *models.OnboardingDraft) (*models.OnboardingDraft, error) {
	existing, err := s.GetByUser(ctx, draft.UserID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		return s.update(ctx, existing, draft)
	}

	fresh := &models.OnboardingDraft{
		ID:          uuid.New(),
		UserID:      draft.UserID,
		CurrentStep: draft.CurrentStep,
		Data:        draft.Data,
		IsCompleted: draft.IsCompleted,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(fresh).Error; err != nil {
		if isUniqueViolation(err) {
			// lost the first-save race; the other writer's row wins
			existing, lookupErr := s.GetByUser(ctx, draft.UserID)
			if lookupErr != nil {
				return nil, err
			}
			return s.update(ctx, existing, draft)
		}
		return nil, err
	}
	return fresh, nil
}

func (s *GormDraftStore) update(ctx context.Context, existing, incoming *models.OnboardingDraft) (*models.OnboardingDraft, error) {
	existing.CurrentStep = incoming.CurrentStep
	existing.Data = incoming.Data
	existing.IsCompleted = incoming.IsCompleted
	existing.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}
