package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vertexhq/vertex-api/internal/models"
)

type GormProfileStore struct {
	db *gorm.DB
}

func NewProfileStore(db *gorm.DB) *GormProfileStore {
	return &GormProfileStore{db: db}
}

// Create inserts the profile with its experiences, educations and
// skills. gorm saves the associations in the same statement batch, so
// inside a transaction either everything lands or nothing does.
func (s *GormProfileStore) Create(ctx context.Context, profile *models.ProfessionalProfile) error {
	return s.db.WithContext(ctx).Create(profile).Error
}

func (s *GormProfileStore) GetByUser(ctx context.Context, userID uuid.UUID) (*models.ProfessionalProfile, error) {
	return s.first(ctx, "user_id = ?", userID)
}

func (s *GormProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ProfessionalProfile, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *GormProfileStore) first(ctx context.Context, query string, arg any) (*models.ProfessionalProfile, error) {
	var profile models.ProfessionalProfile
	err := s.db.WithContext(ctx).
		Preload("Experiences", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Educations", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Skills", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where(query, arg).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
