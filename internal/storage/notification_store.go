package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vertexhq/vertex-api/internal/models"
)

type GormNotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *GormNotificationStore {
	return &GormNotificationStore{db: db}
}

func (s *GormNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *GormNotificationStore) Update(ctx context.Context, n *models.Notification) error {
	return s.db.WithContext(ctx).Save(n).Error
}

func (s *GormNotificationStore) LatestByCategory(ctx context.Context, userID uuid.UUID, category models.NotificationCategory) (*models.Notification, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND category = ?", userID, category).
		Order("timestamp DESC").
		First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *GormNotificationStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (s *GormNotificationStore) ListUnread(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	var out []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND read = false", userID).
		Order("timestamp DESC").
		Find(&out).Error
	return out, err
}

func (s *GormNotificationStore) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Count(&count).Error
	return count, err
}

// MarkRead flips one notification; the user scope keeps one user from
// touching another's rows. Returns false when nothing matched.
func (s *GormNotificationStore) MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *GormNotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Update("read", true)
	return result.RowsAffected, result.Error
}

// DeleteOlderThan prunes stale rows; meant for a periodic cleanup job.
func (s *GormNotificationStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
