package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vertexhq/vertex-api/internal/models"
)

// ErrNotFound is returned by lookups when no row matches. Store callers
// compare with errors.Is and never see gorm's sentinel directly.
var ErrNotFound = errors.New("record not found")

// DraftStore persists onboarding drafts, one row per user.
type DraftStore interface {
	// Upsert updates the existing draft for draft.UserID or inserts a
	// new one. The unique index on user_id is the authoritative guard:
	// a concurrent first save that loses the insert race is retried as
	// an update, so two rows can never exist for one user.
	Upsert(ctx context.Context, draft *models.OnboardingDraft) (*models.OnboardingDraft, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.OnboardingDraft, error)
}

// ProfileStore persists completed professional profiles.
type ProfileStore interface {
	// Create inserts the profile and all child rows; the insert is
	// atomic within the caller's transaction.
	Create(ctx context.Context, profile *models.ProfessionalProfile) error
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.ProfessionalProfile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProfessionalProfile, error)
}

// NotificationStore persists per-user notification rows.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	Update(ctx context.Context, n *models.Notification) error
	// LatestByCategory returns the most recent notification of the
	// given category for a user, or ErrNotFound.
	LatestByCategory(ctx context.Context, userID uuid.UUID, category models.NotificationCategory) (*models.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	ListUnread(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// TxStores exposes the stores bound to one transaction.
type TxStores interface {
	Drafts() DraftStore
	Profiles() ProfileStore
}

// UnitOfWork runs fn inside a single database transaction: every write
// made through the TxStores commits together or not at all.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx TxStores) error) error
}

// postgres unique violation
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "unique constraint")
}
