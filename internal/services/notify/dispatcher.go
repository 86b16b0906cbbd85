package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/vertexhq/vertex-api/internal/models"
	"github.com/vertexhq/vertex-api/internal/storage"
)

// Reserved titles for the onboarding notification categories.
const (
	TitleProgress  = "Onboarding Progress"
	TitleCompleted = "Onboarding Completed"
)

// Event names pushed over the delivery channel.
const (
	EventProgress     = "OnboardingProgress"
	EventCompleted    = "OnboardingCompleted"
	EventNotification = "Notification"
	EventGroup        = "GroupNotification"
)

// DeliveryChannel is the realtime transport. Connection and group
// bookkeeping live behind it; pushes are best-effort.
type DeliveryChannel interface {
	SendToUser(userID uuid.UUID, event string, payload any) error
	SendToGroup(group string, event string, payload any) error
	SendToAll(event string, payload any) error
}

// Dispatcher decides whether an event becomes a new notification row or
// updates an existing one, persists it, and then pushes it to the
// recipient. Storage is the source of truth: a row is durably written
// before any push, and a failed push never rolls it back.
type Dispatcher struct {
	store   storage.NotificationStore
	channel DeliveryChannel
}

func NewDispatcher(store storage.NotificationStore, channel DeliveryChannel) *Dispatcher {
	return &Dispatcher{store: store, channel: channel}
}

// Emit persists a notification for userID and pushes it. Progress
// events collapse into the single latest row of that category for the
// user instead of appending, so rapid-fire saves don't flood the
// client; every other category appends a fresh row.
func (d *Dispatcher) Emit(ctx context.Context, userID uuid.UUID, category models.NotificationCategory, title, message string, typ models.NotificationType, data map[string]any) (*models.Notification, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("notify: user id is required")
	}

	payload, err := encodeData(data)
	if err != nil {
		return nil, fmt.Errorf("notify: encode data: %w", err)
	}

	n, err := d.persist(ctx, userID, category, title, message, typ, payload)
	if err != nil {
		return nil, err
	}

	d.push(userID, category, n)
	return n, nil
}

func (d *Dispatcher) persist(ctx context.Context, userID uuid.UUID, category models.NotificationCategory, title, message string, typ models.NotificationType, payload datatypes.JSON) (*models.Notification, error) {
	now := time.Now().UTC()

	if category == models.CategoryProgress {
		latest, err := d.store.LatestByCategory(ctx, userID, category)
		switch {
		case err == nil:
			// collapse: overwrite the live row, surface it as unread again
			latest.Title = title
			latest.Message = message
			latest.Type = typ
			latest.Data = payload
			latest.Read = false
			latest.Timestamp = now
			if err := d.store.Update(ctx, latest); err != nil {
				return nil, fmt.Errorf("notify: update progress notification: %w", err)
			}
			return latest, nil
		case !errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("notify: lookup progress notification: %w", err)
		}
	}

	n := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Category:  category,
		Title:     title,
		Message:   message,
		Type:      typ,
		Read:      false,
		Timestamp: now,
		Data:      payload,
	}
	if err := d.store.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("notify: create notification: %w", err)
	}
	return n, nil
}

func (d *Dispatcher) push(userID uuid.UUID, category models.NotificationCategory, n *models.Notification) {
	event := EventNotification
	switch category {
	case models.CategoryProgress:
		event = EventProgress
	case models.CategoryCompleted:
		event = EventCompleted
	}

	if err := d.channel.SendToUser(userID, event, n); err != nil {
		// delivery is not a correctness dependency; the client recovers
		// the row from storage on reconnect
		log.Printf("notify: push %s to user %s failed: %v", event, userID, err)
	}
}

// NotifyProgress records the user's latest onboarding step. Implements
// onboarding.Notifier; errors are logged, never propagated.
func (d *Dispatcher) NotifyProgress(ctx context.Context, userID uuid.UUID, step int) {
	_, err := d.Emit(ctx, userID, models.CategoryProgress, TitleProgress,
		fmt.Sprintf("You are on step %d of your profile setup.", step),
		models.TypeInfo,
		map[string]any{"current_step": step})
	if err != nil {
		log.Printf("notify: progress notification for %s: %v", userID, err)
	}
}

// NotifyCompleted records that the user's professional profile was
// created. Implements onboarding.Notifier.
func (d *Dispatcher) NotifyCompleted(ctx context.Context, userID uuid.UUID, profileID uuid.UUID) {
	_, err := d.Emit(ctx, userID, models.CategoryCompleted, TitleCompleted,
		"Your professional profile has been created.",
		models.TypeSuccess,
		map[string]any{"profile_id": profileID.String()})
	if err != nil {
		log.Printf("notify: completed notification for %s: %v", userID, err)
	}
}

// NotifyAll broadcasts a transient message to every connected client.
// Broadcasts are not tied to one user and skip persistence entirely.
func (d *Dispatcher) NotifyAll(message string) error {
	return d.channel.SendToAll(EventNotification, map[string]any{
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}

// NotifyGroup sends a transient message to a named group; like
// NotifyAll it is never persisted.
func (d *Dispatcher) NotifyGroup(group, message string) error {
	return d.channel.SendToGroup(group, EventGroup, map[string]any{
		"group":     group,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}

func encodeData(data map[string]any) (datatypes.JSON, error) {
	if data == nil {
		return nil, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
