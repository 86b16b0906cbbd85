package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vertexhq/vertex-api/internal/models"
	"github.com/vertexhq/vertex-api/internal/storage"
)

// fakeStore keeps rows in insert order and records every operation in a
// shared call log, so tests can assert persistence happens before push.
type fakeStore struct {
	rows []*models.Notification
	log  *[]string
}

func (s *fakeStore) Create(_ context.Context, n *models.Notification) error {
	copied := *n
	s.rows = append(s.rows, &copied)
	*s.log = append(*s.log, "store.create")
	return nil
}

func (s *fakeStore) Update(_ context.Context, n *models.Notification) error {
	for i, row := range s.rows {
		if row.ID == n.ID {
			copied := *n
			s.rows[i] = &copied
			*s.log = append(*s.log, "store.update")
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeStore) LatestByCategory(_ context.Context, userID uuid.UUID, category models.NotificationCategory) (*models.Notification, error) {
	var latest *models.Notification
	for _, row := range s.rows {
		if row.UserID != userID || row.Category != category {
			continue
		}
		if latest == nil || row.Timestamp.After(latest.Timestamp) {
			latest = row
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (s *fakeStore) ListByUser(_ context.Context, userID uuid.UUID, _ int) ([]models.Notification, error) {
	var out []models.Notification
	for _, row := range s.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *fakeStore) ListUnread(_ context.Context, userID uuid.UUID) ([]models.Notification, error) {
	var out []models.Notification
	for _, row := range s.rows {
		if row.UserID == userID && !row.Read {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *fakeStore) UnreadCount(_ context.Context, userID uuid.UUID) (int64, error) {
	items, _ := s.ListUnread(context.Background(), userID)
	return int64(len(items)), nil
}

func (s *fakeStore) MarkRead(_ context.Context, id, userID uuid.UUID) (bool, error) {
	for _, row := range s.rows {
		if row.ID == id && row.UserID == userID {
			row.Read = true
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, row := range s.rows {
		if row.UserID == userID && !row.Read {
			row.Read = true
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	kept := s.rows[:0]
	var n int64
	for _, row := range s.rows {
		if row.Timestamp.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	s.rows = kept
	return n, nil
}

type pushedEvent struct {
	userID uuid.UUID
	group  string
	event  string
}

type fakeChannel struct {
	pushes []pushedEvent
	fail   error
	log    *[]string
}

func (c *fakeChannel) SendToUser(userID uuid.UUID, event string, _ any) error {
	*c.log = append(*c.log, "push")
	if c.fail != nil {
		return c.fail
	}
	c.pushes = append(c.pushes, pushedEvent{userID: userID, event: event})
	return nil
}

func (c *fakeChannel) SendToGroup(group string, event string, _ any) error {
	*c.log = append(*c.log, "push")
	if c.fail != nil {
		return c.fail
	}
	c.pushes = append(c.pushes, pushedEvent{group: group, event: event})
	return nil
}

func (c *fakeChannel) SendToAll(event string, _ any) error {
	*c.log = append(*c.log, "push")
	if c.fail != nil {
		return c.fail
	}
	c.pushes = append(c.pushes, pushedEvent{event: event})
	return nil
}

func newDispatcherFixture() (*Dispatcher, *fakeStore, *fakeChannel) {
	log := []string{}
	store := &fakeStore{log: &log}
	channel := &fakeChannel{log: &log}
	return NewDispatcher(store, channel), store, channel
}

func TestProgressNotificationsCollapse(t *testing.T) {
	d, store, channel := newDispatcherFixture()
	userID := uuid.New()
	ctx := context.Background()

	first, err := d.Emit(ctx, userID, models.CategoryProgress, TitleProgress, "step 1", models.TypeInfo, nil)
	if err != nil {
		t.Fatalf("first emit: %v", err)
	}
	second, err := d.Emit(ctx, userID, models.CategoryProgress, TitleProgress, "step 2", models.TypeInfo, nil)
	if err != nil {
		t.Fatalf("second emit: %v", err)
	}

	if len(store.rows) != 1 {
		t.Fatalf("expected one stored row, got %d", len(store.rows))
	}
	if second.ID != first.ID {
		t.Fatal("second progress event should update the first row, not append")
	}
	if store.rows[0].Message != "step 2" {
		t.Fatalf("expected collapsed message %q, got %q", "step 2", store.rows[0].Message)
	}
	if !store.rows[0].Timestamp.After(first.Timestamp) && !store.rows[0].Timestamp.Equal(first.Timestamp) {
		t.Fatal("collapsed row should carry the second emission's timestamp")
	}

	if len(channel.pushes) != 2 {
		t.Fatalf("every emission should be pushed, got %d pushes", len(channel.pushes))
	}
	if channel.pushes[0].event != EventProgress || channel.pushes[0].userID != userID {
		t.Fatalf("unexpected push %+v", channel.pushes[0])
	}
}

func TestProgressCollapseResetsRead(t *testing.T) {
	d, store, _ := newDispatcherFixture()
	userID := uuid.New()
	ctx := context.Background()

	n, err := d.Emit(ctx, userID, models.CategoryProgress, TitleProgress, "step 1", models.TypeInfo, nil)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if _, err := store.MarkRead(ctx, n.ID, userID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	if _, err := d.Emit(ctx, userID, models.CategoryProgress, TitleProgress, "step 2", models.TypeInfo, nil); err != nil {
		t.Fatalf("second emit: %v", err)
	}

	if store.rows[0].Read {
		t.Fatal("collapsing must surface the row as unread again")
	}
}

func TestCompletedNotificationsAppend(t *testing.T) {
	d, store, channel := newDispatcherFixture()
	userID := uuid.New()
	ctx := context.Background()

	if _, err := d.Emit(ctx, userID, models.CategoryProgress, TitleProgress, "step 4", models.TypeInfo, nil); err != nil {
		t.Fatalf("progress emit: %v", err)
	}
	if _, err := d.Emit(ctx, userID, models.CategoryCompleted, TitleCompleted, "done", models.TypeSuccess,
		map[string]any{"profile_id": uuid.New().String()}); err != nil {
		t.Fatalf("completed emit: %v", err)
	}
	if _, err := d.Emit(ctx, userID, models.CategoryCompleted, TitleCompleted, "done again", models.TypeSuccess, nil); err != nil {
		t.Fatalf("second completed emit: %v", err)
	}

	// progress row plus two appended completed rows
	if len(store.rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(store.rows))
	}

	last := channel.pushes[len(channel.pushes)-1]
	if last.event != EventCompleted {
		t.Fatalf("expected %s push, got %s", EventCompleted, last.event)
	}
}

func TestPersistenceHappensBeforePush(t *testing.T) {
	d, store, _ := newDispatcherFixture()

	if _, err := d.Emit(context.Background(), uuid.New(), models.CategoryAdhoc, "Hello", "hi", models.TypeInfo, nil); err != nil {
		t.Fatalf("emit: %v", err)
	}

	log := *store.log
	if len(log) != 2 || log[0] != "store.create" || log[1] != "push" {
		t.Fatalf("expected store write before push, got %v", log)
	}
}

func TestPushFailureDoesNotFailEmit(t *testing.T) {
	d, store, channel := newDispatcherFixture()
	channel.fail = errors.New("socket closed")

	n, err := d.Emit(context.Background(), uuid.New(), models.CategoryAdhoc, "Hello", "hi", models.TypeInfo, nil)
	if err != nil {
		t.Fatalf("emit must swallow push failures, got %v", err)
	}
	if n == nil || len(store.rows) != 1 {
		t.Fatal("row must stay persisted when the push fails")
	}
}

func TestBroadcastsSkipPersistence(t *testing.T) {
	d, store, channel := newDispatcherFixture()

	if err := d.NotifyAll("maintenance at noon"); err != nil {
		t.Fatalf("notify all: %v", err)
	}
	if err := d.NotifyGroup("beta-testers", "new build"); err != nil {
		t.Fatalf("notify group: %v", err)
	}

	if len(store.rows) != 0 {
		t.Fatalf("broadcasts must not be persisted, got %d rows", len(store.rows))
	}
	if len(channel.pushes) != 2 {
		t.Fatalf("expected 2 pushes, got %d", len(channel.pushes))
	}
	if channel.pushes[1].group != "beta-testers" || channel.pushes[1].event != EventGroup {
		t.Fatalf("unexpected group push %+v", channel.pushes[1])
	}
}

func TestNotifierHelpersCarryContextData(t *testing.T) {
	d, store, _ := newDispatcherFixture()
	userID := uuid.New()
	profileID := uuid.New()

	d.NotifyProgress(context.Background(), userID, 3)
	d.NotifyCompleted(context.Background(), userID, profileID)

	if len(store.rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(store.rows))
	}
	if store.rows[0].Category != models.CategoryProgress || store.rows[0].Type != models.TypeInfo {
		t.Fatalf("unexpected progress row %+v", store.rows[0])
	}
	if store.rows[1].Category != models.CategoryCompleted || store.rows[1].Type != models.TypeSuccess {
		t.Fatalf("unexpected completed row %+v", store.rows[1])
	}
	if len(store.rows[1].Data) == 0 {
		t.Fatal("completed notification should carry the profile id payload")
	}
}
