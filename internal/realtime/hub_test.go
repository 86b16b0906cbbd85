package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestClient(userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Send:   make(chan []byte, 4),
		groups: make(map[string]struct{}),
	}
}

func waitForClient(t *testing.T, h *Hub, clientID string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		_, ok := h.clients[clientID]
		h.mu.RUnlock()
		if ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client %s never registered", clientID)
}

func recvEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case raw := <-c.Send:
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatalf("bad envelope: %v", err)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
	return Event{}
}

func TestHubSendToUserTargetsOwnConnectionsOnly(t *testing.T) {
	h := NewHub()
	go h.Run()

	alice := uuid.New()
	bob := uuid.New()
	aliceConn := newTestClient(alice)
	bobConn := newTestClient(bob)
	h.RegisterClient(aliceConn)
	h.RegisterClient(bobConn)
	waitForClient(t, h, aliceConn.ID)
	waitForClient(t, h, bobConn.ID)

	if err := h.SendToUser(alice, "Notification", map[string]any{"title": "hello"}); err != nil {
		t.Fatalf("SendToUser: %v", err)
	}

	ev := recvEvent(t, aliceConn)
	if ev.Event != "Notification" {
		t.Fatalf("event = %q", ev.Event)
	}
	select {
	case raw := <-bobConn.Send:
		t.Fatalf("bob received %s", raw)
	default:
	}
}

func TestHubGroupMembership(t *testing.T) {
	h := NewHub()
	go h.Run()

	member := newTestClient(uuid.New())
	outsider := newTestClient(uuid.New())
	h.RegisterClient(member)
	h.RegisterClient(outsider)
	waitForClient(t, h, member.ID)
	waitForClient(t, h, outsider.ID)

	h.JoinGroup(member.ID, "announcements")
	if err := h.SendToGroup("announcements", "GroupNotification", "maintenance tonight"); err != nil {
		t.Fatalf("SendToGroup: %v", err)
	}

	ev := recvEvent(t, member)
	if ev.Event != "GroupNotification" {
		t.Fatalf("event = %q", ev.Event)
	}
	select {
	case raw := <-outsider.Send:
		t.Fatalf("outsider received %s", raw)
	default:
	}

	h.LeaveGroup(member.ID, "announcements")
	if err := h.SendToGroup("announcements", "GroupNotification", "again"); err != nil {
		t.Fatalf("SendToGroup: %v", err)
	}
	select {
	case raw := <-member.Send:
		t.Fatalf("member received %s after leaving", raw)
	default:
	}
}

func TestHubFullBufferNeverBlocksSender(t *testing.T) {
	h := NewHub()
	go h.Run()

	userID := uuid.New()
	stuck := newTestClient(userID)
	stuck.Send = make(chan []byte) // unbuffered, nobody reading
	h.RegisterClient(stuck)
	waitForClient(t, h, stuck.ID)

	done := make(chan struct{})
	go func() {
		_ = h.SendToUser(userID, "Notification", "dropped")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SendToUser blocked on a slow client")
	}
}
