package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis channel names. Events flow dispatcher -> redis -> every api
// instance's subscriber -> its local hub, so a push reaches clients no
// matter which instance they are connected to.
const (
	channelUserPrefix  = "notify:user:"
	channelGroupPrefix = "notify:group:"
	channelAll         = "notify:all"
	channelPattern     = "notify:*"
)

type bridgeMessage struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Bridge publishes delivery-channel events to Redis pub/sub. It is the
// DeliveryChannel handed to the dispatcher.
type Bridge struct {
	rdb *redis.Client
}

func NewBridge(rdb *redis.Client) *Bridge {
	return &Bridge{rdb: rdb}
}

func (b *Bridge) SendToUser(userID uuid.UUID, event string, payload any) error {
	return b.publish(channelUserPrefix+userID.String(), event, payload)
}

func (b *Bridge) SendToGroup(group string, event string, payload any) error {
	return b.publish(channelGroupPrefix+group, event, payload)
}

func (b *Bridge) SendToAll(event string, payload any) error {
	return b.publish(channelAll, event, payload)
}

func (b *Bridge) publish(channel, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("realtime: marshal payload: %w", err)
	}
	msg, err := json.Marshal(bridgeMessage{Event: event, Payload: raw})
	if err != nil {
		return fmt.Errorf("realtime: marshal envelope: %w", err)
	}
	if err := b.rdb.Publish(context.Background(), channel, msg).Err(); err != nil {
		return fmt.Errorf("realtime: publish %s: %w", channel, err)
	}
	return nil
}

// Subscribe relays Redis pub/sub events into the local hub. Runs until
// ctx is cancelled; meant to be started as a goroutine from main.
func Subscribe(ctx context.Context, rdb *redis.Client, hub *Hub) {
	sub := rdb.PSubscribe(ctx, channelPattern)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			relay(hub, msg)
		}
	}
}

func relay(hub *Hub, msg *redis.Message) {
	var bm bridgeMessage
	if err := json.Unmarshal([]byte(msg.Payload), &bm); err != nil {
		log.Printf("realtime: bad message on %s: %v", msg.Channel, err)
		return
	}

	switch {
	case strings.HasPrefix(msg.Channel, channelUserPrefix):
		raw := strings.TrimPrefix(msg.Channel, channelUserPrefix)
		userID, err := uuid.Parse(raw)
		if err != nil {
			log.Printf("realtime: bad user channel %s: %v", msg.Channel, err)
			return
		}
		_ = hub.SendToUser(userID, bm.Event, bm.Payload)
	case strings.HasPrefix(msg.Channel, channelGroupPrefix):
		group := strings.TrimPrefix(msg.Channel, channelGroupPrefix)
		_ = hub.SendToGroup(group, bm.Event, bm.Payload)
	case msg.Channel == channelAll:
		_ = hub.SendToAll(bm.Event, bm.Payload)
	}
}
