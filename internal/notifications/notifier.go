// Package notifications provides real-time notification delivery over Redis.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Event kinds published to user channels.
const (
	EventNewPost          = "new_post"
	EventFollowRequest    = "follow_request"
	EventFollowAccept     = "follow_accepted"
	EventCommunityCreated = "community_created"
)

// BroadcastChannel receives system-wide events every subscriber sees.
const BroadcastChannel = "notifications:broadcast"

// Event is the payload published to a user's notification channel.
// ID lets consumers deduplicate on redelivery.
type Event struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	ActorID     uint   `json:"actor_id"`
	PostID      uint   `json:"post_id,omitempty"`
	CommunityID uint   `json:"community_id,omitempty"`
}

// Notifier provides helpers to publish notifications into Redis channels.
// A nil Redis client disables delivery without failing the write path.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends an event to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, event Event) error {
	if n.rdb == nil {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// FanOut publishes the same event to every listed user. Delivery is
// best-effort; the first publish error is returned after all attempts.
func (n *Notifier) FanOut(ctx context.Context, userIDs []uint, event Event) error {
	if n.rdb == nil {
		return nil
	}
	// One ID for the whole fan-out: every recipient sees the same event.
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	var firstErr error
	for _, id := range userIDs {
		if err := n.PublishUser(ctx, id, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PublishBroadcast sends an event to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, event Event) error {
	if n.rdb == nil {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, BroadcastChannel, payload).Err()
}

// StartPatternSubscriber subscribes to every user channel plus the broadcast
// channel and calls onMessage for each incoming message.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "notifications:user:*", BroadcastChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}
