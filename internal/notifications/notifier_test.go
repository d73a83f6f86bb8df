package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestNilClientFailsOpen(t *testing.T) {
	n := NewNotifier(nil)
	ctx := context.Background()

	assert.NoError(t, n.PublishUser(ctx, 1, Event{Kind: EventNewPost}))
	assert.NoError(t, n.FanOut(ctx, []uint{1, 2}, Event{Kind: EventNewPost}))
	assert.NoError(t, n.PublishBroadcast(ctx, Event{Kind: EventNewPost}))
	assert.NoError(t, n.StartPatternSubscriber(ctx, nil))
}

func TestPublishUserDeliversEvent(t *testing.T) {
	rdb := setupRedis(t)
	n := NewNotifier(rdb)
	ctx := context.Background()

	sub := rdb.Subscribe(ctx, UserChannel(7))
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, n.PublishUser(ctx, 7, Event{
		Kind:    EventNewPost,
		ActorID: 3,
		PostID:  42,
	}))

	select {
	case msg := <-sub.Channel():
		var got Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, EventNewPost, got.Kind)
		assert.Equal(t, uint(3), got.ActorID)
		assert.Equal(t, uint(42), got.PostID)
		assert.NotEmpty(t, got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func TestFanOutReachesEveryRecipient(t *testing.T) {
	rdb := setupRedis(t)
	n := NewNotifier(rdb)
	ctx := context.Background()

	subA := rdb.Subscribe(ctx, UserChannel(1))
	subB := rdb.Subscribe(ctx, UserChannel(2))
	for _, s := range []*redis.PubSub{subA, subB} {
		_, err := s.Receive(ctx)
		require.NoError(t, err)
		defer s.Close()
	}

	require.NoError(t, n.FanOut(ctx, []uint{1, 2}, Event{Kind: EventFollowAccept, ActorID: 9}))

	var ids []string
	for _, s := range []*redis.PubSub{subA, subB} {
		select {
		case msg := <-s.Channel():
			var got Event
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
			assert.Equal(t, EventFollowAccept, got.Kind)
			ids = append(ids, got.ID)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for fan-out delivery")
		}
	}
	// Both recipients received the same logical event.
	require.Len(t, ids, 2)
	assert.Equal(t, ids[0], ids[1])
}

func TestUserChannel(t *testing.T) {
	assert.Equal(t, "notifications:user:15", UserChannel(15))
}
