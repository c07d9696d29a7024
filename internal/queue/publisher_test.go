package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisPublisher_Publish(t *testing.T) {
	rdb := newTestRedis(t)
	p := NewPublisher(rdb)
	ctx := context.Background()

	msgID, err := p.Publish(ctx, StreamActivity, NewUserFollowedEvent(1, 2))
	require.NoError(t, err)
	assert.NotEmpty(t, msgID)

	msgs, err := rdb.XRange(ctx, StreamActivity, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, EventUserFollowed, msgs[0].Values["type"])

	event, err := ParseActivityEvent(msgs[0].Values)
	require.NoError(t, err)
	assert.Equal(t, int64(1), event.UserID)
	assert.Equal(t, int64(2), event.TargetUserID)
}

func TestPublishBestEffort(t *testing.T) {
	t.Run("nil publisher is a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() {
			PublishBestEffort(context.Background(), nil, NewReplyAddedEvent(1, 2, 3))
		})
	})

	t.Run("errors are swallowed", func(t *testing.T) {
		p := &failingPublisher{}
		PublishBestEffort(context.Background(), p, NewPublicationCreatedEvent(1, 2))
		assert.Equal(t, 1, p.calls)
	})
}

func TestParseActivityEvent_MissingData(t *testing.T) {
	_, err := ParseActivityEvent(map[string]interface{}{"type": EventReplyAdded})
	assert.Error(t, err)
}

type failingPublisher struct {
	calls int
}

func (f *failingPublisher) Publish(ctx context.Context, stream string, event ActivityEvent) (string, error) {
	f.calls++
	return "", errors.New("redis down")
}
