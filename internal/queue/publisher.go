package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Publisher appends events to a stream.
type Publisher interface {
	// Publish returns the message ID assigned by Redis.
	Publish(ctx context.Context, stream string, event ActivityEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
	maxLen int64
	log    *logrus.Entry
}

// DefaultStreamMaxLen caps the activity stream; older entries are trimmed approximately.
const DefaultStreamMaxLen = 100000

func NewPublisher(client *redis.Client) Publisher {
	return &RedisPublisher{
		client: client,
		maxLen: DefaultStreamMaxLen,
		log:    logrus.WithField("component", "publisher"),
	}
}

// Publish adds the event with XADD using an auto-generated ID.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event ActivityEvent) (string, error) {
	start := time.Now()

	values, err := event.ToMap()
	if err != nil {
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"stream":   stream,
		"type":     event.Type,
		"msg_id":   messageID,
		"duration": time.Since(start).String(),
	}).Debug("Event published")

	return messageID, nil
}

// PublishBestEffort publishes when p is non-nil and only logs failures.
// The primary write has already committed, so the caller never sees the error.
func PublishBestEffort(ctx context.Context, p Publisher, event ActivityEvent) {
	if p == nil {
		return
	}
	if _, err := p.Publish(ctx, StreamActivity, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"component": "publisher",
			"type":      event.Type,
			"user_id":   event.UserID,
		}).Warn("Failed to publish activity event")
	}
}
