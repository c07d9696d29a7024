package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ConsumerGroupAudit is the group that reads the activity stream for the audit log.
const ConsumerGroupAudit = "activity-audit"

// ErrMalformedEvent marks a stream entry whose payload could not be parsed.
var ErrMalformedEvent = errors.New("malformed activity event")

// Message represents a message read from a Redis stream.
// Err is set when the entry could not be parsed; it still has to be acked.
type Message struct {
	ID    string // Redis message ID (e.g., "1702000000000-0")
	Event ActivityEvent
	Err   error
}

// Consumer reads events from a stream as part of a consumer group.
type Consumer interface {
	// EnsureGroup creates the consumer group (and the stream) if missing.
	EnsureGroup(ctx context.Context, stream, group string) error

	// Read returns new messages for this consumer, blocking up to block.
	Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error)

	// ReadPending returns messages delivered to this consumer but never acknowledged.
	ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error)

	Ack(ctx context.Context, stream, group string, messageIDs ...string) error
}

// RedisConsumer implements Consumer using Redis Streams.
type RedisConsumer struct {
	client *redis.Client
	log    *logrus.Entry
}

func NewConsumer(client *redis.Client) Consumer {
	return &RedisConsumer{
		client: client,
		log:    logrus.WithField("component", "consumer"),
	}
}

// EnsureGroup uses XGROUP CREATE ... MKSTREAM starting at "0".
func (c *RedisConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	err := c.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			return nil
		}
		return fmt.Errorf("create consumer group: %w", err)
	}

	c.log.WithFields(logrus.Fields{"stream": stream, "group": group}).Info("Consumer group created")
	return nil
}

// Read uses XREADGROUP with ">" so only undelivered messages are returned.
func (c *RedisConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error) {
	return c.read(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	})
}

// ReadPending uses XREADGROUP with "0" to replay this consumer's unacknowledged messages.
func (c *RedisConsumer) ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error) {
	return c.read(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, "0"},
		Count:    count,
	})
}

func (c *RedisConsumer) read(ctx context.Context, args *redis.XReadGroupArgs) ([]Message, error) {
	streams, err := c.client.XReadGroup(ctx, args).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}

	var messages []Message
	for _, s := range streams {
		for _, msg := range s.Messages {
			event, err := ParseActivityEvent(msg.Values)
			if err != nil {
				messages = append(messages, Message{ID: msg.ID, Err: fmt.Errorf("%w: %v", ErrMalformedEvent, err)})
				continue
			}
			messages = append(messages, Message{ID: msg.ID, Event: event})
		}
	}
	return messages, nil
}

// Ack acknowledges messages using XACK.
func (c *RedisConsumer) Ack(ctx context.Context, stream, group string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if err := c.client.XAck(ctx, stream, group, messageIDs...).Err(); err != nil {
		return fmt.Errorf("xack: %w", err)
	}
	return nil
}
