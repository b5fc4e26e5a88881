package readings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/riverlabs/rivergauge/internal/store"
)

// Consumer consumes sensor readings from the Redis ingest stream.
type Consumer struct {
	rdb          *redis.Client
	validator    *Validator
	groupName    string
	consumerName string
}

// NewConsumer creates a Consumer joined to the ingest consumer group.
func NewConsumer(redisURL, consumerName string) (*Consumer, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	// Read timeout must exceed the XReadGroup Block duration (5s)
	// to avoid spurious i/o timeout errors on idle streams.
	opts.ReadTimeout = 10 * time.Second

	client := redis.NewClient(opts)

	// Create consumer group on the ingest stream.
	// Start ID "0" means read from beginning if group is new.
	err = client.XGroupCreateMkStream(context.Background(), StreamReadings, GroupIngest, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}
	// Ignore BUSYGROUP error - group already exists

	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}

	return &Consumer{
		rdb:          client,
		validator:    validator,
		groupName:    GroupIngest,
		consumerName: consumerName,
	}, nil
}

// Consume runs a blocking loop consuming readings from the stream. Payloads
// that fail schema validation are acknowledged and dropped (poison messages
// never block the stream); handler failures leave the message pending for
// redelivery.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, ReadingMessage, []byte) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupName,
			Consumer: c.consumerName,
			Streams:  []string{StreamReadings, ">"},
			Count:    10,
			Block:    5000, // 5 seconds
		}).Result()

		if err == redis.Nil {
			// No messages available, continue loop
			continue
		}

		if err != nil {
			// Blocking reads return a timeout when no messages arrive
			// within the Block duration — this is normal, not an error.
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			slog.Error("Failed to read from stream", "error", err)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				payloadStr, ok := message.Values["payload"].(string)
				if !ok {
					slog.Error("Invalid message payload", "message_id", message.ID)
					c.ack(ctx, message.ID)
					continue
				}

				reading, err := c.validator.Validate([]byte(payloadStr))
				if err != nil {
					slog.Error("Dropping invalid reading", "error", err, "message_id", message.ID)
					c.ack(ctx, message.ID)
					continue
				}

				if err := handler(ctx, reading, []byte(payloadStr)); err != nil {
					slog.Error("Handler failed", "error", err, "machine_code", reading.MachineCode)
					// Message stays in PEL for retry, don't ACK
					continue
				}

				c.ack(ctx, message.ID)
			}
		}
	}
}

func (c *Consumer) ack(ctx context.Context, messageID string) {
	if err := c.rdb.XAck(ctx, StreamReadings, c.groupName, messageID).Err(); err != nil {
		slog.Error("Failed to ACK message", "error", err, "message_id", messageID)
	}
}

// Close closes the Redis client connection
func (c *Consumer) Close() error {
	return c.rdb.Close()
}

// StartConsumer is a convenience function that starts the ingest consumer
// in a background goroutine and returns a stop function.
func StartConsumer(redisURL string, machines store.MachineStore, readings store.ReadingStore) (stop func(), err error) {
	consumerName := "ingest-" + uuid.New().String()[:8]
	consumer, err := NewConsumer(redisURL, consumerName)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingest consumer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := consumer.Consume(ctx, HandleReading(machines, readings)); err != nil {
			if !errors.Is(err, context.Canceled) {
				slog.Error("Ingest consumer stopped with error", "error", err)
			}
		}
	}()

	slog.Info("Ingest consumer started", "consumer", consumerName)

	return func() {
		cancel()
		consumer.Close()
	}, nil
}
