package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const (
	queueKey           = "helpdesk:queue:open"
	queueGenerationKey = "helpdesk:queue:generation"
)

// QueueCache holds the operator queue snapshot between lifecycle changes.
//
// Refills are tagged with the generation read before the database query;
// Invalidate bumps the generation so a refill computed from older data is dropped.
type QueueCache interface {
	Get(ctx context.Context) ([]domain.Ticket, bool, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, generation int64, tickets []domain.Ticket) error
	Invalidate(ctx context.Context) error
}

// RedisQueueCache stores the queue as one JSON value with a TTL.
type RedisQueueCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisQueueCache returns a Redis-backed cache, or a no-op cache when client is nil
// or ttl is not positive.
func NewRedisQueueCache(client *redis.Client, ttl time.Duration) QueueCache {
	if client == nil || ttl <= 0 {
		return NoopQueueCache{}
	}
	return &RedisQueueCache{client: client, ttl: ttl}
}

func (c *RedisQueueCache) Get(ctx context.Context) ([]domain.Ticket, bool, error) {
	raw, err := c.client.Get(ctx, queueKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("queue cache get: %w", err)
	}
	tickets, err := decodeQueue(raw)
	if err != nil {
		return nil, false, err
	}
	return tickets, true, nil
}

func (c *RedisQueueCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, queueGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("queue cache generation: %w", err)
	}
	return gen, nil
}

// Set stores tickets only while the generation is still the one the caller read.
func (c *RedisQueueCache) Set(ctx context.Context, generation int64, tickets []domain.Ticket) error {
	raw, err := encodeQueue(tickets)
	if err != nil {
		return err
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, queueGenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, queueKey, raw, c.ttl)
			return nil
		})
		return err
	}, queueGenerationKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("queue cache set: %w", err)
	}
	return nil
}

func (c *RedisQueueCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, queueGenerationKey)
		pipe.Del(ctx, queueKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("queue cache invalidate: %w", err)
	}
	return nil
}

// NoopQueueCache never stores anything.
type NoopQueueCache struct{}

func (NoopQueueCache) Get(context.Context) ([]domain.Ticket, bool, error) { return nil, false, nil }
func (NoopQueueCache) Generation(context.Context) (int64, error)          { return 0, nil }
func (NoopQueueCache) Set(context.Context, int64, []domain.Ticket) error  { return nil }
func (NoopQueueCache) Invalidate(context.Context) error                   { return nil }

func encodeQueue(tickets []domain.Ticket) ([]byte, error) {
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	raw, err := json.Marshal(tickets)
	if err != nil {
		return nil, fmt.Errorf("queue cache encode: %w", err)
	}
	return raw, nil
}

func decodeQueue(raw []byte) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	if err := json.Unmarshal(raw, &tickets); err != nil {
		return nil, fmt.Errorf("queue cache decode: %w", err)
	}
	return tickets, nil
}
