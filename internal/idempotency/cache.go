// Package idempotency provides a Redis-backed fast path for replay lookups.
// The transaction log remains the source of truth; every cache operation
// fails soft so a Redis outage only costs a log round-trip.
package idempotency

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taka-pay/taka_pay/internal/ledger"
)

const keyPrefix = "txn:idem:v1:"

type storedRecord struct {
	ID             string `json:"id"`
	From           string `json:"from"`
	To             string `json:"to"`
	Amount         int64  `json:"amount"`
	Fee            int64  `json:"fee"`
	Kind           string `json:"kind"`
	IdempotencyKey string `json:"idempotency_key"`
	CreatedAt      string `json:"created_at"`
}

// Cache stores committed transaction records keyed by idempotency key.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache constructs a cache with the given record TTL.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Lookup returns a previously stored record for the key, if any.
func (c *Cache) Lookup(ctx context.Context, key string) (ledger.Record, bool) {
	payload, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err == redis.Nil {
		return ledger.Record{}, false
	}
	if err != nil {
		c.logger.Warn("idempotency cache lookup failed", slog.String("key", key), slog.Any("error", err))
		return ledger.Record{}, false
	}

	var stored storedRecord
	if err := json.Unmarshal([]byte(payload), &stored); err != nil {
		c.logger.Warn("idempotency cache payload invalid", slog.String("key", key), slog.Any("error", err))
		return ledger.Record{}, false
	}

	createdAt, err := time.Parse(time.RFC3339Nano, stored.CreatedAt)
	if err != nil {
		c.logger.Warn("idempotency cache timestamp invalid", slog.String("key", key), slog.Any("error", err))
		return ledger.Record{}, false
	}

	return ledger.Record{
		ID:             stored.ID,
		From:           stored.From,
		To:             stored.To,
		Amount:         stored.Amount,
		Fee:            stored.Fee,
		Kind:           ledger.Kind(stored.Kind),
		IdempotencyKey: stored.IdempotencyKey,
		CreatedAt:      createdAt,
	}, true
}

// Store writes a committed record through to Redis. Best effort.
func (c *Cache) Store(ctx context.Context, key string, rec ledger.Record) {
	payload, err := json.Marshal(storedRecord{
		ID:             rec.ID,
		From:           rec.From,
		To:             rec.To,
		Amount:         rec.Amount,
		Fee:            rec.Fee,
		Kind:           string(rec.Kind),
		IdempotencyKey: rec.IdempotencyKey,
		CreatedAt:      rec.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		c.logger.Warn("idempotency cache encode failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("idempotency cache store failed", slog.String("key", key), slog.Any("error", err))
	}
}
