package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"pricing-ingest/internal/telemetry"
)

const (
	LatestKey     = "pricing:latest"
	HistoryPrefix = "pricing:history:"
)

// kv is the subset of the Redis client the publisher uses.
type kv interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Close() error
}

// Publisher writes payloads to Redis. A nil *Publisher is valid and does nothing.
type Publisher struct {
	client  kv
	backend string
}

// New connects to redisURL. It returns nil when the URL is empty, invalid
// or unreachable (fail-open).
func New(ctx context.Context, redisURL string) *Publisher {
	if redisURL == "" {
		slog.Debug("PRICING_REDIS_URL not set, Redis publishing disabled")
		return nil
	}

	client, backend, err := dial(redisURL)
	if err != nil {
		slog.Warn("Failed to create Redis client, Redis publishing disabled",
			"error", err,
			"redis_url", redact(redisURL),
		)
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := ping(pingCtx, client); err != nil {
		slog.Warn("Redis connection test failed, Redis publishing disabled",
			"error", err,
			"redis_url", redact(redisURL),
		)
		client.Close()
		return nil
	}

	slog.Info("Redis client connected successfully",
		"redis_url", redact(redisURL),
		"backend", backend,
	)
	return &Publisher{client: client, backend: backend}
}

// Publish stores data as the latest payload and, unless a snapshot for date
// already exists, as that date's history entry. History entries are never
// overwritten.
func (p *Publisher) Publish(ctx context.Context, date string, data []byte) error {
	if p == nil {
		return nil
	}

	var errs []error
	start := time.Now()
	if err := p.client.Set(ctx, LatestKey, data, 0).Err(); err != nil {
		telemetry.IncPublishError(ctx, "set")
		errs = append(errs, fmt.Errorf("set %s: %w", LatestKey, err))
	}
	telemetry.ObservePublishLatency(ctx, "set", result(len(errs) == 0), time.Since(start))

	historyKey := HistoryPrefix + date
	start = time.Now()
	created, err := p.client.SetNX(ctx, historyKey, data, 0).Result()
	if err != nil {
		telemetry.IncPublishError(ctx, "setnx")
		errs = append(errs, fmt.Errorf("setnx %s: %w", historyKey, err))
	} else if !created {
		slog.Info("Redis history snapshot already exists, skipping", "key", historyKey)
	}
	telemetry.ObservePublishLatency(ctx, "setnx", result(err == nil), time.Since(start))

	return errors.Join(errs...)
}

// Backend returns the redis backend type (single or cluster).
func (p *Publisher) Backend() string {
	if p == nil {
		return ""
	}
	return p.backend
}

// Close closes the Redis connection.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
