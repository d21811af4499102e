package run

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Cache keeps finished run reports in Redis. A nil *Cache, or one without
// a client, is a valid no-op cache.
type Cache struct {
	client goredis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewCache(client goredis.Cmdable, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "run_cache"),
	}
}

func cacheKey(id int) string {
	return fmt.Sprintf("simulation_run:%d", id)
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached run, or nil when it is absent or the cache is off.
func (c *Cache) Get(ctx context.Context, id int) (*Run, error) {
	if !c.enabled() {
		return nil, nil
	}

	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run %d from cache: %w", id, err)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to decode cached run %d: %w", id, err)
	}
	return &run, nil
}

func (c *Cache) Set(ctx context.Context, run *Run) error {
	if !c.enabled() {
		return nil
	}

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run %d for cache: %w", run.ID, err)
	}

	if err := c.client.Set(ctx, cacheKey(run.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache run %d: %w", run.ID, err)
	}

	c.logger.Debug("Run cached", "run_id", run.ID, "ttl", c.ttl)
	return nil
}
