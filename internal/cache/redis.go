package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/swipeit/chatrelay/internal/models"
)

// RedisCache shares the profile cache between relay restarts and multiple
// relay instances behind the same user.
type RedisCache struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, redisURL string, log zerolog.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client, log: log.With().Str("component", "redis_cache").Logger()}, nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping checks the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func profileKey(id string) string {
	return fmt.Sprintf("participant:%s", id)
}

// Get returns the cached profile for an id. Any Redis or decode error is a
// miss.
func (c *RedisCache) Get(ctx context.Context, id string) (*models.Participant, bool) {
	data, err := c.client.Get(ctx, profileKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("id", id).Msg("cache read failed")
		}
		return nil, false
	}

	var p models.Participant
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false
	}
	return &p, true
}

// Put stores a profile under its id. Failures are logged and dropped; the
// cache is best-effort.
func (c *RedisCache) Put(ctx context.Context, p *models.Participant) {
	if p == nil || p.ID == "" {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, profileKey(p.ID), data, profileTTL).Err(); err != nil {
		c.log.Warn().Err(err).Str("id", p.ID).Msg("cache write failed")
	}
}
