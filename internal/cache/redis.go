package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietanh2810/stand-portal-api/internal/config"
)

var ErrMiss = errors.New("cache miss")

// NewRedisClient connects and pings redis. It returns nil when no address is
// configured or the server is unreachable; callers then run without a cache.
func NewRedisClient(conf *config.RedisConfig) *redis.Client {
	if conf == nil || conf.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}

	return client
}

// JSONCache stores json-encoded values under a key prefix.
type JSONCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewJSONCache(client *redis.Client, prefix string, ttl time.Duration) *JSONCache {
	return &JSONCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *JSONCache) Get(ctx context.Context, key string, dst interface{}) error {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("c.client.Get -> %w", err)
	}

	if err = json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("json.Unmarshal -> %w", err)
	}

	return nil
}

func (c *JSONCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	if err = c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("c.client.Set -> %w", err)
	}

	return nil
}

func (c *JSONCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}
