package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "telemetry:devices:last_seen"

// Timestamps are stored as unix microseconds so the Lua comparison stays
// within float precision.
var advanceScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1])
if (not cur) or tonumber(ARGV[2]) > tonumber(cur) then
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
	return 1
end
return 0
`)

type RedisConfig struct {
	URL string
	Key string
}

// RedisCache shares last-seen state between ingestor replicas.
type RedisCache struct {
	client *redis.Client
	key    string
}

func NewRedis(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return NewRedisFromClient(client, cfg.Key), nil
}

func NewRedisFromClient(client *redis.Client, key string) *RedisCache {
	if key == "" {
		key = defaultKey
	}
	return &RedisCache{client: client, key: key}
}

func (c *RedisCache) Get(ctx context.Context, deviceID string) (DeviceState, bool, error) {
	const fn = "RedisCache:Get"
	v, err := c.client.HGet(ctx, c.key, deviceID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return DeviceState{}, false, nil
		}
		return DeviceState{}, false, fmt.Errorf("%s:%w:%w", fn, ErrBackend, err)
	}
	micros, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return DeviceState{}, false, fmt.Errorf("%s:%w:%w", fn, ErrBackend, err)
	}
	return DeviceState{LastSeen: time.UnixMicro(micros).UTC()}, true, nil
}

func (c *RedisCache) Advance(ctx context.Context, deviceID string, seenAt time.Time) error {
	const fn = "RedisCache:Advance"
	err := advanceScript.Run(ctx, c.client, []string{c.key}, deviceID, seenAt.UnixMicro()).Err()
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrBackend, err)
	}
	return nil
}

func (c *RedisCache) Hydrate(ctx context.Context, loader Loader) error {
	return hydrate(ctx, c, loader)
}

func (c *RedisCache) Dump(ctx context.Context) {
	n, err := c.client.HLen(ctx, c.key).Result()
	if err != nil {
		slog.ErrorContext(ctx, "Cache Dump failed", "error", err)
		return
	}
	slog.DebugContext(ctx, "Cache Dump", "key", c.key, "devices", n)
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
