package inmem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "console:seen:"

// Redis remembers keys in a redis server shared between daemons.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to redis, accepting either a redis:// URL or host:port.
func NewRedis(ctx context.Context, addr string, ttl time.Duration) (*Redis, error) {
	var client *redis.Client
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Seen(ctx context.Context, key string) (bool, error) {
	err := r.client.Get(ctx, redisKeyPrefix+key).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) Mark(ctx context.Context, key string) error {
	return r.client.Set(ctx, redisKeyPrefix+key, 1, r.ttl).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
