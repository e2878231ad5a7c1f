package inmem

import (
	"context"
	"time"

	"github.com/allegro/bigcache"
)

// Cache remembers keys in process memory.
type Cache struct {
	*bigcache.BigCache
}

type CacheConfig struct {
	// Size is the maximum size of the cache in MB.
	Size int
	TTL  time.Duration
}

func NewCache(config CacheConfig) (*Cache, error) {
	defaults := bigcache.DefaultConfig(DefaultTTL)

	if config.TTL != 0 {
		defaults.LifeWindow = config.TTL
	}

	if config.Size != 0 {
		defaults.HardMaxCacheSize = config.Size
	}

	cache, err := bigcache.NewBigCache(defaults)
	if err != nil {
		return nil, err
	}

	return &Cache{BigCache: cache}, nil
}

// Seen reports whether the key has been marked within the TTL.
func (c *Cache) Seen(_ context.Context, key string) (bool, error) {
	// bigcache only errors on a missing entry
	if _, err := c.Get(key); err != nil {
		return false, nil
	}
	return true, nil
}

// Mark records the key.
func (c *Cache) Mark(_ context.Context, key string) error {
	return c.Set(key, []byte{1})
}
