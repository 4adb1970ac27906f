package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coocood/freecache"
)

var _ Cache = (*LocalCache)(nil)

// LocalCache keeps reports in process memory.
type LocalCache struct {
	cache         *freecache.Cache
	expireSeconds int
}

func NewLocalCache(sizeMegabytes int, ttl time.Duration) *LocalCache {
	megabyte := 1024 * 1024
	if sizeMegabytes <= 0 {
		sizeMegabytes = 10
	}
	expireSeconds := int(ttl.Seconds())
	if expireSeconds <= 0 {
		expireSeconds = 1
	}
	return &LocalCache{
		cache:         freecache.NewCache(sizeMegabytes * megabyte),
		expireSeconds: expireSeconds,
	}
}

func (c *LocalCache) Get(_ context.Context, key string) ([]byte, error) {
	value, err := c.cache.Get([]byte(key))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("freecache get: %w", err)
	}
	return value, nil
}

func (c *LocalCache) Set(_ context.Context, key string, value []byte) error {
	if err := c.cache.Set([]byte(key), value, c.expireSeconds); err != nil {
		return fmt.Errorf("freecache set: %w", err)
	}
	return nil
}

// EntryCount is the number of entries currently held.
func (c *LocalCache) EntryCount() int64 {
	return c.cache.EntryCount()
}
