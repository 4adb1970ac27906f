package cache

import (
	"context"
	"sync"
)

var _ Cache = (*MapCache)(nil)

// MapCache is an unbounded, non-expiring cache. Used by the CLI and in tests.
type MapCache struct {
	mutex sync.Mutex
	items map[string][]byte
}

func NewMapCache() *MapCache {
	return &MapCache{
		items: make(map[string][]byte),
	}
}

func (c *MapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if val, ok := c.items[key]; ok {
		return val, nil
	}
	return nil, ErrMiss
}

func (c *MapCache) Set(_ context.Context, key string, value []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = value
	return nil
}

func (c *MapCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return len(c.items)
}
