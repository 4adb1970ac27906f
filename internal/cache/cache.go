package cache

import (
	"context"
	"errors"
)

// ErrMiss is returned by Get when the key is not cached.
var ErrMiss = errors.New("cache miss")

// Cache stores serialized reports for a short time, so identical uploads are not analyzed twice.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

const (
	TypeLocal = "local"
	TypeRedis = "redis"
	TypeNone  = "none"
)

var _ Cache = (*NopCache)(nil)

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }
func (NopCache) Set(context.Context, string, []byte) error { return nil }
