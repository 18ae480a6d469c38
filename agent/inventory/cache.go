package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultCacheKeyPrefix = "inventory:"
	defaultCacheTTL       = 5 * time.Minute
	notFoundTTL           = time.Minute
)

type cachedStock struct {
	NotFound bool       `json:"not_found,omitempty"`
	Stock    *StockInfo `json:"stock,omitempty"`
}

type CacheOption func(*CachedSource)

func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CachedSource) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithCacheKeyPrefix(prefix string) CacheOption {
	return func(c *CachedSource) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			c.keyPrefix = trimmed
		}
	}
}

// CachedSource is a read-through Redis cache in front of another Source.
// Redis faults never fail a lookup; they only skip the cache.
type CachedSource struct {
	inner     Source
	rdb       redis.Cmdable
	ttl       time.Duration
	keyPrefix string
}

func NewCachedSource(inner Source, rdb redis.Cmdable, opts ...CacheOption) *CachedSource {
	c := &CachedSource{
		inner:     inner,
		rdb:       rdb,
		ttl:       defaultCacheTTL,
		keyPrefix: defaultCacheKeyPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *CachedSource) Lookup(ctx context.Context, item string, storeID string) (StockInfo, error) {
	key := c.key(item, storeID)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedStock
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			if cached.NotFound {
				return StockInfo{}, ErrItemNotFound
			}
			if cached.Stock != nil {
				return *cached.Stock, nil
			}
		}
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("key", key).Msg("inventory cache read failed")
	}

	info, err := c.inner.Lookup(ctx, item, storeID)
	if errors.Is(err, ErrItemNotFound) {
		c.store(ctx, key, cachedStock{NotFound: true}, notFoundTTL)
		return StockInfo{}, err
	}
	if err != nil {
		return StockInfo{}, err
	}

	c.store(ctx, key, cachedStock{Stock: &info}, c.ttl)
	return info, nil
}

func (c *CachedSource) store(ctx context.Context, key string, val cachedStock, ttl time.Duration) {
	payload, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("inventory cache write failed")
	}
}

func (c *CachedSource) key(item, storeID string) string {
	return c.keyPrefix + storeID + ":" + strings.ToLower(item)
}
