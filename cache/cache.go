// Package cache keeps serialized listing responses in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dcode-github/rental_listing_platform/observability"
)

const (
	keyPrefix   = "property:"
	scanPattern = keyPrefix + "*"
	scanCount   = 100
)

// Listings caches GET responses of the property list endpoints. A nil
// *Listings is valid and caches nothing.
type Listings struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Listings {
	return &Listings{client: client, ttl: ttl}
}

// Key derives a cache key from the route and its query parameters, ignoring
// parameter order.
func Key(route string, queryParams url.Values) string {
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(route)
	sb.WriteString(":")

	for _, key := range keys {
		values := append([]string(nil), queryParams[key]...)
		sort.Strings(values)
		for _, val := range values {
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(val)
			sb.WriteString("&")
		}
	}
	rawKey := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(rawKey))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached body for key, if any.
func (c *Listings) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis GET failed")
		return nil, false
	}
	observability.ObserveCache("redis", "hit")
	return data, true
}

func (c *Listings) Set(ctx context.Context, key string, body []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, key, body, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache response")
		return
	}
	observability.ObserveCache("redis", "set")
}

// Invalidate drops every cached listing response.
func (c *Listings) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}

	var keysToDelete []string
	var cursor uint64
	for {
		var currentKeys []string
		var err error
		currentKeys, cursor, err = c.client.Scan(ctx, cursor, scanPattern, scanCount).Result()
		if err != nil {
			log.Error().Err(err).Str("pattern", scanPattern).Msg("redis SCAN failed")
			return
		}
		keysToDelete = append(keysToDelete, currentKeys...)
		if cursor == 0 {
			break
		}
	}

	if len(keysToDelete) == 0 {
		return
	}

	pipe := c.client.Pipeline()
	for _, key := range keysToDelete {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Int("keys", len(keysToDelete)).Msg("failed to invalidate listing cache")
		return
	}
	observability.ObserveCache("redis", "invalidate")
	log.Debug().Int("keys", len(keysToDelete)).Msg("listing cache invalidated")
}

// InvalidateAsync runs Invalidate in the background, detached from the
// request that triggered it.
func (c *Listings) InvalidateAsync() {
	if c == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Invalidate(ctx)
	}()
}
