package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eidan66/wedding-album-sub000/internal/domain/media"

	goredis "github.com/redis/go-redis/v9"
)

// Cache key patterns:
// - media:page:{type}:{page}:{limit} - 5m TTL, one gallery page
// - media:count:{type}               - 5m TTL, catalog count
// Every key is dropped on each successful finalization so freshly uploaded
// items appear on the next gallery fetch.

// CacheConfig contains configuration for caching
type CacheConfig struct {
	MediaListTTL  time.Duration // TTL for gallery page cache (default 5m)
	MediaCountTTL time.Duration // TTL for count cache (default 5m)
}

// DefaultCacheConfig returns sensible defaults
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MediaListTTL:  5 * time.Minute,
		MediaCountTTL: 5 * time.Minute,
	}
}

// CacheStore handles read-side caching of the media catalog in Redis
type CacheStore struct {
	client *goredis.Client
	config CacheConfig
}

// NewCacheStore creates a new cache store
func NewCacheStore(client *goredis.Client, config CacheConfig) *CacheStore {
	return &CacheStore{
		client: client,
		config: config,
	}
}

// MediaPage is one cached gallery page.
type MediaPage struct {
	Items []media.Item `json:"items"`
	Total int64        `json:"total"`
}

func pageKey(mediaType string, page, limit int) string {
	if mediaType == "" {
		mediaType = "all"
	}
	return fmt.Sprintf("media:page:%s:%d:%d", mediaType, page, limit)
}

func countKey(mediaType string) string {
	if mediaType == "" {
		mediaType = "all"
	}
	return fmt.Sprintf("media:count:%s", mediaType)
}

// GetMediaPage retrieves a cached gallery page. A nil result means cache miss.
func (c *CacheStore) GetMediaPage(ctx context.Context, mediaType string, page, limit int) (*MediaPage, error) {
	data, err := c.client.Get(ctx, pageKey(mediaType, page, limit)).Result()
	if err == goredis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}

	var cached MediaPage
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		return nil, err
	}
	return &cached, nil
}

// SetMediaPage stores a gallery page in cache
func (c *CacheStore) SetMediaPage(ctx context.Context, mediaType string, page, limit int, value *MediaPage) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, pageKey(mediaType, page, limit), data, c.config.MediaListTTL).Err()
}

// GetMediaCount retrieves a cached count. Returns (0, false, nil) on miss.
func (c *CacheStore) GetMediaCount(ctx context.Context, mediaType string) (int64, bool, error) {
	count, err := c.client.Get(ctx, countKey(mediaType)).Int64()
	if err == goredis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// SetMediaCount stores a count in cache
func (c *CacheStore) SetMediaCount(ctx context.Context, mediaType string, count int64) error {
	return c.client.Set(ctx, countKey(mediaType), count, c.config.MediaCountTTL).Err()
}

// InvalidateMedia drops every cached gallery page and count. Called after a
// new item is recorded; a failure here is non-fatal since keys expire on
// their own TTL.
func (c *CacheStore) InvalidateMedia(ctx context.Context) error {
	var keysToDelete []string
	for _, pattern := range []string{"media:page:*", "media:count:*"} {
		iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			keysToDelete = append(keysToDelete, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}

	if len(keysToDelete) > 0 {
		return c.client.Del(ctx, keysToDelete...).Err()
	}
	return nil
}

// Ping checks if Redis is available
func (c *CacheStore) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
