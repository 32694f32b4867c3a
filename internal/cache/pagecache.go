package cache

import (
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// indexPageKey holds every cached rendering of the home listing, one
// hash field per page number. Keeping the pages in a single hash means
// one TTL covers them all and an explicit invalidation is a single DEL.
const indexPageKey = "page:index"

// GetIndexPage returns the cached rendering of one home-listing page.
// A miss is reported as redis.Nil, same as Get.
func (c *Cache) GetIndexPage(page int) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrCacheDisabled
	}
	return c.client.HGet(c.ctx, c.namespaceKey(indexPageKey), strconv.Itoa(page)).Result()
}

// SetIndexPage stores a rendered home-listing page under the given TTL.
// The page is served as-is until the TTL elapses or InvalidateIndex is
// called; new posts created in between are deliberately not visible.
// The TTL counts from the first page cached into the hash: caching a
// further page must not stretch the staleness window of the others.
func (c *Cache) SetIndexPage(page int, html string, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	key := c.namespaceKey(indexPageKey)
	if err := c.client.HSet(c.ctx, key, strconv.Itoa(page), html).Err(); err != nil {
		return err
	}
	remaining, err := c.client.TTL(c.ctx, key).Result()
	if err != nil {
		return err
	}
	if remaining < 0 {
		return c.client.Expire(c.ctx, key, ttl).Err()
	}
	return nil
}

// InvalidateIndex drops every cached home-listing page
func (c *Cache) InvalidateIndex() error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Del(c.ctx, c.namespaceKey(indexPageKey)).Err()
}

// IsMiss reports whether an error from a cache read means "not cached"
// rather than a cache failure
func IsMiss(err error) bool {
	return err == redis.Nil
}
