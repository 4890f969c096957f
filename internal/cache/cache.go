// Package cache implements the read-through response cache and its
// invalidation. The todos table stays the single source of truth: a
// cache entry is a TTL-bounded copy of a previously computed response,
// deleted (never updated in place) whenever a mutation could make it
// diverge. Every Redis failure here fails open — a broken or absent
// cache must never break a request.
package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key for the admin listing. The admin view is one aggregate over all
// owners, so a single constant key covers it.
const AdminTodosKey = "admin:todos"

// UserTodosKey derives the per-user listing key. The id comes from the
// verified identity in the request context, never from raw user input,
// which keeps one user's cached listing unreachable from another's
// requests.
func UserTodosKey(userID string) string {
	return "todos:user:" + userID
}

// Cache wraps a Redis client with the configured entry TTL. A nil
// client or disabled config yields a cache that always misses and
// ignores stores and invalidations, so callers need no nil checks.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New builds a Cache. Pass a nil client to disable caching entirely.
func New(rdb *redis.Client, enabled bool, ttl time.Duration) *Cache {
	if !enabled {
		rdb = nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Fetch returns the live entry stored at key, if any. Lookup errors
// are logged and reported as a miss so the caller falls through to the
// authoritative store.
func (c *Cache) Fetch(ctx context.Context, key string) ([]byte, bool) {
	if c.rdb == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: get %s failed: %v", key, err)
		}
		return nil, false
	}
	return b, true
}

// StoreAsync captures a freshly computed response at key without
// blocking the request that produced it. The write happens on its own
// goroutine with a fresh timeout-bounded context, so the originating
// request neither waits for it nor fails when it fails.
func (c *Cache) StoreAsync(key string, payload []byte) {
	if c.rdb == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.rdb.SetEx(ctx, key, payload, c.ttl).Err(); err != nil {
			log.Printf("cache: set %s failed: %v", key, err)
		}
	}()
}

// Invalidate deletes the given entries in a single DEL. Eviction is
// best-effort cleanup after the source-of-truth write has already
// succeeded: failures are logged and swallowed, and until the TTL
// expires such an entry may keep serving stale data.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c.rdb == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache: invalidate %v failed: %v", keys, err)
	}
}
