// listing.go provides a Valkey-backed listing response cache. A rendered
// listing page (the full JSON body) is stored keyed by a hash of the
// normalized query so hot category views skip the candidate scan and the
// ranking pipeline entirely. Debug responses are never cached — the
// handler bypasses this cache when explain output is requested.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// listingKeyPrefix is the Valkey key prefix for cached listing pages.
	listingKeyPrefix = "listing:"

	// DefaultListingTTL is how long a listing page stays cached. Shorter
	// than the plan-derivation TTL because inventory changes often.
	DefaultListingTTL = 2 * time.Minute
)

// ListingCache manages listing response caching in Valkey.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListingCache creates a new listing cache backed by the given Valkey client.
func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	if ttl == 0 {
		ttl = DefaultListingTTL
	}
	return &ListingCache{client: client, ttl: ttl}
}

// Get retrieves a cached listing body for a key. Returns false on miss.
func (lc *ListingCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := lc.client.Get(ctx, listingKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("listing cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("listing cache hit", "key", key)
	return val, true
}

// Set stores a listing body for a key with the configured TTL.
func (lc *ListingCache) Set(ctx context.Context, key string, body []byte) {
	if err := lc.client.Set(ctx, listingKeyPrefix+key, body, lc.ttl).Err(); err != nil {
		slog.Warn("listing cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes all cached listing pages by scanning for the
// prefix. Exposed for operational tooling; normal invalidation is TTL-only.
func (lc *ListingCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := lc.client.Scan(ctx, cursor, listingKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("listing cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := lc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("listing cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("listing cache fully cleared", "deleted", deleted)
	}
}

// ListingKey builds a deterministic cache key from the normalized query
// parameters. Hashing keeps keys bounded regardless of input length.
func ListingKey(categoryID, subcategoryID, excludeID string, page, pageSize, maxPerVendor int) string {
	raw := fmt.Sprintf("%s|%s|%s|%d|%d|%d", categoryID, subcategoryID, excludeID, page, pageSize, maxPerVendor)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:16])
}
