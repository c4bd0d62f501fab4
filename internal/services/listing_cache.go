package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/codyseavey/card-portfolio/internal/metrics"
	"github.com/codyseavey/card-portfolio/internal/models"
)

// Fingerprint is the deterministic cache key for one marketplace query.
type Fingerprint string

// NewFingerprint derives the cache key from a query scope (card identity or
// comp query), the query kind, and the calendar day. Rolling the day into
// the key means yesterday's results can never satisfy today's lookups even
// if an entry outlives its TTL in the LRU.
func NewFingerprint(scope string, kind models.QueryKind, day time.Time) Fingerprint {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", scope, kind, day.Format("2006-01-02"))))
	return Fingerprint(hex.EncodeToString(sum[:8]))
}

type cacheEntry struct {
	listings  []models.Listing
	fetchedAt time.Time
	ttl       time.Duration
}

// ListingCache shields the marketplace adapter from repeated identical
// queries. Entries expire purely by TTL; concurrent lookups for the same
// fingerprint collapse into a single underlying fetch.
type ListingCache struct {
	entries  *lru.Cache[Fingerprint, cacheEntry]
	group    singleflight.Group
	ttl      time.Duration
	emptyTTL time.Duration

	now func() time.Time // test hook
}

func NewListingCache(size int, ttl, emptyTTL time.Duration) *ListingCache {
	if size <= 0 {
		size = 512
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if emptyTTL <= 0 || emptyTTL > ttl {
		emptyTTL = ttl / 3
	}
	entries, err := lru.New[Fingerprint, cacheEntry](size)
	if err != nil {
		log.Printf("Failed to create listing cache: %v", err)
	}
	return &ListingCache{
		entries:  entries,
		ttl:      ttl,
		emptyTTL: emptyTTL,
		now:      time.Now,
	}
}

// GetOrFetch returns the cached listings for fp, or invokes fetch exactly
// once across all concurrent callers and caches the result. A successful but
// empty result is cached with a shorter TTL so a marketplace with genuinely
// no listings isn't hammered, but new listings show up reasonably fast.
func (c *ListingCache) GetOrFetch(ctx context.Context, fp Fingerprint, fetch func(ctx context.Context) ([]models.Listing, error)) ([]models.Listing, error) {
	if entry, ok := c.entries.Get(fp); ok && c.now().Sub(entry.fetchedAt) < entry.ttl {
		metrics.CacheHits.Inc()
		return entry.listings, nil
	}
	metrics.CacheMisses.Inc()

	v, err, shared := c.group.Do(string(fp), func() (interface{}, error) {
		// Another caller may have finished the fetch while we waited on
		// the flight lock
		if entry, ok := c.entries.Get(fp); ok && c.now().Sub(entry.fetchedAt) < entry.ttl {
			return entry.listings, nil
		}

		listings, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		ttl := c.ttl
		if len(listings) == 0 {
			ttl = c.emptyTTL
		}
		c.entries.Add(fp, cacheEntry{listings: listings, fetchedAt: c.now(), ttl: ttl})
		return listings, nil
	})
	if shared {
		metrics.CacheSharedFetches.Inc()
	}
	if err != nil {
		return nil, err
	}
	return v.([]models.Listing), nil
}

// Len returns the number of cached entries, expired or not.
func (c *ListingCache) Len() int {
	return c.entries.Len()
}
