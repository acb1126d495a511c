package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/trustcheck/internal/model"
)

// PageCache stores serialized provider pages by key.
type PageCache interface {
	GetPage(ctx context.Context, key string) ([]byte, bool, error)
	SetPage(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// CachedProvider serves provider pages from a PageCache. Lookup answers
// from the cache only; FetchPage always calls the wrapped provider and
// stores the page it returns. Cache failures are logged and never fail a
// fetch.
type CachedProvider struct {
	next  Provider
	cache PageCache
	ttl   time.Duration
}

// NewCachedProvider wraps next with cache. Entries live for ttl.
func NewCachedProvider(next Provider, cache PageCache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, ttl: ttl}
}

// CacheKey is the hex sha256 of query|start|num.
func CacheKey(query string, start, num int) string {
	sum := sha256.Sum256([]byte(query + "|" + strconv.Itoa(start) + "|" + strconv.Itoa(num)))
	return hex.EncodeToString(sum[:])
}

// Lookup returns a cached page if one is present and unexpired.
func (c *CachedProvider) Lookup(ctx context.Context, query string, start, num int) ([]model.RawResult, bool) {
	key := CacheKey(query, start, num)
	payload, ok, err := c.cache.GetPage(ctx, key)
	if err != nil {
		zap.L().Warn("search: cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var items []model.RawResult
	if err := json.Unmarshal(payload, &items); err != nil {
		zap.L().Warn("search: cache entry unreadable", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return items, true
}

// FetchPage calls the wrapped provider and caches a successful page.
func (c *CachedProvider) FetchPage(ctx context.Context, query string, start, num int) ([]model.RawResult, error) {
	items, err := c.next.FetchPage(ctx, query, start, num)
	if err != nil {
		return nil, err
	}

	key := CacheKey(query, start, num)
	payload, err := json.Marshal(items)
	if err != nil {
		zap.L().Warn("search: cache encode failed", zap.String("key", key), zap.Error(err))
		return items, nil
	}
	if err := c.cache.SetPage(ctx, key, payload, c.ttl); err != nil {
		zap.L().Warn("search: cache write failed", zap.String("key", key), zap.Error(err))
	}
	return items, nil
}
