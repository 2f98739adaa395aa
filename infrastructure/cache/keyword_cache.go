package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"trend-api/domain/model"
	"trend-api/domain/repository"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

const localCacheSize = 1000

// KeywordCache stores keyword analyses in Redis with an in-process TinyLFU layer.
// Without a Redis client only the local layer is used.
type KeywordCache struct {
	data *cache.Cache
	ttl  time.Duration
}

var _ repository.IKeywordCache = (*KeywordCache)(nil)

func NewKeywordCache(rdb *redis.Client, ttl time.Duration) *KeywordCache {
	opts := &cache.Options{LocalCache: cache.NewTinyLFU(localCacheSize, ttl)}
	if rdb != nil {
		opts.Redis = rdb
	}
	return &KeywordCache{data: cache.New(opts), ttl: ttl}
}

func keywordCacheKey(keyword string) string {
	return "trends/keyword/" + strings.ToLower(strings.TrimSpace(keyword))
}

// Get returns nil, nil on a miss.
func (c *KeywordCache) Get(ctx context.Context, keyword string) (*model.KeywordAnalysis, error) {
	var analysis model.KeywordAnalysis
	err := c.data.Get(ctx, keywordCacheKey(keyword), &analysis)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (c *KeywordCache) Set(ctx context.Context, keyword string, analysis *model.KeywordAnalysis) error {
	if analysis == nil {
		return nil
	}
	return c.data.Set(&cache.Item{
		Ctx:   ctx,
		Key:   keywordCacheKey(keyword),
		Value: analysis,
		TTL:   c.ttl,
	})
}
