package memory

import (
	"context"
	"time"

	"course-assistant-be/pkg/embedding"

	"github.com/patrickmn/go-cache"
)

// EmbeddingCacheRepository keeps query vectors in process memory.
type EmbeddingCacheRepository struct {
	cache *cache.Cache
}

func NewEmbeddingCacheRepository(ttl time.Duration) *EmbeddingCacheRepository {
	// Purge expired items every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &EmbeddingCacheRepository{
		cache: c,
	}
}

func (r *EmbeddingCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if x, found := r.cache.Get(key); found {
		return x.([]byte), nil
	}
	return nil, embedding.ErrCacheMiss
}

func (r *EmbeddingCacheRepository) Set(ctx context.Context, key string, value []byte) error {
	r.cache.Set(key, value, cache.DefaultExpiration)
	return nil
}

func (r *EmbeddingCacheRepository) Len() int {
	return r.cache.ItemCount()
}
