package redis

import (
	"context"
	"errors"
	"time"

	"course-assistant-be/pkg/embedding"

	goredis "github.com/redis/go-redis/v9"
)

// EmbeddingCacheRepository shares query vectors across instances.
type EmbeddingCacheRepository struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewEmbeddingCacheRepository(rdb *goredis.Client, ttl time.Duration) *EmbeddingCacheRepository {
	return &EmbeddingCacheRepository{
		rdb: rdb,
		ttl: ttl,
	}
}

func (r *EmbeddingCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, embedding.ErrCacheMiss
		}
		return nil, err
	}
	return data, nil
}

func (r *EmbeddingCacheRepository) Set(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, key, value, r.ttl).Err()
}
