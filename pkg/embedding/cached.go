package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"
)

const cacheKeyPrefix = "course_assistant:emb_cache:"

// ErrCacheMiss is returned by CacheStore implementations for absent keys.
var ErrCacheMiss = errors.New("embedding cache miss")

// CacheStore is a byte key-value store for vectors.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachedProvider caches embeddings by model fingerprint, task type and text.
type CachedProvider struct {
	inner       EmbeddingProvider
	fingerprint string
	store       CacheStore
	cacheTotal  *prometheus.CounterVec
	logger      Logger
}

// NewCachedProvider wraps inner. cacheTotal may be nil; it takes a single "result" label.
func NewCachedProvider(inner EmbeddingProvider, fingerprint string, store CacheStore, cacheTotal *prometheus.CounterVec, logger Logger) *CachedProvider {
	return &CachedProvider{
		inner:       inner,
		fingerprint: fingerprint,
		store:       store,
		cacheTotal:  cacheTotal,
		logger:      logger,
	}
}

func (c *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	key := CacheKey(c.fingerprint, text, taskType)

	if vec, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: vec}}, nil
	}
	c.incCache("miss")

	resp, err := c.inner.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, key, vectorToBytes(resp.Embedding.Values)); err != nil {
		c.logger.Warn("EMBEDDING", "Failed to cache embedding", map[string]interface{}{"error": err.Error()})
	}
	return resp, nil
}

func (c *CachedProvider) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedProvider) getFromCache(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("EMBEDDING", "Failed to read cached embedding", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	vec, err := bytesToVector(data)
	if err != nil {
		c.logger.Warn("EMBEDDING", "Failed to parse cached embedding", map[string]interface{}{"error": err.Error()})
		return nil, false
	}
	return vec, true
}

// CacheKey is sha256 over the model fingerprint, task type and text, so a
// model switch never serves vectors from the previous model.
func CacheKey(fingerprint, text, taskType string) string {
	h := sha256.Sum256([]byte(fingerprint + "\x00" + taskType + "\x00" + text))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
