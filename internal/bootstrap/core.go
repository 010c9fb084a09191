package bootstrap

import (
	"context"
	"fmt"
	"sync"

	"course-assistant-be/internal/config"
	"course-assistant-be/internal/constant"
	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/internal/repository/memory"
	redisRepo "course-assistant-be/internal/repository/redis"
	"course-assistant-be/internal/repository/unitofwork"
	"course-assistant-be/internal/service"
	"course-assistant-be/pkg/embedding"
	"course-assistant-be/pkg/metrics"
	pktNats "course-assistant-be/pkg/nats"
	"course-assistant-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Core holds the dependencies shared by the HTTP server and the CLI tools.
// The embedding provider is built on first use so ingest-only runs need no API key.
type Core struct {
	Config     *config.Config
	Logger     logger.ILogger
	DB         *gorm.DB
	UowFactory unitofwork.RepositoryFactory

	PubSub           *gochannel.GoChannel
	PublisherService service.IPublisherService
	NatsPublisher    *pktNats.Publisher
	DocumentStore    service.IDocumentStore
	IngestService    service.IIngestService

	redis *redis.Client

	providerOnce sync.Once
	provider     embedding.EmbeddingProvider
	providerErr  error
}

func NewCore(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Core, error) {
	metrics.Register()

	splitter, err := utils.NewTextSplitter(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}

	c := &Core{
		Config:     cfg,
		Logger:     sysLogger,
		DB:         db,
		UowFactory: unitofwork.NewRepositoryFactory(db, cfg.Rag.HnswEfSearch),
	}

	// Event bus for embedding jobs
	c.PubSub = gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.PublisherService = service.NewPublisherService(c.PubSub, constant.EmbedDocumentTopic)

	// NATS is optional; ingestion still works without it.
	var eventPublisher service.EventPublisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS publisher", map[string]interface{}{"error": err.Error()})
		} else {
			c.NatsPublisher = natsPub
			eventPublisher = natsPub
		}
	}

	if cfg.App.RedisURL != "" {
		c.redis = connectRedis(cfg.App.RedisURL, sysLogger)
	}

	c.DocumentStore = service.NewDocumentStore(c.UowFactory, splitter, sysLogger)
	c.IngestService = service.NewIngestService(c.DocumentStore, c.PublisherService, eventPublisher, sysLogger)
	return c, nil
}

func connectRedis(url string, sysLogger logger.ILogger) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to parse Redis URL, using it as an address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		sysLogger.Warn("BOOTSTRAP", "Redis unreachable, falling back to in-process embedding cache", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// EmbeddingProvider returns the configured provider with metrics, the dimension
// check and a query cache (Redis when reachable, otherwise in-process).
func (c *Core) EmbeddingProvider(ctx context.Context) (embedding.EmbeddingProvider, error) {
	c.providerOnce.Do(func() {
		cfg := c.Config.Embedding
		embeddingCfg := embedding.Config{
			Provider:  cfg.Provider,
			Model:     cfg.Model,
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Dimension: cfg.Dimension,
		}
		inner, err := embedding.NewEmbeddingProvider(ctx, embeddingCfg)
		if err != nil {
			c.providerErr = fmt.Errorf("embedding provider: %w", err)
			return
		}

		var store embedding.CacheStore
		if c.redis != nil {
			store = redisRepo.NewEmbeddingCacheRepository(c.redis, cfg.CacheTTL)
		} else {
			store = memory.NewEmbeddingCacheRepository(cfg.CacheTTL)
		}
		c.provider = embedding.NewCachedProvider(inner, embeddingCfg.Fingerprint(), store, metrics.EmbeddingCacheTotal, c.Logger)
		c.Logger.Info("BOOTSTRAP", "Embedding provider ready", map[string]interface{}{
			"provider":    cfg.Provider,
			"model":       cfg.Model,
			"dimension":   cfg.Dimension,
			"redis_cache": c.redis != nil,
		})
	})
	return c.provider, c.providerErr
}

// NewIndexer builds an indexer over the shared provider.
func (c *Core) NewIndexer(ctx context.Context) (service.IIndexerService, error) {
	provider, err := c.EmbeddingProvider(ctx)
	if err != nil {
		return nil, err
	}
	cfg := c.Config.Embedding
	return service.NewIndexerService(c.UowFactory, provider, cfg.Dimension, cfg.Workers, cfg.RatePerSec, c.Logger), nil
}

func (c *Core) Close() {
	if c.NatsPublisher != nil {
		c.NatsPublisher.Close()
	}
	if c.PubSub != nil {
		_ = c.PubSub.Close()
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
}
