package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"yorkie-bakery-be/internal/config"
	"yorkie-bakery-be/internal/controller"
	"yorkie-bakery-be/internal/pkg/logger"
	"yorkie-bakery-be/internal/repository/memory"
	"yorkie-bakery-be/internal/repository/unitofwork"
	"yorkie-bakery-be/internal/service"
	"yorkie-bakery-be/pkg/embedding"
	"yorkie-bakery-be/pkg/llm"
	"yorkie-bakery-be/pkg/llm/factory"
	pktNats "yorkie-bakery-be/pkg/nats"
	"yorkie-bakery-be/pkg/recommend/events"
	"yorkie-bakery-be/pkg/recommend/filter"
	"yorkie-bakery-be/pkg/recommend/preference"
	"yorkie-bakery-be/pkg/recommend/rank"
	"yorkie-bakery-be/pkg/recommend/retrieval"
	"yorkie-bakery-be/pkg/recommend/session"
	"yorkie-bakery-be/pkg/vectorstore"
	vsMemory "yorkie-bakery-be/pkg/vectorstore/memory"
	"yorkie-bakery-be/pkg/vectorstore/pgvector"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	RecommendationController controller.IRecommendationController

	// Background Services (run by main)
	CatalogIndexService service.ICatalogIndexService
	CatalogSeedService  service.ICatalogSeedService
	SessionPurgeService service.ISessionPurgeService

	// NatsSubscriber is nil when NATS is unreachable.
	NatsSubscriber *pktNats.Subscriber

	closers []func()
}

// NewContainer wires every component. db may be nil when both the session
// backend and the vector store are "memory".
func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)
	c := &Container{Logger: sysLogger}

	// 1. Persistence
	uowFactory, err := newRepositoryFactory(db, cfg)
	if err != nil {
		return nil, err
	}
	store, err := newVectorStore(db, cfg)
	if err != nil {
		return nil, err
	}

	// 2. Infrastructure
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to parse Redis URL, using it as an address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	redisUp := true
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		sysLogger.Warn("BOOTSTRAP", "Redis unreachable, embedding cache disabled", map[string]interface{}{"error": err.Error()})
		redisUp = false
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })

	var eventPublisher events.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect NATS publisher, events disabled", map[string]interface{}{"error": err.Error()})
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect NATS subscriber, catalog events disabled", map[string]interface{}{"error": err.Error()})
	} else {
		c.NatsSubscriber = natsSub
		c.closers = append(c.closers, natsSub.Close)
	}
	publisher := events.NewNatsPublisher(eventPublisher, sysLogger)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. AI providers
	embeddingBaseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.EmbeddingProvider == "openai" {
		embeddingBaseURL = cfg.Ai.OpenAIBaseURL
	}
	embeddingProvider, err := embedding.NewEmbeddingProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.EmbeddingModel,
		embeddingBaseURL,
		cfg.Keys.OpenAI,
		cfg.Ai.EmbeddingDimensions,
	)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	if redisUp {
		embeddingProvider = embedding.NewCachedProvider(
			embeddingProvider,
			rdb,
			cfg.Ai.EmbeddingProvider+":"+cfg.Ai.EmbeddingModel,
			cfg.Ai.EmbeddingCacheTTL,
			sysLogger,
		)
	}
	sysLogger.Info("BOOTSTRAP", "Embedding provider ready", map[string]interface{}{
		"provider": cfg.Ai.EmbeddingProvider,
		"model":    cfg.Ai.EmbeddingModel,
		"cached":   redisUp,
	})

	llmProvider, err := newLLMProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 4. Recommendation pipeline
	sessions := session.NewStore(uowFactory, sysLogger, session.WithTTL(cfg.Session.TTL))
	engine := retrieval.NewEngine(embeddingProvider, store, sysLogger,
		retrieval.WithTimeouts(cfg.Timeouts.Embedding, cfg.Timeouts.VectorStore))
	ranker := rank.New(
		rank.WithBoostFactor(cfg.Ranking.BoostFactor),
		rank.WithNullPricePolicy(rank.ParseNullPricePolicy(cfg.Ranking.NullPricePolicy)),
	)
	interpreter := filter.NewLLMInterpreter(llmProvider, cfg.Timeouts.Completion, llmLogger)

	recommendationService := service.NewRecommendationService(
		sessions,
		interpreter,
		engine,
		ranker,
		preference.NewKeywordExtractor(),
		llmProvider,
		publisher,
		sysLogger,
		service.RecommendationConfig{
			Headroom:          cfg.Retrieval.Headroom,
			DefaultTopK:       cfg.Retrieval.DefaultTopK,
			MaxTopK:           cfg.Retrieval.MaxTopK,
			HistoryForPrompt:  cfg.Retrieval.HistoryForPrompt,
			CompletionTimeout: cfg.Timeouts.Completion,
			VisionModel:       cfg.Ai.VisionModel,
		},
	)

	c.CatalogIndexService = service.NewCatalogIndexService(
		pubSub,
		pubSub,
		cfg.App.IndexTopic,
		uowFactory,
		embeddingProvider,
		store,
		sysLogger,
	)
	c.CatalogSeedService = service.NewCatalogSeedService(uowFactory, sysLogger)
	c.SessionPurgeService = service.NewSessionPurgeService(sessions, publisher, cfg.Session.PurgeInterval, sysLogger)

	// 5. Controllers
	c.RecommendationController = controller.NewRecommendationController(recommendationService, cfg.Keys.JwtSecret)

	return c, nil
}

// Close releases connections in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func newRepositoryFactory(db *gorm.DB, cfg *config.Config) (unitofwork.RepositoryFactory, error) {
	switch cfg.Session.Backend {
	case "memory":
		return memory.NewBackend().NewRepositoryFactory(), nil
	case "postgres":
		if db == nil {
			return nil, errors.New("session backend postgres requires DB_CONNECTION_STRING")
		}
		return unitofwork.NewRepositoryFactory(db), nil
	default:
		return nil, fmt.Errorf("unsupported session backend: %s", cfg.Session.Backend)
	}
}

func newVectorStore(db *gorm.DB, cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.Retrieval.VectorStore {
	case "memory":
		return vsMemory.NewStorage(), nil
	case "pgvector":
		if db == nil {
			return nil, errors.New("vector store pgvector requires DB_CONNECTION_STRING")
		}
		return pgvector.NewStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported vector store: %s", cfg.Retrieval.VectorStore)
	}
}

func newLLMProvider(cfg *config.Config) (llm.LLMProvider, error) {
	baseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "openai" {
		baseURL = cfg.Ai.OpenAIBaseURL
	}
	return factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, cfg.Keys.OpenAI)
}

// NeedsDatabase reports whether the configured backends use Postgres.
func NeedsDatabase(cfg *config.Config) bool {
	return cfg.Session.Backend == "postgres" || cfg.Retrieval.VectorStore == "pgvector"
}
