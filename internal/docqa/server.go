// Package docqasvc 组装文档问答服务：日志、向量库、模型供应商、worker pool、HTTP 服务。
package docqasvc

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/docqa/internal/docqa/biz"
	"github.com/kart-io/docqa/internal/docqa/handler"
	"github.com/kart-io/docqa/internal/docqa/metrics"
	"github.com/kart-io/docqa/internal/docqa/router"
	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/internal/pkg/rag/docutil"
	"github.com/kart-io/docqa/pkg/component/milvus"
	"github.com/kart-io/docqa/pkg/component/redis"
	"github.com/kart-io/docqa/pkg/infra/app"
	"github.com/kart-io/docqa/pkg/infra/pool"
	"github.com/kart-io/docqa/pkg/infra/server"
	httpserver "github.com/kart-io/docqa/pkg/infra/server/transport/http"
	"github.com/kart-io/docqa/pkg/llm"
	// 导入 LLM 供应商以自动注册
	_ "github.com/kart-io/docqa/pkg/llm/gemini"
	_ "github.com/kart-io/docqa/pkg/llm/ollama"
	_ "github.com/kart-io/docqa/pkg/llm/openai"
	docqaopts "github.com/kart-io/docqa/pkg/options/docqa"
	llmopts "github.com/kart-io/docqa/pkg/options/llm"
	logopts "github.com/kart-io/docqa/pkg/options/logger"
	middlewareopts "github.com/kart-io/docqa/pkg/options/middleware"
	milvusopts "github.com/kart-io/docqa/pkg/options/milvus"
	poolopts "github.com/kart-io/docqa/pkg/options/pool"
	redisopts "github.com/kart-io/docqa/pkg/options/redis"
	httpopts "github.com/kart-io/docqa/pkg/options/server/http"
)

// Name 服务名。
const Name = "docqa"

// embeddingCachePrefix 查询向量缓存键前缀。
const embeddingCachePrefix = "docqa:emb:"

// Config 服务运行所需的全部配置。
type Config struct {
	HTTPOptions       *httpopts.Options
	LogOptions        *logopts.Options
	MilvusOptions     *milvusopts.Options
	RedisOptions      *redisopts.Options
	EmbeddingOptions  *llmopts.ProviderOptions
	ChatOptions       *llmopts.ProviderOptions
	DocQAOptions      *docqaopts.Options
	MiddlewareOptions *middlewareopts.Options
	PoolOptions       *poolopts.Options
	ShutdownTimeout   time.Duration
}

// Server 文档问答服务。
type Server struct {
	mgr     *server.Manager
	pool    *pool.Pool
	store   store.VectorStore
	redis   *redis.Client
	metrics *metrics.Metrics
}

// NewServer 初始化全部依赖。任一步骤失败时释放已创建的资源并返回错误。
func (cfg *Config) NewServer(ctx context.Context) (_ *Server, err error) {
	printBanner(cfg)

	// 1. 初始化日志
	if err := cfg.LogOptions.Init("service.name", Name, "service.version", app.GetVersion()); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting docqa service...")

	s := &Server{metrics: metrics.New()}
	defer func() {
		if err != nil {
			s.release()
		}
	}()

	// 2. 初始化 LLM 供应商
	embedProvider, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	logger.Infow("Embedding provider initialized",
		"provider", cfg.EmbeddingOptions.Provider,
		"model", cfg.EmbeddingOptions.Model,
	)

	chatProvider, err := llm.NewChatProvider(cfg.ChatOptions.Provider, cfg.ChatOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	logger.Infow("Chat provider initialized",
		"provider", cfg.ChatOptions.Provider,
		"model", cfg.ChatOptions.Model,
	)
	warnUnreachable(ctx, "embedding", embedProvider)
	warnUnreachable(ctx, "chat", chatProvider)

	// 3. 初始化向量库并确保索引存在
	s.store, err = cfg.newVectorStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure vector index: %w", err)
	}
	logger.Infow("Vector store initialized",
		"backend", cfg.DocQAOptions.VectorStore,
		"collection", cfg.DocQAOptions.Collection,
		"dimension", cfg.DocQAOptions.Dimension,
	)

	if err := docutil.EnsureDir(cfg.DocQAOptions.UploadDir); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	// 4. 可选的查询向量缓存
	var queryEmbedder llm.EmbeddingProvider
	if cfg.RedisOptions.Enabled {
		rc, rerr := redis.NewWithContext(ctx, cfg.RedisOptions)
		if rerr != nil {
			logger.Warnw("failed to connect to redis, query embedding cache will be disabled", "error", rerr.Error())
		} else {
			s.redis = rc
			queryEmbedder = llm.NewCachedEmbeddingProvider(embedProvider, rc.Client(), &llm.EmbeddingCacheConfig{
				TTL:       cfg.DocQAOptions.QueryEmbeddingCacheTTL,
				KeyPrefix: embeddingCachePrefix,
			})
			logger.Infow("Query embedding cache initialized",
				"redis", cfg.RedisOptions.String(),
				"ttl", cfg.DocQAOptions.QueryEmbeddingCacheTTL.String(),
			)
		}
	} else {
		logger.Info("Query embedding cache is disabled")
	}

	// 5. 初始化 embedding 扇出 worker pool
	s.pool, err = pool.NewPool("embedding", &pool.Config{
		Capacity:       cfg.PoolOptions.Capacity,
		ExpiryDuration: cfg.PoolOptions.ExpiryDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	// 6. 初始化 Biz 层
	svc, err := biz.NewService(&biz.Deps{
		Store:         s.store,
		Embedder:      embedProvider,
		QueryEmbedder: queryEmbedder,
		Chat:          chatProvider,
		Pool:          s.pool,
		Metrics:       s.metrics,
	}, cfg.bizConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create docqa service: %w", err)
	}
	logger.Infow("DocQA service initialized",
		"chunk_size", cfg.DocQAOptions.ChunkSize,
		"chunk_overlap", cfg.DocQAOptions.ChunkOverlap,
		"top_k", cfg.DocQAOptions.TopK,
		"similarity_threshold", cfg.DocQAOptions.SimilarityThreshold,
	)

	// 7. 初始化 HTTP 服务与路由
	h := handler.NewDocQAHandler(svc, cfg.DocQAOptions.MaxUploadSize, app.GetVersion())
	httpSrv := httpserver.NewServer(cfg.HTTPOptions, cfg.MiddlewareOptions)
	router.Register(httpSrv.Engine(), h, cfg.MiddlewareOptions.Auth)

	s.mgr = server.NewManager(cfg.ShutdownTimeout, httpSrv)

	logger.Info("DocQA service is ready")
	return s, nil
}

func (cfg *Config) newVectorStore(ctx context.Context) (store.VectorStore, error) {
	storeCfg := store.Config{
		Collection:    cfg.DocQAOptions.Collection,
		Dimension:     cfg.DocQAOptions.Dimension,
		IndexCapacity: cfg.DocQAOptions.IndexCapacity,
	}

	switch cfg.DocQAOptions.VectorStore {
	case "memory":
		logger.Warn("Using the in-memory vector store; documents are lost on restart")
		return store.NewMemoryStore(storeCfg), nil
	default:
		client, err := milvus.New(ctx, cfg.MilvusOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize milvus: %w", err)
		}
		logger.Infow("Milvus client initialized", "address", cfg.MilvusOptions.Address)
		return store.NewMilvusStore(client, storeCfg), nil
	}
}

func (cfg *Config) bizConfig() *biz.Config {
	o := cfg.DocQAOptions
	return &biz.Config{
		ChunkSize:           o.ChunkSize,
		ChunkOverlap:        o.ChunkOverlap,
		Dimension:           o.Dimension,
		TopK:                o.TopK,
		SimilarityThreshold: o.SimilarityThreshold,
		MaxUploadSize:       o.MaxUploadSize,
		UploadDir:           o.UploadDir,
		UpsertBatchSize:     o.UpsertBatchSize,
	}
}

// Run 启动服务，阻塞到 ctx 结束后优雅关闭并释放资源。
func (s *Server) Run(ctx context.Context) error {
	defer s.release()
	return s.mgr.Run(ctx)
}

// release 在 HTTP 服务停止后释放 worker pool、向量库与 redis 连接，并输出指标快照。
func (s *Server) release() {
	var poolStats pool.Stats
	if s.pool != nil {
		poolStats = s.pool.Stats()
		s.pool.Release()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.store != nil {
		if err := s.store.Close(ctx); err != nil {
			logger.Warnw("failed to close vector store", "error", err.Error())
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.Warnw("failed to close redis", "error", err.Error())
		}
	}

	snap := s.metrics.Snapshot()
	logger.Infow("DocQA service stopped",
		"uploads", snap.Uploads.Total,
		"uploads_failed", snap.Uploads.Failed,
		"chunks_stored", snap.Uploads.ChunksStored,
		"deletes", snap.Deletes.Total,
		"queries_grounded", snap.Queries.Grounded,
		"queries_no_match", snap.Queries.NoMatch,
		"queries_low_confidence", snap.Queries.LowConfidence,
		"queries_failed", snap.Queries.Failed,
		"llm_calls", snap.LLM.Calls,
		"llm_avg_ms", snap.LLM.AvgDurationMs,
		"embed_calls", snap.Embedding.Calls,
		"embed_avg_ms", snap.Embedding.AvgDurationMs,
		"pool_submitted", poolStats.Submitted,
		"pool_completed", poolStats.Completed,
		"pool_rejected", poolStats.Rejected,
		"pool_panics", poolStats.Panics,
		"uptime_seconds", snap.Uptime,
	)
	_ = logger.Flush()
}

// warnUnreachable 启动时探测供应商，不可达只记录警告，首个请求仍会按上游错误返回。
func warnUnreachable(ctx context.Context, role string, p any) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := llm.CheckReachable(pingCtx, p); err != nil {
		logger.Warnw("LLM provider unreachable", "role", role, "error", err.Error())
	}
}

func printBanner(cfg *Config) {
	fmt.Printf("Starting %s %s...\n", Name, app.GetVersion())
	fmt.Printf("  HTTP: %s\n", cfg.HTTPOptions.Addr)
	fmt.Printf("  Vector store: %s (%s)\n", cfg.DocQAOptions.VectorStore, cfg.DocQAOptions.Collection)
	fmt.Printf("  Embedding: %s (%s)\n", cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.Model)
	fmt.Printf("  Chat: %s (%s)\n", cfg.ChatOptions.Provider, cfg.ChatOptions.Model)
}
