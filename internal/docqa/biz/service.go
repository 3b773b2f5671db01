package biz

import (
	"context"
	"errors"
	"time"

	"github.com/kart-io/docqa/internal/docqa/metrics"
	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/pkg/infra/pool"
	"github.com/kart-io/docqa/pkg/llm"
	"github.com/kart-io/docqa/pkg/utils/id"
)

// Service 定义文档问答服务接口。
type Service interface {
	// Ingest 处理一个上传文件，返回新文档 ID。
	Ingest(ctx context.Context, req *IngestRequest) (*IngestResult, error)
	// Query 回答问题并给出引用来源。
	Query(ctx context.Context, req *QueryRequest) (*QueryResult, error)
	// DeleteDocument 删除文档的全部分块向量，幂等。
	DeleteDocument(ctx context.Context, documentID string) error
	// Stats 返回索引统计。
	Stats(ctx context.Context) (*store.Stats, error)
}

// Config 业务配置。
type Config struct {
	// ChunkSize 分块最大字符数。
	ChunkSize int
	// ChunkOverlap 相邻分块重叠字符数。
	ChunkOverlap int
	// Dimension 向量维度。
	Dimension int
	// TopK 默认检索条数。
	TopK int
	// SimilarityThreshold 默认置信度阈值。
	SimilarityThreshold float64
	// MaxUploadSize 上传文件大小上限（字节）。
	MaxUploadSize int64
	// UploadDir 临时文件目录。
	UploadDir string
	// UpsertBatchSize 每批写入条数。
	UpsertBatchSize int
}

// Deps 外部依赖。QueryEmbedder、Metrics、IDs、Now 可为空。
type Deps struct {
	Store    store.VectorStore
	Embedder llm.EmbeddingProvider
	// QueryEmbedder 用于问题向量化，可带缓存；为空时使用 Embedder。
	QueryEmbedder llm.EmbeddingProvider
	Chat          llm.ChatProvider
	Pool          *pool.Pool
	Metrics       *metrics.Metrics
	IDs           id.Generator
	Now           func() time.Time
}

// DocQAService 文档问答服务实现。
type DocQAService struct {
	store         store.VectorStore
	embedder      llm.EmbeddingProvider
	queryEmbedder llm.EmbeddingProvider
	chat          llm.ChatProvider
	pool          *pool.Pool
	metrics       *metrics.Metrics
	ids           id.Generator
	now           func() time.Time
	cfg           Config
}

var _ Service = (*DocQAService)(nil)

// NewService 创建服务实例。
func NewService(deps *Deps, cfg *Config) (*DocQAService, error) {
	if deps == nil || cfg == nil {
		return nil, errors.New("biz: deps and config are required")
	}
	if deps.Store == nil || deps.Embedder == nil || deps.Chat == nil || deps.Pool == nil {
		return nil, errors.New("biz: store, embedder, chat and pool are required")
	}
	if cfg.Dimension <= 0 {
		return nil, errors.New("biz: dimension must be positive")
	}

	s := &DocQAService{
		store:         deps.Store,
		embedder:      deps.Embedder,
		queryEmbedder: deps.QueryEmbedder,
		chat:          deps.Chat,
		pool:          deps.Pool,
		metrics:       deps.Metrics,
		ids:           deps.IDs,
		now:           deps.Now,
		cfg:           *cfg,
	}
	if s.queryEmbedder == nil {
		s.queryEmbedder = s.embedder
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.ids == nil {
		s.ids = id.ULIDGenerator
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.cfg.UpsertBatchSize <= 0 {
		s.cfg.UpsertBatchSize = 100
	}
	if s.cfg.TopK <= 0 {
		s.cfg.TopK = 5
	}
	return s, nil
}

// Metrics 返回业务指标快照。
func (s *DocQAService) Metrics() metrics.Snapshot {
	return s.metrics.Snapshot()
}
