// Package docqa 提供文档问答服务的业务配置。
package docqa

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/docqa/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options 文档问答配置。
type Options struct {
	// VectorStore 向量库后端：milvus 或 memory（单进程，仅用于本地调试）。
	VectorStore string `json:"vector-store" mapstructure:"vector-store"`
	// Collection 向量集合名。
	Collection string `json:"collection" mapstructure:"collection"`
	// Dimension 向量维度，必须与 embedding 模型输出一致。
	Dimension int `json:"dimension" mapstructure:"dimension"`
	// ChunkSize 分块最大字符数。
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`
	// ChunkOverlap 相邻分块重叠字符数。
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`
	// TopK 默认检索条数。
	TopK int `json:"top-k" mapstructure:"top-k"`
	// SimilarityThreshold 默认相似度阈值，最佳匹配低于该值时按闲聊处理。
	SimilarityThreshold float64 `json:"similarity-threshold" mapstructure:"similarity-threshold"`
	// MaxUploadSize 上传文件大小上限（字节）。
	MaxUploadSize int64 `json:"max-upload-size" mapstructure:"max-upload-size"`
	// UploadDir 上传文件临时目录。
	UploadDir string `json:"upload-dir" mapstructure:"upload-dir"`
	// UpsertBatchSize 每批写入的向量数。
	UpsertBatchSize int `json:"upsert-batch-size" mapstructure:"upsert-batch-size"`
	// IndexCapacity 索引容量，用于计算 indexFullness，0 表示未知。
	IndexCapacity int64 `json:"index-capacity" mapstructure:"index-capacity"`
	// QueryEmbeddingCacheTTL 查询向量缓存时长，仅在启用 redis 时生效。
	QueryEmbeddingCacheTTL time.Duration `json:"query-embedding-cache-ttl" mapstructure:"query-embedding-cache-ttl"`
}

// NewOptions 返回默认配置。
func NewOptions() *Options {
	return &Options{
		VectorStore:            "milvus",
		Collection:             "documents",
		Dimension:              768,
		ChunkSize:              1000,
		ChunkOverlap:           200,
		TopK:                   5,
		SimilarityThreshold:    0.3,
		MaxUploadSize:          10 << 20,
		UploadDir:              filepath.Join(os.TempDir(), "docqa-uploads"),
		UpsertBatchSize:        100,
		QueryEmbeddingCacheTTL: 24 * time.Hour,
	}
}

// AddFlags 注册 docqa.* flag。
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(append(prefixes, "docqa")...)
	fs.StringVar(&o.VectorStore, p+"vector-store", o.VectorStore, "Vector store backend: milvus or memory.")
	fs.StringVar(&o.Collection, p+"collection", o.Collection, "Vector collection name.")
	fs.IntVar(&o.Dimension, p+"dimension", o.Dimension, "Embedding dimension; must match the embedding model.")
	fs.IntVar(&o.ChunkSize, p+"chunk-size", o.ChunkSize, "Maximum characters per chunk.")
	fs.IntVar(&o.ChunkOverlap, p+"chunk-overlap", o.ChunkOverlap, "Characters shared by consecutive chunks.")
	fs.IntVar(&o.TopK, p+"top-k", o.TopK, "Default number of matches to retrieve.")
	fs.Float64Var(&o.SimilarityThreshold, p+"similarity-threshold", o.SimilarityThreshold, "Best-match score below which a query is answered conversationally.")
	fs.Int64Var(&o.MaxUploadSize, p+"max-upload-size", o.MaxUploadSize, "Maximum upload size in bytes.")
	fs.StringVar(&o.UploadDir, p+"upload-dir", o.UploadDir, "Directory for temporary upload files.")
	fs.IntVar(&o.UpsertBatchSize, p+"upsert-batch-size", o.UpsertBatchSize, "Records per vector store upsert call.")
	fs.Int64Var(&o.IndexCapacity, p+"index-capacity", o.IndexCapacity, "Index capacity used to report fullness; 0 reports 0.")
	fs.DurationVar(&o.QueryEmbeddingCacheTTL, p+"query-embedding-cache-ttl", o.QueryEmbeddingCacheTTL, "TTL of cached query embeddings when redis is enabled.")
}

// Validate 校验配置。
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	switch o.VectorStore {
	case "milvus", "memory":
	default:
		errs = append(errs, fmt.Errorf("docqa.vector-store %q must be milvus or memory", o.VectorStore))
	}
	if o.Collection == "" {
		errs = append(errs, errors.New("docqa.collection is required"))
	}
	if o.Dimension <= 0 {
		errs = append(errs, errors.New("docqa.dimension must be positive"))
	}
	if o.ChunkSize <= 0 {
		errs = append(errs, errors.New("docqa.chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("docqa.chunk-overlap must be in [0, %d)", o.ChunkSize))
	}
	if o.TopK < 1 || o.TopK > 100 {
		errs = append(errs, errors.New("docqa.top-k must be in [1, 100]"))
	}
	if o.MaxUploadSize <= 0 {
		errs = append(errs, errors.New("docqa.max-upload-size must be positive"))
	}
	if o.UploadDir == "" {
		errs = append(errs, errors.New("docqa.upload-dir is required"))
	}
	if o.UpsertBatchSize <= 0 {
		errs = append(errs, errors.New("docqa.upsert-batch-size must be positive"))
	}
	if o.IndexCapacity < 0 {
		errs = append(errs, errors.New("docqa.index-capacity must not be negative"))
	}
	return errs
}
