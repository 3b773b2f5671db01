package store

import (
	"context"
	"fmt"
)

// FieldDocumentID 按文档删除时使用的过滤字段。
const FieldDocumentID = "document_id"

// Record 一条待写入的分块向量。
type Record struct {
	// ID 记录主键，格式为 {documentId}-chunk-{index}。
	ID string
	// DocumentID 所属文档 ID。
	DocumentID string
	// FileName 原始文件名。
	FileName string
	// Text 分块原文。
	Text string
	// ChunkIndex 分块在文档内的序号，从 0 开始。
	ChunkIndex int
	// UploadedAt 上传时间，RFC3339。
	UploadedAt string
	// Metadata 已清洗的来源元数据，只含基本类型和字符串数组。
	Metadata map[string]any
	// Embedding 向量。
	Embedding []float32
}

// RecordID 返回分块记录的主键。
func RecordID(documentID string, chunkIndex int) string {
	return fmt.Sprintf("%s-chunk-%d", documentID, chunkIndex)
}

// Match 一条相似度检索结果。
type Match struct {
	ID string
	// Score 相似度，越高越相似；后端未返回分数时为 nil。
	Score      *float32
	DocumentID string
	FileName   string
	Text       string
	ChunkIndex int
}

// NamespaceStats 单个命名空间（集合）的统计。
type NamespaceStats struct {
	RecordCount int64 `json:"recordCount"`
}

// Stats 索引统计。
type Stats struct {
	Namespaces       map[string]NamespaceStats `json:"namespaces"`
	Dimension        int                       `json:"dimension"`
	IndexFullness    float64                   `json:"indexFullness"`
	TotalRecordCount int64                     `json:"totalRecordCount"`
}

// Config 向量存储配置。
type Config struct {
	// Collection 集合名。
	Collection string
	// Dimension 向量维度。
	Dimension int
	// IndexCapacity 索引容量，用于计算 IndexFullness，0 表示未知。
	IndexCapacity int64
}

// fullness 按容量计算占用比例，容量未知时为 0。
func (c *Config) fullness(count int64) float64 {
	if c.IndexCapacity <= 0 {
		return 0
	}
	return float64(count) / float64(c.IndexCapacity)
}

func (c *Config) stats(count int64) *Stats {
	return &Stats{
		Namespaces: map[string]NamespaceStats{
			c.Collection: {RecordCount: count},
		},
		Dimension:        c.Dimension,
		IndexFullness:    c.fullness(count),
		TotalRecordCount: count,
	}
}

// VectorStore 定义向量存储接口。
type VectorStore interface {
	// EnsureIndex 集合不存在时创建，幂等。
	EnsureIndex(ctx context.Context) error

	// Upsert 按 ID 写入或覆盖记录。
	Upsert(ctx context.Context, records []*Record) error

	// Query 返回与 vector 最相似的 topK 条记录，按相似度降序。
	Query(ctx context.Context, vector []float32, topK int) ([]*Match, error)

	// DeleteByFilter 删除 field 等于 value 的全部记录，无匹配时为空操作。
	DeleteByFilter(ctx context.Context, field, value string) error

	// Stats 返回记录数、维度与占用比例。
	Stats(ctx context.Context) (*Stats, error)

	// Close 关闭连接。
	Close(ctx context.Context) error
}
