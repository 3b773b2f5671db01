package store

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"
	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/kart-io/docqa/pkg/component/milvus"
	"github.com/kart-io/docqa/pkg/utils/json"
)

// Milvus 集合字段。
const (
	fieldID         = "id"
	fieldEmbedding  = "embedding"
	fieldFileName   = "file_name"
	fieldText       = "text"
	fieldChunkIndex = "chunk_index"
	fieldUploadedAt = "uploaded_at"
	fieldMetadata   = "metadata"
)

var outputFields = []string{FieldDocumentID, fieldFileName, fieldText, fieldChunkIndex}

// milvusClient 是 MilvusStore 依赖的客户端能力，由 *milvus.Client 实现。
type milvusClient interface {
	EnsureCollection(ctx context.Context, s *milvus.CollectionSchema) (bool, error)
	Upsert(ctx context.Context, collectionName string, columns ...column.Column) (int64, error)
	Search(ctx context.Context, collectionName, vectorField string, vector []float32, topK int, outputFields []string) ([]milvus.SearchResult, error)
	DeleteByExpr(ctx context.Context, collectionName, expr string) (int64, error)
	Count(ctx context.Context, collectionName string) (int64, error)
	Close(ctx context.Context) error
}

var _ milvusClient = (*milvus.Client)(nil)

// MilvusStore 实现基于 Milvus 的向量存储。
type MilvusStore struct {
	client milvusClient
	cfg    Config
}

var _ VectorStore = (*MilvusStore)(nil)

// NewMilvusStore 创建 Milvus 存储实例。
func NewMilvusStore(client *milvus.Client, cfg Config) *MilvusStore {
	return &MilvusStore{client: client, cfg: cfg}
}

func (s *MilvusStore) schema() *milvus.CollectionSchema {
	return &milvus.CollectionSchema{
		Name:             s.cfg.Collection,
		Description:      "docqa document chunks",
		PrimaryKey:       fieldID,
		PrimaryKeyMaxLen: 128,
		VectorField:      fieldEmbedding,
		Dimension:        s.cfg.Dimension,
		Metric:           entity.COSINE,
		MetaFields: []milvus.MetaField{
			{Name: FieldDocumentID, DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: fieldFileName, DataType: entity.FieldTypeVarChar, MaxLen: 1024},
			{Name: fieldText, DataType: entity.FieldTypeVarChar, MaxLen: 65535},
			{Name: fieldChunkIndex, DataType: entity.FieldTypeInt64},
			{Name: fieldUploadedAt, DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: fieldMetadata, DataType: entity.FieldTypeJSON},
		},
	}
}

// EnsureIndex 创建集合、COSINE IVF_FLAT 索引并加载，集合已存在时只加载。
func (s *MilvusStore) EnsureIndex(ctx context.Context) error {
	created, err := s.client.EnsureCollection(ctx, s.schema())
	if err != nil {
		return err
	}
	logger.Infow("Vector index ready",
		"collection", s.cfg.Collection,
		"dimension", s.cfg.Dimension,
		"created", created,
	)
	return nil
}

// Upsert 将一批记录按列写入。
func (s *MilvusStore) Upsert(ctx context.Context, records []*Record) error {
	if len(records) == 0 {
		return nil
	}

	n := len(records)
	ids := make([]string, n)
	vectors := make([][]float32, n)
	docIDs := make([]string, n)
	fileNames := make([]string, n)
	texts := make([]string, n)
	chunkIdx := make([]int64, n)
	uploadedAt := make([]string, n)
	metadata := make([][]byte, n)

	for i, r := range records {
		if len(r.Embedding) != s.cfg.Dimension {
			return fmt.Errorf("record %s: vector dimension %d does not match index dimension %d",
				r.ID, len(r.Embedding), s.cfg.Dimension)
		}

		meta := r.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		raw, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("record %s: encode metadata: %w", r.ID, err)
		}

		ids[i] = r.ID
		vectors[i] = r.Embedding
		docIDs[i] = r.DocumentID
		fileNames[i] = r.FileName
		texts[i] = r.Text
		chunkIdx[i] = int64(r.ChunkIndex)
		uploadedAt[i] = r.UploadedAt
		metadata[i] = raw
	}

	_, err := s.client.Upsert(ctx, s.cfg.Collection,
		column.NewColumnVarChar(fieldID, ids),
		column.NewColumnFloatVector(fieldEmbedding, s.cfg.Dimension, vectors),
		column.NewColumnVarChar(FieldDocumentID, docIDs),
		column.NewColumnVarChar(fieldFileName, fileNames),
		column.NewColumnVarChar(fieldText, texts),
		column.NewColumnInt64(fieldChunkIndex, chunkIdx),
		column.NewColumnVarChar(fieldUploadedAt, uploadedAt),
		column.NewColumnJSONBytes(fieldMetadata, metadata),
	)
	return err
}

// Query 在 embedding 字段上做 topK 检索，保留服务端返回的顺序。
// COSINE 度量下服务端按分数降序返回。
func (s *MilvusStore) Query(ctx context.Context, vector []float32, topK int) ([]*Match, error) {
	hits, err := s.client.Search(ctx, s.cfg.Collection, fieldEmbedding, vector, topK, outputFields)
	if err != nil {
		return nil, err
	}

	matches := make([]*Match, 0, len(hits))
	for _, h := range hits {
		score := h.Score
		m := &Match{
			ID:    h.ID,
			Score: &score,
		}
		m.DocumentID, _ = h.Fields[FieldDocumentID].(string)
		m.FileName, _ = h.Fields[fieldFileName].(string)
		m.Text, _ = h.Fields[fieldText].(string)
		if idx, ok := h.Fields[fieldChunkIndex].(int64); ok {
			m.ChunkIndex = int(idx)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// DeleteByFilter 删除 field == value 的记录。
func (s *MilvusStore) DeleteByFilter(ctx context.Context, field, value string) error {
	if field != FieldDocumentID {
		return fmt.Errorf("unsupported filter field %q", field)
	}
	deleted, err := s.client.DeleteByExpr(ctx, s.cfg.Collection, milvus.EqualExpr(field, value))
	if err != nil {
		return err
	}
	logger.Debugw("Vectors deleted", "field", field, "value", value, "deleted", deleted)
	return nil
}

// Stats 返回集合记录数。
func (s *MilvusStore) Stats(ctx context.Context) (*Stats, error) {
	count, err := s.client.Count(ctx, s.cfg.Collection)
	if err != nil {
		return nil, err
	}
	return s.cfg.stats(count), nil
}

// Close 关闭 Milvus 连接。
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}
