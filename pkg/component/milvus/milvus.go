// Package milvus 封装 Milvus SDK 客户端：集合初始化、写入、检索、按表达式删除与计数。
package milvus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	milvusopts "github.com/kart-io/docqa/pkg/options/milvus"
)

// Client wraps the Milvus SDK client.
type Client struct {
	client *milvusclient.Client
	opts   *milvusopts.Options
}

// New creates a new Milvus client. The connect phase is bounded by opts.Timeout.
func New(ctx context.Context, opts *milvusopts.Options) (*Client, error) {
	if opts == nil {
		return nil, errors.New("milvus options is nil")
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address:  opts.Address,
		Username: opts.Username,
		Password: opts.Password,
		DBName:   opts.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus at %s: %w", opts.Address, err)
	}

	return &Client{client: c, opts: opts}, nil
}

// Close closes the Milvus client connection.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

// CollectionSchema 描述一个以字符串为主键的向量集合。
type CollectionSchema struct {
	Name        string
	Description string

	// PrimaryKey 主键字段名，类型为 VarChar，由调用方赋值。
	PrimaryKey       string
	PrimaryKeyMaxLen int

	VectorField string
	Dimension   int

	MetaFields []MetaField

	// Metric 相似度度量，默认 COSINE（分数越高越相似）。
	Metric entity.MetricType
	// NList IVF_FLAT 聚类数，默认 128。
	NList int

	// ConsistencyLevel 集合默认一致性级别。零值为 Strong，写入后立即可检索。
	ConsistencyLevel entity.ConsistencyLevel
}

// MetaField defines a scalar field in the collection.
type MetaField struct {
	Name     string
	DataType entity.FieldType
	MaxLen   int // VarChar only
}

func (s *CollectionSchema) withDefaults() *CollectionSchema {
	out := *s
	if out.PrimaryKey == "" {
		out.PrimaryKey = "id"
	}
	if out.PrimaryKeyMaxLen <= 0 {
		out.PrimaryKeyMaxLen = 256
	}
	if out.VectorField == "" {
		out.VectorField = "embedding"
	}
	if out.Metric == "" {
		out.Metric = entity.COSINE
	}
	if out.NList <= 0 {
		out.NList = 128
	}
	return &out
}

// buildSchema 将 CollectionSchema 转为 SDK schema。
func buildSchema(s *CollectionSchema) *entity.Schema {
	schema := entity.NewSchema().
		WithName(s.Name).
		WithDescription(s.Description).
		WithAutoID(false)

	schema.WithField(
		entity.NewField().
			WithName(s.PrimaryKey).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(int64(s.PrimaryKeyMaxLen)).
			WithIsPrimaryKey(true).
			WithIsAutoID(false),
	)

	schema.WithField(
		entity.NewField().
			WithName(s.VectorField).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(s.Dimension)),
	)

	for _, f := range s.MetaFields {
		field := entity.NewField().
			WithName(f.Name).
			WithDataType(f.DataType)
		if f.DataType == entity.FieldTypeVarChar {
			maxLen := f.MaxLen
			if maxLen <= 0 {
				maxLen = 512
			}
			field.WithMaxLength(int64(maxLen))
		}
		schema.WithField(field)
	}

	return schema
}

// EnsureCollection 集合不存在时创建并建索引，最后确保集合已加载。
// 返回值表示本次是否新建了集合。索引构建与加载均等待完成后返回。
func (c *Client) EnsureCollection(ctx context.Context, s *CollectionSchema) (bool, error) {
	if s == nil || s.Name == "" {
		return false, errors.New("collection name is required")
	}
	if s.Dimension <= 0 {
		return false, fmt.Errorf("invalid vector dimension %d", s.Dimension)
	}
	s = s.withDefaults()

	exists, err := c.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.Name))
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		createOpt := milvusclient.NewCreateCollectionOption(s.Name, buildSchema(s)).
			WithConsistencyLevel(s.ConsistencyLevel)
		if err := c.client.CreateCollection(ctx, createOpt); err != nil {
			return false, fmt.Errorf("failed to create collection: %w", err)
		}

		idx := index.NewIvfFlatIndex(s.Metric, s.NList)
		idxTask, err := c.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(s.Name, s.VectorField, idx))
		if err != nil {
			return true, fmt.Errorf("failed to create index: %w", err)
		}
		if err := idxTask.Await(ctx); err != nil {
			return true, fmt.Errorf("failed to wait for index creation: %w", err)
		}
	}

	loadTask, err := c.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(s.Name))
	if err != nil {
		return !exists, fmt.Errorf("failed to load collection: %w", err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return !exists, fmt.Errorf("failed to wait for collection loading: %w", err)
	}

	return !exists, nil
}

// Upsert 按主键写入或覆盖一批记录，返回写入条数。
func (c *Client) Upsert(ctx context.Context, collectionName string, columns ...column.Column) (int64, error) {
	if len(columns) == 0 {
		return 0, nil
	}

	result, err := c.client.Upsert(ctx, milvusclient.NewColumnBasedInsertOption(collectionName, columns...))
	if err != nil {
		return 0, fmt.Errorf("failed to upsert data: %w", err)
	}
	return result.UpsertCount, nil
}

// SearchResult represents a single search hit.
type SearchResult struct {
	ID     string
	Score  float32
	Fields map[string]any
}

// Search 在 vectorField 上做 topK 近邻检索，结果按服务端返回顺序排列。
func (c *Client) Search(ctx context.Context, collectionName, vectorField string, vector []float32, topK int, outputFields []string) ([]SearchResult, error) {
	results, err := c.client.Search(ctx, milvusclient.NewSearchOption(
		collectionName,
		topK,
		[]entity.Vector{entity.FloatVector(vector)},
	).WithANNSField(vectorField).
		WithSearchParam("nprobe", "16").
		WithOutputFields(outputFields...))
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	if len(results) == 0 {
		return []SearchResult{}, nil
	}

	rs := results[0]
	out := make([]SearchResult, 0, rs.ResultCount)
	for i := 0; i < rs.ResultCount; i++ {
		hit := SearchResult{
			Fields: make(map[string]any, len(rs.Fields)),
		}
		if i < len(rs.Scores) {
			hit.Score = rs.Scores[i]
		}

		switch ids := rs.IDs.(type) {
		case *column.ColumnVarChar:
			hit.ID = ids.Data()[i]
		case *column.ColumnInt64:
			hit.ID = strconv.FormatInt(ids.Data()[i], 10)
		}

		for _, field := range rs.Fields {
			switch col := field.(type) {
			case *column.ColumnVarChar:
				hit.Fields[col.Name()] = col.Data()[i]
			case *column.ColumnInt64:
				hit.Fields[col.Name()] = col.Data()[i]
			case *column.ColumnJSONBytes:
				hit.Fields[col.Name()] = col.Data()[i]
			}
		}

		out = append(out, hit)
	}

	return out, nil
}

// DeleteByExpr 删除匹配布尔表达式的全部记录。无匹配时为空操作。
func (c *Client) DeleteByExpr(ctx context.Context, collectionName, expr string) (int64, error) {
	result, err := c.client.Delete(ctx, milvusclient.NewDeleteOption(collectionName).WithExpr(expr))
	if err != nil {
		return 0, fmt.Errorf("failed to delete by expr: %w", err)
	}
	return result.DeleteCount, nil
}

// Count 返回集合当前记录数。
// 优先使用强一致的 count(*) 查询，它会扣除已删除记录；失败时退回到集合统计中的 row_count。
func (c *Client) Count(ctx context.Context, collectionName string) (int64, error) {
	rs, err := c.client.Query(ctx, milvusclient.NewQueryOption(collectionName).
		WithOutputFields("count(*)").
		WithConsistencyLevel(entity.ClStrong))
	if err == nil {
		if col, ok := rs.GetColumn("count(*)").(*column.ColumnInt64); ok && col.Len() > 0 {
			return col.Data()[0], nil
		}
	}

	stats, err := c.client.GetCollectionStats(ctx, milvusclient.NewGetCollectionStatsOption(collectionName))
	if err != nil {
		return 0, fmt.Errorf("failed to get collection stats: %w", err)
	}
	if val, ok := stats["row_count"]; ok {
		return strconv.ParseInt(val, 10, 64)
	}
	return 0, nil
}

var exprEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// EqualExpr 构造 `field == "value"` 过滤表达式，并转义值中的引号与反斜杠。
func EqualExpr(field, value string) string {
	return field + ` == "` + exprEscaper.Replace(value) + `"`
}
