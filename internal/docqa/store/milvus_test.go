package store

import (
	"context"
	"errors"
	"testing"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docqa/pkg/component/milvus"
	"github.com/kart-io/docqa/pkg/utils/json"
)

type fakeMilvus struct {
	schema  *milvus.CollectionSchema
	columns []column.Column
	hits    []milvus.SearchResult
	expr    string
	count   int64
	err     error
	closed  bool
}

var _ milvusClient = (*fakeMilvus)(nil)

func (f *fakeMilvus) EnsureCollection(_ context.Context, s *milvus.CollectionSchema) (bool, error) {
	f.schema = s
	return true, f.err
}

func (f *fakeMilvus) Upsert(_ context.Context, _ string, columns ...column.Column) (int64, error) {
	f.columns = columns
	return int64(columns[0].Len()), f.err
}

func (f *fakeMilvus) Search(_ context.Context, _, _ string, _ []float32, _ int, _ []string) ([]milvus.SearchResult, error) {
	return f.hits, f.err
}

func (f *fakeMilvus) DeleteByExpr(_ context.Context, _, expr string) (int64, error) {
	f.expr = expr
	return 0, f.err
}

func (f *fakeMilvus) Count(_ context.Context, _ string) (int64, error) {
	return f.count, f.err
}

func (f *fakeMilvus) Close(_ context.Context) error {
	f.closed = true
	return nil
}

func newTestMilvusStore(f *fakeMilvus) *MilvusStore {
	return &MilvusStore{client: f, cfg: Config{Collection: "documents", Dimension: 3, IndexCapacity: 100}}
}

func columnByName(cols []column.Column, name string) column.Column {
	for _, c := range cols {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

func TestMilvusStore_EnsureIndexSchema(t *testing.T) {
	f := &fakeMilvus{}
	s := newTestMilvusStore(f)

	require.NoError(t, s.EnsureIndex(context.Background()))
	require.NotNil(t, f.schema)
	assert.Equal(t, "documents", f.schema.Name)
	assert.Equal(t, "id", f.schema.PrimaryKey)
	assert.Equal(t, 3, f.schema.Dimension)
	assert.Equal(t, entity.COSINE, f.schema.Metric)

	names := make([]string, 0, len(f.schema.MetaFields))
	for _, mf := range f.schema.MetaFields {
		names = append(names, mf.Name)
	}
	assert.ElementsMatch(t, []string{"document_id", "file_name", "text", "chunk_index", "uploaded_at", "metadata"}, names)
}

func TestMilvusStore_Upsert(t *testing.T) {
	f := &fakeMilvus{}
	s := newTestMilvusStore(f)

	err := s.Upsert(context.Background(), []*Record{
		{
			ID: RecordID("doc1", 0), DocumentID: "doc1", FileName: "a.txt", Text: "hello",
			ChunkIndex: 0, UploadedAt: "2026-01-01T00:00:00Z",
			Metadata:  map[string]any{"page_number": 1},
			Embedding: []float32{1, 0, 0},
		},
		{
			ID: RecordID("doc1", 1), DocumentID: "doc1", FileName: "a.txt", Text: "world",
			ChunkIndex: 1, Embedding: []float32{0, 1, 0},
		},
	})
	require.NoError(t, err)

	ids, ok := columnByName(f.columns, "id").(*column.ColumnVarChar)
	require.True(t, ok)
	assert.Equal(t, []string{"doc1-chunk-0", "doc1-chunk-1"}, ids.Data())

	idx, ok := columnByName(f.columns, "chunk_index").(*column.ColumnInt64)
	require.True(t, ok)
	assert.Equal(t, []int64{0, 1}, idx.Data())

	vec, ok := columnByName(f.columns, "embedding").(*column.ColumnFloatVector)
	require.True(t, ok)
	assert.Equal(t, [][]float32{{1, 0, 0}, {0, 1, 0}}, vec.Data())

	meta, ok := columnByName(f.columns, "metadata").(*column.ColumnJSONBytes)
	require.True(t, ok)
	var m map[string]any
	require.NoError(t, json.Unmarshal(meta.Data()[0], &m))
	assert.EqualValues(t, 1, m["page_number"])
	assert.Equal(t, "{}", string(meta.Data()[1]))
}

func TestMilvusStore_UpsertDimensionMismatch(t *testing.T) {
	f := &fakeMilvus{}
	s := newTestMilvusStore(f)

	err := s.Upsert(context.Background(), []*Record{{ID: "x-chunk-0", Embedding: []float32{1, 2}}})
	require.Error(t, err)
	assert.Nil(t, f.columns, "维度不匹配时不应调用 Milvus")
}

func TestMilvusStore_UpsertEmpty(t *testing.T) {
	f := &fakeMilvus{}
	require.NoError(t, newTestMilvusStore(f).Upsert(context.Background(), nil))
	assert.Nil(t, f.columns)
}

func TestMilvusStore_Query(t *testing.T) {
	f := &fakeMilvus{hits: []milvus.SearchResult{
		{ID: "doc1-chunk-3", Score: 0.9, Fields: map[string]any{
			"document_id": "doc1", "file_name": "a.pdf", "text": "alpha", "chunk_index": int64(3),
		}},
		{ID: "doc2-chunk-0", Score: 0.4, Fields: map[string]any{
			"document_id": "doc2", "file_name": "b.txt", "text": "beta", "chunk_index": int64(0),
		}},
	}}
	s := newTestMilvusStore(f)

	matches, err := s.Query(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "doc1-chunk-3", matches[0].ID)
	require.NotNil(t, matches[0].Score)
	assert.InDelta(t, 0.9, *matches[0].Score, 1e-6)
	assert.Equal(t, "a.pdf", matches[0].FileName)
	assert.Equal(t, 3, matches[0].ChunkIndex)
	assert.Equal(t, "beta", matches[1].Text)
}

func TestMilvusStore_QueryError(t *testing.T) {
	f := &fakeMilvus{err: errors.New("rpc unavailable")}
	_, err := newTestMilvusStore(f).Query(context.Background(), []float32{1, 0, 0}, 5)
	assert.EqualError(t, err, "rpc unavailable")
}

func TestMilvusStore_DeleteByFilter(t *testing.T) {
	f := &fakeMilvus{}
	s := newTestMilvusStore(f)

	require.NoError(t, s.DeleteByFilter(context.Background(), FieldDocumentID, `doc"1`))
	assert.Equal(t, `document_id == "doc\"1"`, f.expr)

	assert.Error(t, s.DeleteByFilter(context.Background(), "text", "x"))
}

func TestMilvusStore_Stats(t *testing.T) {
	f := &fakeMilvus{count: 25}
	s := newTestMilvusStore(f)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(25), stats.TotalRecordCount)
	assert.Equal(t, int64(25), stats.Namespaces["documents"].RecordCount)
	assert.Equal(t, 3, stats.Dimension)
	assert.InDelta(t, 0.25, stats.IndexFullness, 1e-9)

	require.NoError(t, s.Close(context.Background()))
	assert.True(t, f.closed)
}
