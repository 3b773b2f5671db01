package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryStore() *MemoryStore {
	return NewMemoryStore(Config{Collection: "documents", Dimension: 2})
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, "abc-chunk-0", RecordID("abc", 0))
	assert.Equal(t, "abc-chunk-12", RecordID("abc", 12))
}

func TestMemoryStore_QueryOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestMemoryStore()
	require.NoError(t, s.EnsureIndex(ctx))

	require.NoError(t, s.Upsert(ctx, []*Record{
		{ID: "a-chunk-0", DocumentID: "a", Text: "same", Embedding: []float32{1, 0}},
		{ID: "b-chunk-0", DocumentID: "b", Text: "diagonal", Embedding: []float32{1, 1}},
		{ID: "c-chunk-0", DocumentID: "c", Text: "orthogonal", Embedding: []float32{0, 1}},
	}))

	matches, err := s.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a-chunk-0", matches[0].ID)
	assert.Equal(t, "b-chunk-0", matches[1].ID)
	assert.Greater(t, *matches[0].Score, *matches[1].Score)
}

func TestMemoryStore_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestMemoryStore()

	require.NoError(t, s.Upsert(ctx, []*Record{{ID: "a-chunk-0", DocumentID: "a", Text: "v1", Embedding: []float32{1, 0}}}))
	require.NoError(t, s.Upsert(ctx, []*Record{{ID: "a-chunk-0", DocumentID: "a", Text: "v2", Embedding: []float32{1, 0}}}))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalRecordCount)

	r, ok := s.Get("a-chunk-0")
	require.True(t, ok)
	assert.Equal(t, "v2", r.Text)
}

func TestMemoryStore_DeleteByFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestMemoryStore()

	require.NoError(t, s.Upsert(ctx, []*Record{
		{ID: "a-chunk-0", DocumentID: "a", Embedding: []float32{1, 0}},
		{ID: "a-chunk-1", DocumentID: "a", Embedding: []float32{1, 0}},
		{ID: "b-chunk-0", DocumentID: "b", Embedding: []float32{1, 0}},
	}))

	require.NoError(t, s.DeleteByFilter(ctx, FieldDocumentID, "a"))
	stats, _ := s.Stats(ctx)
	assert.Equal(t, int64(1), stats.TotalRecordCount)

	// 幂等
	require.NoError(t, s.DeleteByFilter(ctx, FieldDocumentID, "a"))
	require.NoError(t, s.DeleteByFilter(ctx, FieldDocumentID, "missing"))
	stats, _ = s.Stats(ctx)
	assert.Equal(t, int64(1), stats.TotalRecordCount)

	assert.Error(t, s.DeleteByFilter(ctx, "file_name", "x"))
}

func TestMemoryStore_DimensionChecks(t *testing.T) {
	ctx := context.Background()
	s := newTestMemoryStore()

	assert.Error(t, s.Upsert(ctx, []*Record{{ID: "a-chunk-0", Embedding: []float32{1, 0, 0}}}))
	_, err := s.Query(ctx, []float32{1}, 5)
	assert.Error(t, err)

	assert.Error(t, NewMemoryStore(Config{}).EnsureIndex(ctx))
}

func TestMemoryStore_EmptyQuery(t *testing.T) {
	matches, err := newTestMemoryStore().Query(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestStatsFullness(t *testing.T) {
	cfg := Config{Collection: "c", Dimension: 2}
	assert.Zero(t, cfg.stats(10).IndexFullness)

	cfg.IndexCapacity = 40
	assert.InDelta(t, 0.25, cfg.stats(10).IndexFullness, 1e-9)
}
