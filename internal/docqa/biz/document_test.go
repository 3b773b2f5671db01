package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docqa/internal/docqa/store"
	utilerrors "github.com/kart-io/docqa/pkg/utils/errors"
)

func TestDeleteDocument(t *testing.T) {
	t.Run("缺少 ID", func(t *testing.T) {
		ss := &scriptedStore{}
		svc := newTestService(t, ss, &fakeEmbedder{}, &fakeChat{}, nil)

		err := svc.DeleteDocument(context.Background(), "  ")
		assert.True(t, errors.Is(err, utilerrors.ErrDocQADocumentIDMissing))
		assert.Empty(t, ss.deleted)
	})

	t.Run("不存在的文档同样成功", func(t *testing.T) {
		ms := store.NewMemoryStore(store.Config{Collection: "documents", Dimension: testDim})
		svc := newTestService(t, ms, &fakeEmbedder{}, &fakeChat{}, nil)

		require.NoError(t, svc.DeleteDocument(context.Background(), "missing"))
		require.NoError(t, svc.DeleteDocument(context.Background(), "missing"))
		assert.Equal(t, uint64(2), svc.Metrics().Deletes.Total)
	})

	t.Run("按 document_id 过滤", func(t *testing.T) {
		ss := &scriptedStore{}
		svc := newTestService(t, ss, &fakeEmbedder{}, &fakeChat{}, nil)

		require.NoError(t, svc.DeleteDocument(context.Background(), " abc "))
		assert.Equal(t, []string{"abc"}, ss.deleted)
	})

	t.Run("向量库失败", func(t *testing.T) {
		ss := &scriptedStore{deleteErr: errors.New("timeout")}
		svc := newTestService(t, ss, &fakeEmbedder{}, &fakeChat{}, nil)

		err := svc.DeleteDocument(context.Background(), "abc")
		assert.True(t, errors.Is(err, utilerrors.ErrDocQAVectorStoreFailed))
		assert.Equal(t, uint64(1), svc.Metrics().Deletes.Failed)
	})
}

func TestStats(t *testing.T) {
	want := &store.Stats{
		Namespaces:       map[string]store.NamespaceStats{"": {RecordCount: 7}},
		Dimension:        testDim,
		TotalRecordCount: 7,
	}
	svc := newTestService(t, &scriptedStore{stats: want}, &fakeEmbedder{}, &fakeChat{}, nil)

	got, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	svc = newTestService(t, &scriptedStore{statsErr: errors.New("down")}, &fakeEmbedder{}, &fakeChat{}, nil)
	_, err = svc.Stats(context.Background())
	assert.True(t, errors.Is(err, utilerrors.ErrDocQAVectorStoreFailed))
}

func TestNewService_RequiresDeps(t *testing.T) {
	_, err := NewService(nil, nil)
	assert.Error(t, err)

	_, err = NewService(&Deps{Store: &scriptedStore{}}, &Config{Dimension: testDim})
	assert.Error(t, err)
}
