package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder 记录调用次数的 EmbeddingProvider。
type countingEmbedder struct {
	calls int
	err   error
}

func (e *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.EmbedSingle(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *countingEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text))}, nil
}

func (e *countingEmbedder) Name() string { return "counting" }

func TestCachedEmbeddingProviderWithoutRedis(t *testing.T) {
	inner := &countingEmbedder{}
	c := NewCachedEmbeddingProvider(inner, nil, nil)

	v, err := c.EmbedSingle(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, []float32{3}, v)
	assert.Equal(t, "counting-cached", c.Name())
}

func TestCachedEmbeddingProviderRedisDown(t *testing.T) {
	// 指向一个无人监听的端口，模拟 Redis 不可用
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	inner := &countingEmbedder{}
	c := NewCachedEmbeddingProvider(inner, rdb, &EmbeddingCacheConfig{TTL: time.Minute, KeyPrefix: "t:"})

	v, err := c.EmbedSingle(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{5}, v)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedEmbeddingProviderPropagatesProviderError(t *testing.T) {
	boom := errors.New("boom")
	c := NewCachedEmbeddingProvider(&countingEmbedder{err: boom}, nil, nil)

	_, err := c.EmbedSingle(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}

func TestCacheKeyStable(t *testing.T) {
	c := NewCachedEmbeddingProvider(&countingEmbedder{}, nil, nil)
	assert.Equal(t, c.cacheKey("a"), c.cacheKey("a"))
	assert.NotEqual(t, c.cacheKey("a"), c.cacheKey("b"))
	assert.Len(t, c.cacheKey("a"), len("docqa:emb:")+64)
}
