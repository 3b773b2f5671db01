package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/docqa/pkg/utils/json"
)

// EmbeddingCacheConfig Embedding 缓存配置。
type EmbeddingCacheConfig struct {
	// TTL 缓存过期时间，0 表示不过期。
	TTL time.Duration
	// KeyPrefix 缓存键前缀。
	KeyPrefix string
}

// DefaultEmbeddingCacheConfig 返回默认的 Embedding 缓存配置。
func DefaultEmbeddingCacheConfig() *EmbeddingCacheConfig {
	return &EmbeddingCacheConfig{
		TTL:       24 * time.Hour,
		KeyPrefix: "docqa:emb:",
	}
}

// CachedEmbeddingProvider 在 EmbedSingle 外包一层 Redis 缓存。
// 缓存只是加速手段：Redis 读写失败时记录日志并直接调用底层 provider。
type CachedEmbeddingProvider struct {
	provider EmbeddingProvider
	redis    goredis.UniversalClient
	config   *EmbeddingCacheConfig
}

// NewCachedEmbeddingProvider 创建带缓存的 Embedding Provider。redis 为 nil 时退化为直通。
func NewCachedEmbeddingProvider(provider EmbeddingProvider, redis goredis.UniversalClient, config *EmbeddingCacheConfig) *CachedEmbeddingProvider {
	if config == nil {
		config = DefaultEmbeddingCacheConfig()
	}
	return &CachedEmbeddingProvider{
		provider: provider,
		redis:    redis,
		config:   config,
	}
}

func (c *CachedEmbeddingProvider) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.config.KeyPrefix + hex.EncodeToString(sum[:])
}

// EmbedSingle 生成单个文本的向量，优先读缓存。
func (c *CachedEmbeddingProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	if c.redis == nil {
		return c.provider.EmbedSingle(ctx, text)
	}

	key := c.cacheKey(text)
	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var embedding []float32
		if err := json.Unmarshal(data, &embedding); err == nil {
			logger.Debugw("embedding cache hit", "key", key)
			return embedding, nil
		}
		logger.Warnw("discarding corrupt cached embedding", "key", key)
		_ = c.redis.Del(ctx, key).Err()
	case !errors.Is(err, goredis.Nil):
		logger.Warnw("embedding cache unavailable, calling provider", "error", err.Error())
	}

	embedding, err := c.provider.EmbedSingle(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err = json.Marshal(embedding); err == nil {
		if err := c.redis.Set(ctx, key, data, c.config.TTL).Err(); err != nil {
			logger.Warnw("failed to cache embedding", "key", key, "error", err.Error())
		}
	}
	return embedding, nil
}

// Embed 批量生成向量。文档分块内容各不相同，批量调用不经过缓存。
func (c *CachedEmbeddingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return c.provider.Embed(ctx, texts)
}

// Name 返回底层 provider 的名称。
func (c *CachedEmbeddingProvider) Name() string {
	return c.provider.Name() + "-cached"
}

var _ EmbeddingProvider = (*CachedEmbeddingProvider)(nil)
