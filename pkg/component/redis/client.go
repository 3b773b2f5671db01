// Package redis 封装 go-redis 客户端，供查询向量缓存使用。
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	options "github.com/kart-io/docqa/pkg/options/redis"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

// Client 持有 go-redis 客户端及其配置。
type Client struct {
	client *goredis.Client
	opts   *options.Options
}

// New 使用默认上下文创建客户端。
func New(opts *options.Options) (*Client, error) {
	return NewWithContext(context.Background(), opts)
}

// NewWithContext 创建客户端并 Ping 校验连通性。ctx 只用于首次 Ping。
func NewWithContext(ctx context.Context, opts *options.Options) (*Client, error) {
	if opts == nil {
		return nil, errors.New("redis options cannot be nil")
	}
	if errs := opts.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid redis options: %w", utilerrors.NewAggregate(errs))
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         opts.Addr(),
		Password:     opts.Password,
		DB:           opts.Database,
		PoolSize:     opts.PoolSize,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis %s: %w", opts.Addr(), err)
	}

	return &Client{client: rdb, opts: opts}, nil
}

// Name 返回组件名。
func (c *Client) Name() string {
	return "redis"
}

// Ping 检查连接。
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close 关闭连接池。
func (c *Client) Close() error {
	return c.client.Close()
}

// Client 返回底层 go-redis 客户端。
func (c *Client) Client() *goredis.Client {
	return c.client
}

// Options 返回创建时使用的配置。
func (c *Client) Options() *options.Options {
	return c.opts
}

// HealthStats Redis 健康状态。
type HealthStats struct {
	Healthy    bool          `json:"healthy"`
	Latency    time.Duration `json:"latency"`
	TotalConns uint32        `json:"total_conns"`
	IdleConns  uint32        `json:"idle_conns"`
	Error      string        `json:"error,omitempty"`
}

// HealthWithStats Ping 一次并附带连接池统计。
func (c *Client) HealthWithStats(ctx context.Context) *HealthStats {
	start := time.Now()
	err := c.Ping(ctx)
	stats := &HealthStats{Latency: time.Since(start)}
	if err != nil {
		stats.Error = err.Error()
		return stats
	}

	stats.Healthy = true
	ps := c.client.PoolStats()
	stats.TotalConns = ps.TotalConns
	stats.IdleConns = ps.IdleConns
	return stats
}
