// Package pool 基于 ants 提供有界 goroutine 池，以及在池上执行扇出/汇合的辅助函数。
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"
)

// Config 池配置。
type Config struct {
	// Capacity 最大并发 goroutine 数。
	Capacity int
	// ExpiryDuration 空闲 worker 回收时间。
	ExpiryDuration time.Duration
	// Nonblocking 为 true 时池满立即返回 ErrPoolOverload，否则排队等待。
	Nonblocking bool
}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		Capacity:       16,
		ExpiryDuration: 30 * time.Second,
	}
}

// Pool 有界 worker 池。
type Pool struct {
	name   string
	pool   *ants.Pool
	closed atomic.Bool
	stats  struct {
		submitted atomic.Int64
		completed atomic.Int64
		rejected  atomic.Int64
		panics    atomic.Int64
	}
}

// Stats 池统计快照。
type Stats struct {
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`
	Rejected  int64 `json:"rejected"`
	Panics    int64 `json:"panics"`
	Running   int   `json:"running"`
	Capacity  int   `json:"capacity"`
}

// NewPool 创建池。
func NewPool(name string, config *Config) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Pool{name: name}
	ap, err := ants.NewPool(config.Capacity,
		ants.WithExpiryDuration(config.ExpiryDuration),
		ants.WithNonblocking(config.Nonblocking),
		ants.WithPanicHandler(func(r interface{}) {
			p.stats.panics.Add(1)
			logger.Errorw("worker panic recovered", "pool", name, "panic", r)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create pool %s: %w", name, err)
	}
	p.pool = ap

	logger.Infow("worker pool created", "name", name, "capacity", config.Capacity)
	return p, nil
}

// Name 返回池名称。
func (p *Pool) Name() string {
	return p.name
}

// Submit 提交任务。
func (p *Pool) Submit(task func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	p.stats.submitted.Add(1)
	err := p.pool.Submit(func() {
		defer p.stats.completed.Add(1)
		task()
	})
	if err != nil {
		p.stats.submitted.Add(-1)
		switch {
		case errors.Is(err, ants.ErrPoolOverload):
			p.stats.rejected.Add(1)
			return ErrPoolOverload
		case errors.Is(err, ants.ErrPoolClosed):
			return ErrPoolClosed
		}
		return err
	}
	return nil
}

// Release 关闭池，可重复调用。
func (p *Pool) Release() {
	if p.closed.Swap(true) {
		return
	}
	p.pool.Release()
	logger.Infow("worker pool released", "name", p.name)
}

// Stats 返回统计快照。
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: p.stats.submitted.Load(),
		Completed: p.stats.completed.Load(),
		Rejected:  p.stats.rejected.Load(),
		Panics:    p.stats.panics.Load(),
		Running:   p.pool.Running(),
		Capacity:  p.pool.Cap(),
	}
}

// errPanicked 表示任务在池中 panic。
var errPanicked = errors.New("task panicked")

// ForEach 在池上并发执行 fn(ctx, i)，i 取 [0, n)，等待全部结束。
// 任一任务失败即取消 ctx 并返回第一个错误；尚未开始的任务看到已取消的 ctx 后直接返回。
func (p *Pool) ForEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		idx := i
		err := p.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					fail(fmt.Errorf("%w: %v", errPanicked, r))
				}
			}()
			if ctx.Err() != nil {
				return
			}
			if err := fn(ctx, idx); err != nil {
				fail(err)
			}
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	// 父 ctx 被取消时部分任务可能被跳过
	return ctx.Err()
}
