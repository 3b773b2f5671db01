// Package server 管理一组可运行服务的启动与优雅关闭。
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kart-io/logger"
)

// Runnable 可由 Manager 管理的服务。
type Runnable interface {
	// Name 服务名，用于日志。
	Name() string
	// Start 开始监听，监听失败时同步返回错误。
	Start(ctx context.Context) error
	// Stop 优雅关闭。
	Stop(ctx context.Context) error
}

// Manager 按顺序启动服务，按逆序关闭。
type Manager struct {
	mu              sync.Mutex
	servers         []Runnable
	started         []Runnable
	shutdownTimeout time.Duration
}

// NewManager 创建 Manager。
func NewManager(shutdownTimeout time.Duration, servers ...Runnable) *Manager {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	return &Manager{servers: servers, shutdownTimeout: shutdownTimeout}
}

// Add 追加服务，需在 Start 前调用。
func (m *Manager) Add(s Runnable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.servers = append(m.servers, s)
}

// Start 启动全部服务，任一失败时关闭已启动的服务。
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.started) > 0 {
		return errors.New("server manager already started")
	}
	for _, s := range m.servers {
		if err := s.Start(ctx); err != nil {
			m.stopLocked(context.Background())
			return fmt.Errorf("failed to start %s: %w", s.Name(), err)
		}
		m.started = append(m.started, s)
		logger.Infow("server started", "name", s.Name())
	}
	return nil
}

// Stop 逆序关闭已启动的服务。
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked(ctx)
}

func (m *Manager) stopLocked(ctx context.Context) error {
	var errs []error
	for i := len(m.started) - 1; i >= 0; i-- {
		s := m.started[i]
		if err := s.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", s.Name(), err))
			continue
		}
		logger.Infow("server stopped", "name", s.Name())
	}
	m.started = nil
	return errors.Join(errs...)
}

// Run 启动服务并阻塞到 ctx 结束，然后在 shutdownTimeout 内优雅关闭。
func (m *Manager) Run(ctx context.Context) error {
	if err := m.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down servers")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), m.shutdownTimeout)
	defer cancel()
	return m.Stop(shutdownCtx)
}
