// Package http 提供基于 gin 的 HTTP 服务。
package http

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/docqa/pkg/infra/middleware"
	"github.com/kart-io/docqa/pkg/infra/middleware/observability"
	"github.com/kart-io/docqa/pkg/infra/middleware/resilience"
	mwopts "github.com/kart-io/docqa/pkg/options/middleware"
	options "github.com/kart-io/docqa/pkg/options/server/http"
	apierrors "github.com/kart-io/docqa/pkg/utils/errors"
	"github.com/kart-io/docqa/pkg/utils/response"
)

// Server HTTP 服务。
type Server struct {
	opts     *options.Options
	engine   *gin.Engine
	server   *http.Server
	listener net.Listener
}

// NewServer 创建服务并安装通用中间件：recovery、request id、访问日志。
// 中间件在注册路由前安装，保证所有路由组都会继承。
func NewServer(serverOpts *options.Options, mw *mwopts.Options) *Server {
	if serverOpts == nil {
		serverOpts = options.NewOptions()
	}
	if mw == nil {
		mw = mwopts.NewOptions()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		resilience.RecoveryWithOptions(*mw.Recovery, nil),
		middleware.RequestIDWithOptions(*mw.RequestID),
		observability.LoggerWithOptions(*mw.Logger),
	)
	engine.NoRoute(func(c *gin.Context) {
		response.Fail(c, apierrors.ErrRouteNotFound)
	})

	return &Server{opts: serverOpts, engine: engine}
}

// Name 返回服务名。
func (s *Server) Name() string {
	return "http[gin]"
}

// Engine 返回 gin 引擎，用于注册路由。
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr 返回实际监听地址，未启动时返回配置地址。
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.opts.Addr
}

// Start 同步绑定端口后在后台处理请求。
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("http server exited", "error", err.Error())
		}
	}()
	logger.Infow("http server listening", "addr", s.Addr())
	return nil
}

// Stop 优雅关闭，等待进行中的请求完成或 ctx 超时。
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
