// Package router 注册文档问答服务的路由。
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/docqa/internal/docqa/handler"
	"github.com/kart-io/docqa/pkg/infra/middleware/auth"
	mwopts "github.com/kart-io/docqa/pkg/options/middleware"
)

// Register 注册路由。根路径公开，其余路由要求 API Key。
func Register(engine *gin.Engine, h *handler.DocQAHandler, authOpts *mwopts.AuthOptions) {
	logger.Info("Registering docqa routes...")

	engine.GET("/", h.Info)

	if authOpts == nil {
		authOpts = mwopts.NewAuthOptions()
	}
	protected := engine.Group("", auth.APIKeyWithOptions(*authOpts))
	{
		protected.POST("/upload", h.Upload)
		protected.POST("/query", h.Query)
		protected.DELETE("/documents/:documentId", h.DeleteDocument)
		protected.GET("/stats", h.Stats)
		protected.GET("/health", h.Health)
	}

	logger.Infow("HTTP routes registered", "routes", len(engine.Routes()))
}
