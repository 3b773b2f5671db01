// Package middleware 提供 gin 中间件。
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/docqa/pkg/infra/middleware/common"
	mwopts "github.com/kart-io/docqa/pkg/options/middleware"
	"github.com/kart-io/docqa/pkg/utils/id"
)

// maxRequestIDLen 接受客户端传入请求 ID 的最大长度。
const maxRequestIDLen = 128

// RequestIDWithOptions 为每个请求分配请求 ID。
// 客户端已携带的 ID 会被沿用；ID 写入响应头和 request context。
func RequestIDWithOptions(opts mwopts.RequestIDOptions) gin.HandlerFunc {
	header := opts.Header
	if header == "" {
		header = "X-Request-ID"
	}
	gen := id.UUIDGenerator
	if opts.Generator == "ulid" {
		gen = id.ULIDGenerator
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader(header)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = gen.Generate()
		}

		c.Header(header, requestID)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// GetRequestID 从 gin 上下文取请求 ID。
func GetRequestID(c *gin.Context) string {
	return common.GetRequestID(c.Request.Context())
}
