// Package resilience 提供 panic 恢复中间件。
package resilience

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	mwopts "github.com/kart-io/docqa/pkg/options/middleware"
	"github.com/kart-io/docqa/pkg/utils/errors"
	"github.com/kart-io/docqa/pkg/utils/response"
)

// PanicHandler 在写回响应前被调用，可用于告警。
type PanicHandler func(c *gin.Context, err interface{}, stack []byte)

// RecoveryWithOptions 捕获 panic，记录完整堆栈并返回 500 错误体。
// 堆栈只在 EnableStackTrace 开启且非生产环境时返回给客户端。
func RecoveryWithOptions(opts mwopts.RecoveryOptions, onPanic PanicHandler) gin.HandlerFunc {
	returnStack := opts.EnableStackTrace
	if returnStack && response.IsProduction() {
		logger.Warn("recovery.enable-stack-trace ignored in production; stacks are only logged")
		returnStack = false
	}

	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			stack := debug.Stack()

			logger.Errorw("panic recovered",
				"panic", r,
				"stack_trace", string(stack),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
			if onPanic != nil {
				onPanic(c, r, stack)
			}

			body := response.NewErrorBody(errors.ErrPanic.WithMessagef("panic: %v", r), false)
			body.RequestID = c.Writer.Header().Get(response.HeaderXRequestID)
			if returnStack {
				body.Stack = string(stack)
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()
		c.Next()
	}
}
