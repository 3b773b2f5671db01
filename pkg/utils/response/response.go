// Package response 定义 HTTP 接口的错误响应结构。
//
// 所有错误均返回 JSON:
//
//	{"error": "...", "message": "...", "code": 2101003, "requestId": "..."}
//
// 4xx 使用 message 字段，5xx 使用 details 字段；非生产环境下 5xx 额外携带 stack。
package response

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/docqa/pkg/utils/errors"
)

// HeaderXRequestID 请求 ID 响应头。
const HeaderXRequestID = "X-Request-ID"

// ErrorBody 错误响应体。
type ErrorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Details   string `json:"details,omitempty"`
	Code      int    `json:"code"`
	RequestID string `json:"requestId,omitempty"`
	Stack     string `json:"stack,omitempty"`
}

// IsProduction 根据 APP_ENV / GO_ENV 判断是否运行在生产环境。
func IsProduction() bool {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("GO_ENV")
	}
	switch strings.ToLower(env) {
	case "production", "prod":
		return true
	default:
		return false
	}
}

// NewErrorBody 由 Errno 构建错误响应体。
func NewErrorBody(e *errors.Errno, includeStack bool) ErrorBody {
	body := ErrorBody{Code: e.Code}

	base, ok := errors.Lookup(e.Code)
	if !ok {
		base = e
	}
	body.Error = base.MessageEN

	detail := e.MessageEN
	if cause := e.Cause(); cause != nil {
		if detail == base.MessageEN {
			detail = cause.Error()
		} else {
			detail = detail + ": " + cause.Error()
		}
	}

	if errors.IsServerError(e.Code) || e.HTTPStatus() >= 500 {
		body.Details = detail
		if includeStack {
			body.Stack = fmt.Sprintf("%+v\n\n%s", e, debug.Stack())
		}
		return body
	}

	body.Message = detail
	return body
}

// Fail 将错误写入响应并终止后续处理。
func Fail(c *gin.Context, err error) {
	e := errors.FromError(err)
	body := NewErrorBody(e, !IsProduction())
	body.RequestID = c.Writer.Header().Get(HeaderXRequestID)
	c.AbortWithStatusJSON(e.HTTPStatus(), body)
}
