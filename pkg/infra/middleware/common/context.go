// Package common 提供各中间件子包共用的上下文工具。
package common

import "context"

// requestIDKey 请求 ID 的 context key。
type requestIDKey struct{}

// GetRequestID 从 context 取出请求 ID，不存在时返回空串。
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID 将请求 ID 写入 context。
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}
