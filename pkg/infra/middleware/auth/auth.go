// Package auth 提供基于静态 API Key 的认证中间件。
package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	mwopts "github.com/kart-io/docqa/pkg/options/middleware"
	"github.com/kart-io/docqa/pkg/utils/errors"
	"github.com/kart-io/docqa/pkg/utils/response"
)

// HeaderAPIKey API Key 请求头。
const HeaderAPIKey = "X-API-Key"

// APIKeyWithOptions 校验 X-API-Key 或 Authorization: Bearer 中的密钥。
// 缺少凭证返回 401，凭证不在允许集合中返回 403。
func APIKeyWithOptions(opts mwopts.AuthOptions) gin.HandlerFunc {
	keys := opts.KeySet()
	skip := make(map[string]struct{}, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		key := extractKey(c)
		if key == "" {
			logAuthFailure(c, key, "missing credential")
			response.Fail(c, errors.ErrDocQAMissingCredential)
			return
		}
		if !allowed(keys, key) {
			logAuthFailure(c, key, "credential not allowed")
			response.Fail(c, errors.ErrDocQAInvalidCredential)
			return
		}
		c.Next()
	}
}

// extractKey 优先读取 X-API-Key，其次读取 Bearer token。
func extractKey(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader(HeaderAPIKey)); key != "" {
		return key
	}
	authz := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}

// allowed 以常量时间比较每个密钥。
func allowed(keys map[string]struct{}, key string) bool {
	ok := false
	for k := range keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			ok = true
		}
	}
	return ok
}

// logAuthFailure 只记录密钥前缀。
func logAuthFailure(c *gin.Context, key, reason string) {
	prefix := ""
	if len(key) > 8 {
		prefix = key[:4] + "..."
	} else if key != "" {
		prefix = key[:len(key)/2] + "..."
	}

	logger.Warnw("authentication failed",
		"reason", reason,
		"key_prefix", prefix,
		"remote_addr", c.ClientIP(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"user_agent", c.Request.UserAgent(),
	)
}
