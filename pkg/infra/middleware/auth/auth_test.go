package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mwopts "github.com/kart-io/docqa/pkg/options/middleware"
	"github.com/kart-io/docqa/pkg/utils/errors"
	"github.com/kart-io/docqa/pkg/utils/json"
	"github.com/kart-io/docqa/pkg/utils/response"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKeyWithOptions(mwopts.AuthOptions{APIKeys: []string{"secret-key"}, SkipPaths: []string{"/"}}))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "root") })
	r.GET("/stats", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		headers  map[string]string
		wantCode int
		wantErr  *errors.Errno
	}{
		{"根路径无需认证", "/", nil, http.StatusOK, nil},
		{"缺少凭证", "/stats", nil, http.StatusUnauthorized, errors.ErrDocQAMissingCredential},
		{"空 Bearer", "/stats", map[string]string{"Authorization": "Bearer "}, http.StatusUnauthorized, errors.ErrDocQAMissingCredential},
		{"错误的 X-API-Key", "/stats", map[string]string{"X-API-Key": "nope"}, http.StatusForbidden, errors.ErrDocQAInvalidCredential},
		{"错误的 Bearer", "/stats", map[string]string{"Authorization": "Bearer nope"}, http.StatusForbidden, errors.ErrDocQAInvalidCredential},
		{"正确的 X-API-Key", "/stats", map[string]string{"X-API-Key": "secret-key"}, http.StatusOK, nil},
		{"正确的 Bearer", "/stats", map[string]string{"Authorization": "bearer secret-key"}, http.StatusOK, nil},
	}

	r := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != nil {
				var body response.ErrorBody
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantErr.Code, body.Code)
				assert.NotEmpty(t, body.Error)
				assert.NotEmpty(t, body.Message)
			}
		})
	}
}
