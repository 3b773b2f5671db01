package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	options "github.com/kart-io/docqa/pkg/options/server/http"
	apierrors "github.com/kart-io/docqa/pkg/utils/errors"
	"github.com/kart-io/docqa/pkg/utils/json"
	"github.com/kart-io/docqa/pkg/utils/response"
)

func TestNoRouteReturnsJSON(t *testing.T) {
	s := NewServer(nil, nil)

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierrors.ErrRouteNotFound.Code, body.Code)
	assert.NotEmpty(t, body.RequestID)
	assert.Equal(t, w.Header().Get("X-Request-ID"), body.RequestID)
}

func TestStartServeStop(t *testing.T) {
	opts := options.NewOptions()
	opts.Addr = "127.0.0.1:0"
	s := NewServer(opts, nil)
	s.Engine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	resp, err := http.Get("http://" + s.Addr() + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "pong", string(b))
}

func TestStartBindError(t *testing.T) {
	opts := options.NewOptions()
	opts.Addr = "256.0.0.1:99999"
	assert.Error(t, NewServer(opts, nil).Start(context.Background()))
}
