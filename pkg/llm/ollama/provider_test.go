package ollama

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docqa/pkg/llm"
	"github.com/kart-io/docqa/pkg/utils/json"
)

func newTestProvider(t *testing.T, h http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	p, err := NewProvider(map[string]any{"base_url": srv.URL, "chat_model": "m"})
	require.NoError(t, err)
	return p.(*Provider)
}

func TestEmbed(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		_, _ = io.WriteString(w, `{"embeddings":[[0.5,0.25]]}`)
	})

	v, err := p.EmbedSingle(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, v)
}

func TestGenerateSendsSystemPrompt(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "m", req.Model)
		assert.Equal(t, "sys", req.System)
		assert.False(t, req.Stream)

		_, _ = io.WriteString(w, `{"response":"ok","done":true}`)
	})

	out, err := p.Generate(context.Background(), "q", "sys")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestChat(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		_, _ = io.WriteString(w, `{"message":{"role":"assistant","content":"hey"}}`)
	})

	out, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "hey", out)
}

func TestPing(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	assert.Error(t, p.Ping(context.Background()))
}
