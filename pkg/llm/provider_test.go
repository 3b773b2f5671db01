package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider 用于注册表测试的供应商。
type stubProvider struct {
	name string
}

var _ Provider = (*stubProvider)(nil)

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i]))}
	}
	return out, nil
}

func (s *stubProvider) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text))}, nil
}

func (s *stubProvider) Chat(_ context.Context, _ []Message) (string, error) {
	return "chat", nil
}

func (s *stubProvider) Generate(_ context.Context, _ string, _ string) (string, error) {
	return "generated", nil
}

func TestRegistry(t *testing.T) {
	RegisterProvider("stub", func(config map[string]any) (Provider, error) {
		name, _ := config["name"].(string)
		return &stubProvider{name: name}, nil
	})

	p, err := NewEmbeddingProvider("stub", map[string]any{"name": "a"})
	require.NoError(t, err)
	assert.Equal(t, "a", p.Name())

	c, err := NewChatProvider("stub", map[string]any{"name": "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", c.Name())

	assert.Contains(t, ListProviders(), "stub")
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider("does-not-exist", nil)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestParseConfig(t *testing.T) {
	defaults := Config{
		BaseURL:    "http://default",
		EmbedModel: "e",
		ChatModel:  "c",
		Timeout:    time.Minute,
		MaxRetries: 3,
	}

	tests := []struct {
		name string
		in   map[string]any
		want Config
	}{
		{
			name: "空配置保留默认值",
			in:   nil,
			want: defaults,
		},
		{
			name: "覆盖所有字段",
			in: map[string]any{
				"base_url":    "http://x",
				"api_key":     "k",
				"embed_model": "e2",
				"chat_model":  "c2",
				"timeout":     5 * time.Second,
				"max_retries": 0,
			},
			want: Config{BaseURL: "http://x", APIKey: "k", EmbedModel: "e2", ChatModel: "c2", Timeout: 5 * time.Second},
		},
		{
			name: "空字符串和负数被忽略",
			in:   map[string]any{"base_url": "", "max_retries": -1},
			want: defaults,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseConfig(defaults, tt.in))
		})
	}
}

type pingProvider struct {
	stubProvider
	err error
}

func (p *pingProvider) Ping(context.Context) error { return p.err }

func TestCheckReachable(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, CheckReachable(ctx, &stubProvider{name: "plain"}), "未实现 Pinger 视为可达")
	assert.NoError(t, CheckReachable(ctx, &pingProvider{}))

	down := errors.New("connection refused")
	assert.ErrorIs(t, CheckReachable(ctx, &pingProvider{err: down}), down)
}
