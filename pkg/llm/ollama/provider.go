// Package ollama 提供本地 Ollama 服务的供应商实现，无需 API 密钥。
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kart-io/docqa/pkg/llm"
	"github.com/kart-io/docqa/pkg/utils/httpclient"
)

// ProviderName 供应商名称。
const ProviderName = "ollama"

func init() {
	llm.RegisterProvider(ProviderName, NewProvider)
}

// DefaultConfig 返回默认配置。
func DefaultConfig() llm.Config {
	return llm.Config{
		BaseURL:    "http://localhost:11434",
		EmbedModel: "nomic-embed-text",
		ChatModel:  "llama3.1",
		Timeout:    120 * time.Second,
	}
}

// Provider Ollama 供应商实现。
type Provider struct {
	config llm.Config
	client *httpclient.Client
}

// NewProvider 从配置 map 创建 Ollama 供应商。
func NewProvider(configMap map[string]any) (llm.Provider, error) {
	return NewProviderWithConfig(llm.ParseConfig(DefaultConfig(), configMap)), nil
}

// NewProviderWithConfig 使用结构化配置创建供应商。
func NewProviderWithConfig(cfg llm.Config) *Provider {
	return &Provider{
		config: cfg,
		client: httpclient.NewClient(cfg.Timeout, cfg.MaxRetries),
	}
}

// Name 返回供应商名称。
func (p *Provider) Name() string {
	return ProviderName
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed 调用 /api/embed。
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embedResponse
	req := embedRequest{Model: p.config.EmbedModel, Input: texts}
	if err := p.client.PostJSON(ctx, p.config.BaseURL+"/api/embed", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed: expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	return resp.Embeddings, nil
}

// EmbedSingle 为单个文本生成向量。
func (p *Provider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	out, err := p.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message llm.Message `json:"message"`
}

// Chat 调用 /api/chat，关闭流式输出。
func (p *Provider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	var resp chatResponse
	req := chatRequest{Model: p.config.ChatModel, Messages: messages}
	if err := p.client.PostJSON(ctx, p.config.BaseURL+"/api/chat", nil, req, &resp); err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return resp.Message.Content, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate 调用 /api/generate。
func (p *Provider) Generate(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	var resp generateResponse
	req := generateRequest{Model: p.config.ChatModel, Prompt: prompt, System: systemPrompt}
	if err := p.client.PostJSON(ctx, p.config.BaseURL+"/api/generate", nil, req, &resp); err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return resp.Response, nil
}

// Ping 检查 Ollama 服务是否可达。
func (p *Provider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	return p.client.DoJSON(req, nil)
}
