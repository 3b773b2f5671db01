// Package openai 提供 OpenAI 及兼容 OpenAI API 的服务（Azure OpenAI、LocalAI、vLLM 等）的供应商实现。
//
//	import _ "github.com/kart-io/docqa/pkg/llm/openai"
//
//	p, err := llm.NewProvider("openai", map[string]any{"api_key": "sk-..."})
package openai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kart-io/docqa/pkg/llm"
	"github.com/kart-io/docqa/pkg/utils/httpclient"
)

// ProviderName 供应商名称。
const ProviderName = "openai"

func init() {
	llm.RegisterProvider(ProviderName, NewProvider)
}

// DefaultConfig 返回默认配置。
func DefaultConfig() llm.Config {
	return llm.Config{
		BaseURL:    "https://api.openai.com/v1",
		EmbedModel: "text-embedding-3-small",
		ChatModel:  "gpt-4o-mini",
		Timeout:    120 * time.Second,
	}
}

// Provider OpenAI 供应商实现。
type Provider struct {
	config       llm.Config
	organization string
	client       *httpclient.Client
}

// NewProvider 从配置 map 创建供应商。除通用字段外还识别 organization。
func NewProvider(configMap map[string]any) (llm.Provider, error) {
	cfg := llm.ParseConfig(DefaultConfig(), configMap)
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api_key is required")
	}
	p := NewProviderWithConfig(cfg)
	if org, ok := configMap["organization"].(string); ok {
		p.organization = org
	}
	return p, nil
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
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed 调用 /embeddings，按 index 还原输入顺序。
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embedResponse
	req := embedRequest{Model: p.config.EmbedModel, Input: texts}
	if err := p.client.PostJSON(ctx, p.config.BaseURL+"/embeddings", p.headers(), req, &resp); err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embed: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
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
}

type chatResponse struct {
	Choices []struct {
		Message llm.Message `json:"message"`
	} `json:"choices"`
}

// Chat 调用 /chat/completions。
func (p *Provider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	var resp chatResponse
	req := chatRequest{Model: p.config.ChatModel, Messages: messages}
	if err := p.client.PostJSON(ctx, p.config.BaseURL+"/chat/completions", p.headers(), req, &resp); err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Generate 单轮生成。
func (p *Provider) Generate(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	messages := make([]llm.Message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: prompt})
	return p.Chat(ctx, messages)
}

func (p *Provider) headers() map[string]string {
	h := map[string]string{"Authorization": "Bearer " + p.config.APIKey}
	if p.organization != "" {
		h["OpenAI-Organization"] = p.organization
	}
	return h
}
