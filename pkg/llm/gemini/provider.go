// Package gemini 提供 Google Gemini 供应商实现。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kart-io/docqa/pkg/llm"
	"github.com/kart-io/docqa/pkg/utils/httpclient"
)

// ProviderName 供应商名称。
const ProviderName = "gemini"

func init() {
	llm.RegisterProvider(ProviderName, NewProvider)
}

// DefaultConfig 返回默认配置。
func DefaultConfig() llm.Config {
	return llm.Config{
		BaseURL:    "https://generativelanguage.googleapis.com/v1beta",
		EmbedModel: "text-embedding-004",
		ChatModel:  "gemini-1.5-flash",
		Timeout:    120 * time.Second,
	}
}

// Provider Gemini 供应商实现。
type Provider struct {
	config llm.Config
	client *httpclient.Client
}

// NewProvider 从配置 map 创建 Gemini 供应商。
func NewProvider(configMap map[string]any) (llm.Provider, error) {
	cfg := llm.ParseConfig(DefaultConfig(), configMap)
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api_key is required")
	}
	return NewProviderWithConfig(cfg), nil
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

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type embedContentRequest struct {
	Model   string  `json:"model"`
	Content content `json:"content"`
}

type batchEmbedRequest struct {
	Requests []embedContentRequest `json:"requests"`
}

type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

// Embed 通过 batchEmbedContents 为多个文本生成向量。
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	model := "models/" + p.config.EmbedModel
	body := batchEmbedRequest{Requests: make([]embedContentRequest, len(texts))}
	for i, text := range texts {
		body.Requests[i] = embedContentRequest{
			Model:   model,
			Content: content{Parts: []part{{Text: text}}},
		}
	}

	var resp batchEmbedResponse
	url := fmt.Sprintf("%s/%s:batchEmbedContents", p.config.BaseURL, model)
	if err := p.client.PostJSON(ctx, url, p.headers(), body, &resp); err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini embed: expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		out[i] = e.Values
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

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// Chat 通过 generateContent 进行多轮对话。
func (p *Provider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	req := generateRequest{
		GenerationConfig: &generationConfig{Temperature: 0.7, MaxOutputTokens: 2048},
	}
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			req.SystemInstruction = &content{Parts: []part{{Text: msg.Content}}}
		case llm.RoleAssistant:
			// Gemini 把助手角色称为 model
			req.Contents = append(req.Contents, content{Role: "model", Parts: []part{{Text: msg.Content}}})
		default:
			req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{Text: msg.Content}}})
		}
	}

	var resp generateResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", p.config.BaseURL, p.config.ChatModel)
	if err := p.client.PostJSON(ctx, url, p.headers(), req, &resp); err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini generate: empty response")
	}

	var text string
	for _, pt := range resp.Candidates[0].Content.Parts {
		text += pt.Text
	}
	return text, nil
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
	return map[string]string{"x-goog-api-key": p.config.APIKey}
}
