// Package llm 定义文档问答使用的两类外部模型能力：文本向量化与文本生成。
// 具体供应商在子包中实现，并通过 init 注册到本包的注册表。
package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrUnknownProvider 表示注册表中没有对应名称的供应商。
var ErrUnknownProvider = errors.New("unknown llm provider")

// EmbeddingProvider 将文本映射为定长向量。
type EmbeddingProvider interface {
	// Embed 为多个文本生成向量，返回顺序与输入一致。
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle 为单个文本生成向量。
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Name 返回供应商名称。
	Name() string
}

// ChatProvider 将提示词映射为生成文本。
type ChatProvider interface {
	// Chat 进行多轮对话。
	Chat(ctx context.Context, messages []Message) (string, error)

	// Generate 单轮生成，systemPrompt 为空时不发送系统指令。
	Generate(ctx context.Context, prompt string, systemPrompt string) (string, error)

	// Name 返回供应商名称。
	Name() string
}

// Message 表示对话中的一条消息。
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role 定义消息角色。
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Pinger 由能够探测服务可达性的供应商实现。
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckReachable 探测供应商是否可达；未实现 Pinger 的供应商视为可达。
func CheckReachable(ctx context.Context, p any) error {
	pinger, ok := p.(Pinger)
	if !ok {
		return nil
	}
	return pinger.Ping(ctx)
}

// Provider 同时支持 Embedding 和 Chat 的供应商。
type Provider interface {
	EmbeddingProvider
	ChatProvider
}

// ProviderFactory 供应商工厂函数。
type ProviderFactory func(config map[string]any) (Provider, error)

// Config 是各供应商共用的连接配置，由配置 map 解析得到。
type Config struct {
	BaseURL    string
	APIKey     string
	EmbedModel string
	ChatModel  string
	Timeout    time.Duration
	MaxRetries int
}

// ParseConfig 用 configMap 中的非零值覆盖 defaults。
// max_retries 允许显式设置为 0。
func ParseConfig(defaults Config, configMap map[string]any) Config {
	cfg := defaults
	if v, ok := configMap["base_url"].(string); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := configMap["api_key"].(string); ok && v != "" {
		cfg.APIKey = v
	}
	if v, ok := configMap["embed_model"].(string); ok && v != "" {
		cfg.EmbedModel = v
	}
	if v, ok := configMap["chat_model"].(string); ok && v != "" {
		cfg.ChatModel = v
	}
	if v, ok := configMap["timeout"].(time.Duration); ok && v > 0 {
		cfg.Timeout = v
	}
	if v, ok := configMap["max_retries"].(int); ok && v >= 0 {
		cfg.MaxRetries = v
	}
	return cfg
}

var registry = struct {
	sync.RWMutex
	factories map[string]ProviderFactory
}{factories: make(map[string]ProviderFactory)}

// RegisterProvider 注册供应商工厂，同名注册会覆盖。
func RegisterProvider(name string, factory ProviderFactory) {
	registry.Lock()
	defer registry.Unlock()
	registry.factories[name] = factory
}

// NewProvider 根据名称创建供应商实例。
func NewProvider(name string, config map[string]any) (Provider, error) {
	registry.RLock()
	factory, ok := registry.factories[name]
	registry.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return factory(config)
}

// NewEmbeddingProvider 创建只用于向量化的供应商实例。
func NewEmbeddingProvider(name string, config map[string]any) (EmbeddingProvider, error) {
	return NewProvider(name, config)
}

// NewChatProvider 创建只用于生成的供应商实例。
func NewChatProvider(name string, config map[string]any) (ChatProvider, error) {
	return NewProvider(name, config)
}

// ListProviders 返回已注册的供应商名称，按字母序。
func ListProviders() []string {
	registry.RLock()
	defer registry.RUnlock()

	names := make([]string, 0, len(registry.factories))
	for name := range registry.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
