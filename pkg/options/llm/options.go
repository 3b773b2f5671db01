// Package llm 提供外部模型供应商的配置选项。
package llm

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/docqa/pkg/options"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// ProviderOptions 单个供应商的连接配置。embedding 与 chat 各用一份，flag 前缀不同。
type ProviderOptions struct {
	// Provider 供应商名称（gemini、openai、ollama）。
	Provider string `json:"provider" mapstructure:"provider"`
	// BaseURL API 基础地址，留空使用供应商默认值。
	BaseURL string `json:"base-url" mapstructure:"base-url"`
	// APIKey API 密钥。
	APIKey string `json:"-" mapstructure:"api-key"`
	// Model 模型名称。
	Model string `json:"model" mapstructure:"model"`
	// Timeout 单次请求超时。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
	// Organization OpenAI 组织 ID，可选。
	Organization string `json:"organization" mapstructure:"organization"`

	name string
}

// NewEmbeddingOptions 返回默认的 embedding 供应商配置。
func NewEmbeddingOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider: "gemini",
		Model:    "text-embedding-004",
		Timeout:  60 * time.Second,
		name:     "embedding",
	}
}

// NewChatOptions 返回默认的 chat 供应商配置。
func NewChatOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider: "gemini",
		Model:    "gemini-1.5-flash",
		Timeout:  120 * time.Second,
		name:     "chat",
	}
}

// ToConfigMap 转换为供应商工厂使用的配置 map。外部调用一律不重试。
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":     o.BaseURL,
		"api_key":      o.APIKey,
		"embed_model":  o.Model,
		"chat_model":   o.Model,
		"timeout":      o.Timeout,
		"max_retries":  0,
		"organization": o.Organization,
	}
}

// AddFlags 注册 <name>.* flag。
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(append(prefixes, o.name)...)
	fs.StringVar(&o.Provider, p+"provider", o.Provider, "Provider name (gemini|openai|ollama).")
	fs.StringVar(&o.BaseURL, p+"base-url", o.BaseURL, "API base URL; empty uses the provider default.")
	fs.StringVar(&o.APIKey, p+"api-key", o.APIKey, "API key.")
	fs.StringVar(&o.Model, p+"model", o.Model, "Model name.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Per-request timeout.")
	fs.StringVar(&o.Organization, p+"organization", o.Organization, "OpenAI organization ID (optional).")
}

// Validate 校验配置。
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("%s.provider is required", o.name))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("%s.model is required", o.name))
	}
	if o.Provider != "ollama" && o.APIKey == "" {
		errs = append(errs, fmt.Errorf("%s.api-key is required for provider %q", o.name, o.Provider))
	}
	if o.Timeout <= 0 {
		errs = append(errs, errors.New(o.name+".timeout must be positive"))
	}
	return errs
}
