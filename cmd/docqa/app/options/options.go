// Package options 定义文档问答服务的命令行与配置文件选项。
package options

import (
	"errors"
	"time"

	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	docqasvc "github.com/kart-io/docqa/internal/docqa"
	docqaopts "github.com/kart-io/docqa/pkg/options/docqa"
	llmopts "github.com/kart-io/docqa/pkg/options/llm"
	logopts "github.com/kart-io/docqa/pkg/options/logger"
	middlewareopts "github.com/kart-io/docqa/pkg/options/middleware"
	milvusopts "github.com/kart-io/docqa/pkg/options/milvus"
	poolopts "github.com/kart-io/docqa/pkg/options/pool"
	redisopts "github.com/kart-io/docqa/pkg/options/redis"
	httpopts "github.com/kart-io/docqa/pkg/options/server/http"
)

// ServerOptions 服务全部选项。
type ServerOptions struct {
	// HTTPOptions HTTP 服务配置。
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions 日志配置。
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// MilvusOptions Milvus 连接配置。
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// RedisOptions 查询向量缓存使用的 Redis 配置。
	RedisOptions *redisopts.Options `json:"redis" mapstructure:"redis"`

	// EmbeddingOptions 向量化供应商配置。
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// ChatOptions 生成供应商配置。
	ChatOptions *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// DocQAOptions 分块、检索与上传配置。
	DocQAOptions *docqaopts.Options `json:"docqa" mapstructure:"docqa"`

	// PoolOptions embedding 扇出 worker pool 配置。
	PoolOptions *poolopts.Options `json:"pool" mapstructure:"pool"`

	RecoveryOptions  *middlewareopts.RecoveryOptions  `json:"recovery" mapstructure:"recovery"`
	RequestIDOptions *middlewareopts.RequestIDOptions `json:"request-id" mapstructure:"request-id"`
	LoggerOptions    *middlewareopts.LoggerOptions    `json:"logger" mapstructure:"logger"`
	AuthOptions      *middlewareopts.AuthOptions      `json:"auth" mapstructure:"auth"`

	// ShutdownTimeout 优雅关闭超时。
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions 返回默认选项。
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:      httpopts.NewOptions(),
		LogOptions:       logopts.NewOptions(),
		MilvusOptions:    milvusopts.NewOptions(),
		RedisOptions:     redisopts.NewOptions(),
		EmbeddingOptions: llmopts.NewEmbeddingOptions(),
		ChatOptions:      llmopts.NewChatOptions(),
		DocQAOptions:     docqaopts.NewOptions(),
		PoolOptions:      poolopts.NewOptions(),
		RecoveryOptions:  middlewareopts.NewRecoveryOptions(),
		RequestIDOptions: middlewareopts.NewRequestIDOptions(),
		LoggerOptions:    middlewareopts.NewLoggerOptions(),
		AuthOptions:      middlewareopts.NewAuthOptions(),
		ShutdownTimeout:  30 * time.Second,
	}
}

// AddFlags 注册全部 flag，flag 名即配置键。
func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	o.HTTPOptions.AddFlags(fs)
	o.LogOptions.AddFlags(fs)
	o.MilvusOptions.AddFlags(fs)
	o.RedisOptions.AddFlags(fs)
	o.EmbeddingOptions.AddFlags(fs)
	o.ChatOptions.AddFlags(fs)
	o.DocQAOptions.AddFlags(fs)
	o.PoolOptions.AddFlags(fs)
	o.RecoveryOptions.AddFlags(fs)
	o.RequestIDOptions.AddFlags(fs)
	o.LoggerOptions.AddFlags(fs)
	o.AuthOptions.AddFlags(fs)

	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout.")
}

// Complete 填充派生字段。
func (o *ServerOptions) Complete() error {
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 30 * time.Second
	}
	return nil
}

// Validate 校验全部选项，返回聚合错误。
func (o *ServerOptions) Validate() error {
	errs := []error{}

	errs = append(errs, o.HTTPOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.ChatOptions.Validate()...)
	errs = append(errs, o.DocQAOptions.Validate()...)
	errs = append(errs, o.PoolOptions.Validate()...)
	errs = append(errs, o.RedisOptions.Validate()...)
	errs = append(errs, o.middleware().Validate()...)

	// memory 后端不连接 Milvus
	if o.DocQAOptions.VectorStore != "memory" {
		errs = append(errs, o.MilvusOptions.Validate()...)
	}

	if o.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown-timeout must be positive"))
	}

	return utilerrors.NewAggregate(errs)
}

func (o *ServerOptions) middleware() *middlewareopts.Options {
	return &middlewareopts.Options{
		Recovery:  o.RecoveryOptions,
		RequestID: o.RequestIDOptions,
		Logger:    o.LoggerOptions,
		Auth:      o.AuthOptions,
	}
}

// Config 由选项构建服务配置。
func (o *ServerOptions) Config() (*docqasvc.Config, error) {
	return &docqasvc.Config{
		HTTPOptions:       o.HTTPOptions,
		LogOptions:        o.LogOptions,
		MilvusOptions:     o.MilvusOptions,
		RedisOptions:      o.RedisOptions,
		EmbeddingOptions:  o.EmbeddingOptions,
		ChatOptions:       o.ChatOptions,
		DocQAOptions:      o.DocQAOptions,
		MiddlewareOptions: o.middleware(),
		PoolOptions:       o.PoolOptions,
		ShutdownTimeout:   o.ShutdownTimeout,
	}, nil
}
