package middleware

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/kart-io/docqa/pkg/options"
)

// RequestIDOptions 请求 ID 中间件配置。
type RequestIDOptions struct {
	// Header 读取和回写请求 ID 的头。
	Header string `json:"header" mapstructure:"header"`
	// Generator 生成器类型：uuid 或 ulid。
	Generator string `json:"generator" mapstructure:"generator"`
}

// NewRequestIDOptions 返回默认配置。
func NewRequestIDOptions() *RequestIDOptions {
	return &RequestIDOptions{
		Header:    "X-Request-ID",
		Generator: "uuid",
	}
}

// AddFlags 注册 flag。
func (o *RequestIDOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.Header, p+"request-id.header", o.Header, "Request ID header name.")
	fs.StringVar(&o.Generator, p+"request-id.generator", o.Generator, "Request ID generator (uuid|ulid).")
}

// Validate 校验配置。
func (o *RequestIDOptions) Validate() []error {
	var errs []error
	if o.Header == "" {
		errs = append(errs, errors.New("request-id.header is required"))
	}
	switch o.Generator {
	case "", "uuid", "ulid":
	default:
		errs = append(errs, errors.New("request-id.generator must be 'uuid' or 'ulid'"))
	}
	return errs
}
