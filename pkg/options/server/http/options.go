// Package http 提供 HTTP 服务监听配置。
package http

import (
	"errors"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/docqa/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options HTTP 服务配置。
type Options struct {
	// Addr 监听地址。
	Addr string `json:"addr" mapstructure:"addr"`
	// ReadTimeout 读取完整请求（含上传文件）的超时。
	ReadTimeout time.Duration `json:"read-timeout" mapstructure:"read-timeout"`
	// WriteTimeout 写响应超时，需要覆盖一次查询中 LLM 生成的耗时。
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout"`
	// IdleTimeout keep-alive 空闲超时。
	IdleTimeout time.Duration `json:"idle-timeout" mapstructure:"idle-timeout"`
}

// NewOptions 返回默认配置。
func NewOptions() *Options {
	return &Options{
		Addr:         ":8080",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// AddFlags 注册 flag。
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.Addr, p+"http.addr", o.Addr, "HTTP server bind address.")
	fs.DurationVar(&o.ReadTimeout, p+"http.read-timeout", o.ReadTimeout, "Timeout for reading the entire request.")
	fs.DurationVar(&o.WriteTimeout, p+"http.write-timeout", o.WriteTimeout, "Timeout for writing the response; must cover LLM latency.")
	fs.DurationVar(&o.IdleTimeout, p+"http.idle-timeout", o.IdleTimeout, "Maximum keep-alive idle time.")
}

// Validate 校验配置。
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Addr == "" {
		errs = append(errs, errors.New("http.addr cannot be empty"))
	}
	if o.ReadTimeout <= 0 {
		errs = append(errs, errors.New("http.read-timeout must be positive"))
	}
	if o.WriteTimeout <= 0 {
		errs = append(errs, errors.New("http.write-timeout must be positive"))
	}
	return errs
}
