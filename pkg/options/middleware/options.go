// Package middleware 提供 HTTP 中间件配置。
package middleware

import (
	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/docqa/pkg/options"
)

// Options 汇总本服务使用的中间件配置。
type Options struct {
	Recovery  *RecoveryOptions  `json:"recovery" mapstructure:"recovery"`
	RequestID *RequestIDOptions `json:"request-id" mapstructure:"request-id"`
	Logger    *LoggerOptions    `json:"logger" mapstructure:"logger"`
	Auth      *AuthOptions      `json:"auth" mapstructure:"auth"`
}

// NewOptions 返回默认配置。
func NewOptions() *Options {
	return &Options{
		Recovery:  NewRecoveryOptions(),
		RequestID: NewRequestIDOptions(),
		Logger:    NewLoggerOptions(),
		Auth:      NewAuthOptions(),
	}
}

// AddFlags 注册所有中间件 flag。
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	o.Recovery.AddFlags(fs, prefixes...)
	o.RequestID.AddFlags(fs, prefixes...)
	o.Logger.AddFlags(fs, prefixes...)
	o.Auth.AddFlags(fs, prefixes...)
}

// Validate 校验所有中间件配置。
func (o *Options) Validate() []error {
	var errs []error
	errs = append(errs, o.Recovery.Validate()...)
	errs = append(errs, o.RequestID.Validate()...)
	errs = append(errs, o.Logger.Validate()...)
	errs = append(errs, o.Auth.Validate()...)
	return errs
}

// Err 以聚合错误形式返回 Validate 的结果。
func (o *Options) Err() error {
	return utilerrors.NewAggregate(o.Validate())
}

var _ options.IOptions = (*Options)(nil)
