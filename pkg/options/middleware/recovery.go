package middleware

import (
	"github.com/spf13/pflag"

	"github.com/kart-io/docqa/pkg/options"
)

// RecoveryOptions panic 恢复中间件配置。
type RecoveryOptions struct {
	// EnableStackTrace 是否在错误响应中附带堆栈，生产环境始终不附带。
	EnableStackTrace bool `json:"enable-stack-trace" mapstructure:"enable-stack-trace"`
}

// NewRecoveryOptions 返回默认配置。
func NewRecoveryOptions() *RecoveryOptions {
	return &RecoveryOptions{EnableStackTrace: true}
}

// AddFlags 注册 flag。
func (o *RecoveryOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.EnableStackTrace, options.Join(prefixes...)+"recovery.enable-stack-trace", o.EnableStackTrace,
		"Include the panic stack in 500 responses outside production.")
}

// Validate 校验配置。
func (o *RecoveryOptions) Validate() []error {
	return nil
}
