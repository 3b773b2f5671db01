package middleware

import (
	"github.com/spf13/pflag"

	"github.com/kart-io/docqa/pkg/options"
)

// LoggerOptions 访问日志中间件配置。
type LoggerOptions struct {
	// SkipPaths 不记录访问日志的路径。
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`
}

// NewLoggerOptions 返回默认配置。
func NewLoggerOptions() *LoggerOptions {
	return &LoggerOptions{
		SkipPaths: []string{"/health"},
	}
}

// AddFlags 注册 flag。
func (o *LoggerOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringSliceVar(&o.SkipPaths, options.Join(prefixes...)+"logger.skip-paths", o.SkipPaths, "Paths excluded from access logs.")
}

// Validate 校验配置。
func (o *LoggerOptions) Validate() []error {
	return nil
}
