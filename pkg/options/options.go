// Package options 定义各组件配置选项的公共约定。
package options

import (
	"strings"

	"github.com/spf13/pflag"
)

// Join 用 "." 连接前缀，非空时追加结尾的 "."，用于拼出 "milvus.address" 这类 flag 名。
func Join(prefixes ...string) string {
	joined := strings.Join(prefixes, ".")
	if joined != "" {
		joined += "."
	}
	return joined
}

// IOptions 组件选项需要实现的接口。
type IOptions interface {
	// Validate 校验选项，返回全部错误而不是第一个。
	Validate() []error

	// AddFlags 将选项注册到 flagset。
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}
