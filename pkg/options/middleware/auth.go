package middleware

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"

	"github.com/kart-io/docqa/pkg/options"
)

// AuthOptions API Key 认证中间件配置。
type AuthOptions struct {
	// APIKeys 允许访问的密钥集合。
	APIKeys []string `json:"-" mapstructure:"api-keys"`
	// SkipPaths 无需认证的路径，精确匹配。
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`
}

// NewAuthOptions 返回默认配置。
func NewAuthOptions() *AuthOptions {
	return &AuthOptions{
		SkipPaths: []string{"/"},
	}
}

// AddFlags 注册 flag。
func (o *AuthOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringSliceVar(&o.APIKeys, p+"auth.api-keys", o.APIKeys, "Comma separated list of accepted API keys.")
	fs.StringSliceVar(&o.SkipPaths, p+"auth.skip-paths", o.SkipPaths, "Paths that do not require an API key.")
}

// Validate 要求至少配置一个非空密钥。
func (o *AuthOptions) Validate() []error {
	for _, k := range o.APIKeys {
		if strings.TrimSpace(k) != "" {
			return nil
		}
	}
	return []error{errors.New("auth.api-keys must contain at least one key")}
}

// KeySet 返回去除空白后的密钥集合。
func (o *AuthOptions) KeySet() map[string]struct{} {
	set := make(map[string]struct{}, len(o.APIKeys))
	for _, k := range o.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}
