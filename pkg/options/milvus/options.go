// Package milvusopts 提供 Milvus 客户端配置。
package milvusopts

import (
	"errors"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/docqa/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options Milvus 客户端配置。
type Options struct {
	// Address 服务地址（host:port）。
	Address string `json:"address" mapstructure:"address"`
	// Database 数据库名。
	Database string `json:"database" mapstructure:"database"`
	// Username 认证用户名。
	Username string `json:"username" mapstructure:"username"`
	// Password 认证密码。
	Password string `json:"-" mapstructure:"password"`
	// Timeout 建连超时。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions 返回默认配置。
func NewOptions() *Options {
	return &Options{
		Address:  "localhost:19530",
		Database: "default",
		Timeout:  30 * time.Second,
	}
}

// AddFlags 注册 flag。
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.Address, p+"milvus.address", o.Address, "Milvus server address (host:port).")
	fs.StringVar(&o.Database, p+"milvus.database", o.Database, "Milvus database name.")
	fs.StringVar(&o.Username, p+"milvus.username", o.Username, "Milvus username.")
	fs.StringVar(&o.Password, p+"milvus.password", o.Password, "Milvus password. Prefer the DOCQA_MILVUS_PASSWORD environment variable.")
	fs.DurationVar(&o.Timeout, p+"milvus.timeout", o.Timeout, "Milvus connection timeout.")
}

// Validate 校验配置。
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Address == "" {
		errs = append(errs, errors.New("milvus.address is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, errors.New("milvus.timeout must be positive"))
	}
	return errs
}
