// Package redis 提供 Redis 客户端配置。
package redis

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/docqa/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options Redis 客户端配置。Enabled 为 false 时不建立连接。
type Options struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	Host         string        `json:"host" mapstructure:"host"`
	Port         int           `json:"port" mapstructure:"port"`
	Password     string        `json:"-" mapstructure:"password"`
	Database     int           `json:"database" mapstructure:"database"`
	PoolSize     int           `json:"pool-size" mapstructure:"pool-size"`
	DialTimeout  time.Duration `json:"dial-timeout" mapstructure:"dial-timeout"`
	ReadTimeout  time.Duration `json:"read-timeout" mapstructure:"read-timeout"`
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout"`
}

// NewOptions 返回默认配置。
func NewOptions() *Options {
	return &Options{
		Host:         "127.0.0.1",
		Port:         6379,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr 返回 host:port。
func (o *Options) Addr() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// String 返回隐藏密码后的描述，可安全写入日志。
func (o *Options) String() string {
	password := ""
	if o.Password != "" {
		password = "[REDACTED]"
	}
	return fmt.Sprintf("Redis{addr=%s, password=%s, database=%d}", o.Addr(), password, o.Database)
}

// AddFlags 注册 flag。
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.BoolVar(&o.Enabled, p+"redis.enabled", o.Enabled, "Enable the redis-backed query embedding cache.")
	fs.StringVar(&o.Host, p+"redis.host", o.Host, "Redis host.")
	fs.IntVar(&o.Port, p+"redis.port", o.Port, "Redis port.")
	fs.StringVar(&o.Password, p+"redis.password", o.Password, "Redis password. Prefer the DOCQA_REDIS_PASSWORD environment variable.")
	fs.IntVar(&o.Database, p+"redis.database", o.Database, "Redis database.")
	fs.IntVar(&o.PoolSize, p+"redis.pool-size", o.PoolSize, "Redis pool size.")
	fs.DurationVar(&o.DialTimeout, p+"redis.dial-timeout", o.DialTimeout, "Redis dial timeout.")
	fs.DurationVar(&o.ReadTimeout, p+"redis.read-timeout", o.ReadTimeout, "Redis read timeout.")
	fs.DurationVar(&o.WriteTimeout, p+"redis.write-timeout", o.WriteTimeout, "Redis write timeout.")
}

// Validate 校验配置，未启用时不检查。
func (o *Options) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}

	var errs []error
	if o.Host == "" {
		errs = append(errs, errors.New("redis.host is required"))
	}
	if o.Port <= 0 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("redis.port %d out of range", o.Port))
	}
	return errs
}
