// Package pool 提供 worker pool 配置。
package pool

import (
	"errors"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/docqa/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options embedding 扇出使用的 worker pool 配置。
type Options struct {
	// Capacity 最大并发 goroutine 数。
	Capacity int `json:"capacity" mapstructure:"capacity"`
	// ExpiryDuration 空闲 worker 回收时间。
	ExpiryDuration time.Duration `json:"expiry-duration" mapstructure:"expiry-duration"`
}

// NewOptions 返回默认配置。
func NewOptions() *Options {
	return &Options{
		Capacity:       16,
		ExpiryDuration: 30 * time.Second,
	}
}

// AddFlags 注册 flag。
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.IntVar(&o.Capacity, p+"pool.capacity", o.Capacity, "Maximum concurrent embedding calls per process.")
	fs.DurationVar(&o.ExpiryDuration, p+"pool.expiry-duration", o.ExpiryDuration, "Idle worker expiry.")
}

// Validate 校验配置。
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	if o.Capacity <= 0 {
		return []error{errors.New("pool.capacity must be positive")}
	}
	return nil
}
