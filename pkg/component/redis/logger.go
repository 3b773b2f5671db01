package redis

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"
)

// loggingAdapter 将 go-redis 内部日志转到全局 logger。
type loggingAdapter struct{}

func (l *loggingAdapter) Printf(_ context.Context, format string, v ...interface{}) {
	logger.Debugw("redis", "msg", fmt.Sprintf(format, v...))
}

func init() {
	goredis.SetLogger(&loggingAdapter{})
}
