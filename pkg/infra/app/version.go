package app

import (
	"github.com/kart-io/version"
)

// GetVersion 返回构建注入的 git 版本号。
func GetVersion() string {
	return version.Get().GitVersion
}
