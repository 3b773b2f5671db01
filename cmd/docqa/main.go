// Package main 是文档问答服务的入口。
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/docqa/cmd/docqa/app"
)

func main() {
	app.NewApp().Run()
}
