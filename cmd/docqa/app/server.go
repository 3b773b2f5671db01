// Package app 提供文档问答服务的命令行应用。
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kart-io/docqa/cmd/docqa/app/options"
	"github.com/kart-io/docqa/pkg/infra/app"
)

const (
	// Name 应用名，同时决定配置文件名 docqa.yaml 与环境变量前缀 DOCQA_。
	Name = "docqa"

	commandDesc = `DocQA Service

Upload PDF or TXT documents and ask questions about them.

This server provides:
  - Document ingestion: text extraction, chunking, embedding and vector storage
  - Question answering grounded in the most similar document chunks
  - Conversational fallback when no document is relevant
  - Document deletion and index statistics
  - Pluggable embedding and chat providers (Gemini, OpenAI, Ollama)`
)

// NewApp 创建应用。
func NewApp() *app.App {
	opts := options.NewServerOptions()
	return app.NewApp(
		app.WithName(Name),
		app.WithShortDescription("Document question-answering service"),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
}

func run(opts *options.ServerOptions) app.RunFunc {
	return func() error {
		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx := setupSignalContext()

		server, err := cfg.NewServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		return server.Run(ctx)
	}
}

// setupSignalContext 在收到 SIGINT 或 SIGTERM 时取消 ctx，第二次信号直接退出。
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
