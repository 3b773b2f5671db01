// Package app 基于 Cobra、Viper 和 Pflag 提供服务进程的启动骨架。
//
// 配置优先级从高到低：命令行显式设置的 flag、环境变量（<NAME>_ 前缀）、
// 配置文件、flag 默认值。配置文件中的 ${VAR} 会按环境变量展开。
//
//	app.NewApp(
//	    app.WithName("docqa"),
//	    app.WithOptions(opts),
//	    app.WithRunFunc(run),
//	).Run()
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kart-io/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CliOptions 是可由命令行和配置文件填充的选项集合。
type CliOptions interface {
	// AddFlags 注册 flag，flag 名即配置键（如 milvus.address）。
	AddFlags(fs *pflag.FlagSet)
	// Complete 填充派生字段。
	Complete() error
	// Validate 校验选项。
	Validate() error
}

// App 应用程序。
type App struct {
	name        string
	shortDesc   string
	description string
	options     CliOptions
	runFunc     RunFunc
	cmd         *cobra.Command
	viper       *viper.Viper
	noVersion   bool
	noConfig    bool
}

// RunFunc 应用主函数。
type RunFunc func() error

// Option 配置 App。
type Option func(*App)

// WithName 设置应用名，同时决定配置文件名和环境变量前缀。
func WithName(name string) Option {
	return func(a *App) {
		a.name = name
	}
}

// WithShortDescription 设置简短描述。
func WithShortDescription(desc string) Option {
	return func(a *App) {
		a.shortDesc = desc
	}
}

// WithDescription 设置详细描述。
func WithDescription(desc string) Option {
	return func(a *App) {
		a.description = desc
	}
}

// WithOptions 设置命令行选项。
func WithOptions(opts CliOptions) Option {
	return func(a *App) {
		a.options = opts
	}
}

// WithRunFunc 设置主函数。
func WithRunFunc(run RunFunc) Option {
	return func(a *App) {
		a.runFunc = run
	}
}

// WithNoVersion 不注册 --version。
func WithNoVersion() Option {
	return func(a *App) {
		a.noVersion = true
	}
}

// WithNoConfig 不加载配置文件和环境变量。
func WithNoConfig() Option {
	return func(a *App) {
		a.noConfig = true
	}
}

// NewApp 创建应用。
func NewApp(opts ...Option) *App {
	a := &App{
		name:  filepath.Base(os.Args[0]),
		viper: viper.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.buildCommand()
	return a
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:          a.name,
		Short:        a.shortDesc,
		Long:         a.description,
		RunE:         a.runCommand,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	cmd.Flags().SortFlags = true

	if !a.noConfig {
		cmd.PersistentFlags().StringP("config", "c", "", "Path to config file")
	}
	if !a.noVersion {
		version.AddFlags(cmd.PersistentFlags())
	}
	if a.options != nil {
		a.options.AddFlags(cmd.Flags())
	}

	a.cmd = cmd
}

func (a *App) runCommand(cmd *cobra.Command, _ []string) error {
	if !a.noVersion {
		version.PrintAndExitIfRequested()
	}

	if !a.noConfig {
		if err := a.loadConfig(cmd); err != nil {
			return err
		}
	}

	if a.options != nil {
		if err := a.options.Complete(); err != nil {
			return err
		}
		if err := a.options.Validate(); err != nil {
			return err
		}
	}

	if a.runFunc != nil {
		return a.runFunc()
	}
	return nil
}

// loadConfig 读取配置文件与环境变量并解码到 options。
func (a *App) loadConfig(cmd *cobra.Command) error {
	v := a.viper

	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(a.name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "."+a.name))
		}
		v.AddConfigPath("/etc/" + a.name)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	expandEnvVars(v)

	v.SetEnvPrefix(strings.ToUpper(strings.ReplaceAll(a.name, "-", "_")))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if a.options == nil {
		return nil
	}

	// 绑定 flag 让 viper 感知全部键，未在配置文件出现的键也能从环境变量读取
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := v.Unmarshal(a.options); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVars 展开配置值中的 ${VAR} 与 $VAR，未设置的变量保留原样。
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		switch val := v.Get(key).(type) {
		case string:
			if expanded := expandString(val); expanded != val {
				v.Set(key, expanded)
			}
		case []any:
			out := make([]any, len(val))
			for i, item := range val {
				if s, ok := item.(string); ok {
					out[i] = expandString(s)
				} else {
					out[i] = item
				}
			}
			v.Set(key, out)
		}
	}
}

func expandString(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		name = strings.TrimSuffix(strings.TrimPrefix(name, "{"), "}")
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

// Run 执行应用，出错时以状态码 1 退出。
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Command 返回底层 cobra 命令。
func (a *App) Command() *cobra.Command {
	return a.cmd
}
