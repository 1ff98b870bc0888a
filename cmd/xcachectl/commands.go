package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xcachekit/pkg/observability/xlog"
)

// exitError 表示命令已完成输出，只需设置非零退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

// usageError 参数或配置错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// isCLIUsageError 判断是否为 urfave/cli 产生的参数解析错误。
// 这类错误的详情已由框架输出。
func isCLIUsageError(err error) bool {
	if _, ok := err.(cli.ExitCoder); ok {
		return true
	}
	msg := err.Error()
	for _, prefix := range []string{
		"flag provided but not defined",
		"invalid value",
		"flag needs an argument",
		"No help topic for",
	} {
		if strings.Contains(msg, prefix) {
			return true
		}
	}
	return false
}

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createDemoCommand(),
		createInteractiveCommand(),
		createBenchCommand(),
	}
}

// env 命令运行环境：合并后的配置、logger 和输出。
type env struct {
	settings   settings
	configPath string
	logger     xlog.LoggerWithLevel
	out        io.Writer
	cleanup    func() error
}

// newEnv 加载配置并构建 logger。日志写 stderr，命令输出写 cmd.Root().Writer。
func newEnv(cmd *cli.Command) (*env, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	errw := cmd.Root().ErrWriter
	if errw == nil {
		errw = os.Stderr
	}
	logger, cleanup, err := s.buildLogger(errw)
	if err != nil {
		return nil, err
	}
	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	return &env{
		settings:   s,
		configPath: cmd.String(flagConfig),
		logger:     logger,
		out:        out,
		cleanup:    cleanup,
	}, nil
}

func (e *env) close() {
	_ = e.cleanup() //nolint:errcheck // 退出前关闭日志文件
}

// createDemoCommand 创建 demo 子命令。
func createDemoCommand() *cli.Command {
	return &cli.Command{
		Name:      "demo",
		Aliases:   []string{"d"},
		Usage:     "运行内置演示场景",
		ArgsUsage: "[scenario...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			return cmdDemo(ctx, e, cmd.Args().Slice())
		},
	}
}

// createInteractiveCommand 创建 interactive 子命令。
func createInteractiveCommand() *cli.Command {
	return &cli.Command{
		Name:    "interactive",
		Aliases: []string{"i", "repl"},
		Usage:   "交互模式（REPL）",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "fake-clock",
				Usage: "使用可手动推进的时钟（advance 命令）",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			in := cmd.Root().Reader
			if in == nil {
				in = os.Stdin
			}
			return cmdInteractive(ctx, e, in, cmd.Bool("fake-clock"))
		},
	}
}

// createBenchCommand 创建 bench 子命令。
func createBenchCommand() *cli.Command {
	return &cli.Command{
		Name:    "bench",
		Aliases: []string{"b"},
		Usage:   "并发压测",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "并发 worker 数", Value: defaultBenchWorkers},
			&cli.IntFlag{Name: "ops", Aliases: []string{"n"}, Usage: "每个 worker 的操作数", Value: defaultBenchOps},
			&cli.IntFlag{Name: "keys", Aliases: []string{"k"}, Usage: "键空间大小", Value: defaultBenchKeys},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			opts := benchOptions{
				workers: cmd.Int("workers"),
				ops:     cmd.Int("ops"),
				keys:    cmd.Int("keys"),
			}
			return cmdBench(ctx, e, opts)
		},
	}
}

// setupSignalHandler 设置信号处理，返回的 stop 回收订阅。
// 第一次信号优雅取消，第二次信号强制退出（退出码 130 = 128 + SIGINT）。
func setupSignalHandler(cancel context.CancelFunc) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		for n := 0; ; n++ {
			select {
			case <-sigCh:
				if n > 0 {
					os.Exit(130)
				}
				cancel()
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}
