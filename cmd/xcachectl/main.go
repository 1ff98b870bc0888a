// xcachectl 是 xcache 的命令行驱动，用于演示淘汰策略、交互调试和压测。
//
// 用法:
//
//	xcachectl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config       配置文件路径（YAML/JSON）
//	    --capacity     缓存容量（覆盖配置文件）
//	    --policy       淘汰策略 FIFO/LRU/LFU（覆盖配置文件）
//	    --default-ttl  默认 TTL，0 表示永不过期（覆盖配置文件）
//	    --log-level    日志级别 debug/info/warn/error
//	    --log-format   日志格式 text/json
//	    --log-file     日志文件路径（按大小轮转），为空时输出到 stderr
//
// 命令:
//
//	demo [场景...]     运行内置场景（fifo、lru-ttl、lfu-batch、search），默认全部
//	interactive        交互模式（REPL）
//	bench              并发压测并输出统计
//
// 配置优先级：命令行参数 > 配置文件 > 默认值。
//
// 退出码:
//
//	0: 成功
//	1: 运行时错误
//	2: 参数或配置错误
//
// 示例:
//
//	xcachectl demo                              # 运行全部场景
//	xcachectl --log-level debug demo lru-ttl    # 查看淘汰与过期日志
//	xcachectl -c cache.yaml interactive         # 使用配置文件进入交互模式
//	xcachectl --policy lfu bench --workers 16   # LFU 并发压测
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "xcachectl",
		Usage:   "xcache 命令行驱动",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "配置文件路径（YAML/JSON）",
			},
			&cli.IntFlag{
				Name:  flagCapacity,
				Usage: "缓存容量",
				Value: defaultCapacity,
			},
			&cli.StringFlag{
				Name:  flagPolicy,
				Usage: "淘汰策略 FIFO/LRU/LFU",
				Value: defaultPolicy,
			},
			&cli.DurationFlag{
				Name:  flagDefaultTTL,
				Usage: "默认 TTL，0 表示永不过期",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "日志级别 debug/info/warn/error",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  flagLogFormat,
				Usage: "日志格式 text/json",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "日志文件路径（按大小轮转）",
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		Authors: []any{
			"XCacheKit Team",
		},
		// 由 run() 统一处理退出码映射，禁止 urfave/cli 直接调用 os.Exit。
		ExitErrHandler: func(_ context.Context, cmd *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(cmd.Root().ErrWriter, err)
			}
		},
		Description: `xcachectl 驱动一个进程内 xcache 实例。

演示场景:
  fifo        容量 2 的 FIFO，第三次写入淘汰最早插入的键
  lru-ttl     容量 2 的 LRU，TTL 到期后键不可见
  lfu-batch   批量写入后按访问频率淘汰
  search      按谓词搜索不同类型的值

交互命令:
  set <key> <value> [ttl]   写入
  get <key>                 读取
  peek <key>                读取但不计入访问
  del <key>                 删除
  search <substr>           搜索值包含子串的条目
  keys | len | stats        查看状态
  clear                     清空
  advance <duration>        推进演示时钟（仅 --fake-clock）
  help | exit`,
	}
}

func run(args []string) int {
	return runApp(args, os.Stdin, os.Stdout, os.Stderr)
}

// runApp 运行 CLI 并把错误映射为退出码。
func runApp(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := createApp()
	app.Reader = stdin
	app.Writer = stdout
	app.ErrWriter = stderr

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := setupSignalHandler(cancel)
	defer stop()

	if err := app.Run(ctx, args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		// 框架产生的参数错误详情已输出，只设置退出码
		if isCLIUsageError(err) {
			return 2
		}
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}

	return 0
}
