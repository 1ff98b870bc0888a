package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/omeyang/xcachekit/pkg/storage/xcache"
)

const replHelp = `可用命令:
  set <key> <value> [ttl]   写入，ttl 如 5s、1m，省略时使用默认 TTL
  get <key>                 读取
  peek <key>                读取但不计入访问
  del <key>                 删除
  search <substr>           搜索值包含子串的条目
  keys                      按存储顺序列出键
  len                       存活条目数
  stats                     统计信息
  clear                     清空
  advance <duration>        推进时钟（需要 --fake-clock）
  help                      显示帮助
  exit | quit               退出`

// session 一次交互会话。值统一按字符串存储。
type session struct {
	cache *xcache.Cache[string, string]
	clock *clockwork.FakeClock // 为 nil 表示使用系统时钟
	out   io.Writer
}

// cmdInteractive 交互模式（REPL）。
func cmdInteractive(ctx context.Context, e *env, in io.Reader, fakeClock bool) error {
	opts := []xcache.Option{xcache.WithLogger(e.logger)}
	var clock *clockwork.FakeClock
	if fakeClock {
		clock = clockwork.NewFakeClock()
		opts = append(opts, xcache.WithClock(clock))
	}
	c, err := newCache[string](e.settings, opts...)
	if err != nil {
		return err
	}

	stopWatch, err := e.watchLogLevel(ctx)
	if err != nil {
		return err
	}
	defer stopWatch()

	fmt.Fprintf(e.out, "xcachectl 交互模式（容量 %d，策略 %s）\n", c.Capacity(), c.Policy())
	fmt.Fprintln(e.out, "输入 'help' 查看可用命令，'quit' 或 'exit' 退出")
	fmt.Fprintln(e.out)

	return runREPL(ctx, &session{cache: c, clock: clock, out: e.out}, in)
}

// startInputReader 启动输入读取 goroutine。
// inputCh 无缓冲，发送端用 select 保护，ctx 取消后 goroutine 不会永久阻塞。
func startInputReader(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	inputCh := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(inputCh)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case inputCh <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
	}()

	return inputCh, errCh
}

// runREPL 运行 REPL 循环，直到 EOF、exit 或 ctx 取消。
func runREPL(ctx context.Context, s *session, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inputCh, errCh := startInputReader(ctx, in)

	for {
		fmt.Fprint(s.out, "xcache> ")

		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out, "\n再见!")
			return nil
		case err := <-errCh:
			return fmt.Errorf("读取输入错误: %w", err)
		case line, ok := <-inputCh:
			if !ok {
				// 扫描错误先于 close 写入 errCh
				select {
				case err := <-errCh:
					return fmt.Errorf("读取输入错误: %w", err)
				default:
				}
				fmt.Fprintln(s.out)
				return nil
			}
			if s.processLine(strings.TrimSpace(line)) {
				return nil
			}
		}
	}
}

// processLine 处理单行输入，返回 true 表示应该退出。
func (s *session) processLine(line string) bool {
	if line == "" {
		return false
	}
	if line == "quit" || line == "exit" {
		fmt.Fprintln(s.out, "再见!")
		return true
	}

	parts := parseCommandLine(line)
	if len(parts) == 0 {
		return false
	}
	if err := s.execute(parts[0], parts[1:]); err != nil {
		fmt.Fprintf(s.out, "错误: %v\n", err)
	}
	return false
}

var errArgs = errors.New("参数数量错误")

// execute 执行一条 REPL 命令。
func (s *session) execute(command string, args []string) error {
	switch strings.ToLower(command) {
	case "help":
		fmt.Fprintln(s.out, replHelp)
	case "set":
		return s.set(args)
	case "get", "peek":
		if len(args) != 1 {
			return fmt.Errorf("%w: %s <key>", errArgs, command)
		}
		read := s.cache.Read
		if command == "peek" {
			read = s.cache.Peek
		}
		if v, ok := read(args[0]); ok {
			fmt.Fprintln(s.out, v)
		} else {
			fmt.Fprintln(s.out, "(nil)")
		}
	case "del":
		if len(args) != 1 {
			return fmt.Errorf("%w: del <key>", errArgs)
		}
		if s.cache.Delete(args[0]) {
			fmt.Fprintln(s.out, "(deleted)")
		} else {
			fmt.Fprintln(s.out, "(not found)")
		}
	case "search":
		if len(args) > 1 {
			return fmt.Errorf("%w: search [substr]", errArgs)
		}
		sub := ""
		if len(args) == 1 {
			sub = args[0]
		}
		found := s.cache.Search(func(_ string, v string) bool {
			return strings.Contains(v, sub)
		})
		fmt.Fprintln(s.out, found)
	case "keys":
		fmt.Fprintln(s.out, s.cache.Keys())
	case "len":
		fmt.Fprintln(s.out, s.cache.Len())
	case "stats":
		printStats(s.out, s.cache.Stats())
	case "clear":
		s.cache.Clear()
		fmt.Fprintln(s.out, "OK")
	case "advance":
		return s.advance(args)
	default:
		return fmt.Errorf("未知命令 %q，输入 help 查看可用命令", command)
	}
	return nil
}

func (s *session) set(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("%w: set <key> <value> [ttl]", errArgs)
	}
	var ttl time.Duration
	if len(args) == 3 {
		d, err := time.ParseDuration(args[2])
		if err != nil {
			return fmt.Errorf("无效的 ttl %q: %w", args[2], err)
		}
		ttl = d
	}
	s.cache.Write(args[0], args[1], ttl)
	fmt.Fprintln(s.out, "OK")
	return nil
}

func (s *session) advance(args []string) error {
	if s.clock == nil {
		return errors.New("advance 需要 --fake-clock")
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: advance <duration>", errArgs)
	}
	d, err := time.ParseDuration(args[0])
	if err != nil {
		return fmt.Errorf("无效的时长 %q: %w", args[0], err)
	}
	if d < 0 {
		return fmt.Errorf("时长不能为负: %s", d)
	}
	s.clock.Advance(d)
	fmt.Fprintln(s.out, "OK")
	return nil
}

// printStats 输出统计快照。
func printStats(w io.Writer, st xcache.Stats) {
	fmt.Fprintf(w, "policy=%s capacity=%d len=%d\n", st.Policy, st.Capacity, st.Len)
	fmt.Fprintf(w, "hits=%d misses=%d hit_ratio=%.2f\n", st.Hits, st.Misses, st.HitRatio())
	fmt.Fprintf(w, "writes=%d evictions=%d expirations=%d deletes=%d\n",
		st.Writes, st.Evictions, st.Expirations, st.Deletes)
}

// parseCommandLine 解析命令行，支持引号和反斜杠转义。
func parseCommandLine(line string) []string {
	var parts []string
	var current strings.Builder
	var inQuote bool
	var quoteChar rune
	var escaped bool

	for _, r := range line {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		if r == '\\' {
			escaped = true
			continue
		}

		switch {
		case isQuoteStart(r, inQuote):
			inQuote = true
			quoteChar = r
		case isQuoteEnd(r, quoteChar, inQuote):
			inQuote = false
			quoteChar = 0
		case isWordSeparator(r, inQuote):
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

func isQuoteStart(r rune, inQuote bool) bool {
	return (r == '"' || r == '\'') && !inQuote
}

func isQuoteEnd(r, quoteChar rune, inQuote bool) bool {
	return r == quoteChar && inQuote
}

// 仅空格分词，Tab 视为参数的一部分。
func isWordSeparator(r rune, inQuote bool) bool {
	return r == ' ' && !inQuote
}
