package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/omeyang/xcachekit/pkg/observability/xlog"
	"github.com/omeyang/xcachekit/pkg/storage/xcache"
)

// scenario 演示场景。每个场景使用独立的缓存和可推进的时钟，TTL 等待不占用真实时间。
// 场景自带容量和策略，不受全局缓存配置影响。
type scenario struct {
	name  string
	usage string
	run   func(ctx context.Context, w io.Writer, opts ...xcache.Option) error
}

// scenarios 按运行顺序排列。
func scenarios() []scenario {
	return []scenario{
		{name: "fifo", usage: "FIFO 按插入顺序淘汰", run: runFIFOScenario},
		{name: "lru-ttl", usage: "LRU 淘汰与 TTL 过期", run: runLRUTTLScenario},
		{name: "lfu-batch", usage: "批量写入与 LFU 淘汰", run: runLFUBatchScenario},
		{name: "search", usage: "按谓词搜索不同类型的值", run: runSearchScenario},
	}
}

func scenarioNames() []string {
	all := scenarios()
	names := make([]string, 0, len(all))
	for _, sc := range all {
		names = append(names, sc.name)
	}
	return names
}

func unknownScenario(name string) error {
	return &usageError{msg: fmt.Sprintf("未知场景 %q（可选: %s）", name, strings.Join(scenarioNames(), ", "))}
}

// selectScenarios 按名称挑选场景，names 为空时返回全部。
func selectScenarios(names []string) ([]scenario, error) {
	all := scenarios()
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]scenario, len(all))
	for _, sc := range all {
		byName[sc.name] = sc
	}
	selected := make([]scenario, 0, len(names))
	for _, n := range names {
		sc, ok := byName[strings.ToLower(n)]
		if !ok {
			return nil, unknownScenario(n)
		}
		selected = append(selected, sc)
	}
	return selected, nil
}

// cmdDemo 依次运行场景。
func cmdDemo(ctx context.Context, e *env, names []string) error {
	selected, err := selectScenarios(names)
	if err != nil {
		return err
	}
	for i, sc := range selected {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(e.out)
		}
		fmt.Fprintf(e.out, "== %s: %s\n", sc.name, sc.usage)
		e.logger.Info(ctx, "running scenario", xlog.Operation(sc.name))
		if err := sc.run(ctx, e.out, xcache.WithLogger(e.logger)); err != nil {
			e.logger.Error(ctx, "scenario failed", xlog.Operation(sc.name), xlog.Err(err))
			return fmt.Errorf("场景 %s 失败: %w", sc.name, err)
		}
	}
	return nil
}

// readResult 格式化一次读取结果，未命中输出 <miss>。
func readResult[V any](c *xcache.Cache[string, V], key string) string {
	v, ok := c.Read(key)
	if !ok {
		return "<miss>"
	}
	return fmt.Sprint(v)
}

func runFIFOScenario(_ context.Context, w io.Writer, opts ...xcache.Option) error {
	clock := clockwork.NewFakeClock()
	c, err := xcache.New[string, any](xcache.Config{Capacity: 2, Policy: xcache.PolicyFIFO},
		append(opts, xcache.WithClock(clock))...)
	if err != nil {
		return err
	}

	c.Write("a", []string{"hello", "hye"}, 5*time.Second)
	c.Write("b", "banana", 5*time.Second)
	fmt.Fprintln(w, "After 2 writes:", c.Keys())

	c.Write("c", "cherry", 5*time.Second)
	fmt.Fprintln(w, "After 3rd write (eviction expected):", c.Keys())

	c.Write("d", []string{"hello", "hii"}, 5*time.Second)
	fmt.Fprintln(w, "Read b:", readResult(c, "b"))
	fmt.Fprintln(w, "Read a:", readResult(c, "a"))
	fmt.Fprintln(w, "Read d:", readResult(c, "d"))
	return nil
}

func runLRUTTLScenario(_ context.Context, w io.Writer, opts ...xcache.Option) error {
	clock := clockwork.NewFakeClock()
	c, err := xcache.New[string, any](xcache.Config{Capacity: 2, Policy: xcache.PolicyLRU},
		append(opts, xcache.WithClock(clock))...)
	if err != nil {
		return err
	}

	c.Write("a", 5, 2*time.Second)
	c.Write("b", 6, 2*time.Second)
	fmt.Fprintln(w, "After 2 writes:", c.Keys())

	c.Write("c", "cherry", 2*time.Second)
	fmt.Fprintln(w, "After 3rd write (eviction expected):", c.Keys())

	fmt.Fprintln(w, "Read b:", readResult(c, "b"))
	clock.Advance(5 * time.Second)
	fmt.Fprintln(w, "After 5s, read a:", readResult(c, "a"))
	fmt.Fprintln(w, "After 5s, read b:", readResult(c, "b"))
	fmt.Fprintln(w, "Len:", c.Len())
	return nil
}

func runLFUBatchScenario(_ context.Context, w io.Writer, opts ...xcache.Option) error {
	clock := clockwork.NewFakeClock()
	c, err := xcache.New[string, any](xcache.Config{Capacity: 4, Policy: xcache.PolicyLFU},
		append(opts, xcache.WithClock(clock))...)
	if err != nil {
		return err
	}

	c.WriteBatch([]xcache.Pair[string, any]{
		{Key: "a", Value: "apple"},
		{Key: "b", Value: "tomato"},
		{Key: "c", Value: "cherry"},
	}, 2*time.Second)
	c.Write("d", "GUAVA", 2*time.Second)
	for range 3 {
		c.Read("b")
	}
	fmt.Fprintln(w, "After 4 writes and b read 3 times:", c.Keys())

	c.Write("e", "mango", 2*time.Second)
	fmt.Fprintln(w, "After 5th write (LFU eviction expected):", c.Keys())

	fmt.Fprintln(w, "Read b:", readResult(c, "b"))
	fmt.Fprintln(w, "Read a:", readResult(c, "a"))
	fmt.Fprintln(w, "Read e:", readResult(c, "e"))
	return nil
}

func runSearchScenario(_ context.Context, w io.Writer, opts ...xcache.Option) error {
	clock := clockwork.NewFakeClock()
	c, err := xcache.New[string, any](xcache.Config{Capacity: 2, Policy: xcache.PolicyFIFO},
		append(opts, xcache.WithClock(clock))...)
	if err != nil {
		return err
	}

	c.Write("x", 12345, 5*time.Second)
	c.Write("y", "banana", 5*time.Second)

	digits := c.Search(func(_ string, v any) bool {
		switch v.(type) {
		case int, string:
			return strings.Contains(fmt.Sprint(v), "1")
		}
		return false
	})
	strs := c.Search(func(_ string, v any) bool {
		s, ok := v.(string)
		return ok && strings.Contains(s, "a")
	})
	fmt.Fprintln(w, "Search strings containing 'a':", strs)
	fmt.Fprintln(w, "Search values containing '1':", digits)
	return nil
}
