package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xcachekit/pkg/observability/xlog"
	"github.com/omeyang/xcachekit/pkg/observability/xmetrics"
	"github.com/omeyang/xcachekit/pkg/storage/xcache"
)

const (
	defaultBenchWorkers = 8
	defaultBenchOps     = 10000
	defaultBenchKeys    = 1024

	// ctx 检查间隔
	benchCheckEvery = 256
)

type benchOptions struct {
	workers int
	ops     int
	keys    int
}

func (o benchOptions) validate() error {
	if o.workers <= 0 || o.ops <= 0 || o.keys <= 0 {
		return &usageError{msg: fmt.Sprintf("workers/ops/keys 必须大于 0（got %d/%d/%d）", o.workers, o.ops, o.keys)}
	}
	return nil
}

// cmdBench 并发压测。每个 worker 按固定比例混合 读/写/删除/搜索，
// 结束后输出缓存统计和按操作聚合的 OTel 指标。
func cmdBench(ctx context.Context, e *env, opts benchOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.NeverSample()))
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		_ = mp.Shutdown(shutdownCtx) //nolint:errcheck // 压测结束，关闭失败不影响结果
		_ = tp.Shutdown(shutdownCtx) //nolint:errcheck // 同上
	}()

	observer, err := xmetrics.NewOTelObserver(
		xmetrics.WithInstrumentationName("xcachectl"),
		xmetrics.WithMeterProvider(mp),
		xmetrics.WithTracerProvider(tp),
	)
	if err != nil {
		return err
	}

	c, err := newCache[int](e.settings, xcache.WithLogger(e.logger), xcache.WithObserver(observer))
	if err != nil {
		return err
	}

	keys := make([]string, opts.keys)
	for i := range keys {
		keys[i] = "key:" + strconv.Itoa(i)
	}

	// run_id 关联同一次压测的开始和结束日志
	logger := e.logger.With(slog.String("run_id", uuid.NewString()))
	logger.Info(ctx, "bench started",
		xlog.Policy(c.Policy()),
		xlog.Count(int64(opts.workers*opts.ops)),
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := range opts.workers {
		g.Go(func() error {
			return benchWorker(gctx, c, keys, opts.ops, uint64(w))
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("压测中断: %w", err)
	}
	elapsed := time.Since(start)

	logger.Info(ctx, "bench finished", xlog.Duration(elapsed))

	total := opts.workers * opts.ops
	fmt.Fprintf(e.out, "workers=%d ops=%d keys=%d elapsed=%s ops/s=%.0f\n",
		opts.workers, total, opts.keys, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	printStats(e.out, c.Stats())

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.WithoutCancel(ctx), &rm); err != nil {
		return fmt.Errorf("收集指标失败: %w", err)
	}
	printOperationMetrics(e.out, rm)
	return nil
}

// benchWorker 执行 ops 次随机操作：60% 读、30% 写、9% 删除、1% 搜索。
func benchWorker(ctx context.Context, c *xcache.Cache[string, int], keys []string, ops int, seed uint64) error {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range ops {
		if i%benchCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		key := keys[rng.IntN(len(keys))]
		switch n := rng.IntN(100); {
		case n < 60:
			c.Read(key)
		case n < 90:
			c.Write(key, i, 0)
		case n < 99:
			c.Delete(key)
		default:
			mod := rng.IntN(97) + 1
			c.Search(func(_ string, v int) bool { return v%mod == 0 })
		}
	}
	return nil
}

// printOperationMetrics 按 operation/status 输出 xcache.operation.total 计数。
func printOperationMetrics(w io.Writer, rm metricdata.ResourceMetrics) {
	type row struct {
		op, status string
		n          int64
	}
	var rows []row
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "xcache.operation.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				rows = append(rows, row{
					op:     attrValue(dp.Attributes, "operation"),
					status: attrValue(dp.Attributes, "status"),
					n:      dp.Value,
				})
			}
		}
	}
	slices.SortFunc(rows, func(a, b row) int {
		return cmp.Or(cmp.Compare(a.op, b.op), cmp.Compare(a.status, b.status))
	})

	fmt.Fprintln(w, "operation metrics:")
	for _, r := range rows {
		fmt.Fprintf(w, "  %-12s %-6s %d\n", r.op, r.status, r.n)
	}
}

func attrValue(set attribute.Set, key string) string {
	v, ok := set.Value(attribute.Key(key))
	if !ok {
		return ""
	}
	return v.Emit()
}
