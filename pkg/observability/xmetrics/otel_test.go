package xmetrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newTestObserver 创建使用内存 exporter / reader 的 Observer
func newTestObserver(t *testing.T) (Observer, *sdkmetric.ManualReader, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	obs, err := NewOTelObserver(
		WithInstrumentationName("test"),
		WithTracerProvider(tp),
		WithMeterProvider(mp),
	)
	require.NoError(t, err)
	return obs, reader, exporter
}

// sumOf 汇总指定 Int64 Sum 指标中满足属性过滤的数据点
func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string, match map[string]string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				if matches(dp.Attributes, match) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func matches(set attribute.Set, match map[string]string) bool {
	for k, want := range match {
		v, ok := set.Value(attribute.Key(k))
		if !ok || v.AsString() != want {
			return false
		}
	}
	return true
}

func TestNewOTelObserver_Defaults(t *testing.T) {
	obs, err := NewOTelObserver(nil, WithInstrumentationName(""), WithTracerProvider(nil), WithMeterProvider(nil))
	require.NoError(t, err)
	require.NotNil(t, obs)

	_, span := obs.Start(nil, SpanOptions{}) //nolint:staticcheck // nil ctx 会被兜底
	assert.NotPanics(t, func() { span.End(Result{}) })
}

func TestOTelObserver_OperationMetrics(t *testing.T) {
	obs, reader, exporter := newTestObserver(t)
	ctx := context.Background()

	_, span := Start(ctx, obs, SpanOptions{Component: "xcache", Operation: "read"})
	span.End(Result{Status: StatusHit})
	_, span = Start(ctx, obs, SpanOptions{Component: "xcache", Operation: "read"})
	span.End(Result{Status: StatusMiss})
	_, span = Start(ctx, obs, SpanOptions{Component: "xcache", Operation: "write", Attrs: []Attr{Int("capacity", 2)}})
	span.End(Result{Evicted: 1, Expired: 2})
	span.End(Result{Evicted: 5}) // 幂等

	assert.Equal(t, int64(1), sumOf(t, reader, metricOperationTotal, map[string]string{"operation": "read", "status": "hit"}))
	assert.Equal(t, int64(1), sumOf(t, reader, metricOperationTotal, map[string]string{"operation": "read", "status": "miss"}))
	assert.Equal(t, int64(1), sumOf(t, reader, metricOperationTotal, map[string]string{"operation": "write", "status": "ok"}))
	assert.Equal(t, int64(1), sumOf(t, reader, metricEntriesRemoved, map[string]string{"reason": "evicted"}))
	assert.Equal(t, int64(2), sumOf(t, reader, metricEntriesRemoved, map[string]string{"reason": "expired"}))

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)
	assert.Equal(t, "xcache.read", spans[0].Name)
	assert.Equal(t, "xcache.write", spans[2].Name)
}

func TestOTelObserver_ErrorStatus(t *testing.T) {
	obs, reader, exporter := newTestObserver(t)

	_, span := Start(context.Background(), obs, SpanOptions{Component: "xcache", Operation: "search"})
	span.End(Result{Err: errors.New("predicate panic")})

	_, span = Start(context.Background(), obs, SpanOptions{})
	span.End(Result{Status: StatusError})

	assert.Equal(t, int64(1), sumOf(t, reader, metricOperationTotal, map[string]string{"operation": "search", "status": "error"}))
	assert.Equal(t, int64(1), sumOf(t, reader, metricOperationTotal, map[string]string{"component": unknownComponent, "status": "error"}))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "predicate panic", spans[0].Status.Description)
	assert.Equal(t, "operation failed", spans[1].Status.Description)
}

func TestStart_NilObserver(t *testing.T) {
	ctx, span := Start(nil, nil, SpanOptions{}) //nolint:staticcheck // nil ctx 会被兜底
	assert.NotNil(t, ctx)
	assert.IsType(t, NoopSpan{}, span)

	ctx, span = Start(context.Background(), NoopObserver{}, SpanOptions{})
	assert.NotNil(t, ctx)
	span.End(Result{})
}

type nilObserver struct{}

func (nilObserver) Start(context.Context, SpanOptions) (context.Context, Span) { return nil, nil }

func TestStart_ObserverReturnsNil(t *testing.T) {
	ctx, span := Start(context.Background(), nilObserver{}, SpanOptions{})
	assert.NotNil(t, ctx)
	assert.IsType(t, NoopSpan{}, span)
}

func TestResolveStatus(t *testing.T) {
	assert.Equal(t, StatusOK, resolveStatus(Result{}))
	assert.Equal(t, StatusError, resolveStatus(Result{Err: errors.New("x")}))
	assert.Equal(t, StatusMiss, resolveStatus(Result{Status: StatusMiss, Err: errors.New("x")}))
}

func TestAttrsToOTel(t *testing.T) {
	got := attrsToOTel([]Attr{
		String("policy", "LRU"),
		Int("capacity", 2),
		Bool("batch", true),
		{Key: "ratio", Value: 0.5},
		{Key: "big", Value: int64(7)},
		{Key: "other", Value: []int{1}},
		{Key: "", Value: "dropped"},
		{Key: "nil", Value: nil},
	})
	require.Len(t, got, 6)
	assert.Equal(t, "LRU", got[0].Value.AsString())
	assert.Equal(t, int64(2), got[1].Value.AsInt64())
	assert.True(t, got[2].Value.AsBool())
	assert.InDelta(t, 0.5, got[3].Value.AsFloat64(), 0)
	assert.Equal(t, int64(7), got[4].Value.AsInt64())
	assert.Equal(t, "[1]", got[5].Value.AsString())
	assert.Nil(t, attrsToOTel(nil))
}
