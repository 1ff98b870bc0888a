// Package xmetrics 为 xcache 提供统一的可观测性接口（metrics + tracing）。
//
// 业务代码只依赖 [Observer] / [Span]，默认实现基于 OpenTelemetry：
//
//	obs, _ := xmetrics.NewOTelObserver(xmetrics.WithMeterProvider(mp))
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "xcache",
//		Operation: "read",
//	})
//	span.End(xmetrics.Result{Status: xmetrics.StatusHit})
//
// # 指标
//
//   - xcache.operation.total：操作次数，属性 component / operation / status
//   - xcache.operation.duration：操作耗时（秒）
//   - xcache.entries.removed：被动移除的条目数，属性 component / reason（evicted / expired）
//
// status 取值 ok / error / hit / miss，读操作用 hit / miss 表达命中率。
package xmetrics
