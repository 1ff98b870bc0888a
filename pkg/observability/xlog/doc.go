// Package xlog 基于 log/slog 的结构化日志，供 xcache 输出诊断信息。
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins：遇到第一个配置错误后，后续 Set 操作被跳过）：
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/xcache/cache.log").
//		Build()
//	defer cleanup()
//
// Build 返回的 cleanup 负责关闭轮转文件，可重复调用。
//
// # 空实现
//
// [Nop] 返回丢弃所有输出的 Logger，xcache 未配置日志时使用它，
// 因此缓存热路径上不会有格式化开销。
//
// # 缓存属性
//
// [Key]、[Reason]、[Policy]、[Count]、[Err] 等函数构造统一 key 的属性，
// 保证淘汰、过期日志在不同调用点字段一致。
package xlog
