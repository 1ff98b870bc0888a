package xlog

import (
	"fmt"
	"log/slog"
	"time"
)

// 常用属性 key
const (
	KeyError     = "error"
	KeyDuration  = "duration"
	KeyCount     = "count"
	KeyComponent = "component"
	KeyOperation = "operation"

	// KeyCacheKey 缓存键
	KeyCacheKey = "key"
	// KeyReason 条目移除原因（evicted/expired/deleted/cleared）
	KeyReason = "reason"
	// KeyPolicy 淘汰策略
	KeyPolicy = "policy"
)

// Err 创建错误属性，err 为 nil 时返回空属性（会被 slog 忽略）
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建人类可读的耗时属性
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Count 创建计数属性
func Count(n int64) slog.Attr {
	return slog.Int64(KeyCount, n)
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Operation 创建操作名属性
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

// Key 创建缓存键属性
//
// 字符串键原样输出，其他可比较类型用 %v 格式化。
func Key(k any) slog.Attr {
	if s, ok := k.(string); ok {
		return slog.String(KeyCacheKey, s)
	}
	return slog.String(KeyCacheKey, fmt.Sprint(k))
}

// Reason 创建移除原因属性
func Reason(r fmt.Stringer) slog.Attr {
	return slog.String(KeyReason, r.String())
}

// Policy 创建淘汰策略属性
func Policy(p fmt.Stringer) slog.Attr {
	return slog.String(KeyPolicy, p.String())
}
