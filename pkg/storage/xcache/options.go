package xcache

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/omeyang/xcachekit/pkg/observability/xlog"
	"github.com/omeyang/xcachekit/pkg/observability/xmetrics"
)

// maxCapacity 容量上限。
const maxCapacity = 1 << 24 // 16,777,216

// Config 定义缓存配置，可由 xconf 从配置文件反序列化。
type Config struct {
	// Capacity 最大存活条目数，必须 > 0 且 ≤ 16,777,216。
	Capacity int `koanf:"capacity"`

	// Policy 淘汰策略，构造后不可更改。
	Policy Policy `koanf:"policy"`

	// DefaultTTL 写入未指定 TTL（ttl <= 0）时使用的过期时间。
	// 0 表示这类条目永不过期，不允许负值。
	DefaultTTL time.Duration `koanf:"default_ttl"`
}

// Option 定义可选配置函数类型。
type Option func(*options)

type options struct {
	clock     clockwork.Clock
	logger    xlog.Logger
	observer  xmetrics.Observer
	onRemoved any // func(K, V, RemovalReason)，在 New 中校验类型
}

// WithClock 设置时间源，nil 忽略。默认使用系统时钟。
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger 设置诊断日志，淘汰和过期事件以 Debug 级别输出。nil 忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver 设置观测器，每个公开方法产生一个跨度。nil 忽略。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithOnRemoved 设置条目被移除（淘汰、过期、删除、清空）时的回调。
//
// 回调在锁外、操作完成后同步执行，可以调用 Cache 自身方法。
// 覆盖写入不触发回调。K、V 必须与 Cache 的类型参数一致，否则 New 返回 [ErrCallbackType]。
func WithOnRemoved[K comparable, V any](fn func(key K, value V, reason RemovalReason)) Option {
	return func(o *options) {
		if fn != nil {
			o.onRemoved = fn
		}
	}
}
