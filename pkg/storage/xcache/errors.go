package xcache

import "errors"

var (
	// ErrInvalidCapacity 表示容量配置无效（必须大于 0）。
	ErrInvalidCapacity = errors.New("xcache: capacity must be greater than 0")

	// ErrCapacityExceedsMax 表示容量超过上限 (16,777,216)。
	ErrCapacityExceedsMax = errors.New("xcache: capacity must not exceed 16777216")

	// ErrUnknownPolicy 表示淘汰策略无法识别。
	ErrUnknownPolicy = errors.New("xcache: unknown eviction policy")

	// ErrInvalidTTL 表示默认 TTL 为负值。
	ErrInvalidTTL = errors.New("xcache: default TTL must not be negative")

	// ErrCallbackType 表示 WithOnRemoved 回调的键值类型与 Cache 不匹配。
	ErrCallbackType = errors.New("xcache: OnRemoved callback type does not match cache type")
)
