package xcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/omeyang/xcachekit/pkg/observability/xlog"
	"github.com/omeyang/xcachekit/pkg/observability/xmetrics"
)

// 观测用的组件名和操作名。
const (
	component = "xcache"

	opWrite      = "write"
	opWriteBatch = "write_batch"
	opRead       = "read"
	opPeek       = "peek"
	opDelete     = "delete"
	opSearch     = "search"
	opKeys       = "keys"
	opLen        = "len"
	opClear      = "clear"
)

// Pair 是 WriteBatch 的一个键值对。
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Cache 是有界容量、带 TTL 的进程内缓存。
// 必须通过 [New] 创建，零值不可用。所有方法都是并发安全的。
type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	capacity   int
	policy     Policy
	defaultTTL time.Duration
	store      *store[K, V]
	evictor    evictor[K, V]
	stats      counters

	clock     clockwork.Clock
	logger    xlog.Logger
	observer  xmetrics.Observer
	onRemoved func(K, V, RemovalReason)
}

// removal 一次被动或显式移除，解锁后通知。
type removal[K comparable, V any] struct {
	key    K
	value  V
	reason RemovalReason
}

// call 贯穿一次公开方法调用的观测状态。
type call[K comparable, V any] struct {
	ctx     context.Context
	span    xmetrics.Span
	status  xmetrics.Status
	removed []removal[K, V]
}

// New 创建缓存。
//
// cfg.Capacity <= 0 返回 [ErrInvalidCapacity]，超过上限返回 [ErrCapacityExceedsMax]；
// cfg.Policy 无效返回 [ErrUnknownPolicy]；cfg.DefaultTTL < 0 返回 [ErrInvalidTTL]。
func New[K comparable, V any](cfg Config, opts ...Option) (*Cache[K, V], error) {
	if cfg.Capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, cfg.Capacity)
	}
	if cfg.Capacity > maxCapacity {
		return nil, fmt.Errorf("%w: got %d", ErrCapacityExceedsMax, cfg.Capacity)
	}
	if cfg.DefaultTTL < 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidTTL, cfg.DefaultTTL)
	}
	ev, err := newEvictor[K, V](cfg.Policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, cfg.Policy)
	}

	o := options{
		clock:    clockwork.NewRealClock(),
		logger:   xlog.Nop(),
		observer: xmetrics.NoopObserver{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	var onRemoved func(K, V, RemovalReason)
	if o.onRemoved != nil {
		fn, ok := o.onRemoved.(func(K, V, RemovalReason))
		if !ok {
			return nil, fmt.Errorf("%w: got %T", ErrCallbackType, o.onRemoved)
		}
		onRemoved = fn
	}

	st, err := newStore[K, V](cfg.Capacity)
	if err != nil {
		return nil, err
	}

	return &Cache[K, V]{
		capacity:   cfg.Capacity,
		policy:     cfg.Policy,
		defaultTTL: cfg.DefaultTTL,
		store:      st,
		evictor:    ev,
		clock:      o.clock,
		logger:     o.logger.With(xlog.Component(component), xlog.Policy(cfg.Policy)),
		observer:   o.observer,
		onRemoved:  onRemoved,
	}, nil
}

// Write 写入键值。ttl <= 0 时使用 Config.DefaultTTL，两者都为 0 则永不过期。
//
// 键已存在时原地替换（访问计数重置为 1）；键不存在且存活条目数已达容量时，
// 先按策略淘汰一个条目再插入。
func (c *Cache[K, V]) Write(key K, value V, ttl time.Duration) {
	cl := c.begin(opWrite)
	defer c.finish(cl)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	c.purgeLocked(cl, now)
	c.writeLocked(cl, now, key, value, ttl)
}

// WriteBatch 按顺序写入多个键值对，共享同一个 ttl。
//
// 语义与逐个调用 Write 完全一致：后面的键值对可能淘汰同批次中前面写入的键。
// 整批在一次加锁内完成，期间不会穿插其他操作。
func (c *Cache[K, V]) WriteBatch(pairs []Pair[K, V], ttl time.Duration) {
	cl := c.begin(opWriteBatch)
	defer c.finish(cl)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	c.purgeLocked(cl, now)
	for _, p := range pairs {
		c.writeLocked(cl, now, p.Key, p.Value, ttl)
	}
}

// Read 读取存活的键值。命中时访问计数加一，LRU 策略下移到最新位置。
// 键不存在或已过期时返回零值和 false，没有副作用。
func (c *Cache[K, V]) Read(key K) (value V, ok bool) {
	cl := c.begin(opRead)
	defer c.finish(cl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeLocked(cl, c.clock.Now())
	e, found := c.store.peek(key)
	if !found {
		c.stats.misses++
		cl.status = xmetrics.StatusMiss
		return value, false
	}
	e.hits++
	c.evictor.onRead(c.store, e)
	c.stats.hits++
	cl.status = xmetrics.StatusHit
	return e.value, true
}

// Peek 读取存活的键值，不计入访问、不改变顺序。
func (c *Cache[K, V]) Peek(key K) (value V, ok bool) {
	cl := c.begin(opPeek)
	defer c.finish(cl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeLocked(cl, c.clock.Now())
	e, found := c.store.peek(key)
	if !found {
		return value, false
	}
	return e.value, true
}

// Delete 删除键及其全部元数据。返回 true 表示删除了一个存活的键；
// 键不存在（或刚被判定过期）时为空操作，返回 false。
func (c *Cache[K, V]) Delete(key K) bool {
	cl := c.begin(opDelete)
	defer c.finish(cl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeLocked(cl, c.clock.Now())
	e, ok := c.store.remove(key)
	if !ok {
		return false
	}
	c.stats.deletes++
	cl.removed = append(cl.removed, removal[K, V]{key: e.key, value: e.value, reason: ReasonDeleted})
	return true
}

// Search 返回所有满足 pred 的存活条目，pred 为 nil 时返回全部存活条目。
//
// Search 不算访问：不改变访问计数和 LRU 顺序。pred 在锁内执行，
// 不能调用 Cache 自身方法；pred panic 时原样传播，缓存状态保持一致。
func (c *Cache[K, V]) Search(pred func(key K, value V) bool) map[K]V {
	cl := c.begin(opSearch)
	defer c.finish(cl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeLocked(cl, c.clock.Now())

	// pred panic 时跨度以 error 结束
	cl.status = xmetrics.StatusError
	result := make(map[K]V)
	for _, e := range c.store.entries() {
		if pred == nil || pred(e.key, e.value) {
			result[e.key] = e.value
		}
	}
	cl.status = xmetrics.StatusOK
	return result
}

// Keys 按存储顺序（最旧到最新）返回所有存活的键。
// FIFO / LFU 下为插入顺序，LRU 下为访问顺序。
func (c *Cache[K, V]) Keys() []K {
	cl := c.begin(opKeys)
	defer c.finish(cl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeLocked(cl, c.clock.Now())
	return c.store.keys()
}

// Len 返回存活条目数。
func (c *Cache[K, V]) Len() int {
	cl := c.begin(opLen)
	defer c.finish(cl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeLocked(cl, c.clock.Now())
	return c.store.len()
}

// Clear 删除所有条目，每个条目以 [ReasonCleared] 通知。
func (c *Cache[K, V]) Clear() {
	cl := c.begin(opClear)
	defer c.finish(cl)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.store.clear() {
		cl.removed = append(cl.removed, removal[K, V]{key: e.key, value: e.value, reason: ReasonCleared})
	}
}

// Capacity 返回容量。
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Policy 返回淘汰策略。
func (c *Cache[K, V]) Policy() Policy {
	return c.policy
}

// =============================================================================
// 内部方法：调用方必须持有 c.mu
// =============================================================================

func (c *Cache[K, V]) purgeLocked(cl *call[K, V], now time.Time) {
	for _, e := range c.store.purgeExpired(now) {
		c.stats.expirations++
		cl.removed = append(cl.removed, removal[K, V]{key: e.key, value: e.value, reason: ReasonExpired})
	}
}

func (c *Cache[K, V]) writeLocked(cl *call[K, V], now time.Time, key K, value V, ttl time.Duration) {
	if _, exists := c.store.peek(key); !exists && c.store.len() >= c.capacity {
		c.evictLocked(cl)
	}
	c.store.set(key, value, expiresAt(now, ttl, c.defaultTTL))
	c.stats.writes++
}

// evictLocked 按策略淘汰一个条目，存储为空时为空操作。
// 调用方已在本次操作开始时清理过期条目。
func (c *Cache[K, V]) evictLocked(cl *call[K, V]) {
	victim, ok := c.evictor.victim(c.store)
	if !ok {
		return
	}
	c.store.remove(victim.key)
	c.stats.evictions++
	cl.removed = append(cl.removed, removal[K, V]{key: victim.key, value: victim.value, reason: ReasonEvicted})
}

// =============================================================================
// 观测与通知：在锁外执行
// =============================================================================

func (c *Cache[K, V]) begin(op string) *call[K, V] {
	ctx, span := xmetrics.Start(context.Background(), c.observer, xmetrics.SpanOptions{
		Component: component,
		Operation: op,
		Attrs:     []xmetrics.Attr{xmetrics.String("policy", c.policy.String())},
	})
	return &call[K, V]{ctx: ctx, span: span}
}

func (c *Cache[K, V]) finish(cl *call[K, V]) {
	var evicted, expired int
	for _, r := range cl.removed {
		switch r.reason {
		case ReasonEvicted:
			evicted++
			c.logger.Debug(cl.ctx, "key evicted", xlog.Key(r.key), xlog.Reason(r.reason))
		case ReasonExpired:
			expired++
			c.logger.Debug(cl.ctx, "key expired", xlog.Key(r.key), xlog.Reason(r.reason))
		}
		if c.onRemoved != nil {
			c.onRemoved(r.key, r.value, r.reason)
		}
	}
	cl.span.End(xmetrics.Result{Status: cl.status, Evicted: evicted, Expired: expired})
}
