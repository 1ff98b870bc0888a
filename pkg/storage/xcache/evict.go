package xcache

// evictor 选出淘汰对象。每种策略一个实现，构造时按 Policy 选定。
type evictor[K comparable, V any] interface {
	// onRead 在读命中、访问计数已递增后调用。
	onRead(s *store[K, V], e *entry[K, V])
	// victim 返回应被淘汰的条目，存储为空时返回 false。
	victim(s *store[K, V]) (*entry[K, V], bool)
}

func newEvictor[K comparable, V any](p Policy) (evictor[K, V], error) {
	switch p {
	case PolicyFIFO:
		return fifoEvictor[K, V]{}, nil
	case PolicyLRU:
		return lruEvictor[K, V]{}, nil
	case PolicyLFU:
		return lfuEvictor[K, V]{}, nil
	default:
		return nil, ErrUnknownPolicy
	}
}

// fifoEvictor 淘汰最早插入的条目，读不改变顺序。
type fifoEvictor[K comparable, V any] struct{}

func (fifoEvictor[K, V]) onRead(*store[K, V], *entry[K, V]) {}

func (fifoEvictor[K, V]) victim(s *store[K, V]) (*entry[K, V], bool) {
	return s.oldest()
}

// lruEvictor 读命中时把条目移到最新位置，淘汰最旧的条目。
type lruEvictor[K comparable, V any] struct{}

func (lruEvictor[K, V]) onRead(s *store[K, V], e *entry[K, V]) {
	s.touch(e.key)
}

func (lruEvictor[K, V]) victim(s *store[K, V]) (*entry[K, V], bool) {
	return s.oldest()
}

// lfuEvictor 淘汰访问计数最小的条目，计数相同取最早插入的。
// 每次淘汰 O(n) 扫描。
type lfuEvictor[K comparable, V any] struct{}

func (lfuEvictor[K, V]) onRead(*store[K, V], *entry[K, V]) {}

func (lfuEvictor[K, V]) victim(s *store[K, V]) (*entry[K, V], bool) {
	var least *entry[K, V]
	for _, e := range s.entries() {
		// 严格小于：保留最先遇到的（最早插入的）
		if least == nil || e.hits < least.hits {
			least = e
		}
	}
	return least, least != nil
}
