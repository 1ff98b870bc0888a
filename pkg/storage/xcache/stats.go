package xcache

// counters 由 c.mu 保护。
type counters struct {
	hits        uint64
	misses      uint64
	writes      uint64
	evictions   uint64
	expirations uint64
	deletes     uint64
}

// Stats 缓存统计快照。
type Stats struct {
	Policy   Policy
	Capacity int
	// Len 当前存储的条目数，可能包含尚未清理的过期条目。
	Len int

	Hits        uint64
	Misses      uint64
	Writes      uint64
	Evictions   uint64
	Expirations uint64
	Deletes     uint64
}

// HitRatio 返回命中率 (0.0 - 1.0)，没有读操作时为 0。
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats 返回统计快照。不触发过期清理，也不算访问。
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Policy:      c.policy,
		Capacity:    c.capacity,
		Len:         c.store.len(),
		Hits:        c.stats.hits,
		Misses:      c.stats.misses,
		Writes:      c.stats.writes,
		Evictions:   c.stats.evictions,
		Expirations: c.stats.expirations,
		Deletes:     c.stats.deletes,
	}
}
