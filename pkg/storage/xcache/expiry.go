package xcache

import "time"

// purgeExpired 删除所有 expiresAt <= now 的条目，按最旧到最新的顺序返回。
// 没有带 TTL 的条目时直接返回。
func (s *store[K, V]) purgeExpired(now time.Time) []*entry[K, V] {
	if s.withTTL == 0 {
		return nil
	}
	var expired []*entry[K, V]
	for _, e := range s.entries() {
		if e.expired(now) {
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		s.remove(e.key)
	}
	return expired
}

// expiresAt 计算写入时的过期时间，ttl <= 0 时使用默认 TTL，两者都为 0 时永不过期。
func expiresAt(now time.Time, ttl, defaultTTL time.Duration) time.Time {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
