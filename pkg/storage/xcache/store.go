package xcache

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// entry 是每个键唯一的记录：值、过期时间、访问计数都在这里，
// 在有序表中的位置即插入顺序（LRU 下为访问顺序）。
type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time // 零值表示永不过期
	hits      uint64
}

func (e *entry[K, V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// store 条目存储，只作为有序 map 使用：最旧在前，最新在后。
// simplelru 自带的容量淘汰不会被触发，调用方保证插入前已留出空间。
type store[K comparable, V any] struct {
	items   *simplelru.LRU[K, *entry[K, V]]
	withTTL int // 设置了 expiresAt 的条目数，为 0 时跳过过期扫描
}

func newStore[K comparable, V any](capacity int) (*store[K, V], error) {
	items, err := simplelru.NewLRU[K, *entry[K, V]](capacity, nil)
	if err != nil {
		return nil, fmt.Errorf("xcache: create store: %w", err)
	}
	return &store[K, V]{items: items}, nil
}

// set 插入或替换条目：已存在时先删除再插入，访问计数重置为 1，位置移到最新。
func (s *store[K, V]) set(key K, value V, expiresAt time.Time) *entry[K, V] {
	s.remove(key)
	e := &entry[K, V]{key: key, value: value, expiresAt: expiresAt, hits: 1}
	s.items.Add(key, e)
	if !expiresAt.IsZero() {
		s.withTTL++
	}
	return e
}

// peek 查找条目，不改变顺序。
func (s *store[K, V]) peek(key K) (*entry[K, V], bool) {
	return s.items.Peek(key)
}

// touch 把键移到最新位置。
func (s *store[K, V]) touch(key K) {
	s.items.Get(key)
}

// remove 删除条目，返回被删除的记录。
func (s *store[K, V]) remove(key K) (*entry[K, V], bool) {
	e, ok := s.items.Peek(key)
	if !ok {
		return nil, false
	}
	s.items.Remove(key)
	if !e.expiresAt.IsZero() {
		s.withTTL--
	}
	return e, true
}

// oldest 返回最旧的条目。
func (s *store[K, V]) oldest() (*entry[K, V], bool) {
	_, e, ok := s.items.GetOldest()
	return e, ok
}

// entries 按最旧到最新的顺序返回所有条目（不检查过期）。
func (s *store[K, V]) entries() []*entry[K, V] {
	return s.items.Values()
}

// keys 按最旧到最新的顺序返回所有键（不检查过期）。
func (s *store[K, V]) keys() []K {
	return s.items.Keys()
}

// len 返回存储的条目数，可能包含尚未清理的过期条目。
func (s *store[K, V]) len() int {
	return s.items.Len()
}

// clear 删除所有条目并按最旧到最新的顺序返回。
func (s *store[K, V]) clear() []*entry[K, V] {
	all := s.items.Values()
	s.items.Purge()
	s.withTTL = 0
	return all
}
