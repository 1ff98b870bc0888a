package xcache

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func FuzzCache(f *testing.F) {
	f.Add("key1", 100, uint8(0), int64(0))
	f.Add("", 0, uint8(1), int64(time.Second))
	f.Add("key2", -1, uint8(2), int64(-1))
	f.Add("key3", 42, uint8(3), int64(time.Minute))
	f.Add("key4", 7, uint8(7), int64(time.Millisecond))

	clock := clockwork.NewFakeClock()
	caches := make([]*Cache[string, int], 0, len(allPolicies))
	for _, p := range allPolicies {
		c, err := New[string, int](Config{Capacity: 8, Policy: p}, WithClock(clock))
		if err != nil {
			f.Fatalf("New failed: %v", err)
		}
		caches = append(caches, c)
	}

	f.Fuzz(func(t *testing.T, key string, value int, op uint8, ttlNanos int64) {
		for _, c := range caches {
			switch op % 8 {
			case 0:
				c.Write(key, value, time.Duration(ttlNanos))
			case 1:
				c.Read(key)
			case 2:
				c.Delete(key)
			case 3:
				c.Peek(key)
			case 4:
				c.Search(func(k string, _ int) bool { return k == key })
			case 5:
				c.WriteBatch([]Pair[string, int]{{key, value}, {key + "'", value}}, time.Duration(ttlNanos))
			case 6:
				c.Keys()
			case 7:
				clock.Advance(time.Duration(uint16(ttlNanos)) * time.Millisecond)
			}
			if n := c.Len(); n > c.Capacity() {
				t.Fatalf("%s: len %d exceeds capacity %d", c.Policy(), n, c.Capacity())
			}
		}
	})
}

func FuzzParsePolicy(f *testing.F) {
	for _, s := range []string{"fifo", "LRU", " lfu ", "", "xyz"} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		p, err := ParsePolicy(s)
		if err != nil {
			return
		}
		if !p.IsValid() {
			t.Fatalf("ParsePolicy(%q) returned invalid policy %d", s, p)
		}
		again, err := ParsePolicy(p.String())
		if err != nil || again != p {
			t.Fatalf("round trip failed for %q", s)
		}
	})
}
