package xcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvictor_UnknownPolicy(t *testing.T) {
	_, err := newEvictor[string, int](0)
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestEvictor_EmptyStore(t *testing.T) {
	for _, p := range allPolicies {
		t.Run(p.String(), func(t *testing.T) {
			ev, err := newEvictor[string, int](p)
			require.NoError(t, err)
			_, ok := ev.victim(newTestStore(t))
			assert.False(t, ok)
		})
	}
}

func TestEvictor_Victim(t *testing.T) {
	tests := []struct {
		policy Policy
		want   string
	}{
		// a 最早插入，b 最近最少读，c 计数最小
		{PolicyFIFO, "a"},
		{PolicyLRU, "b"},
		{PolicyLFU, "c"},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			ev, err := newEvictor[string, int](tt.policy)
			require.NoError(t, err)

			s := newTestStore(t)
			s.set("a", 1, time.Time{})
			s.set("b", 2, time.Time{})
			s.set("c", 3, time.Time{})
			for _, k := range []string{"a", "b", "a", "c"} {
				if k == "c" && tt.policy == PolicyLFU {
					continue
				}
				e, _ := s.peek(k)
				e.hits++
				ev.onRead(s, e)
			}
			if tt.policy == PolicyLRU {
				// 读序 a b a c 之后 b 最旧
				require.Equal(t, []string{"b", "a", "c"}, s.keys())
			}

			victim, ok := ev.victim(s)
			require.True(t, ok)
			assert.Equal(t, tt.want, victim.key)
		})
	}
}
