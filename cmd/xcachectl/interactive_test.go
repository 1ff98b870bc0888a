package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xcachekit/pkg/storage/xcache"
)

func newTestSession(t *testing.T, capacity int, policy xcache.Policy) (*session, *bytes.Buffer) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	c, err := xcache.New[string, string](xcache.Config{Capacity: capacity, Policy: policy}, xcache.WithClock(clock))
	require.NoError(t, err)
	var out bytes.Buffer
	return &session{cache: c, clock: clock, out: &out}, &out
}

// exec 逐行执行并返回输出。
func (s *session) exec(t *testing.T, out *bytes.Buffer, lines ...string) string {
	t.Helper()
	out.Reset()
	for _, l := range lines {
		s.processLine(l)
	}
	return out.String()
}

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single_word", "keys", []string{"keys"}},
		{"two_words", "get a", []string{"get", "a"}},
		{"double_quoted", `set k "hello world"`, []string{"set", "k", "hello world"}},
		{"single_quoted", "set k 'hello world' 5s", []string{"set", "k", "hello world", "5s"}},
		{"escaped_quote_in_double", `set k "a\"b"`, []string{"set", "k", `a"b`}},
		{"escape_outside_quotes", `set k hello\ world`, []string{"set", "k", "hello world"}},
		{"multiple_spaces", "  get   a  ", []string{"get", "a"}},
		{"empty_quotes", `search ""`, []string{"search"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCommandLine(tt.input))
		})
	}
}

func TestSession_SetGetDelete(t *testing.T) {
	s, out := newTestSession(t, 2, xcache.PolicyLRU)

	assert.Equal(t, "OK\nbanana\n", s.exec(t, out, "set a banana", "get a"))
	assert.Equal(t, "(deleted)\n(not found)\n(nil)\n", s.exec(t, out, "del a", "del a", "get a"))
}

func TestSession_LRUEviction(t *testing.T) {
	s, out := newTestSession(t, 2, xcache.PolicyLRU)

	got := s.exec(t, out, "set a 1", "set b 2", "get a", "set c 3", "keys")
	assert.True(t, strings.HasSuffix(got, "[a c]\n"), got)
}

func TestSession_PeekDoesNotTouch(t *testing.T) {
	s, out := newTestSession(t, 2, xcache.PolicyLRU)

	got := s.exec(t, out, "set a 1", "set b 2", "peek a", "set c 3", "keys")
	assert.True(t, strings.HasSuffix(got, "[b c]\n"), got)
}

func TestSession_TTLWithAdvance(t *testing.T) {
	s, out := newTestSession(t, 4, xcache.PolicyFIFO)

	got := s.exec(t, out, "set a 1 10s", "advance 9s", "get a", "advance 1s", "get a", "len")
	assert.Equal(t, "OK\nOK\n1\nOK\n(nil)\n0\n", got)
}

func TestSession_Search(t *testing.T) {
	s, out := newTestSession(t, 4, xcache.PolicyFIFO)

	got := s.exec(t, out, "set x 12345", "set y banana", "search 1", "search")
	assert.Equal(t, "OK\nOK\nmap[x:12345]\nmap[x:12345 y:banana]\n", got)
}

func TestSession_StatsAndClear(t *testing.T) {
	s, out := newTestSession(t, 1, xcache.PolicyLFU)

	got := s.exec(t, out, "set a 1", "set b 2", "get b", "get a", "stats")
	assert.Contains(t, got, "policy=LFU capacity=1 len=1")
	assert.Contains(t, got, "hits=1 misses=1 hit_ratio=0.50")
	assert.Contains(t, got, "writes=2 evictions=1 expirations=0 deletes=0")

	assert.Equal(t, "OK\n0\n", s.exec(t, out, "clear", "len"))
}

func TestSession_Errors(t *testing.T) {
	s, out := newTestSession(t, 1, xcache.PolicyLRU)
	s.clock = nil

	tests := []struct {
		line string
		want string
	}{
		{"set a", "参数数量错误"},
		{"set a 1 soon", "无效的 ttl"},
		{"get", "参数数量错误"},
		{"advance 1s", "--fake-clock"},
		{"frobnicate", "未知命令"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Contains(t, s.exec(t, out, tt.line), tt.want)
		})
	}
}

func TestSession_Exit(t *testing.T) {
	s, _ := newTestSession(t, 1, xcache.PolicyLRU)
	assert.True(t, s.processLine("exit"))
	assert.True(t, s.processLine("quit"))
	assert.False(t, s.processLine(""))
	assert.False(t, s.processLine("help"))
}

func TestRunREPL_StopsAtExit(t *testing.T) {
	s, out := newTestSession(t, 2, xcache.PolicyFIFO)

	err := runREPL(context.Background(), s, strings.NewReader("set a 1\nexit\nset b 2\n"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "再见!")
	assert.Equal(t, 1, s.cache.Len())
}

func TestRunREPL_EOF(t *testing.T) {
	s, out := newTestSession(t, 2, xcache.PolicyFIFO)

	err := runREPL(context.Background(), s, strings.NewReader("set a 1\nset b 2"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.cache.Len())
	assert.Contains(t, out.String(), "xcache> ")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestRunREPL_ReadError(t *testing.T) {
	s, _ := newTestSession(t, 2, xcache.PolicyFIFO)

	err := runREPL(context.Background(), s, failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestRun_InteractiveFakeClock(t *testing.T) {
	code, out, _ := runCLI(t, "set a 1 1m\nadvance 1m\nget a\n", "--policy", "lfu", "interactive", "--fake-clock")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "(nil)")
}
