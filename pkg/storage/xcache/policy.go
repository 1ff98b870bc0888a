package xcache

import (
	"fmt"
	"strconv"
	"strings"
)

// Policy 淘汰策略。零值无效，必须显式选择。
type Policy uint8

const (
	// PolicyFIFO 先进先出。
	PolicyFIFO Policy = iota + 1
	// PolicyLRU 最近最少使用。
	PolicyLRU
	// PolicyLFU 最不经常使用。
	PolicyLFU
)

// ParsePolicy 解析策略名称，大小写不敏感，忽略首尾空白。
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FIFO":
		return PolicyFIFO, nil
	case "LRU":
		return PolicyLRU, nil
	case "LFU":
		return PolicyLFU, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// IsValid 判断是否为已知策略。
func (p Policy) IsValid() bool {
	return p >= PolicyFIFO && p <= PolicyLFU
}

// String 返回策略名称。
func (p Policy) String() string {
	switch p {
	case PolicyFIFO:
		return "FIFO"
	case PolicyLRU:
		return "LRU"
	case PolicyLFU:
		return "LFU"
	default:
		return "Policy(" + strconv.Itoa(int(p)) + ")"
	}
}

// MarshalText 实现 encoding.TextMarshaler。
func (p Policy) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, p)
	}
	return []byte(p.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler，配置文件中可直接写 "lru"。
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// RemovalReason 条目被移除的原因。
type RemovalReason uint8

const (
	// ReasonEvicted 容量不足被淘汰。
	ReasonEvicted RemovalReason = iota + 1
	// ReasonExpired TTL 到期被清理。
	ReasonExpired
	// ReasonDeleted 被 Delete 显式删除。
	ReasonDeleted
	// ReasonCleared 被 Clear 清空。
	ReasonCleared
)

// String 返回原因名称。
func (r RemovalReason) String() string {
	switch r {
	case ReasonEvicted:
		return "evicted"
	case ReasonExpired:
		return "expired"
	case ReasonDeleted:
		return "deleted"
	case ReasonCleared:
		return "cleared"
	default:
		return "RemovalReason(" + strconv.Itoa(int(r)) + ")"
	}
}
