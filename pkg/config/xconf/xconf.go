package xconf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// 配置加载和解析相关错误。
var (
	// ErrEmptyPath 表示配置文件路径为空。
	ErrEmptyPath = errors.New("xconf: empty config path")

	// ErrUnsupportedFormat 表示不支持的配置格式。
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")

	// ErrLoadFailed 表示读取配置文件失败。
	ErrLoadFailed = errors.New("xconf: failed to load config")

	// ErrParseFailed 表示配置解析失败。
	ErrParseFailed = errors.New("xconf: failed to parse config")

	// ErrUnmarshalFailed 表示反序列化失败。
	ErrUnmarshalFailed = errors.New("xconf: failed to unmarshal config")
)

// Options 定义配置加载选项。
type Options struct {
	// Delim 键分隔符，默认 "."。
	Delim string
	// Tag 结构体标签名，默认 "koanf"。
	Tag string
}

// Option 定义配置选项函数类型。
type Option func(*Options)

// WithDelim 设置键分隔符。
func WithDelim(delim string) Option {
	return func(o *Options) {
		if delim != "" {
			o.Delim = delim
		}
	}
}

// WithTag 设置 Unmarshal 使用的结构体标签名。
func WithTag(tag string) Option {
	return func(o *Options) {
		if tag != "" {
			o.Tag = tag
		}
	}
}

// Config 是已解析的配置快照，创建后只读，可并发使用。
type Config struct {
	k      *koanf.Koanf
	path   string
	format Format
	opts   Options
}

// Load 从文件加载配置，格式由扩展名决定。
func Load(path string, opts ...Option) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //#nosec G304 -- 配置路径由调用方提供
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	cfg, err := Parse(data, format, opts...)
	if err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// Parse 从字节数据解析配置，空数据得到空配置。
func Parse(data []byte, format Format, opts ...Option) (*Config, error) {
	parser, err := parserFor(format)
	if err != nil {
		return nil, err
	}

	o := Options{Delim: ".", Tag: "koanf"}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	k := koanf.New(o.Delim)
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}
	return &Config{k: k, format: format, opts: o}, nil
}

// Unmarshal 将 path 下的配置反序列化到 target，path 为空时反序列化整个配置。
// target 中已有的值在配置缺失对应键时保持不变。
func (c *Config) Unmarshal(path string, target any) error {
	if err := c.k.UnmarshalWithConf(path, target, koanf.UnmarshalConf{Tag: c.opts.Tag}); err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

// Exists 检查键是否存在。
func (c *Config) Exists(key string) bool {
	return c.k.Exists(key)
}

// Keys 返回所有叶子键（已排序）。
func (c *Config) Keys() []string {
	return c.k.Keys()
}

// Path 返回配置文件路径，Parse 创建的配置返回空字符串。
func (c *Config) Path() string {
	return c.path
}

// Format 返回配置格式。
func (c *Config) Format() Format {
	return c.format
}

// DetectFormat 根据文件扩展名检测配置格式。
func DetectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

func parserFor(format Format) (koanf.Parser, error) {
	switch format {
	case FormatYAML:
		return yaml.Parser(), nil
	case FormatJSON:
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
