package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xcachekit/pkg/config/xconf"
	"github.com/omeyang/xcachekit/pkg/observability/xlog"
	"github.com/omeyang/xcachekit/pkg/observability/xrotate"
	"github.com/omeyang/xcachekit/pkg/storage/xcache"
)

// 全局 flag 名称。
const (
	flagConfig     = "config"
	flagCapacity   = "capacity"
	flagPolicy     = "policy"
	flagDefaultTTL = "default-ttl"
	flagLogLevel   = "log-level"
	flagLogFormat  = "log-format"
	flagLogFile    = "log-file"
)

const (
	defaultCapacity = 128
	defaultPolicy   = "LRU"
)

// settings 配置文件结构。
//
//	cache:
//	  capacity: 1024
//	  policy: lfu
//	  default_ttl: 30s
//	log:
//	  level: debug
//	  format: json
//	  file: /var/log/xcachectl.log
type settings struct {
	Cache cacheSettings `koanf:"cache"`
	Log   logSettings   `koanf:"log"`
}

// cacheSettings 策略以字符串读入，由 xcache.ParsePolicy 校验。
type cacheSettings struct {
	Capacity   int           `koanf:"capacity"`
	Policy     string        `koanf:"policy"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
}

type logSettings struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

func defaultSettings() settings {
	return settings{
		Cache: cacheSettings{Capacity: defaultCapacity, Policy: defaultPolicy},
		Log:   logSettings{Level: "info", Format: "text"},
	}
}

// loadSettings 按 默认值 → 配置文件 → 显式设置的 flag 的顺序合并配置。
// 所有错误都是 usageError。
func loadSettings(cmd *cli.Command) (settings, error) {
	s := defaultSettings()

	if path := cmd.String(flagConfig); path != "" {
		cfg, err := xconf.Load(path)
		if err != nil {
			return s, &usageError{msg: fmt.Sprintf("加载配置文件失败: %v", err)}
		}
		if err := cfg.Unmarshal("", &s); err != nil {
			return s, &usageError{msg: fmt.Sprintf("解析配置文件失败: %v", err)}
		}
	}

	if cmd.IsSet(flagCapacity) {
		s.Cache.Capacity = cmd.Int(flagCapacity)
	}
	if cmd.IsSet(flagPolicy) {
		s.Cache.Policy = cmd.String(flagPolicy)
	}
	if cmd.IsSet(flagDefaultTTL) {
		s.Cache.DefaultTTL = cmd.Duration(flagDefaultTTL)
	}
	if cmd.IsSet(flagLogLevel) {
		s.Log.Level = cmd.String(flagLogLevel)
	}
	if cmd.IsSet(flagLogFormat) {
		s.Log.Format = cmd.String(flagLogFormat)
	}
	if cmd.IsSet(flagLogFile) {
		s.Log.File = cmd.String(flagLogFile)
	}
	return s, nil
}

// cacheConfig 转换为 xcache.Config，策略无效时返回 usageError。
func (s settings) cacheConfig() (xcache.Config, error) {
	policy, err := xcache.ParsePolicy(s.Cache.Policy)
	if err != nil {
		return xcache.Config{}, &usageError{msg: err.Error()}
	}
	return xcache.Config{
		Capacity:   s.Cache.Capacity,
		Policy:     policy,
		DefaultTTL: s.Cache.DefaultTTL,
	}, nil
}

// buildLogger 按日志配置构建 logger。File 非空时输出到轮转文件，否则输出到 w。
func (s settings) buildLogger(w io.Writer) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().
		SetOutput(w).
		SetLevelString(s.Log.Level).
		SetFormat(s.Log.Format)
	if s.Log.File != "" {
		b = b.SetRotation(s.Log.File, xrotate.WithMaxSize(10), xrotate.WithMaxBackups(3))
	}
	logger, cleanup, err := b.Build()
	if err != nil {
		return nil, nil, &usageError{msg: fmt.Sprintf("日志配置无效: %v", err)}
	}
	return logger, cleanup, nil
}

// newCache 按配置创建缓存，配置错误返回 usageError。
func newCache[V any](s settings, opts ...xcache.Option) (*xcache.Cache[string, V], error) {
	cfg, err := s.cacheConfig()
	if err != nil {
		return nil, err
	}
	c, err := xcache.New[string, V](cfg, opts...)
	if err != nil {
		return nil, &usageError{msg: err.Error()}
	}
	return c, nil
}

// watchLogLevel 监视配置文件，log.level 变更后实时生效。未指定配置文件时返回空操作。
// 缓存容量和策略在构造后不可变，重载时忽略。
func (e *env) watchLogLevel(ctx context.Context) (stop func(), err error) {
	if e.configPath == "" {
		return func() {}, nil
	}
	w, err := xconf.Watch(e.configPath, func(cfg *xconf.Config, err error) {
		if err != nil {
			e.logger.Warn(ctx, "config reload failed", xlog.Err(err))
			return
		}
		var ls logSettings
		if err := cfg.Unmarshal("log", &ls); err != nil {
			e.logger.Warn(ctx, "config reload failed", xlog.Err(err))
			return
		}
		if ls.Level == "" {
			return
		}
		level, err := xlog.ParseLevel(ls.Level)
		if err != nil {
			e.logger.Warn(ctx, "invalid log level in config", xlog.Err(err))
			return
		}
		e.logger.SetLevel(level)
		e.logger.Info(ctx, "log level reloaded", slog.String("level", level.String()))
	})
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	return func() { _ = w.Stop() }, nil //nolint:errcheck // 退出时关闭监视
}
