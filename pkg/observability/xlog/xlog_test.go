package xlog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xcachekit/pkg/observability/xlog"
	"github.com/omeyang/xcachekit/pkg/observability/xrotate"
)

type reason string

func (r reason) String() string { return string(r) }

func build(t *testing.T, b *xlog.Builder) xlog.LoggerWithLevel {
	t.Helper()
	logger, cleanup, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, cleanup()) })
	return logger
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf).SetLevel(xlog.LevelDebug))
	ctx := context.Background()

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	out := buf.String()
	for _, want := range []string{"debug message", "info message", "warn message", "error message"} {
		assert.Contains(t, out, want)
	}
}

func TestLogger_DynamicLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf))
	ctx := context.Background()

	logger.Debug(ctx, "hidden")
	assert.Empty(t, buf.String())
	assert.False(t, logger.Enabled(ctx, xlog.LevelDebug))

	// 派生 logger 共享级别
	child := logger.With(xlog.Component("xcache"))
	logger.SetLevel(xlog.LevelDebug)
	assert.Equal(t, xlog.LevelDebug, logger.GetLevel())

	child.Debug(ctx, "key evicted", xlog.Key("a"))
	assert.Contains(t, buf.String(), "key evicted")
	assert.Contains(t, buf.String(), "component=xcache")
	assert.Contains(t, buf.String(), "key=a")
}

func TestLogger_JSONAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().
		SetOutput(&buf).
		SetFormat(" JSON ").
		SetLevelString("debug").
		SetAttrs(xlog.Component("xcache")))

	logger.Debug(nil, "key expired", //nolint:staticcheck // nil ctx 被替换为 Background
		xlog.Key(42),
		xlog.Reason(reason("expired")),
		xlog.Policy(reason("LFU")),
		xlog.Count(3),
		xlog.Duration(2*time.Second),
		xlog.Err(errors.New("boom")),
		xlog.Err(nil),
	)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "key expired", rec["msg"])
	assert.Equal(t, "xcache", rec[xlog.KeyComponent])
	assert.Equal(t, "42", rec[xlog.KeyCacheKey])
	assert.Equal(t, "expired", rec[xlog.KeyReason])
	assert.Equal(t, "LFU", rec[xlog.KeyPolicy])
	assert.InDelta(t, 3, rec[xlog.KeyCount], 0)
	assert.Equal(t, "2s", rec[xlog.KeyDuration])
	assert.Equal(t, "boom", rec[xlog.KeyError])
}

func TestBuilder_FirstErrorWins(t *testing.T) {
	_, _, err := xlog.New().SetFormat("xml").SetLevelString("debug").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")

	_, _, err = xlog.New().SetLevelString("loud").SetFormat("json").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown level")

	_, _, err = xlog.New().SetOutput(nil).Build()
	assert.Error(t, err)

	_, _, err = xlog.New().SetRotation("").Build()
	assert.ErrorIs(t, err, xrotate.ErrEmptyFilename)
}

func TestBuilder_Rotation(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "cache.log")
	logger, cleanup, err := xlog.New().SetRotation(file, xrotate.WithCompress(false)).Build()
	require.NoError(t, err)

	logger.Info(context.Background(), "cache ready")
	require.NoError(t, cleanup())
	require.NoError(t, cleanup(), "cleanup is idempotent")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "cache ready"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    xlog.Level
		wantErr bool
	}{
		{"debug", xlog.LevelDebug, false},
		{" INFO ", xlog.LevelInfo, false},
		{"warning", xlog.LevelWarn, false},
		{"Warn", xlog.LevelWarn, false},
		{"error", xlog.LevelError, false},
		{"trace", xlog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := xlog.ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	var l xlog.Level
	require.NoError(t, l.UnmarshalText([]byte("error")))
	assert.Equal(t, "ERROR", l.String())
	assert.Error(t, l.UnmarshalText([]byte("nope")))
}

func TestNop(t *testing.T) {
	logger := xlog.Nop()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		logger.Debug(ctx, "x")
		logger.Info(ctx, "x")
		logger.Warn(ctx, "x")
		logger.Error(ctx, "x")
		logger.With(xlog.Key("a")).Info(ctx, "x")
		logger.SetLevel(xlog.LevelDebug)
	})
	assert.False(t, logger.Enabled(ctx, xlog.LevelError))
	assert.Greater(t, logger.GetLevel(), xlog.LevelError)
}
