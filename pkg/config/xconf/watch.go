package xconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherStopped 表示 Watcher 已停止，不能再次启动。
var ErrWatcherStopped = errors.New("xconf: watcher stopped")

// WatchCallback 配置文件变更回调。
// 重载成功时 cfg 为新快照、err 为 nil；失败时 cfg 为 nil，调用方应继续使用旧配置。
type WatchCallback func(cfg *Config, err error)

// WatchOption 监视器配置选项。
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
	load     []Option
}

// WithDebounce 设置防抖时间，该时间内的多次变更只触发一次重载。默认 100ms。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithLoadOptions 设置重载时传给 Load 的选项。
func WithLoadOptions(opts ...Option) WatchOption {
	return func(o *watchOptions) {
		o.load = append(o.load, opts...)
	}
}

// Watcher 配置文件监视器。文件变更后重新 Load 并回调。
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	callback WatchCallback
	opts     watchOptions

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	started bool
	timer   *time.Timer
}

// Watch 创建 path 的监视器，需要调用 Start 后才开始工作。
//
// 监视的是文件所在目录而非文件本身：编辑器保存时常见先删除再创建，
// 或写临时文件后 rename，直接监视文件会丢失事件。
func Watch(path string, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if _, err := DetectFormat(path); err != nil {
		return nil, err
	}

	o := watchOptions{debounce: 100 * time.Millisecond}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xconf: create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fsWatcher.Add(dir); err != nil {
		return nil, errors.Join(
			fmt.Errorf("xconf: watch directory %s: %w", dir, err),
			fsWatcher.Close(),
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     path,
		watcher:  fsWatcher,
		callback: callback,
		opts:     o,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// Start 在后台 goroutine 中开始监视，重复调用无效果。Stop 之后调用返回 ErrWatcherStopped。
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ctx.Err() != nil {
		return ErrWatcherStopped
	}
	if w.started {
		return nil
	}
	w.started = true
	go w.run()
	return nil
}

// Stop 停止监视并等待后台 goroutine 退出，可重复调用。
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.ctx.Err() != nil {
		w.mu.Unlock()
		return nil
	}
	w.cancel()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	started := w.started
	w.mu.Unlock()

	err := w.watcher.Close()
	if started {
		<-w.done
	}
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	filename := filepath.Base(w.path)

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) == filename &&
				(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)) {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.notify(nil, fmt.Errorf("xconf: watch error: %w", err))
		}
	}
}

// schedule 重置防抖定时器。
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ctx.Err() != nil {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.debounce, w.reload)
}

func (w *Watcher) reload() {
	if w.ctx.Err() != nil {
		return
	}
	cfg, err := Load(w.path, w.opts.load...)
	if err != nil {
		w.notify(nil, err)
		return
	}
	w.notify(cfg, nil)
}

func (w *Watcher) notify(cfg *Config, err error) {
	if w.callback != nil {
		w.callback(cfg, err)
	}
}
