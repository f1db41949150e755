package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 300 * time.Millisecond

// ErrNotWatchable 数据源不是本地文件
var ErrNotWatchable = errors.New("catalog watching requires a file source")

// Watcher 监听本地目录文件变化并重新加载目录
type Watcher struct {
	catalog  *Catalog
	path     string
	debounce time.Duration
	logger   *zap.Logger

	// onReload 测试钩子
	onReload func(n int)
}

// NewWatcher 为文件数据源创建监听器；非文件数据源返回错误
func NewWatcher(c *Catalog, logger *zap.Logger) (*Watcher, error) {
	fs, ok := c.Source().(*FileSource)
	if !ok {
		return nil, ErrNotWatchable
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(fs.Path)
	if err != nil {
		return nil, err
	}
	return &Watcher{
		catalog:  c,
		path:     abs,
		debounce: defaultDebounce,
		logger:   logger,
	}, nil
}

// Run 阻塞运行直到 ctx 结束。监听所在目录，以便编辑器的“写临时文件再重命名”也能被捕获。
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.logger.Info("watching catalog", zap.String("path", w.path))

	ticker := time.NewTicker(w.debounce / 3)
	defer ticker.Stop()

	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.logger.Debug("catalog file changed", zap.String("op", event.Op.String()))
			pending = time.Now()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog watcher error", zap.Error(err))

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < w.debounce {
				continue
			}
			pending = time.Time{}
			n := w.catalog.Load(ctx)
			if w.onReload != nil {
				w.onReload(n)
			}
		}
	}
}
