package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"ewastelocator/internal/model"
)

// Catalog 回收中心目录。每次加载整体替换，已发布的切片只读。
type Catalog struct {
	source Source
	logger *zap.Logger

	mu       sync.RWMutex
	centers  []model.Center
	loadedAt time.Time
}

// New 创建目录（尚未加载）
func New(source Source, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{source: source, logger: logger, centers: []model.Center{}}
}

// Load 从数据源加载并整体替换目录。
// 加载或解析失败时目录变为空，只记录日志，不向用户提示；
// 单条记录无法解析时只跳过该条。
func (c *Catalog) Load(ctx context.Context) int {
	centers, err := c.source.Fetch(ctx)
	var partial *SkippedError
	switch {
	case errors.As(err, &partial):
		for _, r := range partial.Records {
			c.logger.Warn("catalog record skipped",
				zap.String("source", c.source.String()), zap.Int("index", r.Index), zap.Error(r.Err))
		}
	case err != nil:
		c.logger.Warn("catalog load failed, using empty catalog",
			zap.String("source", c.source.String()), zap.Error(err))
		centers = nil
	}
	c.Replace(centers)
	c.logger.Info("catalog loaded", zap.String("source", c.source.String()), zap.Int("centers", len(centers)))
	return len(centers)
}

// Replace 整体替换目录内容
func (c *Catalog) Replace(centers []model.Center) {
	snapshot := make([]model.Center, len(centers))
	copy(snapshot, centers)

	c.mu.Lock()
	c.centers = snapshot
	c.loadedAt = time.Now()
	c.mu.Unlock()
}

// Centers 当前快照（调用方不得修改）
func (c *Catalog) Centers() []model.Center {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.centers
}

// At 按下标取记录
func (c *Catalog) At(i int) (model.Center, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.centers) {
		return model.Center{}, false
	}
	return c.centers[i], true
}

// Len 记录数
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.centers)
}

// LoadedAt 最近一次加载时间
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// Source 数据源
func (c *Catalog) Source() Source {
	return c.source
}
