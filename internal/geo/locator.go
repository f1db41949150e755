package geo

import (
	"context"
	"errors"
)

var (
	// ErrUnsupported 环境不支持定位
	ErrUnsupported = errors.New("geolocation not supported")
	// ErrUnavailable 用户拒绝或位置不可用
	ErrUnavailable = errors.New("location unavailable")
)

// Position 定位结果
type Position struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy,omitempty"`
}

// Result 一次性定位的结果
type Result struct {
	Position Position
	Err      error
}

// Locator 外部定位能力。每次调用只产生一个结果，通道随后关闭。
type Locator interface {
	Locate(ctx context.Context) <-chan Result
}

// LocatorFunc 把阻塞函数包装为 Locator，在独立 goroutine 中执行
type LocatorFunc func(ctx context.Context) (Position, error)

func (f LocatorFunc) Locate(ctx context.Context) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		pos, err := f(ctx)
		ch <- Result{Position: pos, Err: err}
	}()
	return ch
}

// Reported 浏览器上报的定位结果
type Reported struct {
	Position *Position
	Denied   bool
}

func (r Reported) Locate(ctx context.Context) <-chan Result {
	ch := make(chan Result, 1)
	switch {
	case r.Denied || r.Position == nil:
		ch <- Result{Err: ErrUnavailable}
	default:
		ch <- Result{Position: *r.Position}
	}
	close(ch)
	return ch
}

// Await 等待定位结果。定位本身没有超时，只随 ctx 结束。
func Await(ctx context.Context, l Locator) (Position, error) {
	if l == nil {
		return Position{}, ErrUnsupported
	}
	select {
	case res, ok := <-l.Locate(ctx):
		if !ok {
			return Position{}, ErrUnavailable
		}
		return res.Position, res.Err
	case <-ctx.Done():
		return Position{}, ctx.Err()
	}
}
