package catalog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeFile(t, t.TempDir(), "centers.json", sampleJSON)
	src, err := NewSource(path, nil)
	require.NoError(t, err)
	c := New(src, nil)
	c.Load(context.Background())
	require.Equal(t, 2, c.Len())

	w, err := NewWatcher(c, nil)
	require.NoError(t, err)
	w.debounce = 30 * time.Millisecond
	reloaded := make(chan int, 4)
	w.onReload = func(n int) {
		select {
		case reloaded <- n:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// 给 watcher 注册目录的时间
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Only","city":"Goa","lat":15.3,"lng":74.1}]`), 0644))

	select {
	case n := <-reloaded:
		require.Equal(t, 1, n)
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was not reloaded")
	}
	require.Equal(t, "Only", c.Centers()[0].Name)

	cancel()
	require.NoError(t, <-done)
}

func TestNewWatcherRejectsHTTPSource(t *testing.T) {
	src, err := NewSource("https://example.com/centers.json", nil)
	require.NoError(t, err)
	_, err = NewWatcher(New(src, nil), nil)
	require.ErrorIs(t, err, ErrNotWatchable)
}
