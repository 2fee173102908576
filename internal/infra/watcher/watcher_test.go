package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherReportsNewFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := filepath.Join(t.TempDir(), "images")
	changes := make(chan string, 16)

	w, err := New([]string{dir}, func(ctx context.Context, path string) {
		changes <- path
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	target := filepath.Join(dir, "dropped.png")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	select {
	case got := <-changes:
		require.Equal(t, target, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	require.NoError(t, w.Stop())
}

func TestWatcherIgnoresTempFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	changes := make(chan string, 16)

	w, err := New([]string{dir}, func(ctx context.Context, path string) {
		changes <- path
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp-123"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.gif"), []byte("x"), 0o644))

	select {
	case got := <-changes:
		require.Equal(t, filepath.Join(dir, "real.gif"), got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	require.NoError(t, w.Stop())
}

func TestWatcherStopWithoutStart(t *testing.T) {
	w, err := New(nil, func(context.Context, string) {})
	require.NoError(t, err)
	require.NoError(t, w.Stop())
}
