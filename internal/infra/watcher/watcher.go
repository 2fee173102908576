// Package watcher reports changes made to the public directories by
// anything other than the API, e.g. files copied in by hand.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// ChangeFunc receives the on-disk path of a changed file.
type ChangeFunc func(ctx context.Context, path string)

type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	dirs        []string
	onChange    ChangeFunc
	debounceMap map[string]time.Time
	debounceDur time.Duration
	doneCh      chan struct{}
	running     bool
}

func New(dirs []string, onChange ChangeFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	return &Watcher{
		watcher:     fw,
		dirs:        dirs,
		onChange:    onChange,
		debounceMap: make(map[string]time.Time),
		debounceDur: 200 * time.Millisecond,
		doneCh:      make(chan struct{}),
	}, nil
}

// Start creates missing directories, registers them and begins delivering
// events in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	for _, dir := range w.dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
		if err := w.watcher.Add(dir); err != nil {
			return errors.Wrapf(err, "watch %s", dir)
		}
	}

	w.running = true
	go w.loop(ctx)
	return nil
}

// Stop closes the underlying watcher and waits for the loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	err := w.watcher.Close()
	if running {
		<-w.doneCh
	}
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.WarnContext(
				ctx, "Watcher error",
				slog.String("error", err.Error()),
				slog.String("module", "watcher"),
			)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if strings.HasPrefix(filepath.Base(event.Name), ".tmp-") {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	now := time.Now()
	w.mu.Lock()
	last, seen := w.debounceMap[event.Name]
	w.debounceMap[event.Name] = now
	w.mu.Unlock()
	if seen && now.Sub(last) < w.debounceDur && !event.Has(fsnotify.Remove) {
		return
	}

	slog.DebugContext(
		ctx, "File changed",
		slog.String("path", event.Name),
		slog.String("op", event.Op.String()),
		slog.String("module", "watcher"),
	)
	w.onChange(ctx, event.Name)
}
