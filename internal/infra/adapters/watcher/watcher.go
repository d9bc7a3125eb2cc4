// watcher notifies when the podcast list file changes. The directory
// is watched instead of the file so editors that replace the file by
// renaming are detected. It implements the ports.ForWatching
// interface.
package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sa6mwa/drpod/internal/app/ports"
	"github.com/sa6mwa/drpod/internal/infra/adapters/logger"
)

// DefaultDebounce coalesces the burst of events a single save
// produces.
const DefaultDebounce = 500 * time.Millisecond

type forWatching struct {
	path     string
	debounce time.Duration
}

// watcher.New returns a ports.ForWatching for the file at path.
func New(path string, debounce time.Duration) ports.ForWatching {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &forWatching{
		path:     filepath.Clean(path),
		debounce: debounce,
	}
}

func (w *forWatching) Watch(ctx context.Context) (<-chan struct{}, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return nil, err
	}
	ch := make(chan struct{}, 1)
	go w.loop(ctx, fw, ch)
	return ch, nil
}

func (w *forWatching) loop(ctx context.Context, fw *fsnotify.Watcher, ch chan<- struct{}) {
	l := logger.FromContext(ctx).With("path", w.path)
	defer close(ch)
	defer fw.Close()
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				l.Debug("Podcast list changed", "op", ev.Op.String())
				pending = time.After(w.debounce)
			}
		case <-pending:
			pending = nil
			select {
			case ch <- struct{}{}:
			default:
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			l.Warn("Watcher error", "error", err)
		}
	}
}
