// Package watcher reports directories whose contents changed, so a
// listing snapshot can be refreshed before indices go stale.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/justyntemme/thumbnav/internal/debug"
)

// DirectoryWatcher watches directories and sends a path on Notify once
// events for it have been quiet for the debounce interval.
type DirectoryWatcher struct {
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	watching map[string]bool
	notify   chan string
	done     chan struct{}
	debounce time.Duration
}

// New creates a watcher. debounceMs <= 0 selects 200ms.
func New(debounceMs int) (*DirectoryWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounceMs <= 0 {
		debounceMs = 200
	}

	dw := &DirectoryWatcher{
		watcher:  w,
		watching: make(map[string]bool),
		notify:   make(chan string, 10),
		done:     make(chan struct{}),
		debounce: time.Duration(debounceMs) * time.Millisecond,
	}

	go dw.run()
	return dw, nil
}

func (dw *DirectoryWatcher) run() {
	lastEvent := make(map[string]time.Time)
	ticker := time.NewTicker(dw.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-dw.done:
			return

		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if !(event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Write)) {
				continue
			}

			// fsnotify reports the changed child; map it back to the watched dir
			changedPath := event.Name
			parentDir := filepath.Dir(changedPath)

			dw.mu.Lock()
			if dw.watching[parentDir] {
				lastEvent[parentDir] = time.Now()
				debug.Log(debug.WATCH, "%s on %s (parent: %s)", event.Op, changedPath, parentDir)
			} else if dw.watching[changedPath] {
				lastEvent[changedPath] = time.Now()
				debug.Log(debug.WATCH, "%s on watched dir %s", event.Op, changedPath)
			}
			dw.mu.Unlock()

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			debug.Log(debug.WATCH, "fsnotify error: %v", err)

		case now := <-ticker.C:
			for dir, at := range lastEvent {
				if now.Sub(at) < dw.debounce {
					continue
				}
				select {
				case dw.notify <- dir:
					debug.Log(debug.WATCH, "change notification: %s", dir)
				default:
					// Receiver is behind; it will re-list anyway
				}
				delete(lastEvent, dir)
			}
		}
	}
}

// Watch adds a directory to the watch list
func (dw *DirectoryWatcher) Watch(path string) error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.watching[path] {
		return nil
	}
	if err := dw.watcher.Add(path); err != nil {
		return err
	}
	dw.watching[path] = true
	debug.Log(debug.WATCH, "now watching %s", path)
	return nil
}

// Unwatch removes a directory from the watch list
func (dw *DirectoryWatcher) Unwatch(path string) error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if !dw.watching[path] {
		return nil
	}
	if err := dw.watcher.Remove(path); err != nil {
		// The directory may already be gone
		debug.Log(debug.WATCH, "error unwatching %s: %v", path, err)
	}
	delete(dw.watching, path)
	return nil
}

// Notify returns the channel that receives changed directory paths
func (dw *DirectoryWatcher) Notify() <-chan string {
	return dw.notify
}

// Close shuts down the watcher
func (dw *DirectoryWatcher) Close() error {
	close(dw.done)
	return dw.watcher.Close()
}
