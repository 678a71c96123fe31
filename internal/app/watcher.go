package app

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/justyntemme/dragexport/internal/debug"
)

// FileWatcher reports when the window's source file changes on disk. It
// watches the parent directory so editors that save by rename are seen too.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	path     string        // Watched file, cleaned
	notify   chan string   // Receives the file path after a debounced change
	done     chan struct{} // Shutdown signal
	debounce time.Duration
}

// NewFileWatcher creates a watcher with the given debounce interval
func NewFileWatcher(debounce time.Duration) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	fw := &FileWatcher{
		watcher:  w,
		notify:   make(chan string, 1),
		done:     make(chan struct{}),
		debounce: debounce,
	}
	go fw.run()
	return fw, nil
}

// run is the only sender on notify and closes it on exit.
func (fw *FileWatcher) run() {
	defer close(fw.notify)

	var (
		lastEvent time.Time
		pending   bool
	)
	ticker := time.NewTicker(fw.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !(event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)) {
				continue
			}
			fw.mu.Lock()
			match := fw.path != "" && filepath.Clean(event.Name) == fw.path
			fw.mu.Unlock()
			if match {
				lastEvent = time.Now()
				pending = true
				debug.Log(debug.APP, "FSNotify event: %s on %s", event.Op, event.Name)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			debug.Log(debug.APP, "FSNotify error: %v", err)

		case <-ticker.C:
			if !pending || time.Since(lastEvent) < fw.debounce {
				continue
			}
			pending = false
			fw.mu.Lock()
			path := fw.path
			fw.mu.Unlock()
			select {
			case fw.notify <- path:
				debug.Log(debug.APP, "file change notification: %s", path)
			default:
				// A notification is already queued
			}
		}
	}
}

// Watch switches the watcher to path, dropping any previous file.
func (fw *FileWatcher) Watch(path string) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.path == path {
		return nil
	}
	if fw.path != "" {
		if old := filepath.Dir(fw.path); old != dir {
			if err := fw.watcher.Remove(old); err != nil {
				debug.Log(debug.APP, "Error unwatching %s: %v", old, err)
			}
		}
	}
	if err := fw.watcher.Add(dir); err != nil {
		return err
	}
	fw.path = path
	debug.Log(debug.APP, "Now watching file: %s", path)
	return nil
}

// Notify returns the channel that receives change notifications
func (fw *FileWatcher) Notify() <-chan string {
	return fw.notify
}

// Close shuts down the watcher. Notify is closed once the event loop exits.
func (fw *FileWatcher) Close() error {
	close(fw.done)
	return fw.watcher.Close()
}
