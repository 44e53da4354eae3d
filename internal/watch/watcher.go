// Package watch regenerates the export header whenever the project config
// changes on disk. It watches the config file's directory so editor
// rename-and-replace saves are still observed.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"symvis/internal/config"
	"symvis/internal/header"
	"symvis/internal/logging"
)

// HeaderWatcher watches a symvis config file and rewrites the export
// header on settled changes.
type HeaderWatcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	root        string // Project root; header output paths are relative to it
	configPath  string // Full path of the watched config file
	resolved    bool   // Render the flattened header instead of the portable one
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	closed      bool

	stats Stats
}

// Stats tracks watcher activity for debugging.
type Stats struct {
	Events        int
	Regenerations int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
}

// New creates a HeaderWatcher for the config file at root/configRel.
// resolved selects flattened output for the config's fact tuple instead of
// the portable preprocessor header.
func New(root, configRel string, resolved bool) (*HeaderWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &HeaderWatcher{
		watcher:     watcher,
		root:        root,
		configPath:  filepath.Join(root, configRel),
		resolved:    resolved,
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond, // Debounce rapid saves
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
// An initial regeneration is performed so the header exists before the
// first edit.
func (w *HeaderWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return fmt.Errorf("watcher already stopped")
	}
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.configPath)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	logging.Watch("HeaderWatcher: watching %s", w.configPath)

	w.regenerate()

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for cleanup. The underlying fsnotify
// watcher is closed even when Start was never called, so New must always
// be paired with Stop.
func (w *HeaderWatcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		logging.WatchError("HeaderWatcher: error closing watcher: %v", err)
	}
	logging.Watch("HeaderWatcher: stopped")
}

// run is the main event loop.
func (w *HeaderWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Watch("HeaderWatcher: context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.WatchError("HeaderWatcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			w.processDebounced()
		}
	}
}

// handleEvent records a config-file event for debounced processing.
func (w *HeaderWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.configPath {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return // Ignore chmod, remove, etc.
	}

	logging.WatchDebug("HeaderWatcher: %s event for %s", event.Op, event.Name)

	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

// processDebounced regenerates once events have settled past the window.
func (w *HeaderWatcher) processDebounced() {
	w.mu.Lock()
	now := time.Now()
	settled := false
	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			delete(w.debounceMap, path)
			settled = true
		}
	}
	w.mu.Unlock()

	if settled {
		w.regenerate()
	}
}

// regenerate reloads the config and rewrites the header.
func (w *HeaderWatcher) regenerate() {
	cfg, err := config.Load(w.configPath)
	if err != nil {
		logging.WatchWarn("HeaderWatcher: config not loadable, keeping last header: %v", err)
		w.recordError()
		return
	}

	opts, err := cfg.HeaderOptions()
	if err != nil {
		logging.WatchWarn("HeaderWatcher: bad header options: %v", err)
		w.recordError()
		return
	}

	var content string
	if w.resolved {
		facts, err := cfg.VisibilityFacts()
		if err != nil {
			logging.WatchWarn("HeaderWatcher: bad facts: %v", err)
			w.recordError()
			return
		}
		content, err = header.RenderResolved(opts, facts)
		if err != nil {
			logging.WatchWarn("HeaderWatcher: render failed: %v", err)
			w.recordError()
			return
		}
	} else {
		content, err = header.Render(opts)
		if err != nil {
			logging.WatchWarn("HeaderWatcher: render failed: %v", err)
			w.recordError()
			return
		}
	}

	out := cfg.Header.Output
	if !filepath.IsAbs(out) {
		out = filepath.Join(w.root, out)
	}
	if err := header.WriteFile(out, content); err != nil {
		logging.WatchError("HeaderWatcher: write failed: %v", err)
		w.recordError()
		return
	}

	w.mu.Lock()
	w.stats.Regenerations++
	w.mu.Unlock()
	logging.Watch("HeaderWatcher: wrote %s", out)
}

func (w *HeaderWatcher) recordError() {
	w.mu.Lock()
	w.stats.Errors++
	w.mu.Unlock()
}

// GetStats returns the current watcher statistics.
func (w *HeaderWatcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching returns true if the watcher is currently running.
func (w *HeaderWatcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
