// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG FILE WATCHER
// =============================================================================

// Watcher reloads the config file when it changes on disk. Editors often
// replace the file via rename, so the parent directory is watched rather
// than the file itself.
type Watcher struct {
	path     string
	onReload func(*Config)
	debounce time.Duration

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	pending time.Time
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWatcher creates a watcher for the config file at path. onReload is
// called with the freshly loaded config after each change; invalid configs
// are dropped and the previous one stays in effect.
func NewWatcher(path string, onReload func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     path,
		onReload: onReload,
		debounce: 250 * time.Millisecond,
		watcher:  fsw,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching for config changes.
func (w *Watcher) Watch() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	go w.processEvents()
	go w.processPending()
	return nil
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.mu.Lock()
				w.pending = time.Now()
				w.mu.Unlock()
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Non-fatal; keep watching.
		}
	}
}

// processPending coalesces bursts of events into one reload.
func (w *Watcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.mu.Lock()
			due := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
			if due {
				w.pending = time.Time{}
			}
			w.mu.Unlock()

			if due {
				w.reload()
			}
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadFromPath(w.path)
	if err != nil {
		// Invalid config on disk; keep the one in effect.
		return
	}
	SetGlobal(cfg)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}
