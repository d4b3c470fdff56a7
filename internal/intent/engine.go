// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/neurogate/internal/eeg"
)

// =============================================================================
// CLASSIFICATION ENGINE
// =============================================================================

// Engine wraps a hot-swappable classification strategy. It starts with the
// rule-based classifier and upgrades to a model-based one whenever a valid
// inference artifact is loaded; a missing or malformed artifact leaves the
// current strategy in place.
type Engine struct {
	mu      sync.RWMutex
	current Classifier
	source  string // "rules" or the artifact path
}

// NewEngine returns an engine running the rule-based strategy.
func NewEngine() *Engine {
	return &Engine{
		current: NewRuleClassifier(),
		source:  "rules",
	}
}

// Classify dispatches to the active strategy.
func (e *Engine) Classify(fv eeg.FeatureVector) Result {
	e.mu.RLock()
	c := e.current
	e.mu.RUnlock()
	return c.Classify(fv)
}

// Source reports the active strategy: "rules" or the loaded artifact path.
func (e *Engine) Source() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.source
}

// LoadArtifact attempts to swap in a model-based strategy from path. On any
// load or validation failure the active strategy is unchanged and the error
// is returned for the caller to log.
func (e *Engine) LoadArtifact(path string) error {
	model, err := LoadModel(path)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.current = model
	e.source = path
	e.mu.Unlock()
	return nil
}

// Reset returns the engine to the rule-based strategy.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.current = NewRuleClassifier()
	e.source = "rules"
	e.mu.Unlock()
}

var _ Classifier = (*Engine)(nil)

// =============================================================================
// ARTIFACT WATCHER
// =============================================================================

// reloadDebounce collapses the burst of write events an atomic file save
// produces into a single reload.
const reloadDebounce = 250 * time.Millisecond

// Watcher reloads an engine's inference artifact when it changes on disk.
// It watches the artifact's parent directory so editors that replace the
// file via rename are still observed.
type Watcher struct {
	engine  *Engine
	path    string
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a watcher for the artifact at path.
func NewWatcher(engine *Engine, path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("intent: create artifact watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		engine:  engine,
		path:    filepath.Clean(path),
		watcher: fsw,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Watch begins watching the artifact directory and performs an initial load
// if the artifact already exists.
func (w *Watcher) Watch() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("intent: watch %s: %w", filepath.Dir(w.path), err)
	}

	if _, err := os.Stat(w.path); err == nil {
		if err := w.engine.LoadArtifact(w.path); err != nil {
			fmt.Fprintf(os.Stderr, "neurogate: model artifact rejected, keeping %s: %v\n",
				w.engine.Source(), err)
		}
	}

	go w.processEvents()
	go w.processPending()
	return nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
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
			if filepath.Clean(event.Name) != w.path {
				continue
			}

			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.mu.Lock()
				w.pending = time.Now()
				w.mu.Unlock()

			case event.Op&fsnotify.Remove != 0:
				w.engine.Reset()
				fmt.Fprintf(os.Stderr, "neurogate: model artifact removed, reverting to rules\n")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "neurogate: artifact watcher: %v\n", err)
		}
	}
}

func (w *Watcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.mu.Lock()
			due := !w.pending.IsZero() && time.Since(w.pending) >= reloadDebounce
			if due {
				w.pending = time.Time{}
			}
			w.mu.Unlock()

			if !due {
				continue
			}
			if err := w.engine.LoadArtifact(w.path); err != nil {
				fmt.Fprintf(os.Stderr, "neurogate: model artifact rejected, keeping %s: %v\n",
					w.engine.Source(), err)
			}
		}
	}
}
