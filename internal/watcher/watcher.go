// Package watcher monitors the log sources for changes and signals a
// coalesced "sources changed" callback. It carries no pipeline state; the
// consumer decides what a change means.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/promptscope/internal/config"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher observes the history file and the projects directory tree.
// Bursts of write/create/remove events collapse into a single onChange
// call after the debounce window.
type Watcher struct {
	paths    config.Paths
	onChange func()
	watcher  *fsnotify.Watcher
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	running  bool
	debounce time.Duration
}

// New creates a watcher over the configured source paths.
func New(paths config.Paths, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		paths:    paths,
		onChange: onChange,
		watcher:  fsw,
		ctx:      ctx,
		cancel:   cancel,
		debounce: defaultDebounce,
	}, nil
}

// Start registers the watch points and begins the event loop.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.addWatches()
	go w.watchLoop()
	return nil
}

// Stop halts the event loop and releases the underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	w.cancel()
	return w.watcher.Close()
}

// addWatches covers the history file's directory, the projects directory
// and every existing project subdirectory. Missing paths are skipped; the
// sources may not exist yet on a fresh machine.
func (w *Watcher) addWatches() {
	if dir := filepath.Dir(w.paths.HistoryFile); dirExists(dir) {
		if err := w.watcher.Add(dir); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("failed to watch history directory")
		}
	}

	if !dirExists(w.paths.ProjectsDir) {
		return
	}
	if err := w.watcher.Add(w.paths.ProjectsDir); err != nil {
		log.Warn().Err(err).Str("path", w.paths.ProjectsDir).Msg("failed to watch projects directory")
		return
	}

	entries, err := os.ReadDir(w.paths.ProjectsDir)
	if err != nil {
		log.Warn().Err(err).Str("path", w.paths.ProjectsDir).Msg("failed to list project directories")
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(w.paths.ProjectsDir, entry.Name())
		if err := w.watcher.Add(sub); err != nil {
			log.Warn().Err(err).Str("path", sub).Msg("failed to watch project directory")
		}
	}
}

func (w *Watcher) watchLoop() {
	var debounceTimer *time.Timer

	for {
		select {
		case <-w.ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			// New project directories need their own watch.
			if event.Op&fsnotify.Create != 0 && filepath.Dir(event.Name) == w.paths.ProjectsDir && dirExists(event.Name) {
				if err := w.watcher.Add(event.Name); err != nil {
					log.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new project directory")
				}
			}

			log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("source change detected")

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.notify)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) notify() {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if running && w.onChange != nil {
		w.onChange()
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
