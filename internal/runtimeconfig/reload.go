package runtimeconfig

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Reloader watches the policy file and reloads the store when it changes.
type Reloader struct {
	watcher  *fsnotify.Watcher
	store    *Store
	target   string
	debounce time.Duration
	logger   *zap.Logger
}

// NewReloader creates a watcher for the store's policy file.
// The parent directory is watched so editors that replace the file on save
// are picked up; the file itself does not need to exist yet.
func NewReloader(store *Store, logger *zap.Logger) (*Reloader, error) {
	if store.Path() == "" {
		return nil, fmt.Errorf("no policy file configured")
	}

	target, err := filepath.Abs(store.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve policy path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", filepath.Dir(target), err)
	}

	return &Reloader{
		watcher:  watcher,
		store:    store,
		target:   target,
		debounce: defaultDebounce,
		logger:   logger,
	}, nil
}

// Run watches for changes until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var (
		mu       sync.Mutex
		debounce *time.Timer
	)
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if debounce != nil {
			debounce.Stop()
		}
	}

	r.logger.Info("watching access policy file", zap.String("path", r.target))

	for {
		select {
		case <-ctx.Done():
			stop()
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if !r.relevant(event) {
				continue
			}

			mu.Lock()
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(r.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				// Reload logs its own outcome.
				_ = r.store.Reload()
			})
			mu.Unlock()

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("policy file watcher error", zap.Error(err))
		}
	}
}

func (r *Reloader) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != r.target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
