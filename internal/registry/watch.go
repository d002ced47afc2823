package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for the directory to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads the registry whenever a manifest in the platforms directory
// is created, written, renamed or removed, collapsing bursts of events into
// one reload. It blocks until ctx is cancelled and then returns ctx.Err().
// Edits to the targets of linked manifests are not observed.
func (r *Registry) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("creating platforms directory %s: %w", r.dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(r.dir); err != nil {
		return fmt.Errorf("watching %s: %w", r.dir, err)
	}
	r.logger.Debug().Str("dir", r.dir).Msg("watching platforms directory")

	// Edits made before the watch started.
	if _, err := r.Refresh(); err != nil {
		r.logger.Warn().Err(err).Msg("reloading platforms")
	}

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isManifestFile(filepath.Base(event.Name)) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			changed, err := r.Refresh()
			if err != nil {
				r.logger.Warn().Err(err).Msg("reloading platforms")
				continue
			}
			r.logger.Debug().Bool("changed", changed).Msg("platforms directory settled")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn().Err(err).Msg("platform watcher error")

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
