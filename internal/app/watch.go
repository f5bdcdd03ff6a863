package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rwslabs/oneshot/pkg/log"
)

// watchDebounce coalesces the burst of events editors emit for one save.
const watchDebounce = 100 * time.Millisecond

// Watch sends once, then again each time the body file is written or
// created. Sends run one at a time on the calling goroutine; their failures
// are logged and do not stop the loop. Watch returns nil when ctx ends.
func (r *Runner) Watch(ctx context.Context) error {
	file, ok := r.opts.Body.(FileBody)
	if !ok {
		return ErrWatchRequiresFile
	}
	path, err := filepath.Abs(string(file))
	if err != nil {
		return fmt.Errorf("resolve body file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are still seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	r.log.Info("watching body file", log.String("path", path))

	r.sendLogged(ctx)

	trigger := make(chan struct{}, 1)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("watcher error", log.Err(err))

		case <-trigger:
			r.log.Debug("body file changed", log.String("path", path))
			r.sendLogged(ctx)
		}
	}
}

// sendLogged runs Once and logs its failure.
func (r *Runner) sendLogged(ctx context.Context) {
	if err := r.Once(ctx); err != nil && ctx.Err() == nil {
		r.log.Error("send failed, waiting for next change", log.Err(err))
	}
}
