package bandplan

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDelay coalesces the burst of events an editor produces when it
// saves the file.
const DefaultWatchDelay = 200 * time.Millisecond

// Watch reloads the plan whenever bandplan.csv is written, created, renamed
// or removed, until ctx is cancelled. The directory is watched rather than
// the file so editors that replace the file keep triggering reloads.
//
// Reloads run through dispatch when it is non-nil so the caller can serialize
// them with its own event loop; otherwise they run on the watcher goroutine.
func (p *Plan) Watch(ctx context.Context, delay time.Duration, dispatch func(func())) error {
	if delay <= 0 {
		delay = DefaultWatchDelay
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("bandplan: create watcher: %w", err)
	}
	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("bandplan: watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()

		var (
			mu    sync.Mutex
			timer *time.Timer
		)
		schedule := func() {
			mu.Lock()
			defer mu.Unlock()
			if timer != nil {
				timer.Reset(delay)
				return
			}
			timer = time.AfterFunc(delay, func() {
				mu.Lock()
				timer = nil
				mu.Unlock()
				if ctx.Err() != nil {
					return
				}
				dispatch(func() {
					if err := p.Load(); err != nil {
						log.Printf("BandPlan: reload failed: %v", err)
					}
				})
			})
		}
		defer func() {
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
		}()

		target := filepath.Clean(p.path)
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("BandPlan: watcher error: %v", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != target {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					schedule()
				}
			}
		}
	}()
	return nil
}
