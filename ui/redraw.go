package ui

import (
	"sync"
	"time"
)

// redrawBatcher collects keyed view updates from background goroutines (log
// lines, band plan reloads) and applies them at most once per frame. Posting
// the same key twice before the next frame keeps only the newest func; keys
// run in the order they were first posted.
//
// post hands a batch to the UI loop (QueueUpdateDraw). With a nil post the
// batch runs on the batcher goroutine, which tests rely on.
type redrawBatcher struct {
	post     func(func())
	interval time.Duration
	drain    time.Duration

	mu   sync.Mutex
	keys []string
	work map[string]func()
	wake chan struct{}
	quit chan struct{}
	done chan struct{}
	stop sync.Once
}

const (
	defaultFPS         = 30
	defaultRedrawDrain = 100 * time.Millisecond
)

func newRedrawBatcher(post func(func()), fps int, drain time.Duration) *redrawBatcher {
	if fps <= 0 {
		fps = defaultFPS
	}
	if drain <= 0 {
		drain = defaultRedrawDrain
	}
	return &redrawBatcher{
		post:     post,
		interval: time.Second / time.Duration(fps),
		drain:    drain,
		work:     make(map[string]func()),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (r *redrawBatcher) Start() {
	go r.loop()
}

// Stop runs what is still pending, waiting at most the drain timeout.
func (r *redrawBatcher) Stop() {
	r.stop.Do(func() {
		close(r.quit)
		select {
		case <-r.done:
		case <-time.After(r.drain):
		}
	})
}

// Schedule registers fn under key for the next frame.
func (r *redrawBatcher) Schedule(key string, fn func()) {
	if r == nil {
		return
	}
	r.mu.Lock()
	if _, ok := r.work[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.work[key] = fn
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Pending reports whether key is waiting for the next frame.
func (r *redrawBatcher) Pending(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.work[key]
	return ok
}

// loop sleeps until work arrives, then waits out the rest of the current
// frame so bursts collapse into one batch.
func (r *redrawBatcher) loop() {
	defer close(r.done)
	var last time.Time
	for {
		select {
		case <-r.quit:
			r.drainUntil(time.Now().Add(r.drain))
			return
		case <-r.wake:
		}
		if wait := r.interval - time.Since(last); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-r.quit:
				timer.Stop()
				r.drainUntil(time.Now().Add(r.drain))
				return
			}
		}
		last = time.Now()
		r.flush()
	}
}

func (r *redrawBatcher) drainUntil(deadline time.Time) {
	for time.Now().Before(deadline) && r.flush() {
	}
}

// flush applies one batch and reports whether there was anything to apply.
func (r *redrawBatcher) flush() bool {
	r.mu.Lock()
	if len(r.keys) == 0 {
		r.mu.Unlock()
		return false
	}
	batch := make([]func(), 0, len(r.keys))
	for _, key := range r.keys {
		batch = append(batch, r.work[key])
		delete(r.work, key)
	}
	r.keys = r.keys[:0]
	r.mu.Unlock()

	apply := func() {
		for _, fn := range batch {
			fn()
		}
	}
	if r.post == nil {
		apply()
	} else {
		r.post(apply)
	}
	return true
}
