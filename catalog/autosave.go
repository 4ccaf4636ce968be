package catalog

import (
	"log"
	"sync"
	"time"
)

// DefaultAutosaveInterval is used when the configured interval is not
// positive.
const DefaultAutosaveInterval = 10 * time.Second

// Autosaver saves a catalog periodically.
//
// Purpose: Persist edits without an explicit save command.
// Key aspects: The ticker goroutine never touches the catalog; each tick is
// handed to dispatch, which must run the function on the goroutine that owns
// the catalog (tview's QueueUpdate in the UI). Save is a no-op while the
// catalog is clean and keeps the dirty state on failure, so a failed tick is
// retried on the next one.
// Upstream: main (UI mode).
// Downstream: Catalog.Save.
type Autosaver struct {
	cat      *Catalog
	interval time.Duration
	dispatch func(func())

	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// NewAutosaver returns a stopped autosaver. A nil dispatch runs saves on the
// ticker goroutine, which is only correct when nothing else uses the catalog.
func NewAutosaver(cat *Catalog, interval time.Duration, dispatch func(func())) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Autosaver{
		cat:      cat,
		interval: interval,
		dispatch: dispatch,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the ticker goroutine.
func (a *Autosaver) Start() {
	go a.run()
}

// Stop halts the ticker and waits for an in-flight dispatch call to return.
// It does not save; callers save once more after the UI loop exits.
func (a *Autosaver) Stop() {
	a.once.Do(func() {
		close(a.quit)
		<-a.done
	})
}

func (a *Autosaver) run() {
	defer close(a.done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.tick()
		case <-a.quit:
			return
		}
	}
}

func (a *Autosaver) tick() {
	a.dispatch(func() {
		if !a.cat.Unsaved() {
			return
		}
		if err := a.cat.Save(); err != nil {
			log.Printf("Catalog: autosave failed, retrying in %s: %v", a.interval, err)
		}
	})
}

// Unsaved reports whether a Save would write anything: the catalog is dirty
// or some tag or bookmark carries its Modified flag.
func (c *Catalog) Unsaved() bool {
	return c.dirty || c.hasModified()
}

func (c *Catalog) hasModified() bool {
	for _, t := range c.st.tags {
		if t.Modified {
			return true
		}
	}
	for _, b := range c.st.bookmarks {
		if b.Modified {
			return true
		}
	}
	return false
}
