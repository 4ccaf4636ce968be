package ui

import (
	"bytes"
	"log"
	"sync"
	"time"

	"rigbook/internal/ratelimit"
)

const (
	logWriterMaxBytes  = 64 * 1024
	logDropReportEvery = 30 * time.Second
)

// logWriter feeds complete lines written by the log package into the log
// pane and asks for a redraw.
type logWriter struct {
	view  *logView
	sched *redrawBatcher
	// buf holds any partial line; it is bounded so a writer that never sends
	// a newline cannot grow it without limit.
	buf     []byte
	mu      sync.Mutex
	dropped *ratelimit.Counter
}

func newLogWriter(view *logView, sched *redrawBatcher) *logWriter {
	return &logWriter{view: view, sched: sched, dropped: ratelimit.NewCounter(logDropReportEvery)}
}

func (w *logWriter) Write(p []byte) (int, error) {
	if w == nil || w.view == nil {
		return len(p), nil
	}
	var (
		report       bool
		dropBytes    uint64
		totalDropped uint64
	)

	w.mu.Lock()
	w.buf = append(w.buf, p...)
	if excess := len(w.buf) - logWriterMaxBytes; excess > 0 {
		w.buf = w.buf[excess:]
		dropBytes = uint64(excess)
		totalDropped, report = w.dropped.Add(dropBytes)
	}
	appended := false
	for {
		idx := bytes.IndexByte(w.buf, '\n')
		if idx == -1 {
			break
		}
		w.view.Append(string(bytes.TrimRight(w.buf[:idx], "\r")))
		w.buf = w.buf[idx+1:]
		appended = true
	}
	w.mu.Unlock()

	if appended {
		w.sched.Schedule("log", func() {})
	}
	if report {
		log.Printf("UI: log pane dropped %d bytes (total %d) without newline", dropBytes, totalDropped)
	}
	return len(p), nil
}
