package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestLogViewMaintainsBoundedHistory(t *testing.T) {
	v := newLogView("Log", 3)
	v.Append("one")
	v.Append("two")
	v.Append("three")
	v.Append("four")

	got := v.Text()
	if strings.Contains(got, "one") {
		t.Fatalf("expected oldest line to be evicted, got %q", got)
	}
	for _, line := range []string{"two", "three", "four", "... +1 more"} {
		if !strings.Contains(got, line) {
			t.Fatalf("expected %q in text, got %q", line, got)
		}
	}
}

func TestLogViewScroll(t *testing.T) {
	v := newLogView("Log", 8)
	v.SetRect(0, 0, 40, 5)
	v.SetFocused(true)
	for i := 0; i < 10; i++ {
		v.Append("line")
	}

	if !v.HandleScroll(tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone)) {
		t.Fatalf("expected home key to be handled")
	}
	if v.offset != 0 || v.follow {
		t.Fatalf("home: offset=%d follow=%v", v.offset, v.follow)
	}
	if !v.HandleScroll(tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone)) {
		t.Fatalf("expected end key to be handled")
	}
	end := v.offset
	if end == 0 || !v.follow {
		t.Fatalf("end: offset=%d follow=%v", end, v.follow)
	}
	if !v.HandleScroll(tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone)) {
		t.Fatalf("expected k to be handled")
	}
	if v.offset != end-1 || v.follow {
		t.Fatalf("k: offset=%d follow=%v", v.offset, v.follow)
	}
	if v.HandleScroll(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)) {
		t.Fatalf("x should not scroll")
	}
}

func TestLogViewDrawsNewestLines(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(30, 4)

	v := newLogView("Log", 10)
	v.SetRect(0, 0, 30, 4)
	for _, line := range []string{"first", "second", "third"} {
		v.Append(line)
	}
	v.Draw(screen)

	// Two inner rows: the newest two lines, each after a one-cell margin.
	for row, want := range []string{"second", "third"} {
		var got []rune
		for x := 2; x < 2+len(want); x++ {
			r, _, _, _ := screen.GetContent(x, row+1)
			got = append(got, r)
		}
		if string(got) != want {
			t.Fatalf("row %d = %q, want %q", row, string(got), want)
		}
	}
}

func TestLogWriterBounds(t *testing.T) {
	w := newLogWriter(newLogView("Log", 10), nil)
	input := bytes.Repeat([]byte("a"), logWriterMaxBytes*2)
	n, err := w.Write(input)
	if err != nil {
		t.Fatalf("write error: %v", err)
	}
	if n != len(input) {
		t.Fatalf("expected write %d bytes, got %d", len(input), n)
	}
	if len(w.buf) != logWriterMaxBytes {
		t.Fatalf("expected buffer size %d, got %d", logWriterMaxBytes, len(w.buf))
	}
	if w.dropped.Total() != logWriterMaxBytes {
		t.Fatalf("dropped %d bytes, want %d", w.dropped.Total(), logWriterMaxBytes)
	}
}

func TestLogWriterSplitsLines(t *testing.T) {
	sched := newRedrawBatcher(nil, 30, 0)
	w := newLogWriter(newLogView("Log", 10), sched)
	w.Write([]byte("Catalog: saved\r\nBandPlan: rel"))
	w.Write([]byte("oaded\n"))

	if got := w.view.Text(); got != "Catalog: saved\nBandPlan: reloaded" {
		t.Fatalf("log text = %q", got)
	}
	if !sched.Pending("log") {
		t.Fatalf("expected a scheduled redraw")
	}
}
