package ui

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func enterKey() *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	screen.SetSize(120, 40)
	a := New(Options{Catalog: testCatalog(t), Screen: screen, ShowUntagged: true})
	t.Cleanup(func() {
		a.search.Stop()
		a.cancel()
	})
	return a
}

func TestAppFocusCycle(t *testing.T) {
	a := newTestApp(t)
	if a.focusIdx != 0 || a.app.GetFocus() != a.bookmarks.Primitive() {
		t.Fatalf("bookmarks should start focused")
	}
	a.handleKey(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone))
	if a.app.GetFocus() != a.tags.Primitive() {
		t.Fatalf("Tab did not focus the tag list")
	}
	a.handleKey(tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone))
	a.handleKey(tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone))
	if a.focusIdx != 2 {
		t.Fatalf("Backtab wrapped to %d, want the log pane", a.focusIdx)
	}
}

func TestAppHelpSwallowsKeys(t *testing.T) {
	a := newTestApp(t)
	a.handleKey(runeKey('?'))
	if !a.helpShown {
		t.Fatalf("help not shown")
	}
	if ev := a.handleKey(runeKey('a')); ev != nil || len(a.dialogs) != 0 {
		t.Fatalf("keys leaked past the help overlay")
	}
	a.handleKey(tcell.NewEventKey(tcell.KeyEsc, 0, tcell.ModNone))
	if a.helpShown {
		t.Fatalf("Esc did not close help")
	}
}

func TestAppDialogStack(t *testing.T) {
	a := newTestApp(t)
	a.handleKey(runeKey('e'))
	if len(a.dialogs) != 1 || !a.pages.HasPage("bookmark") {
		t.Fatalf("edit dialog not opened: %v", a.dialogs)
	}
	// Keys go to the dialog while it is open.
	if ev := a.handleKey(runeKey('q')); ev == nil {
		t.Fatalf("dialog input was captured")
	}

	id, _ := a.bookmarks.Selected()
	d := newBookmarkDialog(a.cat, id, 0)
	a.openTagPicker(d)
	if len(a.dialogs) != 2 || a.dialogs[1].name != "tags" {
		t.Fatalf("picker not stacked: %v", a.dialogs)
	}
	a.closeDialog("tags")
	a.closeDialog("bookmark")
	if len(a.dialogs) != 0 || a.app.GetFocus() != a.bookmarks.Primitive() {
		t.Fatalf("focus not restored after dialogs closed")
	}
}

func TestAppSaveAndStatus(t *testing.T) {
	a := newTestApp(t)
	if !a.cat.Unsaved() {
		t.Fatalf("fresh catalog with bookmarks should be unsaved")
	}
	a.handleKey(runeKey('s'))
	if a.cat.Unsaved() {
		t.Fatalf("s did not save")
	}
	if _, err := os.Stat(a.cat.Path()); err != nil {
		t.Fatalf("bookmark file missing: %v", err)
	}
	if text := a.status.GetText(true); !strings.Contains(text, "saved") || strings.Contains(text, "unsaved") {
		t.Fatalf("status = %q", text)
	}
}

func TestAppWithoutReceiver(t *testing.T) {
	a := newTestApp(t)
	a.tune(a.cat.Bookmarks()[0])
	if a.lastError == "" {
		t.Fatalf("tuning without a receiver should report an error")
	}
	a.followFrequency(144800000)
	if id, _ := a.bookmarks.Selected(); a.cat.Bookmark(id).Name != "APRS" {
		t.Fatalf("followFrequency selected %q", a.cat.Bookmark(id).Name)
	}
	if a.bands.center != 144800000 {
		t.Fatalf("band strip center = %d", a.bands.center)
	}
}

func TestAppRunStopsOnContext(t *testing.T) {
	a := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	ran := make(chan struct{})
	a.Dispatch(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatalf("event loop did not start")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestBackgroundDispatchReturnsAfterStop(t *testing.T) {
	a := newTestApp(t)

	// The event loop never runs, so the first call waits until Stop.
	returned := make(chan struct{})
	go func() {
		a.dispatchBackground(func() { t.Errorf("ran on a stopped app") })
		close(returned)
	}()
	select {
	case <-returned:
		t.Fatalf("dispatch returned before the app stopped")
	case <-time.After(50 * time.Millisecond):
	}

	a.Stop()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatalf("dispatch still blocked after Stop")
	}

	ran := false
	a.dispatchBackground(func() { ran = true })
	if ran {
		t.Fatalf("dispatch after Stop ran its function")
	}
}
