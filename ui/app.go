// Package ui is the terminal front end: the bookmark table, the tag list,
// the band plan strip and the log pane, plus the dialogs that edit them.
// Every catalog call runs on the tview event loop.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"rigbook/bandplan"
	"rigbook/catalog"
	"rigbook/rigctl"
)

const (
	pageMain    = "main"
	pageHelp    = "help"
	rigDeadline = 3 * time.Second
)

// Options configures an App. Plan and Rig may be nil.
type Options struct {
	Catalog          *catalog.Catalog
	Plan             *bandplan.Plan
	Rig              *rigctl.Client
	EnableMouse      bool
	TargetFPS        int
	ShowUntagged     bool
	AutosaveInterval time.Duration
	// Screen replaces the terminal, for tests.
	Screen tcell.Screen
}

type focusPane interface {
	Primitive() tview.Primitive
	SetFocused(bool)
}

type dialog struct {
	name  string
	focus tview.Primitive
}

// App owns the tview application and the views.
type App struct {
	app   *tview.Application
	pages *tview.Pages

	cat  *catalog.Catalog
	plan *bandplan.Plan
	rig  *rigctl.Client

	bookmarks *BookmarkTable
	tags      *TagList
	bands     *BandStrip
	logs      *logView
	status    *tview.TextView
	searchBox *tview.InputField
	search    *SearchFilter

	sched    *redrawBatcher
	autosave *catalog.Autosaver

	watchPlan bool

	panes     []focusPane
	focusIdx  int
	helpShown bool
	dialogs   []dialog
	lastError string

	ctx       context.Context
	cancel    context.CancelFunc
	cancelSub func()
	stopOnce  sync.Once
}

// New builds the views around opts.Catalog. Nothing runs until Run.
func New(opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		app:       tview.NewApplication().EnableMouse(opts.EnableMouse),
		pages:     tview.NewPages(),
		cat:       opts.Catalog,
		plan:      opts.Plan,
		rig:       opts.Rig,
		watchPlan: opts.Plan != nil,
		search:    NewSearchFilter(ctx),
		ctx:       ctx,
		cancel:    cancel,
	}
	if opts.Screen != nil {
		a.app.SetScreen(opts.Screen)
	}
	if a.plan == nil {
		a.plan = bandplan.New("")
	}
	a.sched = newRedrawBatcher(func(fn func()) { a.app.QueueUpdateDraw(fn) }, opts.TargetFPS, 0)
	a.autosave = catalog.NewAutosaver(a.cat, opts.AutosaveInterval, func(save func()) {
		a.dispatchBackground(func() {
			save()
			a.updateStatus()
		})
	})

	a.bookmarks = newBookmarkTable(a.cat, a.search)
	a.tags = newTagList(a.cat, TagFilter, opts.ShowUntagged)
	a.bands = newBandStrip(a.plan)
	a.logs = newLogView("Log", defaultLogLines)
	a.status = tview.NewTextView().SetDynamicColors(true)
	a.searchBox = tview.NewInputField().SetLabel(accentText("Search") + " ")
	a.searchBox.SetChangedFunc(func(text string) {
		a.search.SetQuery(text, func() { a.dispatchBackground(a.bookmarks.Refresh) })
	})
	a.searchBox.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			a.clearSearch()
		}
		a.setFocus(0)
	})

	a.bookmarks.onActivate = a.tune
	a.bookmarks.onSelect = func(b catalog.Bookmark) { a.bands.SetCenter(b.Frequency) }
	if id, ok := a.bookmarks.Selected(); ok {
		a.bands.SetCenter(a.cat.Bookmark(id).Frequency)
	}
	a.plan.OnChange(func() { a.sched.Schedule("bands", a.bands.Refresh) })
	a.cancelSub = a.cat.Subscribe(func(catalog.Event) { a.updateStatus() })

	a.panes = []focusPane{a.bookmarks, a.tags, a.logs}
	top := tview.NewFlex().
		AddItem(a.bookmarks.Primitive(), 0, 3, true).
		AddItem(a.tags.Primitive(), 32, 0, false)
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 0, 1, true).
		AddItem(a.bands.Primitive(), 3, 0, false).
		AddItem(a.searchBox, 1, 0, false).
		AddItem(a.logs, 8, 0, false).
		AddItem(a.status, 1, 0, false).
		AddItem(buildFooter(), 1, 0, false)
	a.pages.AddPage(pageMain, root, true, true)
	a.pages.AddPage(pageHelp, buildHelpOverlay(), true, false)
	a.app.SetRoot(a.pages, true)
	a.app.SetInputCapture(a.handleKey)
	a.setFocus(0)
	a.updateStatus()
	return a
}

// Dispatch runs fn on the UI goroutine and redraws.
func (a *App) Dispatch(fn func()) {
	a.app.QueueUpdateDraw(fn)
}

// dispatchBackground is Dispatch for goroutines that outlive the event loop.
// QueueUpdateDraw waits for the loop to run fn; once the app is stopped the
// wait is abandoned and fn may never run. Run's caller saves after exit.
func (a *App) dispatchBackground(fn func()) {
	if a.ctx.Err() != nil {
		return
	}
	queued := make(chan struct{})
	go func() {
		a.app.QueueUpdateDraw(fn)
		close(queued)
	}()
	select {
	case <-queued:
	case <-a.ctx.Done():
	}
}

// LogWriter returns a writer that appends complete lines to the log pane.
func (a *App) LogWriter() io.Writer {
	return newLogWriter(a.logs, a.sched)
}

// Run starts autosave and the band plan watcher and blocks until the user
// quits or ctx is cancelled. The catalog is not saved on exit; the caller
// does that once the event loop is gone.
func (a *App) Run(ctx context.Context) error {
	go func() {
		select {
		case <-ctx.Done():
			a.Stop()
		case <-a.ctx.Done():
		}
	}()
	a.sched.Start()
	a.autosave.Start()
	if a.watchPlan {
		if err := a.plan.Watch(a.ctx, bandplan.DefaultWatchDelay, a.dispatchBackground); err != nil {
			log.Printf("UI: band plan watch disabled: %v", err)
		}
	}

	err := a.app.Run()

	a.cancel()
	a.autosave.Stop()
	a.sched.Stop()
	a.search.Stop()
	a.bookmarks.Close()
	a.tags.Close()
	a.cancelSub()
	return err
}

// Stop ends Run. Safe from any goroutine. Background dispatches stop before
// the event loop does.
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		a.cancel()
		a.app.Stop()
	})
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if a.helpShown {
		if event.Key() == tcell.KeyEsc || event.Key() == tcell.KeyF1 || event.Rune() == 'h' || event.Rune() == '?' {
			a.toggleHelp(false)
		}
		return nil
	}
	if event.Key() == tcell.KeyCtrlC {
		a.Stop()
		return nil
	}
	// Dialogs and the search box get every other key.
	if len(a.dialogs) > 0 || a.app.GetFocus() == a.searchBox {
		return event
	}

	switch event.Key() {
	case tcell.KeyF1:
		a.toggleHelp(true)
		return nil
	case tcell.KeyTab:
		a.cycleFocus(1)
		return nil
	case tcell.KeyBacktab:
		a.cycleFocus(-1)
		return nil
	case tcell.KeyDelete:
		a.confirmRemoveBookmark()
		return nil
	}

	if a.panes[a.focusIdx] == focusPane(a.logs) && a.logs.HandleScroll(event) {
		return nil
	}
	if event.Key() != tcell.KeyRune {
		return event
	}

	switch event.Rune() {
	case 'q', 'Q':
		a.Stop()
	case '?', 'h':
		a.toggleHelp(true)
	case '/':
		a.app.SetFocus(a.searchBox)
	case 's':
		a.saveNow()
	case 'f':
		a.follow()
	case 'a':
		a.openBookmarkDialog("")
	case 'e':
		if id, ok := a.bookmarks.Selected(); ok {
			a.openBookmarkDialog(id)
		}
	case 'd':
		a.confirmRemoveBookmark()
	case 'n':
		a.promptNewTag()
	case 'r':
		a.promptRenameTag()
	case 'c':
		a.promptTagColor()
	case 'x':
		a.confirmRemoveTag()
	default:
		return event
	}
	return nil
}

func (a *App) toggleHelp(show bool) {
	a.helpShown = show
	if show {
		a.pages.ShowPage(pageHelp)
		a.pages.SendToFront(pageHelp)
		return
	}
	a.pages.HidePage(pageHelp)
	a.setFocus(a.focusIdx)
}

func (a *App) cycleFocus(delta int) {
	next := (a.focusIdx + delta + len(a.panes)) % len(a.panes)
	a.setFocus(next)
}

func (a *App) setFocus(idx int) {
	a.focusIdx = idx
	for i, pane := range a.panes {
		pane.SetFocused(i == idx)
	}
	a.app.SetFocus(a.panes[idx].Primitive())
}

func (a *App) clearSearch() {
	a.searchBox.SetText("")
	a.search.Clear()
	a.bookmarks.Refresh()
}

// showDialog stacks p over the main page and focuses focus.
func (a *App) showDialog(name string, p tview.Primitive, focus tview.Primitive, width, height int) {
	a.pages.AddPage(name, centered(p, width, height), true, true)
	a.dialogs = append(a.dialogs, dialog{name: name, focus: focus})
	a.app.SetFocus(focus)
}

func (a *App) closeDialog(name string) {
	a.pages.RemovePage(name)
	for i := len(a.dialogs) - 1; i >= 0; i-- {
		if a.dialogs[i].name == name {
			a.dialogs = append(a.dialogs[:i], a.dialogs[i+1:]...)
			break
		}
	}
	if n := len(a.dialogs); n > 0 {
		a.app.SetFocus(a.dialogs[n-1].focus)
		return
	}
	a.setFocus(a.focusIdx)
}

func (a *App) openBookmarkDialog(id catalog.BookmarkID) {
	var freq int64
	if id == "" {
		freq = a.bands.center
	}
	d := newBookmarkDialog(a.cat, id, freq)
	d.onError = a.showError
	d.onDone = func(saved catalog.BookmarkID) {
		a.closeDialog("bookmark")
		if saved != "" {
			a.bookmarks.SelectID(saved)
		}
	}
	d.onPickTags = a.openTagPicker
	a.showDialog("bookmark", d.form, d.form, 60, 19)
}

// openTagPicker lets the user tick the tags of the bookmark being edited.
// Esc or Tab writes the picked tags back into the dialog.
func (a *App) openTagPicker(d *bookmarkDialog) {
	a.cat.CheckOnly(d.pickedTagIDs())
	picker := newTagList(a.cat, TagPicker, false)
	picker.table.SetTitle(" Select tags (Space toggles, Esc done) ")
	picker.table.SetDoneFunc(func(tcell.Key) {
		d.applyPicked(a.cat.CheckedTags())
		picker.Close()
		a.closeDialog("tags")
	})
	a.showDialog("tags", picker.Primitive(), picker.Primitive(), 40, 16)
}

func (a *App) confirmRemoveBookmark() {
	id, ok := a.bookmarks.Selected()
	if !ok {
		return
	}
	b := a.cat.Bookmark(id)
	text := fmt.Sprintf("Delete bookmark %q at %s Hz?", b.Name, humanize.Comma(b.Frequency))
	modal := newConfirm(text, func() { a.cat.RemoveBookmark(id) }, func() { a.closeDialog("confirm") })
	a.showDialog("confirm", modal, modal, 50, 7)
}

func (a *App) promptNewTag() {
	form := newPrompt("New tag", "Name", "", func(name string) error {
		_, err := a.cat.AddTag(name)
		return err
	}, func() { a.closeDialog("prompt") }, a.showError)
	a.showDialog("prompt", form, form, 50, 7)
}

func (a *App) promptRenameTag() {
	id, ok := a.tags.SelectedTag()
	if !ok {
		return
	}
	t := a.cat.Tag(id)
	if t.IsUntagged() {
		a.showError(catalog.ErrReservedTag)
		return
	}
	form := newPrompt("Rename tag", "Name", t.Name, func(name string) error {
		return a.cat.RenameTag(id, name)
	}, func() { a.closeDialog("prompt") }, a.showError)
	a.showDialog("prompt", form, form, 50, 7)
}

func (a *App) promptTagColor() {
	id, ok := a.tags.SelectedTag()
	if !ok {
		return
	}
	t := a.cat.Tag(id)
	form := newPrompt("Tag color", "Color", t.Color.String(), func(value string) error {
		if !a.cat.SetTagColor(id, value) {
			return fmt.Errorf("invalid color %q", value)
		}
		return nil
	}, func() { a.closeDialog("prompt") }, a.showError)
	a.showDialog("prompt", form, form, 50, 7)
}

func (a *App) confirmRemoveTag() {
	id, ok := a.tags.SelectedTag()
	if !ok {
		return
	}
	t := a.cat.Tag(id)
	if t.IsUntagged() {
		a.showError(catalog.ErrReservedTag)
		return
	}
	text := fmt.Sprintf("Delete tag %q? Bookmarks keep their other tags.", t.Name)
	modal := newConfirm(text, func() { a.cat.RemoveTag(id) }, func() { a.closeDialog("confirm") })
	a.showDialog("confirm", modal, modal, 50, 7)
}

func (a *App) saveNow() {
	if err := a.cat.Save(); err != nil {
		a.showError(err)
		return
	}
	a.lastError = ""
	a.updateStatus()
}

// tune sends the bookmark to the receiver without blocking the UI.
func (a *App) tune(b catalog.Bookmark) {
	if a.rig == nil {
		a.showError(errors.New("no receiver configured"))
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, rigDeadline)
		defer cancel()
		if err := a.rig.Tune(ctx, b.Frequency, b.Modulation, b.Bandwidth); err != nil {
			log.Printf("UI: tune %s Hz failed: %v", humanize.Comma(b.Frequency), err)
			return
		}
		log.Printf("UI: tuned %s to %s Hz", a.rig.Addr(), humanize.Comma(b.Frequency))
	}()
}

// follow asks the receiver for its frequency and selects the bookmark that
// covers it.
func (a *App) follow() {
	if a.rig == nil {
		a.showError(errors.New("no receiver configured"))
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, rigDeadline)
		defer cancel()
		hz, err := a.rig.Frequency(ctx)
		if err != nil {
			log.Printf("UI: read receiver frequency: %v", err)
			return
		}
		a.dispatchBackground(func() { a.followFrequency(hz) })
	}()
}

func (a *App) followFrequency(hz int64) {
	if !a.bookmarks.SelectNear(hz) {
		a.bands.SetCenter(hz)
	}
}

func (a *App) showError(err error) {
	a.lastError = err.Error()
	log.Printf("UI: %v", err)
	a.updateStatus()
}

func (a *App) updateStatus() {
	state := "saved"
	if a.cat.Unsaved() {
		state = "[yellow]unsaved[-]"
	}
	text := fmt.Sprintf(" %s  %s/%s bookmarks  %s tags  %s",
		tview.Escape(a.cat.Path()),
		humanize.Comma(int64(a.bookmarks.Len())),
		humanize.Comma(int64(a.cat.Len())),
		humanize.Comma(int64(len(a.cat.Tags()))),
		state)
	if a.lastError != "" {
		text += "  [red]" + tview.Escape(a.lastError) + "[-]"
	}
	a.status.SetText(text)
}
