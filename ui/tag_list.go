package ui

import (
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"rigbook/catalog"
)

// TagListMode selects which flag the check column edits.
type TagListMode int

const (
	// TagFilter toggles Show: the main pane that filters the bookmark table.
	TagFilter TagListMode = iota
	// TagPicker toggles Checked: picking the tags of one bookmark.
	TagPicker
)

// TagList shows every tag with a check column and its color.
type TagList struct {
	table        *tview.Table
	cat          *catalog.Catalog
	mode         TagListMode
	showUntagged bool
	rows         []catalog.TagID
	title        string
	cancel       func()

	// updating is held while rows are rebuilt. A refresh requested from
	// inside a refresh (a catalog event raised by one of our own edits) is
	// dropped, and toggles are ignored until the rebuild finishes.
	updating atomic.Bool
}

func newTagList(cat *catalog.Catalog, mode TagListMode, showUntagged bool) *TagList {
	v := &TagList{
		table:        tview.NewTable().SetSelectable(true, false),
		cat:          cat,
		mode:         mode,
		showUntagged: showUntagged,
		title:        "Tags",
	}
	if mode == TagPicker {
		v.title = "Select tags"
	}
	v.table.SetBorder(true)
	applyFocusBoxStyle(v.table.Box, v.title, false)
	v.table.SetSelectedFunc(func(int, int) { v.Toggle() })
	v.table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if v.HandleKey(event) {
			return nil
		}
		return event
	})
	v.cancel = cat.Subscribe(func(ev catalog.Event) {
		if ev == catalog.TagsChanged || ev == catalog.TagFilterChanged {
			v.Refresh()
		}
	})
	v.Refresh()
	return v
}

func (v *TagList) Primitive() tview.Primitive {
	return v.table
}

func (v *TagList) SetFocused(focused bool) {
	applyFocusBoxStyle(v.table.Box, v.title, focused)
}

// Close stops following catalog events.
func (v *TagList) Close() {
	if v.cancel != nil {
		v.cancel()
	}
}

// Refresh rebuilds the rows. It returns false when a refresh was already
// running and this one was skipped.
func (v *TagList) Refresh() bool {
	if !v.updating.CompareAndSwap(false, true) {
		return false
	}
	defer v.updating.Store(false)

	selected, hadSelection := v.SelectedTag()
	v.table.Clear()
	v.rows = v.rows[:0]
	for _, t := range v.cat.Tags() {
		if t.IsUntagged() && !v.showUntagged {
			continue
		}
		row := len(v.rows)
		v.table.SetCell(row, 0, tview.NewTableCell(tview.Escape(checkBox(v.marked(t)))).SetReference(t.ID))
		v.table.SetCell(row, 1, tview.NewTableCell("██").SetTextColor(tcellColor(t.Color)).SetReference(t.ID))
		v.table.SetCell(row, 2, tview.NewTableCell(tview.Escape(t.Name)).SetExpansion(1).SetReference(t.ID))
		v.rows = append(v.rows, t.ID)
	}
	if hadSelection {
		for i, id := range v.rows {
			if id == selected {
				v.table.Select(i, 0)
				return true
			}
		}
	}
	if len(v.rows) > 0 {
		row, _ := v.table.GetSelection()
		if row >= len(v.rows) {
			row = len(v.rows) - 1
		}
		if row < 0 {
			row = 0
		}
		v.table.Select(row, 0)
	}
	return true
}

// SelectedTag returns the tag under the cursor.
func (v *TagList) SelectedTag() (catalog.TagID, bool) {
	row, _ := v.table.GetSelection()
	if row < 0 || row >= len(v.rows) {
		return "", false
	}
	return v.rows[row], true
}

// Toggle flips the check column of the selected tag.
func (v *TagList) Toggle() {
	if v.updating.Load() {
		return
	}
	id, ok := v.SelectedTag()
	if !ok {
		return
	}
	t := v.cat.Tag(id)
	if v.mode == TagPicker {
		v.cat.SetTagChecked(id, !t.Checked)
		return
	}
	v.cat.SetTagShow(id, !t.Show)
}

// SetAll checks or clears every tag ("select all" / "deselect all").
func (v *TagList) SetAll(on bool) {
	if v.updating.Load() {
		return
	}
	if v.mode == TagPicker {
		v.cat.SetAllTagsChecked(on)
		return
	}
	v.cat.SetAllTagsShow(on)
}

// HandleKey applies the list's own shortcuts: Space toggles, + and - set
// every tag.
func (v *TagList) HandleKey(event *tcell.EventKey) bool {
	if event == nil || event.Key() != tcell.KeyRune {
		return false
	}
	switch event.Rune() {
	case ' ':
		v.Toggle()
	case '+':
		v.SetAll(true)
	case '-':
		v.SetAll(false)
	default:
		return false
	}
	return true
}

func (v *TagList) marked(t catalog.Tag) bool {
	if v.mode == TagPicker {
		return t.Checked
	}
	return t.Show
}

func checkBox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
