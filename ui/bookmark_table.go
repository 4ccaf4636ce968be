package ui

import (
	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"rigbook/catalog"
)

// Bookmark table columns.
const (
	colFrequency = iota
	colName
	colModulation
	colBandwidth
	colTags
	colInfo
)

var bookmarkHeaders = []string{"Frequency", "Name", "Modulation", "Bandwidth", "Tags", "Info"}

// BookmarkTable lists the bookmarks whose tags are shown and that match the
// search, in frequency order. Row 0 is the header.
type BookmarkTable struct {
	table  *tview.Table
	cat    *catalog.Catalog
	search *SearchFilter
	rows   []catalog.BookmarkID
	title  string

	onActivate func(catalog.Bookmark)
	onSelect   func(catalog.Bookmark)
	cancel     func()
}

func newBookmarkTable(cat *catalog.Catalog, search *SearchFilter) *BookmarkTable {
	v := &BookmarkTable{
		table:  tview.NewTable().SetFixed(1, 0).SetSelectable(true, false),
		cat:    cat,
		search: search,
		title:  "Bookmarks",
	}
	v.table.SetBorder(true)
	applyFocusBoxStyle(v.table.Box, v.title, false)
	v.table.SetSelectedFunc(func(row, _ int) {
		if b, ok := v.bookmarkAt(row); ok && v.onActivate != nil {
			v.onActivate(b)
		}
	})
	v.table.SetSelectionChangedFunc(func(row, _ int) {
		if b, ok := v.bookmarkAt(row); ok && v.onSelect != nil {
			v.onSelect(b)
		}
	})
	v.cancel = cat.Subscribe(func(catalog.Event) { v.Refresh() })
	v.Refresh()
	return v
}

// Close stops following catalog events.
func (v *BookmarkTable) Close() {
	if v.cancel != nil {
		v.cancel()
	}
}

func (v *BookmarkTable) Primitive() tview.Primitive {
	return v.table
}

func (v *BookmarkTable) SetFocused(focused bool) {
	applyFocusBoxStyle(v.table.Box, v.title, focused)
}

// Refresh rebuilds the rows from the catalog and keeps the selection on the
// same bookmark when it is still listed.
func (v *BookmarkTable) Refresh() {
	selected, hadSelection := v.Selected()

	v.table.Clear()
	for col, title := range bookmarkHeaders {
		v.table.SetCell(0, col, tview.NewTableCell(title).
			SetTextColor(uiTitleColor).
			SetSelectable(false).
			SetAttributes(tcell.AttrBold))
	}
	v.rows = v.rows[:0]
	for _, b := range v.cat.Bookmarks() {
		if !v.cat.BookmarkVisible(b.ID) || !v.search.Matches(b) {
			continue
		}
		color := tcell.ColorWhite
		if c, ok := v.cat.BookmarkColor(b.ID); ok {
			color = tcellColor(c)
		}
		row := len(v.rows) + 1
		cells := []string{
			formatFrequency(b.Frequency),
			b.Name,
			b.Modulation,
			formatBandwidth(b.Bandwidth),
			b.TagString(),
			b.Info,
		}
		for col, text := range cells {
			cell := tview.NewTableCell(tview.Escape(text)).SetTextColor(color).SetReference(b.ID)
			switch col {
			case colFrequency, colBandwidth:
				cell.SetAlign(tview.AlignRight)
			case colInfo:
				cell.SetExpansion(1)
			}
			v.table.SetCell(row, col, cell)
		}
		v.rows = append(v.rows, b.ID)
	}

	if hadSelection && v.SelectID(selected) {
		return
	}
	if len(v.rows) > 0 {
		row, _ := v.table.GetSelection()
		if row < 1 {
			row = 1
		}
		if row > len(v.rows) {
			row = len(v.rows)
		}
		v.table.Select(row, 0)
	}
}

// Selected returns the ID of the highlighted bookmark.
func (v *BookmarkTable) Selected() (catalog.BookmarkID, bool) {
	row, _ := v.table.GetSelection()
	if row < 1 || row > len(v.rows) {
		return "", false
	}
	return v.rows[row-1], true
}

// SelectID highlights id if it is listed.
func (v *BookmarkTable) SelectID(id catalog.BookmarkID) bool {
	for i, rowID := range v.rows {
		if rowID == id {
			v.table.Select(i+1, 0)
			return true
		}
	}
	return false
}

// SelectNear highlights the bookmark whose passband covers freq, the way the
// receiver's current frequency selects the "current" bookmark.
func (v *BookmarkTable) SelectNear(freq int64) bool {
	b, ok := v.cat.BookmarkNear(freq)
	if !ok {
		return false
	}
	return v.SelectID(b.ID)
}

// Len is the number of listed bookmarks.
func (v *BookmarkTable) Len() int {
	return len(v.rows)
}

func (v *BookmarkTable) bookmarkAt(row int) (catalog.Bookmark, bool) {
	if row < 1 || row > len(v.rows) {
		return catalog.Bookmark{}, false
	}
	return v.cat.Bookmark(v.rows[row-1]), true
}

// formatFrequency groups digits for readability: 145500000 -> "145,500,000".
func formatFrequency(hz int64) string {
	return humanize.Comma(hz)
}

// formatBandwidth leaves unspecified passbands empty.
func formatBandwidth(hz int64) string {
	if hz == 0 {
		return ""
	}
	return humanize.Comma(hz)
}
