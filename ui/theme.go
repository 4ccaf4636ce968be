package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"rigbook/catalog"
)

const (
	accentTag   = "[#ff69b4]"
	accentReset = "[-]"
)

var (
	uiBorderColor = tcell.ColorGray
	uiFocusColor  = tcell.ColorHotPink
	uiTitleColor  = tcell.ColorHotPink
)

func accentText(text string) string {
	if text == "" {
		return ""
	}
	return accentTag + text + accentReset
}

// applyFocusBoxStyle marks the focused pane with a highlighted border and a
// bracketed title.
func applyFocusBoxStyle(box *tview.Box, title string, focused bool) {
	if box == nil {
		return
	}
	box.SetTitleAlign(tview.AlignLeft)
	box.SetTitleColor(uiTitleColor)
	if focused {
		box.SetBorderColor(uiFocusColor)
		box.SetTitle(accentText("[ " + title + " ]"))
		return
	}
	box.SetBorderColor(uiBorderColor)
	box.SetTitle(" " + title + " ")
}

func newBoxedTextView(title string) *tview.TextView {
	tv := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	tv.SetBorder(true)
	applyFocusBoxStyle(tv.Box, title, false)
	return tv
}

func buildFooter() *tview.TextView {
	return tview.NewTextView().SetDynamicColors(true).SetText(
		accentText("F1") + "Help  " + accentText("Enter") + "Tune  " + accentText("a") + "Add  " +
			accentText("e") + "Edit  " + accentText("d") + "Delete  " + accentText("/") + "Search  " +
			accentText("Tab") + "Pane  [Q]Quit",
	)
}

func buildHelpOverlay() tview.Primitive {
	help := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	help.SetText(strings.TrimSpace(fmt.Sprintf(`
KEYBOARD HELP

GLOBAL
  %sF1%s / ?  Help   Tab / Shift+Tab  Next / previous pane
  s  Save now   f  Follow receiver frequency   q / Ctrl+C  Quit

BOOKMARKS
  Enter  Tune receiver   a  Add   e  Edit   d / Delete  Remove
  /  Search (name, info, tags)   Esc  Clear search

TAGS
  Space  Show / hide   +  Show all   -  Hide all
  n  New tag   r  Rename   c  Color   x  Delete

LOG
  Up/Down or k/j  Scroll   PageUp/Down  Fast scroll   Home/End
`, accentTag, accentReset)))
	help.SetBorder(true).SetTitle("Help")
	help.SetBorderColor(uiBorderColor)
	help.SetTitleColor(uiTitleColor)
	return centered(help, 66, 20)
}

// centered places p in the middle of the screen with a fixed size.
func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false),
			width, 1, true).
		AddItem(nil, 0, 1, false)
}

// tcellColor converts a catalog color for drawing; alpha is ignored.
func tcellColor(c catalog.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// colorTag renders a tview inline color tag, or "" for the default color.
func colorTag(c tcell.Color) string {
	hex := c.Hex()
	if hex < 0 {
		return ""
	}
	return fmt.Sprintf("[#%06x]", hex)
}
