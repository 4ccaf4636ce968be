package ui

import (
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const defaultLogLines = 500

// logView is the bounded log pane. It keeps a ring of lines and draws only
// the rows that fit. Append may be called from any goroutine; Draw and
// HandleScroll run on the UI goroutine.
type logView struct {
	*tview.Box

	mu      sync.Mutex
	lines   []string
	head    int
	count   int
	total   uint64
	offset  int
	follow  bool
	focused bool
	title   string
}

func newLogView(title string, max int) *logView {
	if max <= 0 {
		max = defaultLogLines
	}
	v := &logView{
		Box:    tview.NewBox().SetBorder(true),
		lines:  make([]string, max),
		follow: true,
		title:  title,
	}
	applyFocusBoxStyle(v.Box, title, false)
	return v
}

func (v *logView) SetFocused(focused bool) {
	v.mu.Lock()
	v.focused = focused
	v.mu.Unlock()
	applyFocusBoxStyle(v.Box, v.title, focused)
}

// Append adds one line, evicting the oldest once the ring is full.
func (v *logView) Append(line string) {
	v.mu.Lock()
	max := len(v.lines)
	if v.count < max {
		v.lines[(v.head+v.count)%max] = line
		v.count++
	} else {
		v.lines[v.head] = line
		v.head = (v.head + 1) % max
	}
	v.total++
	v.mu.Unlock()
}

func (v *logView) Draw(screen tcell.Screen) {
	v.Box.DrawForSubclass(screen, v)

	x, y, width, height := v.GetInnerRect()
	if width <= 0 || height <= 0 {
		return
	}
	v.mu.Lock()
	rows := v.visibleRowsLocked(height)
	v.mu.Unlock()

	for i, row := range rows {
		drawPlainLine(screen, x, y+i, width, row, v.GetBackgroundColor())
	}
}

// HandleScroll moves the window for arrow, page, Home/End and k/j keys.
// Scrolling to the bottom resumes following new lines.
func (v *logView) HandleScroll(event *tcell.EventKey) bool {
	if event == nil {
		return false
	}
	_, _, _, height := v.GetInnerRect()
	if height < 1 {
		height = 1
	}
	page := height - 1
	if page < 1 {
		page = 1
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	maxOffset := v.rowCountLocked() - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	next := v.offset
	switch event.Key() {
	case tcell.KeyUp:
		next--
	case tcell.KeyDown:
		next++
	case tcell.KeyPgUp:
		next -= page
	case tcell.KeyPgDn:
		next += page
	case tcell.KeyHome:
		next = 0
	case tcell.KeyEnd:
		next = maxOffset
	case tcell.KeyRune:
		switch event.Rune() {
		case 'k':
			next--
		case 'j':
			next++
		default:
			return false
		}
	default:
		return false
	}
	if next < 0 {
		next = 0
	}
	if next > maxOffset {
		next = maxOffset
	}
	v.offset = next
	v.follow = next == maxOffset
	return true
}

// Text returns every retained line plus the overflow marker.
func (v *logView) Text() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	rows := make([]string, 0, v.count+1)
	for i := 0; i < v.count; i++ {
		rows = append(rows, v.rowLocked(i))
	}
	if v.overflowLocked() > 0 {
		rows = append(rows, v.rowLocked(v.count))
	}
	return strings.Join(rows, "\n")
}

func (v *logView) overflowLocked() int {
	return int(v.total) - v.count
}

// rowCountLocked includes the "... +N more" line shown once lines were
// evicted.
func (v *logView) rowCountLocked() int {
	if v.overflowLocked() > 0 {
		return v.count + 1
	}
	return v.count
}

// rowLocked returns display row i; row 0 is the oldest retained line.
func (v *logView) rowLocked(i int) string {
	if i < v.count {
		return v.lines[(v.head+i)%len(v.lines)]
	}
	return "... +" + strconv.Itoa(v.overflowLocked()) + " more"
}

func (v *logView) visibleRowsLocked(height int) []string {
	total := v.rowCountLocked()
	maxOffset := total - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if v.follow || !v.focused {
		v.offset = maxOffset
	}
	if v.offset > maxOffset {
		v.offset = maxOffset
	}
	end := v.offset + height
	if end > total {
		end = total
	}
	rows := make([]string, 0, end-v.offset)
	for i := v.offset; i < end; i++ {
		rows = append(rows, v.rowLocked(i))
	}
	return rows
}

func drawPlainLine(screen tcell.Screen, x, y, width int, text string, bg tcell.Color) {
	if width <= 0 {
		return
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(bg)
	col := 0
	screen.SetContent(x+col, y, ' ', nil, style)
	col++
	for _, r := range text {
		if col >= width || r == '\n' || r == '\r' {
			return
		}
		if r == '\t' {
			r = ' '
		}
		screen.SetContent(x+col, y, r, nil, style)
		col++
	}
}

func (v *logView) Primitive() tview.Primitive {
	return v
}
