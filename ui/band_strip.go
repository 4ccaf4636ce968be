package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rivo/tview"

	"rigbook/bandplan"
)

// defaultBandSpan is the window shown around a frequency, in Hz.
const defaultBandSpan = 1_000_000

// BandStrip shows the band plan entries overlapping the window around the
// selected bookmark.
type BandStrip struct {
	view   *tview.TextView
	plan   *bandplan.Plan
	center int64
	span   int64
}

func newBandStrip(plan *bandplan.Plan) *BandStrip {
	return &BandStrip{
		view: newBoxedTextView("Band plan"),
		plan: plan,
		span: defaultBandSpan,
	}
}

func (s *BandStrip) Primitive() tview.Primitive {
	return s.view
}

// SetCenter moves the window to freq and redraws.
func (s *BandStrip) SetCenter(freq int64) {
	s.center = freq
	s.Refresh()
}

// Refresh re-reads the plan; the file watcher calls it after a reload.
func (s *BandStrip) Refresh() {
	s.view.SetText(s.render())
}

func (s *BandStrip) render() string {
	if s.center <= 0 {
		return "no frequency selected"
	}
	low, high := s.center-s.span/2, s.center+s.span/2
	if low < 0 {
		low = 0
	}
	bands := s.plan.BandsInRange(low, high)
	if len(bands) == 0 {
		return fmt.Sprintf("%s Hz: outside the band plan", humanize.Comma(s.center))
	}
	var b strings.Builder
	for i, band := range bands {
		if i > 0 {
			b.WriteString("  ")
		}
		marker := ""
		if band.Contains(s.center) {
			marker = "*"
		}
		tag := colorTag(band.Color)
		b.WriteString(tag)
		b.WriteString(marker)
		b.WriteString(tview.Escape(band.Name))
		if tag != "" {
			b.WriteString(accentReset)
		}
		fmt.Fprintf(&b, " %s-%s", humanize.Comma(band.Min), humanize.Comma(band.Max))
		if band.Modulation != "" {
			b.WriteString(" " + tview.Escape(band.Modulation))
		}
	}
	return b.String()
}
