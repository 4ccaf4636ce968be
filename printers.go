package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"rigbook/bandplan"
	"rigbook/catalog"
)

const (
	infoColumnWidth = 40
	swatch          = "██"
)

var (
	titleColor = color.New(color.Bold, color.Underline)
	faintColor = color.New(color.Faint)
	hintColor  = color.New(color.FgHiYellow, color.Italic)
)

func rgb(c catalog.Color) *color.Color {
	return color.RGB(int(c.R), int(c.G), int(c.B))
}

// colorLines prints a rendered table with the header bold and every other
// line colored by paint. Coloring whole lines keeps the table's padding intact.
func colorLines(w io.Writer, table string, paint func(row int) *color.Color) {
	for i, line := range strings.Split(table, "\n") {
		switch {
		case i == 0:
			_, _ = titleColor.Fprintln(w, line)
		case paint != nil && paint(i-1) != nil:
			_, _ = paint(i - 1).Fprintln(w, line)
		default:
			fmt.Fprintln(w, line)
		}
	}
}

func printBookmarks(w io.Writer, cat *catalog.Catalog, list []catalog.Bookmark) {
	if len(list) == 0 {
		_, _ = faintColor.Fprintln(w, "no bookmarks")
		return
	}
	tbl := uitable.New()
	tbl.MaxColWidth = infoColumnWidth
	tbl.Separator = "  "
	tbl.AddRow("FREQUENCY", "NAME", "MODULATION", "BANDWIDTH", "TAGS", "INFO")
	for _, b := range list {
		tbl.AddRow(formatHz(b.Frequency), b.Name, b.Modulation, formatBandwidth(b.Bandwidth), b.TagString(), b.Info)
	}
	tbl.RightAlign(0)
	tbl.RightAlign(3)
	colorLines(w, tbl.String(), func(row int) *color.Color {
		if c, ok := cat.BookmarkColor(list[row].ID); ok {
			return rgb(c)
		}
		return nil
	})
	_, _ = faintColor.Fprintf(w, "%s of %s bookmarks\n", humanize.Comma(int64(len(list))), humanize.Comma(int64(cat.Len())))
}

func printTags(w io.Writer, cat *catalog.Catalog) {
	tags := cat.Tags()
	counts := make(map[catalog.TagID]int, len(tags))
	for _, b := range cat.Bookmarks() {
		for _, id := range b.Tags {
			counts[id]++
		}
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("", "TAG", "COLOR", "BOOKMARKS")
	for _, t := range tags {
		tbl.AddRow(swatch, t.Name, t.Color.String(), humanize.Comma(int64(counts[t.ID])))
	}
	tbl.RightAlign(3)
	colorLines(w, tbl.String(), func(row int) *color.Color {
		return rgb(tags[row].Color)
	})
}

// printBands lists bands; when freq is positive the bands containing it are
// marked with '*'.
func printBands(w io.Writer, bands []bandplan.Band, freq int64) {
	if len(bands) == 0 {
		_, _ = faintColor.Fprintln(w, "no bands")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("", "BAND", "FROM", "TO", "MODULATION", "STEP")
	for _, b := range bands {
		mark := ""
		if freq > 0 && b.Contains(freq) {
			mark = "*"
		}
		tbl.AddRow(mark, b.Name, humanize.SIWithDigits(float64(b.Min), 3, "Hz"),
			humanize.SIWithDigits(float64(b.Max), 3, "Hz"), b.Modulation, formatBandwidth(int64(b.Step)))
	}
	colorLines(w, tbl.String(), func(row int) *color.Color {
		r, g, b := bands[row].Color.RGB()
		if r < 0 {
			return nil
		}
		return color.RGB(int(r), int(g), int(b))
	})
}

func printHint(w io.Writer, format string, args ...any) {
	_, _ = hintColor.Fprintf(w, format+"\n", args...)
}

func formatHz(hz int64) string {
	return humanize.Comma(hz)
}

func formatBandwidth(hz int64) string {
	if hz <= 0 {
		return ""
	}
	return humanize.Comma(hz)
}
