package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"rigbook/strutil"
)

// Color is an RGB color with alpha. Only RGB is persisted.
type Color struct {
	R, G, B, A uint8
}

// DefaultTagColor is used for new tags and for tags whose stored color does
// not parse.
var DefaultTagColor = Color{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff}

// ParseColor accepts "#rgb", "#rrggbb", "#aarrggbb" and the W3C color names
// known to tcell ("lightgray", "teal", ...).
func ParseColor(value string) (Color, bool) {
	s := strutil.NormalizeLower(value)
	if s == "" {
		return Color{}, false
	}
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}
	named, ok := tcell.ColorNames[s]
	if !ok {
		return Color{}, false
	}
	r, g, b := named.RGB()
	if r < 0 {
		return Color{}, false
	}
	return Color{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}, true
}

func parseHexColor(hex string) (Color, bool) {
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	switch len(hex) {
	case 3:
		r, g, b := uint8(v>>8&0xf), uint8(v>>4&0xf), uint8(v&0xf)
		return Color{R: r<<4 | r, G: g<<4 | g, B: b<<4 | b, A: 0xff}, true
	case 6:
		return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
	case 8:
		return Color{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
	default:
		return Color{}, false
	}
}

// String renders the color as lower-case "#rrggbb".
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// WithAlpha returns a copy of c with the given alpha.
func (c Color) WithAlpha(a uint8) Color {
	c.A = a
	return c
}
