// Package strutil holds the small string normalizers shared by the catalog,
// the band plan reader, and the mode table.
package strutil

import (
	"strings"
	"unicode/utf8"
)

// NormalizeUpper trims surrounding whitespace and converts to upper case.
// Use for mode tokens and other keys where case is not significant.
func NormalizeUpper(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// NormalizeLower trims surrounding whitespace and converts to lower case.
func NormalizeLower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// PadRight left-justifies value to width runes. Longer values are returned
// unchanged.
func PadRight(value string, width int) string {
	n := utf8.RuneCountInString(value)
	if n >= width {
		return value
	}
	return value + strings.Repeat(" ", width-n)
}

// PadLeft right-justifies value to width runes.
func PadLeft(value string, width int) string {
	n := utf8.RuneCountInString(value)
	if n >= width {
		return value
	}
	return strings.Repeat(" ", width-n) + value
}
