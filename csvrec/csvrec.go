// Package csvrec encodes and decodes the semicolon-delimited records used by
// bookmarks.csv. Fields that contain a separator are wrapped in double quotes;
// a comma sub-delimits list columns such as the tag list.
//
// The format has no escape character. A quote immediately followed by a
// separator inside a field would end the field early, so Quote defuses that
// pair by replacing the separator with '_'. That substitution is lossy and is
// kept for compatibility with files already in the field.
package csvrec

import (
	"fmt"
	"strings"

	"rigbook/strutil"
)

const (
	// QuoteChar wraps fields that contain separators.
	QuoteChar = '"'
	// RecordSeparator separates the columns of a line.
	RecordSeparator = ';'
	// ListSeparator separates the items of a list column.
	ListSeparator = ','
)

// ColumnSeparator is what writers put between columns. Readers only need the
// semicolon; the space keeps hand-edited files readable.
const ColumnSeparator = "; "

// FieldCountError reports a line whose field count differs from the expected
// arity. Readers log it and skip the line.
type FieldCountError struct {
	Want int
	Got  int
	Sep  byte
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("csvrec: expected %d field(s) separated by %q, found %d", e.Want, e.Sep, e.Got)
}

// Quote returns field in a form that Split reads back as one field. The
// result is left-justified to width runes; when quoted, the padding sits
// inside the quotes.
func Quote(field string, width int) string {
	defused := defuse(field)
	if !needsQuoting(defused) {
		return strutil.PadRight(defused, width)
	}
	return string(QuoteChar) + strutil.PadRight(defused, width-2) + string(QuoteChar)
}

// QuoteList renders a list column: every item is quoted for the list
// separator, items are joined with ',', and the joined column is wrapped once
// more when it would otherwise be split by the record separator. The outer
// wrap skips defusing because every item was already defused.
//
// Inside the outer wrap an item's opening quote must not touch a record
// separator, or the record reader would end the column there. Items that
// start with one get a blank after the quote; SplitList trims it away.
func QuoteList(items []string, width int) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = Quote(item, 0)
		if len(parts[i]) > 1 && parts[i][0] == QuoteChar && parts[i][1] == RecordSeparator {
			parts[i] = string(QuoteChar) + " " + parts[i][1:]
		}
	}
	joined := strings.Join(parts, string(rune(ListSeparator)))
	if !needsQuoting(joined) {
		return strutil.PadRight(joined, width)
	}
	return string(QuoteChar) + strutil.PadRight(joined, width-2) + string(QuoteChar)
}

// JoinRecord joins already quoted columns into one line.
func JoinRecord(columns ...string) string {
	return strings.Join(columns, ColumnSeparator)
}

// Split breaks line into trimmed fields at sep. A field whose first non-blank
// character is a quote runs to the first quote that is immediately followed
// by sep or that ends the line; without such a quote the field is read
// unquoted. A trailing separator produces a trailing empty field and an empty
// line produces no fields.
//
// When want is positive and the field count differs, Split returns nil and a
// *FieldCountError.
func Split(line string, sep byte, want int) ([]string, error) {
	fields := splitFields(line, sep)
	if want > 0 && len(fields) != want {
		return nil, &FieldCountError{Want: want, Got: len(fields), Sep: sep}
	}
	return fields, nil
}

// SplitList splits a list column produced by QuoteList. Empty items are
// dropped.
func SplitList(column string) []string {
	raw := splitFields(column, ListSeparator)
	items := raw[:0]
	for _, item := range raw {
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func splitFields(line string, sep byte) []string {
	rest := strings.TrimSpace(line)
	if rest == "" {
		return nil
	}
	var fields []string
	for {
		rest = strings.TrimLeft(rest, " \t")
		field, next, more := nextField(rest, sep)
		fields = append(fields, strings.TrimSpace(field))
		if !more {
			return fields
		}
		rest = next
	}
}

// nextField returns the first field of s, the text after its separator, and
// whether a separator was consumed.
func nextField(s string, sep byte) (string, string, bool) {
	if len(s) > 0 && s[0] == QuoteChar {
		if end := closingQuote(s[1:], sep); end >= 0 {
			field := s[1 : 1+end]
			after := strings.TrimLeft(s[2+end:], " \t")
			if after == "" {
				return field, "", false
			}
			return field, after[1:], true
		}
	}
	if i := strings.IndexByte(s, sep); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}

func closingQuote(s string, sep byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] != QuoteChar {
			continue
		}
		if i+1 < len(s) && s[i+1] == sep {
			return i
		}
		if strings.TrimSpace(s[i+1:]) == "" {
			return i
		}
	}
	return -1
}

func needsQuoting(field string) bool {
	return strings.IndexByte(field, RecordSeparator) >= 0 ||
		strings.IndexByte(field, ListSeparator) >= 0 ||
		(len(field) > 0 && field[0] == QuoteChar)
}

// defuse replaces the separator in every quote+separator pair with '_'.
func defuse(field string) string {
	if strings.IndexByte(field, QuoteChar) < 0 {
		return field
	}
	b := []byte(field)
	for i := 0; i+1 < len(b); i++ {
		if b[i] == QuoteChar && (b[i+1] == RecordSeparator || b[i+1] == ListSeparator) {
			b[i+1] = '_'
		}
	}
	return string(b)
}
