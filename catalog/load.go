package catalog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"rigbook/csvrec"
)

const (
	tagFields          = 2
	bookmarkFields     = 6
	bookmarkFieldsBare = 5 // files written without the Info column
)

// Load replaces the catalog with the contents of the bookmark file. When the
// file cannot be read the catalog is left unchanged and the error returned.
// Malformed lines are logged and skipped.
//
// Load clears the dirty flag and fires BookmarksChanged and TagsChanged once
// each.
func (c *Catalog) Load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", c.path, err)
	}
	st, err := c.parse(data)
	if err != nil {
		return fmt.Errorf("catalog: parse %s: %w", c.path, err)
	}
	c.st = st
	c.dirty = false
	c.emit(BookmarksChanged, TagsChanged)
	return nil
}

// parse builds a fresh store. Tags are created without marking anything
// dirty because the file is the source of truth.
func (c *Catalog) parse(data []byte) (*store, error) {
	st := newStore(c.newID)
	tagID := func(name string) TagID {
		name = strings.TrimSpace(name)
		if name == "" {
			return st.untagged
		}
		if t := st.tagByName(name); t != nil {
			return t.ID
		}
		t := newTag(TagID(c.newID()), name)
		st.tags = append(st.tags, t)
		st.tagByID[t.ID] = t
		return t.ID
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	reader := bufio.NewReader(bytes.NewReader(data))

	lineNo := 0
	inTags := true
	for {
		raw, err := reader.ReadString('\n')
		if raw == "" && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		lineNo++
		line := strings.TrimSpace(raw)
		if inTags {
			if line == "" {
				inTags = false
				continue
			}
			if strings.HasPrefix(line, "#") {
				continue
			}
			fields, err := csvrec.Split(line, csvrec.RecordSeparator, tagFields)
			if err != nil {
				log.Printf("Catalog: %s:%d: ignoring tag line: %v", c.path, lineNo, err)
				continue
			}
			t := st.tagByID[tagID(fields[0])]
			if color, ok := ParseColor(fields[1]); ok {
				t.Color = color
			} else if fields[1] != "" {
				log.Printf("Catalog: %s:%d: invalid color %q for tag %q", c.path, lineNo, fields[1], t.Name)
			}
			continue
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b, err := parseBookmarkLine(line, tagID)
		if err != nil {
			log.Printf("Catalog: %s:%d: ignoring bookmark line: %v", c.path, lineNo, err)
			continue
		}
		b.ID = BookmarkID(c.newID())
		b.Tags = st.normalizeTags(b.Tags)
		st.refreshTagString(b)
		st.insertBookmark(b)
	}
	return st, nil
}

var errBadNumber = errors.New("invalid number")

func parseBookmarkLine(line string, tagID func(string) TagID) (*Bookmark, error) {
	fields, err := csvrec.Split(line, csvrec.RecordSeparator, bookmarkFields)
	if err != nil {
		fields, err = csvrec.Split(line, csvrec.RecordSeparator, bookmarkFieldsBare)
	}
	if err != nil {
		var countErr *csvrec.FieldCountError
		if errors.As(err, &countErr) {
			return nil, fmt.Errorf("expected %d or %d fields, found %d", bookmarkFieldsBare, bookmarkFields, countErr.Got)
		}
		return nil, err
	}
	freq, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("frequency %q: %w", fields[0], errBadNumber)
	}
	var bandwidth int64
	if fields[3] != "" {
		bandwidth, err = strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bandwidth %q: %w", fields[3], errBadNumber)
		}
	}
	b := &Bookmark{
		Frequency:  freq,
		Name:       fields[1],
		Modulation: fields[2],
		Bandwidth:  bandwidth,
	}
	if len(fields) == bookmarkFields {
		b.Info = fields[5]
	}
	for _, name := range csvrec.SplitList(fields[4]) {
		b.Tags = append(b.Tags, tagID(name))
	}
	return b, nil
}
