// Package catalog owns the in-memory bookmark and tag store, its persistence
// to bookmarks.csv and the change notifications views subscribe to.
//
// A Catalog is not safe for concurrent use. Every call, including Save from
// the Autosaver, must run on one goroutine (the UI event loop or the CLI's
// main goroutine).
package catalog

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// FileName is the bookmark file inside the storage directory.
const FileName = "bookmarks.csv"

// backupSuffix marks the copy of the previous file kept while a save runs.
const backupSuffix = ".bck"

type store struct {
	tags      []*Tag      // insertion/load order
	bookmarks []*Bookmark // frequency order
	tagByID   map[TagID]*Tag
	bmByID    map[BookmarkID]*Bookmark
	untagged  TagID
}

func newStore(newID func() string) *store {
	st := &store{
		tagByID: make(map[TagID]*Tag),
		bmByID:  make(map[BookmarkID]*Bookmark),
	}
	untagged := newTag(TagID(newID()), UntaggedName)
	st.tags = append(st.tags, untagged)
	st.tagByID[untagged.ID] = untagged
	st.untagged = untagged.ID
	return st
}

func (st *store) tagByName(name string) *Tag {
	for _, t := range st.tags {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// insertBookmark places b after every bookmark with the same or a lower
// frequency so equal frequencies keep their insertion order.
func (st *store) insertBookmark(b *Bookmark) {
	idx := sort.Search(len(st.bookmarks), func(i int) bool {
		return st.bookmarks[i].Frequency > b.Frequency
	})
	st.bookmarks = append(st.bookmarks, nil)
	copy(st.bookmarks[idx+1:], st.bookmarks[idx:])
	st.bookmarks[idx] = b
	st.bmByID[b.ID] = b
}

func (st *store) detachBookmark(id BookmarkID) *Bookmark {
	b, ok := st.bmByID[id]
	if !ok {
		return nil
	}
	for i, candidate := range st.bookmarks {
		if candidate == b {
			st.bookmarks = append(st.bookmarks[:i], st.bookmarks[i+1:]...)
			break
		}
	}
	delete(st.bmByID, id)
	return b
}

// normalizeTags removes duplicates and enforces the Untagged rule: Untagged
// is present only when it is the sole tag.
func (st *store) normalizeTags(ids []TagID) []TagID {
	seen := make(map[TagID]struct{}, len(ids))
	out := make([]TagID, 0, len(ids))
	for _, id := range ids {
		if id == st.untagged {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		out = append(out, st.untagged)
	}
	return out
}

// sortedTagNames returns the names of b's tags without Untagged, sorted
// case-insensitively.
func (st *store) sortedTagNames(b *Bookmark) []string {
	names := make([]string, 0, len(b.Tags))
	for _, id := range b.Tags {
		if id == st.untagged {
			continue
		}
		if t, ok := st.tagByID[id]; ok {
			names = append(names, t.Name)
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
	return names
}

func (st *store) refreshTagString(b *Bookmark) {
	b.tagString = strings.Join(st.sortedTagNames(b), ", ")
}

// Catalog holds the tags and bookmarks of one storage directory.
type Catalog struct {
	path  string
	st    *store
	dirty bool

	subs    []subscription
	nextSub int

	newID func() string
}

// New returns an empty catalog that loads from and saves to dir/bookmarks.csv.
func New(dir string) *Catalog {
	c := &Catalog{newID: uuid.NewString}
	c.SetDir(dir)
	c.st = newStore(c.newID)
	return c
}

// SetDir points the catalog at another storage directory. Call it before the
// first Load.
func (c *Catalog) SetDir(dir string) {
	c.path = filepath.Join(dir, FileName)
}

// Path returns the bookmark file location.
func (c *Catalog) Path() string {
	return c.path
}

// Dirty reports whether the catalog holds changes that are not on disk yet.
// Entity edits only show up here after the next Save collects them.
func (c *Catalog) Dirty() bool {
	return c.dirty
}

// Len returns the number of bookmarks.
func (c *Catalog) Len() int {
	return len(c.st.bookmarks)
}

// UntaggedID returns the ID of the reserved tag.
func (c *Catalog) UntaggedID() TagID {
	return c.st.untagged
}

// Tags returns copies of all tags in insertion order. Untagged comes first.
func (c *Catalog) Tags() []Tag {
	out := make([]Tag, len(c.st.tags))
	for i, t := range c.st.tags {
		out[i] = *t
	}
	return out
}

// Bookmarks returns copies of all bookmarks in frequency order.
func (c *Catalog) Bookmarks() []Bookmark {
	return cloneBookmarks(c.st.bookmarks)
}

// Tag returns the tag with id. It panics when id is unknown.
func (c *Catalog) Tag(id TagID) Tag {
	return *c.mustTag(id)
}

// TagByName looks a tag up by its exact name.
func (c *Catalog) TagByName(name string) (Tag, bool) {
	t := c.st.tagByName(strings.TrimSpace(name))
	if t == nil {
		return Tag{}, false
	}
	return *t, true
}

// Bookmark returns the bookmark with id. It panics when id is unknown.
func (c *Catalog) Bookmark(id BookmarkID) Bookmark {
	return c.mustBookmark(id).clone()
}

// TagString returns the display tag list of a bookmark.
func (c *Catalog) TagString(id BookmarkID) string {
	return c.mustBookmark(id).tagString
}

// BookmarksInRange returns the bookmarks with low <= Frequency <= high in
// frequency order.
func (c *Catalog) BookmarksInRange(low, high int64) []Bookmark {
	if low > high {
		return nil
	}
	bms := c.st.bookmarks
	lo := sort.Search(len(bms), func(i int) bool { return bms[i].Frequency >= low })
	hi := sort.Search(len(bms), func(i int) bool { return bms[i].Frequency > high })
	return cloneBookmarks(bms[lo:hi])
}

// BookmarkNear returns the first bookmark whose passband covers freq, allowing
// one hertz of slack.
func (c *Catalog) BookmarkNear(freq int64) (Bookmark, bool) {
	for _, b := range c.st.bookmarks {
		delta := b.Frequency - freq
		if delta < 0 {
			delta = -delta
		}
		if delta <= b.Bandwidth/2+1 {
			return b.clone(), true
		}
	}
	return Bookmark{}, false
}

// BookmarkColor is the color of the first tag of the bookmark that is shown.
// ok is false when no tag is shown.
func (c *Catalog) BookmarkColor(id BookmarkID) (color Color, ok bool) {
	b := c.mustBookmark(id)
	for _, tid := range b.Tags {
		if t, found := c.st.tagByID[tid]; found && t.Show {
			return t.Color, true
		}
	}
	return Color{}, false
}

// BookmarkVisible reports whether any tag of the bookmark is shown.
func (c *Catalog) BookmarkVisible(id BookmarkID) bool {
	_, ok := c.BookmarkColor(id)
	return ok
}

// CheckedTags returns the IDs of checked tags in catalog order.
func (c *Catalog) CheckedTags() []TagID {
	var ids []TagID
	for _, t := range c.st.tags {
		if t.Checked {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (c *Catalog) mustTag(id TagID) *Tag {
	t, ok := c.st.tagByID[id]
	if !ok {
		panic(fmt.Sprintf("catalog: unknown tag id %q", id))
	}
	return t
}

func (c *Catalog) mustBookmark(id BookmarkID) *Bookmark {
	b, ok := c.st.bmByID[id]
	if !ok {
		panic(fmt.Sprintf("catalog: unknown bookmark id %q", id))
	}
	return b
}

func cloneBookmarks(src []*Bookmark) []Bookmark {
	out := make([]Bookmark, len(src))
	for i, b := range src {
		out[i] = b.clone()
	}
	return out
}
