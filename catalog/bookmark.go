package catalog

// BookmarkID identifies a bookmark for the lifetime of a loaded catalog.
type BookmarkID string

// Bookmark is a stored receiver frequency. Values returned by the catalog
// are copies; edits go through the Catalog setters.
type Bookmark struct {
	ID         BookmarkID
	Frequency  int64 // Hz
	Name       string
	Modulation string
	Bandwidth  int64 // Hz, 0 when unspecified
	Info       string
	Modified   bool
	Tags       []TagID // never empty

	tagString string
}

// TagString is the comma-joined, case-insensitively sorted list of the
// bookmark's tag names without "Untagged".
func (b Bookmark) TagString() string {
	return b.tagString
}

// HasTag reports whether b references id.
func (b Bookmark) HasTag(id TagID) bool {
	for _, t := range b.Tags {
		if t == id {
			return true
		}
	}
	return false
}

// NewBookmark carries the fields for AddBookmark. Tags are names; unknown
// names create tags.
type NewBookmark struct {
	Frequency  int64
	Name       string
	Modulation string
	Bandwidth  int64
	Info       string
	Tags       []string
}

func (b *Bookmark) clone() Bookmark {
	out := *b
	out.Tags = append([]TagID(nil), b.Tags...)
	return out
}
