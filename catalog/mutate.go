package catalog

import (
	"strings"

	"rigbook/modulation"
)

// AddBookmark stores a new bookmark and returns its ID. Unknown tag names
// create tags. A recognised modulation is stored in canonical form; anything
// else is kept verbatim.
func (c *Catalog) AddBookmark(nb NewBookmark) BookmarkID {
	tagsCreated := false
	ids := make([]TagID, 0, len(nb.Tags))
	for _, name := range nb.Tags {
		id, created := c.findOrAddTag(name, true)
		tagsCreated = tagsCreated || created
		ids = append(ids, id)
	}
	mod := nb.Modulation
	if canonical := modulation.Canonical(mod); canonical != "" {
		mod = canonical
	}
	b := &Bookmark{
		ID:         BookmarkID(c.newID()),
		Frequency:  nb.Frequency,
		Name:       strings.TrimSpace(nb.Name),
		Modulation: mod,
		Bandwidth:  nb.Bandwidth,
		Info:       strings.TrimSpace(nb.Info),
		Tags:       c.st.normalizeTags(ids),
	}
	c.st.refreshTagString(b)
	c.st.insertBookmark(b)
	c.dirty = true
	if tagsCreated {
		c.emit(TagsChanged)
	}
	c.emit(BookmarksChanged)
	return b.ID
}

// RemoveBookmark deletes the bookmark with id. It panics when id is unknown.
func (c *Catalog) RemoveBookmark(id BookmarkID) {
	c.mustBookmark(id)
	c.st.detachBookmark(id)
	c.dirty = true
	c.emit(BookmarksChanged)
}

// FindOrAddTag returns the ID of the tag called name, creating it when
// needed. An empty name resolves to Untagged. Creating a tag marks the
// catalog dirty only when markDirty is set.
func (c *Catalog) FindOrAddTag(name string, markDirty bool) TagID {
	id, created := c.findOrAddTag(name, markDirty)
	if created {
		c.emit(TagsChanged)
	}
	return id
}

func (c *Catalog) findOrAddTag(name string, markDirty bool) (TagID, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return c.st.untagged, false
	}
	if t := c.st.tagByName(name); t != nil {
		return t.ID, false
	}
	t := newTag(TagID(c.newID()), name)
	c.st.tags = append(c.st.tags, t)
	c.st.tagByID[t.ID] = t
	if markDirty {
		c.dirty = true
	}
	return t.ID, true
}

// AddTag creates a tag on explicit request. Unlike FindOrAddTag it refuses
// names that already exist.
func (c *Catalog) AddTag(name string) (TagID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyTagName
	}
	if c.st.tagByName(name) != nil {
		return "", ErrTagExists
	}
	return c.FindOrAddTag(name, true), nil
}

// RemoveTag deletes a tag and drops every reference to it. Bookmarks left
// without tags fall back to Untagged. Untagged itself cannot be removed.
func (c *Catalog) RemoveTag(id TagID) bool {
	c.mustTag(id)
	if id == c.st.untagged {
		return false
	}
	for _, b := range c.st.bookmarks {
		if !b.HasTag(id) {
			continue
		}
		kept := make([]TagID, 0, len(b.Tags))
		for _, tid := range b.Tags {
			if tid != id {
				kept = append(kept, tid)
			}
		}
		b.Tags = c.st.normalizeTags(kept)
	}
	for i, t := range c.st.tags {
		if t.ID == id {
			c.st.tags = append(c.st.tags[:i], c.st.tags[i+1:]...)
			break
		}
	}
	delete(c.st.tagByID, id)
	for _, b := range c.st.bookmarks {
		c.st.refreshTagString(b)
	}
	c.dirty = true
	c.emit(BookmarksChanged, TagsChanged)
	return true
}

// RenameTag changes a tag's name. The ID, and so every reference, is kept.
func (c *Catalog) RenameTag(id TagID, name string) error {
	t := c.mustTag(id)
	if id == c.st.untagged {
		return ErrReservedTag
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyTagName
	}
	if name == t.Name {
		return nil
	}
	if name == UntaggedName || c.st.tagByName(name) != nil {
		return ErrTagExists
	}
	t.Name = name
	t.Modified = true
	for _, b := range c.st.bookmarks {
		if b.HasTag(id) {
			c.st.refreshTagString(b)
		}
	}
	c.emit(TagsChanged, BookmarksChanged)
	return nil
}

// SetTagColor parses value with ParseColor. An invalid color leaves the tag
// untouched and returns false.
func (c *Catalog) SetTagColor(id TagID, value string) bool {
	t := c.mustTag(id)
	color, ok := ParseColor(value)
	if !ok {
		return false
	}
	if t.Color == color {
		return true
	}
	t.Color = color
	t.Modified = true
	c.emit(TagsChanged, BookmarksChanged)
	return true
}

// SetTagChecked sets the picker selection state of one tag.
func (c *Catalog) SetTagChecked(id TagID, checked bool) {
	t := c.mustTag(id)
	if t.Checked == checked {
		return
	}
	t.Checked = checked
	c.emit(TagsChanged)
}

// SetAllTagsChecked sets the picker selection state of every tag.
func (c *Catalog) SetAllTagsChecked(checked bool) {
	for _, t := range c.st.tags {
		t.Checked = checked
	}
	c.emit(TagsChanged)
}

// CheckOnly checks exactly the tags in ids and unchecks the rest.
func (c *Catalog) CheckOnly(ids []TagID) {
	want := make(map[TagID]struct{}, len(ids))
	for _, id := range ids {
		c.mustTag(id)
		want[id] = struct{}{}
	}
	for _, t := range c.st.tags {
		_, t.Checked = want[t.ID]
	}
	c.emit(TagsChanged)
}

// SetTagShow sets whether bookmarks carrying the tag are listed.
func (c *Catalog) SetTagShow(id TagID, show bool) {
	t := c.mustTag(id)
	if t.Show == show {
		return
	}
	t.Show = show
	c.emit(TagFilterChanged)
}

// SetAllTagsShow shows or hides every tag.
func (c *Catalog) SetAllTagsShow(show bool) {
	for _, t := range c.st.tags {
		t.Show = show
	}
	c.emit(TagFilterChanged)
}

// SetBookmarkFrequency moves a bookmark; the list stays frequency ordered.
func (c *Catalog) SetBookmarkFrequency(id BookmarkID, freq int64) {
	b := c.mustBookmark(id)
	if b.Frequency == freq {
		return
	}
	c.st.detachBookmark(id)
	b.Frequency = freq
	b.Modified = true
	c.st.insertBookmark(b)
	c.emit(BookmarksChanged)
}

// SetBookmarkName renames a bookmark.
func (c *Catalog) SetBookmarkName(id BookmarkID, name string) {
	b := c.mustBookmark(id)
	name = strings.TrimSpace(name)
	if b.Name == name {
		return
	}
	b.Name = name
	b.Modified = true
	c.emit(BookmarksChanged)
}

// SetBookmarkModulation stores the canonical name of label. Unsupported
// modes are ignored and reported with false.
func (c *Catalog) SetBookmarkModulation(id BookmarkID, label string) bool {
	b := c.mustBookmark(id)
	canonical := modulation.Canonical(label)
	if canonical == "" {
		return false
	}
	if b.Modulation != canonical {
		b.Modulation = canonical
		b.Modified = true
		c.emit(BookmarksChanged)
	}
	return true
}

// SetBookmarkBandwidth sets the passband in Hz; 0 means unspecified.
func (c *Catalog) SetBookmarkBandwidth(id BookmarkID, hz int64) {
	b := c.mustBookmark(id)
	if hz < 0 {
		hz = 0
	}
	if b.Bandwidth == hz {
		return
	}
	b.Bandwidth = hz
	b.Modified = true
	c.emit(BookmarksChanged)
}

// SetBookmarkInfo replaces the free-text note.
func (c *Catalog) SetBookmarkInfo(id BookmarkID, info string) {
	b := c.mustBookmark(id)
	info = strings.TrimSpace(info)
	if b.Info == info {
		return
	}
	b.Info = info
	b.Modified = true
	c.emit(BookmarksChanged)
}

// SetBookmarkTags replaces the tags of a bookmark by name. Unknown names
// create tags.
func (c *Catalog) SetBookmarkTags(id BookmarkID, names []string) {
	c.mustBookmark(id)
	tagsCreated := false
	ids := make([]TagID, 0, len(names))
	for _, name := range names {
		tid, created := c.findOrAddTag(name, true)
		tagsCreated = tagsCreated || created
		ids = append(ids, tid)
	}
	if tagsCreated {
		c.emit(TagsChanged)
	}
	c.SetBookmarkTagIDs(id, ids)
}

// SetBookmarkTagIDs replaces the tags of a bookmark. An empty list leaves
// the bookmark under Untagged.
func (c *Catalog) SetBookmarkTagIDs(id BookmarkID, ids []TagID) {
	b := c.mustBookmark(id)
	for _, tid := range ids {
		c.mustTag(tid)
	}
	b.Tags = c.st.normalizeTags(ids)
	b.Modified = true
	c.st.refreshTagString(b)
	c.emit(BookmarksChanged)
}
