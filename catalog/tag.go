package catalog

import "errors"

// UntaggedName is the reserved tag every bookmark falls back to.
const UntaggedName = "Untagged"

var (
	ErrReservedTag  = errors.New("catalog: the Untagged tag cannot be changed")
	ErrEmptyTagName = errors.New("catalog: tag name is empty")
	ErrTagExists    = errors.New("catalog: tag name already exists")
)

// TagID identifies a tag for the lifetime of a loaded catalog. Renames keep
// the ID.
type TagID string

// Tag is a named, colored label that bookmarks reference by ID.
type Tag struct {
	ID       TagID
	Name     string
	Color    Color
	Checked  bool // selection state while a tag picker is open
	Show     bool // bookmarks carrying this tag are listed
	Modified bool
}

// IsUntagged reports whether t is the reserved tag.
func (t Tag) IsUntagged() bool {
	return t.Name == UntaggedName
}

func newTag(id TagID, name string) *Tag {
	return &Tag{
		ID:    id,
		Name:  name,
		Color: DefaultTagColor,
		Show:  true,
	}
}
