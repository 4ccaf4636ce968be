package catalog

// Event names the part of the catalog a mutation touched.
type Event int

const (
	// BookmarksChanged fires after bookmarks were added, removed or edited,
	// and after anything that changes how bookmark rows render.
	BookmarksChanged Event = iota + 1
	// TagsChanged fires after the tag list or a tag's name, color or
	// checked state changed.
	TagsChanged
	// TagFilterChanged fires after a tag's Show flag changed. Views refresh
	// visible rows without rebuilding.
	TagFilterChanged
)

func (e Event) String() string {
	switch e {
	case BookmarksChanged:
		return "bookmarks-changed"
	case TagsChanged:
		return "tags-changed"
	case TagFilterChanged:
		return "tag-filter-changed"
	default:
		return "unknown"
	}
}

// Listener receives catalog events. It runs synchronously on the goroutine
// that performed the mutation and may call back into the catalog.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers fn and returns a function that removes it.
func (c *Catalog) Subscribe(fn Listener) (cancel func()) {
	c.nextSub++
	id := c.nextSub
	c.subs = append(c.subs, subscription{id: id, fn: fn})
	return func() {
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

func (c *Catalog) emit(events ...Event) {
	if len(c.subs) == 0 {
		return
	}
	subs := append([]subscription(nil), c.subs...)
	for _, ev := range events {
		for _, s := range subs {
			s.fn(ev)
		}
	}
}
