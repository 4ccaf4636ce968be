package ui

import (
	"context"
	"strings"
	"sync"
	"time"

	"rigbook/catalog"
)

const searchDebounce = 250 * time.Millisecond

// SearchFilter narrows the bookmark table to a typed query. A new query takes
// effect searchDebounce after the last keystroke so typing does not rebuild
// the table on every key.
//
// A query is whitespace-separated terms that must all match. A bare term is a
// substring of the name, info, modulation or tag list; "name:", "info:",
// "mod:" and "tag:" restrict a term to one field. Matching ignores case.
type SearchFilter struct {
	ctx context.Context

	mu       sync.Mutex
	gen      uint64 // bumped by every SetQuery, Clear and Stop
	typed    string
	active   string
	terms    []searchTerm
	onChange func()
	stopped  bool
}

type searchTerm struct {
	field string // "" for any field
	text  string
}

var searchFields = map[string]func(catalog.Bookmark) string{
	"name": func(b catalog.Bookmark) string { return b.Name },
	"info": func(b catalog.Bookmark) string { return b.Info },
	"mod":  func(b catalog.Bookmark) string { return b.Modulation },
	"tag":  func(b catalog.Bookmark) string { return b.TagString() },
}

// NewSearchFilter returns an empty filter. Pending queries are dropped once
// ctx is done.
func NewSearchFilter(ctx context.Context) *SearchFilter {
	return &SearchFilter{ctx: ctx}
}

// SetQuery schedules query. onChange runs on a timer goroutine after the
// query became active; callers hand it to the UI loop themselves.
func (s *SearchFilter) SetQuery(query string, onChange func()) {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	s.typed = strings.ToLower(strings.TrimSpace(query))
	s.onChange = onChange
	s.mu.Unlock()

	time.AfterFunc(searchDebounce, func() { s.fire(gen) })
}

func (s *SearchFilter) fire(gen uint64) {
	if s.ctx != nil && s.ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	if gen != s.gen || s.stopped {
		s.mu.Unlock()
		return
	}
	s.activateLocked(s.typed)
	cb := s.onChange
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (s *SearchFilter) activateLocked(query string) {
	s.active = query
	s.terms = parseSearch(query)
}

// Clear drops the query immediately and cancels any pending one.
func (s *SearchFilter) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.gen++
	s.typed = ""
	s.activateLocked("")
	s.mu.Unlock()
}

// Stop cancels a pending query. Later SetQuery calls are ignored.
func (s *SearchFilter) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.gen++
	s.stopped = true
	s.mu.Unlock()
}

// ActiveQuery returns the normalized query the table is filtered by.
func (s *SearchFilter) ActiveQuery() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Matches reports whether b passes the active query.
func (s *SearchFilter) Matches(b catalog.Bookmark) bool {
	if s == nil {
		return true
	}
	s.mu.Lock()
	terms := s.terms
	s.mu.Unlock()
	for _, term := range terms {
		if !term.matches(b) {
			return false
		}
	}
	return true
}

func (t searchTerm) matches(b catalog.Bookmark) bool {
	if get, ok := searchFields[t.field]; ok {
		return strings.Contains(strings.ToLower(get(b)), t.text)
	}
	for _, get := range searchFields {
		if strings.Contains(strings.ToLower(get(b)), t.text) {
			return true
		}
	}
	return false
}

// parseSearch splits a lower-cased query into terms. An unknown prefix such
// as "http:" is kept as part of a bare term.
func parseSearch(query string) []searchTerm {
	var terms []searchTerm
	for _, word := range strings.Fields(query) {
		if field, text, ok := strings.Cut(word, ":"); ok {
			if _, known := searchFields[field]; known {
				if text != "" {
					terms = append(terms, searchTerm{field: field, text: text})
				}
				continue
			}
		}
		terms = append(terms, searchTerm{text: word})
	}
	return terms
}
