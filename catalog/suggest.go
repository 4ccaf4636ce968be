package catalog

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// SuggestTags returns up to max existing tag names that are close to name,
// nearest first. Distances are computed on lower-cased names and capped at a
// third of the name length (minimum 2).
func (c *Catalog) SuggestTags(name string, max int) []string {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" || max <= 0 {
		return nil
	}
	limit := len([]rune(needle)) / 3
	if limit < 2 {
		limit = 2
	}
	type candidate struct {
		name string
		dist int
	}
	var found []candidate
	for _, t := range c.st.tags {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(t.Name))
		if d <= limit {
			found = append(found, candidate{name: t.Name, dist: d})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}
		return found[i].name < found[j].name
	})
	if len(found) > max {
		found = found[:max]
	}
	out := make([]string, len(found))
	for i, cand := range found {
		out[i] = cand.name
	}
	return out
}
