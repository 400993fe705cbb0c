// Package search filters guideline entries by a free-text query and splits
// visible text into highlighted parts.
package search

import "github.com/ziadkadry99/emsguide/internal/guide"

// Filter returns every entry matching query, in source order. An empty query
// returns all entries.
func Filter(entries []guide.Entry, query string) []guide.Entry {
	if query == "" {
		return entries
	}
	out := make([]guide.Entry, 0, len(entries))
	for _, e := range entries {
		if MatchEntry(e, query) {
			out = append(out, e)
		}
	}
	return out
}

// MatchEntry reports whether query occurs anywhere in the entry: title,
// code, keywords, raw content lines, or any descendant.
func MatchEntry(e guide.Entry, query string) bool {
	if Contains(e.Title, query) || Contains(e.Code, query) {
		return true
	}
	if anyContains(e.Keywords, query) || anyContains(e.Content, query) {
		return true
	}
	for _, s := range e.SubItems {
		if MatchSub(s, query) {
			return true
		}
	}
	return false
}

// MatchSub reports whether query occurs in the sub entry's title or content
// or in any of its grandchildren.
func MatchSub(s guide.SubEntry, query string) bool {
	if Contains(s.Title, query) || anyContains(s.Content, query) {
		return true
	}
	for _, g := range s.GrandChildItems {
		if MatchGrandChild(g, query) {
			return true
		}
	}
	return false
}

// MatchGrandChild reports whether query occurs in the title, code or content.
func MatchGrandChild(g guide.GrandChildEntry, query string) bool {
	return Contains(g.Title, query) || Contains(g.Code, query) || anyContains(g.Content, query)
}

func anyContains(lines []string, query string) bool {
	for _, l := range lines {
		if Contains(l, query) {
			return true
		}
	}
	return false
}
