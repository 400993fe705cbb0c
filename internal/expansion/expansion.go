// Package expansion tracks which accordion panels are open at each level
// of the guideline tree.
package expansion

import (
	"sort"

	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/search"
)

// Scope identifies one accordion group. The top scope holds entries; a sub
// scope holds the sub entries of one parent; a grandchild scope holds the
// grandchildren of one sub entry.
type Scope string

// Top is the scope of top-level entries.
const Top Scope = "top"

// SubScope returns the scope holding the sub entries of entry.
func SubScope(entry guide.ID) Scope {
	return Scope("sub:" + string(entry))
}

// GrandScope returns the scope holding the grandchildren of sub within
// entry.
func GrandScope(entry, sub guide.ID) Scope {
	return Scope("grand:" + string(entry) + "/" + string(sub))
}

// Options adjusts state transitions.
type Options struct {
	// CollapseTopOnClear also collapses the top scope when the query is
	// cleared.
	CollapseTopOnClear bool
}

// State is an immutable snapshot of expanded ids per scope. The zero value
// has everything collapsed.
type State struct {
	scopes map[Scope]map[guide.ID]bool
}

// Expanded reports whether id is open within scope.
func (s State) Expanded(scope Scope, id guide.ID) bool {
	return s.scopes[scope][id]
}

// IDs returns the open ids of scope in sorted order.
func (s State) IDs(scope Scope) []guide.ID {
	var out []guide.ID
	for id := range s.scopes[scope] {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Scopes returns the open ids of every non-empty scope.
func (s State) Scopes() map[Scope][]guide.ID {
	out := make(map[Scope][]guide.ID, len(s.scopes))
	for scope, ids := range s.scopes {
		if len(ids) > 0 {
			out[scope] = s.IDs(scope)
		}
	}
	return out
}

// Selected returns the user-selected top entry, if any.
func (s State) Selected() (guide.ID, bool) {
	for id := range s.scopes[Top] {
		return id, true
	}
	return "", false
}

// Toggle collapses scope if id is open in it, otherwise opens exactly id.
func (s State) Toggle(scope Scope, id guide.ID) State {
	next := s.clone()
	if s.scopes[scope][id] {
		delete(next.scopes, scope)
		return next
	}
	next.scopes[scope] = map[guide.ID]bool{id: true}
	return next
}

// Select opens id in the top scope, replacing any other selection. An
// empty id collapses the top scope.
func (s State) Select(id guide.ID) State {
	next := s.clone()
	if id == "" {
		delete(next.scopes, Top)
		return next
	}
	next.scopes[Top] = map[guide.ID]bool{id: true}
	return next
}

// ApplyQuery recomputes the sub and grandchild scopes for a new query. A
// non-empty query opens every matching sub entry and grandchild; an empty
// query collapses them. The top scope is carried over unless opts says
// otherwise.
func (s State) ApplyQuery(doc *guide.Document, query string, opts Options) State {
	next := State{scopes: make(map[Scope]map[guide.ID]bool)}
	if top, ok := s.scopes[Top]; ok && !(query == "" && opts.CollapseTopOnClear) {
		next.scopes[Top] = copySet(top)
	}
	if query == "" || doc == nil {
		return next
	}

	for _, e := range doc.Entries {
		subs := make(map[guide.ID]bool)
		for _, sub := range e.SubItems {
			if search.MatchSub(sub, query) {
				subs[sub.ID] = true
			}
			grands := make(map[guide.ID]bool)
			for _, g := range sub.GrandChildItems {
				if search.MatchGrandChild(g, query) {
					grands[g.ID] = true
				}
			}
			if len(grands) > 0 {
				next.scopes[GrandScope(e.ID, sub.ID)] = grands
			}
		}
		if len(subs) > 0 {
			next.scopes[SubScope(e.ID)] = subs
		}
	}
	return next
}

// TopExpanded reports whether a top-level entry renders open. While a
// query is active every listed entry is open.
func (s State) TopExpanded(id guide.ID, query string) bool {
	return query != "" || s.Expanded(Top, id)
}

func (s State) clone() State {
	next := State{scopes: make(map[Scope]map[guide.ID]bool, len(s.scopes))}
	for k, v := range s.scopes {
		next.scopes[k] = copySet(v)
	}
	return next
}

func copySet(m map[guide.ID]bool) map[guide.ID]bool {
	out := make(map[guide.ID]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
