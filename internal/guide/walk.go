package guide

import (
	"fmt"
	"strings"
)

// Images returns every asset referenced by the document in document order,
// without duplicates. Both image fields and IMAGE: content lines count.
func (d *Document) Images() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}
	addLines := func(lines []string) {
		for _, l := range lines {
			if strings.HasPrefix(l, ImageTag) {
				add(strings.TrimPrefix(l, ImageTag))
			}
		}
	}

	for _, e := range d.Entries {
		addLines(e.Content)
		for _, s := range e.SubItems {
			add(s.Image)
			addLines(s.Content)
			add(s.BottomImage)
			add(s.BottomImage2)
			for _, g := range s.GrandChildItems {
				add(g.Image)
				add(g.Image2)
				addLines(g.Content)
				add(g.BottomImage)
				add(g.BottomImage2)
			}
		}
	}
	return out
}

// Problem is a dataset defect found by Validate.
type Problem struct {
	Path    string
	Message string
}

func (p Problem) String() string { return p.Path + ": " + p.Message }

// Validate reports duplicate ids within a containment level and missing
// titles. Loading never calls it; malformed datasets are the author's
// responsibility and are reported only on request.
func (d *Document) Validate() []Problem {
	var problems []Problem
	top := make(map[ID]bool)
	for i, e := range d.Entries {
		path := fmt.Sprintf("entries[%d]", i)
		if top[e.ID] {
			problems = append(problems, Problem{path, fmt.Sprintf("duplicate entry id %q", e.ID)})
		}
		top[e.ID] = true
		if e.Title == "" {
			problems = append(problems, Problem{path, "missing title"})
		}
		if e.IsParent && len(e.SubItems) == 0 {
			problems = append(problems, Problem{path, "parent entry without subItems"})
		}

		subs := make(map[ID]bool)
		for j, s := range e.SubItems {
			spath := fmt.Sprintf("%s.subItems[%d]", path, j)
			if subs[s.ID] {
				problems = append(problems, Problem{spath, fmt.Sprintf("duplicate sub entry id %q", s.ID)})
			}
			subs[s.ID] = true
			if s.Title == "" {
				problems = append(problems, Problem{spath, "missing title"})
			}

			grands := make(map[ID]bool)
			for k, g := range s.GrandChildItems {
				gpath := fmt.Sprintf("%s.grandChildItems[%d]", spath, k)
				if grands[g.ID] {
					problems = append(problems, Problem{gpath, fmt.Sprintf("duplicate grandchild id %q", g.ID)})
				}
				grands[g.ID] = true
				if g.Title == "" {
					problems = append(problems, Problem{gpath, "missing title"})
				}
			}
		}
	}
	return problems
}
