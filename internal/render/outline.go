package render

import "github.com/ziadkadry99/emsguide/internal/guide"

// OutlineNode is one node of the table of contents.
type OutlineNode struct {
	ID       guide.ID       `json:"id"`
	Path     string         `json:"path"` // e.g. "5/51/511"
	Label    string         `json:"label,omitempty"`
	Title    string         `json:"title"`
	Children []*OutlineNode `json:"children,omitempty"`
}

// Outline returns the full entry tree of doc, ignoring any query or
// expansion state.
func Outline(doc *guide.Document) []*OutlineNode {
	var out []*OutlineNode
	for _, e := range doc.Entries {
		n := &OutlineNode{ID: e.ID, Path: e.ID.String(), Label: Tag(e), Title: e.Title}
		for _, s := range e.SubItems {
			sn := &OutlineNode{ID: s.ID, Path: n.Path + "/" + s.ID.String(), Title: s.Title}
			for _, g := range s.GrandChildItems {
				sn.Children = append(sn.Children, &OutlineNode{
					ID:    g.ID,
					Path:  sn.Path + "/" + g.ID.String(),
					Label: g.Code,
					Title: g.Title,
				})
			}
			n.Children = append(n.Children, sn)
		}
		out = append(out, n)
	}
	return out
}
