package site

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/ziadkadry99/emsguide/internal/render"
)

// OutlineHTML renders the table of contents as nested <ul><li> HTML for the
// sidebar. The entry whose id is active is marked and its children listed.
func OutlineHTML(nodes []*render.OutlineNode, active string, href func(params) string) string {
	var b strings.Builder
	b.WriteString("<ul>\n")
	for _, n := range nodes {
		activeClass := ""
		if n.ID.String() == active {
			activeClass = ` class="active"`
		}
		fmt.Fprintf(&b, `<li%s><a href="%s">%s</a>`, activeClass,
			template.HTMLEscapeString(href(pathParams(n.Path))), outlineLabel(n))
		if n.ID.String() == active && len(n.Children) > 0 {
			renderChildren(&b, n.Children, href)
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>\n")
	return b.String()
}

func renderChildren(b *strings.Builder, nodes []*render.OutlineNode, href func(params) string) {
	b.WriteString("<ul>\n")
	for _, n := range nodes {
		fmt.Fprintf(b, `<li><a href="%s">%s</a>`, template.HTMLEscapeString(href(pathParams(n.Path))), outlineLabel(n))
		if len(n.Children) > 0 {
			renderChildren(b, n.Children, href)
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>\n")
}

func outlineLabel(n *render.OutlineNode) string {
	if n.Label == "" {
		return template.HTMLEscapeString(n.Title)
	}
	return `<span class="tag">` + template.HTMLEscapeString(n.Label) + `</span> ` + template.HTMLEscapeString(n.Title)
}

// pathParams opens every panel along an outline path such as "6/62/621".
func pathParams(path string) params {
	p := params{match: -1}
	parts := strings.Split(path, "/")
	p.open = parts[0]
	if len(parts) > 1 {
		p.sub = strings.Join(parts[:2], "/")
	}
	if len(parts) > 2 {
		p.grand = strings.Join(parts[:3], "/")
	}
	return p
}
