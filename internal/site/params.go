package site

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ziadkadry99/emsguide/internal/expansion"
	"github.com/ziadkadry99/emsguide/internal/guide"
)

// params is the viewer state carried in a page URL. sub and grand are
// containment paths ("5/52", "6/62/621") toggled on top of the state the
// query implies.
type params struct {
	query string
	open  string
	sub   string
	grand string
	match int
}

func parseParams(v url.Values) params {
	p := params{
		query: v.Get("q"),
		open:  v.Get("open"),
		sub:   v.Get("sub"),
		grand: v.Get("grand"),
		match: -1,
	}
	if m, err := strconv.Atoi(v.Get("m")); err == nil && m >= 0 {
		p.match = m
	}
	return p
}

// encode returns p as a query string, omitting empty values.
func (p params) encode() string {
	v := url.Values{}
	if p.query != "" {
		v.Set("q", p.query)
	}
	if p.open != "" {
		v.Set("open", p.open)
	}
	if p.sub != "" {
		v.Set("sub", p.sub)
	}
	if p.grand != "" {
		v.Set("grand", p.grand)
	}
	if p.match >= 0 {
		v.Set("m", strconv.Itoa(p.match))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// state rebuilds the expansion state the page renders with.
func (p params) state(doc *guide.Document, opts expansion.Options) expansion.State {
	st := expansion.State{}.Select(guide.ID(p.open))
	st = st.ApplyQuery(doc, p.query, opts)
	if entry, sub, ok := strings.Cut(p.sub, "/"); ok {
		st = st.Toggle(expansion.SubScope(guide.ID(entry)), guide.ID(sub))
	}
	if parts := strings.Split(p.grand, "/"); len(parts) == 3 {
		st = st.Toggle(expansion.GrandScope(guide.ID(parts[0]), guide.ID(parts[1])), guide.ID(parts[2]))
	}
	return st
}

func (p params) toggleEntry(id string) params {
	next := params{query: p.query, match: -1}
	if p.open != id {
		next.open = id
	}
	if p.query != "" {
		next.sub, next.grand = p.sub, p.grand
	}
	return next
}

func (p params) toggleSub(path string) params {
	next := params{query: p.query, open: p.open, match: -1}
	if p.sub != path {
		next.sub = path
	}
	return next
}

func (p params) toggleGrand(path string) params {
	next := params{query: p.query, open: p.open, sub: p.sub, match: -1}
	if p.grand != path {
		next.grand = path
	}
	return next
}

// focus returns p focused on match i.
func (p params) focus(i int) params {
	p.match = i
	return p
}

// staticName is the file a static snapshot stores the page for p under.
// Static pages never carry a query.
func staticName(p params) string {
	switch {
	case p.grand != "":
		return strings.ReplaceAll(p.grand, "/", "-") + ".html"
	case p.sub != "":
		return strings.ReplaceAll(p.sub, "/", "-") + ".html"
	case p.open != "":
		return p.open + ".html"
	default:
		return "index.html"
	}
}
