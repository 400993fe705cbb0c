package render

import (
	"strings"

	"github.com/ziadkadry99/emsguide/internal/guide"
)

// Styles decorates terminal output. Nil fields leave text unchanged.
type Styles struct {
	Match  func(s string, focused bool) string
	Tag    func(tone, s string) string
	Title  func(s string) string
	Header func(s string) string
	Badge  func(kind guide.SegmentKind, label string) string
	Link   func(s string) string
	Muted  func(s string) string
}

// PlainStyles marks matches with brackets and focus with angle brackets.
func PlainStyles() Styles {
	return Styles{
		Match: func(s string, focused bool) string {
			if focused {
				return "»" + s + "«"
			}
			return "[" + s + "]"
		},
	}
}

func apply(f func(string) string, s string) string {
	if f == nil {
		return s
	}
	return f(s)
}

// Lines is terminal output with the line of every fragment.
type Lines struct {
	Lines []string
	// FragmentLine maps a fragment index to its line.
	FragmentLine map[int]int
	// CardLine maps an entry id to its header line.
	CardLine map[guide.ID]int
	// Headers lists every toggleable header in display order.
	Headers []Header
}

// Header is the line of a card, sub entry or grandchild header. Path is
// its containment path, e.g. "5/51".
type Header struct {
	Path string
	Line int
}

// Text renders the view as indented terminal lines. focused is the
// fragment index to mark as current, or NoMatch.
func (v *View) Text(st Styles, focused int) Lines {
	w := &textWriter{
		st:      st,
		focused: focused,
		out: Lines{
			FragmentLine: make(map[int]int),
			CardLine:     make(map[guide.ID]int),
		},
	}
	for _, c := range v.Cards {
		w.card(c)
	}
	return w.out
}

type textWriter struct {
	st      Styles
	focused int
	out     Lines
}

func (w *textWriter) line(indent int, parts ...string) {
	w.out.Lines = append(w.out.Lines, strings.Repeat("  ", indent)+strings.Join(parts, ""))
}

// span renders t and records the line its fragments land on.
func (w *textWriter) span(t Text) string {
	var b strings.Builder
	line := len(w.out.Lines)
	for _, s := range t {
		if s.Match == NoMatch {
			b.WriteString(s.Text)
			continue
		}
		w.out.FragmentLine[s.Match] = line
		if w.st.Match != nil {
			b.WriteString(w.st.Match(s.Text, s.Match == w.focused))
		} else {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

func marker(expanded bool) string {
	if expanded {
		return "▾ "
	}
	return "▸ "
}

func (w *textWriter) header(path string) {
	w.out.Headers = append(w.out.Headers, Header{Path: path, Line: len(w.out.Lines)})
}

func (w *textWriter) card(c Card) {
	w.out.CardLine[c.ID] = len(w.out.Lines)
	w.header(c.ID.String())
	tag := w.span(c.Tag)
	if w.st.Tag != nil {
		tag = w.st.Tag(c.Tone, tag)
	}
	w.line(0, marker(c.Expanded), tag, "  ", apply(w.st.Muted, w.span(c.Category)), "  ", apply(w.st.Title, w.span(c.Title)))
	if !c.Expanded {
		return
	}

	if c.Parent {
		for _, s := range c.Subs {
			w.sub(c.ID.String(), s)
		}
		return
	}
	if c.Pending {
		w.line(2, apply(w.st.Muted, PendingLabel))
	}
	w.blocks(2, c.Body)
	if len(c.Note) > 0 {
		w.line(2, NoteLabel, w.span(c.Note))
	}
}

func (w *textWriter) sub(entry string, s SubPanel) {
	path := entry + "/" + s.ID.String()
	w.header(path)
	w.line(1, marker(s.Expanded), w.span(s.Title))
	if !s.Expanded {
		return
	}
	if s.HasBody {
		w.blocks(3, s.Body)
		for _, img := range []string{s.Image, s.BottomImage, s.BottomImage2} {
			if img != "" {
				w.line(3, apply(w.st.Muted, "[圖] "+img))
			}
		}
		if len(s.Note) > 0 {
			w.line(3, SubNotePrefix, w.span(s.Note))
		}
	}
	for _, g := range s.Grands {
		w.grand(path, g)
	}
}

func (w *textWriter) grand(sub string, g GrandPanel) {
	w.header(sub + "/" + g.ID.String())
	code := w.span(g.Code)
	if code != "" {
		code += " "
	}
	w.line(2, marker(g.Expanded), code, w.span(g.Title))
	if !g.Expanded {
		return
	}
	for _, img := range []string{g.Image, g.Image2} {
		if img != "" {
			w.line(4, apply(w.st.Muted, "[圖] "+img))
		}
	}
	w.blocks(4, g.Body)
	if len(g.Note) > 0 {
		w.line(4, GrandNoteLabel, w.span(g.Note))
	}
	for _, img := range []string{g.BottomImage, g.BottomImage2} {
		if img != "" {
			w.line(4, apply(w.st.Muted, "[圖] "+img))
		}
	}
}

func (w *textWriter) blocks(indent int, blocks []Block) {
	for _, blk := range blocks {
		switch blk.Kind {
		case guide.LineImage:
			w.line(indent, apply(w.st.Muted, "[圖] "+blk.Asset))
		case guide.LineSpacer:
			w.line(0)
		case guide.LineHeader:
			w.line(indent, apply(w.st.Header, w.inlines(blk.Inlines)))
		default:
			prefix := ""
			if blk.Continuation {
				prefix = "  "
			}
			w.line(indent, prefix, w.inlines(blk.Inlines))
		}
	}
}

func (w *textWriter) inlines(ins []Inline) string {
	var b strings.Builder
	for _, in := range ins {
		switch in.Kind {
		case guide.SegmentParamedic:
			b.WriteString(w.badge(in.Kind, ParamedicBadge))
		case guide.SegmentOnlineOrder:
			b.WriteString(w.badge(in.Kind, OrderBadge))
		case guide.SegmentLink:
			b.WriteString(apply(w.st.Link, in.Href))
		default:
			b.WriteString(w.span(in.Text))
		}
	}
	return b.String()
}

func (w *textWriter) badge(kind guide.SegmentKind, label string) string {
	if w.st.Badge != nil {
		return w.st.Badge(kind, label)
	}
	return "<" + label + ">"
}
