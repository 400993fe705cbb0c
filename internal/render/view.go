// Package render turns the filtered document and its expansion state into
// a presentation-neutral view, numbering every visible search match.
package render

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/emsguide/internal/expansion"
	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/navigator"
	"github.com/ziadkadry99/emsguide/internal/search"
)

// Labels shown for fixed parts of a card.
const (
	LawLabel       = "壹、依據"
	PendingLabel   = "內容待補"
	NoteLabel      = "注意事項："
	GrandNoteLabel = "注意："
	SubNotePrefix  = "註: "
	ParamedicBadge = "EMT-P"
	OrderBadge     = "線上醫囑"
)

// NoMatch marks a span that is not a search match.
const NoMatch = -1

// Span is a run of visible text. Match is the fragment index for a
// highlighted run, or NoMatch.
type Span struct {
	Text  string `json:"text"`
	Match int    `json:"match"`
}

// Text is a highlighted piece of visible text.
type Text []Span

// String returns the plain text.
func (t Text) String() string {
	var b strings.Builder
	for _, s := range t {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Inline is one piece of a paragraph: text, link or badge.
type Inline struct {
	Kind guide.SegmentKind `json:"kind"`
	Text Text              `json:"text,omitempty"`
	Href string            `json:"href,omitempty"`
}

// Block is a rendered content line.
type Block struct {
	Kind         guide.LineKind `json:"kind"`
	Asset        string         `json:"asset,omitempty"`
	Small        bool           `json:"small,omitempty"`
	Indent       float64        `json:"indent,omitempty"`
	Hanging      bool           `json:"hanging,omitempty"`
	Continuation bool           `json:"continuation,omitempty"`
	Inlines      []Inline       `json:"inlines,omitempty"`
}

// Layout selects how a leaf entry's content is laid out.
type Layout string

const (
	LayoutSteps      Layout = "steps"      // numbered list
	LayoutParagraphs Layout = "paragraphs" // indented prose, used for Law
)

// Card is a top-level entry.
type Card struct {
	ID       guide.ID `json:"id"`
	Code     string   `json:"code"`
	Tone     string   `json:"tone"`
	Icon     string   `json:"icon"`
	Tag      Text     `json:"tag"`
	Category Text     `json:"category"`
	Title    Text     `json:"title"`
	Parent   bool     `json:"parent"`
	Expanded bool     `json:"expanded"`

	// Leaf body, present when expanded.
	Layout  Layout  `json:"layout,omitempty"`
	Body    []Block `json:"body,omitempty"`
	Pending bool    `json:"pending,omitempty"`
	Note    Text    `json:"note,omitempty"`

	// Parent body, present when expanded.
	Subs []SubPanel `json:"subs,omitempty"`
}

// SubPanel is a sub entry. Body fields are set only when expanded.
type SubPanel struct {
	ID           guide.ID     `json:"id"`
	Title        Text         `json:"title"`
	Expanded     bool         `json:"expanded"`
	TextLayout   bool         `json:"textLayout,omitempty"`
	Alignment    string       `json:"alignment,omitempty"`
	Scrollable   bool         `json:"scrollable,omitempty"`
	HasBody      bool         `json:"hasBody,omitempty"`
	Body         []Block      `json:"body,omitempty"`
	Image        string       `json:"image,omitempty"`
	BottomImage  string       `json:"bottomImage,omitempty"`
	BottomImage2 string       `json:"bottomImage2,omitempty"`
	Note         Text         `json:"note,omitempty"`
	Grands       []GrandPanel `json:"grands,omitempty"`
}

// GrandPanel is a grandchild entry. Body fields are set only when expanded.
type GrandPanel struct {
	ID           guide.ID `json:"id"`
	Code         Text     `json:"code,omitempty"`
	Title        Text     `json:"title"`
	Expanded     bool     `json:"expanded"`
	Image        string   `json:"image,omitempty"`
	Image2       string   `json:"image2,omitempty"`
	Body         []Block  `json:"body,omitempty"`
	Note         Text     `json:"note,omitempty"`
	BottomImage  string   `json:"bottomImage,omitempty"`
	BottomImage2 string   `json:"bottomImage2,omitempty"`
}

// View is everything a presenter needs for one frame.
type View struct {
	Query     string               `json:"query"`
	Total     int                  `json:"total"`   // entries in the document
	Matched   int                  `json:"matched"` // entries shown
	Cards     []Card               `json:"cards"`
	Fragments []navigator.Fragment `json:"fragments"`
}

// Build renders entries, the already filtered subset of doc, under the given
// expansion state. Only text inside expanded panels is scanned for matches.
func Build(doc *guide.Document, entries []guide.Entry, query string, st expansion.State) *View {
	b := &builder{query: query}
	v := &View{Query: query, Matched: len(entries)}
	if doc != nil {
		v.Total = len(doc.Entries)
	}
	for _, e := range entries {
		v.Cards = append(v.Cards, b.card(e, st))
	}
	v.Fragments = b.frags
	return v
}

// Tag returns the label shown on an entry's badge.
func Tag(e guide.Entry) string {
	if e.IsParent {
		return strings.SplitN(e.Category, "、", 2)[0]
	}
	if e.Code == "Law" {
		return LawLabel
	}
	return e.Code
}

type builder struct {
	query   string
	entryID string
	frags   []navigator.Fragment
}

// text highlights s and records one fragment per match.
func (b *builder) text(path, field, s string, base int) Text {
	if s == "" {
		return nil
	}
	var out Text
	for _, p := range search.Highlight(s, b.query) {
		if !p.Match {
			out = append(out, Span{Text: p.Text, Match: NoMatch})
			continue
		}
		idx := len(b.frags)
		b.frags = append(b.frags, navigator.Fragment{
			Index:   idx,
			EntryID: b.entryID,
			Path:    path,
			Field:   field,
			Offset:  base + p.Offset,
			Length:  len(p.Text),
			Text:    p.Text,
		})
		out = append(out, Span{Text: p.Text, Match: idx})
	}
	return out
}

func (b *builder) blocks(path string, lines []string) []Block {
	out := make([]Block, 0, len(lines))
	for i, raw := range lines {
		field := fmt.Sprintf("content[%d]", i)
		l := guide.ParseLine(raw)
		blk := Block{
			Kind:         l.Kind,
			Asset:        l.Asset,
			Small:        l.Small,
			Indent:       l.Indent,
			Hanging:      l.Hanging,
			Continuation: l.Continuation,
		}
		switch l.Kind {
		case guide.LineHeader:
			blk.Inlines = []Inline{{Kind: guide.SegmentText, Text: b.text(path, field, l.Text, 0)}}
		case guide.LineParagraph:
			offset := 0
			for _, seg := range l.Segments {
				in := Inline{Kind: seg.Kind}
				switch seg.Kind {
				case guide.SegmentText:
					in.Text = b.text(path, field, seg.Text, offset)
				case guide.SegmentLink:
					in.Href = seg.Text
					in.Text = Text{{Text: seg.Text, Match: NoMatch}}
				}
				blk.Inlines = append(blk.Inlines, in)
				offset += len(seg.Text)
			}
		}
		out = append(out, blk)
	}
	return out
}

func (b *builder) card(e guide.Entry, st expansion.State) Card {
	b.entryID = e.ID.String()
	path := e.ID.String()
	c := Card{
		ID:       e.ID,
		Code:     e.Code,
		Tone:     Tone(e.Code),
		Icon:     Icon(e.Code),
		Tag:      b.text(path, "tag", Tag(e), 0),
		Category: b.text(path, "category", e.Category, 0),
		Title:    b.text(path, "title", e.Title, 0),
		Parent:   e.IsParent,
		Expanded: st.TopExpanded(e.ID, b.query),
	}
	if !c.Expanded {
		return c
	}

	if e.IsParent {
		for _, s := range e.SubItems {
			c.Subs = append(c.Subs, b.sub(e.ID, s, st))
		}
		return c
	}

	c.Layout = LayoutSteps
	if e.Code == "Law" {
		c.Layout = LayoutParagraphs
	}
	c.Body = b.blocks(path, e.Content)
	c.Pending = len(e.Content) == 0
	c.Note = b.text(path, "note", e.Note, 0)
	return c
}

func (b *builder) sub(entry guide.ID, s guide.SubEntry, st expansion.State) SubPanel {
	path := entry.String() + "/" + s.ID.String()
	p := SubPanel{
		ID:         s.ID,
		Title:      b.text(path, "title", s.Title, 0),
		Expanded:   st.Expanded(expansion.SubScope(entry), s.ID),
		TextLayout: s.TextLayout(),
		Alignment:  s.Alignment,
		Scrollable: s.Scrollable,
		HasBody:    s.HasBody(),
	}
	if !p.Expanded {
		return p
	}

	if p.HasBody {
		p.Body = b.blocks(path, s.Content)
		p.Image = s.Image
		p.BottomImage = s.BottomImage
		p.BottomImage2 = s.BottomImage2
		p.Note = b.text(path, "note", s.Note, 0)
	}
	for _, g := range s.GrandChildItems {
		p.Grands = append(p.Grands, b.grand(entry, s.ID, g, st))
	}
	return p
}

func (b *builder) grand(entry, sub guide.ID, g guide.GrandChildEntry, st expansion.State) GrandPanel {
	path := entry.String() + "/" + sub.String() + "/" + g.ID.String()
	p := GrandPanel{
		ID:       g.ID,
		Code:     b.text(path, "code", g.Code, 0),
		Title:    b.text(path, "title", g.Title, 0),
		Expanded: st.Expanded(expansion.GrandScope(entry, sub), g.ID),
	}
	if !p.Expanded {
		return p
	}
	p.Image = g.Image
	p.Image2 = g.Image2
	p.Body = b.blocks(path, g.Content)
	p.Note = b.text(path, "note", g.Note, 0)
	p.BottomImage = g.BottomImage
	p.BottomImage2 = g.BottomImage2
	return p
}
