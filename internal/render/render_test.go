package render

import (
	"strings"
	"testing"

	"github.com/ziadkadry99/emsguide/internal/expansion"
	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/search"
	"pgregory.net/rapid"
)

func loadSample(t *testing.T) *guide.Document {
	t.Helper()
	doc, err := guide.Default()
	if err != nil {
		t.Fatalf("loading bundled dataset: %v", err)
	}
	return doc
}

func buildFor(doc *guide.Document, query string, st expansion.State) *View {
	st = st.ApplyQuery(doc, query, expansion.Options{})
	return Build(doc, search.Filter(doc.Entries, query), query, st)
}

func TestBuild_NoQueryCollapsed(t *testing.T) {
	doc := loadSample(t)
	v := buildFor(doc, "", expansion.State{})

	if v.Total != len(doc.Entries) || v.Matched != len(doc.Entries) {
		t.Errorf("counts: total=%d matched=%d, want %d", v.Total, v.Matched, len(doc.Entries))
	}
	if len(v.Fragments) != 0 {
		t.Errorf("no query should yield no fragments, got %d", len(v.Fragments))
	}
	for _, c := range v.Cards {
		if c.Expanded || c.Body != nil || c.Subs != nil {
			t.Errorf("card %s should be collapsed", c.ID)
		}
	}
}

func TestBuild_CodeQuery(t *testing.T) {
	doc := loadSample(t)
	v := buildFor(doc, "C4", expansion.State{})

	if len(v.Cards) != 2 || v.Cards[0].ID != "3" || v.Cards[1].ID != "5" {
		t.Fatalf("cards: got %+v", v.Cards)
	}
	for _, c := range v.Cards {
		if !c.Expanded {
			t.Errorf("card %s should be expanded while searching", c.ID)
		}
	}

	want := []struct{ path, field string }{
		{"3", "tag"},
		{"3", "content[3]"},
		{"5/52", "content[2]"},
	}
	if len(v.Fragments) != len(want) {
		t.Fatalf("fragments: got %+v", v.Fragments)
	}
	for i, w := range want {
		f := v.Fragments[i]
		if f.Index != i || f.Path != w.path || f.Field != w.field || f.Text != "C4" {
			t.Errorf("fragment %d: got %+v, want path %s field %s", i, f, w.path, w.field)
		}
	}

	line := doc.Entries[2].Content[3]
	if got := v.Fragments[1].Offset; got != strings.Index(line, "C4") {
		t.Errorf("offset: got %d, want %d", got, strings.Index(line, "C4"))
	}

	// Image directives are never highlighted even though the asset name
	// contains the query.
	for _, f := range v.Fragments {
		if f.Path == "3" && f.Field == "content[4]" {
			t.Error("image directive was highlighted")
		}
	}
}

func TestBuild_CollapsedPanelsHideMatches(t *testing.T) {
	doc := loadSample(t)
	query := "C4"
	st := expansion.State{}.ApplyQuery(doc, query, expansion.Options{})
	st = st.Toggle(expansion.SubScope("5"), "52")

	v := Build(doc, search.Filter(doc.Entries, query), query, st)
	if len(v.Fragments) != 2 {
		t.Errorf("collapsed sub entry should hide its match: got %d fragments", len(v.Fragments))
	}
	if v.Cards[1].Subs[1].Expanded || v.Cards[1].Subs[1].Body != nil {
		t.Error("sub 52 should be collapsed")
	}
	// Headers stay visible.
	if v.Cards[1].Subs[1].Title.String() != "M7 疑似腦中風" {
		t.Errorf("sub title: got %q", v.Cards[1].Subs[1].Title.String())
	}
}

func TestBuild_Badges(t *testing.T) {
	doc := loadSample(t)
	st := expansion.State{}.Select("4")
	v := Build(doc, doc.Entries, "", st)

	var card Card
	for _, c := range v.Cards {
		if c.ID == "4" {
			card = c
		}
	}
	if !card.Expanded {
		t.Fatal("selected card should be expanded")
	}
	blk := card.Body[2]
	last := blk.Inlines[len(blk.Inlines)-1]
	if last.Kind != guide.SegmentParamedic {
		t.Errorf("expected paramedic badge, got %+v", blk.Inlines)
	}
	if card.Body[3].Kind != guide.LineImage || card.Body[3].Asset != "./PIC/C6_ohca.png" {
		t.Errorf("expected image block, got %+v", card.Body[3])
	}
}

func TestBuild_BadgeMarkersNotSearchable(t *testing.T) {
	doc := &guide.Document{Entries: []guide.Entry{
		{ID: "1", Code: "X1", Title: "t", Content: []string{"step [P] *"}},
	}}
	v := buildFor(doc, "[P]", expansion.State{})
	if len(v.Fragments) != 0 {
		t.Errorf("badge markers must not be highlighted: %+v", v.Fragments)
	}
}

func TestTag(t *testing.T) {
	tests := []struct {
		entry guide.Entry
		want  string
	}{
		{guide.Entry{Code: "Law"}, LawLabel},
		{guide.Entry{Code: "C4"}, "C4"},
		{guide.Entry{Code: "M", Category: "內科、M1-M14", IsParent: true}, "內科"},
		{guide.Entry{Code: "T", Category: "創傷", IsParent: true}, "創傷"},
	}
	for _, tt := range tests {
		if got := Tag(tt.entry); got != tt.want {
			t.Errorf("Tag(%+v): got %q, want %q", tt.entry, got, tt.want)
		}
	}
}

func TestBuild_Pending(t *testing.T) {
	doc := &guide.Document{Entries: []guide.Entry{{ID: "1", Code: "C9", Title: "Empty"}}}
	v := Build(doc, doc.Entries, "", expansion.State{}.Select("1"))
	if !v.Cards[0].Pending {
		t.Error("empty leaf should show the pending placeholder")
	}
	lines := v.Text(PlainStyles(), NoMatch).Lines
	if !strings.Contains(strings.Join(lines, "\n"), PendingLabel) {
		t.Errorf("pending label missing:\n%s", strings.Join(lines, "\n"))
	}
}

func TestText_FragmentLines(t *testing.T) {
	doc := loadSample(t)
	v := buildFor(doc, "C4", expansion.State{})
	out := v.Text(PlainStyles(), 1)

	if len(out.FragmentLine) != len(v.Fragments) {
		t.Fatalf("fragment lines: got %d, want %d", len(out.FragmentLine), len(v.Fragments))
	}
	first := out.Lines[out.FragmentLine[0]]
	if !strings.Contains(first, "[C4]") {
		t.Errorf("first match line %q should mark the match", first)
	}
	focused := out.Lines[out.FragmentLine[1]]
	if !strings.Contains(focused, "»C4«") {
		t.Errorf("focused line %q should mark focus", focused)
	}
	if _, ok := out.CardLine["5"]; !ok {
		t.Error("card line for 5 missing")
	}

	var paths []string
	for _, h := range out.Headers {
		paths = append(paths, h.Path)
	}
	want := "3,5,5/51,5/52"
	if got := strings.Join(paths, ","); got != want {
		t.Errorf("headers: got %s, want %s", got, want)
	}
	if h := out.Headers[1]; h.Line != out.CardLine["5"] {
		t.Errorf("header line %d does not match card line %d", h.Line, out.CardLine["5"])
	}
}

func TestBuild_FragmentCountMatchesHighlights(t *testing.T) {
	doc := loadSample(t)
	rapid.Check(t, func(t *rapid.T) {
		query := rapid.SampledFrom([]string{"C4", "轉送", "血糖", "1.", "m1", "QR", "[P]", "zz"}).Draw(t, "query")
		v := buildFor(doc, query, expansion.State{})

		// Indices are dense and in order; every span refers to one.
		for i, f := range v.Fragments {
			if f.Index != i {
				t.Fatalf("fragment %d has index %d", i, f.Index)
			}
			if !strings.EqualFold(f.Text, query) {
				t.Fatalf("fragment text %q does not equal query %q", f.Text, query)
			}
		}
		again := buildFor(doc, query, expansion.State{})
		if len(again.Fragments) != len(v.Fragments) {
			t.Fatalf("rendering is not deterministic")
		}
	})
}

func TestOutline(t *testing.T) {
	doc := loadSample(t)
	nodes := Outline(doc)
	if len(nodes) != len(doc.Entries) {
		t.Fatalf("got %d top nodes, want %d", len(nodes), len(doc.Entries))
	}
	m := nodes[4]
	if m.Label != "內科" || len(m.Children) != 2 {
		t.Fatalf("parent node: got label %q with %d children", m.Label, len(m.Children))
	}
	if got := m.Children[0].Children[1].Path; got != "5/51/512" {
		t.Errorf("grandchild path: got %q, want %q", got, "5/51/512")
	}
	if got := m.Children[0].Children[0].Label; got != "M1-1" {
		t.Errorf("grandchild label: got %q, want %q", got, "M1-1")
	}
}
