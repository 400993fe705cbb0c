package guide

import (
	"strings"
	"testing"
)

func TestImages(t *testing.T) {
	doc := &Document{Entries: []Entry{
		{ID: "1", Content: []string{"IMAGE:a.png", "text", "IMAGE:b.png"}},
		{ID: "2", IsParent: true, SubItems: []SubEntry{{
			ID:          "21",
			Image:       "c.png",
			Content:     []string{"IMAGE:a.png"},
			BottomImage: "d.png",
			GrandChildItems: []GrandChildEntry{
				{ID: "211", Image: "e.png", Image2: "c.png", BottomImage2: "f.png"},
			},
		}}},
	}}

	got := doc.Images()
	want := []string{"a.png", "b.png", "c.png", "d.png", "e.png", "f.png"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Images(): got %v, want %v", got, want)
	}
}

func TestValidate(t *testing.T) {
	doc := &Document{Entries: []Entry{
		{ID: "1", Title: "A"},
		{ID: "1", Title: ""},
		{ID: "2", Title: "P", IsParent: true},
		{ID: "3", Title: "Q", IsParent: true, SubItems: []SubEntry{
			{ID: "x", Title: "S"},
			{ID: "x", Title: "T", GrandChildItems: []GrandChildEntry{{ID: "g"}, {ID: "g", Title: "G"}}},
		}},
	}}

	problems := doc.Validate()
	var msgs []string
	for _, p := range problems {
		msgs = append(msgs, p.String())
	}
	joined := strings.Join(msgs, "\n")

	for _, want := range []string{
		`entries[1]: duplicate entry id "1"`,
		"entries[1]: missing title",
		"entries[2]: parent entry without subItems",
		`entries[3].subItems[1]: duplicate sub entry id "x"`,
		"entries[3].subItems[1].grandChildItems[0]: missing title",
		`entries[3].subItems[1].grandChildItems[1]: duplicate grandchild id "g"`,
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing problem %q in:\n%s", want, joined)
		}
	}
	if len(problems) != 6 {
		t.Errorf("problems: got %d, want 6", len(problems))
	}
}
