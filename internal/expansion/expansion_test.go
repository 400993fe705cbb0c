package expansion

import (
	"testing"

	"github.com/ziadkadry99/emsguide/internal/guide"
	"pgregory.net/rapid"
)

func testDoc() *guide.Document {
	return &guide.Document{Entries: []guide.Entry{
		{ID: "1", Code: "C1", Title: "Scene"},
		{ID: "5", Code: "M", Title: "Medical", IsParent: true, SubItems: []guide.SubEntry{
			{ID: "51", Title: "M1 Consciousness", GrandChildItems: []guide.GrandChildEntry{
				{ID: "511", Code: "M1-1", Title: "Hypoglycemia", Content: []string{"give glucose"}},
				{ID: "512", Code: "M1-2", Title: "Poisoning"},
			}},
			{ID: "52", Title: "M7 Stroke", Content: []string{"check glucose"}},
			{ID: "53", Title: "M9 Other"},
		}},
	}}
}

func TestToggle_Accordion(t *testing.T) {
	var s State
	scope := SubScope("5")

	s = s.Toggle(scope, "51")
	if !s.Expanded(scope, "51") {
		t.Fatal("51 should be open")
	}
	s = s.Toggle(scope, "52")
	if s.Expanded(scope, "51") || !s.Expanded(scope, "52") {
		t.Errorf("opening 52 should close 51: %v", s.IDs(scope))
	}
	s = s.Toggle(scope, "52")
	if len(s.IDs(scope)) != 0 {
		t.Errorf("toggling the open id should collapse the scope: %v", s.IDs(scope))
	}
}

func TestToggle_CollapsesForcedSet(t *testing.T) {
	s := State{}.ApplyQuery(testDoc(), "glucose", Options{})
	scope := SubScope("5")
	if got := s.IDs(scope); len(got) != 2 {
		t.Fatalf("forced set: got %v, want [51 52]", got)
	}

	closed := s.Toggle(scope, "51")
	if len(closed.IDs(scope)) != 0 {
		t.Errorf("toggling an open id collapses the whole scope: %v", closed.IDs(scope))
	}
	opened := s.Toggle(scope, "53")
	if got := opened.IDs(scope); len(got) != 1 || got[0] != "53" {
		t.Errorf("toggling a closed id leaves exactly it open: %v", got)
	}
}

func TestToggle_DoesNotMutateReceiver(t *testing.T) {
	var s State
	s1 := s.Toggle(Top, "1")
	_ = s1.Toggle(Top, "1")
	if !s1.Expanded(Top, "1") {
		t.Error("Toggle must return a new state")
	}
}

func TestApplyQuery_ForcedExpansion(t *testing.T) {
	s := State{}.Select("1").ApplyQuery(testDoc(), "m1-", Options{})

	if got := s.IDs(SubScope("5")); len(got) != 1 || got[0] != "51" {
		t.Errorf("sub scope: got %v, want [51]", got)
	}
	if got := s.IDs(GrandScope("5", "51")); len(got) != 2 {
		t.Errorf("grand scope: got %v, want [511 512]", got)
	}
	if !s.Expanded(Top, "1") {
		t.Error("top selection should survive a query")
	}
}

func TestApplyQuery_ClearKeepsTop(t *testing.T) {
	s := State{}.Select("5").Toggle(GrandScope("5", "51"), "511")
	s = s.ApplyQuery(testDoc(), "", Options{})

	if !s.Expanded(Top, "5") {
		t.Error("top selection should survive clearing the query")
	}
	if s.Expanded(GrandScope("5", "51"), "511") {
		t.Error("grandchild scope should collapse on clear")
	}
}

func TestApplyQuery_CollapseTopOnClear(t *testing.T) {
	s := State{}.Select("5").ApplyQuery(testDoc(), "", Options{CollapseTopOnClear: true})
	if _, ok := s.Selected(); ok {
		t.Error("top scope should collapse when configured")
	}
	s = State{}.Select("5").ApplyQuery(testDoc(), "x", Options{CollapseTopOnClear: true})
	if !s.Expanded(Top, "5") {
		t.Error("a non-empty query never collapses the top scope")
	}
}

func TestTopExpanded(t *testing.T) {
	s := State{}.Select("1")
	if !s.TopExpanded("1", "") {
		t.Error("selected entry should be expanded")
	}
	if s.TopExpanded("5", "") {
		t.Error("unselected entry should be collapsed")
	}
	if !s.TopExpanded("5", "q") {
		t.Error("every entry is expanded while a query is active")
	}
}

func TestToggle_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		scopes := []Scope{Top, SubScope("5"), GrandScope("5", "51")}
		idGen := rapid.SampledFrom([]guide.ID{"a", "b", "c"})

		var s State
		for i := rapid.IntRange(0, 30).Draw(t, "n"); i > 0; i-- {
			scope := rapid.SampledFrom(scopes).Draw(t, "scope")
			id := idGen.Draw(t, "id")
			was := s.Expanded(scope, id)
			s = s.Toggle(scope, id)

			open := s.IDs(scope)
			if was && len(open) != 0 {
				t.Fatalf("toggle of open id left %v", open)
			}
			if !was && (len(open) != 1 || open[0] != id) {
				t.Fatalf("toggle of closed id %q left %v", id, open)
			}
			for _, other := range scopes {
				if len(s.IDs(other)) > 1 {
					t.Fatalf("scope %q holds %v from toggles alone", other, s.IDs(other))
				}
			}
		}
	})
}
