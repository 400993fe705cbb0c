package viewer

import (
	"github.com/ziadkadry99/emsguide/internal/expansion"
	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/navigator"
	"github.com/ziadkadry99/emsguide/internal/render"
)

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	Session string              `json:"session"`
	Version uint64              `json:"version"`
	Query   string              `json:"query"`
	Matched []guide.ID          `json:"matched"`
	Settled bool                `json:"settled"`
	Total   int                 `json:"total"`
	Current int                 `json:"current"`
	Label   string              `json:"label"`
	Focused *navigator.Fragment `json:"focused,omitempty"`
	// Expanded lists the open ids per scope.
	Expanded map[expansion.Scope][]guide.ID `json:"expanded"`
	View     *render.View                   `json:"view"`
}

func (s *Session) snapshotLocked() Snapshot {
	s.version++
	current, total := s.nav.Position()
	snap := Snapshot{
		Session:  s.id,
		Version:  s.version,
		Query:    s.query,
		Settled:  s.settled,
		Total:    total,
		Current:  current,
		Label:    navigator.Label(current, total),
		Expanded: s.state.Scopes(),
		View:     s.view,
	}
	for _, e := range s.entries {
		snap.Matched = append(snap.Matched, e.ID)
	}
	if f, ok := s.nav.Current(); ok {
		snap.Focused = &f
	}
	return snap
}
