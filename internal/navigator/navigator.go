// Package navigator steps focus through the highlighted matches currently
// on screen.
package navigator

import (
	"strconv"
	"sync"
)

// Fragment describes one highlighted occurrence in render order.
type Fragment struct {
	Index   int    `json:"index"`
	EntryID string `json:"entryId"`
	Path    string `json:"path"`  // containment path, e.g. "5/51/511"
	Field   string `json:"field"` // title, code, content, note
	Offset  int    `json:"offset"`
	Length  int    `json:"length"`
	Text    string `json:"text"`
}

// Focuser moves a focus indicator between fragments. Implementations must
// not block; scrolling is fire-and-forget.
type Focuser interface {
	ClearFocus(f Fragment)
	Focus(f Fragment)
}

// Navigator holds the ordered fragment list and the focused position.
// It is safe for concurrent use.
type Navigator struct {
	mu      sync.Mutex
	frags   []Fragment
	current int
	focuser Focuser
}

// New creates a navigator with nothing focused. focuser may be nil.
func New(focuser Focuser) *Navigator {
	return &Navigator{current: -1, focuser: focuser}
}

// Reset clears the fragment list.
func (n *Navigator) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.frags = nil
	n.current = -1
}

// SetFragments replaces the fragment list and clears focus.
func (n *Navigator) SetFragments(frags []Fragment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.frags = append([]Fragment(nil), frags...)
	n.current = -1
}

// Next focuses the following fragment, wrapping past the end.
func (n *Navigator) Next() {
	n.step(1)
}

// Previous focuses the preceding fragment, wrapping below the start.
func (n *Navigator) Previous() {
	n.step(-1)
}

func (n *Navigator) step(delta int) {
	n.mu.Lock()
	total := len(n.frags)
	if total == 0 {
		n.mu.Unlock()
		return
	}
	prev := n.current
	next := n.current + delta
	if n.current < 0 && delta < 0 {
		next = total - 1
	}
	next = ((next % total) + total) % total
	n.current = next

	var old *Fragment
	if prev >= 0 && prev < total {
		f := n.frags[prev]
		old = &f
	}
	cur := n.frags[next]
	focuser := n.focuser
	n.mu.Unlock()

	if focuser == nil {
		return
	}
	if old != nil {
		focuser.ClearFocus(*old)
	}
	focuser.Focus(cur)
}

// Position returns the focused index (-1 when none) and the total count.
func (n *Navigator) Position() (current, total int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current, len(n.frags)
}

// Current returns the focused fragment.
func (n *Navigator) Current() (Fragment, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current < 0 || n.current >= len(n.frags) {
		return Fragment{}, false
	}
	return n.frags[n.current], true
}

// Fragments returns a copy of the fragment list.
func (n *Navigator) Fragments() []Fragment {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Fragment(nil), n.frags...)
}

// Label formats a position for display: "current/total" counting from one,
// or "0" when there are no matches.
func Label(current, total int) string {
	if total == 0 {
		return "0"
	}
	return strconv.Itoa(current+1) + "/" + strconv.Itoa(total)
}
