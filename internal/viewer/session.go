// Package viewer holds the interactive state of one viewer: the query, the
// filtered entries, which panels are open and which match is focused.
package viewer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/emsguide/internal/expansion"
	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/navigator"
	"github.com/ziadkadry99/emsguide/internal/render"
	"github.com/ziadkadry99/emsguide/internal/search"
)

// DefaultSettleDelay is how long after the last query change matches are
// counted.
const DefaultSettleDelay = 600 * time.Millisecond

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Options configures a Session.
type Options struct {
	SettleDelay time.Duration
	Expansion   expansion.Options
	// Scheduler defaults to the wall clock.
	Scheduler Scheduler
	// Focuser is told about focus changes. It is called with the session
	// locked and must not call back into the session.
	Focuser navigator.Focuser
	// OnUpdate receives every snapshot in order. It must not call back
	// into the session.
	OnUpdate func(Snapshot)
	Logger   *slog.Logger
}

// Session is the state container for one viewer. It is safe for
// concurrent use.
type Session struct {
	id   string
	doc  *guide.Document
	opts Options
	log  *slog.Logger

	mu      sync.Mutex
	query   string
	entries []guide.Entry
	state   expansion.State
	nav     *navigator.Navigator
	view    *render.View
	seq     uint64 // bumped on every query change
	version uint64 // bumped on every snapshot
	settled bool
	pending Timer

	pubMu     sync.Mutex
	published uint64
}

// New creates a session over doc with an empty query.
func New(doc *guide.Document, opts Options) *Session {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = realScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	id := uuid.NewString()
	s := &Session{
		id:      id,
		doc:     doc,
		opts:    opts,
		log:     opts.Logger.With("session", id),
		entries: doc.Entries,
		nav:     navigator.New(opts.Focuser),
		settled: true,
	}
	s.view = s.render()
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

func (s *Session) render() *render.View {
	return render.Build(s.doc, s.entries, s.query, s.state)
}

// SetQuery updates the filter and forced expansion at once and clears the
// match count. For a non-empty query the matches are counted after the
// settle delay; a newer query replaces any pending count.
func (s *Session) SetQuery(q string) {
	s.mu.Lock()
	s.query = q
	s.entries = search.Filter(s.doc.Entries, q)
	s.state = s.state.ApplyQuery(s.doc, q, s.opts.Expansion)
	s.nav.Reset()
	s.seq++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.view = s.render()
	s.settled = q == ""
	if q != "" {
		seq := s.seq
		s.pending = s.opts.Scheduler.AfterFunc(s.opts.SettleDelay, func() { s.recount(seq) })
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug("query changed", "query", q, "entries", len(snap.Matched))
	s.publish(snap)
}

// recount hands the visible matches to the navigator unless a newer query
// has arrived since it was scheduled.
func (s *Session) recount(seq uint64) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.view = s.render()
	s.nav.SetFragments(s.view.Fragments)
	s.settled = true
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug("matches counted", "query", snap.Query, "total", snap.Total)
	s.publish(snap)
}

// Toggle opens or collapses id within scope. While a query is active the
// match list is replaced at once.
func (s *Session) Toggle(scope expansion.Scope, id guide.ID) {
	s.mu.Lock()
	s.state = s.state.Toggle(scope, id)
	s.view = s.render()
	if s.query != "" {
		s.nav.SetFragments(s.view.Fragments)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// ToggleEntry toggles a top-level entry.
func (s *Session) ToggleEntry(id guide.ID) {
	s.Toggle(expansion.Top, id)
}

// ToggleSub toggles a sub entry of entry.
func (s *Session) ToggleSub(entry, sub guide.ID) {
	s.Toggle(expansion.SubScope(entry), sub)
}

// ToggleGrand toggles a grandchild of sub within entry.
func (s *Session) ToggleGrand(entry, sub, grand guide.ID) {
	s.Toggle(expansion.GrandScope(entry, sub), grand)
}

// Next focuses the following match.
func (s *Session) Next() {
	s.step(s.nav.Next)
}

// Previous focuses the preceding match.
func (s *Session) Previous() {
	s.step(s.nav.Previous)
}

func (s *Session) step(move func()) {
	s.mu.Lock()
	move()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close cancels any pending match count.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

func (s *Session) publish(snap Snapshot) {
	if s.opts.OnUpdate == nil {
		return
	}
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if snap.Version <= s.published {
		return
	}
	s.published = snap.Version
	s.opts.OnUpdate(snap)
}
