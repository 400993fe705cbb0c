package offline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/emsguide/internal/progress"
)

// State is a lifecycle phase of the cache manager.
type State int

const (
	StateParsed State = iota
	StateInstalling
	StateInstalled
	StateActivating
	StateActivated
	StateRedundant
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateInstalling:
		return "installing"
	case StateInstalled:
		return "installed"
	case StateActivating:
		return "activating"
	case StateActivated:
		return "activated"
	case StateRedundant:
		return "redundant"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a Manager.
type Options struct {
	// Generation names the store that holds this version's assets. Every
	// other store is evicted on activation.
	Generation string
	// URLs are fetched and stored on install, all or nothing.
	URLs []string
	// Concurrency bounds parallel precache fetches. Zero means 4.
	Concurrency int
	// CacheOpaque stores cross-origin no-cors responses at runtime
	// regardless of status.
	CacheOpaque bool
	Logger      *slog.Logger
	Progress    progress.Reporter
}

// Manager owns the offline lifecycle and serves requests cache-first once
// activated.
type Manager struct {
	storage Storage
	net     Fetcher
	opts    Options
	log     *slog.Logger

	mu     sync.RWMutex
	state  State
	live   Cache
	closed bool
	writes sync.WaitGroup
}

// New creates a manager in the parsed state.
func New(storage Storage, net Fetcher, opts Options) (*Manager, error) {
	if opts.Generation == "" {
		return nil, errors.New("offline: generation is required")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Progress == nil {
		opts.Progress = progress.Nop{}
	}
	return &Manager{
		storage: storage,
		net:     net,
		opts:    opts,
		log:     opts.Logger.With("generation", opts.Generation),
		state:   StateParsed,
	}, nil
}

// State returns the current lifecycle phase.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Generation returns the store name this manager installs into.
func (m *Manager) Generation() string { return m.opts.Generation }

func (m *Manager) transition(from []State, to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range from {
		if m.state == s {
			m.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidState, m.state, to)
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// Install fetches every precache URL and stores the whole set under the
// generation name. If any fetch fails or returns a non-2xx status nothing
// is stored and the manager becomes redundant. A redundant manager may
// install again.
func (m *Manager) Install(ctx context.Context) error {
	if err := m.transition([]State{StateParsed, StateRedundant}, StateInstalling); err != nil {
		return err
	}

	urls := dedupe(m.opts.URLs)
	m.log.Info("installing", "assets", len(urls))

	entries, err := m.fetchAll(ctx, urls)
	if err != nil {
		m.setState(StateRedundant)
		m.log.Error("install failed", "error", err)
		return fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}

	store, created, err := m.storage.Open(ctx, m.opts.Generation)
	if err != nil {
		m.setState(StateRedundant)
		return fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}
	if err := store.PutAll(ctx, entries); err != nil {
		if created {
			if _, derr := m.storage.Delete(context.WithoutCancel(ctx), m.opts.Generation); derr != nil {
				m.log.Warn("removing partial store", "error", derr)
			}
		}
		m.setState(StateRedundant)
		m.log.Error("install failed", "error", err)
		return fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}

	m.setState(StateInstalled)
	m.log.Info("installed", "assets", len(entries))
	return nil
}

func (m *Manager) fetchAll(ctx context.Context, urls []string) ([]Entry, error) {
	entries := make([]Entry, len(urls))
	m.opts.Progress.Start(len(urls))
	defer m.opts.Progress.Finish()

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Concurrency)
	for i, u := range urls {
		g.Go(func() error {
			resp, err := m.net.Fetch(gctx, Get(u))
			if err != nil {
				return fmt.Errorf("fetching %s: %w", u, err)
			}
			if !resp.OK() {
				return fmt.Errorf("fetching %s: status %d", u, resp.Status)
			}
			entries[i] = Entry{Key: u, Response: resp}
			m.opts.Progress.Update(int(done.Add(1)), u)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Activate evicts every store other than the current generation and
// starts serving from it. Eviction failures are logged and skipped.
func (m *Manager) Activate(ctx context.Context) error {
	if err := m.transition([]State{StateInstalled}, StateActivating); err != nil {
		return err
	}

	if _, err := m.Evict(ctx); err != nil {
		m.log.Warn("listing cache stores", "error", err)
	}

	live, _, err := m.storage.Open(ctx, m.opts.Generation)
	if err != nil {
		m.setState(StateInstalled)
		return fmt.Errorf("opening %s: %w", m.opts.Generation, err)
	}

	m.mu.Lock()
	m.live = live
	m.state = StateActivated
	m.mu.Unlock()
	m.log.Info("activated")
	return nil
}

// Evict deletes every store whose name differs from the generation and
// returns the names removed.
func (m *Manager) Evict(ctx context.Context) ([]string, error) {
	names, err := m.storage.Keys(ctx)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, name := range names {
		if name == m.opts.Generation {
			continue
		}
		if _, err := m.storage.Delete(ctx, name); err != nil {
			m.log.Warn("evicting cache store", "store", name, "error", err)
			continue
		}
		m.log.Info("evicted cache store", "store", name)
		removed = append(removed, name)
	}
	return removed, nil
}

// Start installs and then activates without waiting for older clients.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.Install(ctx); err != nil {
		return err
	}
	return m.Activate(ctx)
}

// Resume serves from an existing store for the generation without
// refetching. It fails with ErrNotFound when the store is missing.
func (m *Manager) Resume(ctx context.Context) error {
	ok, err := m.storage.Has(ctx, m.opts.Generation)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, m.opts.Generation)
	}
	if err := m.transition([]State{StateParsed, StateRedundant}, StateInstalled); err != nil {
		return err
	}
	return m.Activate(ctx)
}

// Fetch answers req from the live store, falling back to the network.
// Before activation, and for anything but GET over http(s), the cache is
// bypassed. Successful network responses are written back in the
// background; see Wait.
func (m *Manager) Fetch(ctx context.Context, req *Request) (*Response, error) {
	m.mu.RLock()
	live := m.live
	active := m.state == StateActivated && live != nil
	m.mu.RUnlock()

	if !active || !req.cacheable() {
		return m.network(ctx, req)
	}

	cached, ok, err := live.Match(ctx, req.URL)
	if err != nil {
		m.log.Warn("cache lookup", "url", req.URL, "error", err)
	}
	if ok {
		return cached, nil
	}

	resp, err := m.network(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusOK || (resp.Type == TypeOpaque && m.opts.CacheOpaque) {
		m.writeBack(ctx, live, req.URL, resp.Clone())
	}
	return resp, nil
}

func (m *Manager) network(ctx context.Context, req *Request) (*Response, error) {
	resp, err := m.net.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNetwork, req.URL, err)
	}
	return resp, nil
}

func (m *Manager) writeBack(ctx context.Context, live Cache, key string, resp *Response) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}
	m.writes.Add(1)
	go func() {
		defer m.writes.Done()
		if err := live.Put(context.WithoutCancel(ctx), key, resp); err != nil {
			m.log.Warn("runtime cache write", "url", key, "error", err)
		}
	}()
}

// Wait blocks until pending background writes finish.
func (m *Manager) Wait() {
	m.writes.Wait()
}

// Close stops scheduling background writes and drains pending ones.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.writes.Wait()
	return nil
}

// Status summarises the manager and its storage.
type Status struct {
	State      string   `json:"state"`
	Generation string   `json:"generation"`
	Stores     []string `json:"stores"`
	Entries    int      `json:"entries"`
}

// Status reports the lifecycle state, the store names and the number of
// entries in the generation's store.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	st := Status{State: m.State().String(), Generation: m.opts.Generation}
	names, err := m.storage.Keys(ctx)
	if err != nil {
		return st, err
	}
	st.Stores = names
	ok, err := m.storage.Has(ctx, m.opts.Generation)
	if err != nil || !ok {
		return st, err
	}
	c, _, err := m.storage.Open(ctx, m.opts.Generation)
	if err != nil {
		return st, err
	}
	keys, err := c.Keys(ctx)
	st.Entries = len(keys)
	return st, err
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
