package offline

import (
	"context"
	"sync"
)

// Storage is the namespace of named cache stores.
type Storage interface {
	// Open returns the named store, creating it if needed. created reports
	// whether this call created it.
	Open(ctx context.Context, name string) (c Cache, created bool, err error)
	Has(ctx context.Context, name string) (bool, error)
	// Keys returns store names in creation order.
	Keys(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) (bool, error)
}

// Cache is one named store of responses keyed by request URL.
type Cache interface {
	Name() string
	Match(ctx context.Context, key string) (*Response, bool, error)
	Put(ctx context.Context, key string, r *Response) error
	// PutAll writes every entry or none.
	PutAll(ctx context.Context, entries []Entry) error
	Keys(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, key string) (bool, error)
}

// Entry is a key and response pair for PutAll.
type Entry struct {
	Key      string
	Response *Response
}

// MemoryStorage keeps stores in process memory.
type MemoryStorage struct {
	mu     sync.Mutex
	stores map[string]*memoryCache
	order  []string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{stores: make(map[string]*memoryCache)}
}

func (s *MemoryStorage) Open(_ context.Context, name string) (Cache, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.stores[name]; ok {
		return c, false, nil
	}
	c := &memoryCache{name: name, entries: make(map[string]*Response)}
	s.stores[name] = c
	s.order = append(s.order, name)
	return c, true, nil
}

func (s *MemoryStorage) Has(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.stores[name]
	return ok, nil
}

func (s *MemoryStorage) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...), nil
}

func (s *MemoryStorage) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stores[name]; !ok {
		return false, nil
	}
	delete(s.stores, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

type memoryCache struct {
	name    string
	mu      sync.RWMutex
	entries map[string]*Response
	order   []string
}

func (c *memoryCache) Name() string { return c.name }

func (c *memoryCache) Match(_ context.Context, key string) (*Response, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return r.Clone(), true, nil
}

func (c *memoryCache) Put(_ context.Context, key string, r *Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(key, r)
	return nil
}

func (c *memoryCache) PutAll(_ context.Context, entries []Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		c.put(e.Key, e.Response)
	}
	return nil
}

func (c *memoryCache) put(key string, r *Response) {
	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = r.Clone()
}

func (c *memoryCache) Keys(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...), nil
}

func (c *memoryCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return false, nil
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true, nil
}
