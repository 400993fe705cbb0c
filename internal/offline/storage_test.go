package offline

import (
	"context"
	"net/http"
	"testing"

	"github.com/ziadkadry99/emsguide/internal/db"
)

func setupSQLStorage(t *testing.T) *SQLStorage {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return NewSQLStorage(d)
}

func storages(t *testing.T) map[string]Storage {
	return map[string]Storage{
		"memory": NewMemoryStorage(),
		"sql":    setupSQLStorage(t),
	}
}

func TestStorage_OpenHasKeysDelete(t *testing.T) {
	for name, s := range storages(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, created, err := s.Open(ctx, "b")
			if err != nil || !created {
				t.Fatalf("Open(b): created=%v err=%v", created, err)
			}
			if _, created, _ := s.Open(ctx, "b"); created {
				t.Error("second Open should not report created")
			}
			s.Open(ctx, "a")
			s.Open(ctx, "c")

			keys, err := s.Keys(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if got := join(keys); got != "b,a,c" {
				t.Errorf("keys: got %s, want creation order b,a,c", got)
			}

			ok, err := s.Delete(ctx, "a")
			if err != nil || !ok {
				t.Fatalf("Delete(a): ok=%v err=%v", ok, err)
			}
			if ok, _ := s.Delete(ctx, "a"); ok {
				t.Error("deleting a missing store should report false")
			}
			if has, _ := s.Has(ctx, "a"); has {
				t.Error("a should be gone")
			}
			if has, _ := s.Has(ctx, "b"); !has {
				t.Error("b should remain")
			}
		})
	}
}

func TestCache_PutMatch(t *testing.T) {
	for name, s := range storages(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c, _, err := s.Open(ctx, "v1")
			if err != nil {
				t.Fatal(err)
			}
			if c.Name() != "v1" {
				t.Errorf("name: got %q", c.Name())
			}

			in := &Response{
				URL:        "https://app.example/a.png",
				Status:     200,
				StatusText: "OK",
				Type:       TypeBasic,
				Header:     http.Header{"Content-Type": {"image/png"}},
				Body:       []byte{1, 2, 3},
			}
			if err := c.Put(ctx, in.URL, in); err != nil {
				t.Fatalf("Put: %v", err)
			}
			in.Body[0] = 9 // stored copy must be independent

			got, ok, err := c.Match(ctx, in.URL)
			if err != nil || !ok {
				t.Fatalf("Match: ok=%v err=%v", ok, err)
			}
			if got.Status != 200 || got.Type != TypeBasic || got.Header.Get("Content-Type") != "image/png" {
				t.Errorf("unexpected response: %+v", got)
			}
			if len(got.Body) != 3 || got.Body[0] != 1 {
				t.Errorf("body: got %v, want [1 2 3]", got.Body)
			}

			if _, ok, _ := c.Match(ctx, "https://app.example/none"); ok {
				t.Error("unexpected hit")
			}
		})
	}
}

func TestCache_PutAllAndDelete(t *testing.T) {
	for name, s := range storages(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c, _, _ := s.Open(ctx, "v1")
			entries := []Entry{
				{Key: "https://a/1", Response: &Response{Status: 200, Type: TypeBasic}},
				{Key: "https://a/2", Response: &Response{Status: 200, Type: TypeOpaque}},
				{Key: "https://a/1", Response: &Response{Status: 201, Type: TypeBasic}},
			}
			if err := c.PutAll(ctx, entries); err != nil {
				t.Fatalf("PutAll: %v", err)
			}
			keys, _ := c.Keys(ctx)
			if got := join(keys); got != "https://a/1,https://a/2" {
				t.Errorf("keys: got %s", got)
			}
			r, _, _ := c.Match(ctx, "https://a/1")
			if r.Status != 201 {
				t.Errorf("later entry should win: got %d", r.Status)
			}

			ok, err := c.Delete(ctx, "https://a/1")
			if err != nil || !ok {
				t.Fatalf("Delete: ok=%v err=%v", ok, err)
			}
			if ok, _ := c.Delete(ctx, "https://a/1"); ok {
				t.Error("second delete should report false")
			}
		})
	}
}

func TestSQLStorage_DeleteRemovesEntries(t *testing.T) {
	ctx := context.Background()
	s := setupSQLStorage(t)
	c, _, _ := s.Open(ctx, "v1")
	_ = c.Put(ctx, "https://a/1", &Response{Status: 200})
	if _, err := s.Delete(ctx, "v1"); err != nil {
		t.Fatal(err)
	}

	fresh, created, _ := s.Open(ctx, "v1")
	if !created {
		t.Error("store should be recreated")
	}
	if _, ok, _ := fresh.Match(ctx, "https://a/1"); ok {
		t.Error("entries of a deleted store must not survive")
	}
}

func join(s []string) string {
	out := ""
	for i, v := range s {
		if i > 0 {
			out += ","
		}
		out += v
	}
	return out
}
