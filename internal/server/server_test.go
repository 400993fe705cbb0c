package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/offline"
	"github.com/ziadkadry99/emsguide/internal/site"
	"github.com/ziadkadry99/emsguide/internal/viewer"
)

type testEnv struct {
	srv      *Server
	upstream *httptest.Server
	hits     *atomic.Int32
	cache    *offline.Manager
}

func setupTest(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	doc, err := guide.Default()
	if err != nil {
		t.Fatalf("loading bundled dataset: %v", err)
	}
	st, err := site.New(doc, site.Options{})
	if err != nil {
		t.Fatalf("site.New: %v", err)
	}

	hits := &atomic.Int32{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/PIC/C4_transport.png" {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png-bytes"))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(upstream.Close)

	cache, err := offline.New(offline.NewMemoryStorage(),
		&offline.NetworkFetcher{Client: upstream.Client(), Origin: upstream.URL},
		offline.Options{Generation: "test-v1", URLs: []string{upstream.URL + "/PIC/C4_transport.png"}})
	if err != nil {
		t.Fatalf("offline.New: %v", err)
	}
	t.Cleanup(func() { cache.Close() })

	cfg.Origin = upstream.URL
	return &testEnv{
		srv:      New(cfg, doc, st, cache, nil),
		upstream: upstream,
		hits:     hits,
		cache:    cache,
	}
}

func (e *testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	env := setupTest(t, Config{})
	w := env.get(t, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", body["status"])
	}
	if body["cache"] != "parsed" {
		t.Errorf("expected cache state 'parsed', got %v", body["cache"])
	}
}

func TestCORSHeaders(t *testing.T) {
	env := setupTest(t, Config{AllowAll: true})

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	env.srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestEntriesEndpoint(t *testing.T) {
	env := setupTest(t, Config{})

	w := env.get(t, "/api/entries?q=C4")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp entriesResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Total != 3 || len(resp.Entries) != 2 {
		t.Fatalf("got total=%d entries=%d, want 3 and 2", resp.Total, len(resp.Entries))
	}
	if resp.Entries[0].ID != "3" || resp.Entries[0].Matches != 2 {
		t.Errorf("first entry: %+v", resp.Entries[0])
	}
	if resp.Entries[1].ID != "5" || resp.Entries[1].Matches != 1 || resp.Entries[1].Tag != "內科" {
		t.Errorf("second entry: %+v", resp.Entries[1])
	}

	w = env.get(t, "/api/entries")
	resp = entriesResponse{}
	_ = json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Entries) != 7 || resp.Total != 0 {
		t.Errorf("empty query: got %d entries, total %d", len(resp.Entries), resp.Total)
	}
}

func TestEntryEndpoint(t *testing.T) {
	env := setupTest(t, Config{})

	w := env.get(t, "/api/entries/5")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var e guide.Entry
	if err := json.NewDecoder(w.Body).Decode(&e); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if e.Code != "M" || len(e.SubItems) != 2 {
		t.Errorf("unexpected entry: %+v", e)
	}

	if w := env.get(t, "/api/entries/99"); w.Code != http.StatusNotFound {
		t.Errorf("unknown id: expected 404, got %d", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	env := setupTest(t, Config{})

	w := env.get(t, "/api/search?q=c4")
	var resp searchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Total != 3 || len(resp.Fragments) != 3 {
		t.Fatalf("got %d fragments, want 3", resp.Total)
	}
	if f := resp.Fragments[2]; f.Path != "5/52" || f.Field != "content[2]" || f.Text != "C4" {
		t.Errorf("last fragment: %+v", f)
	}

	if w := env.get(t, "/api/search"); w.Code != http.StatusBadRequest {
		t.Errorf("missing q: expected 400, got %d", w.Code)
	}
}

func TestOutlineEndpoint(t *testing.T) {
	env := setupTest(t, Config{})
	w := env.get(t, "/api/outline")
	if !strings.Contains(w.Body.String(), `"path":"6/62/621"`) {
		t.Errorf("outline should carry grandchild paths: %s", w.Body.String())
	}
}

func TestAssetGateway(t *testing.T) {
	env := setupTest(t, Config{})
	if err := env.cache.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	precached := env.hits.Load()

	w := env.get(t, "/assets/PIC/C4_transport.png")
	if w.Code != http.StatusOK || w.Body.String() != "png-bytes" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q", got)
	}
	if env.hits.Load() != precached {
		t.Error("precached asset should be served without the network")
	}

	env.upstream.Close()
	if w := env.get(t, "/assets/PIC/C4_transport.png"); w.Code != http.StatusOK {
		t.Errorf("offline: expected cached 200, got %d", w.Code)
	}
	if w := env.get(t, "/assets/PIC/missing.png"); w.Code == http.StatusOK {
		t.Error("offline miss should fail")
	}
}

func TestFetchValidation(t *testing.T) {
	env := setupTest(t, Config{})

	tests := []struct {
		target string
		want   int
	}{
		{"/fetch?url=ftp://example.com/x", http.StatusBadRequest},
		{"/fetch?url=/relative", http.StatusBadRequest},
		{"/fetch?url=" + env.upstream.URL + "/PIC/C4_transport.png&mode=bogus", http.StatusBadRequest},
		{"/fetch?url=" + env.upstream.URL + "/PIC/C4_transport.png&mode=no-cors", http.StatusOK},
		{"/fetch?url=" + env.upstream.URL + "/nothing", http.StatusNotFound},
	}
	for _, tt := range tests {
		if w := env.get(t, tt.target); w.Code != tt.want {
			t.Errorf("%s: got %d, want %d", tt.target, w.Code, tt.want)
		}
	}
}

func TestFetchRejectsUnlistedHosts(t *testing.T) {
	env := setupTest(t, Config{})
	ctx := context.Background()
	if err := env.cache.Start(ctx); err != nil {
		t.Fatalf("cache.Start: %v", err)
	}

	internal := &atomic.Int32{}
	admin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		internal.Add(1)
		_, _ = w.Write([]byte("internal-secret"))
	}))
	defer admin.Close()

	w := env.get(t, "/fetch?url="+admin.URL+"/admin/secret")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "internal-secret") {
		t.Error("unlisted host body must not be served")
	}
	if internal.Load() != 0 {
		t.Error("unlisted host must not be contacted")
	}

	env.cache.Wait()
	st, err := env.cache.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Entries != 1 {
		t.Errorf("cache entries: got %d, want 1", st.Entries)
	}
}

func TestFetchAllowsManifestHosts(t *testing.T) {
	var sawMode atomic.Value
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawMode.Store(r.Header.Get("Sec-Fetch-Mode"))
		_, _ = w.Write([]byte("font"))
	}))
	defer cdn.Close()

	env := setupTest(t, Config{FetchHosts: []string{strings.TrimPrefix(cdn.URL, "http://")}})
	w := env.get(t, "/fetch?url="+cdn.URL+"/font.woff2&mode=no-cors")
	if w.Code != http.StatusOK || w.Body.String() != "font" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
	if got, _ := sawMode.Load().(string); got != "" {
		t.Errorf("upstream saw Sec-Fetch-Mode %q", got)
	}
}

func TestSiteMounted(t *testing.T) {
	env := setupTest(t, Config{})
	w := env.get(t, "/?q=C4")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `<mark id="match-0"`) {
		t.Error("viewer page should mark matches")
	}
	if w := env.get(t, "/preface"); w.Code != http.StatusOK {
		t.Errorf("preface: got %d", w.Code)
	}
}

func readState(t *testing.T, conn *websocket.Conn, until func(viewer.Snapshot) bool) viewer.Snapshot {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("websocket read: %v", err)
		}
		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decoding message: %v", err)
		}
		if msg.Type == "error" {
			t.Fatalf("server error: %s", msg.Error)
		}
		if msg.State != nil && until(*msg.State) {
			return *msg.State
		}
	}
}

func TestWebSocketSession(t *testing.T) {
	env := setupTest(t, Config{SettleDelay: 20 * time.Millisecond})
	server := httptest.NewServer(env.srv.Router())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/session"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	initial := readState(t, conn, func(viewer.Snapshot) bool { return true })
	if initial.Session == "" || len(initial.Matched) != 7 {
		t.Fatalf("unexpected initial state: %+v", initial)
	}

	send := func(msg clientMessage) {
		t.Helper()
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatalf("websocket write: %v", err)
		}
	}

	send(clientMessage{Type: "query", Query: "C4"})
	counted := readState(t, conn, func(s viewer.Snapshot) bool { return s.Query == "C4" && s.Settled })
	if counted.Total != 3 || counted.Label != "0/3" {
		t.Errorf("after settle: total=%d label=%q", counted.Total, counted.Label)
	}

	send(clientMessage{Type: "next"})
	focused := readState(t, conn, func(s viewer.Snapshot) bool { return s.Current == 0 })
	if focused.Focused == nil || focused.Focused.EntryID != "3" {
		t.Errorf("focused fragment: %+v", focused.Focused)
	}

	send(clientMessage{Type: "toggle", Path: "5/52"})
	toggled := readState(t, conn, func(s viewer.Snapshot) bool { return s.Version > focused.Version })
	if toggled.Total != 2 || toggled.Current != -1 {
		t.Errorf("after toggle: total=%d current=%d", toggled.Total, toggled.Current)
	}
}

func TestWebSocketErrors(t *testing.T) {
	env := setupTest(t, Config{})
	server := httptest.NewServer(env.srv.Router())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/session"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := conn.WriteJSON(clientMessage{Type: "toggle", Path: "5//1"}); err != nil {
		t.Fatalf("websocket write: %v", err)
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("websocket read: %v", err)
		}
		var msg serverMessage
		_ = json.Unmarshal(data, &msg)
		if msg.Type == "error" {
			if !strings.Contains(msg.Error, "invalid toggle path") {
				t.Errorf("unexpected error: %q", msg.Error)
			}
			return
		}
	}
}

func TestRunShutsDown(t *testing.T) {
	env := setupTest(t, Config{Port: 0})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
