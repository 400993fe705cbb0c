package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/emsguide/internal/expansion"
	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/navigator"
	"github.com/ziadkadry99/emsguide/internal/render"
	"github.com/ziadkadry99/emsguide/internal/search"
)

// entrySummary is one row of the entries endpoint.
type entrySummary struct {
	ID       guide.ID `json:"id"`
	Code     string   `json:"code"`
	Tag      string   `json:"tag"`
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Parent   bool     `json:"parent"`
	Matches  int      `json:"matches"`
}

// entriesResponse is the JSON response for the entries endpoint.
type entriesResponse struct {
	Query   string         `json:"query"`
	Total   int            `json:"total"`
	Entries []entrySummary `json:"entries"`
}

// searchResponse is the JSON response for the search endpoint.
type searchResponse struct {
	Query     string               `json:"query"`
	Total     int                  `json:"total"`
	Matched   []guide.ID           `json:"matched"`
	Fragments []navigator.Fragment `json:"fragments"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"entries": len(s.doc.Entries),
		"cache":   s.cache.State().String(),
	})
}

// viewFor renders q with every panel it matches forced open.
func (s *Server) viewFor(q string) *render.View {
	st := expansion.State{}.ApplyQuery(s.doc, q, s.cfg.Expansion)
	return render.Build(s.doc, search.Filter(s.doc.Entries, q), q, st)
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	view := s.viewFor(q)

	counts := make(map[string]int)
	for _, f := range view.Fragments {
		counts[f.EntryID]++
	}

	resp := entriesResponse{Query: q, Total: len(view.Fragments), Entries: []entrySummary{}}
	for _, e := range search.Filter(s.doc.Entries, q) {
		resp.Entries = append(resp.Entries, entrySummary{
			ID:       e.ID,
			Code:     e.Code,
			Tag:      render.Tag(e),
			Category: e.Category,
			Title:    e.Title,
			Parent:   e.IsParent,
			Matches:  counts[e.ID.String()],
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	e, ok := s.doc.Find(guide.ID(chi.URLParam(r, "id")))
	if !ok {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	view := s.viewFor(q)
	resp := searchResponse{
		Query:     q,
		Total:     len(view.Fragments),
		Matched:   []guide.ID{},
		Fragments: view.Fragments,
	}
	for _, c := range view.Cards {
		resp.Matched = append(resp.Matched, c.ID)
	}
	if resp.Fragments == nil {
		resp.Fragments = []navigator.Fragment{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"entries": render.Outline(s.doc)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
