package server

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/emsguide/internal/offline"
)

// hopHeaders are not copied from upstream responses.
var hopHeaders = map[string]bool{
	"Connection":        true,
	"Keep-Alive":        true,
	"Transfer-Encoding": true,
	"Upgrade":           true,
	"Content-Length":    true,
}

// handleAsset serves an application asset from the configured origin
// through the offline cache.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	if path == "" || strings.Contains(path, "..") {
		writeError(w, http.StatusBadRequest, "invalid asset path")
		return
	}
	target, err := url.JoinPath(s.cfg.Origin, path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset path")
		return
	}
	s.proxy(w, r, target, offline.ModeSameOrigin)
}

// handleFetch serves a cross-origin asset through the offline cache. Only
// hosts the precache manifest references may be reached.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		writeError(w, http.StatusBadRequest, "url must be an absolute http(s) URL")
		return
	}
	if !s.fetchHosts[u.Host] {
		s.log.Warn("fetch host not allowed", "host", u.Host)
		writeError(w, http.StatusForbidden, "host not allowed")
		return
	}
	mode := offline.Mode(r.URL.Query().Get("mode"))
	switch mode {
	case "":
		mode = offline.ModeCORS
	case offline.ModeNavigate, offline.ModeSameOrigin, offline.ModeCORS, offline.ModeNoCORS:
	default:
		writeError(w, http.StatusBadRequest, "unknown mode "+string(mode))
		return
	}
	s.proxy(w, r, u.String(), mode)
}

func (s *Server) proxy(w http.ResponseWriter, r *http.Request, target string, mode offline.Mode) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Header.Set("Sec-Fetch-Mode", string(mode))

	resp, err := s.client.Do(req)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, offline.ErrNetwork) {
			status = http.StatusGatewayTimeout
		}
		s.log.Warn("asset fetch failed", "url", target, "error", err)
		writeError(w, status, "asset unavailable")
		return
	}
	defer resp.Body.Close()

	for k, vs := range resp.Header {
		if hopHeaders[http.CanonicalHeaderKey(k)] {
			continue
		}
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}
