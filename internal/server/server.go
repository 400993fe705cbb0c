// Package server exposes the guideline viewer over HTTP: the rendered site,
// a read-only JSON API, the offline asset gateway and live viewer sessions
// over websockets.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/emsguide/internal/expansion"
	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/offline"
	"github.com/ziadkadry99/emsguide/internal/site"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool   // allow all CORS origins (dev mode)
	Origin   string // application origin the asset gateway fetches from

	// FetchHosts are the hosts /fetch may reach besides the origin's,
	// normally every host in the precache manifest.
	FetchHosts []string

	// Live session behaviour.
	SettleDelay time.Duration
	Expansion   expansion.Options
}

// Server serves one document.
type Server struct {
	cfg        Config
	doc        *guide.Document
	site       *site.Site
	cache      *offline.Manager
	client     *http.Client
	fetchHosts map[string]bool
	log        *slog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. Every asset request goes through cache.
func New(cfg Config, doc *guide.Document, st *site.Site, cache *offline.Manager, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		cfg:    cfg,
		doc:    doc,
		site:   st,
		cache:  cache,
		client: &http.Client{Transport: &offline.Transport{Manager: cache}},
		log:    log,
	}
	s.fetchHosts = allowedHosts(cfg)
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.log))
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", s.handleHealth)

	// Sessions are long lived and must not sit behind the request timeout.
	r.Get("/ws/session", s.handleSession)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/api/entries", s.handleEntries)
		r.Get("/api/entries/{id}", s.handleEntry)
		r.Get("/api/search", s.handleSearch)
		r.Get("/api/outline", s.handleOutline)
		r.Get("/assets/*", s.handleAsset)
		r.Get("/fetch", s.handleFetch)

		if s.site != nil {
			r.Mount("/", s.site.Handler())
		}
	})

	return r
}

func allowedHosts(cfg Config) map[string]bool {
	hosts := make(map[string]bool, len(cfg.FetchHosts)+1)
	if u, err := url.Parse(cfg.Origin); err == nil && u.Host != "" {
		hosts[u.Host] = true
	}
	for _, h := range cfg.FetchHosts {
		hosts[h] = true
	}
	return hosts
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Run listens on the configured port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
