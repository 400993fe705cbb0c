package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/ziadkadry99/emsguide/internal/config"
	"github.com/ziadkadry99/emsguide/internal/db"
	"github.com/ziadkadry99/emsguide/internal/expansion"
	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/logging"
	"github.com/ziadkadry99/emsguide/internal/manifest"
	"github.com/ziadkadry99/emsguide/internal/offline"
	"github.com/ziadkadry99/emsguide/internal/progress"
	"github.com/ziadkadry99/emsguide/internal/viewer"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `emsguide init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the process logger. Logs always go to stderr so that
// stdout stays free for command output and the MCP protocol.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(cfg.Log, verbose, os.Stderr)
}

// setup loads the config, the logger and the dataset most commands need.
func setup() (*config.Config, *slog.Logger, *guide.Document, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	doc, err := guide.Load(cfg.Dataset)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Debug("dataset loaded", "path", cfg.Dataset, "entries", len(doc.Entries))
	return cfg, log, doc, nil
}

func expansionOptions(cfg *config.Config) expansion.Options {
	return expansion.Options{CollapseTopOnClear: cfg.Viewer.CollapseTopOnClear}
}

func sessionOptions(cfg *config.Config, log *slog.Logger) viewer.Options {
	return viewer.Options{
		SettleDelay: cfg.Viewer.SettleDelay,
		Expansion:   expansionOptions(cfg),
		Logger:      log,
	}
}

// loadManifest reads the precache manifest. When the file does not exist
// one is derived from the images the dataset references.
func loadManifest(cfg *config.Config, doc *guide.Document) (*manifest.Manifest, error) {
	m, err := manifest.Load(cfg.ManifestPath())
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		m, err = manifest.Scan(manifest.ScanConfig{
			Version: cfg.Cache.Generation,
			Origin:  cfg.Cache.Origin,
			Images:  doc.Images(),
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if m.Version == "" {
		m.Version = cfg.Cache.Generation
	}
	if m.Origin == "" {
		m.Origin = cfg.Cache.Origin
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// cache is an offline manager together with the database behind it.
type cache struct {
	*offline.Manager
	db       *db.DB
	manifest *manifest.Manifest
}

// Close drains pending cache writes and closes the database.
func (c *cache) Close() error {
	if err := c.Manager.Close(); err != nil {
		return err
	}
	return c.db.Close()
}

// openCache opens the cache database and a manager for the manifest's
// generation. rep may be nil.
func openCache(cfg *config.Config, doc *guide.Document, log *slog.Logger, rep progress.Reporter) (*cache, error) {
	m, err := loadManifest(cfg, doc)
	if err != nil {
		return nil, fmt.Errorf("loading precache manifest: %w", err)
	}
	urls, err := m.Resolve()
	if err != nil {
		return nil, err
	}

	d, err := db.Open(cfg.DBPath())
	if err != nil {
		return nil, err
	}

	net := &offline.NetworkFetcher{
		Client: &http.Client{Timeout: cfg.Cache.FetchTimeout},
		Origin: m.Origin,
	}
	mgr, err := offline.New(offline.NewSQLStorage(d), net, offline.Options{
		Generation:  m.Version,
		URLs:        urls,
		Concurrency: cfg.Cache.Concurrency,
		CacheOpaque: cfg.Cache.CacheOpaque,
		Logger:      log,
		Progress:    rep,
	})
	if err != nil {
		d.Close()
		return nil, err
	}
	return &cache{Manager: mgr, db: d, manifest: m}, nil
}
