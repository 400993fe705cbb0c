package config

import (
	"path/filepath"
	"time"
)

// DefaultGeneration is the cache generation of the bundled assets.
const DefaultGeneration = "tainan-ems-v1-0-1"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir: ".emsguide",
		Server: ServerConfig{
			Port: 8080,
		},
		Cache: CacheConfig{
			Generation:   DefaultGeneration,
			Origin:       "http://localhost:8080",
			CacheOpaque:  true,
			Concurrency:  4,
			FetchTimeout: 30 * time.Second,
		},
		Viewer: ViewerConfig{
			SettleDelay: 600 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogJSON,
		},
	}
}

// DBPath returns the path of the cache database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

// ManifestPath returns the precache manifest path, defaulting to one inside
// the data directory.
func (c *Config) ManifestPath() string {
	if c.Cache.Manifest != "" {
		return c.Cache.Manifest
	}
	return filepath.Join(c.DataDir, "precache.yml")
}
