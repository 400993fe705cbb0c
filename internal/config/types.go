package config

import "time"

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogJSON LogFormat = "json"
	LogText LogFormat = "text"
)

// Config is the top-level emsguide configuration, corresponding to .emsguide.yml.
type Config struct {
	Dataset string       `yaml:"dataset" koanf:"dataset"`
	DataDir string       `yaml:"data_dir" koanf:"data_dir"`
	Server  ServerConfig `yaml:"server" koanf:"server"`
	Cache   CacheConfig  `yaml:"cache" koanf:"cache"`
	Viewer  ViewerConfig `yaml:"viewer" koanf:"viewer"`
	Log     LogConfig    `yaml:"log" koanf:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"` // CORS for any origin
}

// CacheConfig holds offline cache settings.
type CacheConfig struct {
	Manifest     string        `yaml:"manifest" koanf:"manifest"`
	Generation   string        `yaml:"generation" koanf:"generation"`
	Origin       string        `yaml:"origin" koanf:"origin"`
	CacheOpaque  bool          `yaml:"cache_opaque" koanf:"cache_opaque"`
	Concurrency  int           `yaml:"concurrency" koanf:"concurrency"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" koanf:"fetch_timeout"`
}

// ViewerConfig holds interactive session settings.
type ViewerConfig struct {
	SettleDelay        time.Duration `yaml:"settle_delay" koanf:"settle_delay"`
	CollapseTopOnClear bool          `yaml:"collapse_top_on_clear" koanf:"collapse_top_on_clear"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string    `yaml:"level" koanf:"level"`
	Format LogFormat `yaml:"format" koanf:"format"`
}
