// Package manifest describes the fixed set of assets stored on install and
// builds that set from a site's HTML entry point and asset directory.
package manifest

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest is a precache list for one cache generation.
type Manifest struct {
	// Version names the cache generation, e.g. "tainan-ems-v1-0-1".
	Version string `yaml:"version" json:"version"`
	// Origin is the base for relative URLs.
	Origin string   `yaml:"origin,omitempty" json:"origin,omitempty"`
	URLs   []string `yaml:"urls" json:"urls"`
}

// Load reads a manifest from a YAML file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// Save writes the manifest as YAML, creating parent directories.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Resolve returns the absolute URL of every entry, in order and without
// duplicates. Relative entries need an Origin.
func (m *Manifest) Resolve() ([]string, error) {
	var base *url.URL
	if m.Origin != "" {
		b, err := url.Parse(m.Origin)
		if err != nil {
			return nil, fmt.Errorf("invalid origin %q: %w", m.Origin, err)
		}
		if b.Path == "" {
			b.Path = "/"
		}
		base = b
	}

	seen := make(map[string]bool, len(m.URLs))
	out := make([]string, 0, len(m.URLs))
	for _, raw := range m.URLs {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid url %q: %w", raw, err)
		}
		if !u.IsAbs() {
			if base == nil {
				return nil, fmt.Errorf("relative url %q needs an origin", raw)
			}
			u = base.ResolveReference(u)
		}
		s := u.String()
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

// Hosts returns the host of the origin followed by every other host the
// entries reference, without duplicates.
func (m *Manifest) Hosts() ([]string, error) {
	urls, err := m.Resolve()
	if err != nil {
		return nil, err
	}
	if m.Origin != "" {
		urls = append([]string{m.Origin}, urls...)
	}
	seen := make(map[string]bool)
	var hosts []string
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || seen[u.Host] {
			continue
		}
		seen[u.Host] = true
		hosts = append(hosts, u.Host)
	}
	return hosts, nil
}

// Validate checks the manifest is usable for an install.
func (m *Manifest) Validate() error {
	if m.Version == "" {
		return errors.New("manifest: version is required")
	}
	_, err := m.Resolve()
	return err
}
