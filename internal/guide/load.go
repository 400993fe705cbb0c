package guide

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for dataset files that are neither YAML
// nor JSON.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

//go:embed sample.yaml
var sampleYAML []byte

// Default returns the dataset bundled with the binary.
func Default() (*Document, error) {
	return Parse(sampleYAML, ".yaml")
}

// Load reads a dataset from disk. The format is chosen by file extension.
// An empty path loads the bundled dataset.
func Load(path string) (*Document, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	doc, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a dataset. ext is a file extension such as ".yaml" or
// ".json".
func Parse(data []byte, ext string) (*Document, error) {
	var doc Document
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return &doc, nil
}
