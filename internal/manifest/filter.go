package manifest

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// assetKinds maps the "@kind" shorthand accepted in include and exclude
// lists to file extensions.
var assetKinds = map[string][]string{
	"images":  {".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico"},
	"styles":  {".css"},
	"scripts": {".js", ".mjs"},
	"fonts":   {".woff", ".woff2", ".ttf", ".otf"},
	"pages":   {".html", ".webmanifest"},
}

// skippedExts are never precached: browsers only request them with
// devtools open.
var skippedExts = map[string]bool{".map": true}

// assetFilter selects files under an asset directory. An empty include
// list selects every asset.
type assetFilter struct {
	include []matcher
	exclude []matcher
}

// matcher is either an extension set or a doublestar pattern.
type matcher struct {
	exts    map[string]bool
	pattern string
}

func newAssetFilter(include, exclude []string) (*assetFilter, error) {
	inc, err := compileMatchers(include)
	if err != nil {
		return nil, fmt.Errorf("include: %w", err)
	}
	exc, err := compileMatchers(exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	return &assetFilter{include: inc, exclude: exc}, nil
}

func compileMatchers(patterns []string) ([]matcher, error) {
	out := make([]matcher, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if kind, ok := strings.CutPrefix(p, "@"); ok {
			exts, known := assetKinds[kind]
			if !known {
				return nil, fmt.Errorf("unknown asset kind %q", kind)
			}
			set := make(map[string]bool, len(exts))
			for _, e := range exts {
				set[e] = true
			}
			out = append(out, matcher{exts: set})
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
		out = append(out, matcher{pattern: p})
	}
	return out, nil
}

// match reports whether the slash-separated relPath matches. Patterns
// without a slash also match the base name, so "*.png" finds nested files.
func (m matcher) match(relPath string) bool {
	if m.exts != nil {
		return m.exts[strings.ToLower(path.Ext(relPath))]
	}
	if ok, _ := doublestar.Match(m.pattern, relPath); ok {
		return true
	}
	if !strings.Contains(m.pattern, "/") {
		ok, _ := doublestar.Match(m.pattern, path.Base(relPath))
		return ok
	}
	return false
}

// skipName reports names whose whole subtree is left out: dotfiles such
// as .git or .DS_Store, and installed packages.
func skipName(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules" || strings.EqualFold(name, "Thumbs.db")
}

// selects reports whether relPath is precached.
func (f *assetFilter) selects(relPath string) bool {
	if skippedExts[strings.ToLower(path.Ext(relPath))] {
		return false
	}
	if len(f.include) > 0 && !anyMatch(f.include, relPath) {
		return false
	}
	return !anyMatch(f.exclude, relPath)
}

func anyMatch(ms []matcher, relPath string) bool {
	for _, m := range ms {
		if m.match(relPath) {
			return true
		}
	}
	return false
}
