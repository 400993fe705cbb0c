package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// ScanConfig controls Scan.
type ScanConfig struct {
	Version string
	Origin  string
	// Start lists URLs always precached first, e.g. "/" and "/index.html".
	Start []string
	// EntryHTML is an HTML file whose referenced scripts, stylesheets,
	// icons and images are precached.
	EntryHTML string
	// AssetDir is walked for files matching Include and not Exclude. Paths
	// are precached relative to the origin root. Entries are doublestar
	// patterns or an asset kind such as "@images" or "@fonts".
	AssetDir string
	Include  []string
	Exclude  []string
	// Images are dataset image references such as "./PIC/C4.png".
	Images []string
}

// Scan builds a manifest from the configured sources. URLs keep source
// order: Start, EntryHTML references, AssetDir files (sorted), Images.
func Scan(cfg ScanConfig) (*Manifest, error) {
	m := &Manifest{Version: cfg.Version, Origin: cfg.Origin}
	m.URLs = append(m.URLs, cfg.Start...)

	if cfg.EntryHTML != "" {
		refs, err := htmlRefs(cfg.EntryHTML)
		if err != nil {
			return nil, err
		}
		m.URLs = append(m.URLs, refs...)
	}

	if cfg.AssetDir != "" {
		files, err := walkAssets(cfg.AssetDir, cfg.Include, cfg.Exclude)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			m.URLs = append(m.URLs, "/"+f)
		}
	}

	for _, img := range cfg.Images {
		m.URLs = append(m.URLs, assetPath(img))
	}

	m.URLs = dedupe(m.URLs)
	return m, nil
}

// assetPath turns a dataset reference like "./PIC/x.png" into a root
// relative path.
func assetPath(ref string) string {
	if strings.Contains(ref, "://") {
		return ref
	}
	return path.Clean("/" + strings.TrimPrefix(ref, "./"))
}

// htmlRefs returns the asset references of an HTML document in document
// order.
func htmlRefs(file string) ([]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", file, err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}

	var refs []string
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if ref := elementRef(n); ref != "" && !strings.HasPrefix(ref, "data:") && !strings.HasPrefix(ref, "#") {
				refs = append(refs, ref)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return refs, nil
}

func elementRef(n *html.Node) string {
	switch n.Data {
	case "img", "script":
		return attr(n, "src")
	case "link":
		for _, rel := range strings.Fields(strings.ToLower(attr(n, "rel"))) {
			switch rel {
			case "stylesheet", "manifest", "icon", "apple-touch-icon":
				return attr(n, "href")
			}
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// walkAssets returns slash-separated paths relative to root, sorted.
func walkAssets(root string, include, exclude []string) ([]string, error) {
	filter, err := newAssetFilter(include, exclude)
	if err != nil {
		return nil, err
	}
	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == root {
			return nil
		}
		if skipName(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if !filter.selects(filepath.ToSlash(rel)) {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
