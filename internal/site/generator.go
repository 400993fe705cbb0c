package site

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/ziadkadry99/emsguide/internal/manifest"
)

// Generate writes a static snapshot of the viewer to outDir: one page per
// open panel path, the preface and authors pages, the web app manifest,
// the search index and, when precache is non-nil, the precache manifest.
// It returns the number of HTML pages written.
func (s *Site) Generate(outDir string, precache *manifest.Manifest) (int, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, err
	}
	l := staticLinks()

	pages := []params{{match: -1}}
	for _, n := range s.outline {
		pages = append(pages, pathParams(n.Path))
		for _, sn := range n.Children {
			pages = append(pages, pathParams(sn.Path))
			for _, gn := range sn.Children {
				pages = append(pages, pathParams(gn.Path))
			}
		}
	}

	count := 0
	for _, p := range pages {
		if err := s.writePage(filepath.Join(outDir, staticName(p)), p, l); err != nil {
			return count, err
		}
		count++
	}
	for name, doc := range map[string]struct {
		heading string
		content template.HTML
	}{
		l.preface: {prefaceHeading, s.preface},
		l.authors: {authorsHeading, s.authors},
	} {
		if err := s.writeDoc(filepath.Join(outDir, name), doc.heading, doc.content, l); err != nil {
			return count, err
		}
		count++
	}

	files := map[string]string{
		"style.css": cssContent,
		"script.js": jsContent,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(body), 0o644); err != nil {
			return count, err
		}
	}

	webManifest, err := s.WebManifest("./").JSON()
	if err != nil {
		return count, err
	}
	if err := os.WriteFile(filepath.Join(outDir, "manifest.json"), webManifest, 0o644); err != nil {
		return count, err
	}
	if err := WriteSearchIndex(BuildSearchIndex(s.doc), filepath.Join(outDir, "search-index.json")); err != nil {
		return count, fmt.Errorf("writing search index: %w", err)
	}
	if precache != nil {
		if err := precache.Save(filepath.Join(outDir, "precache.yaml")); err != nil {
			return count, fmt.Errorf("writing precache manifest: %w", err)
		}
	}

	s.log.Info("static site generated", "dir", outDir, "pages", count)
	return count, nil
}

func (s *Site) writePage(path string, p params, l links) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := s.render(f, p, l); err != nil {
		return fmt.Errorf("rendering %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *Site) writeDoc(path, heading string, content template.HTML, l links) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.renderDoc(f, heading, content, l)
}
