package site

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/render"
)

// SearchEntry is one top-level entry in the static search index.
type SearchEntry struct {
	ID       guide.ID `json:"id"`
	Path     string   `json:"path"`
	Tag      string   `json:"tag"`
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Keywords []string `json:"keywords,omitempty"`
	Content  string   `json:"content"`
}

// BuildSearchIndex flattens every entry of doc, including its sub entries
// and grandchildren, into one searchable record. Image lines are left out.
func BuildSearchIndex(doc *guide.Document) []SearchEntry {
	entries := make([]SearchEntry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		var parts []string
		parts = appendLines(parts, e.Content)
		parts = appendText(parts, e.Note)
		for _, s := range e.SubItems {
			parts = appendText(parts, s.Title)
			parts = appendLines(parts, s.Content)
			parts = appendText(parts, s.Note)
			for _, g := range s.GrandChildItems {
				parts = appendText(parts, g.Code)
				parts = appendText(parts, g.Title)
				parts = appendLines(parts, g.Content)
				parts = appendText(parts, g.Note)
			}
		}
		entries = append(entries, SearchEntry{
			ID:       e.ID,
			Path:     staticName(params{open: e.ID.String()}),
			Tag:      render.Tag(e),
			Category: e.Category,
			Title:    e.Title,
			Keywords: e.Keywords,
			Content:  strings.Join(parts, " "),
		})
	}
	return entries
}

func appendLines(parts, lines []string) []string {
	for _, l := range guide.ParseLines(lines) {
		switch l.Kind {
		case guide.LineImage, guide.LineSpacer:
		case guide.LineHeader:
			parts = appendText(parts, l.Text)
		default:
			parts = appendText(parts, strings.TrimSpace(l.Raw))
		}
	}
	return parts
}

func appendText(parts []string, s string) []string {
	if s == "" {
		return parts
	}
	return append(parts, s)
}

// WriteSearchIndex writes the search index as JSON to the given path.
func WriteSearchIndex(entries []SearchEntry, outputPath string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}
