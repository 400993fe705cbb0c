package search

// Part is a piece of a highlighted text fragment. Offset is the byte offset
// of Text within the original fragment.
type Part struct {
	Text   string `json:"text"`
	Match  bool   `json:"match"`
	Offset int    `json:"offset"`
}

// Highlight splits text into alternating non-match and match parts, left to
// right, without overlaps. The query is taken literally. An empty query or
// empty text yields a single non-match part.
func Highlight(text, query string) []Part {
	if query == "" || text == "" {
		return []Part{{Text: text}}
	}
	var parts []Part
	last := 0
	for {
		i, n := indexFold(text, query, last)
		if i < 0 {
			break
		}
		if i > last {
			parts = append(parts, Part{Text: text[last:i], Offset: last})
		}
		parts = append(parts, Part{Text: text[i : i+n], Match: true, Offset: i})
		last = i + n
	}
	if last < len(text) || len(parts) == 0 {
		parts = append(parts, Part{Text: text[last:], Offset: last})
	}
	return parts
}

// Count returns the number of non-overlapping occurrences of query in text.
func Count(text, query string) int {
	if query == "" {
		return 0
	}
	c := 0
	for last := 0; ; {
		i, n := indexFold(text, query, last)
		if i < 0 {
			return c
		}
		c++
		last = i + n
	}
}

// Matches returns only the matching parts.
func Matches(text, query string) []Part {
	var out []Part
	for _, p := range Highlight(text, query) {
		if p.Match {
			out = append(out, p)
		}
	}
	return out
}
