package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/emsguide/internal/expansion"
	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/render"
	"github.com/ziadkadry99/emsguide/internal/search"
)

// handleSearchGuidelines filters the dataset and returns each match
// rendered with every matching panel open.
func (s *Server) handleSearchGuidelines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return mcp.NewToolResultError("query must not be empty"), nil
	}

	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	entries := search.Filter(s.doc.Entries, query)
	s.log.Debug("search_guidelines", "query", query, "matched", len(entries))
	if len(entries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No guidelines match %q. Try a guideline code such as C1 or a shorter phrase.", query)), nil
	}

	return mcp.NewToolResultText(s.formatSearchResults(query, entries, limit)), nil
}

// handleGetGuideline returns the full text of an entry, sub entry or
// grandchild addressed by id or containment path.
func (s *Server) handleGetGuideline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	parts := strings.Split(strings.Trim(strings.TrimSpace(id), "/"), "/")
	e, ok := s.doc.Find(guide.ID(parts[0]))
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf(
			"No guideline with id %q. Use list_guidelines to see the available ids.",
			parts[0],
		)), nil
	}

	var sb strings.Builder
	switch len(parts) {
	case 1:
		writeEntry(&sb, e)
	case 2, 3:
		sub, ok := e.FindSub(guide.ID(parts[1]))
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("guideline %s has no sub entry %q", e.ID, parts[1])), nil
		}
		if len(parts) == 2 {
			writeSub(&sb, e.ID.String(), sub)
			break
		}
		g, ok := findGrand(sub, guide.ID(parts[2]))
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("sub entry %s/%s has no item %q", e.ID, sub.ID, parts[2])), nil
		}
		writeGrand(&sb, e.ID.String()+"/"+sub.ID.String(), g)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid guideline path %q", id)), nil
	}

	return mcp.NewToolResultText(strings.TrimLeft(sb.String(), "\n")), nil
}

// handleListGuidelines returns the table of contents.
func (s *Server) handleListGuidelines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", s.doc.Title, s.doc.Subtitle)
	fmt.Fprintf(&sb, "%d guideline(s):\n\n", len(s.doc.Entries))
	writeOutline(&sb, render.Outline(s.doc), 0)
	return mcp.NewToolResultText(sb.String()), nil
}

// formatSearchResults renders every matched entry as plain text with the
// matches bracketed, for AI agent consumption.
func (s *Server) formatSearchResults(query string, entries []guide.Entry, limit int) string {
	st := expansion.State{}.ApplyQuery(s.doc, query, s.opts)
	view := render.Build(s.doc, entries, query, st)

	counts := make(map[string]int)
	for _, f := range view.Fragments {
		counts[f.EntryID]++
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d guideline(s) with %d match(es) for %q:\n", len(entries), len(view.Fragments), query)

	for i, e := range entries {
		if i >= limit {
			fmt.Fprintf(&sb, "\n(%d more not shown)\n", len(entries)-limit)
			break
		}
		fmt.Fprintf(&sb, "\n--- %s %s ---\n", render.Tag(e), e.Title)
		fmt.Fprintf(&sb, "ID: %s\n", e.ID)
		fmt.Fprintf(&sb, "Category: %s\n", e.Category)
		fmt.Fprintf(&sb, "Matches: %d\n", counts[e.ID.String()])

		card := render.Build(s.doc, []guide.Entry{e}, query, st).Text(render.PlainStyles(), render.NoMatch)
		sb.WriteString("\n")
		sb.WriteString(strings.Join(card.Lines, "\n"))
		sb.WriteString("\n")
	}

	return sb.String()
}

func findGrand(s guide.SubEntry, id guide.ID) (guide.GrandChildEntry, bool) {
	for _, g := range s.GrandChildItems {
		if g.ID == id {
			return g, true
		}
	}
	return guide.GrandChildEntry{}, false
}

func writeOutline(sb *strings.Builder, nodes []*render.OutlineNode, depth int) {
	for _, n := range nodes {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(n.Path)
		if n.Label != "" {
			sb.WriteString(" " + n.Label)
		}
		sb.WriteString(" " + n.Title + "\n")
		writeOutline(sb, n.Children, depth+1)
	}
}

func writeEntry(sb *strings.Builder, e guide.Entry) {
	fmt.Fprintf(sb, "# %s %s\n", render.Tag(e), e.Title)
	fmt.Fprintf(sb, "ID: %s\n", e.ID)
	fmt.Fprintf(sb, "Category: %s\n", e.Category)
	if len(e.Keywords) > 0 {
		fmt.Fprintf(sb, "Keywords: %s\n", strings.Join(e.Keywords, ", "))
	}
	if !e.IsParent && len(e.Content) == 0 {
		sb.WriteString("\n" + render.PendingLabel + "\n")
	}
	writeContent(sb, e.Content)
	writeNote(sb, render.NoteLabel, e.Note)
	for _, sub := range e.SubItems {
		writeSub(sb, e.ID.String(), sub)
	}
}

func writeSub(sb *strings.Builder, entry string, s guide.SubEntry) {
	path := entry + "/" + s.ID.String()
	fmt.Fprintf(sb, "\n## %s\n", s.Title)
	fmt.Fprintf(sb, "Path: %s\n", path)
	writeImages(sb, s.Image)
	writeContent(sb, s.Content)
	writeImages(sb, s.BottomImage, s.BottomImage2)
	writeNote(sb, render.SubNotePrefix, s.Note)
	for _, g := range s.GrandChildItems {
		writeGrand(sb, path, g)
	}
}

func writeGrand(sb *strings.Builder, sub string, g guide.GrandChildEntry) {
	fmt.Fprintf(sb, "\n### %s\n", strings.TrimSpace(g.Code+" "+g.Title))
	fmt.Fprintf(sb, "Path: %s/%s\n", sub, g.ID)
	writeImages(sb, g.Image, g.Image2)
	writeContent(sb, g.Content)
	writeImages(sb, g.BottomImage, g.BottomImage2)
	writeNote(sb, render.GrandNoteLabel, g.Note)
}

func writeContent(sb *strings.Builder, lines []string) {
	if len(lines) == 0 {
		return
	}
	sb.WriteString("\n")
	for _, raw := range lines {
		sb.WriteString(plainLine(guide.ParseLine(raw)))
		sb.WriteString("\n")
	}
}

func writeImages(sb *strings.Builder, assets ...string) {
	for _, a := range assets {
		if a != "" {
			fmt.Fprintf(sb, "\n[image: %s]\n", a)
		}
	}
}

func writeNote(sb *strings.Builder, label, note string) {
	if note != "" {
		fmt.Fprintf(sb, "\n%s%s\n", label, note)
	}
}

// plainLine flattens a parsed content line, spelling badges out in
// parentheses.
func plainLine(l guide.Line) string {
	switch l.Kind {
	case guide.LineImage:
		return "[image: " + l.Asset + "]"
	case guide.LineHeader:
		return strings.TrimSpace(l.Text)
	case guide.LineSpacer:
		return ""
	}
	var b strings.Builder
	for _, seg := range l.Segments {
		switch seg.Kind {
		case guide.SegmentParamedic:
			b.WriteString("(" + render.ParamedicBadge + ")")
		case guide.SegmentOnlineOrder:
			b.WriteString("(" + render.OrderBadge + ")")
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}
