package mcp

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/emsguide/internal/expansion"
	"github.com/ziadkadry99/emsguide/internal/guide"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	doc, err := guide.Default()
	if err != nil {
		t.Fatalf("loading sample dataset: %v", err)
	}
	return NewServer(doc, expansion.Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if len(r.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := r.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", r.Content[0])
	}
	return tc.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"search_guidelines", searchGuidelinesTool, "search_guidelines"},
		{"get_guideline", getGuidelineTool, "get_guideline"},
		{"list_guidelines", listGuidelinesTool, "list_guidelines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := newTestServer(t)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if len(srv.doc.Entries) != 7 {
		t.Errorf("entries = %d, want 7", len(srv.doc.Entries))
	}
}

func TestHandleSearchGuidelines(t *testing.T) {
	srv := newTestServer(t)

	t.Run("code query", func(t *testing.T) {
		result := call(t, srv.handleSearchGuidelines, map[string]any{"query": "C4"})
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := resultText(t, result)
		for _, want := range []string{
			"Found 2 guideline(s) with 3 match(es)",
			"ID: 3",
			"Matches: 2",
			"ID: 5",
			"Matches: 1",
			"[C4]",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("result missing %q:\n%s", want, text)
			}
		}
	})

	t.Run("limit", func(t *testing.T) {
		result := call(t, srv.handleSearchGuidelines, map[string]any{"query": "C4", "limit": 1})
		text := resultText(t, result)
		if strings.Contains(text, "ID: 5") {
			t.Errorf("limit 1 should omit the second guideline:\n%s", text)
		}
		if !strings.Contains(text, "(1 more not shown)") {
			t.Errorf("result should report the omitted guideline:\n%s", text)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		result := call(t, srv.handleSearchGuidelines, map[string]any{"query": "zzz"})
		if result.IsError {
			t.Error("empty results should not be an error")
		}
		if text := resultText(t, result); !strings.Contains(text, "No guidelines match") {
			t.Errorf("unexpected text: %q", text)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		result := call(t, srv.handleSearchGuidelines, map[string]any{})
		if !result.IsError {
			t.Error("expected error for missing query")
		}
	})

	t.Run("blank query", func(t *testing.T) {
		result := call(t, srv.handleSearchGuidelines, map[string]any{"query": "  "})
		if !result.IsError {
			t.Error("expected error for blank query")
		}
	})
}

func TestHandleGetGuideline(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name    string
		id      string
		want    []string
		wantErr bool
	}{
		{
			name: "leaf entry",
			id:   "2",
			want: []string{"# C1 現場評估", "1. 確認現場安全並做好個人防護。", "[image: ./PIC/On-site assessment.png]", "注意事項：現場不安全時不得進入。"},
		},
		{
			name: "online order badge",
			id:   "3",
			want: []string{"2. 到院前通報醫院 (線上醫囑)"},
		},
		{
			name: "parent entry",
			id:   "5",
			want: []string{"## M1 意識改變", "Path: 5/51", "### M1-1 低血糖處置", "## M7 疑似腦中風"},
		},
		{
			name: "grandchild path",
			id:   "5/51/511",
			want: []string{"### M1-1 低血糖處置", "(EMT-P)", "注意：給藥後 5 分鐘再次量測血糖。"},
		},
		{
			name: "sub path",
			id:   "6/62",
			want: []string{"## T6 燒燙傷", "[image: ./PIC/T6_burn_1.png]"},
		},
		{name: "unknown entry", id: "99", wantErr: true},
		{name: "unknown sub", id: "5/99", wantErr: true},
		{name: "unknown grandchild", id: "5/51/9", wantErr: true},
		{name: "too deep", id: "5/51/511/1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := call(t, srv.handleGetGuideline, map[string]any{"id": tt.id})
			if result.IsError != tt.wantErr {
				t.Fatalf("IsError = %v, want %v: %v", result.IsError, tt.wantErr, result.Content)
			}
			text := resultText(t, result)
			for _, want := range tt.want {
				if !strings.Contains(text, want) {
					t.Errorf("result missing %q:\n%s", want, text)
				}
			}
		})
	}

	t.Run("missing id", func(t *testing.T) {
		result := call(t, srv.handleGetGuideline, map[string]any{})
		if !result.IsError {
			t.Error("expected error for missing id")
		}
	})
}

func TestHandleListGuidelines(t *testing.T) {
	srv := newTestServer(t)
	result := call(t, srv.handleListGuidelines, map[string]any{})
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	text := resultText(t, result)
	for _, want := range []string{
		"7 guideline(s):",
		"1 壹、依據 緊急醫療救護法\n",
		"5 內科 內科急症處置\n",
		"  5/51 M1 意識改變\n",
		"    5/51/511 M1-1 低血糖處置\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("outline missing %q:\n%s", want, text)
		}
	}
}

func TestPlainLine(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"IMAGE:./PIC/a.png", "[image: ./PIC/a.png]"},
		{"【標題】", "【標題】"},
		{"", ""},
		{"3. 建立進階呼吸道 [P]", "3. 建立進階呼吸道 (EMT-P)"},
	}
	for _, tt := range tests {
		if got := plainLine(guide.ParseLine(tt.raw)); got != tt.want {
			t.Errorf("plainLine(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
