package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/emsguide/internal/expansion"
	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/render"
	"github.com/ziadkadry99/emsguide/internal/search"
)

var (
	bold      = color.New(color.Bold).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()
	matchText = color.New(color.FgHiYellow, color.Bold).SprintFunc()
	focusText = color.New(color.FgBlack, color.BgHiYellow).SprintFunc()
	headerFg  = color.New(color.FgCyan, color.Bold).SprintFunc()
	badgeFg   = color.New(color.FgMagenta).SprintFunc()
	linkFg    = color.New(color.FgBlue, color.Underline).SprintFunc()
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the guidelines",
	Long: `Lists every guideline whose code, category, title, keywords or content
contains the query, case-insensitively. With --full the matching
guidelines are printed with every matching panel open.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, doc, err := setup()
		if err != nil {
			return err
		}
		full, _ := cmd.Flags().GetBool("full")
		query := strings.Join(args, " ")
		return printSearch(cmd.OutOrStdout(), doc, query, expansionOptions(cfg), full)
	},
}

func init() {
	searchCmd.Flags().Bool("full", false, "print the matching guidelines in full")
	rootCmd.AddCommand(searchCmd)
}

func printSearch(w io.Writer, doc *guide.Document, query string, opts expansion.Options, full bool) error {
	entries := search.Filter(doc.Entries, query)
	st := expansion.State{}.ApplyQuery(doc, query, opts)
	view := render.Build(doc, entries, query, st)

	if full {
		out := view.Text(cliStyles(), render.NoMatch)
		for _, line := range out.Lines {
			fmt.Fprintln(w, line)
		}
	} else if len(entries) > 0 {
		counts := make(map[string]int)
		for _, f := range view.Fragments {
			counts[f.EntryID]++
		}

		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.MaxColWidth = 48
		tbl.AddRow(bold("ID"), bold("TAG"), bold("CATEGORY"), bold("TITLE"), bold("MATCHES"))
		for _, e := range entries {
			tbl.AddRow(
				e.ID,
				highlight(render.Tag(e), query),
				highlight(e.Category, query),
				highlight(e.Title, query),
				strconv.Itoa(counts[e.ID.String()]),
			)
		}
		fmt.Fprintln(w, tbl)
	}

	fmt.Fprintln(w, faint(fmt.Sprintf("%d of %d guidelines, %d matches", view.Matched, view.Total, len(view.Fragments))))
	return nil
}

// highlight colours every occurrence of query in s.
func highlight(s, query string) string {
	var b strings.Builder
	for _, p := range search.Highlight(s, query) {
		if p.Match {
			b.WriteString(matchText(p.Text))
		} else {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

func cliStyles() render.Styles {
	return render.Styles{
		Match: func(s string, focused bool) string {
			if focused {
				return focusText(s)
			}
			return matchText(s)
		},
		Tag:    func(_, s string) string { return bold("[" + s + "]") },
		Title:  func(s string) string { return bold(s) },
		Header: func(s string) string { return headerFg(s) },
		Badge:  func(_ guide.SegmentKind, label string) string { return badgeFg("<" + label + ">") },
		Link:   func(s string) string { return linkFg(s) },
		Muted:  func(s string) string { return faint(s) },
	}
}
