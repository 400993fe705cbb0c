package cmd

import (
	"fmt"
	"io"

	"github.com/disiqueira/gotree/v3"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/render"
)

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Print the table of contents as a tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, doc, err := setup()
		if err != nil {
			return err
		}
		printOutline(cmd.OutOrStdout(), doc)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}

func printOutline(w io.Writer, doc *guide.Document) {
	tree := gotree.New(doc.Title + " " + doc.Subtitle)
	for _, n := range render.Outline(doc) {
		addOutlineNode(tree, n)
	}
	fmt.Fprint(w, tree.Print())
}

func addOutlineNode(t gotree.Tree, n *render.OutlineNode) {
	label := n.Path + " "
	if n.Label != "" {
		label += n.Label + " "
	}
	child := t.Add(label + n.Title)
	for _, c := range n.Children {
		addOutlineNode(child, c)
	}
}
