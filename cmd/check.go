package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/emsguide/internal/guide"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the dataset",
	Long: `Reports duplicate ids within a level and entries without titles. With
--assets, every image the dataset references must also exist under the
given directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, doc, err := setup()
		if err != nil {
			return err
		}
		assets, _ := cmd.Flags().GetString("assets")
		n := checkDocument(cmd.OutOrStdout(), doc, assets)
		if n > 0 {
			return fmt.Errorf("dataset has %d problem(s)", n)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d guidelines, no problems found\n", len(doc.Entries))
		return nil
	},
}

func init() {
	checkCmd.Flags().String("assets", "", "directory the dataset's image paths are relative to")
	rootCmd.AddCommand(checkCmd)
}

// checkDocument prints every problem found and returns how many there were.
func checkDocument(w io.Writer, doc *guide.Document, assetDir string) int {
	problems := doc.Validate()
	if assetDir != "" {
		for _, img := range doc.Images() {
			if _, err := os.Stat(filepath.Join(assetDir, filepath.FromSlash(img))); err != nil {
				problems = append(problems, guide.Problem{Path: img, Message: "image not found"})
			}
		}
	}
	for _, p := range problems {
		fmt.Fprintln(w, p)
	}
	return len(problems)
}
