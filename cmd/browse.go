package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/emsguide/internal/logging"
	"github.com/ziadkadry99/emsguide/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the guidelines in an interactive terminal UI",
	Long: `Opens the accordion viewer in the terminal. Press / to search, n and N
to step through matches, enter to open the selected header and q to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, doc, err := setup()
		if err != nil {
			return err
		}
		// Log lines would tear the alternate screen.
		return tui.Run(doc, sessionOptions(cfg, logging.Discard()))
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
