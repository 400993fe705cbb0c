package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "emsguide",
	Short: "Offline-first viewer for EMS treatment guidelines",
	Long: `emsguide serves a book of emergency medical service guidelines as a
searchable accordion viewer. It runs as an HTTP server with an offline
asset cache, an interactive terminal UI, a static site generator and an
MCP server for AI agents.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".emsguide.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
