package cmd

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/emsguide/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing guideline search and lookup tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, doc, err := setup()
		if err != nil {
			return err
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		srv := mcpserver.NewServer(doc, expansionOptions(cfg), log)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
