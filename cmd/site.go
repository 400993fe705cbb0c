package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/emsguide/internal/site"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Generate a static snapshot of the viewer",
	Long: `Generates a self-contained static HTML site: one page per open panel,
the preface and authors pages, the web app manifest, a search index and
the precache manifest.`,
	RunE: runSite,
}

func init() {
	siteCmd.Flags().String("output", "", "override output directory (defaults to {data_dir}/site)")
	siteCmd.Flags().Bool("open", false, "open the generated index in a browser")
	rootCmd.AddCommand(siteCmd)
}

func runSite(cmd *cobra.Command, args []string) error {
	cfg, log, doc, err := setup()
	if err != nil {
		return err
	}

	outputDir, _ := cmd.Flags().GetString("output")
	if outputDir == "" {
		outputDir = filepath.Join(cfg.DataDir, "site")
	}

	precache, err := loadManifest(cfg, doc)
	if err != nil {
		return fmt.Errorf("loading precache manifest: %w", err)
	}

	st, err := site.New(doc, site.Options{Expansion: expansionOptions(cfg), Logger: log})
	if err != nil {
		return err
	}
	pageCount, err := st.Generate(outputDir, precache)
	if err != nil {
		return fmt.Errorf("generating site: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Static site generated: %s (%d pages)\n", outputDir, pageCount)

	if open, _ := cmd.Flags().GetBool("open"); open {
		index, err := filepath.Abs(filepath.Join(outputDir, "index.html"))
		if err != nil {
			return err
		}
		site.OpenBrowser("file://" + filepath.ToSlash(index))
	}
	return nil
}
