package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/emsguide/internal/manifest"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Build precache manifests",
}

var manifestScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a site and the dataset for assets to precache",
	Long: `Collects the scripts, stylesheets, icons and images an HTML entry point
references, every file under an asset directory that matches the include
globs, and every image the dataset references, and writes them as a
precache manifest for the configured generation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, doc, err := setup()
		if err != nil {
			return err
		}

		scan := manifest.ScanConfig{
			Version: cfg.Cache.Generation,
			Origin:  cfg.Cache.Origin,
		}
		scan.Start, _ = cmd.Flags().GetStringSlice("start")
		scan.EntryHTML, _ = cmd.Flags().GetString("entry")
		scan.AssetDir, _ = cmd.Flags().GetString("assets")
		scan.Include, _ = cmd.Flags().GetStringSlice("include")
		scan.Exclude, _ = cmd.Flags().GetStringSlice("exclude")
		if images, _ := cmd.Flags().GetBool("images"); images {
			scan.Images = doc.Images()
		}

		m, err := manifest.Scan(scan)
		if err != nil {
			return err
		}
		if err := m.Validate(); err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = cfg.ManifestPath()
		}
		if err := m.Save(out); err != nil {
			return err
		}
		log.Debug("manifest written", "path", out, "urls", len(m.URLs))
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d URLs for %s to %s\n", len(m.URLs), m.Version, out)
		return nil
	},
}

func init() {
	manifestScanCmd.Flags().StringSlice("start", []string{"/"}, "URLs always precached first")
	manifestScanCmd.Flags().String("entry", "", "HTML entry point to collect references from")
	manifestScanCmd.Flags().String("assets", "", "asset directory to walk")
	manifestScanCmd.Flags().StringSlice("include", []string{"@images", "@styles", "@scripts", "@fonts", "**/*.json"}, "asset globs or kinds (@images, @styles, @scripts, @fonts, @pages) to include")
	manifestScanCmd.Flags().StringSlice("exclude", nil, "asset globs to exclude")
	manifestScanCmd.Flags().Bool("images", true, "include every image the dataset references")
	manifestScanCmd.Flags().StringP("output", "o", "", "manifest path (defaults to cache.manifest)")

	manifestCmd.AddCommand(manifestScanCmd)
	rootCmd.AddCommand(manifestCmd)
}
