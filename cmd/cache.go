package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/emsguide/internal/offline"
	"github.com/ziadkadry99/emsguide/internal/progress"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the offline asset cache",
}

var cacheInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Fetch every precache asset into the configured generation",
	Long: `Fetches every URL of the precache manifest and stores the whole set
under the generation name. If any asset fails nothing is stored. Older
generations are kept until the new one is activated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, doc, err := setup()
		if err != nil {
			return err
		}
		c, err := openCache(cfg, doc, log, progress.NewReporter("Precaching"))
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Install(cmd.Context()); err != nil {
			return err
		}
		activate, _ := cmd.Flags().GetBool("activate")
		if activate {
			if err := c.Activate(cmd.Context()); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Installed %d assets into %s\n", len(c.manifest.URLs), c.Generation())
		return nil
	},
}

var cacheActivateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Activate the installed generation and evict every other one",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, doc, err := setup()
		if err != nil {
			return err
		}
		c, err := openCache(cfg, doc, log, nil)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Resume(cmd.Context()); err != nil {
			if errors.Is(err, offline.ErrNotFound) {
				return fmt.Errorf("%w\nRun `emsguide cache install` first", err)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Activated %s\n", c.Generation())
		return nil
	},
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the cache stores and the configured generation",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, doc, err := setup()
		if err != nil {
			return err
		}
		c, err := openCache(cfg, doc, log, nil)
		if err != nil {
			return err
		}
		defer c.Close()

		st, err := c.Status(cmd.Context())
		if err != nil {
			return err
		}
		printCacheStatus(cmd.OutOrStdout(), st, len(c.manifest.URLs))
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete every cache store except the configured generation",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, doc, err := setup()
		if err != nil {
			return err
		}
		c, err := openCache(cfg, doc, log, nil)
		if err != nil {
			return err
		}
		defer c.Close()

		removed, err := c.Evict(cmd.Context())
		if err != nil {
			return err
		}
		if len(removed) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to prune")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", strings.Join(removed, ", "))
		return nil
	},
}

var cacheFetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch a URL through the offline cache",
	Long: `Requests a URL the way the viewer does: from the active generation when
cached, otherwise from the network, writing successful responses back.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, doc, err := setup()
		if err != nil {
			return err
		}
		c, err := openCache(cfg, doc, log, nil)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Resume(cmd.Context()); err != nil {
			log.Warn("cache not active, fetching from network", "error", err)
		}

		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, args[0], nil)
		if err != nil {
			return err
		}
		mode, _ := cmd.Flags().GetString("mode")
		req.Header.Set("Sec-Fetch-Mode", mode)

		client := &http.Client{Transport: &offline.Transport{Manager: c.Manager}}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		out, _ := cmd.Flags().GetString("output")
		var dst io.Writer = io.Discard
		if out != "" {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			dst = f
		}
		n, err := io.Copy(dst, resp.Body)
		if err != nil {
			return err
		}

		tbl := uitable.New()
		tbl.AddRow(bold("URL:"), args[0])
		tbl.AddRow(bold("Status:"), resp.Status)
		tbl.AddRow(bold("Type:"), resp.Header.Get("Content-Type"))
		tbl.AddRow(bold("Bytes:"), n)
		fmt.Fprintln(cmd.OutOrStdout(), tbl)
		return nil
	},
}

func init() {
	cacheInstallCmd.Flags().Bool("activate", false, "activate the generation after installing")
	cacheFetchCmd.Flags().String("mode", string(offline.ModeCORS), "request mode: navigate, same-origin, cors or no-cors")
	cacheFetchCmd.Flags().StringP("output", "o", "", "write the response body to a file")

	cacheCmd.AddCommand(cacheInstallCmd, cacheActivateCmd, cacheStatusCmd, cachePruneCmd, cacheFetchCmd)
	rootCmd.AddCommand(cacheCmd)
}

func printCacheStatus(w io.Writer, st offline.Status, precache int) {
	tbl := uitable.New()
	tbl.AddRow(bold("Generation:"), st.Generation)
	tbl.AddRow(bold("Precache URLs:"), precache)
	tbl.AddRow(bold("Cached entries:"), st.Entries)
	fmt.Fprintln(w, tbl)

	fmt.Fprintln(w)
	stores := uitable.New()
	stores.Separator = "  "
	stores.AddRow(bold("STORE"), bold("STATUS"))
	if len(st.Stores) == 0 {
		stores.AddRow(faint("(none)"), "")
	}
	for _, name := range st.Stores {
		status := "stale"
		if name == st.Generation {
			status = "current"
		}
		stores.AddRow(name, status)
	}
	fmt.Fprintln(w, stores)
}
