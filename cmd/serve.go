package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/emsguide/internal/offline"
	"github.com/ziadkadry99/emsguide/internal/server"
	"github.com/ziadkadry99/emsguide/internal/site"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the guideline viewer HTTP server",
	Long: `Starts the HTTP server: the server-rendered viewer, the JSON API, live
viewer sessions over websockets and the offline asset gateway. The precache
store for the configured generation is resumed, or installed if missing,
in the background.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides server.port)")
	serveCmd.Flags().Bool("open", false, "open the viewer in a browser")
	serveCmd.Flags().Bool("no-install", false, "do not install the precache store on startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, doc, err := setup()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}

	c, err := openCache(cfg, doc, log, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	st, err := site.New(doc, site.Options{Expansion: expansionOptions(cfg), Logger: log})
	if err != nil {
		return err
	}
	hosts, err := c.manifest.Hosts()
	if err != nil {
		return err
	}
	srv := server.New(server.Config{
		Port:        cfg.Server.Port,
		AllowAll:    cfg.Server.AllowAll,
		Origin:      c.manifest.Origin,
		FetchHosts:  hosts,
		SettleDelay: cfg.Viewer.SettleDelay,
		Expansion:   expansionOptions(cfg),
	}, doc, st, c.Manager, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ready := make(chan struct{})
	noInstall, _ := cmd.Flags().GetBool("no-install")
	go func() {
		defer close(ready)
		prepareCache(ctx, c.Manager, !noInstall, log)
	}()

	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	fmt.Fprintf(os.Stderr, "Serving %s at %s (press Ctrl+C to stop)\n", doc.Subtitle, url)
	if open, _ := cmd.Flags().GetBool("open"); open {
		site.OpenBrowser(url)
	}

	err = srv.Run(ctx)
	stop()
	<-ready
	return err
}

// prepareCache resumes the generation's store, installing it first when it
// does not exist yet. Failures leave the server answering from the network.
func prepareCache(ctx context.Context, m *offline.Manager, install bool, log *slog.Logger) {
	err := m.Resume(ctx)
	if errors.Is(err, offline.ErrNotFound) && install {
		err = m.Start(ctx)
	}
	if err != nil {
		log.Warn("offline cache not active, serving from network", "error", err)
		return
	}
	log.Info("offline cache active", "generation", m.Generation())
}
