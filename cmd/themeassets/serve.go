package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/themeassets/pkg/server"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve asset resolution over HTTP",
		Long: `Start an HTTP server that resolves assets.

Endpoints:
  GET /healthz                      liveness
  GET /resolve?origin=&file=        resolved URL and path as JSON
  GET /manifest/{origin}            manifest entries as JSON
  GET /assets/{origin}/{file...}    302 to the resolved URL
  GET /files/{origin}/{file...}     contents of the resolved file
  GET /metrics                      Prometheus metrics (server.metrics)

Examples:
  themeassets serve
  themeassets serve --addr=127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			e, err := newEnv(cfg, os.Stderr)
			if err != nil {
				return err
			}

			srv := newServer(e)
			success("Serving %s assets on %s", cfg.Host.ParentTheme, cfg.Server.Addr)
			if cfg.Host.ChildTheme != "" {
				info("Child theme: %s", cfg.Host.ChildTheme)
			}
			if !e.registry.ExtensionConfigured() {
				warn("No extension entry point configured; /resolve?origin=extension returns 503")
			}

			return srv.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")

	return cmd
}

// newServer builds the HTTP server for e.
func newServer(e *env) *server.Server {
	sc := server.Config{
		Address:      e.cfg.Server.Addr,
		Logger:       e.logger,
		Requests:     e.metrics,
		Files:        e.files,
		CacheControl: server.CacheControl(e.cfg.Server.CacheControl),
		ManifestDirs: e.cfg.Server.ManifestDirs,
	}
	if e.cfg.Server.Metrics {
		sc.Gatherer = e.gatherer
	}
	return server.New(e.registry, sc)
}
