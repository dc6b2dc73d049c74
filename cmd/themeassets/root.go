package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/themeassets/internal/config"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "themeassets",
		Short: "Resolve fingerprinted theme and extension assets",
		Long: `themeassets maps asset requests to their fingerprinted names using the
mix-manifest.json written by the asset build.

Assets come from three origins:

  parent      the parent theme
  child       the active child theme (falls back to the parent)
  extension   an installed extension, located by its entry point

Configuration is read from themeassets.json or themeassets.yaml in the
working directory or any parent, or from --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to the config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: text, json (default from config)")

	cmd.AddCommand(
		initCmd(),
		urlCmd(opts),
		pathCmd(opts),
		manifestCmd(opts),
		serveCmd(opts),
		errorsCmd(),
		versionCmd(),
	)

	return cmd
}

// loadConfig loads and validates the config selected by the global flags,
// applying flag overrides.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}

	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger. Logs go to stderr so command output
// stays pipeable.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
