package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/themeassets/internal/errors"
	"github.com/vango-dev/themeassets/pkg/assets"
	"github.com/vango-dev/themeassets/pkg/registry"
)

// originFlags are the flags selecting what a command resolves against.
type originFlags struct {
	origin      string
	manifestDir string
	entryPoint  string
}

func (f *originFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.origin, "origin", "o", string(registry.KindChild), "Origin: parent, child, extension")
	cmd.Flags().StringVarP(&f.manifestDir, "manifest-dir", "m", "", "Manifest directory for this lookup only")
	cmd.Flags().StringVarP(&f.entryPoint, "entry-point", "e", "", "Extension entry point (default from config)")
}

// resolver opens the environment and returns the resolver for the selected origin.
func (f *originFlags) resolver(opts *globalOptions) (*assets.Resolver, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	e, err := newEnv(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}

	kind, err := registry.ParseKind(f.origin)
	if err != nil {
		return nil, err
	}
	if kind == registry.KindExtension {
		if f.entryPoint != "" {
			e.registry.SetExtensionEntryPoint(f.entryPoint)
		}
		if !e.registry.ExtensionConfigured() {
			return nil, errors.New("E210").
				WithSuggestion("Pass --entry-point or set origins.extension.entryPoint in the config")
		}
	}
	return e.registry.Get(kind)
}

func urlCmd(opts *globalOptions) *cobra.Command {
	var flags originFlags

	cmd := &cobra.Command{
		Use:   "url <file>",
		Short: "Print the public URL of an asset",
		Long: `Print the public URL of an asset, rewritten through the origin's manifest.

Files missing from the manifest resolve to their unversioned URL.

Examples:
  themeassets url css/app.css
  themeassets url /js/app.js --origin=parent
  themeassets url app.css --origin=extension --entry-point=cart/cart.php
  themeassets url app.css --manifest-dir=/dist`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := flags.resolver(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.AssetURL(args[0], flags.manifestDir))
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

func pathCmd(opts *globalOptions) *cobra.Command {
	var flags originFlags

	cmd := &cobra.Command{
		Use:   "path <file>",
		Short: "Print the filesystem path of an asset",
		Long: `Print the absolute filesystem path of an asset, rewritten through the
origin's manifest.

Examples:
  themeassets path css/app.css
  themeassets path css/app.css --origin=parent`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := flags.resolver(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.AssetPath(args[0], flags.manifestDir))
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}
