package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/themeassets/internal/config"
	"github.com/vango-dev/themeassets/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		dir      string
		useYAML  bool
		force    bool
		parent   string
		child    string
		themes   string
		themeURL string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a config file",
		Long: `Create themeassets.json (or themeassets.yaml with --yaml) with defaults.

Examples:
  themeassets init --parent=base --themes-dir=./themes --themes-url=https://example.com/themes
  themeassets init --yaml --child=shop`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name := config.ConfigFileName
			if useYAML {
				name = config.YAMLConfigFileName
			}
			path := filepath.Join(dir, name)

			if _, err := os.Stat(path); err == nil && !force {
				return errors.Newf(errors.CategoryCLI, "%s already exists", path).
					WithSuggestion("Pass --force to overwrite it")
			}

			cfg := config.New()
			cfg.Host.ThemesDir = themes
			cfg.Host.ThemesURL = themeURL
			cfg.Host.ParentTheme = parent
			cfg.Host.ChildTheme = child

			if err := cfg.SaveTo(path); err != nil {
				return err
			}

			success("Created %s", path)
			if err := cfg.Validate(); err != nil {
				warn("Fill in the host section before resolving assets")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write the config to")
	cmd.Flags().BoolVar(&useYAML, "yaml", false, "Write YAML instead of JSON")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent theme directory name")
	cmd.Flags().StringVar(&child, "child", "", "Child theme directory name")
	cmd.Flags().StringVar(&themes, "themes-dir", "themes", "Themes directory")
	cmd.Flags().StringVar(&themeURL, "themes-url", "", "Public URL of the themes directory")

	return cmd
}
