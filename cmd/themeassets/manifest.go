package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func manifestCmd(opts *globalOptions) *cobra.Command {
	var (
		flags  originFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Show the manifest an origin resolves through",
		Long: `Show where an origin's manifest lives and the entries it maps.

A missing or malformed manifest is shown as empty; every request then
resolves to its unversioned file.

Examples:
  themeassets manifest
  themeassets manifest --origin=parent --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := flags.resolver(opts)
			if err != nil {
				return err
			}

			m := res.Manifest(flags.manifestDir)
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Origin  string            `json:"origin"`
					Path    string            `json:"path"`
					Entries map[string]string `json:"entries"`
				}{
					Origin:  res.Origin().Name(),
					Path:    res.ManifestPath(flags.manifestDir),
					Entries: m.All(),
				})
			}

			fmt.Fprintf(out, "%s manifest: %s (%d entries)\n", res.Origin().Name(), res.ManifestPath(flags.manifestDir), m.Len())
			all := m.All()
			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, k := range keys {
				fmt.Fprintf(tw, "  %s\t→ %s\n", k, all[k])
			}
			return tw.Flush()
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}
