package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/themeassets/internal/errors"
)

func errorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "errors [code]",
		Short: "Explain error codes",
		Long: `List every error code, or explain one.

Examples:
  themeassets errors
  themeassets errors E210`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				code := strings.ToUpper(args[0])
				tmpl, ok := errors.GetTemplate(code)
				if !ok {
					return errors.Newf(errors.CategoryCLI, "unknown error code %q", args[0])
				}
				fmt.Fprintf(out, "%s [%s] %s\n", code, tmpl.Category, tmpl.Message)
				if tmpl.Detail != "" {
					fmt.Fprintf(out, "\n  %s\n", tmpl.Detail)
				}
				return nil
			}

			for _, code := range errors.GetAllCodes() {
				tmpl, _ := errors.GetTemplate(code)
				fmt.Fprintf(out, "%s  %-8s  %s\n", code, tmpl.Category, tmpl.Message)
			}
			return nil
		},
	}
}
