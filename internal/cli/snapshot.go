package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSnapshotCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print one sample",
		Long: `Fetch one sample from the data endpoint and print it.

Examples:
  sysmonctl snapshot
  sysmonctl snapshot --url http://host:8080/systemmonitor --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			data, err := opts.client().Snapshot(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return logJSONCmd(cmd, data)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON document")
	return cmd
}

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the dashboard answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			c := opts.client()
			if err := c.Health(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styleOK.Render("ok"), c.BaseURL())
			return nil
		},
	}
}
