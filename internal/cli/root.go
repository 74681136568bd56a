// Package cli implements sysmonctl, a terminal reader for a running
// dashboard.
package cli

import (
	"time"

	"github.com/magicaleks/sysmon/internal/client"
	"github.com/spf13/cobra"
)

const defTimeout = 10 * time.Second

type options struct {
	url     string
	timeout time.Duration
}

func (o *options) client() *client.Client {
	return client.New(o.url, nil)
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "sysmonctl",
		Short:         "sysmon CLI",
		Long:          `sysmonctl reads host metrics from a running sysmon dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.url, "url", client.DefaultBaseURL,
		"dashboard base URL (add /systemmonitor for proxy mode)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", defTimeout, "per-request timeout")

	cmd.AddCommand(
		newSnapshotCmd(opts),
		newWatchCmd(opts),
		newHealthCmd(opts),
	)
	return cmd
}
