package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/magicaleks/sysmon/internal/view"
	"github.com/spf13/cobra"
)

const (
	defWatchInterval = 2 * time.Second
	sparkWidth       = view.ChartWindow
)

func newWatchCmd(opts *options) *cobra.Command {
	var (
		interval time.Duration
		count    int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll and print one line per sample",
		Long: `Poll the data endpoint and print CPU, memory and disk usage with a
rolling CPU sparkline.

Examples:
  sysmonctl watch
  sysmonctl watch --interval 5s --count 12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				return errors.New("--interval must be positive")
			}
			return watch(cmd, opts, interval, count)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", defWatchInterval, "polling interval")
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many samples (0 runs until interrupted)")
	return cmd
}

func watch(cmd *cobra.Command, opts *options, interval time.Duration, count int) error {
	ctx := cmd.Context()
	c := opts.client()
	out := cmd.OutOrStdout()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var history []float64
	for n := 0; count == 0 || n < count; n++ {
		if n > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}

		reqCtx, cancel := context.WithTimeout(ctx, opts.timeout)
		data, err := c.Snapshot(reqCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			LogError(cmd, err)
			continue
		}

		history = append(history, data.CPUUsage)
		if len(history) > sparkWidth {
			history = history[len(history)-sparkWidth:]
		}
		fmt.Fprintln(out, watchLine(time.Now(), data, history))
	}
	return nil
}

func watchLine(at time.Time, d *view.Data, history []float64) string {
	return fmt.Sprintf("%s  cpu %5.1f%% %s  mem %5.1f%%  disk %5.1f%%",
		at.Format(time.TimeOnly),
		d.CPUUsage,
		renderSparkline(history, sparkWidth, usageColor(d.CPUUsage)),
		d.Memory.Percent,
		d.Disk.Percent,
	)
}
