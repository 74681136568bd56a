package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/magicaleks/sysmon/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cli.LogError(rootCmd, err)
		cancel()
		os.Exit(1)
	}
}
