package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/magicaleks/sysmon/internal/app"
	"github.com/magicaleks/sysmon/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg, "sysmon")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("starting sysmon",
		"version", config.Version,
		"build_time", config.BuildTime,
		"mode", string(cfg.Mode),
		"debug", cfg.Debug,
	)

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM,
	)
	defer cancel()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create app", "err", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("sysmon exited with error", "err", err)
		os.Exit(1)
	}

	logger.Info("sysmon stopped cleanly")
}
