// Package app wires the collector, the optional background sampler, the
// upstream forwarder and the HTTP server into one process.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/magicaleks/sysmon/internal/config"
	"github.com/magicaleks/sysmon/internal/domain"
	"github.com/magicaleks/sysmon/internal/proxy"
	"github.com/magicaleks/sysmon/internal/server"
	"github.com/magicaleks/sysmon/internal/system"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg    *config.Config
	logger *slog.Logger

	sampler *system.Sampler
	server  *server.Server
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	stats := system.NewStatsCollector(cfg.CPUInterval, cfg.DiskPath, system.NewProbe())
	return newApp(cfg, stats, logger)
}

func newApp(cfg *config.Config, collector domain.Collector, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	if cfg.SampleInterval > 0 {
		a.sampler = system.NewSampler(collector, cfg.SampleInterval, logger)
		collector = a.sampler
	}

	var forwarder http.Handler
	if cfg.Mode == config.ModeProxy {
		f, err := proxy.NewForwarder(cfg.Upstream, logger)
		if err != nil {
			return nil, fmt.Errorf("init forwarder: %w", err)
		}
		if proxy.IsSelfLoop(f.Upstream(), cfg.ListenAddr()) {
			logger.Warn("upstream points at this listener, forwarded requests will loop",
				"upstream", cfg.Upstream,
				"addr", cfg.ListenAddr(),
				"hint", "set "+config.EnvPrefix+"UPSTREAM",
			)
		}
		forwarder = f
	}

	srv, err := server.New(cfg, collector, forwarder, logger)
	if err != nil {
		return nil, fmt.Errorf("init server: %w", err)
	}
	a.server = srv
	return a, nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Run serves until ctx is cancelled or the listener fails, then drains
// in-flight requests for up to shutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if a.sampler != nil {
		a.sampler.Start(gctx)
	}

	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down", "grace", shutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	a.logger.Info("sysmon ready",
		"version", config.Version,
		"mode", string(a.cfg.Mode),
		"addr", a.cfg.ListenAddr(),
		"base_path", a.cfg.BasePath(),
		"sampling", a.sampler != nil,
	)

	return g.Wait()
}
