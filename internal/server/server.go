package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/magicaleks/sysmon/internal/config"
	"github.com/magicaleks/sysmon/internal/domain"
	"github.com/magicaleks/sysmon/internal/view"
)

type Server struct {
	http    *http.Server
	metrics *Metrics
	logger  *slog.Logger
}

// New builds the router for cfg.Mode. forwarder is only used in proxy
// mode and may be nil otherwise.
func New(cfg *config.Config, collector domain.Collector, forwarder http.Handler, logger *slog.Logger) (*Server, error) {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := view.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.ForwardedByClientIP = false
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	if cfg.Mode == config.ModeProxy {
		router.RedirectTrailingSlash = false
		router.Use(ForwardedHeadersMiddleware())
	}
	router.Use(LoggingMiddleware(logger))

	var metrics *Metrics
	if cfg.Metrics {
		metrics = NewMetrics()
		router.Use(metrics.Middleware())
		collector = InstrumentCollector(metrics, collector)
	}

	h := NewHandler(collector, cfg.Mode, cfg.BasePath(), logger)
	registerRoutes(router, cfg, h, metrics, forwarder)

	s := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{http: s, metrics: metrics, logger: logger}, nil
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) Addr() string {
	return s.http.Addr
}

// Start listens on the configured address and blocks until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http server listening", "addr", ln.Addr().String())
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
