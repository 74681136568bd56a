package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/magicaleks/sysmon/internal/domain"
)

// Build-time variables injected via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const EnvPrefix = "SYSMON_"

// Mode selects which generation of the dashboard is served.
type Mode string

const (
	// ModeBasic serves a server-rendered page that reloads itself every 5 s.
	ModeBasic Mode = "basic"
	// ModeLive serves a polling page plus the JSON data endpoint.
	ModeLive Mode = "live"
	// ModeProxy mounts the live dashboard under /systemmonitor and forwards
	// everything else to the upstream.
	ModeProxy Mode = "proxy"
)

const (
	DefaultDashboardAddr = "0.0.0.0:5000"
	DefaultProxyAddr     = "0.0.0.0:8080"
	DefaultUpstream      = "http://localhost:8080"
	ProxyBasePath        = "/systemmonitor"
)

// Config holds all configuration loaded from SYSMON_* environment variables.
type Config struct {
	// Mode is "basic", "live" or "proxy".
	Mode Mode `env:"MODE"`

	// Addr overrides the mode's default listen address.
	Addr string `env:"ADDR"`

	// Upstream is the origin the proxy mode forwards to.
	Upstream string `env:"UPSTREAM"`

	// DiskPath is the mount point reported as disk usage.
	DiskPath string `env:"DISK_PATH"`

	// CPUInterval is the window CPU usage is sampled over.
	CPUInterval time.Duration `env:"CPU_INTERVAL"`

	// SampleInterval enables background sampling when positive.
	SampleInterval time.Duration `env:"SAMPLE_INTERVAL"`

	// Metrics mounts the Prometheus endpoint.
	Metrics bool `env:"METRICS"`

	// Debug enables debug logging and gin debug mode.
	Debug bool `env:"DEBUG"`

	// LogDir, when set, receives sysmon.log in addition to stdout.
	LogDir string `env:"LOG_DIR"`

	// LogFormat is "json" or "text".
	LogFormat string `env:"LOG_FORMAT"`
}

// DefaultConfig returns the live dashboard on port 5000 sampling the root
// mount point.
func DefaultConfig() *Config {
	return &Config{
		Mode:        ModeLive,
		Upstream:    DefaultUpstream,
		DiskPath:    "/",
		CPUInterval: time.Second,
		Metrics:     true,
		LogFormat:   "json",
	}
}

// Load reads configuration from the environment on top of the defaults
// and validates it.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.Mode = Mode(strings.ToLower(strings.TrimSpace(string(cfg.Mode))))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeBasic, ModeLive, ModeProxy:
	default:
		return fmt.Errorf("%sMODE %q: %w (expected basic, live or proxy)", EnvPrefix, c.Mode, domain.ErrUnknownMode)
	}

	if c.CPUInterval <= 0 {
		return fmt.Errorf("%sCPU_INTERVAL must be positive", EnvPrefix)
	}
	if c.SampleInterval < 0 {
		return fmt.Errorf("%sSAMPLE_INTERVAL must not be negative", EnvPrefix)
	}

	if c.Mode == ModeProxy {
		u, err := url.Parse(c.Upstream)
		if err != nil {
			return fmt.Errorf("%sUPSTREAM: %w", EnvPrefix, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%sUPSTREAM %q must be an absolute http(s) URL", EnvPrefix, c.Upstream)
		}
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("%sLOG_FORMAT %q: expected json or text", EnvPrefix, c.LogFormat)
	}
	return nil
}

// ListenAddr is Addr, or the mode's default port on all interfaces.
func (c *Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	if c.Mode == ModeProxy {
		return DefaultProxyAddr
	}
	return DefaultDashboardAddr
}

// BasePath is the prefix the dashboard routes are mounted under.
func (c *Config) BasePath() string {
	if c.Mode == ModeProxy {
		return ProxyBasePath
	}
	return ""
}

// NewLogger creates a structured logger writing to stdout and, when LogDir
// is set, to <LogDir>/<name>.log.
func NewLogger(cfg *Config, name string) (*slog.Logger, error) {
	var out io.Writer = os.Stdout

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}

		logPath := filepath.Join(cfg.LogDir, name+".log")
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", logPath, err)
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	return newLogger(out, cfg), nil
}

func newLogger(out io.Writer, cfg *Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return slog.New(handler)
}
