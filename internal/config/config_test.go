package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/magicaleks/sysmon/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeLive, cfg.Mode)
	assert.Equal(t, DefaultUpstream, cfg.Upstream)
	assert.Equal(t, "/", cfg.DiskPath)
	assert.Equal(t, time.Second, cfg.CPUInterval)
	assert.Zero(t, cfg.SampleInterval)
	assert.True(t, cfg.Metrics)
	assert.False(t, cfg.Debug)
	assert.Equal(t, DefaultDashboardAddr, cfg.ListenAddr())
	assert.Empty(t, cfg.BasePath())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SYSMON_MODE", " Proxy ")
	t.Setenv("SYSMON_UPSTREAM", "http://127.0.0.1:9000")
	t.Setenv("SYSMON_CPU_INTERVAL", "250ms")
	t.Setenv("SYSMON_SAMPLE_INTERVAL", "2s")
	t.Setenv("SYSMON_METRICS", "false")
	t.Setenv("SYSMON_DEBUG", "true")
	t.Setenv("SYSMON_DISK_PATH", "/data")
	t.Setenv("SYSMON_LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeProxy, cfg.Mode)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.Upstream)
	assert.Equal(t, 250*time.Millisecond, cfg.CPUInterval)
	assert.Equal(t, 2*time.Second, cfg.SampleInterval)
	assert.False(t, cfg.Metrics)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/data", cfg.DiskPath)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, DefaultProxyAddr, cfg.ListenAddr())
	assert.Equal(t, ProxyBasePath, cfg.BasePath())
}

func TestListenAddrOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeBasic
	cfg.Addr = "127.0.0.1:7000"
	assert.Equal(t, "127.0.0.1:7000", cfg.ListenAddr())
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown_mode", "SYSMON_MODE", "fancy"},
		{"bad_duration", "SYSMON_CPU_INTERVAL", "soon"},
		{"zero_interval", "SYSMON_CPU_INTERVAL", "0s"},
		{"negative_sample", "SYSMON_SAMPLE_INTERVAL", "-1s"},
		{"bad_bool", "SYSMON_METRICS", "maybe"},
		{"bad_log_format", "SYSMON_LOG_FORMAT", "xml"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestUnknownModeWrapsSentinel(t *testing.T) {
	t.Setenv("SYSMON_MODE", "fancy")
	_, err := Load()
	assert.ErrorIs(t, err, domain.ErrUnknownMode)
}

func TestValidateUpstreamOnlyInProxyMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Upstream = "localhost"
	assert.NoError(t, cfg.Validate())

	cfg.Mode = ModeProxy
	assert.Error(t, cfg.Validate())

	cfg.Upstream = "https://backend.internal:8443"
	assert.NoError(t, cfg.Validate())
}

func TestNewLoggerWritesFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Debug = true

	logger, err := NewLogger(cfg, "sysmon")
	require.NoError(t, err)
	logger.Debug("hello", "k", "v")

	data, err := os.ReadFile(filepath.Join(cfg.LogDir, "sysmon.log"))
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "DEBUG", line["level"])
	assert.Equal(t, "v", line["k"])
}

func TestNewLoggerTextFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogFormat = "text"

	var buf bytes.Buffer
	newLogger(&buf, cfg).Info("ready", "port", 5000)
	assert.Contains(t, buf.String(), "msg=ready")
	assert.Contains(t, buf.String(), "port=5000")
}
