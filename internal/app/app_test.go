package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/magicaleks/sysmon/internal/config"
	"github.com/magicaleks/sysmon/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCollector struct{}

func (staticCollector) Collect(context.Context) (domain.Snapshot, error) {
	return domain.Snapshot{
		Host:       domain.HostIdentity{System: "Linux", NodeName: "box"},
		CPUPercent: 3,
	}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestRunServesUntilCancelled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Addr = freeAddr(t)
	a, err := newApp(cfg, staticCollector{}, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.Addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunFailsWhenAddressTaken(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := config.DefaultConfig()
	cfg.Addr = ln.Addr().String()
	a, err := newApp(cfg, staticCollector{}, discardLogger())
	require.NoError(t, err)

	err = a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

func TestSamplerServesCachedSnapshot(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SampleInterval = time.Hour
	a, err := newApp(cfg, staticCollector{}, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, a.sampler)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/data", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"node_name":"box"`)
}

func TestProxySelfLoopWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeProxy
	_, err := newApp(cfg, staticCollector{}, logger)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "upstream points at this listener")

	buf.Reset()
	cfg.Upstream = "http://localhost:3000"
	_, err = newApp(cfg, staticCollector{}, logger)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "upstream points at this listener")
}

func TestProxyRejectsBadUpstream(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeProxy
	cfg.Upstream = "localhost"
	_, err := newApp(cfg, staticCollector{}, discardLogger())
	assert.Error(t, err)
}
