package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/magicaleks/sysmon/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleData = `{"system":"Linux","node_name":"box","release":"6.1.0","version":"#1",
"machine":"x86_64","processor":"Test CPU","cpu_usage":42.5,"cpu_load":[0.5,0.25,0.1],
"memory":{"percent":50,"used":4096,"total":8192},"disk":{"percent":25,"used":25,"total":100},
"network":{"bytes_recv":1000,"bytes_sent":2000}}`

func dashboard(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data":
			hits.Add(1)
			_, _ = io.WriteString(w, sampleData)
		case "/healthz":
			_, _ = io.WriteString(w, `{"ok":true}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSnapshotSummary(t *testing.T) {
	srv, _ := dashboard(t)

	out, err := run(t, "snapshot", "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "box")
	assert.Contains(t, out, "Test CPU")
	assert.Contains(t, out, "42.5%")
	assert.Contains(t, out, "4096 / 8192 MB")
	assert.Contains(t, out, "0.50 0.25 0.10")
}

func TestSnapshotJSON(t *testing.T) {
	srv, _ := dashboard(t)

	out, err := run(t, "snapshot", "--url", srv.URL, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, "node_name")
	assert.Contains(t, out, "Test CPU")
	assert.Contains(t, out, "bytes_sent")
}

func TestWatchStopsAfterCount(t *testing.T) {
	srv, hits := dashboard(t)

	out, err := run(t, "watch", "--url", srv.URL, "--interval", "10ms", "--count", "3")
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)
	assert.Contains(t, out, "cpu  42.5%")
}

func TestWatchRejectsZeroInterval(t *testing.T) {
	_, err := run(t, "watch", "--interval", "0s", "--count", "1")
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv, _ := dashboard(t)

	out, err := run(t, "health", "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")

	_, err = run(t, "health", "--url", srv.URL+"/missing", "--timeout", time.Second.String())
	assert.Error(t, err)
}

func TestRenderSparkline(t *testing.T) {
	assert.Equal(t, "", renderSparkline([]float64{1}, 0, colorGreen))

	got := renderSparkline([]float64{0, 100}, 4, colorGreen)
	assert.Contains(t, got, "  ▁█")

	got = renderSparkline([]float64{0, 100, 50, 150, -5}, 3, colorGreen)
	assert.Contains(t, got, "▄█▁")
}

func TestUsageColor(t *testing.T) {
	assert.Equal(t, colorGreen, usageColor(10))
	assert.Equal(t, colorYellow, usageColor(70))
	assert.Equal(t, colorRed, usageColor(95))
}

func TestWatchLine(t *testing.T) {
	d := &view.Data{CPUUsage: 12.5}
	d.Memory.Percent = 50
	d.Disk.Percent = 25
	line := watchLine(time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), d, []float64{12.5})
	assert.True(t, strings.HasPrefix(line, "10:30:00  cpu  12.5%"))
	assert.Contains(t, line, "mem  50.0%")
	assert.Contains(t, line, "disk  25.0%")
}
