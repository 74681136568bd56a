package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/magicaleks/sysmon/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sysmon"

// Metrics owns a private Prometheus registry for one server.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	collectDuration prometheus.Histogram
	collectErrors   *prometheus.CounterVec

	cpu        prometheus.Gauge
	load       *prometheus.GaugeVec
	memPercent prometheus.Gauge
	memBytes   *prometheus.GaugeVec
	diskPct    prometheus.Gauge
	diskBytes  *prometheus.GaugeVec
	netBytes   *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route and method.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 1.5, 2.5, 5, 10},
		}, []string{"route", "method"}),
		collectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collect_duration_seconds",
			Help:      "Time spent building one snapshot, CPU sampling window included.",
			Buckets:   []float64{.01, .1, .5, .9, 1, 1.1, 1.5, 2, 5},
		}),
		collectErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collect_errors_total",
			Help:      "Failed collections, by failing query.",
		}, []string{"op"}),
		cpu: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_usage_percent",
			Help:      "CPU usage of the last snapshot.",
		}),
		load: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "load_average",
			Help:      "Load average of the last snapshot.",
		}, []string{"window"}),
		memPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_usage_percent",
			Help:      "Virtual memory usage of the last snapshot.",
		}),
		memBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_bytes",
			Help:      "Virtual memory of the last snapshot.",
		}, []string{"kind"}),
		diskPct: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "disk_usage_percent",
			Help:      "Disk usage of the monitored mount point.",
		}),
		diskBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "disk_bytes",
			Help:      "Disk space of the monitored mount point.",
		}, []string{"kind"}),
		netBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "network_bytes",
			Help:      "Cumulative network bytes since boot.",
		}, []string{"direction"}),
	}

	m.registry.MustRegister(
		m.requests, m.latency,
		m.collectDuration, m.collectErrors,
		m.cpu, m.load, m.memPercent, m.memBytes, m.diskPct, m.diskBytes, m.netBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware counts requests and observes latency. Unmatched routes are
// labelled "proxy".
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "proxy"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) observeSnapshot(s domain.Snapshot) {
	m.cpu.Set(s.CPUPercent)
	if s.Load != nil {
		m.load.WithLabelValues("1m").Set(s.Load.Load1)
		m.load.WithLabelValues("5m").Set(s.Load.Load5)
		m.load.WithLabelValues("15m").Set(s.Load.Load15)
	}
	m.memPercent.Set(s.Memory.Percent)
	m.memBytes.WithLabelValues("total").Set(float64(s.Memory.Total))
	m.memBytes.WithLabelValues("used").Set(float64(s.Memory.Used))
	m.memBytes.WithLabelValues("available").Set(float64(s.Memory.Available))
	m.diskPct.Set(s.Disk.Percent)
	m.diskBytes.WithLabelValues("total").Set(float64(s.Disk.Total))
	m.diskBytes.WithLabelValues("used").Set(float64(s.Disk.Used))
	m.netBytes.WithLabelValues("recv").Set(float64(s.Network.BytesRecv))
	m.netBytes.WithLabelValues("sent").Set(float64(s.Network.BytesSent))
}

var _ domain.Collector = (*instrumentedCollector)(nil)

type instrumentedCollector struct {
	metrics *Metrics
	next    domain.Collector
}

// InstrumentCollector wraps next so every collection updates m.
func InstrumentCollector(m *Metrics, next domain.Collector) domain.Collector {
	return &instrumentedCollector{metrics: m, next: next}
}

func (ic *instrumentedCollector) Collect(ctx context.Context) (snap domain.Snapshot, err error) {
	defer func(begin time.Time) {
		ic.metrics.collectDuration.Observe(time.Since(begin).Seconds())
		if err != nil {
			op := "unknown"
			var ce domain.CollectError
			if errors.As(err, &ce) {
				op = ce.Op
			}
			ic.metrics.collectErrors.WithLabelValues(op).Inc()
			return
		}
		ic.metrics.observeSnapshot(snap)
	}(time.Now())

	return ic.next.Collect(ctx)
}
