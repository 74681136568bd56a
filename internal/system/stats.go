package system

import (
	"context"
	"runtime"
	"time"

	"github.com/magicaleks/sysmon/internal/domain"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

const (
	DefaultCPUInterval = time.Second
	DefaultDiskPath    = "/"
)

// sources are the OS queries behind a snapshot. Swapped out in tests.
type sources struct {
	cpuPercent func(ctx context.Context, interval time.Duration) (float64, error)
	loadAvg    func(ctx context.Context) (*domain.LoadAverage, error)
	memory     func(ctx context.Context) (domain.MemoryUsage, error)
	disk       func(ctx context.Context, path string) (domain.DiskUsage, error)
	network    func(ctx context.Context) (domain.NetworkCounters, error)
	identity   func(ctx context.Context) (domain.HostIdentity, error)
}

// StatsCollector samples CPU, load, memory, disk, network and host
// identity. Every Collect call blocks for the CPU interval; nothing is
// cached between calls.
type StatsCollector struct {
	cpuInterval time.Duration
	diskPath    string
	src         sources
	now         func() time.Time
}

// NewStatsCollector creates a collector sampling CPU over cpuInterval and
// disk usage of diskPath. Zero values fall back to the defaults.
func NewStatsCollector(cpuInterval time.Duration, diskPath string, probe *Probe) *StatsCollector {
	if cpuInterval <= 0 {
		cpuInterval = DefaultCPUInterval
	}
	if diskPath == "" {
		diskPath = DefaultDiskPath
	}
	if probe == nil {
		probe = NewProbe()
	}
	return &StatsCollector{
		cpuInterval: cpuInterval,
		diskPath:    diskPath,
		src: sources{
			cpuPercent: cpuPercent,
			loadAvg:    loadAvg,
			memory:     virtualMemory,
			disk:       diskUsage,
			network:    netCounters,
			identity:   probe.Identity,
		},
		now: time.Now,
	}
}

// Collect returns a fresh snapshot. Any failing query aborts the whole
// collection; there is no partial snapshot.
func (c *StatsCollector) Collect(ctx context.Context) (domain.Snapshot, error) {
	cpuPct, err := c.src.cpuPercent(ctx, c.cpuInterval)
	if err != nil {
		return domain.Snapshot{}, domain.CollectError{Op: "cpu", Err: err}
	}

	loadAvg, err := c.src.loadAvg(ctx)
	if err != nil {
		return domain.Snapshot{}, domain.CollectError{Op: "load", Err: err}
	}

	memory, err := c.src.memory(ctx)
	if err != nil {
		return domain.Snapshot{}, domain.CollectError{Op: "memory", Err: err}
	}

	diskUse, err := c.src.disk(ctx, c.diskPath)
	if err != nil {
		return domain.Snapshot{}, domain.CollectError{Op: "disk", Err: err}
	}

	network, err := c.src.network(ctx)
	if err != nil {
		return domain.Snapshot{}, domain.CollectError{Op: "network", Err: err}
	}

	ident, err := c.src.identity(ctx)
	if err != nil {
		return domain.Snapshot{}, domain.CollectError{Op: "identity", Err: err}
	}

	memory.Percent = ClampPercent(memory.Percent)
	diskUse.Percent = ClampPercent(diskUse.Percent)

	return domain.Snapshot{
		Host:       ident,
		CPUPercent: ClampPercent(cpuPct),
		Load:       loadAvg,
		Memory:     memory,
		Disk:       diskUse,
		Network:    network,
		TakenAt:    c.now(),
	}, nil
}

// --- CPU ---

func cpuPercent(ctx context.Context, interval time.Duration) (float64, error) {
	pct, err := cpu.PercentWithContext(ctx, interval, false)
	if err != nil {
		return 0, err
	}
	if len(pct) == 0 {
		return 0, errNoData
	}
	return pct[0], nil
}

// --- Load ---

func loadAvg(ctx context.Context) (*domain.LoadAverage, error) {
	if runtime.GOOS == "windows" {
		return nil, nil
	}
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.LoadAverage{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}, nil
}

// --- RAM ---

func virtualMemory(ctx context.Context) (domain.MemoryUsage, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return domain.MemoryUsage{}, err
	}
	return domain.MemoryUsage{
		Total:     vm.Total,
		Available: vm.Available,
		Used:      vm.Used,
		Percent:   vm.UsedPercent,
	}, nil
}

// --- Disk ---

func diskUsage(ctx context.Context, path string) (domain.DiskUsage, error) {
	u, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return domain.DiskUsage{}, err
	}
	return domain.DiskUsage{
		Path:    path,
		Total:   u.Total,
		Used:    u.Used,
		Free:    u.Free,
		Percent: u.UsedPercent,
	}, nil
}

// --- Network ---

func netCounters(ctx context.Context) (domain.NetworkCounters, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return domain.NetworkCounters{}, err
	}
	if len(counters) == 0 {
		return domain.NetworkCounters{}, errNoData
	}
	return domain.NetworkCounters{
		BytesRecv: counters[0].BytesRecv,
		BytesSent: counters[0].BytesSent,
	}, nil
}
