package domain

import "time"

// Snapshot holds one point-in-time reading of every tracked host metric.
// Values are raw (bytes, percent); display conversions are done by the
// view layer with the helpers in the system package.
type Snapshot struct {
	Host       HostIdentity
	CPUPercent float64
	Load       *LoadAverage
	Memory     MemoryUsage
	Disk       DiskUsage
	Network    NetworkCounters
	TakenAt    time.Time
}

// HostIdentity describes the platform the process runs on.
type HostIdentity struct {
	System    string
	NodeName  string
	Release   string
	Version   string
	Machine   string
	Processor string
}

// LoadAverage is the 1, 5 and 15 minute run-queue average.
// Nil on platforms that do not expose one.
type LoadAverage struct {
	Load1  float64
	Load5  float64
	Load15 float64
}

// MemoryUsage is virtual memory in bytes.
type MemoryUsage struct {
	Total     uint64
	Available uint64
	Used      uint64
	Percent   float64
}

// DiskUsage is usage of a single mount point in bytes.
type DiskUsage struct {
	Path    string
	Total   uint64
	Used    uint64
	Free    uint64
	Percent float64
}

// NetworkCounters are cumulative byte counters since boot, summed over
// all interfaces.
type NetworkCounters struct {
	BytesRecv uint64
	BytesSent uint64
}
