// Package view turns snapshots into display-ready view models and holds
// the HTML templates that render them.
package view

import (
	"embed"
	"html/template"
	"math"
	"strconv"
	"time"

	"github.com/magicaleks/sysmon/internal/domain"
	"github.com/magicaleks/sysmon/internal/system"
)

const (
	BasicTemplate = "basic.html"
	LiveTemplate  = "live.html"

	// RefreshSeconds is the meta refresh period of the basic page.
	RefreshSeconds = 5
	// PollInterval is how often the live page fetches fresh data.
	PollInterval = 2 * time.Second
	// ChartWindow is the number of CPU points kept by the live chart.
	ChartWindow = 10
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{"num": FormatNumber}).ParseFS(templateFS, "templates/*.html")
}

// FormatNumber prints v in its shortest form but always with a fractional
// part, so 8 renders as "8.0" and 23.5 as "23.5".
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !math.IsInf(v, 0) && !math.IsNaN(v) && v == math.Trunc(v) {
		s += ".0"
	}
	return s
}

// Page is the server-rendered basic page. Sizes are in GB, network in MB.
type Page struct {
	System    string
	NodeName  string
	Release   string
	Version   string
	Machine   string
	Processor string
	CPUUsage  float64
	Load      *Load
	Memory    MemoryGB
	Disk      DiskGB
	Network   NetworkMB
	Refresh   int
}

type Load struct {
	Load1  float64
	Load5  float64
	Load15 float64
}

type MemoryGB struct {
	Total     float64
	Available float64
	Used      float64
	Percent   float64
}

type DiskGB struct {
	Path    string
	Total   float64
	Used    float64
	Free    float64
	Percent float64
}

type NetworkMB struct {
	Recv float64
	Sent float64
}

func NewPage(s domain.Snapshot) Page {
	p := Page{
		System:    s.Host.System,
		NodeName:  s.Host.NodeName,
		Release:   s.Host.Release,
		Version:   s.Host.Version,
		Machine:   s.Host.Machine,
		Processor: s.Host.Processor,
		CPUUsage:  system.Round(s.CPUPercent, 1),
		Memory: MemoryGB{
			Total:     system.GB(s.Memory.Total),
			Available: system.GB(s.Memory.Available),
			Used:      system.GB(s.Memory.Used),
			Percent:   system.Round(s.Memory.Percent, 1),
		},
		Disk: DiskGB{
			Path:    s.Disk.Path,
			Total:   system.GB(s.Disk.Total),
			Used:    system.GB(s.Disk.Used),
			Free:    system.GB(s.Disk.Free),
			Percent: system.Round(s.Disk.Percent, 1),
		},
		Network: NetworkMB{
			Recv: system.MB(s.Network.BytesRecv),
			Sent: system.MB(s.Network.BytesSent),
		},
		Refresh: RefreshSeconds,
	}
	if s.Load != nil {
		p.Load = &Load{
			Load1:  system.Round(s.Load.Load1, 2),
			Load5:  system.Round(s.Load.Load5, 2),
			Load15: system.Round(s.Load.Load15, 2),
		}
	}
	return p
}

// Data is the JSON document served by the data endpoint and consumed by
// the live page. Memory is in MB, disk in GB, network in bytes.
type Data struct {
	System    string     `json:"system"`
	NodeName  string     `json:"node_name"`
	Release   string     `json:"release"`
	Version   string     `json:"version"`
	Machine   string     `json:"machine"`
	Processor string     `json:"processor"`
	CPUUsage  float64    `json:"cpu_usage"`
	CPULoad   [3]float64 `json:"cpu_load"`
	Memory    Usage      `json:"memory"`
	Disk      Usage      `json:"disk"`
	Network   Network    `json:"network"`
}

type Usage struct {
	Percent float64 `json:"percent"`
	Used    float64 `json:"used"`
	Total   float64 `json:"total"`
}

type Network struct {
	BytesRecv uint64 `json:"bytes_recv"`
	BytesSent uint64 `json:"bytes_sent"`
}

func NewData(s domain.Snapshot) Data {
	d := Data{
		System:    s.Host.System,
		NodeName:  s.Host.NodeName,
		Release:   s.Host.Release,
		Version:   s.Host.Version,
		Machine:   s.Host.Machine,
		Processor: s.Host.Processor,
		CPUUsage:  system.Round(s.CPUPercent, 1),
		Memory: Usage{
			Percent: system.Round(s.Memory.Percent, 1),
			Used:    system.MB(s.Memory.Used),
			Total:   system.MB(s.Memory.Total),
		},
		Disk: Usage{
			Percent: system.Round(s.Disk.Percent, 1),
			Used:    system.GB(s.Disk.Used),
			Total:   system.GB(s.Disk.Total),
		},
		Network: Network{
			BytesRecv: s.Network.BytesRecv,
			BytesSent: s.Network.BytesSent,
		},
	}
	if s.Load != nil {
		d.CPULoad = [3]float64{
			system.Round(s.Load.Load1, 2),
			system.Round(s.Load.Load5, 2),
			system.Round(s.Load.Load15, 2),
		}
	}
	return d
}

// LivePage is the shell rendered once; the browser keeps it current by
// polling DataURL.
type LivePage struct {
	Data
	DataURL     string
	PollMillis  int64
	ChartWindow int
}

func NewLivePage(s domain.Snapshot, dataURL string) LivePage {
	return LivePage{
		Data:        NewData(s),
		DataURL:     dataURL,
		PollMillis:  PollInterval.Milliseconds(),
		ChartWindow: ChartWindow,
	}
}
