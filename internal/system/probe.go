package system

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/magicaleks/sysmon/internal/domain"
	"github.com/shirou/gopsutil/v4/cpu"
)

var errNoData = errors.New("no data returned")

// Probe reads the static platform identity. The first successful read is
// kept for the life of the process.
type Probe struct {
	mu     sync.Mutex
	ident  *domain.HostIdentity
	uname  func(ctx context.Context) (domain.HostIdentity, error)
	cpuTag func(ctx context.Context) string
}

func NewProbe() *Probe {
	return &Probe{uname: platformIdentity, cpuTag: cpuModel}
}

// Identity returns system, node name, release, version, machine and
// processor strings.
func (p *Probe) Identity(ctx context.Context) (domain.HostIdentity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ident != nil {
		return *p.ident, nil
	}

	ident, err := p.uname(ctx)
	if err != nil {
		return domain.HostIdentity{}, err
	}
	ident.Processor = p.cpuTag(ctx)
	if ident.Processor == "" {
		ident.Processor = ident.Machine
	}

	p.ident = &ident
	return ident, nil
}

func cpuModel(ctx context.Context) string {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil || len(infos) == 0 {
		return ""
	}
	return strings.TrimSpace(infos[0].ModelName)
}
