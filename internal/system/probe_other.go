//go:build !unix

package system

import (
	"context"
	"strings"

	"github.com/magicaleks/sysmon/internal/domain"
	"github.com/shirou/gopsutil/v4/host"
)

func platformIdentity(ctx context.Context) (domain.HostIdentity, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return domain.HostIdentity{}, err
	}

	system := info.OS
	if system != "" {
		system = strings.ToUpper(system[:1]) + system[1:]
	}

	return domain.HostIdentity{
		System:   system,
		NodeName: info.Hostname,
		Release:  info.PlatformVersion,
		Version:  info.KernelVersion,
		Machine:  info.KernelArch,
	}, nil
}
