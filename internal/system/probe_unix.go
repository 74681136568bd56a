//go:build unix

package system

import (
	"context"

	"github.com/magicaleks/sysmon/internal/domain"
	"golang.org/x/sys/unix"
)

func platformIdentity(_ context.Context) (domain.HostIdentity, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return domain.HostIdentity{}, err
	}
	return domain.HostIdentity{
		System:   unix.ByteSliceToString(u.Sysname[:]),
		NodeName: unix.ByteSliceToString(u.Nodename[:]),
		Release:  unix.ByteSliceToString(u.Release[:]),
		Version:  unix.ByteSliceToString(u.Version[:]),
		Machine:  unix.ByteSliceToString(u.Machine[:]),
	}, nil
}
