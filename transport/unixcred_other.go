//go:build !linux && !windows

package transport

import (
	"github.com/codacy-stress-test/libassuan/errcode"
	"github.com/codacy-stress-test/libassuan/system"
	"golang.org/x/sys/unix"
)

const (
	unixDomain   = unix.AF_UNIX
	streamSocket = unix.SOCK_STREAM
)

// PeerCredentials mirrors the Linux variant; non-Linux BSD-family systems
// would source these via LOCAL_PEERCRED or getpeereid, which nothing in
// this tree grounds a real implementation on, so this build reports
// errcode.NotImplemented rather than guessing at untested syscall numbers
// (same stance as system/windows.go).
type PeerCredentials struct {
	UID uint32
	GID uint32
	PID int32
}

func acceptOne(hooks system.Hooks, listenFd int) (int, *PeerCredentials, error) {
	hooks.PreSyscall("accept")
	fd, _, err := unix.Accept(listenFd)
	hooks.PostSyscall("accept")
	if err != nil {
		return -1, nil, err
	}
	return fd, nil, nil
}

func PeerCreds(fd int) (*PeerCredentials, error) {
	return nil, errcode.New(errcode.NotImplemented)
}
