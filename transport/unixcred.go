//go:build linux

package transport

import (
	"github.com/codacy-stress-test/libassuan/system"
	"golang.org/x/sys/unix"
)

const (
	unixDomain   = unix.AF_UNIX
	streamSocket = unix.SOCK_STREAM
)

// PeerCredentials is the uid/gid/pid a socket server captures where the
// OS supports it. On Linux that's SO_PEERCRED.
type PeerCredentials struct {
	UID uint32
	GID uint32
	PID int32
}

// acceptOne blocks for a single incoming connection on listenFd. The
// system.Hooks vtable carries no Accept entry, so this binding calls
// unix.Accept directly rather than inventing one, the same way proxy.go
// calls net.Listen/Accept directly rather than going through an
// indirection layer.
func acceptOne(hooks system.Hooks, listenFd int) (int, *PeerCredentials, error) {
	hooks.PreSyscall("accept")
	fd, _, err := unix.Accept(listenFd)
	hooks.PostSyscall("accept")
	if err != nil {
		return -1, nil, err
	}
	creds, _ := PeerCreds(fd)
	return fd, creds, nil
}

// PeerCreds returns the credentials of the process on the other end of a
// connected Unix-domain socket fd, via SO_PEERCRED.
func PeerCreds(fd int) (*PeerCredentials, error) {
	ucred, err := unix.GetsockoptUcred(fd, unix.SOL_SOCKET, unix.SO_PEERCRED)
	if err != nil {
		return nil, err
	}
	return &PeerCredentials{UID: ucred.Uid, GID: ucred.Gid, PID: ucred.Pid}, nil
}
