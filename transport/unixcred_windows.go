//go:build windows

package transport

import (
	"github.com/codacy-stress-test/libassuan/errcode"
	"github.com/codacy-stress-test/libassuan/system"
)

const (
	unixDomain   = 1
	streamSocket = 1
)

type PeerCredentials struct {
	UID uint32
	GID uint32
	PID int32
}

func acceptOne(hooks system.Hooks, listenFd int) (int, *PeerCredentials, error) {
	return -1, nil, errcode.New(errcode.NotImplemented)
}

func PeerCreds(fd int) (*PeerCredentials, error) {
	return nil, errcode.New(errcode.NotImplemented)
}
