//go:build windows

package system

import (
	"time"

	"github.com/codacy-stress-test/libassuan/errcode"
)

// Windows returns a Hooks stub. libassuan's own Windows backend uses
// named pipes over a wholly different syscall surface than the POSIX
// one, and nothing here grounds a real implementation of it, so every
// entry that would need real work returns errNotImplemented rather than
// guessing at an untested implementation.
func Windows() Hooks {
	return windowsHooks{}
}

type windowsHooks struct{}

var errNotImplemented = errcode.New(errcode.NotImplemented)

func (windowsHooks) Usleep(d time.Duration) { time.Sleep(d) }
func (windowsHooks) Pipe() (int, int, error) { return -1, -1, errNotImplemented }
func (windowsHooks) Close(fd int) error      { return errNotImplemented }
func (windowsHooks) Read(fd int, buf []byte) (int, error) {
	return 0, errNotImplemented
}
func (windowsHooks) Write(fd int, buf []byte) (int, error) {
	return 0, errNotImplemented
}
func (windowsHooks) Sendmsg(fd int, buf []byte, fds Fds) (int, error) {
	return 0, errNotImplemented
}
func (windowsHooks) Recvmsg(fd int, buf []byte) (int, Fds, error) {
	return 0, nil, errNotImplemented
}
func (windowsHooks) Socket(domain, typ, proto int) (int, error) {
	return -1, errNotImplemented
}
func (windowsHooks) Connect(fd int, path string) error { return errNotImplemented }
func (windowsHooks) Socketpair() (int, int, error)     { return -1, -1, errNotImplemented }
func (windowsHooks) Spawn(path string, argv []string, stdinFd, stdoutFd int, inherited []int, preExec func() error) (int, error) {
	return 0, errNotImplemented
}
func (windowsHooks) Waitpid(pid int, blocking bool) (int, bool, error) {
	return 0, false, errNotImplemented
}
func (windowsHooks) PreSyscall(op string)  {}
func (windowsHooks) PostSyscall(op string) {}
