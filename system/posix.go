//go:build !windows

package system

import (
	"os"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"
)

// Posix returns the default Hooks implementation, a thin wrapper over
// golang.org/x/sys/unix and os. Every blocking entry retries
// transparently on EINTR.
func Posix() Hooks {
	return posixHooks{}
}

type posixHooks struct{}

func (posixHooks) Usleep(d time.Duration) {
	time.Sleep(d)
}

func (posixHooks) Pipe() (int, int, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return -1, -1, err
	}
	return fds[0], fds[1], nil
}

func (posixHooks) Close(fd int) error {
	return retryEINTR(func() error {
		return unix.Close(fd)
	})
}

func (posixHooks) Read(fd int, buf []byte) (int, error) {
	for {
		n, err := unix.Read(fd, buf)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func (posixHooks) Write(fd int, buf []byte) (int, error) {
	for {
		n, err := unix.Write(fd, buf)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func (posixHooks) Sendmsg(fd int, buf []byte, fds Fds) (int, error) {
	var oob []byte
	if len(fds) > 0 {
		oob = unix.UnixRights(fds...)
	}
	for {
		err := unix.Sendmsg(fd, buf, oob, nil, 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		return len(buf), nil
	}
}

func (posixHooks) Recvmsg(fd int, buf []byte) (int, Fds, error) {
	oob := make([]byte, unix.CmsgSpace(64*4))
	for {
		n, oobn, _, _, err := unix.Recvmsg(fd, buf, oob, 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, nil, err
		}
		var fds Fds
		if oobn > 0 {
			msgs, err := unix.ParseSocketControlMessage(oob[:oobn])
			if err == nil {
				for _, m := range msgs {
					rights, err := unix.ParseUnixRights(&m)
					if err == nil {
						fds = append(fds, rights...)
					}
				}
			}
		}
		return n, fds, nil
	}
}

func (posixHooks) Socket(domain, typ, proto int) (int, error) {
	return unix.Socket(domain, typ, proto)
}

func (posixHooks) Connect(fd int, path string) error {
	addr := &unix.SockaddrUnix{Name: path}
	return retryEINTR(func() error {
		return unix.Connect(fd, addr)
	})
}

func (posixHooks) Socketpair() (int, int, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, -1, err
	}
	return fds[0], fds[1], nil
}

// Spawn forks and execs path, handing the child stdinFd/stdoutFd as its
// stdin/stdout and every fd in inherited at its own unchanged number, per
// original_source/src/system.c's _assuan_spawn contract ("Inherit the
// ASSUAN_INVALID_FD-terminated FD_CHILD_LIST as given (no remapping)").
// os/exec.Cmd.ExtraFiles can't express that - it always renumbers inherited
// fds to 3+i in the child - so this goes one layer below exec.Command to
// os.StartProcess, whose ProcAttr.Files maps slice index i directly to
// child descriptor i, and places each inherited fd at its own index.
func (posixHooks) Spawn(path string, argv []string, stdinFd, stdoutFd int, inherited []int, preExec func() error) (int, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return 0, err
	}

	maxFd := 2
	for _, fd := range append([]int{stdinFd, stdoutFd}, inherited...) {
		if fd > maxFd {
			maxFd = fd
		}
	}

	files := make([]*os.File, maxFd+1)
	files[0] = os.NewFile(uintptr(stdinFd), "stdin")
	files[1] = os.NewFile(uintptr(stdoutFd), "stdout")
	files[2] = os.Stderr
	for _, fd := range inherited {
		files[fd] = os.NewFile(uintptr(fd), "inherited")
	}

	if preExec != nil {
		if err := preExec(); err != nil {
			return 0, err
		}
	}

	proc, err := os.StartProcess(resolved, append([]string{resolved}, argv...), &os.ProcAttr{
		Files: files,
	})
	if err != nil {
		return 0, err
	}
	return proc.Pid, nil
}

func (posixHooks) Waitpid(pid int, blocking bool) (int, bool, error) {
	flags := 0
	if !blocking {
		flags = unix.WNOHANG
	}
	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(pid, &ws, flags, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, false, err
		}
		if wpid == 0 {
			return 0, false, nil
		}
		return ws.ExitStatus(), true, nil
	}
}

func (posixHooks) PreSyscall(op string)  {}
func (posixHooks) PostSyscall(op string) {}

func retryEINTR(f func() error) error {
	for {
		err := f()
		if err == unix.EINTR {
			continue
		}
		return err
	}
}
