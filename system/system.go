// Package system indirects over OS primitives so the protocol core never
// calls a platform syscall directly. Hooks is the capability interface
// (the idiomatic-Go analogue of libassuan's versioned vtable struct);
// Posix() supplies the default implementation. PartialHooks lets an
// embedder override a subset of the table; any field left nil falls back
// to the default the way a lower-versioned caller's missing vtable
// entries fall back to libassuan's own defaults.
package system

import "time"

// Fds is a batch of ancillary file descriptors, as carried by Sendmsg and
// returned by Recvmsg on Unix-domain sockets.
type Fds []int

// Hooks is the syscall capability surface the protocol core drives
// everything through. A nil Hooks is never valid on a live Context; use
// Posix() for the default.
type Hooks interface {
	Usleep(d time.Duration)
	Pipe() (r, w int, err error)
	Close(fd int) error
	Read(fd int, buf []byte) (int, error)
	Write(fd int, buf []byte) (int, error)
	Sendmsg(fd int, buf []byte, fds Fds) (int, error)
	Recvmsg(fd int, buf []byte) (n int, fds Fds, err error)
	Socket(domain, typ, proto int) (int, error)
	Connect(fd int, path string) error
	Socketpair() (a, b int, err error)
	Spawn(path string, argv []string, stdinFd, stdoutFd int, inherited []int, preExec func() error) (pid int, err error)
	Waitpid(pid int, blocking bool) (status int, exited bool, err error)

	// PreSyscall/PostSyscall bracket every default-path blocking call so
	// an embedder can suspend signal handling or cancellation around it.
	// Called with the name of the operation being wrapped.
	PreSyscall(op string)
	PostSyscall(op string)
}

// Allocator is the optional trio of allocation hooks a Context stores as
// Context.Alloc. A nil Allocator means "use Go's GC," which is the
// default. The core's line buffers, strings and command-table nodes are
// not routed through it; it is only held for embedder code.
type Allocator interface {
	Allocate(n int) []byte
	Reallocate(buf []byte, n int) []byte
	Free(buf []byte)
}

// PartialHooks lets a caller override a subset of the syscall table.
// Any field left nil is filled from base by Override, reproducing
// libassuan's "missing fields from an older caller are filled from
// defaults" negotiation without a version integer.
type PartialHooks struct {
	Usleep     func(d time.Duration)
	Pipe       func() (r, w int, err error)
	Close      func(fd int) error
	Read       func(fd int, buf []byte) (int, error)
	Write      func(fd int, buf []byte) (int, error)
	Sendmsg    func(fd int, buf []byte, fds Fds) (int, error)
	Recvmsg    func(fd int, buf []byte) (n int, fds Fds, err error)
	Socket     func(domain, typ, proto int) (int, error)
	Connect    func(fd int, path string) error
	Socketpair func() (a, b int, err error)
	Spawn      func(path string, argv []string, stdinFd, stdoutFd int, inherited []int, preExec func() error) (pid int, err error)
	Waitpid    func(pid int, blocking bool) (status int, exited bool, err error)
	PreSyscall func(op string)
	PostSyscall func(op string)
}

// Override returns a Hooks that calls into partial for any field set and
// falls back to base otherwise.
func Override(base Hooks, partial PartialHooks) Hooks {
	return &overrideHooks{base: base, over: partial}
}

type overrideHooks struct {
	base Hooks
	over PartialHooks
}

// Every blocking or potentially-blocking entry below brackets its call
// with the composed Hooks' own PreSyscall/PostSyscall, so an embedder
// that overrides only those two fields still gets them invoked around
// base's default calls - the bracketing lives here rather than in
// Posix() because Posix() itself has nothing to call into.

func (o *overrideHooks) Usleep(d time.Duration) {
	o.PreSyscall("usleep")
	defer o.PostSyscall("usleep")
	if o.over.Usleep != nil {
		o.over.Usleep(d)
		return
	}
	o.base.Usleep(d)
}

func (o *overrideHooks) Pipe() (int, int, error) {
	o.PreSyscall("pipe")
	defer o.PostSyscall("pipe")
	if o.over.Pipe != nil {
		return o.over.Pipe()
	}
	return o.base.Pipe()
}

func (o *overrideHooks) Close(fd int) error {
	o.PreSyscall("close")
	defer o.PostSyscall("close")
	if o.over.Close != nil {
		return o.over.Close(fd)
	}
	return o.base.Close(fd)
}

func (o *overrideHooks) Read(fd int, buf []byte) (int, error) {
	o.PreSyscall("read")
	defer o.PostSyscall("read")
	if o.over.Read != nil {
		return o.over.Read(fd, buf)
	}
	return o.base.Read(fd, buf)
}

func (o *overrideHooks) Write(fd int, buf []byte) (int, error) {
	o.PreSyscall("write")
	defer o.PostSyscall("write")
	if o.over.Write != nil {
		return o.over.Write(fd, buf)
	}
	return o.base.Write(fd, buf)
}

func (o *overrideHooks) Sendmsg(fd int, buf []byte, fds Fds) (int, error) {
	o.PreSyscall("sendmsg")
	defer o.PostSyscall("sendmsg")
	if o.over.Sendmsg != nil {
		return o.over.Sendmsg(fd, buf, fds)
	}
	return o.base.Sendmsg(fd, buf, fds)
}

func (o *overrideHooks) Recvmsg(fd int, buf []byte) (int, Fds, error) {
	o.PreSyscall("recvmsg")
	defer o.PostSyscall("recvmsg")
	if o.over.Recvmsg != nil {
		return o.over.Recvmsg(fd, buf)
	}
	return o.base.Recvmsg(fd, buf)
}

func (o *overrideHooks) Socket(domain, typ, proto int) (int, error) {
	o.PreSyscall("socket")
	defer o.PostSyscall("socket")
	if o.over.Socket != nil {
		return o.over.Socket(domain, typ, proto)
	}
	return o.base.Socket(domain, typ, proto)
}

func (o *overrideHooks) Connect(fd int, path string) error {
	o.PreSyscall("connect")
	defer o.PostSyscall("connect")
	if o.over.Connect != nil {
		return o.over.Connect(fd, path)
	}
	return o.base.Connect(fd, path)
}

func (o *overrideHooks) Socketpair() (int, int, error) {
	o.PreSyscall("socketpair")
	defer o.PostSyscall("socketpair")
	if o.over.Socketpair != nil {
		return o.over.Socketpair()
	}
	return o.base.Socketpair()
}

func (o *overrideHooks) Spawn(path string, argv []string, stdinFd, stdoutFd int, inherited []int, preExec func() error) (int, error) {
	o.PreSyscall("spawn")
	defer o.PostSyscall("spawn")
	if o.over.Spawn != nil {
		return o.over.Spawn(path, argv, stdinFd, stdoutFd, inherited, preExec)
	}
	return o.base.Spawn(path, argv, stdinFd, stdoutFd, inherited, preExec)
}

func (o *overrideHooks) Waitpid(pid int, blocking bool) (int, bool, error) {
	o.PreSyscall("waitpid")
	defer o.PostSyscall("waitpid")
	if o.over.Waitpid != nil {
		return o.over.Waitpid(pid, blocking)
	}
	return o.base.Waitpid(pid, blocking)
}

func (o *overrideHooks) PreSyscall(op string) {
	if o.over.PreSyscall != nil {
		o.over.PreSyscall(op)
		return
	}
	o.base.PreSyscall(op)
}

func (o *overrideHooks) PostSyscall(op string) {
	if o.over.PostSyscall != nil {
		o.over.PostSyscall(op)
		return
	}
	o.base.PostSyscall(op)
}
