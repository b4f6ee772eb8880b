package transport

import (
	"io"

	"github.com/codacy-stress-test/libassuan/system"
)

// SocketConn wraps one connected Unix-domain socket fd as an AncillaryConn,
// adapted from proxy.go's net.Listen("unix", ...)/net.Dial("unix", ...)
// pair into a raw fd driven through system.Hooks, so SCM_RIGHTS passing
// (which net.Conn has no portable hook for) is available.
type SocketConn struct {
	hooks   system.Hooks
	fd      int
	pending system.Fds
	queued  system.Fds
	creds   *PeerCredentials
}

func newSocketConn(hooks system.Hooks, fd int) *SocketConn {
	return &SocketConn{hooks: hooks, fd: fd}
}

// PeerCredentials returns the uid/gid/pid captured for the connecting peer
// at accept time, or nil if the binding or platform didn't capture any
// (only NewSocketServer on Linux currently does; see transport/unixcred*.go).
func (s *SocketConn) PeerCredentials() *PeerCredentials {
	return s.creds
}

func (s *SocketConn) Read(b []byte) (int, error) {
	n, fds, err := s.hooks.Recvmsg(s.fd, b)
	if len(fds) > 0 {
		s.queued = append(s.queued, fds...)
	}
	if n == 0 && err == nil {
		return 0, io.EOF
	}
	return n, err
}

func (s *SocketConn) Write(b []byte) (int, error) {
	fds := s.pending
	s.pending = nil
	total := 0
	for total < len(b) {
		n, err := s.hooks.Sendmsg(s.fd, b[total:], fds)
		fds = nil
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
		total += n
	}
	return total, nil
}

func (s *SocketConn) Close() error {
	return s.hooks.Close(s.fd)
}

// SendFDs attaches fds to the next Write call: the write path carries a
// batch of file descriptors via sendmsg/SCM_RIGHTS alongside the next
// outgoing line.
func (s *SocketConn) SendFDs(fds system.Fds) error {
	s.pending = append(s.pending, fds...)
	return nil
}

// DequeueFDs hands the caller ownership of every fd collected since the
// last call. The caller is responsible for closing them.
func (s *SocketConn) DequeueFDs() system.Fds {
	out := s.queued
	s.queued = nil
	return out
}

// NewSocketServer accepts exactly one connection on listenFd and returns
// it as an AncillaryConn.
func NewSocketServer(hooks system.Hooks, listenFd int) (*SocketConn, error) {
	fd, creds, err := acceptOne(hooks, listenFd)
	if err != nil {
		return nil, err
	}
	conn := newSocketConn(hooks, fd)
	conn.creds = creds
	return conn, nil
}

// NewSocketClient connects to the Unix-domain socket at path. If nonce is
// non-empty it is written immediately after connecting, the fallback for
// platforms lacking filesystem permissions on sockets.
func NewSocketClient(hooks system.Hooks, path string, nonce []byte) (*SocketConn, error) {
	fd, err := hooks.Socket(unixDomain, streamSocket, 0)
	if err != nil {
		return nil, err
	}
	if err := hooks.Connect(fd, path); err != nil {
		hooks.Close(fd)
		return nil, err
	}
	conn := newSocketConn(hooks, fd)
	if len(nonce) > 0 {
		if _, err := conn.Write(nonce); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

// Socketpair creates a connected pair of AncillaryConns for in-process
// testing, in the style of proxy_test.go's client/server pairing but
// using a real socket (rather than net.Pipe) so ancillary-fd tests have
// SCM_RIGHTS support under them.
func Socketpair(hooks system.Hooks) (a, b *SocketConn, err error) {
	fa, fb, err := hooks.Socketpair()
	if err != nil {
		return nil, nil, err
	}
	return newSocketConn(hooks, fa), newSocketConn(hooks, fb), nil
}
