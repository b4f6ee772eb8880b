package transport

import (
	"io"

	"github.com/codacy-stress-test/libassuan/system"
)

// PipeConn wraps two inherited file descriptors, the read end and the
// write end of a pipe pair, as a Conn, in the style of kata-shim's
// shimStdioPipe/proxyStdio fd-ownership pattern, generalized from gRPC
// stream plumbing to raw fds driven through system.Hooks.
type PipeConn struct {
	hooks    system.Hooks
	readFd   int
	writeFd  int
	closeR   bool
	closeW   bool
}

// NewPipeServer wraps a pair of file descriptors the caller already owns
// (typically inherited stdio) as a server-side pipe Conn.
func NewPipeServer(hooks system.Hooks, inFd, outFd int) *PipeConn {
	return &PipeConn{hooks: hooks, readFd: inFd, writeFd: outFd, closeR: true, closeW: true}
}

// NewPipeClient forks and execs path with argv, handing the child one end
// of two fresh pipe pairs as its stdin/stdout and keeping the other end for
// the parent. inherited names additional file descriptors to leave open
// across the exec (e.g. an already-open status-fd); every other fd is
// closed by the exec machinery. Returns the parent-side Conn and the
// child's pid.
func NewPipeClient(hooks system.Hooks, path string, argv []string, inherited []int) (*PipeConn, int, error) {
	// childStdin: parent writes to wFd, child reads from rFd.
	childStdinR, parentStdinW, err := hooks.Pipe()
	if err != nil {
		return nil, 0, err
	}
	// childStdout: child writes to wFd, parent reads from rFd.
	parentStdoutR, childStdoutW, err := hooks.Pipe()
	if err != nil {
		hooks.Close(childStdinR)
		hooks.Close(parentStdinW)
		return nil, 0, err
	}

	pid, err := hooks.Spawn(path, argv, childStdinR, childStdoutW, inherited, nil)
	// The child's ends are always closed in the parent after spawn,
	// whether or not spawn succeeded: on success the child has its own
	// copy via exec inheritance, on failure there's nothing to keep.
	hooks.Close(childStdinR)
	hooks.Close(childStdoutW)
	if err != nil {
		hooks.Close(parentStdinW)
		hooks.Close(parentStdoutR)
		return nil, 0, err
	}

	return &PipeConn{hooks: hooks, readFd: parentStdoutR, writeFd: parentStdinW, closeR: true, closeW: true}, pid, nil
}

func (p *PipeConn) Read(b []byte) (int, error) {
	n, err := p.hooks.Read(p.readFd, b)
	if n == 0 && err == nil {
		return 0, io.EOF
	}
	return n, err
}

func (p *PipeConn) Write(b []byte) (int, error) {
	return writeAll(func(chunk []byte) (int, error) {
		return p.hooks.Write(p.writeFd, chunk)
	}, b)
}

func (p *PipeConn) Close() error {
	var firstErr error
	if p.closeR {
		if err := p.hooks.Close(p.readFd); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if p.closeW {
		if err := p.hooks.Close(p.writeFd); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
