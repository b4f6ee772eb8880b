package assuan

import (
	"os"

	"github.com/codacy-stress-test/libassuan/errcode"
	"github.com/codacy-stress-test/libassuan/lineio"
	"github.com/codacy-stress-test/libassuan/system"
	"github.com/codacy-stress-test/libassuan/transport"
)

// Role identifies which side of a conversation a Context plays.
type Role int

const (
	RoleServer Role = iota
	RoleClient
)

// Flags are the connection-wide bits: whether the connection is still
// open, whether the input side has seen EOF, whether confidential mode
// is active, and whether a cancel is pending delivery at the next write
// boundary.
type Flags struct {
	Open          bool
	InputEOF      bool
	Confidential  bool
	PendingCancel bool
	Broken        bool
}

// Options configures a Context at construction time. A nil field means
// "use the GlobalConfig default, or the built-in default if GlobalConfig
// has none."
type Options struct {
	Hooks     system.Hooks
	Allocator system.Allocator
	Logger    Logger
	// ErrorText overrides the handler-error-to-wire-text mapping.
	// Defaults to errcode.Text.
	ErrorText func(errcode.Code) string
}

// Context is the per-conversation state object: it exclusively owns the
// input/output line buffers, the transport connection, the vtable and
// allocator snapshot, the role and role-specific substate, an optional
// spawned peer pid, the inquiry nesting counter, and the connection
// flags.
type Context struct {
	Role Role

	conn   transport.Conn
	In     *lineio.Reader
	Out    *lineio.Writer
	Hooks  system.Hooks
	Alloc  system.Allocator
	logger Logger

	Pid    int
	HasPid bool

	InquiryDepth int
	Flags        Flags

	ErrorText func(errcode.Code) string

	// ServerState is set by server.New; package client does not set
	// ClientState. The core never reads either itself - role substate is
	// opaque to the shared Context.
	ServerState interface{}
	ClientState interface{}
}

// NewContext wraps an already-established transport.Conn (for example one
// half of a transport.Socketpair, or a muxsocket.Session stream) as a
// Context playing role. Exported for advanced embedders and for in-process
// testing; the four named constructors below are the normal entry points.
func NewContext(role Role, conn transport.Conn, opts *Options) *Context {
	return newContext(role, conn, opts)
}

func newContext(role Role, conn transport.Conn, opts *Options) *Context {
	if opts == nil {
		opts = &Options{}
	}
	hooks := hooksOrDefault(opts.Hooks)
	errText := opts.ErrorText
	if errText == nil {
		errText = errcode.Text
	}
	c := &Context{
		Role:      role,
		conn:      conn,
		In:        lineio.NewReader(conn),
		Out:       lineio.NewWriter(conn),
		Hooks:     hooks,
		Alloc:     allocatorOrDefault(opts.Allocator),
		logger:    opts.Logger,
		ErrorText: errText,
		Flags:     Flags{Open: true},
	}
	if c.logger == nil {
		c.logger = currentLogger()
	}
	return c
}

// NewServerPipe wraps two inherited file descriptors (read end, write end)
// as a server-side Context.
func NewServerPipe(inFd, outFd int, opts *Options) (*Context, error) {
	hooks := hooksOrDefault(optsHooks(opts))
	conn := transport.NewPipeServer(hooks, inFd, outFd)
	return newContext(RoleServer, conn, opts), nil
}

// NewServerSocket accepts exactly one connection on listenFd and wraps it
// as a server-side Context.
func NewServerSocket(listenFd int, opts *Options) (*Context, error) {
	hooks := hooksOrDefault(optsHooks(opts))
	conn, err := transport.NewSocketServer(hooks, listenFd)
	if err != nil {
		return nil, errcode.Wrap(errcode.AcceptFailed, err)
	}
	return newContext(RoleServer, conn, opts), nil
}

// NewClientPipe forks and execs path/argv, wiring a pipe pair to the
// child's stdio. inherited names additional fds the child keeps open
// across exec.
func NewClientPipe(path string, argv []string, inherited []int, opts *Options) (*Context, int, error) {
	hooks := hooksOrDefault(optsHooks(opts))
	conn, pid, err := transport.NewPipeClient(hooks, path, argv, inherited)
	if err != nil {
		return nil, 0, err
	}
	ctx := newContext(RoleClient, conn, opts)
	ctx.Pid = pid
	ctx.HasPid = true
	return ctx, pid, nil
}

// NewClientSocket connects to the Unix-domain socket at path. nonce, if
// non-empty, is written immediately after connecting (the fallback for
// platforms lacking filesystem permissions on sockets).
func NewClientSocket(path string, nonce []byte, opts *Options) (*Context, error) {
	hooks := hooksOrDefault(optsHooks(opts))
	conn, err := transport.NewSocketClient(hooks, path, nonce)
	if err != nil {
		return nil, errcode.Wrap(errcode.ConnectFailed, err)
	}
	return newContext(RoleClient, conn, opts), nil
}

func optsHooks(opts *Options) system.Hooks {
	if opts == nil {
		return nil
	}
	return opts.Hooks
}

// AncillaryConn returns the Context's connection as a transport.AncillaryConn
// if the underlying transport supports fd passing (socket-based bindings),
// or (nil, false) otherwise (pipe-based bindings).
func (c *Context) AncillaryConn() (transport.AncillaryConn, bool) {
	a, ok := c.conn.(transport.AncillaryConn)
	return a, ok
}

// Log routes a diagnostic through the Context's snapshot of the logger in
// effect at construction time.
func (c *Context) Log(level Level, msg string, fields map[string]interface{}) {
	c.logf(level, msg, fields)
}

// Cancel sets the pending-cancel flag the embedder's cancel(ctx) API
// exposes: the next D/S/INQUIRE write attempt by the in-flight handler
// returns errcode.Canceled.
func (c *Context) Cancel() {
	c.Flags.PendingCancel = true
}

// Break transitions the Context to the terminal broken state required on
// any I/O error: further operations fail fast without touching the
// transport.
func (c *Context) Break() {
	c.Flags.Broken = true
	c.Flags.Open = false
}

// CheckBroken returns an errcode.ReadError if the Context has already
// transitioned to broken, so callers can fail fast. The transport error
// that caused the break is not kept, so the returned error is ReadError
// whatever that original error was.
func (c *Context) CheckBroken() error {
	if c.Flags.Broken {
		return errcode.New(errcode.ReadError)
	}
	return nil
}

// Release drains pending output best-effort, closes owned fds, reaps a
// spawned peer if present, then marks the Context closed. A broken
// Context is closed without a drain attempt.
func (c *Context) Release() error {
	if c.conn == nil {
		return nil
	}
	if !c.Flags.Broken {
		_ = c.Out.Flush()
	}

	closeErr := c.conn.Close()
	c.conn = nil

	if c.HasPid {
		_, exited, err := c.Hooks.Waitpid(c.Pid, false)
		if err == nil && !exited {
			// Non-blocking reap found the child still running: nudge it
			// and then block for it.
			if proc, ferr := os.FindProcess(c.Pid); ferr == nil {
				proc.Signal(os.Kill)
			}
			c.Hooks.Waitpid(c.Pid, true)
		}
	}

	c.Flags.Open = false
	return closeErr
}
