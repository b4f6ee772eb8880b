// Package transport supplies the pluggable bindings an Assuan connection
// runs over: pipe-based and socket-based connections, a socketpair helper
// for in-process testing, and Unix-domain ancillary file-descriptor
// passing. Every binding is built on the system.Hooks capability
// interface, never on a raw syscall directly, so swapping in a fake Hooks
// exercises the exact same code path production traffic does.
package transport

import (
	"io"

	"github.com/codacy-stress-test/libassuan/errcode"
	"github.com/codacy-stress-test/libassuan/system"
)

// Conn is the minimum a transport binding must provide: byte streaming and
// an owned-fd close. PipeServer/PipeClient satisfy only this.
type Conn interface {
	io.Reader
	io.Writer
	io.Closer
}

// AncillaryConn is a Conn that additionally supports out-of-band file
// descriptor passing. SendFDs attaches a batch to the *next* Write call;
// DequeueFDs drains every fd the read path has collected since the last
// call in one slice (separately received batches are not kept apart),
// handing ownership to the caller. Only socket-based bindings
// satisfy this.
type AncillaryConn interface {
	Conn
	SendFDs(fds system.Fds) error
	DequeueFDs() system.Fds
}

// writeAll retries short writes, a discipline every binding below must
// honor since lineio.Writer.Flush expects a single logical Write to
// either succeed completely or fail.
func writeAll(write func([]byte) (int, error), b []byte) (int, error) {
	total := 0
	for total < len(b) {
		n, err := write(b[total:])
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, errcode.New(errcode.WriteError)
		}
		total += n
	}
	return total, nil
}
