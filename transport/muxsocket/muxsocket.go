// Package muxsocket lets many independent Assuan conversations ride one
// physical Unix-domain connection, the way kata-proxy's serve() multiplexes
// one hyperstart channel into many client connections via
// github.com/hashicorp/yamux. Each yamux.Stream still becomes exactly one
// assuan.Context, one per conversation; this package only changes how many
// such streams one physical socket carries.
package muxsocket

import (
	"io"
	"net"

	"github.com/hashicorp/yamux"
)

// Session wraps a yamux session over an already-connected transport.
type Session struct {
	sess *yamux.Session
}

// Client turns conn (the client side of one physical connection, e.g. a
// net.Conn dialed to a listening proxy) into a Session that can Open new
// streams, one per Assuan conversation, exactly as proxy.go's serve()
// calls yamux.Client(servConn, nil) before opening a stream per accepted
// connection.
func Client(conn io.ReadWriteCloser) (*Session, error) {
	sess, err := yamux.Client(conn, nil)
	if err != nil {
		return nil, err
	}
	return &Session{sess: sess}, nil
}

// Server is the accepting side, used by a process that owns many Assuan
// conversations and wants to serve them all over one physical connection
// rather than one fd per conversation.
func Server(conn io.ReadWriteCloser) (*Session, error) {
	sess, err := yamux.Server(conn, nil)
	if err != nil {
		return nil, err
	}
	return &Session{sess: sess}, nil
}

// Open starts a new logical Assuan conversation on the session. The
// returned net.Conn satisfies transport.Conn directly; wrap it with
// assuan.NewContext at a layer above. Yamux streams
// carry no SCM_RIGHTS support (ancillary fd passing stays on the raw
// AF_UNIX bindings in the parent transport package).
func (s *Session) Open() (net.Conn, error) {
	return s.sess.Open()
}

// Accept blocks for the peer's next Open call.
func (s *Session) Accept() (net.Conn, error) {
	return s.sess.Accept()
}

func (s *Session) Close() error {
	return s.sess.Close()
}
