//go:build !windows

package transport

import (
	"net"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codacy-stress-test/libassuan/system"
)

// listenFd creates a real Unix-domain listening socket at a fresh temp path
// and returns its raw fd, the way an embedder would obtain listenFd for
// NewServerSocket/NewSocketServer in production (this package's Hooks
// vtable has no Bind/Listen entry of its own - listening is the caller's
// job, accepting is the binding's).
func listenFd(t *testing.T) (fd int, path string, cleanup func()) {
	t.Helper()
	dir := t.TempDir()
	path = filepath.Join(dir, "assuan.sock")
	l, err := net.Listen("unix", path)
	require.NoError(t, err)

	ul := l.(*net.UnixListener)
	f, err := ul.File()
	require.NoError(t, err)

	return int(f.Fd()), path, func() {
		f.Close()
		l.Close()
		os.Remove(path)
	}
}

// TestNewSocketServerCapturesPeerCredentials drives NewSocketServer
// end-to-end against a real listening socket and a real connecting client,
// the way a production server/client pair would, and checks the accepted
// connection's captured peer credentials are reachable rather than
// discarded.
func TestNewSocketServerCapturesPeerCredentials(t *testing.T) {
	hooks := system.Posix()
	fd, path, cleanup := listenFd(t)
	defer cleanup()

	type result struct {
		conn *SocketConn
		err  error
	}
	accepted := make(chan result, 1)
	go func() {
		conn, err := NewSocketServer(hooks, fd)
		accepted <- result{conn, err}
	}()

	client, err := NewSocketClient(hooks, path, nil)
	require.NoError(t, err)
	defer client.Close()

	r := <-accepted
	require.NoError(t, r.err)
	defer r.conn.Close()

	_, err = client.Write([]byte("hi"))
	assert.NoError(t, err)
	buf := make([]byte, 4)
	n, err := r.conn.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, "hi", string(buf[:n]))

	creds := r.conn.PeerCredentials()
	if runtime.GOOS == "linux" {
		require.NotNil(t, creds)
		assert.Equal(t, int32(os.Getpid()), creds.PID)
		assert.Equal(t, uint32(os.Getuid()), creds.UID)
	}
}
