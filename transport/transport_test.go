package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codacy-stress-test/libassuan/system"
)

func TestSocketpairEchoesBytes(t *testing.T) {
	hooks := system.Posix()
	a, b, err := Socketpair(hooks)
	assert.NoError(t, err)
	defer a.Close()
	defer b.Close()

	n, err := a.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)

	buf := make([]byte, 16)
	n, err = b.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestSocketpairSendFDsDeliversOwnership(t *testing.T) {
	hooks := system.Posix()
	a, b, err := Socketpair(hooks)
	assert.NoError(t, err)
	defer a.Close()
	defer b.Close()

	r, w, err := hooks.Pipe()
	assert.NoError(t, err)
	defer hooks.Close(w)

	assert.NoError(t, a.SendFDs(system.Fds{r}))
	_, err = a.Write([]byte("x"))
	assert.NoError(t, err)

	buf := make([]byte, 1)
	_, err = b.Read(buf)
	assert.NoError(t, err)

	fds := b.DequeueFDs()
	assert.Len(t, fds, 1)
	defer hooks.Close(fds[0])

	_, err = hooks.Write(w, []byte("payload"))
	assert.NoError(t, err)

	rbuf := make([]byte, 16)
	n, err := hooks.Read(fds[0], rbuf)
	assert.NoError(t, err)
	assert.Equal(t, "payload", string(rbuf[:n]))
}

func TestPipeConnReadWrite(t *testing.T) {
	hooks := system.Posix()
	r1, w1, err := hooks.Pipe()
	assert.NoError(t, err)
	r2, w2, err := hooks.Pipe()
	assert.NoError(t, err)

	server := NewPipeServer(hooks, r1, w2)
	client := NewPipeServer(hooks, r2, w1)
	defer server.Close()
	defer client.Close()

	_, err = client.Write([]byte("ping"))
	assert.NoError(t, err)
	buf := make([]byte, 8)
	n, err := server.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))
}
