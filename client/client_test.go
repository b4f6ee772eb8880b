package client

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	assuan "github.com/codacy-stress-test/libassuan"
	"github.com/codacy-stress-test/libassuan/errcode"
)

// fakeServer is a hand-rolled peer that speaks just enough of the wire
// protocol to drive Transact's branches directly, without depending on
// package server (which itself depends on package client for its tests -
// this keeps the two test suites decoupled).
func fakeServer(t *testing.T, conn net.Conn, lines ...string) {
	t.Helper()
	go func() {
		defer conn.Close()
		out := assuan.NewContext(assuan.RoleServer, conn, nil)
		_, err := out.In.ReadLine() // the command line
		if err != nil {
			return
		}
		for _, l := range lines {
			if err := out.Out.WriteLine([]byte(l)); err != nil {
				return
			}
		}
		out.Out.Flush()
	}()
}

func TestTransactOK(t *testing.T) {
	a, b := net.Pipe()
	fakeServer(t, a, "OK")

	ctx := assuan.NewContext(assuan.RoleClient, b, nil)
	defer ctx.Release()

	assert.NoError(t, Transact(ctx, "NOP", "", Options{}))
}

func TestTransactERR(t *testing.T) {
	a, b := net.Pipe()
	fakeServer(t, a, "ERR 275 Unknown command")

	ctx := assuan.NewContext(assuan.RoleClient, b, nil)
	defer ctx.Release()

	err := Transact(ctx, "WAT", "", Options{})
	code, ok := errcode.As(err)
	assert.True(t, ok)
	assert.Equal(t, errcode.UnknownCommand, code)
}

func TestTransactDataWithoutSinkSurfacesError(t *testing.T) {
	a, b := net.Pipe()
	fakeServer(t, a, "D hello", "OK")

	ctx := assuan.NewContext(assuan.RoleClient, b, nil)
	defer ctx.Release()

	err := Transact(ctx, "ECHO", "hello", Options{})
	code, ok := errcode.As(err)
	assert.True(t, ok)
	assert.Equal(t, errcode.NoDataCallback, code)
}

func TestTransactInquireWithoutHandlerSurfacesError(t *testing.T) {
	a, b := net.Pipe()
	fakeServer(t, a, "INQUIRE NEED 3")

	ctx := assuan.NewContext(assuan.RoleClient, b, nil)
	defer ctx.Release()

	err := Transact(ctx, "GETDATA", "", Options{})
	code, ok := errcode.As(err)
	assert.True(t, ok)
	assert.Equal(t, errcode.NoInquireCallback, code)
}

func TestTransactStatusThenOK(t *testing.T) {
	a, b := net.Pipe()
	fakeServer(t, a, "S PROGRESS 1/2", "OK")

	ctx := assuan.NewContext(assuan.RoleClient, b, nil)
	defer ctx.Release()

	var status string
	err := Transact(ctx, "LONGOP", "", Options{
		StatusSink: func(kw, args string) { status = kw + " " + args },
	})
	assert.NoError(t, err)
	assert.Equal(t, "PROGRESS 1/2", status)
}

func TestTransactUnrecognizedLineIsInvalidResponse(t *testing.T) {
	a, b := net.Pipe()
	fakeServer(t, a, "WAT nope")

	ctx := assuan.NewContext(assuan.RoleClient, b, nil)
	defer ctx.Release()

	err := Transact(ctx, "NOP", "", Options{})
	code, ok := errcode.As(err)
	assert.True(t, ok)
	assert.Equal(t, errcode.InvalidResponse, code)
}

func TestSendRawAndReceiveLine(t *testing.T) {
	a, b := net.Pipe()
	go func() {
		defer a.Close()
		srv := assuan.NewContext(assuan.RoleServer, a, nil)
		line, _ := srv.In.ReadLine()
		srv.Out.WriteLine(append([]byte("ECHO "), line...))
		srv.Out.Flush()
	}()

	ctx := assuan.NewContext(assuan.RoleClient, b, nil)
	defer ctx.Release()

	assert.NoError(t, SendRaw(ctx, "PING"))
	line, err := ReceiveLine(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "ECHO PING", string(line))
}
