// Command assuan-pipeline is a small demo wiring a server and client
// together over a socketpair in one process, in the style of
// kata-proxy's flag-driven main().
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	assuan "github.com/codacy-stress-test/libassuan"
	"github.com/codacy-stress-test/libassuan/assuanlog"
	"github.com/codacy-stress-test/libassuan/client"
	"github.com/codacy-stress-test/libassuan/server"
	"github.com/codacy-stress-test/libassuan/system"
	"github.com/codacy-stress-test/libassuan/transport"
)

const progName = "assuan-pipeline"

var pipelineLog = logrus.New()

func logger() *logrus.Entry {
	return pipelineLog.WithFields(logrus.Fields{"name": progName, "pid": os.Getpid()})
}

func setupLogger(level string) error {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	pipelineLog.SetLevel(l)
	return nil
}

func runServer(serverConn *transport.SocketConn, done chan<- error) {
	ctx := assuan.NewContext(assuan.RoleServer, serverConn, &assuan.Options{
		Logger: assuanlog.NewLogrus(pipelineLog),
	})
	defer ctx.Release()

	srv := server.New(ctx)
	srv.Register("ECHO", func(h *server.Handle, args string) error {
		return h.WriteData([]byte(args))
	}, "echoes its argument back as inline data")
	srv.Register("GETDATA", func(h *server.Handle, args string) error {
		data, err := h.Inquire("NEED", "3")
		if err != nil {
			return err
		}
		logger().Infof("GETDATA handler received %d bytes from inquiry", len(data))
		return nil
	}, "demonstrates the inquiry sub-protocol")

	done <- srv.Process()
}

func main() {
	var logLevel string
	var showVersion bool

	flag.BoolVar(&showVersion, "version", false, "display program version and exit")
	flag.StringVar(&logLevel, "log", "warn", "log messages above specified level: debug, info, warn, error")
	flag.Parse()

	if showVersion {
		fmt.Printf("%s (demo)\n", progName)
		os.Exit(0)
	}

	if err := setupLogger(logLevel); err != nil {
		logger().Fatal(err)
	}

	hooks := system.Posix()
	serverConn, clientConn, err := transport.Socketpair(hooks)
	if err != nil {
		logger().Fatal(err)
	}

	done := make(chan error, 1)
	go runServer(serverConn, done)

	clientCtx := assuan.NewContext(assuan.RoleClient, clientConn, &assuan.Options{
		Logger: assuanlog.NewLogrus(pipelineLog),
	})
	defer clientCtx.Release()

	if err := client.Transact(clientCtx, "ECHO", "hello world", client.Options{
		DataSink: func(b []byte) {
			logger().Infof("ECHO replied with %q", string(b))
		},
	}); err != nil {
		logger().Fatal(err)
	}

	if err := client.Transact(clientCtx, "BYE", "", client.Options{}); err != nil {
		logger().Warnf("BYE: %v", err)
	}

	if err := <-done; err != nil {
		logger().Warnf("server exited: %v", err)
	}
}
