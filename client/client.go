// Package client implements the client role of the Assuan protocol:
// sending a command, collecting the reply stream, and answering an
// inquiry the server raises mid-command.
//
// Modeled on qmp.go's executeCommandWithResponse: write one command, then
// block until a terminal response arrives, generalized from QMP's
// implicit single correlation slot to Assuan's explicit S/D/INQUIRE
// routing ahead of the terminal OK/ERR.
package client

import (
	assuan "github.com/codacy-stress-test/libassuan"
	"github.com/codacy-stress-test/libassuan/errcode"
	"github.com/codacy-stress-test/libassuan/protocol"
)

// InquiryHandler answers a server-raised INQUIRE. It calls send for each
// chunk of data it wants to hand back to the server; Transact writes the
// final END once the handler returns nil, or CAN if it returns an error.
type InquiryHandler func(keyword, args string, send func([]byte) error) error

// Options configures one Transact call.
type Options struct {
	// DataSink receives each decoded D-line payload concatenated into one
	// logical chunk per line, in wire order. Required if the server may
	// send D lines; their absence surfaces errcode.NoDataCallback.
	DataSink func([]byte)
	// StatusSink receives each S-line; optional, S lines are otherwise
	// ignored.
	StatusSink func(keyword, args string)
	// Inquire answers server-raised INQUIRE lines; its absence surfaces
	// errcode.NoInquireCallback and replies CAN to the server.
	Inquire InquiryHandler
}

// Transact writes one command line, then reads reply lines until a
// terminal OK/ERR, routing D lines to DataSink, S lines to StatusSink, and
// INQUIRE to the Inquire handler.
func Transact(ctx *assuan.Context, verb, args string, opts Options) error {
	if err := ctx.CheckBroken(); err != nil {
		return err
	}
	if err := ctx.Out.WriteLine(protocol.EncodeCommand(verb, args)); err != nil {
		return err
	}
	if err := ctx.Out.Flush(); err != nil {
		ctx.Break()
		return err
	}

	for {
		line, err := ctx.In.ReadLine()
		if err != nil {
			ctx.Break()
			return err
		}
		msg, perr := protocol.ParseReply(line)
		if perr != nil {
			return perr
		}
		switch msg.Kind {
		case protocol.KindOK:
			return nil
		case protocol.KindERR:
			return errcode.WithDesc(msg.Code, msg.Desc)
		case protocol.KindComment:
			continue
		case protocol.KindStatus:
			if opts.StatusSink != nil {
				opts.StatusSink(msg.Keyword, msg.Args)
			}
		case protocol.KindData:
			if opts.DataSink == nil {
				return errcode.New(errcode.NoDataCallback)
			}
			opts.DataSink(msg.Data)
		case protocol.KindInquire:
			if err := handleInquiry(ctx, msg, opts.Inquire); err != nil {
				return err
			}
		default:
			return errcode.New(errcode.InvalidResponse)
		}
	}
}

// handleInquiry answers one INQUIRE. On success it returns nil and the
// caller's Transact loop keeps reading for the command's eventual
// terminal reply. A missing handler is a hard protocol error surfaced
// immediately: the client can't continue the conversation without
// knowing what the server wanted. A handler that itself fails instead
// replies CAN and lets the server's own response to the cancellation
// (typically ERR CANCELED) flow back through the normal reply loop.
func handleInquiry(ctx *assuan.Context, msg protocol.Message, handler InquiryHandler) error {
	if handler == nil {
		_ = SendRaw(ctx, "CAN")
		return errcode.New(errcode.NoInquireCallback)
	}

	send := func(chunk []byte) error {
		if err := ctx.Out.WriteData(chunk); err != nil {
			return err
		}
		return ctx.Out.Flush()
	}

	if err := handler(msg.Keyword, msg.Args, send); err != nil {
		return SendRaw(ctx, "CAN")
	}
	return SendRaw(ctx, "END")
}

// SendRaw writes one preformatted line, for protocol extensions or
// diagnostic/test use.
func SendRaw(ctx *assuan.Context, line string) error {
	if err := ctx.Out.WriteLine([]byte(line)); err != nil {
		return err
	}
	return ctx.Out.Flush()
}

// ReceiveLine reads one raw line off the wire, for protocol extensions or
// diagnostic/test use.
func ReceiveLine(ctx *assuan.Context) ([]byte, error) {
	return ctx.In.ReadLine()
}
