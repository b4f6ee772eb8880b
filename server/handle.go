package server

import (
	assuan "github.com/codacy-stress-test/libassuan"
	"github.com/codacy-stress-test/libassuan/errcode"
	"github.com/codacy-stress-test/libassuan/protocol"
)

// Handle is the restricted capability object a registered verb's Handler
// runs with. It exposes only WriteData, WriteStatus, Inquire, and
// IsCanceled, as an explicit continuation, rather than handing the
// handler the whole Context.
type Handle struct {
	ctx *assuan.Context
	srv *Server
}

// IsCanceled reports whether the peer (or the embedder, via Context.Cancel)
// has requested cancellation of the command currently being handled.
func (h *Handle) IsCanceled() bool {
	return h.ctx.Flags.PendingCancel
}

// checkCancel is called at every write boundary, the only place
// cancellation is allowed to take effect: it never interrupts an
// in-flight syscall, only a protocol boundary. It is one-shot: once
// observed, the flag clears, so a later command doesn't inherit a stale
// cancel.
func (h *Handle) checkCancel() error {
	if h.ctx.Flags.PendingCancel {
		h.ctx.Flags.PendingCancel = false
		return errcode.New(errcode.Canceled)
	}
	return nil
}

// WriteData writes payload as one or more D-lines, immediately flushed.
func (h *Handle) WriteData(payload []byte) error {
	if err := h.checkCancel(); err != nil {
		return err
	}
	if err := h.ctx.Out.WriteData(payload); err != nil {
		return err
	}
	return h.ctx.Out.Flush()
}

// WriteStatus writes an "S keyword args" line, immediately flushed.
func (h *Handle) WriteStatus(keyword, args string) error {
	if err := h.checkCancel(); err != nil {
		return err
	}
	if err := h.ctx.Out.WriteLine(protocol.EncodeStatus(keyword, args)); err != nil {
		return err
	}
	return h.ctx.Out.Flush()
}

// Inquire sends "INQUIRE keyword args" and blocks, reading the client's
// response: D-lines accumulate into the returned payload, END concludes
// the inquiry successfully, CAN reports errcode.Canceled, ERR reports
// the peer's embedded code, and BYE terminates the connection after the
// current command's reply. Any other line is errcode.InvalidResponse. A
// second Inquire attempted before the first resolves - which can only
// happen if a handler calls Inquire reentrantly - is refused with
// errcode.NestedCommands, leaving the first inquiry unaffected.
func (h *Handle) Inquire(keyword, args string) ([]byte, error) {
	if err := h.checkCancel(); err != nil {
		return nil, err
	}
	if h.ctx.InquiryDepth >= 1 {
		return nil, errcode.New(errcode.NestedCommands)
	}
	h.ctx.InquiryDepth++
	defer func() { h.ctx.InquiryDepth-- }()

	h.srv.state = StateInquiring
	if err := h.ctx.Out.WriteLine(protocol.EncodeInquire(keyword, args)); err != nil {
		return nil, err
	}
	if err := h.ctx.Out.Flush(); err != nil {
		return nil, err
	}

	h.srv.state = StateAwaitingInquiryReply
	var payload []byte
	for {
		line, err := h.ctx.In.ReadLine()
		if err != nil {
			h.ctx.Break()
			return nil, err
		}
		if isBye(line) {
			// Treat a BYE arriving mid-inquiry as "close immediately
			// after the current reply" rather than InvalidResponse.
			h.srv.state = StateTerminated
			return nil, errcode.New(errcode.Canceled)
		}
		msg, perr := protocol.ParseReply(line)
		if perr != nil {
			return nil, perr
		}
		switch msg.Kind {
		case protocol.KindData:
			payload = append(payload, msg.Data...)
		case protocol.KindEnd:
			h.srv.state = StateDispatching
			return payload, nil
		case protocol.KindCancel:
			h.srv.state = StateDispatching
			return nil, errcode.New(errcode.Canceled)
		case protocol.KindERR:
			h.srv.state = StateDispatching
			return nil, errcode.WithDesc(msg.Code, msg.Desc)
		default:
			return nil, errcode.New(errcode.InvalidResponse)
		}
	}
}

func isBye(line []byte) bool {
	s := string(line)
	return len(s) >= 3 && (s == "BYE" || (len(s) > 3 && s[:3] == "BYE" && s[3] == ' '))
}
