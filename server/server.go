// Package server implements the server role of the Assuan protocol:
// command registration and lookup, the dispatch loop, the mandatory
// built-in verbs, and the inquiry sub-protocol a handler uses to ask the
// client for more data mid-command.
//
// Modeled on qmp.go's mainLoop/cmdQueue single-outstanding-command
// discipline, generalized from "one outstanding command served off a
// channel-fed queue" to "one outstanding command looked up in a verb
// table."
package server

import (
	"fmt"
	"io"
	"strings"

	"github.com/codacy-stress-test/libassuan/errcode"
	"github.com/codacy-stress-test/libassuan/protocol"

	assuan "github.com/codacy-stress-test/libassuan"
)

// Handler is the continuation a registered verb runs. It receives a
// restricted Handle, avoiding a long-lived borrow of context internals,
// and the command's argument string, and returns nil for a terminal OK
// or a non-nil error for a terminal ERR.
type Handler func(h *Handle, args string) error

type entry struct {
	verb    string
	handler Handler
	help    string
}

// State is the server's explicit position in its dispatch state machine.
type State int

const (
	StateIdle State = iota
	StateReceivingCommand
	StateDispatching
	StateInquiring
	StateAwaitingInquiryReply
	StateReplying
	StateTerminated
	StateBroken
)

// Server owns the verb registry and drives Process's dispatch loop. One
// Server is constructed per Context; it is not meant to be shared across
// contexts - each Context's command table is its own.
type Server struct {
	ctx     *assuan.Context
	entries map[string]*entry
	state   State

	// OnReset, if set, is called when the client issues RESET, after the
	// built-in per-request state has been cleared.
	OnReset func() error
	// OnOption, if set, is called for "OPTION key=value" commands.
	OnOption func(key, value string) error
}

// New constructs a Server for ctx, pre-registering the mandatory
// built-in verbs, and stashes itself on ctx.ServerState.
func New(ctx *assuan.Context) *Server {
	s := &Server{ctx: ctx, entries: make(map[string]*entry)}
	s.registerBuiltins()
	ctx.ServerState = s
	return s
}

// Register adds or replaces verb's handler. Lookup is ASCII
// case-insensitive and exact-length.
func (s *Server) Register(verb string, handler Handler, help string) error {
	if verb == "" || handler == nil {
		return errcode.New(errcode.Parameter)
	}
	s.entries[normalizeVerb(verb)] = &entry{verb: verb, handler: handler, help: help}
	return nil
}

func normalizeVerb(verb string) string {
	return strings.ToUpper(strings.TrimSpace(verb))
}

func (s *Server) lookup(verb string) (*entry, bool) {
	e, ok := s.entries[normalizeVerb(verb)]
	return e, ok
}

// State returns the server's current position in the state machine.
func (s *Server) State() State {
	return s.state
}

// Process repeatedly reads one command line, dispatches it to the
// matching handler (or replies ERR UNKNOWN_COMMAND), writes the terminal
// OK/ERR the handler's return value implies, and loops until BYE or a
// fatal transport error. Calling Process again after a prior call
// already reached StateTerminated returns immediately with a nil error.
func (s *Server) Process() error {
	if s.state == StateTerminated {
		return nil
	}
	if s.state == StateBroken {
		return s.ctx.CheckBroken()
	}

	for {
		s.state = StateReceivingCommand
		line, err := s.ctx.In.ReadLine()
		if err == io.EOF {
			s.ctx.Flags.InputEOF = true
			s.ctx.Break()
			s.state = StateBroken
			return errcode.New(errcode.EOF)
		}
		if err != nil {
			s.ctx.Break()
			s.state = StateBroken
			return err
		}

		msg := protocol.ParseCommand(line)
		s.state = StateDispatching

		herr := s.dispatch(msg.Verb, msg.Args)
		terminated := s.state == StateTerminated

		if werr := s.writeTerminalReply(herr); werr != nil {
			s.ctx.Break()
			s.state = StateBroken
			return werr
		}

		if terminated {
			s.state = StateTerminated
			return nil
		}
		s.state = StateIdle
	}
}

func (s *Server) dispatch(verb, args string) error {
	e, ok := s.lookup(verb)
	if !ok {
		return errcode.New(errcode.UnknownCommand)
	}
	h := &Handle{ctx: s.ctx, srv: s}
	return e.handler(h, args)
}

func (s *Server) writeTerminalReply(herr error) error {
	s.state = StateReplying
	if herr != nil {
		code, desc := s.wireError(herr)
		if err := s.ctx.Out.WriteLine(protocol.EncodeERR(code, desc)); err != nil {
			return err
		}
	} else {
		if err := s.ctx.Out.WriteLine(protocol.EncodeOK("")); err != nil {
			return err
		}
	}
	return s.ctx.Out.Flush()
}

func (s *Server) wireError(err error) (errcode.Code, string) {
	code, _ := errcode.As(err)
	return code, s.ctx.ErrorText(code)
}

func (s *Server) registerBuiltins() {
	s.entries["NOP"] = &entry{verb: "NOP", help: "does nothing", handler: func(h *Handle, args string) error {
		return nil
	}}
	s.entries["CANCEL"] = &entry{verb: "CANCEL", help: "marks a pending cancel for the next command", handler: func(h *Handle, args string) error {
		h.ctx.Cancel()
		return nil
	}}
	s.entries["BYE"] = &entry{verb: "BYE", help: "ends the connection", handler: func(h *Handle, args string) error {
		h.srv.state = StateTerminated
		return nil
	}}
	s.entries["AUTH"] = &entry{verb: "AUTH", help: "authentication (no-op unless overridden)", handler: func(h *Handle, args string) error {
		return nil
	}}
	s.entries["RESET"] = &entry{verb: "RESET", help: "resets per-request state", handler: func(h *Handle, args string) error {
		h.ctx.Flags.PendingCancel = false
		h.ctx.Flags.Confidential = false
		if h.srv.OnReset != nil {
			return h.srv.OnReset()
		}
		return nil
	}}
	s.entries["END"] = &entry{verb: "END", help: "concludes an inquiry", handler: func(h *Handle, args string) error {
		// END reaching the main dispatch loop (rather than being
		// consumed by the inquiry sub-loop in Handle.Inquire) means no
		// inquiry was outstanding.
		return errcode.New(errcode.InvalidResponse)
	}}
	s.entries["HELP"] = &entry{verb: "HELP", help: "lists verbs, or describes one", handler: func(h *Handle, args string) error {
		return h.srv.help(h, strings.TrimSpace(args))
	}}
	s.entries["OPTION"] = &entry{verb: "OPTION", help: "OPTION key=value", handler: func(h *Handle, args string) error {
		key, value := splitOption(args)
		if h.srv.OnOption != nil {
			return h.srv.OnOption(key, value)
		}
		return nil
	}}
}

func (s *Server) help(h *Handle, verb string) error {
	if verb == "" {
		names := make([]string, 0, len(s.entries))
		for _, e := range s.entries {
			names = append(names, e.verb)
		}
		return h.WriteStatus("HELP", strings.Join(names, " "))
	}
	e, ok := s.lookup(verb)
	if !ok {
		return errcode.New(errcode.UnknownCommand)
	}
	return h.WriteStatus("HELP", fmt.Sprintf("%s %s", e.verb, e.help))
}

func splitOption(args string) (key, value string) {
	i := strings.IndexByte(args, '=')
	if i < 0 {
		return args, ""
	}
	return args[:i], args[i+1:]
}
