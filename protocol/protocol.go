// Package protocol turns wire lines into typed Message values and back.
// It knows nothing about transports, buffering, or dispatch - those live
// in lineio, server, and client respectively.
//
// Modeled on qmp.go's processQMPInput dispatch-by-first-token structure,
// generalized from JSON-key sniffing (event/return/error) to Assuan's
// first-token sniffing (OK/ERR/S/D/INQUIRE/END/CAN/#).
package protocol

import (
	"strconv"
	"strings"

	"github.com/codacy-stress-test/libassuan/errcode"
	"github.com/codacy-stress-test/libassuan/lineio"
)

// Kind identifies which of the wire's message shapes a Message carries.
type Kind int

const (
	KindCommand Kind = iota
	KindOK
	KindERR
	KindStatus
	KindData
	KindInquire
	KindEnd
	KindCancel
	KindComment
)

// Message is the tagged union a wire line decodes into. Not every field
// is populated for every Kind: Verb/Args for Command, Info for OK,
// Code/Desc for ERR, Keyword/Args for Status and Inquire, Data for Data,
// Text for Comment.
type Message struct {
	Kind    Kind
	Verb    string // Command
	Keyword string // Status, Inquire
	Args    string
	Info    string // OK
	Code    errcode.Code
	Desc    string // ERR
	Data    []byte // Data (already percent-decoded)
	Text    string // Comment
}

// ParseCommand parses a client->server request line. The verb is returned
// verbatim (case preserved) for client-side echo; server-side dispatch
// does its own case-insensitive comparison at lookup time.
func ParseCommand(line []byte) Message {
	s := strings.TrimLeft(string(line), " \t")
	verb, args := splitOnce(s)
	return Message{Kind: KindCommand, Verb: verb, Args: args}
}

// ParseReply parses one line of the server->client reply stream,
// classifying it by its first token. A line whose first token isn't one
// of the recognized set reports InvalidResponse.
func ParseReply(line []byte) (Message, error) {
	s := string(line)
	if s == "" {
		return Message{}, errcode.New(errcode.InvalidResponse)
	}
	if s[0] == '#' {
		return Message{Kind: KindComment, Text: strings.TrimPrefix(s[1:], " ")}, nil
	}

	token, rest := splitOnce(s)
	switch strings.ToUpper(token) {
	case "OK":
		return Message{Kind: KindOK, Info: rest}, nil
	case "ERR":
		return parseErr(rest)
	case "S":
		kw, args := splitOnce(rest)
		return Message{Kind: KindStatus, Keyword: kw, Args: args}, nil
	case "D":
		data, err := lineio.DecodeData([]byte(rest))
		if err != nil {
			return Message{}, err
		}
		return Message{Kind: KindData, Data: data}, nil
	case "INQUIRE":
		kw, args := splitOnce(rest)
		return Message{Kind: KindInquire, Keyword: kw, Args: args}, nil
	case "END":
		return Message{Kind: KindEnd}, nil
	case "CAN":
		return Message{Kind: KindCancel}, nil
	default:
		return Message{}, errcode.New(errcode.InvalidResponse)
	}
}

func parseErr(rest string) (Message, error) {
	codeStr, desc := splitOnce(rest)
	code, err := strconv.Atoi(codeStr)
	if err != nil {
		return Message{}, errcode.New(errcode.InvalidResponse)
	}
	return Message{Kind: KindERR, Code: errcode.Code(code), Desc: desc}, nil
}

// splitOnce splits s on exactly one separating space, preserving any
// further internal whitespace in the remainder.
func splitOnce(s string) (head, rest string) {
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

// EncodeCommand serializes a command line: "VERB[ ARGS]".
func EncodeCommand(verb, args string) []byte {
	if args == "" {
		return []byte(verb)
	}
	return []byte(verb + " " + args)
}

// EncodeOK serializes a terminal success reply.
func EncodeOK(info string) []byte {
	if info == "" {
		return []byte("OK")
	}
	return []byte("OK " + info)
}

// EncodeERR serializes a terminal failure reply: "ERR CODE[ DESC]".
func EncodeERR(code errcode.Code, desc string) []byte {
	line := "ERR " + strconv.Itoa(int(code))
	if desc != "" {
		line += " " + desc
	}
	return []byte(line)
}

// EncodeStatus serializes an "S KEYWORD[ ARGS]" status line.
func EncodeStatus(keyword, args string) []byte {
	line := "S " + keyword
	if args != "" {
		line += " " + args
	}
	return []byte(line)
}

// EncodeInquire serializes an "INQUIRE KEYWORD[ ARGS]" line.
func EncodeInquire(keyword, args string) []byte {
	line := "INQUIRE " + keyword
	if args != "" {
		line += " " + args
	}
	return []byte(line)
}
